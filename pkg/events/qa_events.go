package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDocumentIndexed      = "DOCUMENT_INDEXED"
	TypeDocumentIndexFailed  = "DOCUMENT_INDEX_FAILED"
	TypeQuestionAnswered     = "QUESTION_ANSWERED"
	TypeQuestionAnswerFailed = "QUESTION_ANSWER_FAILED"
)

// DocumentIndexedEvent fires after a document's chunks are embedded and stored.
type DocumentIndexedEvent struct {
	DocumentId uuid.UUID
	UserId     uuid.UUID
	ChunkCount int
	OccurredAt time.Time
}

func NewDocumentIndexedEvent(documentId, userId uuid.UUID, chunkCount int) DocumentIndexedEvent {
	return DocumentIndexedEvent{
		DocumentId: documentId,
		UserId:     userId,
		ChunkCount: chunkCount,
		OccurredAt: time.Now(),
	}
}

func (e DocumentIndexedEvent) EventType() string {
	return TypeDocumentIndexed
}

func (e DocumentIndexedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"document_id": e.DocumentId.String(),
		"user_id":     e.UserId.String(),
		"chunk_count": e.ChunkCount,
		"occurred_at": e.OccurredAt,
	}
}

func (e DocumentIndexedEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// DocumentIndexFailedEvent fires when ingestion gives up on a document and
// marks its row FAILED.
type DocumentIndexFailedEvent struct {
	DocumentId uuid.UUID
	UserId     uuid.UUID
	Reason     string
	OccurredAt time.Time
}

func NewDocumentIndexFailedEvent(documentId, userId uuid.UUID, reason string) DocumentIndexFailedEvent {
	return DocumentIndexFailedEvent{
		DocumentId: documentId,
		UserId:     userId,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
}

func (e DocumentIndexFailedEvent) EventType() string {
	return TypeDocumentIndexFailed
}

func (e DocumentIndexFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"document_id": e.DocumentId.String(),
		"user_id":     e.UserId.String(),
		"reason":      e.Reason,
		"occurred_at": e.OccurredAt,
	}
}

func (e DocumentIndexFailedEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// QuestionAnsweredEvent fires after a pipeline run completes and the turn is
// persisted.
type QuestionAnsweredEvent struct {
	SessionId    uuid.UUID
	UserId       uuid.UUID
	Question     string
	SubQuestions int
	Evidence     int
	OccurredAt   time.Time
}

func NewQuestionAnsweredEvent(sessionId, userId uuid.UUID, question string, subQuestions, evidence int) QuestionAnsweredEvent {
	return QuestionAnsweredEvent{
		SessionId:    sessionId,
		UserId:       userId,
		Question:     question,
		SubQuestions: subQuestions,
		Evidence:     evidence,
		OccurredAt:   time.Now(),
	}
}

func (e QuestionAnsweredEvent) EventType() string {
	return TypeQuestionAnswered
}

func (e QuestionAnsweredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":    e.SessionId.String(),
		"user_id":       e.UserId.String(),
		"question":      e.Question,
		"sub_questions": e.SubQuestions,
		"evidence":      e.Evidence,
		"occurred_at":   e.OccurredAt,
	}
}

func (e QuestionAnsweredEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// QuestionAnswerFailedEvent fires when a pipeline run aborts on a fatal
// stage error.
type QuestionAnswerFailedEvent struct {
	SessionId  uuid.UUID
	UserId     uuid.UUID
	Question   string
	Reason     string
	OccurredAt time.Time
}

func NewQuestionAnswerFailedEvent(sessionId, userId uuid.UUID, question, reason string) QuestionAnswerFailedEvent {
	return QuestionAnswerFailedEvent{
		SessionId:  sessionId,
		UserId:     userId,
		Question:   question,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
}

func (e QuestionAnswerFailedEvent) EventType() string {
	return TypeQuestionAnswerFailed
}

func (e QuestionAnswerFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id":  e.SessionId.String(),
		"user_id":     e.UserId.String(),
		"question":    e.Question,
		"reason":      e.Reason,
		"occurred_at": e.OccurredAt,
	}
}

func (e QuestionAnswerFailedEvent) Timestamp() time.Time {
	return e.OccurredAt
}
