package entity

import (
	"time"

	"github.com/google/uuid"
)

// TurnTrace is the per-answer pipeline trace persisted alongside the
// assistant message for caller transparency and debugging.
type TurnTrace struct {
	Plan         string         `json:"plan,omitempty"`
	SubQuestions []string       `json:"sub_questions,omitempty"`
	Citations    []CitationInfo `json:"citations,omitempty"`
}

type CitationInfo struct {
	DocumentId    uuid.UUID `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	ChunkIndex    int       `json:"chunk_index"`
	Score         float64   `json:"score"`
}

type ChatMessage struct {
	Id            uuid.UUID
	Content       string
	Role          string
	ChatSessionId uuid.UUID
	Trace         *TurnTrace
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
