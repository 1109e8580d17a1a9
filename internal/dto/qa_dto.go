package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	Question  string     `json:"question" validate:"required"`
	SessionId *uuid.UUID `json:"session_id,omitempty"`
}

type EvidenceDTO struct {
	Text          string  `json:"text"`
	DocumentId    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	ChunkIndex    int     `json:"chunk_index"`
	Score         float64 `json:"score"`
	SubQuestion   string  `json:"sub_question,omitempty"`
}

type AskResponse struct {
	Answer       string        `json:"answer"`
	Context      []EvidenceDTO `json:"context"`
	Plan         string        `json:"plan"`
	SubQuestions []string      `json:"sub_questions"`
	SessionId    uuid.UUID     `json:"session_id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID     `json:"id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Plan      string        `json:"plan,omitempty"`
	Citations []CitationDTO `json:"citations,omitempty"`
}

type CitationDTO struct {
	DocumentId    uuid.UUID `json:"document_id"`
	DocumentTitle string    `json:"document_title"`
	ChunkIndex    int       `json:"chunk_index"`
	Score         float64   `json:"score"`
}

// PipelineProgressDTO is pushed over the websocket as a run moves through
// its stages.
type PipelineProgressDTO struct {
	SessionId uuid.UUID `json:"session_id"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}
