package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID
	Content    string
	Embedding  []float32
	DocumentId uuid.UUID
	ChunkIndex int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
