package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Filename string    `json:"filename"`
	Status   string    `json:"status"`
}

type GetDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentUploadedPayload is the message body published to the ingestion
// worker after a successful upload.
type DocumentUploadedPayload struct {
	DocumentId uuid.UUID `json:"document_id"`
	UserId     uuid.UUID `json:"user_id"`
}
