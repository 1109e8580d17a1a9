package embedding

import "context"

// Task types accepted by embedding backends that distinguish between
// indexing and querying (Gemini semantics; other backends ignore them).
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

type Vector struct {
	Values []float32 `json:"values"`
}

type Response struct {
	Embedding Vector `json:"embedding"`
}

// Provider generates text embeddings for indexing and retrieval.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) (*Response, error)
}
