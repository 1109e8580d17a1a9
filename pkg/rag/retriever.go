package rag

import "context"

// Retriever is the evidence-search collaborator contract. An empty result is
// valid ("no evidence found"), not an error. Implementations should be
// idempotent for a fixed index state.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]EvidenceUnit, error)
}
