// Package search bridges the retrieval stage to the pgvector-backed chunk
// store. It embeds the query and delegates similarity ranking to Postgres.
package search

import (
	"context"
	"fmt"

	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/rag"
)

const defaultSimilarityThreshold = 0.35

type VectorRetriever struct {
	embedder   embedding.Provider
	uowFactory unitofwork.RepositoryFactory
	threshold  float64
}

func NewVectorRetriever(embedder embedding.Provider, uowFactory unitofwork.RepositoryFactory) *VectorRetriever {
	return &VectorRetriever{
		embedder:   embedder,
		uowFactory: uowFactory,
		threshold:  defaultSimilarityThreshold,
	}
}

// Search embeds the query with the retrieval-query task type and returns the
// top k chunks above the similarity threshold. An empty slice is a valid
// result, not an error.
func (r *VectorRetriever) Search(ctx context.Context, query string, k int) ([]rag.EvidenceUnit, error) {
	resp, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, resp.Embedding.Values, k, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	units := make([]rag.EvidenceUnit, 0, len(scored))
	for _, s := range scored {
		units = append(units, rag.EvidenceUnit{
			Text: s.Chunk.Content,
			Source: rag.SourceLocation{
				DocumentID:    s.Chunk.DocumentId.String(),
				DocumentTitle: s.DocumentTitle,
				ChunkIndex:    s.Chunk.ChunkIndex,
			},
			Score: s.Similarity,
		})
	}
	return units, nil
}
