package rag

import (
	"context"
	"log"
	"sync"
)

// RetrieveStage fans each sub-question out to the evidence retriever, then
// deduplicates and concatenates the batches into the state's Context.
//
// Sub-questions share no mutable state, so their searches run concurrently
// and join before the stage returns. Output ordering is stable: sub-question
// order first, then descending score within each batch.
type RetrieveStage struct {
	retriever Retriever
	topK      int
	logger    *log.Logger
}

func NewRetrieveStage(retriever Retriever, topK int, logger *log.Logger) *RetrieveStage {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrieveStage{
		retriever: retriever,
		topK:      topK,
		logger:    logger,
	}
}

// Run writes Context onto the state. An empty batch for any individual
// sub-question is tolerated; a transport failure fails the stage.
func (r *RetrieveStage) Run(ctx context.Context, st ConversationState) (ConversationState, error) {
	batches := make([][]EvidenceUnit, len(st.SubQuestions))
	errs := make([]error, len(st.SubQuestions))

	var wg sync.WaitGroup
	for i, subQ := range st.SubQuestions {
		wg.Add(1)
		go func(slot int, query string) {
			defer wg.Done()
			units, err := r.retriever.Search(ctx, query, r.topK)
			if err != nil {
				errs[slot] = err
				return
			}
			for j := range units {
				units[j].SubQuestion = query
			}
			batches[slot] = units
		}(i, subQ)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			r.logger.Printf("[RETRIEVE] search failed for sub-question %d: %v", i+1, err)
			return st, &StageError{Stage: StageRetrieve, Err: err}
		}
	}

	st.Context = mergeBatches(batches)
	r.logger.Printf("[RETRIEVE] %d evidence units across %d sub-questions",
		len(st.Context), len(st.SubQuestions))
	return st, nil
}

// mergeBatches concatenates per-sub-question batches in order, dropping
// evidence units already seen under an earlier sub-question. Batches arrive
// ranked by the retriever, so in-batch order is preserved as-is.
func mergeBatches(batches [][]EvidenceUnit) []EvidenceUnit {
	var merged []EvidenceUnit
	seen := make(map[SourceLocation]bool)

	for _, batch := range batches {
		for _, unit := range batch {
			if seen[unit.Source] {
				continue
			}
			seen[unit.Source] = true
			merged = append(merged, unit)
		}
	}
	return merged
}
