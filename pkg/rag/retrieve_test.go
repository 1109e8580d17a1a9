package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRetriever serves fixed batches per query.
type stubRetriever struct {
	batches map[string][]EvidenceUnit
	errs    map[string]error
}

func (r *stubRetriever) Search(ctx context.Context, query string, k int) ([]EvidenceUnit, error) {
	if err := r.errs[query]; err != nil {
		return nil, err
	}
	units := r.batches[query]
	if len(units) > k {
		units = units[:k]
	}
	// copy so the stage's SubQuestion annotation cannot leak between calls
	out := make([]EvidenceUnit, len(units))
	copy(out, units)
	return out, nil
}

func unit(doc string, chunk int, score float64) EvidenceUnit {
	return EvidenceUnit{
		Text:   doc,
		Source: SourceLocation{DocumentID: doc, DocumentTitle: doc, ChunkIndex: chunk},
		Score:  score,
	}
}

func TestRetrieveMergesInSubQuestionOrder(t *testing.T) {
	retriever := &stubRetriever{batches: map[string][]EvidenceUnit{
		"q1": {unit("doc-a", 0, 0.9), unit("doc-a", 1, 0.7)},
		"q2": {unit("doc-b", 0, 0.8)},
	}}
	stage := NewRetrieveStage(retriever, 4, testLogger())

	st, err := stage.Run(context.Background(), ConversationState{SubQuestions: []string{"q1", "q2"}})
	require.NoError(t, err)

	require.Len(t, st.Context, 3)
	assert.Equal(t, "doc-a", st.Context[0].Source.DocumentID)
	assert.Equal(t, 1, st.Context[1].Source.ChunkIndex)
	assert.Equal(t, "doc-b", st.Context[2].Source.DocumentID)
}

func TestRetrieveAnnotatesSubQuestion(t *testing.T) {
	retriever := &stubRetriever{batches: map[string][]EvidenceUnit{
		"q1": {unit("doc-a", 0, 0.9)},
	}}
	stage := NewRetrieveStage(retriever, 4, testLogger())

	st, err := stage.Run(context.Background(), ConversationState{SubQuestions: []string{"q1"}})
	require.NoError(t, err)

	require.Len(t, st.Context, 1)
	assert.Equal(t, "q1", st.Context[0].SubQuestion)
}

func TestRetrieveDeduplicatesAcrossSubQuestions(t *testing.T) {
	shared := unit("doc-a", 0, 0.9)
	retriever := &stubRetriever{batches: map[string][]EvidenceUnit{
		"q1": {shared},
		"q2": {shared, unit("doc-b", 2, 0.6)},
	}}
	stage := NewRetrieveStage(retriever, 4, testLogger())

	st, err := stage.Run(context.Background(), ConversationState{SubQuestions: []string{"q1", "q2"}})
	require.NoError(t, err)

	require.Len(t, st.Context, 2)
	// the shared chunk keeps its first-seen annotation
	assert.Equal(t, "q1", st.Context[0].SubQuestion)
}

func TestRetrieveToleratesEmptyBatches(t *testing.T) {
	retriever := &stubRetriever{batches: map[string][]EvidenceUnit{}}
	stage := NewRetrieveStage(retriever, 4, testLogger())

	st, err := stage.Run(context.Background(), ConversationState{SubQuestions: []string{"q1", "q2"}})
	require.NoError(t, err)
	assert.Empty(t, st.Context)
}

func TestRetrieveFailsStageOnSearchError(t *testing.T) {
	retriever := &stubRetriever{
		batches: map[string][]EvidenceUnit{"q1": {unit("doc-a", 0, 0.9)}},
		errs:    map[string]error{"q2": errors.New("connection refused")},
	}
	stage := NewRetrieveStage(retriever, 4, testLogger())

	_, err := stage.Run(context.Background(), ConversationState{SubQuestions: []string{"q1", "q2"}})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRetrieve, stageErr.Stage)
}

func TestRetrieveRespectsTopK(t *testing.T) {
	retriever := &stubRetriever{batches: map[string][]EvidenceUnit{
		"q1": {unit("doc-a", 0, 0.9), unit("doc-a", 1, 0.8), unit("doc-a", 2, 0.7)},
	}}
	stage := NewRetrieveStage(retriever, 2, testLogger())

	st, err := stage.Run(context.Background(), ConversationState{SubQuestions: []string{"q1"}})
	require.NoError(t, err)
	assert.Len(t, st.Context, 2)
}
