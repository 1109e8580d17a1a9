package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrafterWritesDraftAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"The report found X."}}
	drafter := NewDrafter(provider, testLogger())

	st, err := drafter.Run(context.Background(), ConversationState{
		Question: "What did the report find?",
		Context:  []EvidenceUnit{unit("report", 0, 0.9)},
	})

	require.NoError(t, err)
	assert.Equal(t, "The report found X.", st.DraftAnswer)
	assert.Empty(t, st.Answer)
}

func TestDrafterFailsOnProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model timeout")}
	drafter := NewDrafter(provider, testLogger())

	_, err := drafter.Run(context.Background(), ConversationState{Question: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDraftingFailed)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageDraft, stageErr.Stage)
}

func TestDraftPromptStatesMissingEvidence(t *testing.T) {
	prompt := buildDraftPrompt("q", nil)
	assert.True(t, strings.Contains(prompt, "no evidence was retrieved"))
}

func TestDraftPromptIncludesSources(t *testing.T) {
	prompt := buildDraftPrompt("q", []EvidenceUnit{unit("annual-report", 3, 0.88)})
	assert.Contains(t, prompt, "annual-report")
	assert.Contains(t, prompt, "chunk 3")
}
