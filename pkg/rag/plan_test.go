package rag

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-docqa-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns canned responses per call and records the messages
// it was asked with.
type scriptedProvider struct {
	responses []string
	err       error
	calls     [][]llm.Message
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	p.calls = append(p.calls, messages)
	if p.err != nil {
		return "", p.err
	}
	idx := len(p.calls) - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return p.responses[idx], nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestPlannerDecomposes(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`plan:
1. Find findings
sub_questions:
- "report findings"
- "comparison data"`}}
	planner := NewPlanner(provider, 5, testLogger())

	st := planner.Run(context.Background(), ConversationState{Question: "What did the report find?"})

	assert.Equal(t, "1. Find findings", st.Plan)
	require.Len(t, st.SubQuestions, 2)
	assert.Equal(t, "report findings", st.SubQuestions[0])
}

func TestPlannerFallsBackOnProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("model unavailable")}
	planner := NewPlanner(provider, 5, testLogger())

	st := planner.Run(context.Background(), ConversationState{Question: "What did the report find?"})

	assert.Empty(t, st.Plan)
	assert.Equal(t, []string{"What did the report find?"}, st.SubQuestions)
}

func TestPlannerFallsBackOnUnparseableResponse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"sure, let me answer that directly instead"}}
	planner := NewPlanner(provider, 5, testLogger())

	st := planner.Run(context.Background(), ConversationState{Question: "What did the report find?"})

	assert.Equal(t, []string{"What did the report find?"}, st.SubQuestions)
}

func TestPlannerCapsSubQuestions(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`sub_questions:
- "q1"
- "q2"
- "q3"
- "q4"`}}
	planner := NewPlanner(provider, 2, testLogger())

	st := planner.Run(context.Background(), ConversationState{Question: "big question"})

	assert.Equal(t, []string{"q1", "q2"}, st.SubQuestions)
}

func TestPlannerTrimsHistoryWindow(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`sub_questions:
- "q1"`}}
	planner := NewPlanner(provider, 5, testLogger())

	messages := make([]llm.Message, 10)
	for i := range messages {
		messages[i] = llm.Message{Role: "user", Content: "old turn"}
	}
	planner.Run(context.Background(), ConversationState{Question: "q", Messages: messages})

	require.Len(t, provider.calls, 1)
	// window plus the plan prompt itself
	assert.Len(t, provider.calls[0], historyWindowPlan+1)
}

func TestPlannerIsDeterministicForSameQuestion(t *testing.T) {
	response := `plan:
1. Find findings
sub_questions:
- "report findings"
- "comparison data"`
	provider := &scriptedProvider{responses: []string{response, response}}
	planner := NewPlanner(provider, 5, testLogger())

	first := planner.Run(context.Background(), ConversationState{Question: "What did the report find?"})
	second := planner.Run(context.Background(), ConversationState{Question: "What did the report find?"})

	assert.Equal(t, first.SubQuestions, second.SubQuestions)
}

func TestSanitizeSubQuestions(t *testing.T) {
	got := sanitizeSubQuestions([]string{"", "a", "b", "a", ""}, 5)
	assert.Equal(t, []string{"a", "b"}, got)
}
