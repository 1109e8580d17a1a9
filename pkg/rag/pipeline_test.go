package rag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/rag/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stageProvider answers each pipeline stage by sniffing the prompt markers,
// so one fake drives a full run.
type stageProvider struct {
	mu sync.Mutex

	planResp   string
	draftResp  string
	verifyResp string

	draftErr  error
	verifyErr error

	planCalls [][]llm.Message
}

func (p *stageProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	last := messages[len(messages)-1].Content
	switch {
	case strings.Contains(last, "<draft_answer>"):
		if p.verifyErr != nil {
			return "", p.verifyErr
		}
		return p.verifyResp, nil
	case strings.Contains(last, "<evidence>"):
		if p.draftErr != nil {
			return "", p.draftErr
		}
		return p.draftResp, nil
	default:
		p.planCalls = append(p.planCalls, messages)
		return p.planResp, nil
	}
}

func (p *stageProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type transitionRecorder struct {
	mu     sync.Mutex
	states map[string][]RunState
}

func newTransitionRecorder() *transitionRecorder {
	return &transitionRecorder{states: make(map[string][]RunState)}
}

func (r *transitionRecorder) OnTransition(sessionKey string, state RunState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[sessionKey] = append(r.states[sessionKey], state)
}

func newTestPipeline(provider llm.LLMProvider, retriever Retriever) (*Pipeline, *session.Store) {
	store := session.NewStore(time.Hour, time.Hour, 50)
	p := NewPipeline(provider, retriever, store, DefaultConfig(), testLogger())
	return p, store
}

func happyProvider() *stageProvider {
	return &stageProvider{
		planResp: `plan:
1. Find the findings
sub_questions:
- "report findings"`,
		draftResp:  "Draft: the report found X.",
		verifyResp: "The report found X.",
	}
}

func happyRetriever() Retriever {
	return &stubRetriever{batches: map[string][]EvidenceUnit{
		"report findings": {unit("report", 0, 0.9)},
	}}
}

func TestPipelineRunHappyPath(t *testing.T) {
	provider := happyProvider()
	pipeline, store := newTestPipeline(provider, happyRetriever())
	recorder := newTransitionRecorder()
	pipeline.SetObserver(recorder)

	result, err := pipeline.Run(context.Background(), "session-1", "What did the report find?")
	require.NoError(t, err)

	assert.Equal(t, "The report found X.", result.Answer)
	assert.Equal(t, []string{"report findings"}, result.SubQuestions)
	assert.Equal(t, "session-1", result.SessionKey)
	require.Len(t, result.Context, 1)

	sess, found := store.Get("session-1")
	require.True(t, found)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "What did the report find?", sess.Messages[0].Content)
	assert.Equal(t, "The report found X.", sess.Messages[1].Content)

	assert.Equal(t, []RunState{
		StatePlanning, StateRetrieving, StateDrafting, StateVerifying, StateComplete,
	}, recorder.states["session-1"])
}

func TestPipelineRejectsEmptyQuestion(t *testing.T) {
	pipeline, _ := newTestPipeline(happyProvider(), happyRetriever())

	_, err := pipeline.Run(context.Background(), "session-1", "")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestPipelineDraftFailureLeavesSessionUntouched(t *testing.T) {
	provider := happyProvider()
	provider.draftErr = errors.New("model timeout")
	pipeline, store := newTestPipeline(provider, happyRetriever())
	recorder := newTransitionRecorder()
	pipeline.SetObserver(recorder)

	_, err := pipeline.Run(context.Background(), "session-1", "q")
	require.ErrorIs(t, err, ErrDraftingFailed)

	_, found := store.Get("session-1")
	assert.False(t, found, "failed run must not create session history")

	states := recorder.states["session-1"]
	assert.Equal(t, StateFailed, states[len(states)-1])
}

func TestPipelineVerifyFailureLeavesSessionUntouched(t *testing.T) {
	provider := happyProvider()
	provider.verifyErr = errors.New("model timeout")
	pipeline, store := newTestPipeline(provider, happyRetriever())

	_, err := pipeline.Run(context.Background(), "session-1", "q")
	require.ErrorIs(t, err, ErrVerificationFailed)

	_, found := store.Get("session-1")
	assert.False(t, found)
}

func TestPipelineRetrieveFailureLeavesSessionUntouched(t *testing.T) {
	retriever := &stubRetriever{errs: map[string]error{
		"report findings": errors.New("connection refused"),
	}}
	pipeline, store := newTestPipeline(happyProvider(), retriever)

	_, err := pipeline.Run(context.Background(), "session-1", "q")

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRetrieve, stageErr.Stage)

	_, found := store.Get("session-1")
	assert.False(t, found)
}

func TestPipelineFollowUpCarriesHistory(t *testing.T) {
	provider := happyProvider()
	pipeline, store := newTestPipeline(provider, happyRetriever())

	_, err := pipeline.Run(context.Background(), "session-1", "first question")
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), "session-1", "follow-up question")
	require.NoError(t, err)

	sess, found := store.Get("session-1")
	require.True(t, found)
	assert.Len(t, sess.Messages, 4)

	// The second plan call sees the first turn plus its own prompt.
	require.Len(t, provider.planCalls, 2)
	assert.Len(t, provider.planCalls[1], 3)
}

func TestPipelineConcurrentSameKeyLosesNoTurn(t *testing.T) {
	pipeline, store := newTestPipeline(happyProvider(), happyRetriever())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pipeline.Run(context.Background(), "session-1", "q")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess, found := store.Get("session-1")
	require.True(t, found)
	assert.Len(t, sess.Messages, 4, "both turns must be appended, in pair order")

	// Pairs stay adjacent: user, assistant, user, assistant.
	assert.Equal(t, "user", sess.Messages[0].Role)
	assert.Equal(t, "assistant", sess.Messages[1].Role)
	assert.Equal(t, "user", sess.Messages[2].Role)
	assert.Equal(t, "assistant", sess.Messages[3].Role)
}

func TestPipelineDistinctKeysAreIsolated(t *testing.T) {
	pipeline, store := newTestPipeline(happyProvider(), happyRetriever())

	var wg sync.WaitGroup
	for _, key := range []string{"session-a", "session-b"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_, err := pipeline.Run(context.Background(), k, "q")
			assert.NoError(t, err)
		}(key)
	}
	wg.Wait()

	for _, key := range []string{"session-a", "session-b"} {
		sess, found := store.Get(key)
		require.True(t, found)
		assert.Len(t, sess.Messages, 2)
	}
}

func TestPipelineUnretrievableQuestionStillAnswers(t *testing.T) {
	// No evidence for any query: the drafter is expected to state
	// insufficiency, and the run still completes and records the turn.
	provider := happyProvider()
	provider.draftResp = "I cannot answer based on the available documents."
	provider.verifyResp = "I cannot answer based on the available documents."
	retriever := &stubRetriever{batches: map[string][]EvidenceUnit{}}
	pipeline, store := newTestPipeline(provider, retriever)

	result, err := pipeline.Run(context.Background(), "session-1", "Something not in any document?")
	require.NoError(t, err)

	assert.Empty(t, result.Context)
	assert.Contains(t, result.Answer, "cannot answer")

	sess, found := store.Get("session-1")
	require.True(t, found)
	assert.Len(t, sess.Messages, 2)
}
