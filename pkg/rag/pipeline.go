package rag

import (
	"context"
	"log"

	"ai-docqa-be/pkg/llm"
)

// Observer receives pipeline state transitions, e.g. for pushing progress to
// a websocket client. Implementations must be non-blocking.
type Observer interface {
	OnTransition(sessionKey string, state RunState)
}

// Pipeline composes the four stages into the fixed linear sequence
// Plan -> Retrieve -> Draft -> Verify and threads a ConversationState
// through them. The (question, answer) pair is appended to the session
// history only after Verify succeeds, so a failed run never corrupts it.
type Pipeline struct {
	planner  *Planner
	retrieve *RetrieveStage
	drafter  *Drafter
	verifier *Verifier
	sessions SessionStore
	observer Observer
	cfg      Config
	logger   *log.Logger
}

func NewPipeline(
	provider llm.LLMProvider,
	retriever Retriever,
	sessions SessionStore,
	cfg Config,
	logger *log.Logger,
) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		planner:  NewPlanner(provider, cfg.MaxSubQuestions, logger),
		retrieve: NewRetrieveStage(retriever, cfg.TopK, logger),
		drafter:  NewDrafter(provider, logger),
		verifier: NewVerifier(provider, logger),
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetObserver attaches a transition observer. Must be called before Run.
func (p *Pipeline) SetObserver(observer Observer) {
	p.observer = observer
}

func (p *Pipeline) transition(sessionKey string, state RunState) {
	if p.observer != nil {
		p.observer.OnTransition(sessionKey, state)
	}
}

// Run executes one full turn for the session key. On any fatal stage error
// the session history is left untouched and the error carries the failed
// stage name; retry is the caller's decision.
func (p *Pipeline) Run(ctx context.Context, sessionKey, question string) (*Result, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	st := ConversationState{
		SessionKey: sessionKey,
		Question:   question,
	}
	if sess, found := p.sessions.Get(sessionKey); found {
		st.Messages = sess.Messages
	}

	p.logger.Printf("[PIPELINE] run started (session=%s, history=%d messages)",
		sessionKey, len(st.Messages))

	p.transition(sessionKey, StatePlanning)
	st = p.runPlan(ctx, st)

	p.transition(sessionKey, StateRetrieving)
	st, err := p.runStage(ctx, st, p.retrieve.Run)
	if err != nil {
		return p.fail(sessionKey, err)
	}

	p.transition(sessionKey, StateDrafting)
	st, err = p.runStage(ctx, st, p.drafter.Run)
	if err != nil {
		return p.fail(sessionKey, err)
	}

	p.transition(sessionKey, StateVerifying)
	st, err = p.runStage(ctx, st, p.verifier.Run)
	if err != nil {
		return p.fail(sessionKey, err)
	}

	// History mutation happens only here, after a verified answer exists.
	if _, err := p.sessions.AppendTurn(sessionKey, st.Question, st.Answer); err != nil {
		return p.fail(sessionKey, &StageError{Stage: StageVerify, Err: err})
	}

	p.transition(sessionKey, StateComplete)
	p.logger.Printf("[PIPELINE] run complete (session=%s, %d evidence units)",
		sessionKey, len(st.Context))

	return &Result{
		Answer:       st.Answer,
		Context:      st.Context,
		Plan:         st.Plan,
		SubQuestions: st.SubQuestions,
		SessionKey:   sessionKey,
	}, nil
}

func (p *Pipeline) fail(sessionKey string, err error) (*Result, error) {
	p.transition(sessionKey, StateFailed)
	p.logger.Printf("[PIPELINE] run failed (session=%s): %v", sessionKey, err)
	return nil, err
}

// runPlan bounds the planner's external calls with the stage timeout. A
// deadline here degrades to the single-sub-question fallback inside the
// planner instead of failing the run.
func (p *Pipeline) runPlan(ctx context.Context, st ConversationState) ConversationState {
	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()
	return p.planner.Run(stageCtx, st)
}

// runStage bounds a fallible stage's external calls with the stage timeout.
func (p *Pipeline) runStage(
	ctx context.Context,
	st ConversationState,
	run func(context.Context, ConversationState) (ConversationState, error),
) (ConversationState, error) {
	stageCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()
	return run(stageCtx, st)
}
