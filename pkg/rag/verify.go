package rag

import (
	"context"
	"log"

	"ai-docqa-be/pkg/llm"
)

// Verifier cross-checks the draft against the evidence and produces the
// final answer. It is the last line of defense against hallucination: a
// provider failure discards the draft rather than surfacing it unverified.
type Verifier struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewVerifier(provider llm.LLMProvider, logger *log.Logger) *Verifier {
	return &Verifier{provider: provider, logger: logger}
}

// Run writes Answer onto the state.
func (v *Verifier) Run(ctx context.Context, st ConversationState) (ConversationState, error) {
	prompt := buildVerifyPrompt(st.Question, st.Context, st.DraftAnswer)

	response, err := v.provider.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if err != nil {
		v.logger.Printf("[VERIFY] provider error: %v", err)
		return st, newStageError(StageVerify, ErrVerificationFailed, err)
	}

	st.Answer = response
	v.logger.Printf("[VERIFY] answer verified")
	return st, nil
}
