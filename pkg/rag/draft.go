package rag

import (
	"context"
	"log"

	"ai-docqa-be/pkg/llm"
)

// historyWindowDraft bounds how much prior conversation the drafter sees.
// History is carried for conversational tone only; facts must come from the
// retrieved evidence, never from earlier turns.
const historyWindowDraft = 6

// Drafter produces the draft answer from question + evidence. Unlike the
// planner, drafting has no safe fallback: a provider failure fails the run.
type Drafter struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewDrafter(provider llm.LLMProvider, logger *log.Logger) *Drafter {
	return &Drafter{provider: provider, logger: logger}
}

// Run writes DraftAnswer onto the state.
func (d *Drafter) Run(ctx context.Context, st ConversationState) (ConversationState, error) {
	prompt := buildDraftPrompt(st.Question, st.Context)

	history := st.Messages
	if len(history) > historyWindowDraft {
		history = history[len(history)-historyWindowDraft:]
	}
	agentMessages := make([]llm.Message, 0, len(history)+1)
	agentMessages = append(agentMessages, history...)
	agentMessages = append(agentMessages, llm.Message{Role: "user", Content: prompt})

	response, err := d.provider.Chat(ctx, agentMessages)
	if err != nil {
		d.logger.Printf("[DRAFT] provider error: %v", err)
		return st, newStageError(StageDraft, ErrDraftingFailed, err)
	}

	st.DraftAnswer = response
	d.logger.Printf("[DRAFT] draft generated from %d evidence units", len(st.Context))
	return st, nil
}
