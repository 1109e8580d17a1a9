package rag

import (
	"context"
	"log"

	"ai-docqa-be/pkg/llm"
)

// historyWindowPlan bounds how much prior conversation the planner sees.
const historyWindowPlan = 6

// Planner decomposes the question into a search plan and sub-questions.
// Decomposition is an optimization, not a correctness requirement: any
// failure degrades to a single-element sub-question list.
type Planner struct {
	provider        llm.LLMProvider
	maxSubQuestions int
	logger          *log.Logger
}

func NewPlanner(provider llm.LLMProvider, maxSubQuestions int, logger *log.Logger) *Planner {
	if maxSubQuestions <= 0 {
		maxSubQuestions = DefaultMaxSubQuestions
	}
	return &Planner{
		provider:        provider,
		maxSubQuestions: maxSubQuestions,
		logger:          logger,
	}
}

// Run writes Plan and SubQuestions onto the state. It never fails the run.
func (p *Planner) Run(ctx context.Context, st ConversationState) ConversationState {
	prompt := buildPlanPrompt(st.Question, p.maxSubQuestions)

	history := st.Messages
	if len(history) > historyWindowPlan {
		history = history[len(history)-historyWindowPlan:]
	}
	agentMessages := make([]llm.Message, 0, len(history)+1)
	agentMessages = append(agentMessages, history...)
	agentMessages = append(agentMessages, llm.Message{Role: "user", Content: prompt})

	response, err := p.provider.Chat(ctx, agentMessages)
	if err != nil {
		p.logger.Printf("[PLAN] degraded, provider error: %v", err)
		return p.fallback(st)
	}

	plan, subQuestions := parsePlanResponse(response)
	subQuestions = sanitizeSubQuestions(subQuestions, p.maxSubQuestions)
	if len(subQuestions) == 0 {
		p.logger.Printf("[PLAN] degraded, empty decomposition")
		return p.fallback(st)
	}

	st.Plan = plan
	st.SubQuestions = subQuestions
	p.logger.Printf("[PLAN] decomposed into %d sub-questions", len(subQuestions))
	return st
}

func (p *Planner) fallback(st ConversationState) ConversationState {
	st.Plan = ""
	st.SubQuestions = []string{st.Question}
	return st
}

// sanitizeSubQuestions drops empties, dedupes, and caps the list length.
func sanitizeSubQuestions(subQuestions []string, max int) []string {
	cleaned := make([]string, 0, len(subQuestions))
	for _, q := range subQuestions {
		if q != "" {
			cleaned = append(cleaned, q)
		}
	}
	cleaned = dedupeStrings(cleaned)
	if len(cleaned) > max {
		cleaned = cleaned[:max]
	}
	return cleaned
}
