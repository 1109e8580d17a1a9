package rag

import (
	"fmt"
	"strings"
)

// buildPlanPrompt asks the model to decompose the question into a search plan
// plus focused sub-questions, in a line format parsePlanResponse understands.
func buildPlanPrompt(question string, maxSubQuestions int) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You analyze a user question and produce a structured search plan with targeted sub-questions.\n")
	prompt.WriteString("Do NOT answer the question. Base the plan ONLY on information present in the question.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("- Rephrase ambiguous questions for clarity before decomposing\n")
	prompt.WriteString("- Identify key entities, time ranges, topics, and constraints\n")
	prompt.WriteString("- Break multi-part questions into focused, independently searchable queries\n")
	prompt.WriteString("- Keep each sub-question concise and search-optimized (3-8 words)\n")
	prompt.WriteString(fmt.Sprintf("- Produce between 1 and %d sub-questions, each addressing a distinct aspect\n", maxSubQuestions))
	prompt.WriteString("</guidelines>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("plan:\n")
	prompt.WriteString("1. <first search objective>\n")
	prompt.WriteString("2. <second search objective>\n")
	prompt.WriteString("sub_questions:\n")
	prompt.WriteString("- \"<first query>\"\n")
	prompt.WriteString("- \"<second query>\"\n")
	prompt.WriteString("</output_format>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</user_question>")

	return prompt.String()
}

// buildDraftPrompt grounds the drafting step strictly in retrieved evidence.
// When no evidence exists the model must state insufficiency, not improvise.
func buildDraftPrompt(question string, context []EvidenceUnit) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Generate a clear, concise answer based ONLY on the evidence below.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<evidence>\n")
	if len(context) == 0 {
		prompt.WriteString("(no evidence was retrieved)\n")
	}
	for i, unit := range context {
		prompt.WriteString(fmt.Sprintf("[%d] (source: %s, chunk %d, score %.2f)\n%s\n\n",
			i+1, unit.Source.DocumentTitle, unit.Source.ChunkIndex, unit.Score, unit.Text))
	}
	prompt.WriteString("</evidence>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("- Use ONLY the information in the evidence section\n")
	prompt.WriteString("- If the evidence does not contain enough information, explicitly state that ")
	prompt.WriteString("you cannot answer based on the available documents\n")
	prompt.WriteString("- Be clear, concise, and directly address the question\n")
	prompt.WriteString("- Never introduce facts that are absent from the evidence\n")
	prompt.WriteString("</guidelines>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</user_question>")

	return prompt.String()
}

// buildVerifyPrompt asks the model to cross-check every claim in the draft
// against the evidence and strip or hedge anything unsupported.
func buildVerifyPrompt(question string, context []EvidenceUnit, draft string) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("Check the draft answer against the evidence and eliminate unsupported claims.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<evidence>\n")
	if len(context) == 0 {
		prompt.WriteString("(no evidence was retrieved)\n")
	}
	for i, unit := range context {
		prompt.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, unit.Text))
	}
	prompt.WriteString("</evidence>\n\n")

	prompt.WriteString("<draft_answer>\n")
	prompt.WriteString(draft)
	prompt.WriteString("\n</draft_answer>\n\n")

	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("- Compare every claim in the draft against the evidence\n")
	prompt.WriteString("- Remove or correct any claim the evidence does not support\n")
	prompt.WriteString("- If the entire draft is unsupported, reply that the evidence is insufficient to answer\n")
	prompt.WriteString("- Prefer omission over fabrication\n")
	prompt.WriteString("- Return ONLY the final corrected answer text, no meta-commentary\n")
	prompt.WriteString("</guidelines>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</user_question>")

	return prompt.String()
}
