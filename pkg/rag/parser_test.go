package rag

import (
	"testing"
)

func TestParsePlanResponse(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantPlan     string
		wantSubCount int
	}{
		{
			name: "well formed response",
			content: `plan:
1. Find the report findings
2. Find the comparison data
sub_questions:
- "report main findings"
- "findings comparison last year"`,
			wantPlan:     "1. Find the report findings\n2. Find the comparison data",
			wantSubCount: 2,
		},
		{
			name:         "empty response",
			content:      "",
			wantPlan:     "",
			wantSubCount: 0,
		},
		{
			name:         "free text without markers",
			content:      "I think you should search for the report first.",
			wantPlan:     "",
			wantSubCount: 0,
		},
		{
			name: "duplicate sub-questions collapse",
			content: `sub_questions:
- "report findings"
- "report findings"
- "comparison data"`,
			wantPlan:     "",
			wantSubCount: 2,
		},
		{
			name: "unquoted sub-questions",
			content: `sub_questions:
- report findings
- comparison data`,
			wantPlan:     "",
			wantSubCount: 2,
		},
		{
			name: "plan lines without numbering are ignored",
			content: `plan:
first look at the report
1. Find the findings
sub_questions:
- "findings"`,
			wantPlan:     "1. Find the findings",
			wantSubCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, subQuestions := parsePlanResponse(tt.content)

			if plan != tt.wantPlan {
				t.Errorf("plan = %q, want %q", plan, tt.wantPlan)
			}
			if len(subQuestions) != tt.wantSubCount {
				t.Errorf("sub-question count = %d, want %d", len(subQuestions), tt.wantSubCount)
			}
		})
	}
}

func TestDedupeStrings(t *testing.T) {
	got := dedupeStrings([]string{"a", "b", "a", "c", "b"})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("dedupeStrings = %v, want [a b c]", got)
	}
}
