package rag

import (
	"strings"
)

// parsePlanResponse extracts the plan narrative and sub-question list from a
// model response in the "plan:" / "sub_questions:" line format. Returns empty
// results when the response does not follow the format; the caller treats
// that as a degraded plan and falls back.
func parsePlanResponse(content string) (plan string, subQuestions []string) {
	if content == "" {
		return "", nil
	}

	var planLines []string
	inPlan := false
	inSubQ := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "plan:"):
			inPlan = true
			inSubQ = false
			continue
		case strings.HasPrefix(line, "sub_questions:"):
			inPlan = false
			inSubQ = true
			continue
		}

		if inPlan && line != "" && line[0] >= '0' && line[0] <= '9' {
			planLines = append(planLines, line)
		} else if inSubQ && strings.HasPrefix(line, "-") {
			query := strings.Trim(strings.TrimPrefix(line, "-"), " \"")
			if query != "" {
				subQuestions = append(subQuestions, query)
			}
		}
	}

	return strings.Join(planLines, "\n"), dedupeStrings(subQuestions)
}

// dedupeStrings drops duplicate entries while preserving first-seen order.
func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
