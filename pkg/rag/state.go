package rag

import (
	"ai-docqa-be/pkg/llm"
)

// RunState names the position of a pipeline run in its linear lifecycle.
type RunState string

const (
	StatePlanning   RunState = "PLANNING"
	StateRetrieving RunState = "RETRIEVING"
	StateDrafting   RunState = "DRAFTING"
	StateVerifying  RunState = "VERIFYING"
	StateComplete   RunState = "COMPLETE"
	StateFailed     RunState = "FAILED"
)

// SourceLocation points back at the indexed chunk an evidence unit came from.
type SourceLocation struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	ChunkIndex    int    `json:"chunk_index"`
}

// EvidenceUnit is a scored, source-attributed passage returned by the
// retriever. Immutable once produced.
type EvidenceUnit struct {
	Text        string         `json:"text"`
	Source      SourceLocation `json:"source"`
	Score       float64        `json:"score"`
	SubQuestion string         `json:"sub_question"`
}

// ConversationState is the unit threaded through the pipeline. It is scoped
// to a single turn; cross-turn continuity lives only in Messages, which is
// carried in from the session store and never mutated in place.
//
// Each stage writes only its own output fields:
//
//	Plan stage     -> Plan, SubQuestions
//	Retrieve stage -> Context
//	Draft stage    -> DraftAnswer
//	Verify stage   -> Answer
type ConversationState struct {
	SessionKey   string
	Question     string
	Plan         string
	SubQuestions []string
	Context      []EvidenceUnit
	DraftAnswer  string
	Answer       string
	Messages     []llm.Message
}

// Result is the caller-facing output of a pipeline run.
type Result struct {
	Answer       string         `json:"answer"`
	Context      []EvidenceUnit `json:"context"`
	Plan         string         `json:"plan"`
	SubQuestions []string       `json:"sub_questions"`
	SessionKey   string         `json:"session_key"`
}
