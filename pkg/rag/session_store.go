package rag

import (
	"ai-docqa-be/pkg/store"
)

// SessionStore is the durable keyed store of conversation history. AppendTurn
// is atomic per key: two concurrent appends against the same key never
// interleave or lose an update, while different keys proceed independently.
type SessionStore interface {
	// Get returns the session for the key, or (nil, false) when none exists.
	Get(key string) (*store.Session, bool)

	// AppendTurn appends the (question, answer) pair to the session's
	// history, creating the session on first use, and returns the updated
	// session.
	AppendTurn(key, question, answer string) (*store.Session, error)
}
