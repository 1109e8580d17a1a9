package store

import (
	"time"

	"ai-docqa-be/pkg/llm"
)

// Session is the durable continuity unit across question/answer turns,
// addressed by an opaque key. Messages is append-only: turns are added as
// (question, answer) pairs, never edited in place.
type Session struct {
	Key       string        `json:"key"`
	Messages  []llm.Message `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Clone returns a deep copy so callers can read history without racing
// against a concurrent append.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	messages := make([]llm.Message, len(s.Messages))
	copy(messages, s.Messages)
	return &Session{
		Key:       s.Key,
		Messages:  messages,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
