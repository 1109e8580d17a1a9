package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	data := []byte(`{"document_id":"doc-1","occurred_at":"2026-08-30T10:00:00Z"}`)

	evt, err := decodeEvent("events.DOCUMENT_INDEXED", data)
	require.NoError(t, err)

	assert.Equal(t, "DOCUMENT_INDEXED", evt.EventType())
	assert.Equal(t, "doc-1", evt.Payload()["document_id"])
	assert.Equal(t, 2026, evt.Timestamp().Year())
}

func TestDecodeEventRejectsBadPayload(t *testing.T) {
	_, err := decodeEvent("events.DOCUMENT_INDEXED", []byte("not json"))
	assert.Error(t, err)
}

func TestDecodeEventDefaultsTimestamp(t *testing.T) {
	evt, err := decodeEvent("events.QUESTION_ANSWERED", []byte(`{"question":"q"}`))
	require.NoError(t, err)
	assert.False(t, evt.Timestamp().IsZero())
}
