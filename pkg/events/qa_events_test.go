package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocumentIndexFailedEvent(t *testing.T) {
	documentId := uuid.New()
	userId := uuid.New()

	evt := NewDocumentIndexFailedEvent(documentId, userId, "read stored file: no such file")

	assert.Equal(t, TypeDocumentIndexFailed, evt.EventType())
	assert.Equal(t, documentId.String(), evt.Payload()["document_id"])
	assert.Equal(t, "read stored file: no such file", evt.Payload()["reason"])
	assert.False(t, evt.Timestamp().IsZero())
}

func TestQuestionAnswerFailedEvent(t *testing.T) {
	sessionId := uuid.New()
	userId := uuid.New()

	evt := NewQuestionAnswerFailedEvent(sessionId, userId, "what failed?", "stage draft: drafting failed")

	assert.Equal(t, TypeQuestionAnswerFailed, evt.EventType())
	assert.Equal(t, sessionId.String(), evt.Payload()["session_id"])
	assert.Equal(t, "stage draft: drafting failed", evt.Payload()["reason"])
	assert.False(t, evt.Timestamp().IsZero())
}
