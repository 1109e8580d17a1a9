package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestHubDropsSlowClientWithoutPanic(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	// Unbuffered Send with no reader forces the drop path on delivery.
	client := &Client{Hub: hub, SessionKey: "s1", Send: make(chan []byte)}
	hub.register <- client

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients["s1"]) == 1
	}, time.Second, 5*time.Millisecond)

	hub.sendLocal("s1", []byte("progress"))

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.clients["s1"]
		return !ok
	}, time.Second, 5*time.Millisecond)

	// The unregister handler closed Send exactly once.
	_, open := <-client.Send
	assert.False(t, open)

	// Further fan-out for the key is a no-op, not a second close.
	hub.sendLocal("s1", []byte("progress"))
}

func TestHubFanOutReachesAllTabs(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	first := &Client{Hub: hub, SessionKey: "s1", Send: make(chan []byte, 4)}
	second := &Client{Hub: hub, SessionKey: "s1", Send: make(chan []byte, 4)}
	hub.register <- first
	hub.register <- second

	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients["s1"]) == 2
	}, time.Second, 5*time.Millisecond)

	hub.sendLocal("s1", []byte("progress"))

	assert.Equal(t, []byte("progress"), <-first.Send)
	assert.Equal(t, []byte("progress"), <-second.Send)
}
