package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetMissingKey(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 50)

	_, found := store.Get("nope")
	assert.False(t, found)
}

func TestStoreAppendTurnCreatesSession(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 50)

	sess, err := store.AppendTurn("key", "question", "answer")
	require.NoError(t, err)

	require.Len(t, sess.Messages, 2)
	assert.Equal(t, "user", sess.Messages[0].Role)
	assert.Equal(t, "question", sess.Messages[0].Content)
	assert.Equal(t, "assistant", sess.Messages[1].Role)
	assert.Equal(t, "answer", sess.Messages[1].Content)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 50)
	_, err := store.AppendTurn("key", "q", "a")
	require.NoError(t, err)

	sess, found := store.Get("key")
	require.True(t, found)
	sess.Messages[0].Content = "mutated"

	again, _ := store.Get("key")
	assert.Equal(t, "q", again.Messages[0].Content)
}

func TestStoreWindowTrimsOldestTurns(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 4)

	for i := 0; i < 5; i++ {
		_, err := store.AppendTurn("key", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		require.NoError(t, err)
	}

	sess, found := store.Get("key")
	require.True(t, found)
	require.Len(t, sess.Messages, 4)
	// Oldest turns fall off; the window keeps the most recent pairs.
	assert.Equal(t, "q3", sess.Messages[0].Content)
	assert.Equal(t, "a4", sess.Messages[3].Content)
}

func TestStoreConcurrentAppendsSameKey(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 1000)

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.AppendTurn("key", fmt.Sprintf("q%d", n), fmt.Sprintf("a%d", n))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, found := store.Get("key")
	require.True(t, found)
	require.Len(t, sess.Messages, turns*2, "no appended turn may be lost")

	// Pairs stay adjacent regardless of interleaving.
	for i := 0; i < len(sess.Messages); i += 2 {
		assert.Equal(t, "user", sess.Messages[i].Role)
		assert.Equal(t, "assistant", sess.Messages[i+1].Role)
	}
}

func TestStoreDistinctKeysDoNotInterleave(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 50)

	var wg sync.WaitGroup
	for _, key := range []string{"a", "b"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := store.AppendTurn(k, "q-"+k, "a-"+k)
				assert.NoError(t, err)
			}
		}(key)
	}
	wg.Wait()

	for _, key := range []string{"a", "b"} {
		sess, found := store.Get(key)
		require.True(t, found)
		require.Len(t, sess.Messages, 20)
		for _, msg := range sess.Messages {
			assert.Contains(t, msg.Content, key)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 50)
	_, err := store.AppendTurn("key", "q", "a")
	require.NoError(t, err)

	store.Delete("key")

	_, found := store.Get("key")
	assert.False(t, found)
}

func TestStoreDeleteReleasesKeyLock(t *testing.T) {
	store := NewStore(time.Hour, time.Hour, 50)
	_, err := store.AppendTurn("key", "q", "a")
	require.NoError(t, err)

	store.Delete("key")

	store.mu.Lock()
	_, ok := store.locks["key"]
	store.mu.Unlock()
	assert.False(t, ok, "deleted session must not leave its key lock behind")
}

func TestStoreExpiryReleasesKeyLock(t *testing.T) {
	store := NewStore(20*time.Millisecond, 30*time.Millisecond, 50)
	_, err := store.AppendTurn("key", "q", "a")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		_, ok := store.locks["key"]
		return !ok
	}, time.Second, 10*time.Millisecond, "TTL sweep must reap the key lock")
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(20*time.Millisecond, time.Hour, 50)
	_, err := store.AppendTurn("key", "q", "a")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, found := store.Get("key")
	assert.False(t, found)
}

func TestTitleFromQuestion(t *testing.T) {
	assert.Equal(t, "short", TitleFromQuestion("short"))

	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	title := TitleFromQuestion(long)
	assert.Len(t, []rune(title), titleMaxLen+3)
}
