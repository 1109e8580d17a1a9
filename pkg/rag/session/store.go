package session

import (
	"sync"
	"time"

	"ai-docqa-be/pkg/llm"
	"ai-docqa-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// Store is an in-memory session store backed by go-cache. Sessions expire
// after the configured TTL and message history is truncated to a sliding
// window so unbounded multi-turn growth cannot exhaust memory.
//
// Read-modify-write access is serialized per key through a keyed mutex;
// different keys never contend.
type Store struct {
	cache  *cache.Cache
	window int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 1 * time.Hour

	// DefaultPurgeInterval is how often expired sessions are swept.
	DefaultPurgeInterval = 10 * time.Minute

	// DefaultWindow caps messages kept per session (25 turns).
	DefaultWindow = 50
)

func NewStore(ttl, purgeInterval time.Duration, window int) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if purgeInterval <= 0 {
		purgeInterval = DefaultPurgeInterval
	}
	if window <= 0 {
		window = DefaultWindow
	}
	s := &Store{
		cache:  cache.New(ttl, purgeInterval),
		window: window,
		locks:  make(map[string]*sync.Mutex),
	}
	// Reap the key lock when the TTL sweep evicts a session, so the locks
	// map does not grow for the life of the process.
	s.cache.OnEvicted(func(key string, _ interface{}) {
		s.releaseLock(key)
	})
	return s
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Get returns a copy of the session so callers can read history without
// racing against a concurrent append.
func (s *Store) Get(key string) (*store.Session, bool) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	x, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	return x.(*store.Session).Clone(), true
}

// AppendTurn appends the (question, answer) pair atomically, creating the
// session on first use.
func (s *Store) AppendTurn(key, question, answer string) (*store.Session, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	now := time.Now()
	var sess *store.Session
	if x, found := s.cache.Get(key); found {
		sess = x.(*store.Session)
	} else {
		sess = &store.Session{Key: key, CreatedAt: now}
	}

	sess.Messages = append(sess.Messages,
		llm.Message{Role: "user", Content: question},
		llm.Message{Role: "assistant", Content: answer},
	)
	if len(sess.Messages) > s.window {
		trimmed := make([]llm.Message, s.window)
		copy(trimmed, sess.Messages[len(sess.Messages)-s.window:])
		sess.Messages = trimmed
	}
	sess.UpdatedAt = now

	s.cache.Set(key, sess, cache.DefaultExpiration)
	return sess.Clone(), nil
}

// releaseLock drops the key's mutex if nobody holds it. A held lock means
// the key is live again (e.g. an append racing an eviction) and keeps it.
func (s *Store) releaseLock(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok && l.TryLock() {
		delete(s.locks, key)
		l.Unlock()
	}
}

// Delete removes a session; lifetime is otherwise caller-controlled via TTL.
func (s *Store) Delete(key string) {
	l := s.keyLock(key)
	l.Lock()
	s.cache.Delete(key)
	l.Unlock()
	s.releaseLock(key)
}
