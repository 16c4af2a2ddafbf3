package session

import (
	"context"
	"sync"
	"time"
)

// memoryEntry holds an encoded session with its lookup token and expiry.
type memoryEntry struct {
	expiresAt time.Time
	token     string
	data      []byte
}

// MemoryStore is an in-process Store. Sessions are kept encoded so callers
// never share mutable state with the store.
type MemoryStore struct {
	items  map[string]*memoryEntry // by session ID
	tokens map[string]string       // token -> session ID
	done   chan struct{}
	opts   *memoryOptions
	mu     sync.Mutex
	closed bool
}

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	cleanupInterval time.Duration
}

// WithCleanupInterval sets how often expired sessions are removed
// by the background janitor goroutine. Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// NewMemoryStore creates an in-memory session store.
//
// Example:
//
//	store := session.NewMemoryStore(session.WithCleanupInterval(30 * time.Second))
//	defer store.Close()
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	o := &memoryOptions{cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(o)
	}

	m := &MemoryStore{
		items:  make(map[string]*memoryEntry),
		tokens: make(map[string]string),
		opts:   o,
		done:   make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Create persists a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	return m.put(s)
}

// Get retrieves a session by token.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	e := m.items[id]
	if time.Now().After(e.expiresAt) {
		m.remove(id)
		return nil, ErrExpired
	}

	return Unmarshal(e.data)
}

// Update saves the session, re-indexing it when its token was rotated.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	return m.put(s)
}

// Delete removes a session by ID. Missing sessions are not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.remove(id)
	return nil
}

// Len returns the number of stored sessions, including expired ones
// not yet collected.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the background janitor. Close is idempotent.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *MemoryStore) put(s *Session) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if prev, ok := m.items[s.ID]; ok && prev.token != s.Token {
		delete(m.tokens, prev.token)
	}
	m.items[s.ID] = &memoryEntry{token: s.Token, data: data, expiresAt: s.ExpiresAt}
	m.tokens[s.Token] = s.ID
	return nil
}

// remove deletes a session and its token index.
// Caller must hold the mutex.
func (m *MemoryStore) remove(id string) {
	if e, ok := m.items[id]; ok {
		delete(m.tokens, e.token)
		delete(m.items, id)
	}
}

func (m *MemoryStore) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *MemoryStore) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, e := range m.items {
		if now.After(e.expiresAt) {
			m.remove(id)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
