// Package blob implements the ephemeral store for client-uploaded
// reference images. Handles live just long enough for the external worker
// to fetch them by URL: an absolute TTL bounds unfetched handles, and each
// fetch re-arms a short grace timer instead of deleting immediately,
// because the worker may re-fetch the same URL.
package blob

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for unknown or already-evicted handles.
// Eviction is part of normal operation, so callers should treat this as an
// expected outcome rather than a fault.
var ErrNotFound = errors.New("blob not found")

// Default retention windows. TTL bounds handles that are never fetched;
// the grace window keeps a handle alive after a fetch so the worker can
// retry the same URL.
const (
	DefaultTTL   = 10 * time.Minute
	DefaultGrace = 30 * time.Second
)

// handle is one stored blob plus its pending eviction timer.
type handle struct {
	data  []byte
	mime  string
	timer *time.Timer
}

// Store holds uploaded bytes under generated ids. It is safe for
// concurrent use; retrieval and eviction rescheduling happen under one
// lock so a firing timer never races a concurrent Get destructively.
type Store struct {
	mu      sync.Mutex
	handles map[string]*handle
	ttl     time.Duration
	grace   time.Duration
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the absolute lifetime of unfetched handles.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithGrace overrides the post-fetch retention window.
func WithGrace(grace time.Duration) Option {
	return func(s *Store) {
		if grace > 0 {
			s.grace = grace
		}
	}
}

// NewStore creates an empty blob store with the given options.
func NewStore(opts ...Option) *Store {
	s := &Store{
		handles: make(map[string]*handle),
		ttl:     DefaultTTL,
		grace:   DefaultGrace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores the bytes under a fresh handle id and arms the absolute TTL
// timer. Content checks (size, accepted types) are the caller's job; the
// store is content-agnostic.
func (s *Store) Put(data []byte, mimeType string) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return id
	}

	h := &handle{data: data, mime: mimeType}
	h.timer = time.AfterFunc(s.ttl, func() { s.evict(id) })
	s.handles[id] = h

	return id
}

// Get returns the stored bytes and content type for the handle, and
// re-arms its eviction for the grace window. Returns ErrNotFound for
// unknown or evicted handles.
func (s *Store) Get(id string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handles[id]
	if !ok {
		return nil, "", ErrNotFound
	}

	// Replace whichever timer is pending (absolute TTL or a previous
	// grace window) with a fresh grace timer.
	h.timer.Stop()
	h.timer = time.AfterFunc(s.grace, func() { s.evict(id) })

	return h.data, h.mime, nil
}

// Len reports the number of live handles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Close evicts all handles and stops their timers. The store accepts no
// new handles afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, h := range s.handles {
		h.timer.Stop()
		delete(s.handles, id)
	}
}

// evict removes a handle once its timer fires.
func (s *Store) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handles, id)
}
