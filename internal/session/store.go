package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/polyglot/internal/observe"
)

// ErrNotFound is returned for unknown or evicted session IDs.
var ErrNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex // held for the whole duration of an action
	state    State
	lastUsed time.Time // guarded by mu
}

// Store keeps sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	root    string
	ttl     time.Duration
	now     func() time.Time
	metrics *observe.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the idle time after which Reap evicts a session. Zero disables eviction.
func WithTTL(d time.Duration) Option { return func(s *Store) { s.ttl = d } }

// WithMetrics records the active session gauge.
func WithMetrics(m *observe.Metrics) Option { return func(s *Store) { s.metrics = m } }

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// NewStore creates a store whose sessions keep artifacts under root/<id>.
func NewStore(root string, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		root:     root,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create starts a session in typed mode with empty state.
func (s *Store) Create(ctx context.Context) (Snapshot, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Snapshot{}, fmt.Errorf("creating artifact dir: %w", err)
	}

	e := &entry{
		state:    State{ID: id, Dir: dir, Mode: ModeTyped},
		lastUsed: s.now(),
	}
	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	s.metrics.SessionOpened(ctx)
	slog.Info("session created", "session_id", id)
	return e.state.Snapshot(), nil
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// Do runs fn with exclusive access to the session state. Actions on one
// session run one at a time in lock acquisition order; distinct sessions run
// in parallel.
func (s *Store) Do(id string, fn func(*State) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	// The session may have been deleted while we waited for the lock.
	if _, err := s.lookup(id); err != nil {
		return err
	}
	e.lastUsed = s.now()
	return fn(&e.state)
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Snapshot, error) {
	var snap Snapshot
	err := s.Do(id, func(st *State) error {
		snap = st.Snapshot()
		return nil
	})
	return snap, err
}

// Delete removes a session and its artifacts.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	dir := e.state.Dir
	e.mu.Unlock()

	s.release(ctx, id, dir)
	slog.Info("session deleted", "session_id", id)
	return nil
}

// deleteIfIdle evicts id only if it is not busy and was last used before
// cutoff, both checked under the session lock.
func (s *Store) deleteIfIdle(ctx context.Context, id string, cutoff time.Time) bool {
	e, err := s.lookup(id)
	if err != nil || !e.mu.TryLock() {
		return false
	}
	if !e.lastUsed.Before(cutoff) {
		e.mu.Unlock()
		return false
	}

	s.mu.Lock()
	cur, ok := s.sessions[id]
	evicted := ok && cur == e
	if evicted {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	dir := e.state.Dir
	e.mu.Unlock()

	if evicted {
		s.release(ctx, id, dir)
	}
	return evicted
}

func (s *Store) release(ctx context.Context, id, dir string) {
	s.metrics.SessionClosed(ctx)
	if err := os.RemoveAll(dir); err != nil {
		slog.Warn("removing session artifacts failed", "session_id", id, "error", err)
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reap evicts sessions idle longer than the TTL and returns how many went.
// Sessions busy with an action are skipped.
func (s *Store) Reap(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.RLock()
	var stale []string
	for id, e := range s.sessions {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}
	s.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if s.deleteIfIdle(ctx, id, cutoff) {
			n++
		}
	}
	if n > 0 {
		slog.Info("evicted idle sessions", "count", n, "remaining", s.Len())
	}
	return n
}

// Run reaps on every tick until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if s.ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Reap(ctx)
		}
	}
}
