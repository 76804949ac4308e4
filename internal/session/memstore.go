package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vorder/vorder/internal/observe"
)

const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStoreOption is a functional option for configuring a [MemStore].
type MemStoreOption func(*MemStore)

// WithTTL sets how long an idle session survives before the reaper evicts
// it. Default: 30 minutes. A non-positive TTL disables eviction.
func WithTTL(ttl time.Duration) MemStoreOption {
	return func(s *MemStore) {
		s.ttl = ttl
	}
}

// WithSweepInterval sets how often the reaper scans for expired sessions.
// Default: 5 minutes.
func WithSweepInterval(d time.Duration) MemStoreOption {
	return func(s *MemStore) {
		s.sweepInterval = d
	}
}

// WithMetrics wires the store to the active-sessions gauge.
func WithMetrics(m *observe.Metrics) MemStoreOption {
	return func(s *MemStore) {
		s.metrics = m
	}
}

// MemStore is a thread-safe in-memory [Store] with TTL-based eviction.
// Suitable for single-process deployments and tests; use the redis
// subpackage when sessions must survive a restart.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl           time.Duration
	sweepInterval time.Duration
	metrics       *observe.Metrics

	// now is swappable for tests.
	now func() time.Time
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		sessions:      make(map[string]*Session),
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get implements [Store.Get]. Unknown IDs yield a fresh default session;
// the store is not mutated until the caller Puts it back.
func (s *MemStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return New(id), nil
}

// Put implements [Store.Put].
func (s *MemStore) Put(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()

	s.mu.Lock()
	_, existed := s.sessions[sess.ID]
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if !existed && s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, 1)
	}
	return nil
}

// Len returns the number of live sessions.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartReaper launches the TTL sweep loop. It stops when ctx is cancelled.
// Calling StartReaper with a non-positive TTL is a no-op.
func (s *MemStore) StartReaper(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					slog.Debug("session reaper evicted idle sessions", "count", n)
				}
			}
		}
	}()
}

// sweep removes sessions idle longer than the TTL and returns how many were
// evicted.
func (s *MemStore) sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted int
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}

	if evicted > 0 && s.metrics != nil {
		s.metrics.ActiveSessions.Add(context.Background(), int64(-evicted))
	}
	return evicted
}
