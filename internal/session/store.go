package session

import (
	"context"
	"sync"
)

// Store persists sessions between turns.
//
// Get must return a fresh default session (see [New]) for unknown IDs rather
// than an error — sessions come into existence lazily on their first turn.
// Implementations must be safe for concurrent use across different session
// IDs; same-ID turn ordering is the caller's responsibility (see [TurnLocks]).
type Store interface {
	// Get returns the session for id, or a fresh default when none exists.
	Get(ctx context.Context, id string) (*Session, error)

	// Put stores the session under its ID, replacing any previous value.
	Put(ctx context.Context, s *Session) error
}

// TurnLocks serialises turn processing per session ID while letting
// different IDs proceed fully in parallel. Lost updates to the pending
// order and cart are a correctness hazard without it.
//
// Entries are refcounted: an ID's lock exists only while a turn holds or
// waits for it, so the map does not accumulate entries for sessions that
// stopped talking.
//
// The zero value is ready to use.
type TurnLocks struct {
	mu    sync.Mutex
	locks map[string]*turnLock
}

type turnLock struct {
	mu   sync.Mutex
	refs int
}

// Lock acquires the per-ID lock and returns its unlock function.
func (t *TurnLocks) Lock(id string) (unlock func()) {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[string]*turnLock)
	}
	l := t.locks[id]
	if l == nil {
		l = &turnLock{}
		t.locks[id] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, id)
		}
		t.mu.Unlock()
	}
}

// Len reports the number of session IDs with a held or contended lock.
func (t *TurnLocks) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
