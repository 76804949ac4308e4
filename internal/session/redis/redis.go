// Package redis provides a Redis-backed [session.Store] for deployments
// where sessions must survive a process restart or be shared between
// replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vorder/vorder/internal/session"
)

const defaultTTL = 30 * time.Minute

// keyPrefix namespaces session keys so the store can share a Redis database
// with other data.
const keyPrefix = "vorder:session:"

// Compile-time assertion that Store satisfies the session.Store interface.
var _ session.Store = (*Store)(nil)

// Option is a functional option for configuring a [Store].
type Option func(*Store)

// WithTTL sets how long an idle session survives. Redis handles the
// eviction; every Put refreshes the clock. Default: 30 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// Store persists sessions as JSON values with a per-key TTL.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New returns a Store over the given client. The client is not closed by
// the store; the caller owns its lifecycle.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, ttl: defaultTTL}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the stored session, or a fresh default when the key is
// missing or expired.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.New(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get %q: %w", id, err)
	}

	var sess session.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		// A corrupt value is unrecoverable; a fresh session beats a
		// permanently broken conversation.
		return session.New(id), nil
	}
	return &sess, nil
}

// Put stores the session and refreshes its TTL.
func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal %q: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set %q: %w", sess.ID, err)
	}
	return nil
}

// Ping verifies connectivity. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("session: redis ping: %w", err)
	}
	return nil
}
