// Package postgres provides the PostgreSQL-backed [orderlog.Sink].
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vorder/vorder/internal/orderlog"
)

// Schema is the SQL DDL for the confirmed_orders table. Execute it via
// [Sink.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS confirmed_orders (
    id              TEXT PRIMARY KEY,
    session_id      TEXT NOT NULL,
    restaurant_id   TEXT NOT NULL,
    restaurant_name TEXT NOT NULL,
    items           JSONB NOT NULL DEFAULT '[]',
    total           NUMERIC(10,2) NOT NULL DEFAULT 0,
    confirmed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_confirmed_orders_session ON confirmed_orders(session_id);
CREATE INDEX IF NOT EXISTS idx_confirmed_orders_restaurant ON confirmed_orders(restaurant_id);
`

// DB is the database interface used by [Sink]. Both *pgxpool.Pool and
// *pgx.Conn satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sink records confirmed orders in PostgreSQL. Order items are serialised
// as JSONB.
type Sink struct {
	db DB
}

var _ orderlog.Sink = (*Sink)(nil)

// New creates a Sink over the given connection or pool. The caller is
// responsible for calling [Sink.Migrate] before issuing writes.
func New(db DB) *Sink {
	return &Sink{db: db}
}

// Migrate executes the [Schema] DDL, creating the confirmed_orders table
// and indexes if they do not already exist.
func (s *Sink) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("orderlog: migrate: %w", err)
	}
	return nil
}

// Record inserts one confirmed order. Recording the same order ID twice is
// not an error; confirmation already happened and a retry must not fail.
func (s *Sink) Record(ctx context.Context, o orderlog.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("orderlog: marshal items: %w", err)
	}

	const query = `
		INSERT INTO confirmed_orders (
			id, session_id, restaurant_id, restaurant_name, items, total, confirmed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`

	if _, err := s.db.Exec(ctx, query,
		o.ID, o.SessionID, o.RestaurantID, o.RestaurantName, itemsJSON, o.Total, o.ConfirmedAt,
	); err != nil {
		return fmt.Errorf("orderlog: record %q: %w", o.ID, err)
	}
	return nil
}

// BySession returns the confirmed orders of one session, oldest first.
func (s *Sink) BySession(ctx context.Context, sessionID string) ([]orderlog.Order, error) {
	const query = `
		SELECT id, session_id, restaurant_id, restaurant_name, items, total, confirmed_at
		FROM confirmed_orders
		WHERE session_id = $1
		ORDER BY confirmed_at`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("orderlog: by session %q: %w", sessionID, err)
	}
	defer rows.Close()

	var orders []orderlog.Order
	for rows.Next() {
		var o orderlog.Order
		var itemsJSON []byte
		if err := rows.Scan(
			&o.ID, &o.SessionID, &o.RestaurantID, &o.RestaurantName,
			&itemsJSON, &o.Total, &o.ConfirmedAt,
		); err != nil {
			return nil, fmt.Errorf("orderlog: by session scan: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("orderlog: unmarshal items: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orderlog: by session %q: %w", sessionID, err)
	}
	return orders, nil
}

// Get returns one confirmed order by ID, or (nil, nil) when none exists.
func (s *Sink) Get(ctx context.Context, id string) (*orderlog.Order, error) {
	const query = `
		SELECT id, session_id, restaurant_id, restaurant_name, items, total, confirmed_at
		FROM confirmed_orders
		WHERE id = $1`

	var o orderlog.Order
	var itemsJSON []byte
	err := s.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SessionID, &o.RestaurantID, &o.RestaurantName,
		&itemsJSON, &o.Total, &o.ConfirmedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("orderlog: get %q: %w", id, err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("orderlog: unmarshal items: %w", err)
	}
	return &o, nil
}
