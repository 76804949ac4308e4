// Package postgres provides a [catalog.Source] backed by PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vorder/vorder/internal/catalog"
)

// Schema is the SQL DDL for the catalog tables. Execute it via
// [Source.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS restaurants (
    id      TEXT PRIMARY KEY,
    name    TEXT NOT NULL,
    city    TEXT NOT NULL DEFAULT '',
    cuisine TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_restaurants_city ON restaurants(city);

CREATE TABLE IF NOT EXISTS menu_items (
    id            TEXT PRIMARY KEY,
    restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    price         NUMERIC(10,2) NOT NULL DEFAULT 0,
    available     BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_menu_items_restaurant ON menu_items(restaurant_id);
`

// DB is the database interface used by [Source]. Both *pgxpool.Pool and
// *pgx.Conn satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Source reads the catalog from PostgreSQL. The [catalog.Index] snapshots
// it periodically, so queries here are simple full scans.
type Source struct {
	db DB
}

var _ catalog.Source = (*Source)(nil)

// New creates a Source over the given connection or pool. The caller is
// responsible for calling [Source.Migrate] before issuing queries.
func New(db DB) *Source {
	return &Source{db: db}
}

// Migrate executes the [Schema] DDL, creating the catalog tables and
// indexes if they do not already exist.
func (s *Source) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

// ListRestaurants implements catalog.Source. Rows come back in insertion
// order via the primary key so snapshot ordering is stable across refreshes.
func (s *Source) ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	const query = `SELECT id, name, city, cuisine FROM restaurants ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog: list restaurants: %w", err)
	}
	defer rows.Close()

	var out []catalog.Restaurant
	for rows.Next() {
		var r catalog.Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.City, &r.Cuisine); err != nil {
			return nil, fmt.Errorf("catalog: list restaurants scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list restaurants: %w", err)
	}
	return out, nil
}

// ListMenuItems implements catalog.Source. An unknown restaurant ID yields
// an empty slice, not an error.
func (s *Source) ListMenuItems(ctx context.Context, restaurantID string) ([]catalog.MenuItem, error) {
	const query = `
		SELECT id, restaurant_id, name, price, available
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY id`

	rows, err := s.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list menu of %q: %w", restaurantID, err)
	}
	defer rows.Close()

	var out []catalog.MenuItem
	for rows.Next() {
		var it catalog.MenuItem
		if err := rows.Scan(&it.ID, &it.RestaurantID, &it.Name, &it.Price, &it.Available); err != nil {
			return nil, fmt.Errorf("catalog: list menu scan: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list menu of %q: %w", restaurantID, err)
	}
	return out, nil
}
