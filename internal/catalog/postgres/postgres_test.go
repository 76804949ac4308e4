package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ---------------------------------------------------------------------------
// Test helpers — mock DB types
// ---------------------------------------------------------------------------

// mockRows implements pgx.Rows for testing.
type mockRows struct {
	data   [][]any
	idx    int
	err    error
	closed bool
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

func (r *mockRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *mockRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: expected %d columns, got %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *bool:
			*d = v.(bool)
		default:
			return fmt.Errorf("scan: unsupported destination type %T", dest[i])
		}
	}
	return nil
}

// mockDB implements the DB interface.
type mockDB struct {
	rows     pgx.Rows
	queryErr error

	execSQL string
	execErr error
}

func (m *mockDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (m *mockDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.rows, nil
}

func (m *mockDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	m.execSQL = sql
	return pgconn.CommandTag{}, m.execErr
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestListRestaurants(t *testing.T) {
	rows := &mockRows{data: [][]any{
		{"r1", "Monte Carlo", "Piekary Śląskie", "włoska"},
		{"r2", "Sushi Zen", "Katowice", "azjatycka"},
	}}
	src := New(&mockDB{rows: rows})

	got, err := src.ListRestaurants(context.Background())
	if err != nil {
		t.Fatalf("ListRestaurants: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d restaurants, want 2", len(got))
	}
	if got[0].ID != "r1" || got[0].Name != "Monte Carlo" || got[0].City != "Piekary Śląskie" {
		t.Errorf("restaurant[0] = %+v", got[0])
	}
	if !rows.closed {
		t.Error("rows were not closed")
	}
}

func TestListRestaurants_QueryError(t *testing.T) {
	src := New(&mockDB{queryErr: errors.New("connection refused")})

	if _, err := src.ListRestaurants(context.Background()); err == nil {
		t.Error("want error, got nil")
	}
}

func TestListMenuItems(t *testing.T) {
	rows := &mockRows{data: [][]any{
		{"m1", "r1", "Margherita", 26.0, true},
		{"m2", "r1", "Lasagne", 31.0, false},
	}}
	src := New(&mockDB{rows: rows})

	got, err := src.ListMenuItems(context.Background(), "r1")
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].Name != "Margherita" || got[0].Price != 26.0 || !got[0].Available {
		t.Errorf("item[0] = %+v", got[0])
	}
	if got[1].Available {
		t.Error("Lasagne should be unavailable")
	}
}

func TestListMenuItems_Empty(t *testing.T) {
	src := New(&mockDB{rows: &mockRows{}})

	got, err := src.ListMenuItems(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d items for unknown restaurant, want 0", len(got))
	}
}

func TestMigrate(t *testing.T) {
	db := &mockDB{}
	src := New(db)

	if err := src.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !strings.Contains(db.execSQL, "CREATE TABLE IF NOT EXISTS restaurants") {
		t.Error("Migrate did not execute the schema DDL")
	}
}

func TestMigrate_Error(t *testing.T) {
	src := New(&mockDB{execErr: errors.New("permission denied")})

	if err := src.Migrate(context.Background()); err == nil {
		t.Error("want error, got nil")
	}
}
