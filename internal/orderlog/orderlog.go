// Package orderlog records confirmed orders in an external system of
// record. The dialogue session keeps only a working projection of the cart;
// once an order is confirmed it is handed to a Sink and the authoritative
// copy lives there.
package orderlog

import (
	"context"
	"time"
)

// Item is one confirmed order line.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
	Size  string  `json:"size,omitempty"`
}

// Order is a confirmed order as handed to a [Sink].
type Order struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	RestaurantID   string    `json:"restaurant_id"`
	RestaurantName string    `json:"restaurant"`
	Items          []Item    `json:"items"`
	Total          float64   `json:"total"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// Sink persists confirmed orders. Recording is best-effort from the
// dialogue's point of view: a Sink failure is logged by the caller but never
// rolls back the in-session confirmation.
type Sink interface {
	Record(ctx context.Context, o Order) error
}

// Discard is a Sink that drops every order. Used when no order store is
// configured.
type Discard struct{}

var _ Sink = Discard{}

func (Discard) Record(context.Context, Order) error { return nil }
