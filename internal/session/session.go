// Package session holds the per-conversation mutable state of the dialogue
// core and the Store abstraction it is persisted through.
//
// A Session is a pure in-memory projection of one conversation: what the
// user last asked for, which restaurant is in focus, the in-progress order
// and the confirmed cart. It is not the system of record for completed
// orders — that is the external store's job (see internal/orderlog).
//
// Store implementations must be safe for concurrent use. Turn-by-turn
// mutation of one session must additionally be serialised by the caller;
// [TurnLocks] provides the per-key lock the dialogue engine uses for that.
package session

import "time"

// maxHistory caps the per-session turn history. The history exists for
// audit/debugging only; older turns are dropped from the front once the cap
// is reached.
const maxHistory = 50

// ExpectedContext tags what kind of follow-up the next turn is anticipated
// to be. It drives the disambiguation of short replies like "tak"/"nie".
type ExpectedContext string

const (
	// ContextNeutral means no particular follow-up is expected.
	ContextNeutral ExpectedContext = "neutral"

	// ContextSelectRestaurant means the last turn surfaced a restaurant
	// list and an ordinal or name pick is anticipated.
	ContextSelectRestaurant ExpectedContext = "select_restaurant"

	// ContextConfirmOrder means a pending order awaits a yes/no.
	ContextConfirmOrder ExpectedContext = "confirm_order"
)

// RestaurantRef is a weak reference to a catalog restaurant. The session
// never owns catalog data; the reference carries just enough to render
// replies and re-query the index.
type RestaurantRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Cuisine string `json:"cuisine"`
}

// MenuEntry is one dish as it was shown to the user.
type MenuEntry struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// RestaurantContext pairs the restaurant currently in focus with the menu
// that was shown for it. The two travel as a single value so a stale menu
// can never outlive a restaurant switch.
type RestaurantContext struct {
	Restaurant RestaurantRef `json:"restaurant"`
	Menu       []MenuEntry   `json:"menu,omitempty"`
}

// OrderItem is one line of a pending order or cart.
type OrderItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Qty   int     `json:"qty"`
	Size  string  `json:"size,omitempty"`
}

// PendingOrder is an in-progress, unconfirmed order. At most one exists per
// session; it is destroyed on confirm (folded into the cart) or cancel.
type PendingOrder struct {
	RestaurantID   string      `json:"restaurant_id"`
	RestaurantName string      `json:"restaurant"`
	Items          []OrderItem `json:"items"`
}

// Total returns the sum of the pending items' price×qty.
func (p *PendingOrder) Total() float64 {
	var t float64
	for _, it := range p.Items {
		t += it.Price * float64(it.Qty)
	}
	return t
}

// Cart is the durable accumulation of confirmed items for a session. Items
// are only ever appended by confirmation; Reset is the single shrinking
// operation.
type Cart struct {
	Items []OrderItem `json:"items"`
	Total float64     `json:"total"`
}

// Append adds items to the cart and recomputes the total. The total is
// always derived from the items, never adjusted independently.
func (c *Cart) Append(items []OrderItem) {
	c.Items = append(c.Items, items...)
	c.recompute()
}

// Reset empties the cart.
func (c *Cart) Reset() {
	c.Items = nil
	c.Total = 0
}

func (c *Cart) recompute() {
	c.Total = 0
	for _, it := range c.Items {
		c.Total += it.Price * float64(it.Qty)
	}
}

// OrderSnapshot records a confirmed order at the moment of confirmation.
type OrderSnapshot struct {
	OrderID        string      `json:"order_id"`
	RestaurantID   string      `json:"restaurant_id"`
	RestaurantName string      `json:"restaurant"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total"`
	ConfirmedAt    time.Time   `json:"confirmed_at"`
}

// Snapshot is the caller-visible projection of a session's conversational
// context after a turn: what kind of follow-up is expected and what the
// conversation last surfaced. It carries copies, so callers can hold it
// across turns without observing later session mutations.
type Snapshot struct {
	Expected     ExpectedContext `json:"expected_context"`
	LastIntent   string          `json:"last_intent,omitempty"`
	LastLocation string          `json:"last_location,omitempty"`
	LastCuisine  string          `json:"last_cuisine,omitempty"`
	LastList     []RestaurantRef `json:"last_list,omitempty"`
	LastOrder    *OrderSnapshot  `json:"last_order,omitempty"`
}

// Turn is one processed exchange, kept for audit/debugging.
type Turn struct {
	At     time.Time `json:"at"`
	Text   string    `json:"text"`
	Intent string    `json:"intent"`
	Reply  string    `json:"reply"`
}

// Session is the conversational memory for one session ID.
type Session struct {
	ID         string          `json:"id"`
	Expected   ExpectedContext `json:"expected_context"`
	LastIntent string          `json:"last_intent,omitempty"`

	// Current is the restaurant in focus together with its shown menu.
	// Nil when no restaurant has been resolved yet.
	Current *RestaurantContext `json:"current,omitempty"`

	// LastList is the ordered restaurant list surfaced by the most recent
	// search, with stable 1-based display indices. Replaced wholesale on
	// every new search, never merged.
	LastList []RestaurantRef `json:"last_list,omitempty"`

	LastLocation string `json:"last_location,omitempty"`
	LastCuisine  string `json:"last_cuisine,omitempty"`

	Pending   *PendingOrder  `json:"pending_order,omitempty"`
	Cart      Cart           `json:"cart"`
	LastOrder *OrderSnapshot `json:"last_order,omitempty"`

	History   []Turn    `json:"history,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh session with neutral defaults. Sessions are created
// lazily on a session ID's first turn.
func New(id string) *Session {
	return &Session{
		ID:       id,
		Expected: ContextNeutral,
	}
}

// SetRestaurant replaces the restaurant in focus. The shown menu always
// resets with it — that is the point of the combined value object.
func (s *Session) SetRestaurant(ref RestaurantRef) {
	s.Current = &RestaurantContext{Restaurant: ref}
}

// CurrentRestaurant returns the restaurant in focus, or nil.
func (s *Session) CurrentRestaurant() *RestaurantRef {
	if s.Current == nil {
		return nil
	}
	return &s.Current.Restaurant
}

// Snapshot projects the session's current conversational context.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Expected:     s.Expected,
		LastIntent:   s.LastIntent,
		LastLocation: s.LastLocation,
		LastCuisine:  s.LastCuisine,
		LastList:     append([]RestaurantRef(nil), s.LastList...),
	}
	if s.LastOrder != nil {
		o := *s.LastOrder
		snap.LastOrder = &o
	}
	return snap
}

// AppendHistory records a processed turn, truncating from the front once
// the history cap is reached.
func (s *Session) AppendHistory(t Turn) {
	s.History = append(s.History, t)
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}

// ResetVolatile drops the pending order and expected context, returning the
// session to a neutral state. Used for explicit cancellation flows and as
// the recovery action after an internal invariant break.
func (s *Session) ResetVolatile() {
	s.Pending = nil
	s.Expected = ContextNeutral
}
