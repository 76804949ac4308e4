// Package resolve extracts catalog entities from a raw utterance: location,
// cuisine, restaurant name, dishes with quantity and size, and an ordinal
// pick into the last surfaced restaurant list.
//
// The resolver never fails; every field of [Entities] is optional and
// absence is meaningful — it tells the orchestrator to fall back to the
// session context or to ask a clarification, never to raise an error.
// Matching goes through the catalog index, so misspelled and declined forms
// resolve the same way everywhere.
package resolve

import (
	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/internal/session"
	"github.com/vorder/vorder/pkg/textnorm"
)

// Dish is one requested dish before menu resolution. Name is the raw
// user phrasing; the orchestrator resolves it against the menu of the
// restaurant in focus.
type Dish struct {
	Name string
	Qty  int
	Size string
}

// Entities is the result of one extraction pass. Zero values mean "not
// present in the utterance".
type Entities struct {
	// Location is the canonical city when the utterance names one.
	Location string

	// Cuisine is the first canonical cuisine tag matched, empty when none.
	Cuisine string

	// Restaurant is the resolved catalog restaurant, nil when the
	// utterance names none (meaning: use the session's restaurant).
	Restaurant *catalog.Restaurant

	// Dishes are the requested dishes in utterance order.
	Dishes []Dish

	// Ordinal is a 1-based pick into the last surfaced restaurant list,
	// 0 when absent.
	Ordinal int
}

// Resolver extracts entities against one catalog index. Safe for concurrent
// use; the resolver itself is stateless.
type Resolver struct {
	index *catalog.Index
}

// New returns a Resolver backed by the given index.
func New(index *catalog.Index) *Resolver {
	return &Resolver{index: index}
}

// Extract runs every extraction pass over text. The session is consulted
// only for list-relative references; Extract never mutates it.
func (r *Resolver) Extract(text string, sess *session.Session) Entities {
	var e Entities

	e.Restaurant = r.extractRestaurant(text)
	e.Location = r.extractLocation(text, e.Restaurant)

	if tags := catalog.CuisinesMatching(textnorm.Normalize(text)); len(tags) > 0 {
		e.Cuisine = tags[0]
	}

	e.Dishes = r.extractDishes(text, e.Restaurant)
	e.Ordinal = extractOrdinal(text)

	// An ordinal only means something relative to a surfaced list.
	if sess == nil || len(sess.LastList) == 0 {
		e.Ordinal = 0
	}

	return e
}
