// Package intent defines the dialogue intents, the classifier contract, and
// the deterministic booster that corrects low-confidence classifications.
//
// The probabilistic classifier (see the llmclass subpackage) is treated as an
// external oracle: it proposes an (intent, confidence) pair and may fail or
// time out. The [Booster] then applies an ordered, hand-curated rule table —
// first match wins — so that every correction is traceable to exactly one
// rule. That auditability is the reason the rules are a priority list rather
// than a scoring model.
package intent

import (
	"context"

	"github.com/vorder/vorder/internal/session"
)

// Intent is a dialogue intent tag.
type Intent string

const (
	// FindRestaurants searches the catalog by location and/or cuisine.
	FindRestaurants Intent = "find_restaurants"

	// ShowMenu requests the menu of a restaurant.
	ShowMenu Intent = "show_menu"

	// SelectRestaurant picks a restaurant from the last surfaced list.
	SelectRestaurant Intent = "select_restaurant"

	// CreateOrder starts or extends a pending order.
	CreateOrder Intent = "create_order"

	// ConfirmOrder confirms the pending order into the cart.
	ConfirmOrder Intent = "confirm_order"

	// CancelOrder drops the pending order.
	CancelOrder Intent = "cancel_order"

	// ChangeRestaurant rejects the current restaurant choice.
	ChangeRestaurant Intent = "change_restaurant"

	// Recommend asks for a suggestion.
	Recommend Intent = "recommend"

	// Unknown is the fallback when neither the classifier nor the rules
	// produce a verdict.
	Unknown Intent = "unknown"
)

// IsValid reports whether i is a recognised intent tag.
func (i Intent) IsValid() bool {
	switch i {
	case FindRestaurants, ShowMenu, SelectRestaurant, CreateOrder,
		ConfirmOrder, CancelOrder, ChangeRestaurant, Recommend, Unknown:
		return true
	}
	return false
}

// Classification is the provisional verdict of a probabilistic classifier.
type Classification struct {
	Intent     Intent
	Confidence float64
}

// Classifier proposes a provisional intent for an utterance. Implementations
// must degrade rather than fail: on timeout, transport error, or a malformed
// model response they return {Unknown, 0} with a nil error so the turn can
// continue through the rule-based booster.
type Classifier interface {
	Classify(ctx context.Context, text string, sess *session.Session) (Classification, error)
}
