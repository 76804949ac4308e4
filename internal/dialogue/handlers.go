package dialogue

import (
	"context"

	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/resolve"
	"github.com/vorder/vorder/internal/session"
)

// apply routes a decided intent to its handler. Handlers mutate the session
// in place; persistence happens once afterwards in ProcessTurn.
func (e *Engine) apply(ctx context.Context, sess *session.Session, in intent.Intent, ents resolve.Entities) TurnResult {
	// A pick into a freshly surfaced list wins over a weak or ambiguous
	// verdict: "poproszę pierwszą" right after a search is a selection,
	// not an order for a dish called "pierwsza". Explicit menu, search,
	// cancel, and confirm turns are not overridden.
	if sess.Expected == session.ContextSelectRestaurant &&
		len(ents.Dishes) == 0 &&
		(ents.Ordinal > 0 || ents.Restaurant != nil) &&
		(in == intent.Unknown || in == intent.CreateOrder) {
		in = intent.SelectRestaurant
	}

	var res TurnResult
	switch in {
	case intent.FindRestaurants:
		res = e.applyFind(sess, ents)
	case intent.ShowMenu:
		res = e.applyShowMenu(sess, ents)
	case intent.SelectRestaurant:
		res = e.applySelect(sess, ents)
	case intent.CreateOrder:
		res = e.applyCreateOrder(sess, ents)
	case intent.ConfirmOrder:
		res = e.applyConfirm(ctx, sess)
	case intent.CancelOrder:
		res = e.applyCancel(sess)
	case intent.ChangeRestaurant:
		res = e.applyChange(sess, ents)
	case intent.Recommend:
		res = e.applyRecommend(sess, ents)
	default:
		res = TurnResult{Reply: replyUnknown}
	}
	res.Intent = in
	return res
}

// applyFind searches the catalog. Filters absent from the utterance fall
// back to the session's previous search, so "coś włoskiego" after a city
// search stays in that city. The surfaced list replaces the previous one
// wholesale.
func (e *Engine) applyFind(sess *session.Session, ents resolve.Entities) TurnResult {
	location := ents.Location
	if location == "" {
		location = sess.LastLocation
	}
	cuisine := ents.Cuisine
	if cuisine == "" {
		cuisine = sess.LastCuisine
	}

	matches := e.index.FilterRestaurants(location, cuisine)
	if len(matches) == 0 {
		// The previous list stays valid; a failed narrowing must not
		// destroy what the user can still pick from.
		return TurnResult{Reply: replyNoResults(location, cuisine)}
	}

	refs := make([]session.RestaurantRef, len(matches))
	for i, r := range matches {
		refs[i] = toRef(r)
	}
	sess.LastList = refs
	sess.LastLocation = location
	sess.LastCuisine = cuisine
	sess.Expected = session.ContextSelectRestaurant

	return TurnResult{
		Reply:       replyRestaurantList(refs),
		Restaurants: refs,
	}
}

// applySelect picks a restaurant by name or by position in the last
// surfaced list.
func (e *Engine) applySelect(sess *session.Session, ents resolve.Entities) TurnResult {
	var ref session.RestaurantRef
	switch {
	case ents.Restaurant != nil:
		ref = toRef(*ents.Restaurant)
	case ents.Ordinal > 0:
		if ents.Ordinal > len(sess.LastList) {
			return TurnResult{Reply: replyOrdinalOutOfRange(len(sess.LastList))}
		}
		ref = sess.LastList[ents.Ordinal-1]
	default:
		return TurnResult{Reply: replyWhichRestaurant}
	}

	sess.SetRestaurant(ref)
	sess.Expected = session.ContextNeutral

	return TurnResult{
		Reply:      replySelected(ref),
		Restaurant: &ref,
	}
}

// applyShowMenu surfaces the menu of the named restaurant, or of the one in
// focus. Out-of-stock items are filtered out before display.
func (e *Engine) applyShowMenu(sess *session.Session, ents resolve.Entities) TurnResult {
	var ref session.RestaurantRef
	switch {
	case ents.Restaurant != nil:
		ref = toRef(*ents.Restaurant)
	case sess.CurrentRestaurant() != nil:
		ref = *sess.CurrentRestaurant()
	default:
		return TurnResult{Reply: replyWhichMenu}
	}

	var entries []session.MenuEntry
	for _, it := range e.index.Menu(ref.ID) {
		if !it.Available {
			continue
		}
		entries = append(entries, session.MenuEntry{ID: it.ID, Name: it.Name, Price: it.Price})
	}
	if len(entries) == 0 {
		return TurnResult{Reply: replyNoMenu(ref.Name)}
	}

	sess.SetRestaurant(ref)
	sess.Current.Menu = entries
	sess.Expected = session.ContextNeutral

	return TurnResult{
		Reply:      replyMenu(ref.Name, entries),
		Restaurant: &ref,
		Menu:       entries,
	}
}

// applyChange abandons the current restaurant choice. The pending order
// goes with it; the confirmed cart never does. When the previous search
// list is still available it is re-offered.
func (e *Engine) applyChange(sess *session.Session, ents resolve.Entities) TurnResult {
	sess.Current = nil
	sess.ResetVolatile()

	if ents.Restaurant != nil {
		// "nie, wolę X" switches directly.
		return e.applySelect(sess, ents)
	}
	if ents.Location != "" || ents.Cuisine != "" {
		return e.applyFind(sess, ents)
	}
	if len(sess.LastList) > 0 {
		sess.Expected = session.ContextSelectRestaurant
		return TurnResult{
			Reply:       replyChangeWithList(sess.LastList),
			Restaurants: sess.LastList,
		}
	}
	return TurnResult{Reply: replyChangeNoList}
}

// applyRecommend suggests a dish from the menu in focus, or a restaurant
// matching the session's filters when no restaurant is chosen yet.
func (e *Engine) applyRecommend(sess *session.Session, ents resolve.Entities) TurnResult {
	if cur := sess.CurrentRestaurant(); cur != nil {
		var cheapest *catalog.MenuItem
		for _, it := range e.index.Menu(cur.ID) {
			if !it.Available {
				continue
			}
			it := it
			if cheapest == nil || it.Price < cheapest.Price {
				cheapest = &it
			}
		}
		if cheapest != nil {
			return TurnResult{
				Reply:      replyRecommendDish(cur.Name, *cheapest),
				Restaurant: cur,
			}
		}
	}

	location := ents.Location
	if location == "" {
		location = sess.LastLocation
	}
	cuisine := ents.Cuisine
	if cuisine == "" {
		cuisine = sess.LastCuisine
	}
	matches := e.index.FilterRestaurants(location, cuisine)
	if len(matches) == 0 {
		return TurnResult{Reply: replyNoResults(location, cuisine)}
	}

	ref := toRef(matches[0])
	sess.LastList = []session.RestaurantRef{ref}
	sess.Expected = session.ContextSelectRestaurant
	return TurnResult{
		Reply:       replyRecommendRestaurant(ref),
		Restaurants: sess.LastList,
	}
}

func toRef(r catalog.Restaurant) session.RestaurantRef {
	return session.RestaurantRef{ID: r.ID, Name: r.Name, City: r.City, Cuisine: r.Cuisine}
}
