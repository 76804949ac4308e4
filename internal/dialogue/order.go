package dialogue

import (
	"context"

	"github.com/vorder/vorder/internal/orderlog"
	"github.com/vorder/vorder/internal/resolve"
	"github.com/vorder/vorder/internal/session"
)

// applyCreateOrder starts or extends the pending order.
//
// Rules:
//   - ordering needs a restaurant in focus or named in the utterance;
//   - a pending order is bound to one restaurant — ordering from a
//     different one is rejected with a clarification, nothing is merged;
//   - dishes that don't resolve against the menu never enter the order.
func (e *Engine) applyCreateOrder(sess *session.Session, ents resolve.Entities) TurnResult {
	var ref session.RestaurantRef
	switch {
	case ents.Restaurant != nil:
		ref = toRef(*ents.Restaurant)
	case sess.CurrentRestaurant() != nil:
		ref = *sess.CurrentRestaurant()
	default:
		return TurnResult{Reply: replyOrderNeedsRestaurant}
	}

	if sess.Pending != nil && sess.Pending.RestaurantID != ref.ID {
		return TurnResult{Reply: replyPendingElsewhere(sess.Pending.RestaurantName, ref.Name)}
	}

	if len(ents.Dishes) == 0 {
		return TurnResult{Reply: replyWhatToOrder(ref.Name)}
	}

	var added []session.OrderItem
	var missed []string
	for _, d := range ents.Dishes {
		item := e.index.FindMenuItem(ref.ID, d.Name)
		if item == nil {
			missed = append(missed, d.Name)
			continue
		}
		qty := d.Qty
		if qty < 1 {
			qty = 1
		}
		added = append(added, session.OrderItem{
			Name:  item.Name,
			Price: item.Price,
			Qty:   qty,
			Size:  d.Size,
		})
	}

	if len(added) == 0 {
		return TurnResult{Reply: replyDishesNotFound(missed, ref.Name)}
	}

	if sess.Pending == nil {
		sess.Pending = &session.PendingOrder{
			RestaurantID:   ref.ID,
			RestaurantName: ref.Name,
		}
	}
	for _, it := range added {
		mergeItem(sess.Pending, it)
	}

	if sess.CurrentRestaurant() == nil || sess.CurrentRestaurant().ID != ref.ID {
		sess.SetRestaurant(ref)
	}
	sess.Expected = session.ContextConfirmOrder

	return TurnResult{
		Reply:      replyPendingSummary(sess.Pending, missed),
		Restaurant: &ref,
	}
}

// mergeItem adds one line to the pending order, merging with an existing
// line of the same dish and size.
func mergeItem(p *session.PendingOrder, it session.OrderItem) {
	for i := range p.Items {
		if p.Items[i].Name == it.Name && p.Items[i].Size == it.Size {
			p.Items[i].Qty += it.Qty
			return
		}
	}
	p.Items = append(p.Items, it)
}

// applyConfirm folds the pending order into the cart, snapshots it, and
// hands it to the order sink. Recording is best-effort: a sink failure is
// logged, the confirmation stands.
func (e *Engine) applyConfirm(ctx context.Context, sess *session.Session) TurnResult {
	if sess.Pending == nil {
		sess.Expected = session.ContextNeutral
		return TurnResult{Reply: replyNothingToConfirm}
	}

	p := sess.Pending
	snap := session.OrderSnapshot{
		OrderID:        e.newID(),
		RestaurantID:   p.RestaurantID,
		RestaurantName: p.RestaurantName,
		Items:          append([]session.OrderItem(nil), p.Items...),
		Total:          p.Total(),
		ConfirmedAt:    e.now(),
	}

	sess.Cart.Append(p.Items)
	sess.LastOrder = &snap
	sess.Pending = nil
	sess.Expected = session.ContextNeutral

	if err := e.orders.Record(ctx, toOrder(sess.ID, snap)); err != nil {
		e.logger.Warn("order sink record failed",
			"order_id", snap.OrderID,
			"session_id", sess.ID,
			"error", err,
		)
	}
	e.metrics.RecordOrderConfirmed(ctx, snap.RestaurantID)

	return TurnResult{OrderID: snap.OrderID, Reply: replyConfirmed(snap)}
}

// applyCancel drops the pending order and nothing else. Confirmed cart
// items are out of reach of cancellation.
func (e *Engine) applyCancel(sess *session.Session) TurnResult {
	if sess.Pending == nil {
		sess.Expected = session.ContextNeutral
		return TurnResult{Reply: replyNothingToCancel}
	}
	sess.ResetVolatile()
	return TurnResult{Reply: replyCancelled}
}

func toOrder(sessionID string, snap session.OrderSnapshot) orderlog.Order {
	items := make([]orderlog.Item, len(snap.Items))
	for i, it := range snap.Items {
		items[i] = orderlog.Item{Name: it.Name, Price: it.Price, Qty: it.Qty, Size: it.Size}
	}
	return orderlog.Order{
		ID:             snap.OrderID,
		SessionID:      sessionID,
		RestaurantID:   snap.RestaurantID,
		RestaurantName: snap.RestaurantName,
		Items:          items,
		Total:          snap.Total,
		ConfirmedAt:    snap.ConfirmedAt,
	}
}
