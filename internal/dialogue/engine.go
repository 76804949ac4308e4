// Package dialogue orchestrates one conversational turn: input validation,
// intent classification with rule-based correction, entity resolution, the
// order state machine, and reply rendering.
//
// ProcessTurn is the single entry point. Turns of the same session are
// serialised through [session.TurnLocks]; turns of different sessions run
// fully in parallel.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/observe"
	"github.com/vorder/vorder/internal/orderlog"
	"github.com/vorder/vorder/internal/resolve"
	"github.com/vorder/vorder/internal/session"
)

// maxInputRunes bounds accepted utterance length. Anything longer is not a
// plausible food-ordering utterance and is rejected before classification.
const maxInputRunes = 500

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	// OK is false when the input was rejected before any session change.
	OK bool `json:"ok"`

	Intent intent.Intent `json:"intent"`
	Reply  string        `json:"reply"`

	// Restaurant is the restaurant in focus after this turn, when any.
	Restaurant *session.RestaurantRef `json:"restaurant,omitempty"`

	// Restaurants is the list surfaced by a search turn, in display order.
	Restaurants []session.RestaurantRef `json:"restaurants,omitempty"`

	// Menu is the menu surfaced by a show-menu turn.
	Menu []session.MenuEntry `json:"menu,omitempty"`

	// Pending is the in-progress order after this turn, nil when none.
	Pending *session.PendingOrder `json:"pending_order,omitempty"`

	// Cart is the confirmed cart after this turn.
	Cart session.Cart `json:"cart"`

	// OrderID is set on the turn that confirmed an order.
	OrderID string `json:"order_id,omitempty"`

	// Context is the session's conversational context after this turn.
	Context session.Snapshot `json:"context"`
}

// Engine processes turns against one catalog index and session store.
type Engine struct {
	store      session.Store
	locks      session.TurnLocks
	index      *catalog.Index
	resolver   *resolve.Resolver
	classifier intent.Classifier
	orders     orderlog.Sink
	metrics    *observe.Metrics
	logger     *slog.Logger

	// swappable for tests
	now   func() time.Time
	newID func() string
}

// Option configures an [Engine].
type Option func(*Engine)

// WithOrderSink sets the store confirmed orders are recorded in. Default:
// [orderlog.Discard].
func WithOrderSink(s orderlog.Sink) Option {
	return func(e *Engine) { e.orders = s }
}

// WithMetrics sets the metrics instance. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the structured logger. Default: [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an Engine over the given store, catalog index, and intent
// classifier.
func New(store session.Store, index *catalog.Index, classifier intent.Classifier, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		index:      index,
		resolver:   resolve.New(index),
		classifier: classifier,
		orders:     orderlog.Discard{},
		logger:     slog.Default(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = observe.DefaultMetrics()
	}
	return e
}

// ProcessTurn runs one utterance through the full pipeline and persists the
// updated session. Rejected input (empty, oversized, control characters)
// returns OK=false and leaves the session untouched. Errors are store
// failures only; everything conversational degrades into a reply.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	ctx, span := observe.StartSpan(ctx, "dialogue.turn")
	defer span.End()
	start := e.now()

	if reply, ok := validateInput(text); !ok {
		e.metrics.RecordTurn(ctx, string(intent.Unknown), "rejected", time.Since(start).Seconds())
		return TurnResult{OK: false, Intent: intent.Unknown, Reply: reply}, nil
	}

	unlock := e.locks.Lock(sessionID)
	defer unlock()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("dialogue: load session %q: %w", sessionID, err)
	}

	clsStart := e.now()
	cls, err := e.classifier.Classify(ctx, text, sess)
	e.metrics.ClassifierDuration.Record(ctx, time.Since(clsStart).Seconds())
	if err != nil {
		// Classifiers are contractually non-failing; treat a violation
		// like a degraded verdict.
		e.logger.Warn("classifier returned error, degrading", "error", err)
		cls = intent.Classification{Intent: intent.Unknown}
	}
	if cls.Intent == intent.Unknown && cls.Confidence == 0 {
		e.metrics.RecordClassifierFallback(ctx)
	}

	final := intent.Boost(text, cls.Intent, cls.Confidence, sess)
	ents := e.resolver.Extract(text, sess)

	// apply may still promote the intent based on session context (a pick
	// into a freshly surfaced list); res.Intent is the effective one.
	res := e.apply(ctx, sess, final, ents)
	res.OK = true
	res.Cart = sess.Cart
	res.Pending = sess.Pending

	sess.LastIntent = string(res.Intent)
	res.Context = sess.Snapshot()
	sess.UpdatedAt = e.now()
	sess.AppendHistory(session.Turn{
		At:     sess.UpdatedAt,
		Text:   text,
		Intent: string(res.Intent),
		Reply:  res.Reply,
	})

	if err := e.store.Put(ctx, sess); err != nil {
		return TurnResult{}, fmt.Errorf("dialogue: store session %q: %w", sessionID, err)
	}

	e.metrics.RecordTurn(ctx, string(res.Intent), "ok", time.Since(start).Seconds())
	observe.Logger(ctx).Debug("turn processed",
		"session_id", sessionID,
		"intent", res.Intent,
		"confidence", cls.Confidence,
	)
	return res, nil
}

// validateInput rejects input the pipeline must never see. Returns the
// clarification reply and false when rejected.
func validateInput(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "Nie usłyszałam nic. Powiedz, czego szukasz albo co chcesz zamówić.", false
	}
	if utf8.RuneCountInString(trimmed) > maxInputRunes {
		return "To było trochę za długie. Powiedz proszę krócej, czego szukasz.", false
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return "Nie zrozumiałam tej wiadomości. Spróbuj jeszcze raz.", false
		}
	}
	return "", true
}
