// Package llmclass implements the probabilistic intent classifier on top of
// a [llm.Provider].
//
// The model is an external oracle: it is asked for a strict JSON verdict and
// given a bounded time budget. Every failure mode — timeout, transport
// error, malformed or non-JSON output, an unrecognised intent label — is
// absorbed into {unknown, 0} so that a slow or broken model can never fail a
// turn; the rule-based booster takes over instead. Verdicts whose
// confidence falls below the acceptance threshold are likewise coerced to
// {unknown, 0}: a barely-guessed intent and an explicitly unknown one are
// indistinguishable downstream, and both get the same rule-based rescue.
package llmclass

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/resilience"
	"github.com/vorder/vorder/internal/session"
	"github.com/vorder/vorder/pkg/provider/llm"
)

const (
	defaultTimeout   = 4 * time.Second
	defaultThreshold = 0.55
	maxOutputTokens  = 128
)

// systemPrompt instructs the model to emit nothing but the verdict JSON.
const systemPrompt = `Jesteś klasyfikatorem intencji asystenta zamawiania jedzenia.
Przypisz wypowiedzi użytkownika jedną z intencji:
find_restaurants, show_menu, select_restaurant, create_order, confirm_order,
cancel_order, change_restaurant, recommend, unknown.
Odpowiedz wyłącznie obiektem JSON: {"intent": "...", "confidence": 0.0-1.0}.`

// Option is a functional option for configuring a [Classifier].
type Option func(*Classifier)

// WithTimeout sets the time budget for one classification call.
// Default: 4 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.timeout = d
	}
}

// WithThreshold sets the minimum confidence below which a verdict is
// coerced to unknown. Default: 0.55.
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		c.threshold = t
	}
}

// Classifier asks an LLM for a provisional intent. It implements
// [intent.Classifier] and is safe for concurrent use.
//
// A circuit breaker guards the model call. After repeated transport failures
// the breaker opens and subsequent turns skip the call entirely instead of
// waiting out the timeout each time.
type Classifier struct {
	provider  llm.Provider
	breaker   *resilience.CircuitBreaker
	timeout   time.Duration
	threshold float64
}

// Compile-time interface check.
var _ intent.Classifier = (*Classifier)(nil)

// New returns a Classifier backed by provider.
func New(provider llm.Provider, opts ...Option) *Classifier {
	c := &Classifier{
		provider: provider,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "llm-classifier",
		}),
		timeout:   defaultTimeout,
		threshold: defaultThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// verdict is the JSON shape the model is asked to produce.
type verdict struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// unknownVerdict is what every failure path degrades to.
var unknownVerdict = intent.Classification{Intent: intent.Unknown, Confidence: 0}

// Classify implements [intent.Classifier]. It never returns a non-nil error
// for model failures; the turn must continue through the booster.
func (c *Classifier) Classify(ctx context.Context, text string, sess *session.Session) (intent.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp *llm.CompletionResponse
	err := c.breaker.Execute(func() error {
		var callErr error
		resp, callErr = c.provider.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: systemPrompt,
			Messages: []llm.Message{
				{Role: "user", Content: buildUserMessage(text, sess)},
			},
			MaxTokens: maxOutputTokens,
		})
		return callErr
	})
	if err != nil {
		slog.Warn("intent classifier call failed; degrading to unknown", "err", err)
		return unknownVerdict, nil
	}

	v, err := parseVerdict(resp.Content)
	if err != nil {
		slog.Warn("intent classifier returned malformed verdict; degrading to unknown",
			"err", err, "content_len", len(resp.Content))
		return unknownVerdict, nil
	}

	it := intent.Intent(v.Intent)
	if !it.IsValid() {
		return unknownVerdict, nil
	}
	if v.Confidence < c.threshold {
		return unknownVerdict, nil
	}
	return intent.Classification{Intent: it, Confidence: v.Confidence}, nil
}

// buildUserMessage pairs the utterance with a short session summary so the
// model can resolve context-dependent turns.
func buildUserMessage(text string, sess *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wypowiedź: %s\n", text)
	if sess == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "Oczekiwany kontekst: %s\n", sess.Expected)
	if sess.LastIntent != "" {
		fmt.Fprintf(&b, "Poprzednia intencja: %s\n", sess.LastIntent)
	}
	if r := sess.CurrentRestaurant(); r != nil {
		fmt.Fprintf(&b, "Restauracja w kontekście: %s\n", r.Name)
	}
	if sess.Pending != nil {
		fmt.Fprintf(&b, "Oczekujące zamówienie: %d pozycji z %s\n",
			len(sess.Pending.Items), sess.Pending.RestaurantName)
	}
	return b.String()
}

// parseVerdict extracts the verdict JSON from the model output, tolerating
// markdown code fences and surrounding prose.
func parseVerdict(content string) (verdict, error) {
	var v verdict

	s := strings.TrimSpace(content)
	if start := strings.IndexByte(s, '{'); start >= 0 {
		if end := strings.LastIndexByte(s, '}'); end > start {
			s = s[start : end+1]
		}
	}
	if s == "" {
		return v, fmt.Errorf("llmclass: empty model output")
	}

	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("llmclass: decode verdict: %w", err)
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return v, nil
}
