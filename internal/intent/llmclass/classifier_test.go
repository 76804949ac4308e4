package llmclass_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/intent/llmclass"
	"github.com/vorder/vorder/internal/session"
	llmmock "github.com/vorder/vorder/pkg/provider/llm/mock"
)

func TestClassify_ValidVerdict(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{Response: `{"intent": "create_order", "confidence": 0.92}`}
	c := llmclass.New(provider)

	got, err := c.Classify(context.Background(), "zamów pizzę", session.New("s1"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Intent != intent.CreateOrder {
		t.Errorf("Intent = %q, want create_order", got.Intent)
	}
	if got.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", got.Confidence)
	}
}

func TestClassify_FencedVerdict(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{
		Response: "```json\n{\"intent\": \"show_menu\", \"confidence\": 0.7}\n```",
	}
	c := llmclass.New(provider)

	got, err := c.Classify(context.Background(), "pokaż menu", session.New("s1"))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Intent != intent.ShowMenu {
		t.Errorf("Intent = %q, want show_menu despite code fences", got.Intent)
	}
}

func TestClassify_DegradesToUnknown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider *llmmock.Provider
		opts     []llmclass.Option
	}{
		{
			name:     "transport error",
			provider: &llmmock.Provider{Err: errors.New("connection refused")},
		},
		{
			name:     "malformed json",
			provider: &llmmock.Provider{Response: "intent: create_order"},
		},
		{
			name:     "unrecognised intent label",
			provider: &llmmock.Provider{Response: `{"intent": "order_pizza", "confidence": 0.9}`},
		},
		{
			name:     "below threshold coerced",
			provider: &llmmock.Provider{Response: `{"intent": "create_order", "confidence": 0.4}`},
		},
		{
			name:     "timeout",
			provider: &llmmock.Provider{Response: `{"intent": "create_order", "confidence": 0.9}`, Delay: time.Second},
			opts:     []llmclass.Option{llmclass.WithTimeout(10 * time.Millisecond)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := llmclass.New(tt.provider, tt.opts...)
			got, err := c.Classify(context.Background(), "cokolwiek", session.New("s1"))
			if err != nil {
				t.Fatalf("Classify must absorb failures, got error: %v", err)
			}
			if got.Intent != intent.Unknown || got.Confidence != 0 {
				t.Errorf("got {%s, %v}, want {unknown, 0}", got.Intent, got.Confidence)
			}
		})
	}
}

func TestClassify_BreakerStopsCallingBrokenBackend(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{Err: errors.New("connection refused")}
	c := llmclass.New(provider)

	// Enough failing turns to trip the breaker, then a few more.
	for range 10 {
		got, err := c.Classify(context.Background(), "cokolwiek", session.New("s1"))
		if err != nil {
			t.Fatalf("Classify must absorb failures, got error: %v", err)
		}
		if got.Intent != intent.Unknown {
			t.Fatalf("Intent = %q, want unknown", got.Intent)
		}
	}

	// The breaker opens after 5 consecutive failures; the remaining turns
	// must not reach the provider.
	if provider.Calls != 5 {
		t.Errorf("provider.Calls = %d, want 5", provider.Calls)
	}
}

func TestClassify_SessionSummaryInPrompt(t *testing.T) {
	t.Parallel()

	provider := &llmmock.Provider{Response: `{"intent": "confirm_order", "confidence": 0.9}`}
	c := llmclass.New(provider)

	sess := session.New("s1")
	sess.Expected = session.ContextConfirmOrder
	sess.Pending = &session.PendingOrder{
		RestaurantID:   "r1",
		RestaurantName: "Monte Carlo",
		Items:          []session.OrderItem{{Name: "Pizza", Price: 28, Qty: 1}},
	}

	if _, err := c.Classify(context.Background(), "tak", sess); err != nil {
		t.Fatalf("Classify: %v", err)
	}

	msg := provider.LastRequest.Messages[0].Content
	for _, want := range []string{"tak", "confirm_order", "Monte Carlo"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}
