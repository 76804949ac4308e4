package intent_test

import (
	"testing"

	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/session"
)

func sessionWith(expected session.ExpectedContext) *session.Session {
	s := session.New("test")
	s.Expected = expected
	return s
}

func TestBoost_ConfidenceShortCircuit(t *testing.T) {
	t.Parallel()

	// At or above the trust threshold the text content must be irrelevant —
	// even text that every rule would otherwise catch.
	texts := []string{
		"nie, anuluj wszystko",
		"pokaż menu",
		"gdzie zjeść w Katowicach",
		"",
	}
	for _, text := range texts {
		got := intent.Boost(text, intent.ShowMenu, 0.8, sessionWith(session.ContextConfirmOrder))
		if got != intent.ShowMenu {
			t.Errorf("Boost(%q, show_menu, 0.8) = %q, want provisional intent unchanged", text, got)
		}
	}
}

func TestBoost_Deterministic(t *testing.T) {
	t.Parallel()

	sess := sessionWith(session.ContextConfirmOrder)
	first := intent.Boost("nie, inna restauracja", intent.Unknown, 0.3, sess)
	for i := 0; i < 10; i++ {
		if got := intent.Boost("nie, inna restauracja", intent.Unknown, 0.3, sess); got != first {
			t.Fatalf("Boost is not deterministic: call %d returned %q, first returned %q", i, got, first)
		}
	}
}

func TestBoost_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		provisional intent.Intent
		expected    session.ExpectedContext
		want        intent.Intent
	}{
		{
			name:        "bare yes under confirm context",
			text:        "tak",
			provisional: intent.Unknown,
			expected:    session.ContextConfirmOrder,
			want:        intent.ConfirmOrder,
		},
		{
			name:        "bare yes with filler under confirm context",
			text:        "no dobrze, pewnie",
			provisional: intent.Unknown,
			expected:    session.ContextConfirmOrder,
			want:        intent.ConfirmOrder,
		},
		{
			name:        "no with different restaurant under confirm context",
			text:        "nie, inna restauracja",
			provisional: intent.Unknown,
			expected:    session.ContextConfirmOrder,
			want:        intent.ChangeRestaurant,
		},
		{
			name:        "cancel keyword wins over plain negation",
			text:        "nie, anuluj",
			provisional: intent.Unknown,
			expected:    session.ContextConfirmOrder,
			want:        intent.CancelOrder,
		},
		{
			name:        "cancel keyword in neutral context",
			text:        "anuluj zamówienie",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.CancelOrder,
		},
		{
			name:        "bare no in neutral context",
			text:        "nie",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.ChangeRestaurant,
		},
		{
			name:        "recommendation request",
			text:        "co polecasz na obiad?",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.Recommend,
		},
		{
			name:        "something quick",
			text:        "coś szybkiego do jedzenia",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.FindRestaurants,
		},
		{
			name:        "desire phrasing",
			text:        "mam ochotę na sushi",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.FindRestaurants,
		},
		{
			name:        "availability phrasing",
			text:        "gdzie zjeść w Piekarach Śląskich",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.FindRestaurants,
		},
		{
			name:        "dietary filter",
			text:        "szukajcie czegoś wegetariańskiego",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.FindRestaurants,
		},
		{
			name:        "order phrasing",
			text:        "zamów dwie pizze pepperoni",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.CreateOrder,
		},
		{
			name:        "order here phrasing",
			text:        "poproszę to stąd",
			provisional: intent.ShowMenu,
			expected:    session.ContextNeutral,
			want:        intent.CreateOrder,
		},
		{
			name:        "menu keywords",
			text:        "pokaż menu",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.ShowMenu,
		},
		{
			name:        "unknown with food noun becomes search",
			text:        "jakaś restauracja może?",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.FindRestaurants,
		},
		{
			name:        "no rule match passes provisional through",
			text:        "opowiedz mi o pogodzie",
			provisional: intent.Unknown,
			expected:    session.ContextNeutral,
			want:        intent.Unknown,
		},
		{
			name:        "low-confidence non-unknown passes through when no rule fires",
			text:        "opowiedz mi o pogodzie",
			provisional: intent.Recommend,
			expected:    session.ContextNeutral,
			want:        intent.Recommend,
		},
		{
			name:        "long negative sentence is not a bare reply",
			text:        "nie wiem jeszcze czego chcę, może coś innego niż zwykle dziś wybiorę",
			provisional: intent.Unknown,
			expected:    session.ContextConfirmOrder,
			want:        intent.Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := intent.Boost(tt.text, tt.provisional, 0.4, sessionWith(tt.expected))
			if got != tt.want {
				t.Errorf("Boost(%q, %q, 0.4, expected=%s) = %q, want %q",
					tt.text, tt.provisional, tt.expected, got, tt.want)
			}
		})
	}
}

func TestBoost_NilSession(t *testing.T) {
	t.Parallel()

	// A nil session behaves like a neutral context.
	if got := intent.Boost("nie", intent.Unknown, 0.2, nil); got != intent.ChangeRestaurant {
		t.Errorf("Boost with nil session = %q, want change_restaurant", got)
	}
}
