package intent

import (
	"strings"

	"github.com/vorder/vorder/internal/session"
	"github.com/vorder/vorder/pkg/textnorm"
)

// TrustThreshold is the classifier confidence at or above which the
// provisional intent is trusted verbatim and no rule is evaluated.
const TrustThreshold = 0.8

// ruleInput is what every boost rule gets to look at.
type ruleInput struct {
	norm        string   // normalized utterance
	tokens      []string // normalized tokens
	provisional Intent
	expected    session.ExpectedContext
}

// rule is one entry of the booster's priority list. Apply returns the
// corrected intent and true when the rule fires; rules after the first
// firing one are never consulted.
type rule struct {
	name  string
	apply func(in ruleInput) (Intent, bool)
}

// Boost corrects or overrides a provisional intent using lexical cues and
// the session's expected context.
//
// When confidence >= [TrustThreshold] the provisional intent is returned
// unchanged regardless of text content. Otherwise the rule table is
// evaluated in priority order, first match wins; when no rule matches the
// provisional intent (possibly [Unknown]) passes through.
//
// Boost is deterministic: the same (text, provisional, confidence, session
// expected-context) always yields the same intent.
func Boost(text string, provisional Intent, confidence float64, sess *session.Session) Intent {
	if confidence >= TrustThreshold {
		return provisional
	}

	in := ruleInput{
		norm:        textnorm.Normalize(text),
		provisional: provisional,
		expected:    session.ContextNeutral,
	}
	in.tokens = strings.Fields(in.norm)
	if sess != nil && sess.Expected != "" {
		in.expected = sess.Expected
	}

	for _, r := range boostRules {
		if out, ok := r.apply(in); ok {
			return out
		}
	}
	return provisional
}

// containsAny reports whether norm contains any of the phrases.
func containsAny(norm string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

// hasToken reports whether any token equals one of the words exactly.
// Used for bare yes/no detection where substring matching would be wrong
// ("nie" is a substring of "niedaleko").
func hasToken(tokens []string, words []string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}
