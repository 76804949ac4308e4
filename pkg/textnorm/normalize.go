// Package textnorm provides the canonical text normalisation used by every
// matcher in vorder. All fuzzy comparisons — catalog lookups, intent rules,
// entity extraction — happen in the normalized space produced by [Normalize],
// so that "Żurek Śląski" and "zurek slaski" are the same string to every
// downstream component.
//
// Normalize is a total, deterministic, idempotent function:
//
//	Normalize(Normalize(s)) == Normalize(s)
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text to NFD and removes all combining marks, turning
// "ą" into "a", "é" into "e" and so on. Built once; transform.Chain values
// are stateless between Transform calls via transform.String.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// polishOverrides maps runes that NFD decomposition does not reduce to their
// ASCII base. Ł/ł carry a stroke, not a combining mark.
var polishOverrides = strings.NewReplacer("ł", "l", "Ł", "L")

// Normalize lowercases s, strips diacritical marks, replaces punctuation with
// spaces, and collapses repeated whitespace. It never fails; invalid UTF-8
// bytes are dropped by the transform chain.
func Normalize(s string) string {
	s = polishOverrides.Replace(s)

	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// The chain cannot fail on valid UTF-8; fall back to the input so
		// the function stays total.
		out = s
	}

	out = strings.ToLower(out)

	var b strings.Builder
	b.Grow(len(out))
	lastSpace := true
	for _, r := range out {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			// Punctuation, symbols, and whitespace all collapse into a
			// single separator.
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// Fields normalizes s and splits it into whitespace-separated tokens.
// Returns nil for input that normalizes to the empty string.
func Fields(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}
