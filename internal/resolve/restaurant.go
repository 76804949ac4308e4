package resolve

import (
	"regexp"
	"strings"

	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/pkg/textnorm"
)

// restaurantCue captures the words following an explicit restaurant cue
// ("z restauracji X", "menu X", "do X") up to the next comma or sentence
// end. Case-insensitive because spoken transcripts often lose capitals.
var restaurantCue = regexp.MustCompile(`(?i)(?:^|[\s,])(?:z\s+restauracji|w\s+restauracji|restauracji|restauracja|menu|do)\s+([^,.!?]+)`)

// minRestaurantQuery guards the fuzzy lookup: one- and two-letter fragments
// hit the substring tier of the catalog far too easily.
const minRestaurantQuery = 3

// extractRestaurant resolves an explicitly named restaurant, or nil when the
// utterance names none. Nil tells the orchestrator to fall back to the
// session's restaurant.
func (r *Resolver) extractRestaurant(text string) *catalog.Restaurant {
	// Cue-anchored candidates first: the tail after the cue, trimmed token
	// by token from the right so "menu susi zen poprosze" still resolves.
	for _, m := range restaurantCue.FindAllStringSubmatch(text, -1) {
		if found := r.lookupShrinking(m[1]); found != nil {
			return found
		}
	}

	// Fallback: capitalized spans anywhere but the sentence start.
	for _, loc := range capitalizedSpan.FindAllStringIndex(text, -1) {
		if loc[0] == 0 {
			continue
		}
		if found := r.lookup(text[loc[0]:loc[1]]); found != nil {
			return found
		}
	}
	return nil
}

// lookupShrinking tries the full phrase, then drops trailing tokens one at a
// time. Longest match wins so "Monte Carlo" is not shadowed by a hypothetical
// "Monte".
func (r *Resolver) lookupShrinking(phrase string) *catalog.Restaurant {
	tokens := strings.Fields(phrase)
	const maxTokens = 4
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	for end := len(tokens); end > 0; end-- {
		if found := r.lookup(strings.Join(tokens[:end], " ")); found != nil {
			return found
		}
	}
	return nil
}

func (r *Resolver) lookup(phrase string) *catalog.Restaurant {
	if len(textnorm.Normalize(phrase)) < minRestaurantQuery {
		return nil
	}
	return r.index.FindRestaurant(phrase)
}
