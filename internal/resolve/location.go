package resolve

import (
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/pkg/textnorm"
)

// locationCue matches "w/we/na/koło/... <Capitalized Phrase>" and captures
// the phrase. Runs over the raw text because capitalisation is the signal —
// normalisation would erase it.
var locationCue = regexp.MustCompile(`(?:^|[\s,])(?:w|we|na|kolo|koło|niedaleko|obok|blisko|przy)\s+(\p{Lu}[\p{L}-]*(?:\s+\p{Lu}[\p{L}-]*)*)`)

// capitalizedSpan matches any run of capitalized words. Used as the
// fallback when no preposition cue is present.
var capitalizedSpan = regexp.MustCompile(`\p{Lu}[\p{L}-]*(?:\s+\p{Lu}[\p{L}-]*)*`)

// locationDenylist holds normalized capitalized words that are never a
// location — sentence starters and command verbs that happen to carry a
// capital letter. A candidate whose first word is denylisted is rejected,
// not guessed around.
var locationDenylist = map[string]struct{}{
	"gdzie": {}, "co": {}, "czy": {}, "jaka": {}, "jakie": {}, "jaki": {},
	"chce": {}, "chcialbym": {}, "chcialabym": {}, "poprosze": {},
	"pokaz": {}, "zamow": {}, "zamawiam": {}, "menu": {}, "dzien": {},
	"dobry": {}, "czesc": {}, "witam": {}, "hej": {}, "moze": {},
	"szukam": {}, "mam": {}, "nie": {}, "tak": {}, "anuluj": {},
}

// locativeSuffixes rewrites Polish locative/genitive case endings back to
// the nominative, word by word. Ordered longest-first so "Krakowie" hits
// "owie" before "ie"-class endings. This is an approximation, not a
// morphological analyzer — whatever it misses is caught by the fuzzy match
// against the catalog's city list.
var locativeSuffixes = []struct {
	from, to string
}{
	{"owie", "ów"},
	{"ach", "y"},
	{"ich", "ie"},
	{"im", "ie"},
	{"iu", ""},
}

// maxCityDistance bounds the per-phrase Levenshtein distance for matching a
// candidate against a known catalog city.
const maxCityDistance = 2

// extractLocation finds the location named in text, canonicalised against
// the catalog's cities. Returns "" when the utterance names no usable
// location. The already-resolved restaurant is passed in so its name is not
// mistaken for a city ("w Monte Carlo" is a restaurant, not a town).
func (r *Resolver) extractLocation(text string, restaurant *catalog.Restaurant) string {
	var candidates []string

	for _, m := range locationCue.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}

	// Fallback: any capitalized span that does not open the sentence.
	if len(candidates) == 0 {
		for _, loc := range capitalizedSpan.FindAllStringIndex(text, -1) {
			if loc[0] == 0 {
				continue
			}
			candidates = append(candidates, text[loc[0]:loc[1]])
		}
	}

	for _, cand := range candidates {
		if resolved := r.resolveCity(cand, restaurant); resolved != "" {
			return resolved
		}
	}
	return ""
}

// resolveCity turns one capitalized candidate phrase into a canonical city
// name, or "" when the candidate is denylisted, names the restaurant, or
// is empty after rewriting.
func (r *Resolver) resolveCity(candidate string, restaurant *catalog.Restaurant) string {
	words := strings.Fields(candidate)
	if len(words) == 0 {
		return ""
	}
	if _, bad := locationDenylist[textnorm.Normalize(words[0])]; bad {
		return ""
	}

	rewritten := make([]string, len(words))
	for i, w := range words {
		rewritten[i] = rewriteLocative(w)
	}
	phrase := strings.Join(rewritten, " ")
	norm := textnorm.Normalize(phrase)
	normRaw := textnorm.Normalize(candidate)

	// The restaurant's own name is not a city.
	if restaurant != nil {
		rn := textnorm.Normalize(restaurant.Name)
		if rn == norm || rn == normRaw || strings.Contains(rn, normRaw) {
			return ""
		}
	}

	// Canonicalise against the catalog's city list: exact, substring, then
	// small edit distance, against both the rewritten and the raw form.
	for _, city := range r.index.Cities() {
		nc := textnorm.Normalize(city)
		if nc == norm || nc == normRaw {
			return city
		}
	}
	for _, city := range r.index.Cities() {
		nc := textnorm.Normalize(city)
		if strings.Contains(nc, norm) || strings.Contains(norm, nc) {
			return city
		}
	}
	for _, city := range r.index.Cities() {
		nc := textnorm.Normalize(city)
		if matchr.Levenshtein(nc, norm) <= maxCityDistance ||
			matchr.Levenshtein(nc, normRaw) <= maxCityDistance {
			return city
		}
	}

	// A candidate that resolves to a restaurant is not a location.
	if r.index.FindRestaurant(candidate) != nil {
		return ""
	}

	// Unknown to the catalog but shaped like a place: keep the rewritten
	// form so the orchestrator can answer "nothing found near X" honestly.
	return phrase
}

// rewriteLocative rewrites one word's locative/genitive ending to the
// nominative, preserving the original capitalisation of the first letter.
func rewriteLocative(word string) string {
	lower := strings.ToLower(word)
	for _, s := range locativeSuffixes {
		if strings.HasSuffix(lower, s.from) && len(lower) > len(s.from)+1 {
			stem := word[:len(word)-len(s.from)]
			return stem + s.to
		}
	}
	return word
}
