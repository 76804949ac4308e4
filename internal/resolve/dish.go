package resolve

import (
	"strconv"
	"strings"

	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/pkg/textnorm"
)

// orderCues mark an utterance as carrying dish mentions at all. Without one
// of these the extractor returns nothing, so "pokaż menu" never turns into
// an order for a dish called "menu". Normalized forms.
var orderCues = []string{
	"poprosze", "prosze", "zamawiam", "zamowie", "zamow", "zamowic",
	"chcialbym", "chcialabym", "chce", "wezme", "wezmiemy", "daj", "dla mnie",
}

// dishSeparators split a multi-dish utterance into per-dish segments.
// Applied to the normalized text, so "oraz" and "i" are whole words.
var dishSeparators = []string{",", " i ", " oraz ", " plus ", " a takze ", " do tego "}

// quantityWords maps normalized Polish number words to counts. Digits are
// handled separately.
var quantityWords = map[string]int{
	"jeden": 1, "jedna": 1, "jedno": 1,
	"dwa": 2, "dwie": 2, "podwojna": 2,
	"trzy": 3, "cztery": 4, "piec": 5,
	"szesc": 6, "siedem": 7, "osiem": 8,
	"dziewiec": 9, "dziesiec": 10,
}

// sizeWords maps normalized size adjectives, in every gender, plus the
// colloquial intensifiers, to the canonical size labels used by the menu.
// When a segment carries several size words the longest synonym wins.
var sizeWords = map[string]string{
	"mala": "small", "maly": "small", "male": "small", "mini": "small",
	"srednia": "medium", "sredni": "medium", "srednie": "medium",
	"duza": "large", "duzy": "large", "duze": "large",
	"wielka": "large", "wielki": "large", "wielkie": "large",
	"mega": "large", "ekstra": "large", "extra": "large", "xl": "large",
	"gigantyczna": "large", "gigantyczny": "large", "gigantyczne": "large",
}

// dishFillers are tokens that carry no dish information and are dropped from
// a segment before the remainder becomes the dish name.
var dishFillers = map[string]struct{}{
	"poprosze": {}, "prosze": {}, "zamawiam": {}, "zamowie": {}, "zamow": {},
	"zamowic": {}, "chcialbym": {}, "chcialabym": {}, "chce": {}, "wezme": {},
	"wezmiemy": {}, "daj": {}, "mi": {}, "dla": {}, "mnie": {}, "jeszcze": {},
	"razy": {}, "sztuki": {}, "sztuk": {}, "na": {}, "wynos": {}, "miejscu": {},
	"to": {}, "tez": {}, "takze": {},
}

// extractDishes pulls the requested dishes, with quantity and size, out of
// an ordering utterance. Returns nil when the text carries no order cue.
// The resolved restaurant's name is stripped first so "pizza z Monte Carlo"
// yields the dish "pizza", not "pizza z monte carlo".
func (r *Resolver) extractDishes(text string, restaurant *catalog.Restaurant) []Dish {
	// Commas are dish boundaries; plain normalization erases them, so
	// normalize the comma-split pieces instead.
	norm := normalizeKeepingCommas(text)

	if !containsCue(norm) {
		return nil
	}

	if restaurant != nil {
		rn := textnorm.Normalize(restaurant.Name)
		for _, prefix := range []string{"z restauracji ", "w restauracji ", "z ", "w ", "od "} {
			norm = strings.ReplaceAll(norm, prefix+rn, "")
		}
		norm = strings.ReplaceAll(norm, rn, "")
	}

	segments := []string{norm}
	for _, sep := range dishSeparators {
		var next []string
		for _, s := range segments {
			next = append(next, strings.Split(s, sep)...)
		}
		segments = next
	}

	var dishes []Dish
	for _, seg := range segments {
		if d, ok := parseDishSegment(seg); ok {
			dishes = append(dishes, d)
		}
	}
	return dishes
}

// parseDishSegment reads one comma- or conjunction-delimited segment into a
// Dish. Reports false when nothing dish-like remains after stripping
// quantity, size and filler tokens.
func parseDishSegment(seg string) (Dish, bool) {
	d := Dish{Qty: 1}
	var name []string
	var sizeSyn string

	for _, tok := range strings.Fields(seg) {
		if n, err := strconv.Atoi(tok); err == nil && n > 0 && n <= 20 {
			d.Qty = n
			continue
		}
		if n, ok := quantityWords[tok]; ok {
			d.Qty = n
			continue
		}
		if size, ok := sizeWords[tok]; ok {
			if len(tok) > len(sizeSyn) {
				sizeSyn = tok
				d.Size = size
			}
			continue
		}
		if _, skip := dishFillers[tok]; skip {
			continue
		}
		name = append(name, tok)
	}

	if len(name) == 0 || allOrdinal(name) {
		return Dish{}, false
	}
	d.Name = strings.Join(name, " ")
	return d, true
}

// allOrdinal reports whether every name token is an ordinal form. "Poproszę
// pierwszą" is a list pick, not an order for a dish called "pierwsza".
func allOrdinal(tokens []string) bool {
	for _, tok := range tokens {
		matched := false
		for _, o := range ordinalStems {
			if strings.HasPrefix(tok, o.stem) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func containsCue(norm string) bool {
	for _, cue := range orderCues {
		if strings.Contains(norm, cue) {
			return true
		}
	}
	return false
}

// normalizeKeepingCommas normalizes text while preserving comma boundaries,
// which [textnorm.Normalize] would otherwise collapse into spaces.
func normalizeKeepingCommas(text string) string {
	parts := strings.Split(text, ",")
	for i, p := range parts {
		parts[i] = textnorm.Normalize(p)
	}
	return strings.Join(parts, ",")
}
