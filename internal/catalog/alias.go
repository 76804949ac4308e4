package catalog

import "strings"

// cuisineEntry pairs a canonical cuisine tag with the normalized
// natural-language phrases users say for it. A single user phrase may match
// several canonical tags ("cos azjatyckiego" covers chinese, japanese, thai
// and vietnamese kitchens), which is why [CuisinesMatching] returns a slice.
//
// All entries are in the normalized space of pkg/textnorm; synonym matching
// is substring-based so declined forms ("wloskiej", "wloskie") hit the
// "wlosk" stem. The table is an ordered slice so matching is deterministic.
type cuisineEntry struct {
	tag      string
	synonyms []string
}

var cuisineSynonyms = []cuisineEntry{
	{"polska", []string{"polsk", "pierogi", "schabowy", "domowa kuchnia", "obiady domowe"}},
	{"wloska", []string{"wlosk", "pizz", "makaron", "pasta", "italian"}},
	{"azjatycka", []string{"azjatyck", "sushi", "chinsk", "japonsk", "tajsk", "wietnamsk", "ramen", "pho", "asian"}},
	{"amerykanska", []string{"amerykansk", "burger", "hot dog", "hotdog", "stek"}},
	{"kebab", []string{"kebab", "tureck", "doner", "shoarma"}},
	{"indyjska", []string{"indyjsk", "curry", "tandoori"}},
	{"meksykanska", []string{"meksykansk", "taco", "burrito", "nachos"}},
	{"wegetarianska", []string{"wegetariansk", "wege", "bezmiesn", "jarsk"}},
	{"weganska", []string{"wegansk", "roslinna", "vegan"}},
}

// dishAliases maps colloquial, regional, or shorthand dish names to the
// canonical catalog spelling. Checked before the fuzzy tiers in
// [Index.FindMenuItem]. Keys and values are normalized.
var dishAliases = map[string]string{
	"coca cola":  "cola",
	"koka kola":  "cola",
	"margarita":  "margherita",
	"margaritta": "margherita",
	"capriciosa": "capricciosa",
	"kapricioza": "capricciosa",
	"peperoni":   "pepperoni",
	"frytki belgijskie": "frytki",
	"kebs":       "kebab",
	"kebsik":     "kebab",
	"zapiecha":   "zapiekanka",
}

// CuisinesMatching returns every canonical cuisine tag whose synonym list
// matches a substring of the normalized text. Returns nil when nothing
// matches.
func CuisinesMatching(normalized string) []string {
	var tags []string
	for _, e := range cuisineSynonyms {
		for _, syn := range e.synonyms {
			if strings.Contains(normalized, syn) {
				tags = append(tags, e.tag)
				break
			}
		}
	}
	return tags
}

// cuisineMatchesTag reports whether the restaurant's canonical cuisine tag
// is covered by any of the requested tags. Comparison is on normalized
// substrings so "wloska" also covers a catalog value of "pizzeria wloska".
func cuisineMatchesTag(restaurantCuisine string, tags []string) bool {
	for _, tag := range tags {
		if strings.Contains(restaurantCuisine, tag) || strings.Contains(tag, restaurantCuisine) {
			return true
		}
	}
	return false
}

// resolveDishAlias maps a normalized colloquial dish name to its canonical
// form, or returns the input unchanged when no alias is registered.
func resolveDishAlias(normalized string) string {
	if canonical, ok := dishAliases[normalized]; ok {
		return canonical
	}
	return normalized
}
