package resolve

import (
	"strconv"
	"strings"

	"github.com/vorder/vorder/pkg/textnorm"
)

// ordinalStems map the invariant stem of a Polish ordinal to its position,
// so every declined form ("pierwsza", "pierwszą", "pierwszy") matches.
var ordinalStems = []struct {
	stem string
	n    int
}{
	{"pierwsz", 1},
	{"drug", 2},
	{"trzec", 3},
	{"czwart", 4},
	{"piat", 5},
	{"szost", 6},
	{"siodm", 7},
	{"osm", 8},
	{"dziewiat", 9},
	{"dziesiat", 10},
}

// ordinalCues are tokens that mark the next bare digit as a list pick
// ("numer 2", "opcja 3").
var ordinalCues = map[string]struct{}{
	"numer": {}, "nr": {}, "opcja": {}, "opcje": {}, "pozycja": {},
}

// maxBareOrdinalTokens bounds when a digit alone counts as a pick: "2" or
// "ta 2" is a pick, "chcę 2 pizze" is a quantity.
const maxBareOrdinalTokens = 2

// extractOrdinal reads a 1-based pick into the last surfaced list, 0 when
// the utterance makes none.
func extractOrdinal(text string) int {
	tokens := textnorm.Fields(text)

	for _, tok := range tokens {
		for _, o := range ordinalStems {
			if strings.HasPrefix(tok, o.stem) {
				return o.n
			}
		}
	}

	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > 50 {
			continue
		}
		if len(tokens) <= maxBareOrdinalTokens {
			return n
		}
		if i > 0 {
			if _, ok := ordinalCues[tokens[i-1]]; ok {
				return n
			}
		}
	}
	return 0
}
