package intent

import "github.com/vorder/vorder/internal/session"

// Lexicons. All entries live in the normalized space of pkg/textnorm, so
// declined Polish forms are covered by their stems ("wegetariansk" matches
// "wegetariańskie", "wegetariańska", ...).
var (
	affirmativeWords = []string{"tak", "pewnie", "jasne", "ok", "okej", "dobrze", "zgoda", "potwierdzam"}
	negativeWords    = []string{"nie"}
	cancelPhrases    = []string{"anuluj", "rezygnuj", "odwolaj", "przestan", "stop", "nie zamawiam"}

	recommendPhrases = []string{"polec", "co proponujesz", "zaproponuj", "doradz", "co warto"}
	quickPhrases     = []string{"cos szybkiego", "na szybko", "fast food", "fastfood", "szybka przekaska"}
	desirePhrases    = []string{"mam ochote", "szukam", "chcialbym zjesc", "chcialabym zjesc", "chce zjesc", "chetnie zjem", "skusze sie"}
	nearbyPhrases    = []string{"gdzie zjesc", "gdzie moge", "gdzie mozna", "gdzie da sie", "w poblizu", "w okolicy", "niedaleko", "blisko mnie", "jest otwarte", "cos w"}
	dietaryPhrases   = []string{"wegetariansk", "wegansk", "bez miesa", "bezmiesn", "roslinn"}
	orderPhrases     = []string{"zamow", "zamawiam", "poprosze", "prosze o", "wezme", "biore", "chce kupic"}
	menuPhrases      = []string{"menu", "karta dan", "karte dan", "co maja", "co serwuja", "co podaja", "jakie dania"}
	foodNouns        = []string{"restauracj", "pizzeri", "jedzenie", "obiad", "kolacj", "sniadani", "glodny", "glodna", "przekask", "lokal"}
)

// maxBareReplyTokens bounds how long an utterance may be to still count as
// a bare yes/no. Longer turns carry their own intent signal and must not be
// captured by the affirmative/negative rule.
const maxBareReplyTokens = 5

// boostRules is the booster's priority list. Ordering is deliberate and
// hand-curated from observed conversation failures; every entry below is
// exercised by a test so reordering shows up as a failure, not a silent
// behaviour change.
var boostRules = []rule{
	{
		// 1. Bare affirmative/negative, interpreted through the expected
		// context. Cancel-specific keywords win over plain negation.
		name: "bare-reply-context",
		apply: func(in ruleInput) (Intent, bool) {
			if len(in.tokens) == 0 || len(in.tokens) > maxBareReplyTokens {
				return "", false
			}
			affirmative := hasToken(in.tokens, affirmativeWords)
			negative := hasToken(in.tokens, negativeWords)
			if !affirmative && !negative && !containsAny(in.norm, cancelPhrases) {
				return "", false
			}

			if containsAny(in.norm, cancelPhrases) {
				return CancelOrder, true
			}
			if negative {
				// "nie" under a pending confirmation rejects the
				// restaurant choice; outside it, plain negation is still
				// a restaurant change request.
				return ChangeRestaurant, true
			}
			if in.expected == session.ContextConfirmOrder {
				return ConfirmOrder, true
			}
			return "", false
		},
	},
	{
		// 2. Explicit recommendation requests.
		name: "recommendation",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, recommendPhrases) {
				return Recommend, true
			}
			return "", false
		},
	},
	{
		// 3. "Something quick" / fast-food phrasing.
		name: "quick-food",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, quickPhrases) {
				return FindRestaurants, true
			}
			return "", false
		},
	},
	{
		// 4. Generic desire phrases.
		name: "desire",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, desirePhrases) {
				return FindRestaurants, true
			}
			return "", false
		},
	},
	{
		// 5. Availability/proximity phrasing.
		name: "availability",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, nearbyPhrases) {
				return FindRestaurants, true
			}
			return "", false
		},
	},
	{
		// 6. Dietary filters.
		name: "dietary",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, dietaryPhrases) {
				return FindRestaurants, true
			}
			return "", false
		},
	},
	{
		// 7. Ordering phrasing.
		name: "order",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, orderPhrases) {
				return CreateOrder, true
			}
			return "", false
		},
	},
	{
		// 8. Menu keywords.
		name: "menu",
		apply: func(in ruleInput) (Intent, bool) {
			if containsAny(in.norm, menuPhrases) {
				return ShowMenu, true
			}
			return "", false
		},
	},
	{
		// 9. Last resort: an unknown verdict over text that still talks
		// about food or restaurants becomes a nearby search.
		name: "unknown-food-nouns",
		apply: func(in ruleInput) (Intent, bool) {
			if in.provisional == Unknown && containsAny(in.norm, foodNouns) {
				return FindRestaurants, true
			}
			return "", false
		},
	},
}
