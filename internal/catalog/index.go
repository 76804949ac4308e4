package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/vorder/vorder/pkg/textnorm"
)

// defaultMaxDistance caps the Levenshtein distance a fuzzy match may have
// regardless of query length.
const defaultMaxDistance = 3

// snapshot is one immutable projection of the catalog. Readers obtain the
// whole struct via an atomic pointer load; Refresh builds a new one and
// swaps it in.
type snapshot struct {
	restaurants []Restaurant
	menus       map[string][]MenuItem // restaurant ID → items, catalog order

	// Precomputed normalized forms, parallel to restaurants.
	normNames  []string
	normCities []string

	cities    []string // distinct city display names, first-seen order
	refreshed time.Time
}

// Option is a functional option for configuring an [Index].
type Option func(*Index)

// WithMaxDistance sets the hard cap on Levenshtein distance for the fuzzy
// matching tier. Default: 3.
func WithMaxDistance(d int) Option {
	return func(ix *Index) {
		ix.maxDistance = d
	}
}

// Index is the queryable catalog projection. The zero value is not usable;
// construct with [NewIndex] and populate with [Index.Refresh] before serving
// lookups. An empty Index answers every lookup with "not found".
//
// All methods are safe for concurrent use.
type Index struct {
	snap        atomic.Pointer[snapshot]
	maxDistance int
}

// NewIndex returns an empty Index configured with the supplied options.
func NewIndex(opts ...Option) *Index {
	ix := &Index{maxDistance: defaultMaxDistance}
	for _, o := range opts {
		o(ix)
	}
	ix.snap.Store(&snapshot{menus: map[string][]MenuItem{}})
	return ix
}

// Refresh loads a complete catalog from src and atomically replaces the
// current snapshot. On error the previous snapshot stays in place, so a
// failing store degrades to staleness rather than an empty catalog.
func (ix *Index) Refresh(ctx context.Context, src Source) error {
	restaurants, err := src.ListRestaurants(ctx)
	if err != nil {
		return fmt.Errorf("catalog: list restaurants: %w", err)
	}

	next := &snapshot{
		restaurants: restaurants,
		menus:       make(map[string][]MenuItem, len(restaurants)),
		normNames:   make([]string, len(restaurants)),
		normCities:  make([]string, len(restaurants)),
		refreshed:   time.Now().UTC(),
	}

	seenCities := make(map[string]struct{}, len(restaurants))
	for i, r := range restaurants {
		next.normNames[i] = textnorm.Normalize(r.Name)
		next.normCities[i] = textnorm.Normalize(r.City)
		if _, ok := seenCities[next.normCities[i]]; !ok && r.City != "" {
			seenCities[next.normCities[i]] = struct{}{}
			next.cities = append(next.cities, r.City)
		}

		items, err := src.ListMenuItems(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("catalog: list menu items for %q: %w", r.ID, err)
		}
		next.menus[r.ID] = items
	}

	ix.snap.Store(next)
	return nil
}

// Len returns the number of restaurants in the current snapshot.
func (ix *Index) Len() int {
	return len(ix.snap.Load().restaurants)
}

// RefreshedAt returns when the current snapshot was loaded, or the zero time
// for a never-refreshed Index.
func (ix *Index) RefreshedAt() time.Time {
	return ix.snap.Load().refreshed
}

// FindRestaurant resolves a free-form restaurant name to the best catalog
// match, or nil when nothing is close enough. Nil means "not found" and is
// never an error.
//
// Matching tiers, cheapest first:
//
//  1. Exact normalized equality.
//  2. Substring containment in either direction (handles both "Monte" for
//     "Monte Carlo" and declined forms like "Montego" for "Monte").
//  3. Levenshtein distance over normalized names, lowest distance wins,
//     bounded by ⌈len/3⌉ capped at the configured maximum. Ties break to
//     the shorter name, then to catalog order.
func (ix *Index) FindRestaurant(query string) *Restaurant {
	snap := ix.snap.Load()
	q := textnorm.Normalize(query)
	if q == "" || len(snap.restaurants) == 0 {
		return nil
	}

	if i := bestNameMatch(q, snap.normNames, ix.maxDistance); i >= 0 {
		r := snap.restaurants[i]
		return &r
	}
	return nil
}

// FindMenuItem resolves a free-form dish name against one restaurant's menu,
// or returns nil when the restaurant has no close-enough available dish.
// The static alias table is consulted before the fuzzy tiers, so colloquial
// names resolve to their canonical dish first.
func (ix *Index) FindMenuItem(restaurantID, query string) *MenuItem {
	snap := ix.snap.Load()
	items := snap.menus[restaurantID]
	if len(items) == 0 {
		return nil
	}

	q := resolveDishAlias(textnorm.Normalize(query))
	if q == "" {
		return nil
	}

	names := make([]string, 0, len(items))
	candidates := make([]int, 0, len(items))
	for i, it := range items {
		if !it.Available {
			continue
		}
		names = append(names, textnorm.Normalize(it.Name))
		candidates = append(candidates, i)
	}

	if i := bestNameMatch(q, names, ix.maxDistance); i >= 0 {
		it := items[candidates[i]]
		return &it
	}
	return nil
}

// Menu returns the full menu of one restaurant in catalog order. The result
// is shared with the snapshot and must not be mutated by the caller.
func (ix *Index) Menu(restaurantID string) []MenuItem {
	return ix.snap.Load().menus[restaurantID]
}

// Restaurant returns the restaurant with the given ID, or nil.
func (ix *Index) Restaurant(id string) *Restaurant {
	snap := ix.snap.Load()
	for _, r := range snap.restaurants {
		if r.ID == id {
			r := r
			return &r
		}
	}
	return nil
}

// FilterRestaurants returns the restaurants matching the given filters in
// catalog order. An empty location matches every city; an empty cuisine
// matches every kitchen. Location matching is case-insensitive substring
// over normalized city names; cuisine matching goes through the synonym
// table so a phrase like "cos azjatyckiego" covers several canonical tags.
func (ix *Index) FilterRestaurants(location, cuisine string) []Restaurant {
	snap := ix.snap.Load()

	loc := textnorm.Normalize(location)
	var cuisineTags []string
	if c := textnorm.Normalize(cuisine); c != "" {
		cuisineTags = CuisinesMatching(c)
		if len(cuisineTags) == 0 {
			// Unrecognised cuisine phrase still filters literally.
			cuisineTags = []string{c}
		}
	}

	var out []Restaurant
	for i, r := range snap.restaurants {
		if loc != "" && !strings.Contains(snap.normCities[i], loc) && !strings.Contains(loc, snap.normCities[i]) {
			continue
		}
		if cuisineTags != nil && !cuisineMatchesTag(textnorm.Normalize(r.Cuisine), cuisineTags) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Cities returns the distinct city display names present in the catalog, in
// first-seen catalog order. Used by the entity resolver to canonicalise
// denormalized location phrases.
func (ix *Index) Cities() []string {
	return ix.snap.Load().cities
}

// bestNameMatch runs the three matching tiers of the package doc over a
// normalized query and a parallel list of normalized names. Returns the
// winning index or -1.
func bestNameMatch(q string, names []string, maxDistance int) int {
	// Tier 1: exact.
	for i, n := range names {
		if n == q {
			return i
		}
	}

	// Tier 2: substring containment, either direction. First match wins in
	// list order; shorter names are not preferred here because containment
	// is already a strong signal.
	for i, n := range names {
		if n == "" {
			continue
		}
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return i
		}
	}

	// Tier 3: Levenshtein ranking.
	limit := (len(q) + 2) / 3
	if limit > maxDistance {
		limit = maxDistance
	}
	if limit == 0 {
		return -1
	}

	best := -1
	bestDist := limit + 1
	for i, n := range names {
		if n == "" {
			continue
		}
		d := matchr.Levenshtein(q, n)
		switch {
		case d < bestDist:
			best, bestDist = i, d
		case d == bestDist && best >= 0 && len(n) < len(names[best]):
			// Tie: shorter name wins; equal lengths keep catalog order.
			best = i
		}
	}
	if best >= 0 && bestDist <= limit {
		return best
	}
	return -1
}
