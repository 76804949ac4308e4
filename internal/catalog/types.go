// Package catalog holds the in-memory projection of the restaurant catalog
// and exposes the fuzzy lookups the dialogue core runs against it.
//
// The catalog is owned by an external store (see [Source]); this package only
// keeps a refreshed, queryable snapshot. Lookups use a three-tier matching
// strategy — exact normalized equality, substring containment, Levenshtein
// distance — so that common inputs stay cheap and exact while misspellings
// and Polish case-ending variation still resolve.
//
// All Index methods are safe for concurrent use; snapshot refresh is
// copy-on-write with an atomic pointer swap, so readers always see either
// the old or the new snapshot, never a partial one.
package catalog

// Restaurant is one catalog restaurant as supplied by the external store.
type Restaurant struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	City    string `yaml:"city" json:"city"`
	Cuisine string `yaml:"cuisine" json:"cuisine"`
}

// MenuItem is one dish on a restaurant's menu.
type MenuItem struct {
	ID           string  `yaml:"id" json:"id"`
	RestaurantID string  `yaml:"restaurant_id" json:"restaurant_id"`
	Name         string  `yaml:"name" json:"name"`
	Price        float64 `yaml:"price" json:"price"`
	Available    bool    `yaml:"available" json:"available"`
}
