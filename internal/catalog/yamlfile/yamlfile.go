// Package yamlfile provides a [catalog.Source] backed by a YAML file on
// disk. Intended for development, demos, and tests; production deployments
// use the postgres source.
package yamlfile

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vorder/vorder/internal/catalog"
)

// File is the top-level structure of a catalog YAML file.
//
// Example:
//
//	restaurants:
//	  - id: "r1"
//	    name: "Monte Carlo"
//	    city: "Piekary Śląskie"
//	    cuisine: "włoska"
//	menu:
//	  - id: "m1"
//	    restaurant_id: "r1"
//	    name: "Margherita"
//	    price: 26.00
//	    available: true
type File struct {
	Restaurants []catalog.Restaurant `yaml:"restaurants"`
	Menu        []catalog.MenuItem   `yaml:"menu"`
}

// Compile-time interface check.
var _ catalog.Source = (*Source)(nil)

// Source serves a catalog parsed once at construction. The file is not
// watched; restart or re-create the Source to pick up edits.
type Source struct {
	file File
}

// Load reads and parses a catalog YAML file from disk.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open catalog file %q: %w", path, err)
	}
	defer f.Close()

	src, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse catalog file %q: %w", path, err)
	}
	return src, nil
}

// LoadFromReader parses catalog YAML from an [io.Reader]. The reader is
// consumed entirely; the caller is responsible for closing it.
func LoadFromReader(r io.Reader) (*Source, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("catalog: decode catalog yaml: %w", err)
	}

	if err := validate(file); err != nil {
		return nil, err
	}
	return &Source{file: file}, nil
}

// validate rejects files that would poison the index: duplicate IDs and
// menu items pointing at restaurants that don't exist.
func validate(file File) error {
	ids := make(map[string]struct{}, len(file.Restaurants))
	for _, r := range file.Restaurants {
		if r.ID == "" || r.Name == "" {
			return fmt.Errorf("catalog: restaurant %q/%q: id and name are required", r.ID, r.Name)
		}
		if _, dup := ids[r.ID]; dup {
			return fmt.Errorf("catalog: duplicate restaurant id %q", r.ID)
		}
		ids[r.ID] = struct{}{}
	}

	itemIDs := make(map[string]struct{}, len(file.Menu))
	for _, it := range file.Menu {
		if it.ID == "" || it.Name == "" {
			return fmt.Errorf("catalog: menu item %q/%q: id and name are required", it.ID, it.Name)
		}
		if _, dup := itemIDs[it.ID]; dup {
			return fmt.Errorf("catalog: duplicate menu item id %q", it.ID)
		}
		itemIDs[it.ID] = struct{}{}
		if _, ok := ids[it.RestaurantID]; !ok {
			return fmt.Errorf("catalog: menu item %q references unknown restaurant %q", it.ID, it.RestaurantID)
		}
	}
	return nil
}

// ListRestaurants implements catalog.Source.
func (s *Source) ListRestaurants(context.Context) ([]catalog.Restaurant, error) {
	return s.file.Restaurants, nil
}

// ListMenuItems implements catalog.Source.
func (s *Source) ListMenuItems(_ context.Context, restaurantID string) ([]catalog.MenuItem, error) {
	var items []catalog.MenuItem
	for _, it := range s.file.Menu {
		if it.RestaurantID == restaurantID {
			items = append(items, it)
		}
	}
	return items, nil
}
