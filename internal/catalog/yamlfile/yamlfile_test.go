package yamlfile_test

import (
	"context"
	"strings"
	"testing"

	"github.com/vorder/vorder/internal/catalog/yamlfile"
)

const validCatalogYAML = `
restaurants:
  - id: "r1"
    name: "Monte Carlo"
    city: "Piekary Śląskie"
    cuisine: "włoska"
  - id: "r2"
    name: "Sushi Zen"
    city: "Katowice"
    cuisine: "azjatycka"
menu:
  - id: "m1"
    restaurant_id: "r1"
    name: "Margherita"
    price: 26.00
    available: true
  - id: "m2"
    restaurant_id: "r1"
    name: "Lasagne"
    price: 31.00
    available: false
`

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	src, err := yamlfile.LoadFromReader(strings.NewReader(validCatalogYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	ctx := context.Background()
	restaurants, err := src.ListRestaurants(ctx)
	if err != nil {
		t.Fatalf("ListRestaurants: %v", err)
	}
	if len(restaurants) != 2 {
		t.Fatalf("got %d restaurants, want 2", len(restaurants))
	}
	if restaurants[0].Name != "Monte Carlo" || restaurants[0].City != "Piekary Śląskie" {
		t.Errorf("restaurant[0] = %+v", restaurants[0])
	}

	items, err := src.ListMenuItems(ctx, "r1")
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d menu items, want 2", len(items))
	}
	if items[1].Available {
		t.Error("Lasagne should be unavailable")
	}

	// An unknown restaurant yields an empty slice, not an error.
	items, err = src.ListMenuItems(ctx, "nope")
	if err != nil {
		t.Fatalf("ListMenuItems(unknown): %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items for unknown restaurant, want 0", len(items))
	}
}

func TestLoadFromReader_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{
			name: "unknown key",
			input: `
restaurants: []
menus: []
`,
		},
		{
			name: "duplicate restaurant id",
			input: `
restaurants:
  - id: "r1"
    name: "A"
  - id: "r1"
    name: "B"
`,
		},
		{
			name: "menu item without restaurant",
			input: `
restaurants:
  - id: "r1"
    name: "A"
menu:
  - id: "m1"
    restaurant_id: "r9"
    name: "Zupa"
    price: 10
    available: true
`,
		},
		{
			name: "restaurant without name",
			input: `
restaurants:
  - id: "r1"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := yamlfile.LoadFromReader(strings.NewReader(tt.input)); err == nil {
				t.Error("LoadFromReader accepted invalid input")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	if _, err := yamlfile.Load("/does/not/exist.yaml"); err == nil {
		t.Error("Load accepted a missing file")
	}
}
