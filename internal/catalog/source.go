package catalog

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by Source implementations when the backing
// store cannot be reached. The Index keeps serving its last good snapshot
// in that case; staleness up to the refresh interval is acceptable.
var ErrUnavailable = errors.New("catalog source unavailable")

// Source supplies the catalog entities the [Index] projects. Implementations
// live in subpackages (postgres, yamlfile) and must be safe for concurrent
// use.
type Source interface {
	// ListRestaurants returns every restaurant in the catalog.
	ListRestaurants(ctx context.Context) ([]Restaurant, error)

	// ListMenuItems returns the menu for one restaurant. An unknown
	// restaurant ID yields an empty slice, not an error.
	ListMenuItems(ctx context.Context, restaurantID string) ([]MenuItem, error)
}
