package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/vorder/vorder/internal/app"
	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/internal/config"
	"github.com/vorder/vorder/internal/intent/mock"
	"github.com/vorder/vorder/internal/session"
)

type staticSource struct {
	restaurants []catalog.Restaurant
}

func (s *staticSource) ListRestaurants(context.Context) ([]catalog.Restaurant, error) {
	return s.restaurants, nil
}

func (s *staticSource) ListMenuItems(context.Context, string) ([]catalog.MenuItem, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{ListenAddr: "127.0.0.1:0", LogLevel: config.LogInfo},
		Catalog: config.CatalogConfig{
			Source:          config.CatalogYAML,
			Path:            "unused",
			RefreshInterval: config.Duration(time.Minute),
		},
		Classifier: config.ClassifierConfig{
			Provider:            "openai",
			Model:               "gpt-4o-mini",
			Timeout:             config.Duration(2 * time.Second),
			ConfidenceThreshold: 0.8,
		},
		Session: config.SessionConfig{
			Backend: config.SessionMemory,
			TTL:     config.Duration(30 * time.Minute),
		},
	}
}

func TestNew_WiresInjectedSubsystems(t *testing.T) {
	t.Parallel()

	src := &staticSource{restaurants: []catalog.Restaurant{
		{ID: "r1", Name: "Monte Carlo", City: "Piekary Śląskie", Cuisine: "włoska"},
	}}

	a, err := app.New(context.Background(), testConfig(), nil,
		app.WithCatalogSource(src),
		app.WithSessionStore(session.NewMemStore()),
		app.WithClassifier(&mock.Classifier{}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown(context.Background())
}

func TestNew_FailsWithoutClassifierOrFactory(t *testing.T) {
	t.Parallel()

	src := &staticSource{}
	_, err := app.New(context.Background(), testConfig(), nil,
		app.WithCatalogSource(src),
		app.WithSessionStore(session.NewMemStore()),
	)
	if err == nil {
		t.Fatal("New() error = nil, want error when no classifier and no LLM factory")
	}
}

func TestNew_FailsOnBrokenCatalogSource(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Catalog.Path = "testdata/does-not-exist.yaml"

	_, err := app.New(context.Background(), cfg, nil,
		app.WithSessionStore(session.NewMemStore()),
		app.WithClassifier(&mock.Classifier{}),
	)
	if err == nil {
		t.Fatal("New() error = nil, want error for missing catalog file")
	}
}

func TestShutdown_IsIdempotent(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), testConfig(), nil,
		app.WithCatalogSource(&staticSource{}),
		app.WithSessionStore(session.NewMemStore()),
		app.WithClassifier(&mock.Classifier{}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("first Shutdown() error = %v", err)
	}
	if err := a.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
