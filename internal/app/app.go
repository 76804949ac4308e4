// Package app wires all Vorder subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject mock implementations via functional options
// (WithCatalogSource, WithSessionStore, etc.). When an option is not
// provided, New creates real implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vorder/vorder/internal/catalog"
	catalogpg "github.com/vorder/vorder/internal/catalog/postgres"
	"github.com/vorder/vorder/internal/catalog/yamlfile"
	"github.com/vorder/vorder/internal/config"
	"github.com/vorder/vorder/internal/dialogue"
	"github.com/vorder/vorder/internal/health"
	"github.com/vorder/vorder/internal/httpapi"
	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/intent/llmclass"
	"github.com/vorder/vorder/internal/observe"
	"github.com/vorder/vorder/internal/orderlog"
	orderpg "github.com/vorder/vorder/internal/orderlog/postgres"
	"github.com/vorder/vorder/internal/session"
	sessionredis "github.com/vorder/vorder/internal/session/redis"
	"github.com/vorder/vorder/pkg/provider/llm"
)

// App owns all subsystem lifetimes and serves the Vorder dialogue API.
type App struct {
	cfg *config.Config

	// Subsystems — initialised in New, torn down in Shutdown.
	index      *catalog.Index
	source     catalog.Source
	store      session.Store
	classifier intent.Classifier
	orders     orderlog.Sink
	engine     *dialogue.Engine
	metrics    *observe.Metrics
	server     *http.Server

	// checks feed the /readyz endpoint.
	checks []health.Checker

	// closers are called in reverse order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithCatalogSource injects a catalog source instead of creating one from config.
func WithCatalogSource(s catalog.Source) Option {
	return func(a *App) { a.source = s }
}

// WithSessionStore injects a session store instead of creating one from config.
func WithSessionStore(s session.Store) Option {
	return func(a *App) { a.store = s }
}

// WithClassifier injects an intent classifier instead of building one from
// the configured LLM provider.
func WithClassifier(c intent.Classifier) Option {
	return func(a *App) { a.classifier = c }
}

// WithOrderSink injects an order sink instead of creating one from config.
func WithOrderSink(s orderlog.Sink) Option {
	return func(a *App) { a.orders = s }
}

// LLMFactory builds the classifier's LLM provider from config. main wires the
// real any-llm-go construction here so that app does not import provider SDKs.
type LLMFactory func(cfg config.ClassifierConfig) (llm.Provider, error)

// New creates an App by wiring all subsystems together. Use Option functions
// to inject test doubles for any subsystem.
//
// New performs all initialisation synchronously: catalog connection and first
// load, session store connection, order log migration, and engine assembly.
func New(ctx context.Context, cfg *config.Config, newLLM LLMFactory, opts ...Option) (*App, error) {
	a := &App{
		cfg:     cfg,
		metrics: observe.DefaultMetrics(),
	}
	for _, o := range opts {
		o(a)
	}

	if err := a.initCatalog(ctx); err != nil {
		return nil, fmt.Errorf("app: init catalog: %w", err)
	}
	if err := a.initSessions(ctx); err != nil {
		return nil, fmt.Errorf("app: init sessions: %w", err)
	}
	if err := a.initOrders(ctx); err != nil {
		return nil, fmt.Errorf("app: init orders: %w", err)
	}
	if err := a.initClassifier(newLLM); err != nil {
		return nil, fmt.Errorf("app: init classifier: %w", err)
	}

	a.engine = dialogue.New(a.store, a.index, a.classifier,
		dialogue.WithOrderSink(a.orders),
		dialogue.WithMetrics(a.metrics),
	)

	api := httpapi.New(a.engine, health.New(a.checks...), httpapi.WithMetrics(a.metrics))
	a.server = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// initCatalog connects the configured catalog source and performs the first
// index load so the server never starts with an empty catalog.
func (a *App) initCatalog(ctx context.Context) error {
	if a.source == nil {
		switch a.cfg.Catalog.Source {
		case config.CatalogYAML:
			src, err := yamlfile.Load(a.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			a.source = src

		case config.CatalogPostgres:
			pool, err := pgxpool.New(ctx, a.cfg.Catalog.PostgresDSN)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			a.closers = append(a.closers, func() error {
				pool.Close()
				return nil
			})

			src := catalogpg.New(pool)
			if err := src.Migrate(ctx); err != nil {
				return err
			}
			a.source = src
			a.checks = append(a.checks, health.Checker{
				Name:  "catalog",
				Check: pool.Ping,
			})

		default:
			return fmt.Errorf("unknown catalog source %q", a.cfg.Catalog.Source)
		}
	}

	a.index = catalog.NewIndex()
	if err := a.index.Refresh(ctx, a.source); err != nil {
		return fmt.Errorf("initial catalog load: %w", err)
	}
	slog.Info("catalog loaded", "restaurants", a.index.Len())
	return nil
}

// initSessions sets up the configured session store.
func (a *App) initSessions(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	switch a.cfg.Session.Backend {
	case config.SessionMemory:
		a.store = session.NewMemStore(
			session.WithTTL(a.cfg.Session.TTL.Std()),
			session.WithMetrics(a.metrics),
		)

	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Session.RedisAddr,
			Password: a.cfg.Session.RedisPassword,
		})
		a.closers = append(a.closers, client.Close)

		store := sessionredis.New(client, sessionredis.WithTTL(a.cfg.Session.TTL.Std()))
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		a.store = store
		a.checks = append(a.checks, health.Checker{
			Name:  "redis",
			Check: store.Ping,
		})

	default:
		return fmt.Errorf("unknown session backend %q", a.cfg.Session.Backend)
	}
	return nil
}

// initOrders sets up the confirmed-order sink. Without a DSN orders are only
// kept in session state.
func (a *App) initOrders(ctx context.Context) error {
	if a.orders != nil {
		return nil
	}
	if a.cfg.Orders.PostgresDSN == "" {
		a.orders = orderlog.Discard{}
		slog.Warn("orders.postgres_dsn not set, confirmed orders are not persisted")
		return nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.Orders.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})

	sink := orderpg.New(pool)
	if err := sink.Migrate(ctx); err != nil {
		return err
	}
	a.orders = sink
	a.checks = append(a.checks, health.Checker{
		Name:  "orders",
		Check: pool.Ping,
	})
	return nil
}

// initClassifier builds the LLM-backed classifier unless one was injected.
func (a *App) initClassifier(newLLM LLMFactory) error {
	if a.classifier != nil {
		return nil
	}
	if newLLM == nil {
		return errors.New("no classifier injected and no LLM factory provided")
	}

	provider, err := newLLM(a.cfg.Classifier)
	if err != nil {
		return fmt.Errorf("create llm provider %q: %w", a.cfg.Classifier.Provider, err)
	}

	a.classifier = llmclass.New(provider,
		llmclass.WithTimeout(a.cfg.Classifier.Timeout.Std()),
		llmclass.WithThreshold(a.cfg.Classifier.ConfidenceThreshold),
	)
	return nil
}

// Run serves HTTP and keeps the catalog index fresh until ctx is cancelled.
// It returns nil on a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Session reaper only applies to the in-process store.
	if ms, ok := a.store.(*session.MemStore); ok {
		ms.StartReaper(ctx)
	}

	g.Go(func() error {
		a.refreshLoop(ctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// refreshLoop re-reads the catalog source on the configured interval. A
// failed refresh keeps the previous snapshot; the index is never cleared.
func (a *App) refreshLoop(ctx context.Context) {
	interval := a.cfg.Catalog.RefreshInterval.Std()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			err := a.index.Refresh(ctx, a.source)
			a.metrics.RecordCatalogRefresh(ctx, time.Since(start).Seconds(), err)
			if err != nil {
				slog.Warn("catalog refresh failed, keeping previous snapshot", "err", err)
				continue
			}
			slog.Debug("catalog refreshed", "restaurants", a.index.Len())
		}
	}
}

// Shutdown tears down all subsystems in reverse-init order. It respects the
// context deadline: if ctx expires before all closers finish, remaining
// closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		for i := len(a.closers) - 1; i >= 0; i-- {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", i+1)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := a.closers[i](); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
