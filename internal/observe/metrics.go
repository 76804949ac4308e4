// Package observe provides application-wide observability primitives for
// Vorder: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Vorder metrics.
const meterName = "github.com/vorder/vorder"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per dialogue stage ---

	// TurnDuration tracks end-to-end turn processing latency.
	TurnDuration metric.Float64Histogram

	// ClassifierDuration tracks LLM intent classification latency.
	ClassifierDuration metric.Float64Histogram

	// CatalogRefreshDuration tracks catalog snapshot refresh latency.
	CatalogRefreshDuration metric.Float64Histogram

	// --- Counters ---

	// Turns counts processed turns. Use with attributes:
	//   attribute.String("intent", ...), attribute.String("status", ...)
	Turns metric.Int64Counter

	// ClassifierFallbacks counts turns where the LLM verdict was unusable
	// and the rule layer alone decided the intent.
	ClassifierFallbacks metric.Int64Counter

	// OrdersConfirmed counts confirmed orders. Use with attribute:
	//   attribute.String("restaurant_id", ...)
	OrdersConfirmed metric.Int64Counter

	// --- Error counters ---

	// CatalogRefreshErrors counts failed catalog refreshes.
	CatalogRefreshErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live dialogue sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for dialogue-turn latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TurnDuration, err = m.Float64Histogram("vorder.turn.duration",
		metric.WithDescription("End-to-end latency of one dialogue turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifierDuration, err = m.Float64Histogram("vorder.classifier.duration",
		metric.WithDescription("Latency of LLM intent classification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CatalogRefreshDuration, err = m.Float64Histogram("vorder.catalog.refresh.duration",
		metric.WithDescription("Latency of catalog snapshot refresh."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Turns, err = m.Int64Counter("vorder.turns",
		metric.WithDescription("Total processed turns by intent and status."),
	); err != nil {
		return nil, err
	}
	if met.ClassifierFallbacks, err = m.Int64Counter("vorder.classifier.fallbacks",
		metric.WithDescription("Turns decided by rules alone because the LLM verdict was unusable."),
	); err != nil {
		return nil, err
	}
	if met.OrdersConfirmed, err = m.Int64Counter("vorder.orders.confirmed",
		metric.WithDescription("Total confirmed orders by restaurant."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.CatalogRefreshErrors, err = m.Int64Counter("vorder.catalog.refresh.errors",
		metric.WithDescription("Total failed catalog refreshes."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("vorder.active_sessions",
		metric.WithDescription("Number of live dialogue sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("vorder.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTurn records one processed turn with the standard attribute set.
func (m *Metrics) RecordTurn(ctx context.Context, intent, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	)
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, seconds, attrs)
}

// RecordClassifierFallback records a turn that was decided without a usable
// LLM verdict.
func (m *Metrics) RecordClassifierFallback(ctx context.Context) {
	m.ClassifierFallbacks.Add(ctx, 1)
}

// RecordOrderConfirmed records one confirmed order.
func (m *Metrics) RecordOrderConfirmed(ctx context.Context, restaurantID string) {
	m.OrdersConfirmed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("restaurant_id", restaurantID)),
	)
}

// RecordCatalogRefresh records one catalog refresh attempt.
func (m *Metrics) RecordCatalogRefresh(ctx context.Context, seconds float64, err error) {
	m.CatalogRefreshDuration.Record(ctx, seconds)
	if err != nil {
		m.CatalogRefreshErrors.Add(ctx, 1)
	}
}
