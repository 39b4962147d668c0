package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ManifestMetricsMeterName is the name used for the manifest metrics meter
const ManifestMetricsMeterName = "github.com/relicta-dev/version-check-api/manifest"

// Fetch result values recorded on the fetch counter
const (
	FetchResultSuccess   = "success"
	FetchResultUnchanged = "unchanged"
	FetchResultError     = "error"
)

// ManifestMetrics holds the OpenTelemetry instruments for manifest fetch and
// cache metrics
type ManifestMetrics struct {
	fetchesTotal  metric.Int64Counter
	fetchDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	staleServes   metric.Int64Counter
}

// NewManifestMetrics creates a new ManifestMetrics instance with the given
// meter provider. If provider is nil, it returns nil (no-op metrics).
func NewManifestMetrics(provider metric.MeterProvider) (*ManifestMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ManifestMetricsMeterName)

	fetchesTotal, err := meter.Int64Counter(
		"verchk_manifest_fetches_total",
		metric.WithDescription("Total number of upstream manifest fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"verchk_manifest_fetch_duration_seconds",
		metric.WithDescription("Duration of upstream manifest fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"verchk_version_cache_hits_total",
		metric.WithDescription("Requests served from the fresh version cache"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	staleServes, err := meter.Int64Counter(
		"verchk_version_stale_serves_total",
		metric.WithDescription("Requests served stale cached versions after a failed refresh"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &ManifestMetrics{
		fetchesTotal:  fetchesTotal,
		fetchDuration: fetchDuration,
		cacheHits:     cacheHits,
		staleServes:   staleServes,
	}, nil
}

// RecordFetch records one upstream fetch attempt and its duration
func (m *ManifestMetrics) RecordFetch(ctx context.Context, result string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("result", result))
	m.fetchesTotal.Add(ctx, 1, attrs)
	m.fetchDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCacheHit records a request served from the fresh cache
func (m *ManifestMetrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1)
}

// RecordStaleServe records a request served a stale cached version
func (m *ManifestMetrics) RecordStaleServe(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleServes.Add(ctx, 1)
}
