// Package observe provides the observability primitives for polyglot:
// OpenTelemetry metrics, tracing, and the HTTP middleware tying them to slog.
//
// Metrics go through the OpenTelemetry Metrics API and are scraped through the
// Prometheus exporter bridge set up by [InitProvider]. Tests should build their
// own [Metrics] with [NewMetrics] and a manual reader.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all polyglot metrics.
const meterName = "github.com/nadzzz/polyglot"

// Stage names a pipeline stage recorded by [Metrics.ObserveStage].
type Stage string

const (
	StageGeneration  Stage = "generation"
	StageTranslation Stage = "translation"
	StageOCR         Stage = "ocr"
	StageSTT         Stage = "stt"
	StageTTS         Stage = "tts"
	StageDetection   Stage = "detection"
)

// Metrics holds the metric instruments for the service.
type Metrics struct {
	// StageDuration tracks collaborator latency. Attribute: "stage".
	StageDuration metric.Float64Histogram

	// ProviderRequests counts collaborator calls. Attributes: provider, kind, status.
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts collaborator failures. Attributes: provider, kind.
	ProviderErrors metric.Int64Counter

	// Translations counts successful translations. Attributes: source, target.
	Translations metric.Int64Counter

	// ActiveSessions tracks sessions held in the store.
	ActiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request latency. Attributes: method, path.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds. Model calls are slow,
// so the tail reaches further than a typical web service.
var latencyBuckets = []float64{
	0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates every instrument on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("polyglot.stage.duration",
		metric.WithDescription("Latency of a collaborator call by pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("polyglot.provider.requests",
		metric.WithDescription("Total collaborator requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("polyglot.provider.errors",
		metric.WithDescription("Total collaborator errors by provider and kind."),
	); err != nil {
		return nil, err
	}
	if met.Translations, err = m.Int64Counter("polyglot.translations",
		metric.WithDescription("Completed translations by language pair."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("polyglot.active_sessions",
		metric.WithDescription("Number of sessions held in memory."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("polyglot.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level instance built on the global
// meter provider. Call it after [InitProvider].
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

// ObserveStage records a stage duration plus the request/error counters for
// the provider that served it. It returns err unchanged so call sites can
// wrap a collaborator call in one line.
func (m *Metrics) ObserveStage(ctx context.Context, stage Stage, provider string, start time.Time, err error) error {
	if m == nil {
		return err
	}
	m.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", string(stage))),
	)
	status := "ok"
	if err != nil {
		status = "error"
		m.RecordProviderError(ctx, provider, string(stage))
	}
	m.RecordProviderRequest(ctx, provider, string(stage), status)
	return err
}

// RecordProviderRequest increments the provider request counter.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError increments the provider error counter.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}

// RecordTranslation increments the translation counter for a language pair.
func (m *Metrics) RecordTranslation(ctx context.Context, source, target string) {
	if m == nil {
		return
	}
	m.Translations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("target", target),
		),
	)
}

// SessionOpened and SessionClosed move the active session gauge.
func (m *Metrics) SessionOpened(ctx context.Context) {
	if m != nil {
		m.ActiveSessions.Add(ctx, 1)
	}
}

func (m *Metrics) SessionClosed(ctx context.Context) {
	if m != nil {
		m.ActiveSessions.Add(ctx, -1)
	}
}
