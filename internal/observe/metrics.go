// Package observe holds the OpenTelemetry instruments of the service.
// Tests should build their own Metrics with NewMetrics and a ManualReader
// instead of using DefaultMetrics.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/saturnino-fabrica-de-software/poise"

type Metrics struct {
	// FramesProcessed counts envelopes by attribute "status".
	FramesProcessed metric.Int64Counter

	// StageDuration tracks pipeline stage latency by "stage" and "outcome".
	StageDuration metric.Float64Histogram

	// SessionsCancelled counts integrity cancellations by "reason".
	SessionsCancelled metric.Int64Counter

	// ActiveSessions tracks sessions held in the registry.
	ActiveSessions metric.Int64UpDownCounter

	// DetectorRequests counts landmark detector calls by "provider", "kind", "status".
	DetectorRequests metric.Int64Counter

	// ReportsFinalized counts final reports by "pass_status".
	ReportsFinalized metric.Int64Counter

	// SpeechStreams tracks open speech-to-text streams.
	SpeechStreams metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request latency by "method" and "path".
	HTTPRequestDuration metric.Float64Histogram
}

// stageBuckets are in seconds; detector round-trips dominate.
var stageBuckets = []float64{
	0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FramesProcessed, err = m.Int64Counter("poise.frames.processed",
		metric.WithDescription("Frames analyzed by resulting envelope status."),
	); err != nil {
		return nil, err
	}
	if met.StageDuration, err = m.Float64Histogram("poise.pipeline.stage.duration",
		metric.WithDescription("Latency of a single pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SessionsCancelled, err = m.Int64Counter("poise.sessions.cancelled",
		metric.WithDescription("Sessions cancelled for an integrity violation."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("poise.sessions.active",
		metric.WithDescription("Sessions currently tracked."),
	); err != nil {
		return nil, err
	}
	if met.DetectorRequests, err = m.Int64Counter("poise.detector.requests",
		metric.WithDescription("Landmark detector calls by provider, kind and status."),
	); err != nil {
		return nil, err
	}
	if met.ReportsFinalized, err = m.Int64Counter("poise.reports.finalized",
		metric.WithDescription("Final session reports by pass status."),
	); err != nil {
		return nil, err
	}
	if met.SpeechStreams, err = m.Int64UpDownCounter("poise.speech.streams",
		metric.WithDescription("Open speech-to-text streams."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("poise.http.request.duration",
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

// DefaultMetrics returns the process-wide instance built on the global
// meter provider.
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

func (m *Metrics) RecordFrame(ctx context.Context, status string) {
	m.FramesProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) RecordStage(ctx context.Context, stage, outcome string, elapsed time.Duration) {
	m.StageDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("outcome", outcome),
		),
	)
}

func (m *Metrics) RecordCancellation(ctx context.Context, reason string) {
	m.SessionsCancelled.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordDetectorRequest(ctx context.Context, provider, kind, status string) {
	m.DetectorRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
			attribute.String("status", status),
		),
	)
}

func (m *Metrics) RecordReport(ctx context.Context, passStatus string) {
	m.ReportsFinalized.Add(ctx, 1, metric.WithAttributes(attribute.String("pass_status", passStatus)))
}
