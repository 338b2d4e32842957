// Package telemetry provides OpenTelemetry instrumentation for the
// lexiscan service. It exports Prometheus metrics and provides tracing.
package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "lexiscan"

// Metrics holds all lexiscan Prometheus metrics.
type Metrics struct {
	// Scoring metrics
	TextsScored     *prometheus.CounterVec
	ScoringFailed   *prometheus.CounterVec
	ScoringDuration *prometheus.HistogramVec
	LabelTotal      *prometheus.CounterVec
	EmptyInputs     prometheus.Counter

	// Batch metrics
	BatchSize     prometheus.Histogram
	BatchDuration prometheus.Histogram

	// Profile metrics
	ProfilesLoaded  prometheus.Gauge
	ProfileCompiles *prometheus.CounterVec
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// Metrics register against the default Prometheus registry, which only
// tolerates one registration per name, so they are initialized once and
// shared by every Provider in the process.
var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	metricsOnce.Do(func() {
		sharedMetrics = initMetrics()
	})
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: sharedMetrics,
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initScoringMetrics(m)
	initBatchMetrics(m)
	initProfileMetrics(m)
	return m
}

func initScoringMetrics(m *Metrics) {
	m.TextsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexiscan_texts_scored_total",
		Help: "Total texts scored, by detector",
	}, []string{"detector"})

	m.ScoringFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexiscan_scoring_failed_total",
		Help: "Total scoring requests rejected, by detector and error code",
	}, []string{"detector", "error_code"})

	m.ScoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lexiscan_scoring_duration_seconds",
		Help:    "Time to score a single text",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	}, []string{"detector"})

	m.LabelTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexiscan_classification_total",
		Help: "Classification outcomes, by detector and label",
	}, []string{"detector", "label"})

	m.EmptyInputs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lexiscan_empty_inputs_total",
		Help: "Scoring requests that carried empty text",
	})
}

func initBatchMetrics(m *Metrics) {
	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lexiscan_batch_size",
		Help:    "Number of texts per batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
	})

	m.BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lexiscan_batch_duration_seconds",
		Help:    "Time to score a full batch",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	})
}

func initProfileMetrics(m *Metrics) {
	m.ProfilesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lexiscan_profiles_loaded",
		Help: "Detector profiles currently compiled in the registry",
	})

	m.ProfileCompiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexiscan_profile_compiles_total",
		Help: "Profile compilation attempts, by outcome",
	}, []string{"outcome"})
}

// RecordScore records metrics for a single scoring run.
func (p *Provider) RecordScore(ctx context.Context, detector, label string, duration time.Duration) {
	p.Metrics.TextsScored.WithLabelValues(detector).Inc()
	p.Metrics.ScoringDuration.WithLabelValues(detector).Observe(duration.Seconds())
	p.Metrics.LabelTotal.WithLabelValues(detector, label).Inc()
}

// RecordScoringFailure records a rejected scoring request.
func (p *Provider) RecordScoringFailure(ctx context.Context, detector, errorCode string) {
	p.Metrics.ScoringFailed.WithLabelValues(detector, errorCode).Inc()
}

// RecordEmptyInput counts a scoring request with empty text.
func (p *Provider) RecordEmptyInput(ctx context.Context) {
	p.Metrics.EmptyInputs.Inc()
}

// RecordBatch records the size and duration of a processed batch.
func (p *Provider) RecordBatch(size int, duration time.Duration) {
	p.Metrics.BatchSize.Observe(float64(size))
	p.Metrics.BatchDuration.Observe(duration.Seconds())
}

// SetProfilesLoaded sets the number of compiled profiles.
func (p *Provider) SetProfilesLoaded(n int) {
	p.Metrics.ProfilesLoaded.Set(float64(n))
}

// RecordProfileCompile counts a profile compilation attempt.
func (p *Provider) RecordProfileCompile(success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	p.Metrics.ProfileCompiles.WithLabelValues(outcome).Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
