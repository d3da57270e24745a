package scoringmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScoringMetrics records scoring operations and scoreboard outcomes.
type ScoringMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordScoreboardComputed(ctx context.Context, holes, players int)
	RecordConfigErrors(ctx context.Context, count int)
	RecordImport(ctx context.Context, format string, success bool)
}

// PrometheusMetrics implements ScoringMetrics on a prometheus registry.
type PrometheusMetrics struct {
	operations   *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	scoreboards  prometheus.Counter
	holesScored  prometheus.Histogram
	configErrors prometheus.Counter
	imports      *prometheus.CounterVec
}

// NewPrometheusMetrics creates the scoring collectors and registers them.
func NewPrometheusMetrics(registry prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "operations_total",
			Help:      "Scoring service operations by outcome.",
		}, []string{"operation", "service", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scoring",
			Name:      "operation_duration_seconds",
			Help:      "Scoring service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		scoreboards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "scoreboards_computed_total",
			Help:      "Scoreboards produced by the pipeline.",
		}),
		holesScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scoring",
			Name:      "scoreboard_holes",
			Help:      "Holes per computed scoreboard.",
			Buckets:   []float64{1, 3, 6, 9, 12, 18, 27, 36},
		}),
		configErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "config_errors_total",
			Help:      "Rule declarations skipped because they were malformed.",
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "imports_total",
			Help:      "Scorecard imports by file format and outcome.",
		}, []string{"format", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.durations, m.scoreboards, m.holesScored, m.configErrors, m.imports} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "failure").Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordScoreboardComputed(_ context.Context, holes, _ int) {
	m.scoreboards.Inc()
	m.holesScored.Observe(float64(holes))
}

func (m *PrometheusMetrics) RecordConfigErrors(_ context.Context, count int) {
	m.configErrors.Add(float64(count))
}

func (m *PrometheusMetrics) RecordImport(_ context.Context, format string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.imports.WithLabelValues(format, outcome).Inc()
}

var _ ScoringMetrics = (*PrometheusMetrics)(nil)
