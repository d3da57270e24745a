package scoringmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, registry *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterWithLabels(f *dto.MetricFamily, labels map[string]string) float64 {
	for _, m := range f.GetMetric() {
		matched := 0
		for _, lp := range m.GetLabel() {
			if labels[lp.GetName()] == lp.GetValue() {
				matched++
			}
		}
		if matched == len(labels) {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "ScoreGame", "ScoringService")
	m.RecordOperationSuccess(ctx, "ScoreGame", "ScoringService")
	m.RecordOperationFailure(ctx, "ScoreGame", "ScoringService")
	m.RecordOperationDuration(ctx, "ScoreGame", "ScoringService", 20*time.Millisecond)
	m.RecordScoreboardComputed(ctx, 18, 4)
	m.RecordConfigErrors(ctx, 2)
	m.RecordImport(ctx, "csv", true)
	m.RecordImport(ctx, "csv", false)

	families := gather(t, registry)

	require.Contains(t, families, "scoring_operations_total")
	assert.Equal(t, 1.0, counterWithLabels(families["scoring_operations_total"], map[string]string{
		"operation": "ScoreGame", "service": "ScoringService", "outcome": "success",
	}))

	require.Contains(t, families, "scoring_config_errors_total")
	assert.Equal(t, 2.0, families["scoring_config_errors_total"].GetMetric()[0].GetCounter().GetValue())

	require.Contains(t, families, "scoring_scoreboard_holes")
	h := families["scoring_scoreboard_holes"].GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), h.GetSampleCount())
	assert.Equal(t, 18.0, h.GetSampleSum())

	assert.Equal(t, 1.0, counterWithLabels(families["scoring_imports_total"], map[string]string{
		"format": "csv", "outcome": "failure",
	}))
	assert.Contains(t, families, "scoring_operation_duration_seconds")
}

func TestNewPrometheusMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewPrometheusMetrics(registry)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics(registry)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	m := NewNoop()
	assert.NotPanics(t, func() {
		m.RecordOperationAttempt(context.Background(), "op", "svc")
		m.RecordConfigErrors(context.Background(), 3)
	})
}
