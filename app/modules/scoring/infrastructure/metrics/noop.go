package scoringmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() ScoringMetrics {
	return NoOpMetrics{}
}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordScoreboardComputed(context.Context, int, int)                     {}
func (NoOpMetrics) RecordConfigErrors(context.Context, int)                                {}
func (NoOpMetrics) RecordImport(context.Context, string, bool)                             {}
