package scoringhandlers

import (
	"log/slog"
	"time"

	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	"go.opentelemetry.io/otel/trace"
)

// ScoringHandlers implements the Handlers interface.
type ScoringHandlers struct {
	service   scoringservice.Service
	scheduler Scheduler
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewScoringHandlers creates a new ScoringHandlers instance.
func NewScoringHandlers(
	service scoringservice.Service,
	scheduler Scheduler,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &ScoringHandlers{
		service:   service,
		scheduler: scheduler,
		logger:    logger,
		tracer:    tracer,
		now:       time.Now,
	}
}
