package scoringqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
)

// Scorer rescores stored games.
type Scorer interface {
	ScoreGame(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error)
}

// RescoreWorker runs RescoreGameJob.
type RescoreWorker struct {
	river.WorkerDefaults[RescoreGameJob]

	scorer    Scorer
	publisher message.Publisher
	logger    *slog.Logger
}

// NewRescoreWorker creates the worker.
func NewRescoreWorker(logger *slog.Logger, scorer Scorer, publisher message.Publisher) *RescoreWorker {
	return &RescoreWorker{scorer: scorer, publisher: publisher, logger: logger}
}

// Work rescores the game. Unknown games are cancelled rather than retried.
func (w *RescoreWorker) Work(ctx context.Context, job *river.Job[RescoreGameJob]) error {
	logger := w.logger.With(
		attr.String("game_id", job.Args.GameID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)
	logger.InfoContext(ctx, "Processing rescore job")

	res, err := w.scorer.ScoreGame(ctx, job.Args.GameID)
	if err != nil {
		if errors.Is(err, scoringservice.ErrGameNotFound) {
			logger.WarnContext(ctx, "Rescore job for unknown game cancelled", attr.Error(err))
			if pubErr := w.publish(ctx, scoringevents.ScoreboardFailedV1, scoringevents.ScoreboardFailedPayloadV1{
				GameID: job.Args.GameID,
				Reason: err.Error(),
			}); pubErr != nil {
				logger.ErrorContext(ctx, "Failed to publish scoreboard failure", attr.Error(pubErr))
			}
			return river.JobCancel(err)
		}
		logger.ErrorContext(ctx, "Rescore failed", attr.Error(err))
		return err
	}

	if err := w.publish(ctx, scoringevents.ScoreboardComputedV1, scoringevents.ScoreboardComputedPayloadV1{
		GameID:       res.GameID,
		Fingerprint:  res.Fingerprint,
		Scoreboard:   res.Scoreboard,
		ConfigErrors: res.ConfigErrors,
		ComputedAt:   res.ComputedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish scoreboard", attr.Error(err))
		return err
	}

	logger.InfoContext(ctx, "Rescore job completed", attr.String("fingerprint", res.Fingerprint))
	return nil
}

// publish is a no-op without an event bus.
func (w *RescoreWorker) publish(ctx context.Context, topic string, payload any) error {
	if w.publisher == nil {
		return nil
	}
	msg, err := scoringevents.NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := w.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}
