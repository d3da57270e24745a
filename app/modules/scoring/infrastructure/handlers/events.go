package scoringhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/handlerwrapper"
	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
	scoringqueue "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/queue"
)

// HandleGameUpdated stores the attached snapshot, or rescores the stored game
// when none is attached, and publishes the scoreboard.
func (h *ScoringHandlers) HandleGameUpdated(ctx context.Context, payload *scoringevents.GameUpdatedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleGameUpdated")
	defer span.End()

	var (
		result *scoringservice.ScoreboardResult
		err    error
	)
	switch {
	case payload.Snapshot != nil:
		snap := *payload.Snapshot
		if snap.GameID == "" {
			snap.GameID = payload.GameID
		}
		result, err = h.service.SaveGame(ctx, &snap)
	case payload.GameID != "":
		result, err = h.service.ScoreGame(ctx, payload.GameID)
	default:
		h.logger.WarnContext(ctx, "Game update without game id or snapshot")
		return nil, nil
	}

	if err != nil {
		if errors.Is(err, scoringservice.ErrGameNotFound) || errors.Is(err, scoringservice.ErrEmptySnapshot) {
			h.logger.WarnContext(ctx, "Game could not be scored",
				attr.String("game_id", payload.GameID),
				attr.Error(err),
			)
			return []handlerwrapper.Result{{
				Topic: scoringevents.ScoreboardFailedV1,
				Payload: &scoringevents.ScoreboardFailedPayloadV1{
					GameID: payload.GameID,
					Reason: err.Error(),
				},
			}}, nil
		}
		h.logger.ErrorContext(ctx, "Failed to score game",
			attr.String("game_id", payload.GameID),
			attr.Error(err),
		)
		return nil, err
	}

	h.logger.InfoContext(ctx, "Scoreboard computed",
		attr.String("game_id", result.GameID),
		attr.String("fingerprint", result.Fingerprint),
		attr.Int("config_errors", len(result.ConfigErrors)),
	)

	replyTopic := scoringevents.ScoreboardComputedV1
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		replyTopic = rt
	}

	return []handlerwrapper.Result{{
		Topic:   replyTopic,
		Payload: computedPayload(result),
	}}, nil
}

// HandleRescoreRequested queues a rescore and confirms the job.
func (h *ScoringHandlers) HandleRescoreRequested(ctx context.Context, payload *scoringevents.RescoreRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ScoringHandlers.HandleRescoreRequested")
	defer span.End()

	if payload.GameID == "" {
		h.logger.WarnContext(ctx, "Rescore request without game id")
		return nil, nil
	}

	if h.scheduler == nil {
		h.logger.WarnContext(ctx, "Rescore requested but no queue is configured",
			slog.String("game_id", payload.GameID),
		)
		return []handlerwrapper.Result{{
			Topic: scoringevents.ScoreboardFailedV1,
			Payload: &scoringevents.ScoreboardFailedPayloadV1{
				GameID: payload.GameID,
				Reason: "rescore queue unavailable",
			},
		}}, nil
	}

	at, err := scoringqueue.ParseScheduleTime(payload.At, h.now())
	if err != nil {
		h.logger.WarnContext(ctx, "Rescore request has an unreadable time",
			attr.String("game_id", payload.GameID),
			attr.String("at", payload.At),
			attr.Error(err),
		)
		return []handlerwrapper.Result{{
			Topic: scoringevents.ScoreboardFailedV1,
			Payload: &scoringevents.ScoreboardFailedPayloadV1{
				GameID: payload.GameID,
				Reason: err.Error(),
			},
		}}, nil
	}

	jobID, err := h.scheduler.EnqueueRescore(ctx, payload.GameID, at)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to enqueue rescore",
			attr.String("game_id", payload.GameID),
			attr.Error(err),
		)
		return nil, fmt.Errorf("enqueue rescore: %w", err)
	}

	return []handlerwrapper.Result{{
		Topic: scoringevents.RescoreScheduledV1,
		Payload: &scoringevents.RescoreScheduledPayloadV1{
			GameID:      payload.GameID,
			JobID:       jobID,
			ScheduledAt: at,
		},
	}}, nil
}

func computedPayload(result *scoringservice.ScoreboardResult) *scoringevents.ScoreboardComputedPayloadV1 {
	return &scoringevents.ScoreboardComputedPayloadV1{
		GameID:       result.GameID,
		Fingerprint:  result.Fingerprint,
		Scoreboard:   result.Scoreboard,
		ConfigErrors: result.ConfigErrors,
		ComputedAt:   result.ComputedAt,
	}
}
