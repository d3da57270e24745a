package scoringevents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
)

// Stream and subjects of the scoring module.
const (
	StreamName = "scoring"

	// GameUpdatedV1 asks for a game to be stored (when a snapshot is attached)
	// and scored.
	GameUpdatedV1 = "scoring.game.updated.v1"

	// RescoreRequestedV1 asks for a stored game to be rescored, optionally later.
	RescoreRequestedV1 = "scoring.rescore.requested.v1"

	// ScoreboardComputedV1 carries a freshly computed scoreboard.
	ScoreboardComputedV1 = "scoring.scoreboard.computed.v1"

	// ScoreboardFailedV1 reports a game that could not be scored.
	ScoreboardFailedV1 = "scoring.scoreboard.failed.v1"

	// RescoreScheduledV1 confirms a queued rescore.
	RescoreScheduledV1 = "scoring.rescore.scheduled.v1"
)

// Subjects lists every subject the scoring stream carries.
var Subjects = []string{
	GameUpdatedV1,
	RescoreRequestedV1,
	ScoreboardComputedV1,
	ScoreboardFailedV1,
	RescoreScheduledV1,
}

// GameUpdatedPayloadV1 is published when a game changes. Without a snapshot
// the stored game is rescored.
type GameUpdatedPayloadV1 struct {
	GameID   string                      `json:"game_id"`
	Snapshot *scoringdomain.GameSnapshot `json:"snapshot,omitempty"`
}

// RescoreRequestedPayloadV1 asks for a rescore at a given time, either
// RFC 3339 or natural language such as "in 2 hours". Empty means as soon
// as possible.
type RescoreRequestedPayloadV1 struct {
	GameID string `json:"game_id"`
	At     string `json:"at,omitempty"`
}

// ScoreboardComputedPayloadV1 is a computed scoreboard.
type ScoreboardComputedPayloadV1 struct {
	GameID       string                   `json:"game_id"`
	Fingerprint  string                   `json:"fingerprint"`
	Scoreboard   scoringdomain.Scoreboard `json:"scoreboard"`
	ConfigErrors []string                 `json:"config_errors,omitempty"`
	ComputedAt   time.Time                `json:"computed_at"`
}

// ScoreboardFailedPayloadV1 explains why a game was not scored.
type ScoreboardFailedPayloadV1 struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// RescoreScheduledPayloadV1 confirms a queued rescore job.
type RescoreScheduledPayloadV1 struct {
	GameID      string    `json:"game_id"`
	JobID       int64     `json:"job_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewMessage marshals payload into a watermill message carrying the
// correlation id found in ctx, or a new one.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", payload, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)

	correlationID := CorrelationID(ctx)
	if correlationID == "" {
		correlationID = watermill.NewShortUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	return msg, nil
}

type correlationKey struct{}

// WithCorrelationID stores a correlation id in ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation id stored in ctx.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
