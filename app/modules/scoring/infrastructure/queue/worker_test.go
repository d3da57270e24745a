package scoringqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringevents "github.com/spicygolf/spicy-sub003/app/modules/scoring/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	ScoreGameFunc func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error)
}

func (f *fakeScorer) ScoreGame(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
	return f.ScoreGameFunc(ctx, gameID)
}

type published struct {
	topic string
	msg   *message.Message
}

type fakePublisher struct {
	messages []published
	err      error
}

func (p *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if p.err != nil {
		return p.err
	}
	for _, m := range msgs {
		p.messages = append(p.messages, published{topic: topic, msg: m})
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func rescoreJob(gameID string) *river.Job[RescoreGameJob] {
	return &river.Job[RescoreGameJob]{
		JobRow: &rivertype.JobRow{ID: 42, Attempt: 1, Kind: RescoreGameJob{}.Kind()},
		Args:   RescoreGameJob{GameID: gameID},
	}
}

func TestRescoreWorker_Work(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	computedAt := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		scoreFunc  func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error)
		publishErr error
		wantTopic  string
		wantCancel bool
		wantErr    bool
	}{
		{
			name: "publishes computed scoreboard",
			scoreFunc: func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
				return &scoringservice.ScoreboardResult{GameID: gameID, Fingerprint: "abc", ComputedAt: computedAt}, nil
			},
			wantTopic: scoringevents.ScoreboardComputedV1,
		},
		{
			name: "unknown game is cancelled",
			scoreFunc: func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
				return nil, fmt.Errorf("%w: %s", scoringservice.ErrGameNotFound, gameID)
			},
			wantTopic:  scoringevents.ScoreboardFailedV1,
			wantCancel: true,
			wantErr:    true,
		},
		{
			name: "infrastructure error is retried",
			scoreFunc: func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
				return nil, errors.New("database unavailable")
			},
			wantErr: true,
		},
		{
			name: "publish failure is retried",
			scoreFunc: func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
				return &scoringservice.ScoreboardResult{GameID: gameID}, nil
			},
			publishErr: errors.New("nats down"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{err: tt.publishErr}
			w := NewRescoreWorker(logger, &fakeScorer{ScoreGameFunc: tt.scoreFunc}, pub)

			err := w.Work(context.Background(), rescoreJob("game-1"))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if tt.wantCancel {
				assert.ErrorIs(t, err, scoringservice.ErrGameNotFound)
			}

			if tt.wantTopic == "" {
				assert.Empty(t, pub.messages)
				return
			}
			require.Len(t, pub.messages, 1)
			assert.Equal(t, tt.wantTopic, pub.messages[0].topic)

			var payload struct {
				GameID string `json:"game_id"`
			}
			require.NoError(t, json.Unmarshal(pub.messages[0].msg.Payload, &payload))
			assert.Equal(t, "game-1", payload.GameID)
		})
	}
}

func TestRescoreWorker_WorkWithoutPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer := &fakeScorer{ScoreGameFunc: func(_ context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
		return &scoringservice.ScoreboardResult{GameID: gameID, Fingerprint: "abc"}, nil
	}}

	w := NewRescoreWorker(logger, scorer, nil)
	require.NoError(t, w.Work(context.Background(), rescoreJob("g1")))
}
