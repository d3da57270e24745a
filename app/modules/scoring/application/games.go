package scoringservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// GetScoreboard returns the last stored scoreboard of a game.
func (s *ScoringService) GetScoreboard(ctx context.Context, gameID string) (*ScoreboardResult, error) {
	return unwrap(withTelemetry(s, ctx, "GetScoreboard", gameID, func(ctx context.Context) (scoreboardOutcome, error) {
		stored, err := s.repo.GetScoreboard(ctx, nil, gameID)
		if err != nil {
			if errors.Is(err, scoringdb.ErrNotFound) {
				return results.FailureResult[*ScoreboardResult, error](fmt.Errorf("%w: %s", ErrScoreboardNotFound, gameID)), nil
			}
			return scoreboardOutcome{}, fmt.Errorf("failed to get scoreboard: %w", err)
		}
		return results.SuccessResult[*ScoreboardResult, error](fromStored(stored)), nil
	}))
}

// ListGames returns up to limit games, most recently updated first.
func (s *ScoringService) ListGames(ctx context.Context, limit int) ([]scoringdb.GameSummary, error) {
	return unwrap(withTelemetry(s, ctx, "ListGames", strconv.Itoa(limit), func(ctx context.Context) (results.OperationResult[[]scoringdb.GameSummary, error], error) {
		games, err := s.repo.ListGames(ctx, nil, limit)
		if err != nil {
			return results.OperationResult[[]scoringdb.GameSummary, error]{}, fmt.Errorf("failed to list games: %w", err)
		}
		return results.SuccessResult[[]scoringdb.GameSummary, error](games), nil
	}))
}

// DeleteGame removes a game together with its players and scoreboard.
func (s *ScoringService) DeleteGame(ctx context.Context, gameID string) error {
	_, err := unwrap(withTelemetry(s, ctx, "DeleteGame", gameID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
			if err := s.repo.DeleteGame(ctx, db, gameID); err != nil {
				if errors.Is(err, scoringdb.ErrNotFound) {
					return results.FailureResult[bool, error](fmt.Errorf("%w: %s", ErrGameNotFound, gameID)), nil
				}
				return results.OperationResult[bool, error]{}, fmt.Errorf("failed to delete game: %w", err)
			}
			return results.SuccessResult[bool, error](true), nil
		})
	}))
	return err
}
