package scoringservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type scoreboardOutcome = results.OperationResult[*ScoreboardResult, error]

// ScoreSnapshot scores a snapshot without storing it.
func (s *ScoringService) ScoreSnapshot(ctx context.Context, snap *scoringdomain.GameSnapshot) (*ScoreboardResult, error) {
	return unwrap(withTelemetry(s, ctx, "ScoreSnapshot", snapshotID(snap), func(ctx context.Context) (scoreboardOutcome, error) {
		if snap == nil {
			return results.FailureResult[*ScoreboardResult, error](ErrEmptySnapshot), nil
		}
		return results.SuccessResult[*ScoreboardResult, error](s.score(ctx, s.withDefaults(snap))), nil
	}))
}

// TraceSnapshot returns the scoreboard as each stage left it.
func (s *ScoringService) TraceSnapshot(ctx context.Context, snap *scoringdomain.GameSnapshot) ([]scoringdomain.StageResult, error) {
	return unwrap(withTelemetry(s, ctx, "TraceSnapshot", snapshotID(snap), func(ctx context.Context) (results.OperationResult[[]scoringdomain.StageResult, error], error) {
		if snap == nil {
			return results.FailureResult[[]scoringdomain.StageResult, error](ErrEmptySnapshot), nil
		}
		stages, _ := scoringdomain.NewPipeline().Trace(scoringdomain.NewScoringContext(*s.withDefaults(snap)))
		return results.SuccessResult[[]scoringdomain.StageResult, error](stages), nil
	}))
}

// SaveGame stores the snapshot and its scoreboard in one transaction. A
// snapshot without a game id is given a new one.
func (s *ScoringService) SaveGame(ctx context.Context, snap *scoringdomain.GameSnapshot) (*ScoreboardResult, error) {
	saveTx := func(ctx context.Context, db bun.IDB) (scoreboardOutcome, error) {
		if snap == nil {
			return results.FailureResult[*ScoreboardResult, error](ErrEmptySnapshot), nil
		}
		return s.saveGameLogic(ctx, db, snap)
	}

	return unwrap(withTelemetry(s, ctx, "SaveGame", snapshotID(snap), func(ctx context.Context) (scoreboardOutcome, error) {
		return runInTx(s, ctx, saveTx)
	}))
}

func (s *ScoringService) saveGameLogic(ctx context.Context, db bun.IDB, snap *scoringdomain.GameSnapshot) (scoreboardOutcome, error) {
	stored := s.withDefaults(snap)
	if stored.GameID == "" {
		stored.GameID = uuid.New().String()
	}

	if err := s.repo.SaveSnapshot(ctx, db, stored); err != nil {
		return scoreboardOutcome{}, fmt.Errorf("failed to save game: %w", err)
	}

	res := s.score(ctx, stored)
	if err := s.repo.SaveScoreboard(ctx, db, toStored(res)); err != nil {
		return scoreboardOutcome{}, fmt.Errorf("failed to save scoreboard: %w", err)
	}
	return results.SuccessResult[*ScoreboardResult, error](res), nil
}

// ScoreGame loads a stored game, scores it and stores the new scoreboard.
func (s *ScoringService) ScoreGame(ctx context.Context, gameID string) (*ScoreboardResult, error) {
	scoreTx := func(ctx context.Context, db bun.IDB) (scoreboardOutcome, error) {
		return s.scoreGameLogic(ctx, db, gameID)
	}

	return unwrap(withTelemetry(s, ctx, "ScoreGame", gameID, func(ctx context.Context) (scoreboardOutcome, error) {
		return runInTx(s, ctx, scoreTx)
	}))
}

func (s *ScoringService) scoreGameLogic(ctx context.Context, db bun.IDB, gameID string) (scoreboardOutcome, error) {
	snap, err := s.repo.GetSnapshot(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, scoringdb.ErrNotFound) {
			return results.FailureResult[*ScoreboardResult, error](fmt.Errorf("%w: %s", ErrGameNotFound, gameID)), nil
		}
		return scoreboardOutcome{}, fmt.Errorf("failed to load game: %w", err)
	}

	res := s.score(ctx, snap)
	if err := s.repo.SaveScoreboard(ctx, db, toStored(res)); err != nil {
		return scoreboardOutcome{}, fmt.Errorf("failed to save scoreboard: %w", err)
	}
	return results.SuccessResult[*ScoreboardResult, error](res), nil
}

// score runs the pipeline. Rule configuration errors are reported on the
// result, never as a failure.
func (s *ScoringService) score(ctx context.Context, snap *scoringdomain.GameSnapshot) *ScoreboardResult {
	sb, err := scoringdomain.Score(*snap)

	res := &ScoreboardResult{
		GameID:      snap.GameID,
		Name:        snap.Name,
		Fingerprint: sb.Fingerprint(),
		Scoreboard:  sb,
		ComputedAt:  s.now().UTC(),
	}

	var ruleErr *scoringdomain.RuleSetError
	if errors.As(err, &ruleErr) {
		for _, ce := range ruleErr.Errors {
			res.ConfigErrors = append(res.ConfigErrors, ce.Error())
		}
		s.logger.WarnContext(ctx, "Rule declarations skipped",
			attr.ExtractCorrelationID(ctx),
			attr.String("game_id", snap.GameID),
			attr.Int("config_errors", len(ruleErr.Errors)),
			attr.Error(ruleErr),
		)
		if s.metrics != nil {
			s.metrics.RecordConfigErrors(ctx, len(ruleErr.Errors))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordScoreboardComputed(ctx, len(snap.Holes), len(snap.Players))
	}
	return res
}

// withDefaults returns a copy of snap carrying the default rule-set when it
// declares none.
func (s *ScoringService) withDefaults(snap *scoringdomain.GameSnapshot) *scoringdomain.GameSnapshot {
	out := *snap
	if len(out.Options) == 0 && len(s.defaultOptions) > 0 {
		out.Options = append([]scoringdomain.OptionDeclaration(nil), s.defaultOptions...)
	}
	return &out
}

func toStored(res *ScoreboardResult) *scoringdb.StoredScoreboard {
	return &scoringdb.StoredScoreboard{
		GameID:       res.GameID,
		Fingerprint:  res.Fingerprint,
		Scoreboard:   res.Scoreboard,
		ConfigErrors: res.ConfigErrors,
	}
}

func fromStored(sb *scoringdb.StoredScoreboard) *ScoreboardResult {
	return &ScoreboardResult{
		GameID:       sb.GameID,
		Fingerprint:  sb.Fingerprint,
		Scoreboard:   sb.Scoreboard,
		ConfigErrors: sb.ConfigErrors,
		ComputedAt:   sb.ComputedAt,
	}
}

func snapshotID(snap *scoringdomain.GameSnapshot) string {
	if snap == nil {
		return ""
	}
	return snap.GameID
}
