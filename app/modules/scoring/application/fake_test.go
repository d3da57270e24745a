package scoringservice

import (
	"context"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scoring Repo
// ------------------------

type FakeScoringRepo struct {
	trace []string

	GetSnapshotFunc    func(ctx context.Context, db bun.IDB, gameID string) (*scoringdomain.GameSnapshot, error)
	SaveSnapshotFunc   func(ctx context.Context, db bun.IDB, snap *scoringdomain.GameSnapshot) error
	DeleteGameFunc     func(ctx context.Context, db bun.IDB, gameID string) error
	SaveScoreboardFunc func(ctx context.Context, db bun.IDB, sb *scoringdb.StoredScoreboard) error
	GetScoreboardFunc  func(ctx context.Context, db bun.IDB, gameID string) (*scoringdb.StoredScoreboard, error)
	ListGamesFunc      func(ctx context.Context, db bun.IDB, limit int) ([]scoringdb.GameSummary, error)

	savedSnapshot   *scoringdomain.GameSnapshot
	savedScoreboard *scoringdb.StoredScoreboard
}

func NewFakeScoringRepo() *FakeScoringRepo {
	return &FakeScoringRepo{
		trace: []string{},
	}
}

func (f *FakeScoringRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScoringRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeScoringRepo) GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*scoringdomain.GameSnapshot, error) {
	f.record("GetSnapshot")
	if f.GetSnapshotFunc != nil {
		return f.GetSnapshotFunc(ctx, db, gameID)
	}
	if f.savedSnapshot != nil && f.savedSnapshot.GameID == gameID {
		return f.savedSnapshot, nil
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeScoringRepo) SaveSnapshot(ctx context.Context, db bun.IDB, snap *scoringdomain.GameSnapshot) error {
	f.record("SaveSnapshot")
	if f.SaveSnapshotFunc != nil {
		return f.SaveSnapshotFunc(ctx, db, snap)
	}
	f.savedSnapshot = snap
	return nil
}

func (f *FakeScoringRepo) DeleteGame(ctx context.Context, db bun.IDB, gameID string) error {
	f.record("DeleteGame")
	if f.DeleteGameFunc != nil {
		return f.DeleteGameFunc(ctx, db, gameID)
	}
	return nil
}

func (f *FakeScoringRepo) SaveScoreboard(ctx context.Context, db bun.IDB, sb *scoringdb.StoredScoreboard) error {
	f.record("SaveScoreboard")
	if f.SaveScoreboardFunc != nil {
		return f.SaveScoreboardFunc(ctx, db, sb)
	}
	f.savedScoreboard = sb
	return nil
}

func (f *FakeScoringRepo) GetScoreboard(ctx context.Context, db bun.IDB, gameID string) (*scoringdb.StoredScoreboard, error) {
	f.record("GetScoreboard")
	if f.GetScoreboardFunc != nil {
		return f.GetScoreboardFunc(ctx, db, gameID)
	}
	if f.savedScoreboard != nil && f.savedScoreboard.GameID == gameID {
		return f.savedScoreboard, nil
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeScoringRepo) ListGames(ctx context.Context, db bun.IDB, limit int) ([]scoringdb.GameSummary, error) {
	f.record("ListGames")
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, db, limit)
	}
	return []scoringdb.GameSummary{}, nil
}

var _ scoringdb.Repository = (*FakeScoringRepo)(nil)
