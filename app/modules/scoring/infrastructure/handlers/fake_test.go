package scoringhandlers

import (
	"context"
	"time"

	scoringservice "github.com/spicygolf/spicy-sub003/app/modules/scoring/application"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
)

// ------------------------
// Fake Scoring Service
// ------------------------

type FakeScoringService struct {
	trace []string

	ScoreSnapshotFunc       func(ctx context.Context, snap *scoringdomain.GameSnapshot) (*scoringservice.ScoreboardResult, error)
	TraceSnapshotFunc       func(ctx context.Context, snap *scoringdomain.GameSnapshot) ([]scoringdomain.StageResult, error)
	SaveGameFunc            func(ctx context.Context, snap *scoringdomain.GameSnapshot) (*scoringservice.ScoreboardResult, error)
	ScoreGameFunc           func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error)
	ImportScorecardFunc     func(ctx context.Context, req scoringservice.ImportRequest) (*scoringservice.ScoreboardResult, error)
	GetScoreboardFunc       func(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error)
	ListGamesFunc           func(ctx context.Context, limit int) ([]scoringdb.GameSummary, error)
	DeleteGameFunc          func(ctx context.Context, gameID string) error
	RenderRunningTotalsFunc func(ctx context.Context, gameID string) ([]byte, error)
}

func NewFakeScoringService() *FakeScoringService {
	return &FakeScoringService{trace: []string{}}
}

func (f *FakeScoringService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScoringService) ScoreSnapshot(ctx context.Context, snap *scoringdomain.GameSnapshot) (*scoringservice.ScoreboardResult, error) {
	f.record("ScoreSnapshot")
	if f.ScoreSnapshotFunc != nil {
		return f.ScoreSnapshotFunc(ctx, snap)
	}
	return &scoringservice.ScoreboardResult{GameID: snap.GameID}, nil
}

func (f *FakeScoringService) TraceSnapshot(ctx context.Context, snap *scoringdomain.GameSnapshot) ([]scoringdomain.StageResult, error) {
	f.record("TraceSnapshot")
	if f.TraceSnapshotFunc != nil {
		return f.TraceSnapshotFunc(ctx, snap)
	}
	return nil, nil
}

func (f *FakeScoringService) SaveGame(ctx context.Context, snap *scoringdomain.GameSnapshot) (*scoringservice.ScoreboardResult, error) {
	f.record("SaveGame")
	if f.SaveGameFunc != nil {
		return f.SaveGameFunc(ctx, snap)
	}
	return &scoringservice.ScoreboardResult{GameID: snap.GameID}, nil
}

func (f *FakeScoringService) ScoreGame(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
	f.record("ScoreGame")
	if f.ScoreGameFunc != nil {
		return f.ScoreGameFunc(ctx, gameID)
	}
	return &scoringservice.ScoreboardResult{GameID: gameID}, nil
}

func (f *FakeScoringService) ImportScorecard(ctx context.Context, req scoringservice.ImportRequest) (*scoringservice.ScoreboardResult, error) {
	f.record("ImportScorecard")
	if f.ImportScorecardFunc != nil {
		return f.ImportScorecardFunc(ctx, req)
	}
	return &scoringservice.ScoreboardResult{GameID: req.GameID}, nil
}

func (f *FakeScoringService) GetScoreboard(ctx context.Context, gameID string) (*scoringservice.ScoreboardResult, error) {
	f.record("GetScoreboard")
	if f.GetScoreboardFunc != nil {
		return f.GetScoreboardFunc(ctx, gameID)
	}
	return &scoringservice.ScoreboardResult{GameID: gameID}, nil
}

func (f *FakeScoringService) ListGames(ctx context.Context, limit int) ([]scoringdb.GameSummary, error) {
	f.record("ListGames")
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, limit)
	}
	return nil, nil
}

func (f *FakeScoringService) DeleteGame(ctx context.Context, gameID string) error {
	f.record("DeleteGame")
	if f.DeleteGameFunc != nil {
		return f.DeleteGameFunc(ctx, gameID)
	}
	return nil
}

func (f *FakeScoringService) RenderRunningTotals(ctx context.Context, gameID string) ([]byte, error) {
	f.record("RenderRunningTotals")
	if f.RenderRunningTotalsFunc != nil {
		return f.RenderRunningTotalsFunc(ctx, gameID)
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeScoringService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// ------------------------
// Fake Scheduler
// ------------------------

type FakeScheduler struct {
	EnqueueRescoreFunc func(ctx context.Context, gameID string, at time.Time) (int64, error)

	gameIDs []string
	times   []time.Time
}

func (f *FakeScheduler) EnqueueRescore(ctx context.Context, gameID string, at time.Time) (int64, error) {
	f.gameIDs = append(f.gameIDs, gameID)
	f.times = append(f.times, at)
	if f.EnqueueRescoreFunc != nil {
		return f.EnqueueRescoreFunc(ctx, gameID, at)
	}
	return int64(len(f.gameIDs)), nil
}

// Ensure the fakes actually satisfy the interfaces
var (
	_ scoringservice.Service = (*FakeScoringService)(nil)
	_ Scheduler              = (*FakeScheduler)(nil)
)
