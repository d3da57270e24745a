package scoringservice

import (
	"context"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
)

// Service defines the contract for scoring games.
type Service interface {
	// ScoreSnapshot scores a snapshot without storing anything.
	ScoreSnapshot(ctx context.Context, snap *scoringdomain.GameSnapshot) (*ScoreboardResult, error)

	// TraceSnapshot scores a snapshot and returns the scoreboard after every stage.
	TraceSnapshot(ctx context.Context, snap *scoringdomain.GameSnapshot) ([]scoringdomain.StageResult, error)

	// SaveGame stores a snapshot, scores it and stores the scoreboard.
	SaveGame(ctx context.Context, snap *scoringdomain.GameSnapshot) (*ScoreboardResult, error)

	// ScoreGame rescores a stored game.
	ScoreGame(ctx context.Context, gameID string) (*ScoreboardResult, error)

	// ImportScorecard parses a scorecard or snapshot file and saves it as a game.
	ImportScorecard(ctx context.Context, req ImportRequest) (*ScoreboardResult, error)

	// GetScoreboard returns the stored scoreboard of a game.
	GetScoreboard(ctx context.Context, gameID string) (*ScoreboardResult, error)

	// ListGames returns recently updated games.
	ListGames(ctx context.Context, limit int) ([]scoringdb.GameSummary, error)

	// DeleteGame removes a game and its scoreboard.
	DeleteGame(ctx context.Context, gameID string) error

	// RenderRunningTotals renders a PNG chart of every player's running points.
	RenderRunningTotals(ctx context.Context, gameID string) ([]byte, error)
}
