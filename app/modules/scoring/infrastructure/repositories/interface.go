package scoringdb

import (
	"context"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for game snapshot and scoreboard persistence.
type Repository interface {
	// GetSnapshot loads a game and its players as a snapshot.
	GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*scoringdomain.GameSnapshot, error)

	// SaveSnapshot creates or replaces a game and all of its players.
	SaveSnapshot(ctx context.Context, db bun.IDB, snap *scoringdomain.GameSnapshot) error

	// DeleteGame removes a game, its players and its scoreboard.
	DeleteGame(ctx context.Context, db bun.IDB, gameID string) error

	// SaveScoreboard stores the latest scoreboard of a game.
	SaveScoreboard(ctx context.Context, db bun.IDB, sb *StoredScoreboard) error

	// GetScoreboard loads the latest scoreboard of a game.
	GetScoreboard(ctx context.Context, db bun.IDB, gameID string) (*StoredScoreboard, error)

	// ListGames returns the most recently updated games.
	ListGames(ctx context.Context, db bun.IDB, limit int) ([]GameSummary, error)
}
