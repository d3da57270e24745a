package scoringdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new scoring repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetSnapshot loads a game and its players ordered as they were saved.
func (r *Impl) GetSnapshot(ctx context.Context, db bun.IDB, gameID string) (*scoringdomain.GameSnapshot, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Where("id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}

	var players []GamePlayer
	err = db.NewSelect().
		Model(&players).
		Where("game_id = ?", gameID).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players for game %s: %w", gameID, err)
	}

	return ToSnapshot(game, players), nil
}

// SaveSnapshot upserts the game row and replaces its players.
func (r *Impl) SaveSnapshot(ctx context.Context, db bun.IDB, snap *scoringdomain.GameSnapshot) error {
	if snap == nil || snap.GameID == "" {
		return fmt.Errorf("snapshot has no game id")
	}
	db = r.resolveDB(db)
	game, players := FromSnapshot(snap)
	game.UpdatedAt = time.Now()

	_, err := db.NewInsert().
		Model(game).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("holes = EXCLUDED.holes").
		Set("teams = EXCLUDED.teams").
		Set("options = EXCLUDED.options").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", snap.GameID, err)
	}

	if _, err := db.NewDelete().
		Model((*GamePlayer)(nil)).
		Where("game_id = ?", snap.GameID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear players for game %s: %w", snap.GameID, err)
	}

	if len(players) > 0 {
		if _, err := db.NewInsert().Model(&players).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert players for game %s: %w", snap.GameID, err)
		}
	}
	return nil
}

// DeleteGame removes a game and everything stored for it.
func (r *Impl) DeleteGame(ctx context.Context, db bun.IDB, gameID string) error {
	db = r.resolveDB(db)

	if _, err := db.NewDelete().
		Model((*StoredScoreboard)(nil)).
		Where("game_id = ?", gameID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete scoreboard for game %s: %w", gameID, err)
	}
	if _, err := db.NewDelete().
		Model((*GamePlayer)(nil)).
		Where("game_id = ?", gameID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete players for game %s: %w", gameID, err)
	}

	result, err := db.NewDelete().
		Model((*Game)(nil)).
		Where("id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveScoreboard upserts the scoreboard row for a game.
func (r *Impl) SaveScoreboard(ctx context.Context, db bun.IDB, sb *StoredScoreboard) error {
	db = r.resolveDB(db)
	sb.ComputedAt = time.Now()
	_, err := db.NewInsert().
		Model(sb).
		On("CONFLICT (game_id) DO UPDATE").
		Set("fingerprint = EXCLUDED.fingerprint").
		Set("scoreboard = EXCLUDED.scoreboard").
		Set("config_errors = EXCLUDED.config_errors").
		Set("computed_at = EXCLUDED.computed_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save scoreboard for game %s: %w", sb.GameID, err)
	}
	return nil
}

// GetScoreboard loads the stored scoreboard of a game.
func (r *Impl) GetScoreboard(ctx context.Context, db bun.IDB, gameID string) (*StoredScoreboard, error) {
	db = r.resolveDB(db)
	sb := new(StoredScoreboard)
	err := db.NewSelect().
		Model(sb).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scoreboard for game %s: %w", gameID, err)
	}
	return sb, nil
}

// ListGames returns game summaries, newest first.
func (r *Impl) ListGames(ctx context.Context, db bun.IDB, limit int) ([]GameSummary, error) {
	db = r.resolveDB(db)
	if limit <= 0 {
		limit = 50
	}

	var summaries []GameSummary
	err := db.NewSelect().
		TableExpr("scoring_games AS g").
		ColumnExpr("g.id, g.name, g.updated_at").
		ColumnExpr("(SELECT COUNT(*) FROM scoring_game_players gp WHERE gp.game_id = g.id) AS players").
		ColumnExpr("COALESCE(sb.fingerprint, '') AS fingerprint").
		Join("LEFT JOIN scoring_scoreboards AS sb ON sb.game_id = g.id").
		OrderExpr("g.updated_at DESC").
		Limit(limit).
		Scan(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return summaries, nil
}
