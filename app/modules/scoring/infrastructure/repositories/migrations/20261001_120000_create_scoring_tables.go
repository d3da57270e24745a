package scoringmigrations

import (
	"context"
	"fmt"

	scoringdb "github.com/spicygolf/spicy-sub003/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating scoring tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			models := []any{
				(*scoringdb.Game)(nil),
				(*scoringdb.GamePlayer)(nil),
				(*scoringdb.StoredScoreboard)(nil),
			}
			for _, model := range models {
				if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create table for %T: %w", model, err)
				}
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_scoring_games_updated_at ON scoring_games(updated_at DESC);
				CREATE INDEX IF NOT EXISTS idx_scoring_game_players_game_id ON scoring_game_players(game_id, seq);
			`); err != nil {
				return fmt.Errorf("failed to create scoring indexes: %w", err)
			}

			fmt.Println("Scoring tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping scoring tables...")

		for _, model := range []any{
			(*scoringdb.StoredScoreboard)(nil),
			(*scoringdb.GamePlayer)(nil),
			(*scoringdb.Game)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Scoring tables dropped successfully!")
		return nil
	})
}
