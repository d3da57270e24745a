package scoringdb

import (
	"time"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"github.com/uptrace/bun"
)

// Game is a stored game snapshot header. Holes, teams and options are kept
// as jsonb since they are always read together with the game.
type Game struct {
	bun.BaseModel `bun:"table:scoring_games,alias:g"`

	ID        string                                  `bun:"id,pk"`
	Name      string                                  `bun:"name"`
	Holes     []scoringdomain.HoleSnapshot            `bun:"holes,type:jsonb,notnull"`
	Teams     map[string][]scoringdomain.TeamSnapshot `bun:"teams,type:jsonb"`
	Options   []scoringdomain.OptionDeclaration       `bun:"options,type:jsonb"`
	CreatedAt time.Time                               `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time                               `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// GamePlayer is one player of a stored game.
type GamePlayer struct {
	bun.BaseModel `bun:"table:scoring_game_players,alias:gp"`

	GameID         string                                  `bun:"game_id,pk"`
	PlayerID       string                                  `bun:"player_id,pk"`
	Seq            int                                     `bun:"seq,notnull"`
	Name           string                                  `bun:"name"`
	CourseHandicap *int                                    `bun:"course_handicap"`
	Scores         map[string]scoringdomain.HoleScoreEntry `bun:"scores,type:jsonb"`
}

// StoredScoreboard is the last scoreboard computed for a game.
type StoredScoreboard struct {
	bun.BaseModel `bun:"table:scoring_scoreboards,alias:sb"`

	GameID       string                   `bun:"game_id,pk"`
	Fingerprint  string                   `bun:"fingerprint,notnull"`
	Scoreboard   scoringdomain.Scoreboard `bun:"scoreboard,type:jsonb,notnull"`
	ConfigErrors []string                 `bun:"config_errors,type:jsonb"`
	ComputedAt   time.Time                `bun:"computed_at,nullzero,notnull,default:current_timestamp"`
}

// GameSummary is a row of ListGames.
type GameSummary struct {
	ID          string    `bun:"id"`
	Name        string    `bun:"name"`
	Players     int       `bun:"players"`
	Fingerprint string    `bun:"fingerprint"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

// ToSnapshot reassembles the snapshot from a game and its players.
func ToSnapshot(g *Game, players []GamePlayer) *scoringdomain.GameSnapshot {
	snap := &scoringdomain.GameSnapshot{
		GameID:  g.ID,
		Name:    g.Name,
		Holes:   g.Holes,
		Teams:   g.Teams,
		Options: g.Options,
	}
	for _, p := range players {
		snap.Players = append(snap.Players, scoringdomain.PlayerSnapshot{
			ID:             p.PlayerID,
			Name:           p.Name,
			CourseHandicap: p.CourseHandicap,
			Scores:         p.Scores,
		})
	}
	return snap
}

// FromSnapshot splits a snapshot into its stored rows.
func FromSnapshot(snap *scoringdomain.GameSnapshot) (*Game, []GamePlayer) {
	g := &Game{
		ID:      snap.GameID,
		Name:    snap.Name,
		Holes:   snap.Holes,
		Teams:   snap.Teams,
		Options: snap.Options,
	}
	players := make([]GamePlayer, 0, len(snap.Players))
	for i, p := range snap.Players {
		players = append(players, GamePlayer{
			GameID:         snap.GameID,
			PlayerID:       p.ID,
			Seq:            i,
			Name:           p.Name,
			CourseHandicap: p.CourseHandicap,
			Scores:         p.Scores,
		})
	}
	return g, players
}
