package testutils

import (
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
)

// TestDataGenerator builds random but reproducible game snapshots.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was created with.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// GameShape controls the size of a generated game.
type GameShape struct {
	Holes       int
	Players     int
	TeamSize    int // 0 for an individual game
	PlayedHoles int // -1 picks a random number
	RotateEvery int // 0 keeps the same teams all round
}

// DefaultShape is a four-player, two-team, nine-hole game with teams
// changing every three holes.
func DefaultShape() GameShape {
	return GameShape{Holes: 9, Players: 4, TeamSize: 2, PlayedHoles: -1, RotateEvery: 3}
}

// DefaultOptions is a typical rule-set: birdies, greenies, low ball and low
// total, an automatic birdie double and team presses.
func DefaultOptions() []scoringdomain.OptionDeclaration {
	return []scoringdomain.OptionDeclaration{
		{Name: scoringdomain.OptHandicapMode, Type: scoringdomain.OptionGame, Setting: "low"},
		{Name: "birdie", Type: scoringdomain.OptionJunk, Scope: scoringdomain.ScopePlayer, BasedOn: "score_to_par", ScoreToPar: "exactly -1", Value: 1},
		{Name: "eagle", Type: scoringdomain.OptionJunk, Scope: scoringdomain.ScopePlayer, BasedOn: "score_to_par", ScoreToPar: "less_than -1", Value: 2},
		{Name: "greenie", Type: scoringdomain.OptionJunk, Scope: scoringdomain.ScopePlayer, BasedOn: "user", Value: 1},
		{Name: "low_ball", Type: scoringdomain.OptionJunk, Scope: scoringdomain.ScopeTeam, BasedOn: "comparison", Calculation: "lowBall", Value: 1},
		{Name: "low_total", Type: scoringdomain.OptionJunk, Scope: scoringdomain.ScopeTeam, BasedOn: "comparison", Calculation: "total", Value: 1},
		{Name: "birdie_double", Type: scoringdomain.OptionMultiplier, Scope: scoringdomain.ScopeTeam, BasedOn: "junk", Trigger: "birdie", Value: 2},
		{Name: "press", Type: scoringdomain.OptionMultiplier, Scope: scoringdomain.ScopeTeam, BasedOn: "user", Value: 2},
		{Name: "double", Type: scoringdomain.OptionMultiplier, Scope: scoringdomain.ScopeTeam, BasedOn: "user", Duration: "hole", Value: 2},
	}
}

// GenerateGame creates a game snapshot with DefaultOptions.
func (g *TestDataGenerator) GenerateGame(shape GameShape) scoringdomain.GameSnapshot {
	snap := scoringdomain.GameSnapshot{
		GameID:  uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatInt(g.seed, 10))).String(),
		Name:    g.faker.City() + " Nassau",
		Options: DefaultOptions(),
	}

	allocations := g.permutation(shape.Holes)
	for i := 0; i < shape.Holes; i++ {
		snap.Holes = append(snap.Holes, scoringdomain.HoleSnapshot{
			Hole:       strconv.Itoa(i + 1),
			Par:        g.faker.Number(3, 5),
			Allocation: allocations[i] + 1,
		})
	}

	played := shape.PlayedHoles
	if played < 0 || played > shape.Holes {
		played = g.faker.Number(0, shape.Holes)
	}

	playerIDs := make([]string, 0, shape.Players)
	for i := 0; i < shape.Players; i++ {
		id := "p" + strconv.Itoa(i+1)
		playerIDs = append(playerIDs, id)
		handicap := g.faker.Number(0, 24)
		player := scoringdomain.PlayerSnapshot{
			ID:             id,
			Name:           g.faker.FirstName(),
			CourseHandicap: &handicap,
			Scores:         make(map[string]scoringdomain.HoleScoreEntry, played),
		}
		for h := 0; h < played; h++ {
			hole := snap.Holes[h]
			entry := scoringdomain.HoleScoreEntry{Gross: hole.Par + g.faker.Number(-2, 3)}
			if hole.Par == 3 && g.faker.Number(1, 4) == 1 {
				entry.Junk = map[string]bool{"greenie": true}
			}
			player.Scores[hole.Hole] = entry
		}
		snap.Players = append(snap.Players, player)
	}

	if shape.TeamSize > 0 {
		snap.Teams = make(map[string][]scoringdomain.TeamSnapshot, shape.Holes)
		order := playerIDs
		for h := 0; h < shape.Holes; h++ {
			if shape.RotateEvery > 0 && h > 0 && h%shape.RotateEvery == 0 {
				order = g.shuffle(order)
			}
			hole := snap.Holes[h].Hole
			for start, n := 0, 1; start < len(order); start, n = start+shape.TeamSize, n+1 {
				end := min(start+shape.TeamSize, len(order))
				team := scoringdomain.TeamSnapshot{
					ID:        strconv.Itoa(n),
					PlayerIDs: append([]string{}, order[start:end]...),
				}
				if g.faker.Number(1, 10) == 1 {
					team.Multipliers = map[string]bool{"press": true}
				}
				if g.faker.Number(1, 10) == 1 {
					team.Multipliers = map[string]bool{"double": true}
				}
				snap.Teams[hole] = append(snap.Teams[hole], team)
			}
		}
	}

	return snap
}

func (g *TestDataGenerator) permutation(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := g.faker.Number(0, i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (g *TestDataGenerator) shuffle(ids []string) []string {
	out := make([]string, len(ids))
	for i, p := range g.permutation(len(ids)) {
		out[i] = ids[p]
	}
	return out
}
