package scoringdomain

import (
	"slices"
	"strings"
)

// Hole is a hole in playing order. Number is its 1-based position.
type Hole struct {
	ID         string
	Number     int
	Par        int
	Allocation int
}

// PlayerRound pairs a player with the scores entered for the round.
type PlayerRound struct {
	PlayerID       string
	Name           string
	CourseHandicap int
	Scores         map[string]HoleScoreEntry
}

// Team is a team's roster and hole options on one hole. PlayerIDs is
// sorted and only holds players that have a round in the game.
type Team struct {
	ID          string
	PlayerIDs   []string
	Junk        map[string]bool
	Multipliers map[string]bool
}

// ScoringContext is the input to every stage. Stages never modify a
// context; they return a new one carrying a new scoreboard.
type ScoringContext struct {
	GameID       string
	Holes        []Hole
	Rounds       []PlayerRound
	Handicaps    map[string]int // effective handicap after allowance and mode
	Allocations  map[string]int
	Rosters      map[string][]Team
	Rules        RuleSet
	Activations  ActivationIndex
	Scoreboard   Scoreboard
	ConfigErrors []*ConfigError

	roundIndex map[string]int
}

// NewScoringContext builds the context for a snapshot. Missing data is
// treated as zero: a player without a course handicap plays off scratch
// and a hole with no roster has no teams.
func NewScoringContext(snap GameSnapshot) ScoringContext {
	rules, errs := CompileRuleSet(snap.Options)

	sc := ScoringContext{
		GameID:       snap.GameID,
		Allocations:  make(map[string]int, len(snap.Holes)),
		Rosters:      make(map[string][]Team, len(snap.Teams)),
		Rules:        rules,
		ConfigErrors: errs,
		roundIndex:   make(map[string]int, len(snap.Players)),
	}

	seenHoles := make(map[string]bool, len(snap.Holes))
	for _, h := range snap.Holes {
		if h.Hole == "" || seenHoles[h.Hole] {
			continue
		}
		seenHoles[h.Hole] = true
		sc.Holes = append(sc.Holes, Hole{
			ID:         h.Hole,
			Number:     len(sc.Holes) + 1,
			Par:        h.Par,
			Allocation: h.Allocation,
		})
		sc.Allocations[h.Hole] = h.Allocation
	}

	courseHandicaps := make(map[string]int, len(snap.Players))
	for _, p := range snap.Players {
		if p.ID == "" {
			continue
		}
		if _, dup := courseHandicaps[p.ID]; dup {
			continue
		}
		ch := 0
		if p.CourseHandicap != nil {
			ch = *p.CourseHandicap
		}
		courseHandicaps[p.ID] = ApplyAllowance(ch, rules.Game.HandicapAllowance)
		sc.roundIndex[p.ID] = len(sc.Rounds)
		sc.Rounds = append(sc.Rounds, PlayerRound{
			PlayerID:       p.ID,
			Name:           p.Name,
			CourseHandicap: ch,
			Scores:         p.Scores,
		})
	}
	sc.Handicaps = AdjustedHandicaps(courseHandicaps, rules.Game.HandicapMode)

	for _, h := range sc.Holes {
		for _, t := range snap.Teams[h.ID] {
			if t.ID == "" || slices.ContainsFunc(sc.Rosters[h.ID], func(x Team) bool { return x.ID == t.ID }) {
				continue
			}
			members := make([]string, 0, len(t.PlayerIDs))
			for _, id := range t.PlayerIDs {
				if _, ok := courseHandicaps[id]; ok && !slices.Contains(members, id) {
					members = append(members, id)
				}
			}
			slices.Sort(members)
			sc.Rosters[h.ID] = append(sc.Rosters[h.ID], Team{
				ID:          t.ID,
				PlayerIDs:   members,
				Junk:        t.Junk,
				Multipliers: t.Multipliers,
			})
		}
		slices.SortFunc(sc.Rosters[h.ID], func(a, b Team) int { return strings.Compare(a.ID, b.ID) })
	}

	sc.Activations = NewActivationIndex(sc.Holes, sc.Rounds, sc.Rosters)
	return sc
}

// Format returns the effective game format: the declared one, otherwise
// team play whenever any hole has a roster.
func (sc ScoringContext) Format() Format {
	if sc.Rules.Game.Format != "" {
		return sc.Rules.Game.Format
	}
	for _, teams := range sc.Rosters {
		if len(teams) > 0 {
			return FormatTeam
		}
	}
	return FormatIndividual
}

// Round returns the round for a player.
func (sc ScoringContext) Round(playerID string) (PlayerRound, bool) {
	if i, ok := sc.roundIndex[playerID]; ok {
		return sc.Rounds[i], true
	}
	for _, r := range sc.Rounds {
		if r.PlayerID == playerID {
			return r, true
		}
	}
	return PlayerRound{}, false
}

// Err returns every configuration error gathered so far as a
// *RuleSetError, or nil.
func (sc ScoringContext) Err() error {
	if len(sc.ConfigErrors) == 0 {
		return nil
	}
	return &RuleSetError{Errors: slices.Clone(sc.ConfigErrors)}
}

func (sc ScoringContext) withScoreboard(sb Scoreboard, errs ...*ConfigError) ScoringContext {
	next := sc
	next.Scoreboard = sb
	if len(errs) > 0 {
		next.ConfigErrors = append(slices.Clone(sc.ConfigErrors), errs...)
	}
	return next
}

func (sc ScoringContext) playerIDs() []string {
	ids := make([]string, 0, len(sc.Rounds))
	for _, r := range sc.Rounds {
		ids = append(ids, r.PlayerID)
	}
	slices.Sort(ids)
	return ids
}

func (sc ScoringContext) entry(playerID, hole string) HoleScoreEntry {
	r, ok := sc.Round(playerID)
	if !ok {
		return HoleScoreEntry{}
	}
	return r.Scores[hole]
}
