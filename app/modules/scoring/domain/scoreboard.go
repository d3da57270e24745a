package scoringdomain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"
	"slices"
)

// Junk is an awarded bonus.
type Junk struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Multiplier is a multiplier active on a hole. FirstHole is the hole on
// which it was triggered or activated.
type Multiplier struct {
	Name      string `json:"name"`
	Value     int    `json:"value"`
	FirstHole string `json:"firstHole"`
}

// PlayerHoleResult is one player's result on one hole.
type PlayerHoleResult struct {
	PlayerID    string       `json:"playerId"`
	Gross       int          `json:"gross"`
	Pops        int          `json:"pops"`
	Net         int          `json:"net"`
	Rank        int          `json:"rank"`
	Tie         int          `json:"tie"`
	Junk        []Junk       `json:"junk"`
	Multipliers []Multiplier `json:"multipliers"`
	Points      int          `json:"points"`
}

// TeamHoleResult is one team's result on one hole.
type TeamHoleResult struct {
	Team        string       `json:"team"`
	PlayerIDs   []string     `json:"playerIds"`
	LowBall     int          `json:"lowBall"`
	HighBall    int          `json:"highBall"`
	Total       int          `json:"total"`
	Score       int          `json:"score"`
	Rank        int          `json:"rank"`
	Tie         int          `json:"tie"`
	Junk        []Junk       `json:"junk"`
	Multipliers []Multiplier `json:"multipliers"`
	Points      int          `json:"points"`
}

// HoleResult holds every player and team on a hole plus the single
// multiplier applied to every team's points there.
type HoleResult struct {
	Hole           string                       `json:"hole"`
	Par            int                          `json:"par"`
	Players        map[string]*PlayerHoleResult `json:"players"`
	Teams          map[string]*TeamHoleResult   `json:"teams"`
	HoleMultiplier int                          `json:"holeMultiplier"`
}

// CumulativePlayer is a player's round totals. RunningTotal maps each hole
// to the points accumulated through that hole.
type CumulativePlayer struct {
	GrossTotal   int            `json:"grossTotal"`
	PopsTotal    int            `json:"popsTotal"`
	NetTotal     int            `json:"netTotal"`
	PointsTotal  int            `json:"pointsTotal"`
	JunkTotal    int            `json:"junkTotal"`
	HolesPlayed  int            `json:"holesPlayed"`
	Rank         int            `json:"rank"`
	Tie          int            `json:"tie"`
	RunningTotal map[string]int `json:"runningTotal"`
}

// CumulativeTeam is a team's round totals.
type CumulativeTeam struct {
	ScoreTotal   int            `json:"scoreTotal"`
	PointsTotal  int            `json:"pointsTotal"`
	JunkTotal    int            `json:"junkTotal"`
	HolesPlayed  int            `json:"holesPlayed"`
	Rank         int            `json:"rank"`
	Tie          int            `json:"tie"`
	RunningTotal map[string]int `json:"runningTotal"`
}

// Cumulative holds the round totals for every player and team.
type Cumulative struct {
	Players map[string]*CumulativePlayer `json:"players"`
	Teams   map[string]*CumulativeTeam   `json:"teams"`
}

// Scoreboard is the pipeline output. Callers read it; they never modify a
// scoreboard returned by the pipeline.
type Scoreboard struct {
	Holes      map[string]*HoleResult `json:"holes"`
	Cumulative Cumulative             `json:"cumulative"`
}

// Clone returns a deep copy that shares no memory with sb.
func (sb Scoreboard) Clone() Scoreboard {
	out := Scoreboard{
		Holes: make(map[string]*HoleResult, len(sb.Holes)),
		Cumulative: Cumulative{
			Players: make(map[string]*CumulativePlayer, len(sb.Cumulative.Players)),
			Teams:   make(map[string]*CumulativeTeam, len(sb.Cumulative.Teams)),
		},
	}
	for id, h := range sb.Holes {
		out.Holes[id] = h.clone()
	}
	for id, p := range sb.Cumulative.Players {
		cp := *p
		cp.RunningTotal = maps.Clone(p.RunningTotal)
		out.Cumulative.Players[id] = &cp
	}
	for id, t := range sb.Cumulative.Teams {
		ct := *t
		ct.RunningTotal = maps.Clone(t.RunningTotal)
		out.Cumulative.Teams[id] = &ct
	}
	return out
}

func (h *HoleResult) clone() *HoleResult {
	out := *h
	out.Players = make(map[string]*PlayerHoleResult, len(h.Players))
	for id, p := range h.Players {
		cp := *p
		cp.Junk = slices.Clone(p.Junk)
		cp.Multipliers = slices.Clone(p.Multipliers)
		out.Players[id] = &cp
	}
	out.Teams = make(map[string]*TeamHoleResult, len(h.Teams))
	for id, t := range h.Teams {
		ct := *t
		ct.PlayerIDs = slices.Clone(t.PlayerIDs)
		ct.Junk = slices.Clone(t.Junk)
		ct.Multipliers = slices.Clone(t.Multipliers)
		out.Teams[id] = &ct
	}
	return &out
}

// Scored reports whether any player has entered a gross score on the hole.
func (h *HoleResult) Scored() bool {
	for _, p := range h.Players {
		if p.Gross > 0 {
			return true
		}
	}
	return false
}

// Fingerprint returns a sha256 over the canonical JSON form of the
// scoreboard. encoding/json sorts map keys, so equal scoreboards always
// produce equal fingerprints.
func (sb Scoreboard) Fingerprint() string {
	data, err := json.Marshal(sb)
	if err != nil {
		// Only plain ints, strings and maps are marshalled.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Equal reports whether two scoreboards hold the same values.
func (sb Scoreboard) Equal(other Scoreboard) bool {
	return sb.Fingerprint() == other.Fingerprint()
}

func junkSum(junk []Junk) int {
	total := 0
	for _, j := range junk {
		total += j.Value
	}
	return total
}

func multiplierProduct(ms []Multiplier) int {
	product := 1
	for _, m := range ms {
		product *= m.Value
	}
	return product
}

func hasJunk(junk []Junk, name string) bool {
	return slices.ContainsFunc(junk, func(j Junk) bool { return j.Name == name })
}
