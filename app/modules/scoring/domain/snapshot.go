package scoringdomain

// GameSnapshot is the resolved, read-only view of a single game that the
// pipeline scores. Nothing in this package writes to it.
type GameSnapshot struct {
	GameID  string                    `json:"gameId" yaml:"gameId"`
	Name    string                    `json:"name,omitempty" yaml:"name,omitempty"`
	Holes   []HoleSnapshot            `json:"holes" yaml:"holes"`
	Players []PlayerSnapshot          `json:"players" yaml:"players"`
	Teams   map[string][]TeamSnapshot `json:"teams,omitempty" yaml:"teams,omitempty"`
	Options []OptionDeclaration       `json:"options,omitempty" yaml:"options,omitempty"`
}

// HoleSnapshot describes one hole in playing order.
type HoleSnapshot struct {
	Hole       string `json:"hole" yaml:"hole"`
	Par        int    `json:"par" yaml:"par"`
	Allocation int    `json:"allocation" yaml:"allocation"` // 1 = hardest
}

// PlayerSnapshot is one player-round pairing.
type PlayerSnapshot struct {
	ID             string                    `json:"id" yaml:"id"`
	Name           string                    `json:"name,omitempty" yaml:"name,omitempty"`
	CourseHandicap *int                      `json:"courseHandicap,omitempty" yaml:"courseHandicap,omitempty"`
	Scores         map[string]HoleScoreEntry `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// HoleScoreEntry is what was entered for a player on a hole. A zero Gross
// means the hole has not been played yet.
type HoleScoreEntry struct {
	Gross       int             `json:"gross" yaml:"gross"`
	Junk        map[string]bool `json:"junk,omitempty" yaml:"junk,omitempty"`
	Multipliers map[string]bool `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}

// TeamSnapshot is a team's membership and hole options on one hole.
type TeamSnapshot struct {
	ID          string          `json:"id" yaml:"id"`
	PlayerIDs   []string        `json:"playerIds" yaml:"playerIds"`
	Junk        map[string]bool `json:"junk,omitempty" yaml:"junk,omitempty"`
	Multipliers map[string]bool `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}

// OptionType classifies an option declaration.
type OptionType string

const (
	OptionJunk       OptionType = "junk"
	OptionMultiplier OptionType = "multiplier"
	OptionGame       OptionType = "game"
)

// Scope says whether a rule is evaluated per player or per team.
type Scope string

const (
	ScopePlayer Scope = "player"
	ScopeTeam   Scope = "team"
)

// OptionDeclaration is one entry of a game's active rule-set. Which fields
// matter depends on Type and BasedOn.
type OptionDeclaration struct {
	Name        string     `json:"name" yaml:"name"`
	Type        OptionType `json:"type" yaml:"type"`
	Scope       Scope      `json:"scope,omitempty" yaml:"scope,omitempty"`
	BasedOn     string     `json:"basedOn,omitempty" yaml:"basedOn,omitempty"`
	Value       int        `json:"value,omitempty" yaml:"value,omitempty"`
	ScoreToPar  string     `json:"scoreToPar,omitempty" yaml:"scoreToPar,omitempty"`
	ScoreType   string     `json:"scoreType,omitempty" yaml:"scoreType,omitempty"`
	Calculation string     `json:"calculation,omitempty" yaml:"calculation,omitempty"`
	Better      string     `json:"better,omitempty" yaml:"better,omitempty"`
	Expression  string     `json:"expression,omitempty" yaml:"expression,omitempty"`
	Trigger     string     `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Duration    string     `json:"duration,omitempty" yaml:"duration,omitempty"`
	Setting     string     `json:"setting,omitempty" yaml:"setting,omitempty"`
}
