package scoringdomain

import (
	"strconv"
	"strings"
)

// HandicapMode selects how course handicaps turn into pops.
type HandicapMode string

const (
	HandicapFull HandicapMode = "full"
	HandicapLow  HandicapMode = "low"
	HandicapOff  HandicapMode = "off"
)

// TeamCalculation selects how a team's hole score is derived from its
// members' net scores.
type TeamCalculation string

const (
	TeamBestBall        TeamCalculation = "best_ball"
	TeamWorstBall       TeamCalculation = "worst_ball"
	TeamSum             TeamCalculation = "sum"
	TeamAggregate       TeamCalculation = "aggregate"
	TeamLowBallLowTotal TeamCalculation = "low_ball_low_total"
	TeamBestN           TeamCalculation = "best_n"
	TeamVegas           TeamCalculation = "vegas"
)

// Format says whether points are shared hole-wide across teams.
type Format string

const (
	FormatTeam       Format = "team"
	FormatIndividual Format = "individual"
)

// Game option names.
const (
	OptHandicapMode      = "handicap_mode"
	OptHandicapAllowance = "handicap_allowance"
	OptTeamCalculation   = "team_calculation"
	OptTeamCount         = "team_count"
	OptFormat            = "format"
)

// GameOptions are the plain (non-rule) settings of a game.
type GameOptions struct {
	HandicapMode      HandicapMode
	HandicapAllowance int // percent
	TeamCalculation   TeamCalculation
	TeamCount         int
	Format            Format // empty means derive from rosters
}

// DefaultGameOptions returns the settings used when a rule-set is silent.
func DefaultGameOptions() GameOptions {
	return GameOptions{
		HandicapMode:      HandicapFull,
		HandicapAllowance: 100,
		TeamCalculation:   TeamBestBall,
		TeamCount:         2,
	}
}

// apply sets one game option. Unknown names are ignored since rule-sets
// also carry options meant for presentation only.
func (g *GameOptions) apply(decl OptionDeclaration) *ConfigError {
	setting := strings.ToLower(strings.TrimSpace(decl.Setting))

	switch decl.Name {
	case OptHandicapMode:
		switch mode := HandicapMode(setting); mode {
		case HandicapFull, HandicapLow, HandicapOff:
			g.HandicapMode = mode
		default:
			return configError(decl, ErrInvalidValue, "handicap mode %q", decl.Setting)
		}
	case OptHandicapAllowance:
		n, err := intSetting(decl)
		if err != nil || n < 0 || n > 100 {
			return configError(decl, ErrInvalidValue, "handicap allowance must be a percent between 0 and 100")
		}
		g.HandicapAllowance = n
	case OptTeamCalculation:
		switch calc := TeamCalculation(setting); calc {
		case TeamBestBall, TeamWorstBall, TeamSum, TeamAggregate, TeamLowBallLowTotal, TeamBestN, TeamVegas:
			g.TeamCalculation = calc
		default:
			return configError(decl, ErrInvalidValue, "team calculation %q", decl.Setting)
		}
	case OptTeamCount:
		n, err := intSetting(decl)
		if err != nil || n < 1 {
			return configError(decl, ErrInvalidValue, "team count must be a positive integer")
		}
		g.TeamCount = n
	case OptFormat:
		switch f := Format(setting); f {
		case FormatTeam, FormatIndividual:
			g.Format = f
		default:
			return configError(decl, ErrInvalidValue, "format %q", decl.Setting)
		}
	}
	return nil
}

// intSetting reads a numeric game option from Setting, falling back to Value.
func intSetting(decl OptionDeclaration) (int, error) {
	if s := strings.TrimSpace(decl.Setting); s != "" {
		return strconv.Atoi(s)
	}
	return decl.Value, nil
}
