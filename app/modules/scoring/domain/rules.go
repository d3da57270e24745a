package scoringdomain

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluation modes accepted in OptionDeclaration.BasedOn.
const (
	BasedOnUser       = "user"
	BasedOnScoreToPar = "score_to_par"
	BasedOnComparison = "comparison"
	BasedOnExpression = "expression"
	BasedOnJunk       = "junk"
)

// Fit is the comparison used by a score_to_par condition.
type Fit string

const (
	FitExactly     Fit = "exactly"
	FitLessThan    Fit = "less_than"
	FitGreaterThan Fit = "greater_than"
)

// ScoreType selects gross or net strokes.
type ScoreType string

const (
	ScoreGross ScoreType = "gross"
	ScoreNet   ScoreType = "net"
)

// Metric names a value that comparison junk can compare.
type Metric string

const (
	MetricLowBall  Metric = "lowBall"
	MetricHighBall Metric = "highBall"
	MetricTotal    Metric = "total"
	MetricScore    Metric = "score"
	MetricGross    Metric = "gross"
	MetricNet      Metric = "net"
	MetricPops     Metric = "pops"
)

var teamMetrics = map[string]Metric{
	"lowball": MetricLowBall, "low_ball": MetricLowBall,
	"highball": MetricHighBall, "high_ball": MetricHighBall,
	"total": MetricTotal, "low_total": MetricTotal,
	"score": MetricScore,
}

var playerMetrics = map[string]Metric{
	"gross": MetricGross,
	"net":   MetricNet,
	"pops":  MetricPops,
}

// JunkCondition is the sealed set of junk evaluation modes.
type JunkCondition interface {
	junkCondition()
}

// UserFlag awards junk when the player or team flagged it on the hole.
type UserFlag struct{}

// ScoreToPar awards junk when score minus par fits the condition.
type ScoreToPar struct {
	Fit       Fit
	Amount    int
	ScoreType ScoreType
}

// Comparison awards junk to the single candidate with the best metric.
type Comparison struct {
	Metric Metric
	Better Direction
}

// Expression awards junk when a CEL expression evaluates to true.
type Expression struct {
	Source  string
	program *compiledExpression
}

func (UserFlag) junkCondition()   {}
func (ScoreToPar) junkCondition() {}
func (Comparison) junkCondition() {}
func (Expression) junkCondition() {}

// Matches reports whether a score-to-par difference satisfies the condition.
func (c ScoreToPar) Matches(diff int) bool {
	switch c.Fit {
	case FitExactly:
		return diff == c.Amount
	case FitLessThan:
		return diff < c.Amount
	case FitGreaterThan:
		return diff > c.Amount
	}
	return false
}

// JunkRule is a compiled junk declaration.
type JunkRule struct {
	Name      string
	Scope     Scope
	Value     int
	Condition JunkCondition
}

// Duration bounds how long a user-activated multiplier stays active.
type Duration string

const (
	DurationRest Duration = "rest"
	DurationHole Duration = "hole"
)

// MultiplierRule is a compiled multiplier declaration. A non-empty Trigger
// makes it automatic.
type MultiplierRule struct {
	Name     string
	Scope    Scope
	Value    int
	Trigger  string
	Duration Duration
}

// Automatic reports whether the multiplier is triggered by junk.
func (r MultiplierRule) Automatic() bool {
	return r.Trigger != ""
}

// RuleSet is a compiled rule-set, in declaration order.
type RuleSet struct {
	Game        GameOptions
	Junk        []JunkRule
	Multipliers []MultiplierRule
}

// CompileRuleSet turns option declarations into rules. A bad declaration
// is reported and skipped; it never prevents the others from compiling.
func CompileRuleSet(decls []OptionDeclaration) (RuleSet, []*ConfigError) {
	rs := RuleSet{Game: DefaultGameOptions()}
	var errs []*ConfigError
	seenJunk := make(map[string]bool)
	seenMult := make(map[string]bool)

	for _, decl := range decls {
		switch decl.Type {
		case OptionGame:
			if ce := rs.Game.apply(decl); ce != nil {
				errs = append(errs, ce)
			}
		case OptionJunk:
			if seenJunk[decl.Name] {
				errs = append(errs, configError(decl, ErrDuplicateRule, "junk declared more than once"))
				continue
			}
			rule, ce := compileJunk(decl)
			if ce != nil {
				errs = append(errs, ce)
				continue
			}
			seenJunk[decl.Name] = true
			rs.Junk = append(rs.Junk, rule)
		case OptionMultiplier:
			if seenMult[decl.Name] {
				errs = append(errs, configError(decl, ErrDuplicateRule, "multiplier declared more than once"))
				continue
			}
			rule, ce := compileMultiplier(decl)
			if ce != nil {
				errs = append(errs, ce)
				continue
			}
			seenMult[decl.Name] = true
			rs.Multipliers = append(rs.Multipliers, rule)
		default:
			errs = append(errs, configError(decl, ErrUnknownOptionType, "type %q", decl.Type))
		}
	}
	return rs, errs
}

func compileJunk(decl OptionDeclaration) (JunkRule, *ConfigError) {
	if strings.TrimSpace(decl.Name) == "" {
		return JunkRule{}, configError(decl, ErrInvalidValue, "junk has no name")
	}
	rule := JunkRule{Name: decl.Name, Value: decl.Value}

	basedOn := strings.ToLower(strings.TrimSpace(decl.BasedOn))
	if basedOn == "" {
		basedOn = BasedOnUser
	}

	scope, ce := parseScope(decl, basedOn)
	if ce != nil {
		return JunkRule{}, ce
	}
	rule.Scope = scope

	switch basedOn {
	case BasedOnUser:
		rule.Condition = UserFlag{}
	case BasedOnScoreToPar:
		cond, err := ParseScoreToPar(decl.ScoreToPar)
		if err != nil {
			return JunkRule{}, configError(decl, err, "score_to_par %q", decl.ScoreToPar)
		}
		st, ce := parseScoreType(decl)
		if ce != nil {
			return JunkRule{}, ce
		}
		cond.ScoreType = st
		rule.Condition = cond
	case BasedOnComparison:
		metrics := playerMetrics
		if scope == ScopeTeam {
			metrics = teamMetrics
		}
		metric, ok := metrics[strings.ToLower(strings.TrimSpace(decl.Calculation))]
		if !ok {
			return JunkRule{}, configError(decl, ErrUnknownMetric, "%s result has no metric %q", scope, decl.Calculation)
		}
		dir, ce := parseDirection(decl)
		if ce != nil {
			return JunkRule{}, ce
		}
		rule.Condition = Comparison{Metric: metric, Better: dir}
	case BasedOnExpression:
		prg, err := compileExpression(decl.Expression)
		if err != nil {
			return JunkRule{}, configError(decl, err, "expression %q", decl.Expression)
		}
		rule.Condition = Expression{Source: decl.Expression, program: prg}
	default:
		return JunkRule{}, configError(decl, ErrUnknownMode, "basedOn %q", decl.BasedOn)
	}
	return rule, nil
}

func compileMultiplier(decl OptionDeclaration) (MultiplierRule, *ConfigError) {
	if strings.TrimSpace(decl.Name) == "" {
		return MultiplierRule{}, configError(decl, ErrInvalidValue, "multiplier has no name")
	}
	if decl.Value < 1 {
		return MultiplierRule{}, configError(decl, ErrInvalidValue, "multiplier value must be at least 1, got %d", decl.Value)
	}
	rule := MultiplierRule{Name: decl.Name, Value: decl.Value, Duration: DurationRest}

	basedOn := strings.ToLower(strings.TrimSpace(decl.BasedOn))
	switch basedOn {
	case "", BasedOnUser:
	case BasedOnJunk:
		if strings.TrimSpace(decl.Trigger) == "" {
			return MultiplierRule{}, configError(decl, ErrInvalidValue, "junk-based multiplier needs a trigger")
		}
		rule.Trigger = decl.Trigger
	default:
		return MultiplierRule{}, configError(decl, ErrUnknownMode, "basedOn %q", decl.BasedOn)
	}

	scope, ce := parseScope(decl, basedOn)
	if ce != nil {
		return MultiplierRule{}, ce
	}
	rule.Scope = scope

	switch d := Duration(strings.ToLower(strings.TrimSpace(decl.Duration))); d {
	case "", DurationRest:
	case DurationHole:
		rule.Duration = DurationHole
	default:
		return MultiplierRule{}, configError(decl, ErrInvalidValue, "duration %q", decl.Duration)
	}
	return rule, nil
}

// ParseScoreToPar parses "<fit> <amount>", e.g. "exactly -1".
func ParseScoreToPar(s string) (ScoreToPar, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return ScoreToPar{}, fmt.Errorf("%w: want \"<fit> <amount>\"", ErrUnknownFit)
	}
	fit := Fit(strings.ToLower(fields[0]))
	switch fit {
	case FitExactly, FitLessThan, FitGreaterThan:
	default:
		return ScoreToPar{}, fmt.Errorf("%w: %q", ErrUnknownFit, fields[0])
	}
	amount, err := strconv.Atoi(fields[1])
	if err != nil {
		return ScoreToPar{}, fmt.Errorf("%w: amount %q", ErrInvalidValue, fields[1])
	}
	return ScoreToPar{Fit: fit, Amount: amount, ScoreType: ScoreGross}, nil
}

// parseScope defaults comparison junk to team scope and everything else to
// player scope.
func parseScope(decl OptionDeclaration, basedOn string) (Scope, *ConfigError) {
	switch decl.Scope {
	case ScopePlayer, ScopeTeam:
		return decl.Scope, nil
	case "":
		if basedOn == BasedOnComparison {
			return ScopeTeam, nil
		}
		return ScopePlayer, nil
	}
	return "", configError(decl, ErrInvalidScope, "scope %q", decl.Scope)
}

func parseScoreType(decl OptionDeclaration) (ScoreType, *ConfigError) {
	switch st := ScoreType(strings.ToLower(strings.TrimSpace(decl.ScoreType))); st {
	case "", ScoreGross:
		return ScoreGross, nil
	case ScoreNet:
		return ScoreNet, nil
	}
	return "", configError(decl, ErrInvalidValue, "score type %q", decl.ScoreType)
}

func parseDirection(decl OptionDeclaration) (Direction, *ConfigError) {
	switch strings.ToLower(strings.TrimSpace(decl.Better)) {
	case "", "lower":
		return LowerIsBetter, nil
	case "higher":
		return HigherIsBetter, nil
	}
	return LowerIsBetter, configError(decl, ErrInvalidValue, "better %q", decl.Better)
}
