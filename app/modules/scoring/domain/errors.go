package scoringdomain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRule matches every configuration error raised while
	// compiling or evaluating a rule-set.
	ErrMalformedRule = errors.New("malformed rule declaration")

	// ErrUnknownOptionType is returned for declarations that are not junk,
	// multiplier or game options.
	ErrUnknownOptionType = errors.New("unknown option type")

	// ErrUnknownMode is returned for an unrecognised basedOn value.
	ErrUnknownMode = errors.New("unknown evaluation mode")

	// ErrUnknownFit is returned when a score_to_par fit keyword is not
	// exactly, less_than or greater_than.
	ErrUnknownFit = errors.New("unknown score_to_par fit")

	// ErrUnknownMetric is returned when a comparison references a metric the
	// scoped result does not have.
	ErrUnknownMetric = errors.New("unknown comparison metric")

	// ErrInvalidScope is returned for scopes other than player or team.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidValue is returned for unusable numeric values or settings.
	ErrInvalidValue = errors.New("invalid value")

	// ErrDuplicateRule is returned when the same junk or multiplier name is
	// declared twice.
	ErrDuplicateRule = errors.New("duplicate rule")

	// ErrExpression is returned when a junk expression fails to compile or
	// evaluate.
	ErrExpression = errors.New("junk expression failed")
)

// ConfigError reports a bad rule declaration. It is distinct from scoring
// state: it means the rule-set is wrong, not that the game is incomplete.
type ConfigError struct {
	Option  string
	Hole    string // set when the error surfaced while scoring a hole
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "option %q", e.Option)
	if e.Hole != "" {
		fmt.Fprintf(&b, " on hole %s", e.Hole)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigError match ErrMalformedRule.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMalformedRule
}

func configError(decl OptionDeclaration, err error, format string, args ...any) *ConfigError {
	return &ConfigError{
		Option:  decl.Name,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// RuleSetError collects every ConfigError from one scoring run.
type RuleSetError struct {
	Errors []*ConfigError
}

func (e *RuleSetError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ce := range e.Errors {
		msgs = append(msgs, ce.Error())
	}
	return fmt.Sprintf("%d rule configuration error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *RuleSetError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, ce := range e.Errors {
		errs = append(errs, ce)
	}
	return errs
}
