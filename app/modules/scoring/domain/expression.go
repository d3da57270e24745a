package scoringdomain

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Variables available to junk expressions. Player-scoped rules see the
// player fields, team-scoped rules see the team fields; the rest are zero.
var expressionVariables = []cel.EnvOption{
	cel.Variable("hole", cel.StringType),
	cel.Variable("holeNumber", cel.IntType),
	cel.Variable("par", cel.IntType),
	cel.Variable("allocation", cel.IntType),
	cel.Variable("id", cel.StringType),
	cel.Variable("gross", cel.IntType),
	cel.Variable("pops", cel.IntType),
	cel.Variable("net", cel.IntType),
	cel.Variable("rank", cel.IntType),
	cel.Variable("tie", cel.IntType),
	cel.Variable("lowBall", cel.IntType),
	cel.Variable("highBall", cel.IntType),
	cel.Variable("total", cel.IntType),
	cel.Variable("score", cel.IntType),
	cel.Variable("members", cel.IntType),
}

var (
	expressionEnvOnce sync.Once
	expressionEnv     *cel.Env
	expressionEnvErr  error
)

func celEnv() (*cel.Env, error) {
	expressionEnvOnce.Do(func() {
		expressionEnv, expressionEnvErr = cel.NewEnv(expressionVariables...)
	})
	return expressionEnv, expressionEnvErr
}

// compiledExpression is immutable once built and safe to share between runs.
type compiledExpression struct {
	program cel.Program
}

func compileExpression(src string) (*compiledExpression, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrExpression, err)
	}
	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrExpression, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: result is %s, want bool", ErrExpression, ast.OutputType())
	}
	prg, err := env.Program(ast, cel.CostLimit(10000))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExpression, err)
	}
	return &compiledExpression{program: prg}, nil
}

// expressionInput is the activation for one candidate on one hole.
type expressionInput struct {
	Hole     Hole
	ID       string
	Gross    int
	Pops     int
	Net      int
	Rank     int
	Tie      int
	LowBall  int
	HighBall int
	Total    int
	Score    int
	Members  int
}

func (c *compiledExpression) eval(in expressionInput) (bool, error) {
	out, _, err := c.program.Eval(map[string]any{
		"hole":       in.Hole.ID,
		"holeNumber": int64(in.Hole.Number),
		"par":        int64(in.Hole.Par),
		"allocation": int64(in.Hole.Allocation),
		"id":         in.ID,
		"gross":      int64(in.Gross),
		"pops":       int64(in.Pops),
		"net":        int64(in.Net),
		"rank":       int64(in.Rank),
		"tie":        int64(in.Tie),
		"lowBall":    int64(in.LowBall),
		"highBall":   int64(in.HighBall),
		"total":      int64(in.Total),
		"score":      int64(in.Score),
		"members":    int64(in.Members),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrExpression, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("%w: result not boolean", ErrExpression)
	}
	return ok, nil
}
