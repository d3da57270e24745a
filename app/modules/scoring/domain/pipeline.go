package scoringdomain

// DefaultStages returns the eleven scoring stages in the only order they
// may run in. Each stage relies on what the previous ones populated.
func DefaultStages() []Stage {
	return []Stage{
		{Name: StageInitialize, Run: initializeStage},
		{Name: StageGross, Run: grossStage},
		{Name: StagePops, Run: popsStage},
		{Name: StageNet, Run: netStage},
		{Name: StageTeamScores, Run: teamScoresStage},
		{Name: StageTeams, Run: teamsStage},
		{Name: StageRanking, Run: rankingStage},
		{Name: StageJunk, Run: junkStage},
		{Name: StageMultiplier, Run: multiplierStage},
		{Name: StagePoints, Run: pointsStage},
		{Name: StageCumulative, Run: cumulativeStage},
	}
}

// Pipeline runs scoring stages over a context.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns a pipeline running DefaultStages.
func NewPipeline() *Pipeline {
	return &Pipeline{stages: DefaultStages()}
}

// Stages returns the stage names in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name)
	}
	return names
}

// Run applies every stage and returns the final context. The input context
// is left untouched.
func (p *Pipeline) Run(sc ScoringContext) ScoringContext {
	for _, s := range p.stages {
		sc = s.Run(sc)
	}
	return sc
}

// StageResult is the scoreboard as a stage left it.
type StageResult struct {
	Stage      string
	Scoreboard Scoreboard
}

// Trace runs the pipeline and returns the scoreboard after every stage.
// Each scoreboard is an independent value that later stages never touch.
func (p *Pipeline) Trace(sc ScoringContext) ([]StageResult, ScoringContext) {
	out := make([]StageResult, 0, len(p.stages))
	for _, s := range p.stages {
		sc = s.Run(sc)
		out = append(out, StageResult{Stage: s.Name, Scoreboard: sc.Scoreboard})
	}
	return out, sc
}

// Score builds a context from the snapshot and runs the full pipeline. The
// scoreboard is always complete; a non-nil error is a *RuleSetError listing
// the rule declarations that were skipped.
func Score(snap GameSnapshot) (Scoreboard, error) {
	final := NewPipeline().Run(NewScoringContext(snap))
	return final.Scoreboard, final.Err()
}
