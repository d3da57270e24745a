package scoringdomain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_StageOrder(t *testing.T) {
	want := []string{
		StageInitialize, StageGross, StagePops, StageNet, StageTeamScores, StageTeams,
		StageRanking, StageJunk, StageMultiplier, StagePoints, StageCumulative,
	}
	if diff := cmp.Diff(want, NewPipeline().Stages()); diff != "" {
		t.Fatalf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_Fourball(t *testing.T) {
	sb, err := Score(fourball(birdieDecl, lowBallDecl, lowTotalDecl))
	require.NoError(t, err)

	t.Run("every hole player and team present", func(t *testing.T) {
		require.Len(t, sb.Holes, 3)
		for _, id := range []string{"1", "2", "3"} {
			hr := sb.Holes[id]
			require.NotNil(t, hr, "hole %s", id)
			assert.Len(t, hr.Players, 4)
			assert.Len(t, hr.Teams, 2)
			assert.Equal(t, 1, hr.HoleMultiplier)
		}
		assert.Len(t, sb.Cumulative.Players, 4)
		assert.Len(t, sb.Cumulative.Teams, 2)
	})

	t.Run("low mode pops and net", func(t *testing.T) {
		hole1 := sb.Holes["1"]
		wantPops := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1}
		wantNet := map[string]int{"a": 4, "b": 5, "c": 4, "d": 5}
		for id := range wantPops {
			assert.Equal(t, wantPops[id], hole1.Players[id].Pops, "pops %s", id)
			assert.Equal(t, wantNet[id], hole1.Players[id].Net, "net %s", id)
		}
	})

	t.Run("hole ranks", func(t *testing.T) {
		hole1 := sb.Holes["1"]
		assert.Equal(t, 1, hole1.Players["a"].Rank)
		assert.Equal(t, 1, hole1.Players["c"].Rank)
		assert.Equal(t, 2, hole1.Players["c"].Tie)
		assert.Equal(t, 3, hole1.Players["b"].Rank)
		assert.Equal(t, 1, hole1.Teams["1"].Rank)
		assert.Equal(t, 1, hole1.Teams["2"].Rank)

		hole2 := sb.Holes["2"]
		assert.Equal(t, 1, hole2.Players["a"].Rank)
		assert.Equal(t, 1, hole2.Players["a"].Tie)
		assert.Equal(t, 2, hole2.Players["c"].Rank)
		assert.Equal(t, 3, hole2.Players["b"].Rank)
		assert.Equal(t, 3, hole2.Players["d"].Rank)
		assert.Equal(t, 1, hole2.Teams["1"].Rank)
		assert.Equal(t, 2, hole2.Teams["2"].Rank)
	})

	t.Run("comparison junk is suppressed on ties", func(t *testing.T) {
		hole1 := sb.Holes["1"]
		assert.Equal(t, 4, hole1.Teams["1"].LowBall)
		assert.Equal(t, 4, hole1.Teams["2"].LowBall)
		assert.Empty(t, hole1.Teams["1"].Junk)
		assert.Empty(t, hole1.Teams["2"].Junk)
	})

	t.Run("strictly best team takes comparison junk", func(t *testing.T) {
		hole2 := sb.Holes["2"]
		assert.Equal(t, 6, hole2.Teams["1"].Total)
		assert.Equal(t, 7, hole2.Teams["2"].Total)
		assert.Equal(t, []Junk{{Name: "low_ball", Value: 1}, {Name: "low_total", Value: 1}}, hole2.Teams["1"].Junk)
		assert.Empty(t, hole2.Teams["2"].Junk)
		assert.Equal(t, []Junk{{Name: "birdie", Value: 1}}, hole2.Players["a"].Junk)
	})

	t.Run("team points include member junk", func(t *testing.T) {
		hole2 := sb.Holes["2"]
		assert.Equal(t, 3, hole2.Teams["1"].Points)
		assert.Equal(t, 0, hole2.Teams["2"].Points)
		assert.Equal(t, 1, hole2.Players["a"].Points)
	})

	t.Run("unplayed hole stays zero", func(t *testing.T) {
		hole3 := sb.Holes["3"]
		for id, p := range hole3.Players {
			assert.Zero(t, p.Gross, id)
			assert.Zero(t, p.Net, id)
			assert.Zero(t, p.Rank, id)
			assert.Zero(t, p.Points, id)
			assert.Empty(t, p.Junk, id)
		}
		for id, tr := range hole3.Teams {
			assert.Zero(t, tr.Score, id)
			assert.Zero(t, tr.Rank, id)
			assert.Zero(t, tr.Points, id)
		}
	})

	t.Run("cumulative", func(t *testing.T) {
		a := sb.Cumulative.Players["a"]
		assert.Equal(t, 6, a.GrossTotal)
		assert.Equal(t, 6, a.NetTotal)
		assert.Equal(t, 2, a.HolesPlayed)
		assert.Equal(t, 1, a.JunkTotal)
		assert.Equal(t, 1, a.Rank)

		assert.Equal(t, 2, sb.Cumulative.Players["c"].Rank)
		assert.Equal(t, 3, sb.Cumulative.Players["b"].Rank)
		assert.Equal(t, 3, sb.Cumulative.Players["d"].Rank)
		assert.Equal(t, 2, sb.Cumulative.Players["d"].Tie)
		assert.Equal(t, 1, sb.Cumulative.Players["c"].PopsTotal)

		team1 := sb.Cumulative.Teams["1"]
		assert.Equal(t, 3, team1.PointsTotal)
		assert.Equal(t, 2, team1.JunkTotal)
		assert.Equal(t, 1, team1.Rank)
		assert.Equal(t, map[string]int{"1": 0, "2": 3, "3": 3}, team1.RunningTotal)
		assert.Equal(t, 2, sb.Cumulative.Teams["2"].Rank)
	})
}

func TestScore_HoleWideMultiplierStacking(t *testing.T) {
	snap := fourball(birdieDecl, lowBallDecl, lowTotalDecl, greenieDecl,
		OptionDeclaration{Name: "double", Type: OptionMultiplier, Scope: ScopeTeam, Value: 2},
		OptionDeclaration{Name: "double_back", Type: OptionMultiplier, Scope: ScopeTeam, Value: 2},
	)
	snap.Teams["2"][0].Multipliers = flags("double")
	snap.Teams["2"][1].Multipliers = flags("double_back")
	c := snap.Players[2]
	entry := c.Scores["2"]
	entry.Junk = flags("greenie")
	c.Scores["2"] = entry

	sb, err := Score(snap)
	require.NoError(t, err)

	hole2 := sb.Holes["2"]
	assert.Equal(t, 4, hole2.HoleMultiplier)
	assert.Equal(t, []Multiplier{{Name: "double", Value: 2, FirstHole: "2"}}, hole2.Teams["1"].Multipliers)
	assert.Equal(t, []Multiplier{{Name: "double_back", Value: 2, FirstHole: "2"}}, hole2.Teams["2"].Multipliers)
	assert.Equal(t, 12, hole2.Teams["1"].Points, "(2 team junk + 1 birdie) x 4")
	assert.Equal(t, 4, hole2.Teams["2"].Points, "1 greenie x 4")
	assert.Equal(t, 4, hole2.Players["c"].Points)

	hole1 := sb.Holes["1"]
	assert.Equal(t, 1, hole1.HoleMultiplier, "activations on hole 2 do not reach back")
}

func TestScore_UserMultiplierPersistsForward(t *testing.T) {
	tests := []struct {
		name      string
		duration  string
		rotate    bool
		wantHole2 int
		wantFirst string
	}{
		{name: "rest of round", wantHole2: 2, wantFirst: "1"},
		{name: "single hole", duration: "hole", wantHole2: 1},
		{name: "rotation ends it", rotate: true, wantHole2: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := fourball(lowBallDecl,
				OptionDeclaration{Name: "press", Type: OptionMultiplier, Scope: ScopeTeam, Duration: tt.duration, Value: 2},
			)
			snap.Teams["1"][0].Multipliers = flags("press")
			if tt.rotate {
				snap.Teams["2"] = []TeamSnapshot{
					{ID: "1", PlayerIDs: []string{"a", "c"}},
					{ID: "2", PlayerIDs: []string{"b", "d"}},
				}
			}

			sb, err := Score(snap)
			require.NoError(t, err)

			assert.Equal(t, 2, sb.Holes["1"].HoleMultiplier)
			assert.Equal(t, tt.wantHole2, sb.Holes["2"].HoleMultiplier)
			if tt.wantFirst != "" {
				require.Len(t, sb.Holes["2"].Teams["1"].Multipliers, 1)
				assert.Equal(t, tt.wantFirst, sb.Holes["2"].Teams["1"].Multipliers[0].FirstHole)
			}
			assert.Equal(t, 1, sb.Holes["3"].HoleMultiplier, "unplayed hole keeps the default")
		})
	}
}

func TestScore_AutomaticMultiplier(t *testing.T) {
	sb, err := Score(fourball(birdieDecl, lowBallDecl, lowTotalDecl,
		OptionDeclaration{Name: "birdie_double", Type: OptionMultiplier, Scope: ScopeTeam, BasedOn: BasedOnJunk, Trigger: "birdie", Value: 2},
	))
	require.NoError(t, err)

	hole2 := sb.Holes["2"]
	assert.Equal(t, []Multiplier{{Name: "birdie_double", Value: 2, FirstHole: "2"}}, hole2.Teams["1"].Multipliers)
	assert.Empty(t, hole2.Teams["2"].Multipliers)
	assert.Equal(t, 2, hole2.HoleMultiplier)
	assert.Equal(t, 6, hole2.Teams["1"].Points)
}

func TestScore_IndividualFormat(t *testing.T) {
	snap := fourball(birdieDecl,
		OptionDeclaration{Name: "double", Type: OptionMultiplier, Scope: ScopePlayer, Value: 2},
		OptionDeclaration{Name: "birdie_bonus", Type: OptionMultiplier, Scope: ScopePlayer, BasedOn: BasedOnJunk, Trigger: "birdie", Value: 3},
	)
	snap.Teams = nil
	a := snap.Players[0]
	entry := a.Scores["2"]
	entry.Multipliers = flags("double")
	a.Scores["2"] = entry

	sb, err := Score(snap)
	require.NoError(t, err)

	hole2 := sb.Holes["2"]
	assert.Empty(t, hole2.Teams)
	assert.Equal(t, 1, hole2.HoleMultiplier)
	assert.Equal(t, 6, hole2.Players["a"].Points, "1 birdie x 2 x 3")
	assert.Equal(t, 6, sb.Cumulative.Players["a"].PointsTotal)
	assert.Empty(t, sb.Cumulative.Teams)
}

func TestScore_PlayerComparisonAndExpression(t *testing.T) {
	sb, err := Score(fourball(
		OptionDeclaration{Name: "low_net", Type: OptionJunk, Scope: ScopePlayer, BasedOn: BasedOnComparison, Calculation: "net", Value: 1},
		OptionDeclaration{Name: "skin", Type: OptionJunk, BasedOn: BasedOnExpression, Expression: "rank == 1 && tie == 1", Value: 2},
		OptionDeclaration{Name: "team_par", Type: OptionJunk, Scope: ScopeTeam, BasedOn: BasedOnExpression, Expression: "lowBall <= par && members == 2", Value: 1},
	))
	require.NoError(t, err)

	for id, p := range sb.Holes["1"].Players {
		assert.Empty(t, p.Junk, "hole 1 is tied at the top, %s", id)
	}
	assert.Equal(t, []Junk{{Name: "low_net", Value: 1}, {Name: "skin", Value: 2}}, sb.Holes["2"].Players["a"].Junk)
	assert.Len(t, sb.Holes["1"].Teams["1"].Junk, 1)
	assert.Len(t, sb.Holes["2"].Teams["2"].Junk, 1)
}

func TestScore_PlayerComparisonOnPops(t *testing.T) {
	snap := fourball(OptionDeclaration{Name: "most_pops", Type: OptionJunk, Scope: ScopePlayer, BasedOn: BasedOnComparison, Calculation: "pops", Better: "higher", Value: 1})
	// Adjusted 36 gives d two strokes on every hole.
	snap.Players[3].CourseHandicap = intPtr(40)

	sb, err := Score(snap)
	require.NoError(t, err)

	for _, hole := range []string{"1", "2"} {
		hr := sb.Holes[hole]
		assert.Equal(t, 2, hr.Players["d"].Pops, "hole %s", hole)
		assert.Equal(t, []Junk{{Name: "most_pops", Value: 1}}, hr.Players["d"].Junk, "hole %s", hole)
		for _, id := range []string{"a", "b", "c"} {
			assert.Empty(t, hr.Players[id].Junk, "hole %s player %s", hole, id)
		}
	}
	assert.Empty(t, sb.Holes["3"].Players["d"].Junk, "unplayed hole")
}

func TestScore_TeamComparisonWaitsForEveryPlayer(t *testing.T) {
	partial := fourball(lowBallDecl, lowTotalDecl)
	delete(partial.Players[3].Scores, "2")

	sb, err := Score(partial)
	require.NoError(t, err)

	hole2 := sb.Holes["2"]
	assert.Equal(t, 3, hole2.Teams["2"].Total, "one-ball total while d has not posted")
	assert.Empty(t, hole2.Teams["1"].Junk)
	assert.Empty(t, hole2.Teams["2"].Junk)

	complete, err := Score(fourball(lowBallDecl, lowTotalDecl))
	require.NoError(t, err)
	assert.Equal(t, []Junk{{Name: "low_ball", Value: 1}, {Name: "low_total", Value: 1}}, complete.Holes["2"].Teams["1"].Junk)
	assert.Empty(t, complete.Holes["2"].Teams["2"].Junk)
}

func TestScore_ConfigErrorsDoNotAbortScoring(t *testing.T) {
	sb, err := Score(fourball(
		OptionDeclaration{Name: "sandy", Type: OptionJunk, BasedOn: BasedOnScoreToPar, ScoreToPar: "roughly 0", Value: 1},
		OptionDeclaration{Name: "low_net", Type: OptionJunk, Scope: ScopeTeam, BasedOn: BasedOnComparison, Calculation: "net", Value: 1},
		OptionDeclaration{Name: "boom", Type: OptionJunk, BasedOn: BasedOnExpression, Expression: "gross / (par - par) > 0", Value: 1},
		birdieDecl,
	))
	require.Error(t, err)

	var rsErr *RuleSetError
	require.True(t, errors.As(err, &rsErr))
	assert.ErrorIs(t, err, ErrMalformedRule)
	assert.ErrorIs(t, err, ErrUnknownFit)
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.ErrorIs(t, err, ErrExpression)

	// Two compile errors plus one evaluation error per played hole.
	require.Len(t, rsErr.Errors, 4)
	assert.Equal(t, "1", rsErr.Errors[2].Hole)
	assert.Equal(t, "2", rsErr.Errors[3].Hole)

	assert.Equal(t, []Junk{{Name: "birdie", Value: 1}}, sb.Holes["2"].Players["a"].Junk)
}

func TestScore_Deterministic(t *testing.T) {
	snap := fourball(birdieDecl, lowBallDecl, lowTotalDecl)

	first, err := Score(snap)
	require.NoError(t, err)
	second, err := Score(snap)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("scoreboards differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.True(t, first.Equal(second))
}

func TestPipeline_TraceSnapshotsAreIndependent(t *testing.T) {
	input := NewScoringContext(fourball(birdieDecl, lowBallDecl))

	trace, final := NewPipeline().Trace(input)
	require.Len(t, trace, 11)

	afterGross := trace[1]
	require.Equal(t, StageGross, afterGross.Stage)
	assert.Equal(t, 4, afterGross.Scoreboard.Holes["1"].Players["a"].Gross)
	assert.Zero(t, afterGross.Scoreboard.Holes["1"].Players["c"].Net, "net is filled later")
	assert.Equal(t, 4, final.Scoreboard.Holes["1"].Players["c"].Net)

	final.Scoreboard.Holes["2"].Players["a"].Junk[0].Value = 99
	afterJunk := trace[7]
	require.Equal(t, StageJunk, afterJunk.Stage)
	assert.Equal(t, 1, afterJunk.Scoreboard.Holes["2"].Players["a"].Junk[0].Value)

	assert.Nil(t, input.Scoreboard.Holes, "input context is never modified")
}

func TestScoreboard_CloneIsDeep(t *testing.T) {
	sb, err := Score(fourball(birdieDecl))
	require.NoError(t, err)

	clone := sb.Clone()
	require.True(t, sb.Equal(clone))

	clone.Holes["2"].Players["a"].Junk = append(clone.Holes["2"].Players["a"].Junk, Junk{Name: "x", Value: 1})
	clone.Holes["1"].Teams["1"].PlayerIDs[0] = "z"
	clone.Cumulative.Players["a"].RunningTotal["1"] = 42

	assert.Len(t, sb.Holes["2"].Players["a"].Junk, 1)
	assert.Equal(t, "a", sb.Holes["1"].Teams["1"].PlayerIDs[0])
	assert.Equal(t, 0, sb.Cumulative.Players["a"].RunningTotal["1"])
	assert.False(t, sb.Equal(clone))
}
