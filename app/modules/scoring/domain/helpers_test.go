package scoringdomain

func intPtr(v int) *int { return &v }

func flags(names ...string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// scores builds per-hole entries from gross scores in hole order starting
// at hole "1". A zero leaves the hole unplayed.
func scores(gross ...int) map[string]HoleScoreEntry {
	out := make(map[string]HoleScoreEntry, len(gross))
	for i, g := range gross {
		if g == 0 {
			continue
		}
		out[holeID(i)] = HoleScoreEntry{Gross: g}
	}
	return out
}

func holeID(i int) string {
	return string(rune('1' + i))
}

func sameTeams(holes int, teams ...TeamSnapshot) map[string][]TeamSnapshot {
	out := make(map[string][]TeamSnapshot, holes)
	for i := 0; i < holes; i++ {
		for _, t := range teams {
			t.PlayerIDs = append([]string{}, t.PlayerIDs...)
			out[holeID(i)] = append(out[holeID(i)], t)
		}
	}
	return out
}

// fourball is a three-hole, two-team game with handicaps {4, 6, 10, 14}.
//
//	hole 1 (par 4, alloc 3): nets a4 b5 c4 d5, both teams lowBall 4 total 9
//	hole 2 (par 3, alloc 17): a birdies, team 1 lowBall 2 total 6, team 2 3 and 7
//	hole 3 (par 5, alloc 1): not played
func fourball(options ...OptionDeclaration) GameSnapshot {
	return GameSnapshot{
		GameID: "game-1",
		Holes: []HoleSnapshot{
			{Hole: "1", Par: 4, Allocation: 3},
			{Hole: "2", Par: 3, Allocation: 17},
			{Hole: "3", Par: 5, Allocation: 1},
		},
		Players: []PlayerSnapshot{
			{ID: "a", CourseHandicap: intPtr(4), Scores: scores(4, 2)},
			{ID: "b", CourseHandicap: intPtr(6), Scores: scores(5, 4)},
			{ID: "c", CourseHandicap: intPtr(10), Scores: scores(5, 3)},
			{ID: "d", CourseHandicap: intPtr(14), Scores: scores(6, 4)},
		},
		Teams: sameTeams(3,
			TeamSnapshot{ID: "1", PlayerIDs: []string{"a", "b"}},
			TeamSnapshot{ID: "2", PlayerIDs: []string{"c", "d"}},
		),
		Options: append([]OptionDeclaration{
			{Name: OptHandicapMode, Type: OptionGame, Setting: "low"},
		}, options...),
	}
}

var (
	birdieDecl   = OptionDeclaration{Name: "birdie", Type: OptionJunk, Scope: ScopePlayer, BasedOn: BasedOnScoreToPar, ScoreToPar: "exactly -1", Value: 1}
	lowBallDecl  = OptionDeclaration{Name: "low_ball", Type: OptionJunk, Scope: ScopeTeam, BasedOn: BasedOnComparison, Calculation: "lowBall", Value: 1}
	lowTotalDecl = OptionDeclaration{Name: "low_total", Type: OptionJunk, Scope: ScopeTeam, BasedOn: BasedOnComparison, Calculation: "total", Value: 1}
	greenieDecl  = OptionDeclaration{Name: "greenie", Type: OptionJunk, Scope: ScopePlayer, BasedOn: BasedOnUser, Value: 1}
)
