package scoringdomain

import "slices"

// Stage names, in pipeline order.
const (
	StageInitialize = "initialize"
	StageGross      = "gross"
	StagePops       = "pops"
	StageNet        = "net"
	StageTeamScores = "team_scores"
	StageTeams      = "teams"
	StageRanking    = "ranking"
	StageJunk       = "junk"
	StageMultiplier = "multipliers"
	StagePoints     = "points"
	StageCumulative = "cumulative"
)

// Stage is one pure step of the pipeline.
type Stage struct {
	Name string
	Run  func(ScoringContext) ScoringContext
}

// initializeStage builds a zero-valued scoreboard with an entry for every hole,
// player and team so later stages never need existence checks.
func initializeStage(sc ScoringContext) ScoringContext {
	sb := Scoreboard{
		Holes: make(map[string]*HoleResult, len(sc.Holes)),
		Cumulative: Cumulative{
			Players: make(map[string]*CumulativePlayer, len(sc.Rounds)),
			Teams:   make(map[string]*CumulativeTeam),
		},
	}

	for _, h := range sc.Holes {
		hr := &HoleResult{
			Hole:           h.ID,
			Par:            h.Par,
			Players:        make(map[string]*PlayerHoleResult, len(sc.Rounds)),
			Teams:          make(map[string]*TeamHoleResult, len(sc.Rosters[h.ID])),
			HoleMultiplier: 1,
		}
		for _, r := range sc.Rounds {
			hr.Players[r.PlayerID] = &PlayerHoleResult{
				PlayerID:    r.PlayerID,
				Junk:        []Junk{},
				Multipliers: []Multiplier{},
			}
		}
		for _, t := range sc.Rosters[h.ID] {
			hr.Teams[t.ID] = &TeamHoleResult{
				Team:        t.ID,
				PlayerIDs:   append([]string{}, t.PlayerIDs...),
				Junk:        []Junk{},
				Multipliers: []Multiplier{},
			}
			if _, ok := sb.Cumulative.Teams[t.ID]; !ok {
				sb.Cumulative.Teams[t.ID] = &CumulativeTeam{RunningTotal: zeroRunning(sc.Holes)}
			}
		}
		sb.Holes[h.ID] = hr
	}

	for _, r := range sc.Rounds {
		sb.Cumulative.Players[r.PlayerID] = &CumulativePlayer{RunningTotal: zeroRunning(sc.Holes)}
	}
	return sc.withScoreboard(sb)
}

func zeroRunning(holes []Hole) map[string]int {
	running := make(map[string]int, len(holes))
	for _, h := range holes {
		running[h.ID] = 0
	}
	return running
}

// grossStage copies entered strokes into the scoreboard. Non-positive
// entries count as not played.
func grossStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	for _, r := range sc.Rounds {
		for holeID, entry := range r.Scores {
			hr, ok := sb.Holes[holeID]
			if !ok || entry.Gross <= 0 {
				continue
			}
			hr.Players[r.PlayerID].Gross = entry.Gross
		}
	}
	return sc.withScoreboard(sb)
}

// popsStage assigns handicap strokes for every player on every hole.
func popsStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	for _, h := range sc.Holes {
		hr := sb.Holes[h.ID]
		for id, p := range hr.Players {
			p.Pops = Pops(sc.Handicaps[id], sc.Allocations[h.ID])
		}
	}
	return sc.withScoreboard(sb)
}

// netStage sets net = gross - pops for played holes only.
func netStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	for _, hr := range sb.Holes {
		for _, p := range hr.Players {
			if p.Gross > 0 {
				p.Net = p.Gross - p.Pops
			}
		}
	}
	return sc.withScoreboard(sb)
}

// teamScoresStage aggregates member net scores into team metrics.
func teamScoresStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	game := sc.Rules.Game
	for _, hr := range sb.Holes {
		if !hr.Scored() {
			continue
		}
		for _, t := range hr.Teams {
			nets := make([]int, 0, len(t.PlayerIDs))
			for _, id := range t.PlayerIDs {
				if p := hr.Players[id]; p != nil && p.Gross > 0 {
					nets = append(nets, p.Net)
				}
			}
			m := ComputeTeamMetrics(nets, game.TeamCalculation, game.TeamCount)
			t.LowBall, t.HighBall, t.Total, t.Score = m.LowBall, m.HighBall, m.Total, m.Score
		}
	}
	return sc.withScoreboard(sb)
}

// teamsStage checks that every team member has a result on the hole. Rosters
// are fixed when the context is built, so this only drops members a
// hand-built context referenced without a round.
func teamsStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	for _, hr := range sb.Holes {
		for _, t := range hr.Teams {
			t.PlayerIDs = slices.DeleteFunc(t.PlayerIDs, func(id string) bool {
				_, ok := hr.Players[id]
				return !ok
			})
		}
	}
	return sc.withScoreboard(sb)
}

// rankingStage ranks players by net and teams by score on every played hole.
func rankingStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	for _, hr := range sb.Holes {
		if !hr.Scored() {
			continue
		}

		var played []*PlayerHoleResult
		for _, p := range hr.Players {
			if p.Gross > 0 {
				played = append(played, p)
			}
		}
		for _, r := range RankWithTies(played,
			func(p *PlayerHoleResult) int { return p.Net },
			func(p *PlayerHoleResult) string { return p.PlayerID },
			LowerIsBetter,
		) {
			r.Item.Rank, r.Item.Tie = r.Rank, r.Tie
		}

		var scoredTeams []*TeamHoleResult
		for _, t := range hr.Teams {
			if teamPlayed(hr, t) {
				scoredTeams = append(scoredTeams, t)
			}
		}
		for _, r := range RankWithTies(scoredTeams,
			func(t *TeamHoleResult) int { return t.Score },
			func(t *TeamHoleResult) string { return t.Team },
			LowerIsBetter,
		) {
			r.Item.Rank, r.Item.Tie = r.Rank, r.Tie
		}
	}
	return sc.withScoreboard(sb)
}

// teamPlayed reports whether at least one member has a gross score.
func teamPlayed(hr *HoleResult, t *TeamHoleResult) bool {
	for _, id := range t.PlayerIDs {
		if p := hr.Players[id]; p != nil && p.Gross > 0 {
			return true
		}
	}
	return false
}
