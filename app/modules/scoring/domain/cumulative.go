package scoringdomain

// cumulativeStage sums every played hole into round totals, keeps a running
// points total per hole and ranks players by net total and teams by points
// total.
func cumulativeStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	cum := &sb.Cumulative

	for id, cp := range cum.Players {
		*cp = CumulativePlayer{RunningTotal: make(map[string]int, len(sc.Holes))}
		running := 0
		for _, h := range sc.Holes {
			p := sb.Holes[h.ID].Players[id]
			if p != nil && p.Gross > 0 {
				cp.GrossTotal += p.Gross
				cp.PopsTotal += p.Pops
				cp.NetTotal += p.Net
				cp.PointsTotal += p.Points
				cp.JunkTotal += junkSum(p.Junk)
				cp.HolesPlayed++
				running += p.Points
			}
			cp.RunningTotal[h.ID] = running
		}
	}

	for id, ct := range cum.Teams {
		*ct = CumulativeTeam{RunningTotal: make(map[string]int, len(sc.Holes))}
		running := 0
		for _, h := range sc.Holes {
			hr := sb.Holes[h.ID]
			t := hr.Teams[id]
			if t != nil && teamPlayed(hr, t) {
				ct.ScoreTotal += t.Score
				ct.PointsTotal += t.Points
				ct.JunkTotal += junkSum(t.Junk)
				ct.HolesPlayed++
				running += t.Points
			}
			ct.RunningTotal[h.ID] = running
		}
	}

	type playerTotal struct {
		id string
		cp *CumulativePlayer
	}
	var players []playerTotal
	for id, cp := range cum.Players {
		if cp.HolesPlayed > 0 {
			players = append(players, playerTotal{id, cp})
		}
	}
	for _, r := range RankWithTies(players,
		func(p playerTotal) int { return p.cp.NetTotal },
		func(p playerTotal) string { return p.id },
		LowerIsBetter,
	) {
		r.Item.cp.Rank, r.Item.cp.Tie = r.Rank, r.Tie
	}

	type teamTotal struct {
		id string
		ct *CumulativeTeam
	}
	var teams []teamTotal
	for id, ct := range cum.Teams {
		if ct.HolesPlayed > 0 {
			teams = append(teams, teamTotal{id, ct})
		}
	}
	for _, r := range RankWithTies(teams,
		func(t teamTotal) int { return t.ct.PointsTotal },
		func(t teamTotal) string { return t.id },
		HigherIsBetter,
	) {
		r.Item.ct.Rank, r.Item.ct.Tie = r.Rank, r.Tie
	}

	return sc.withScoreboard(sb)
}
