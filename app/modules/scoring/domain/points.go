package scoringdomain

// pointsStage turns junk and multipliers into points on every played hole.
//
// Team formats: team points are the team's junk plus its members' junk,
// times the hole multiplier, and each player's points are their own junk
// times the hole multiplier. Individual formats: a player's points are their
// junk times the product of their own multipliers.
func pointsStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	format := sc.Format()
	for _, hr := range sb.Holes {
		if !hr.Scored() {
			continue
		}
		for _, p := range hr.Players {
			if format == FormatTeam {
				p.Points = junkSum(p.Junk) * hr.HoleMultiplier
			} else {
				p.Points = junkSum(p.Junk) * multiplierProduct(p.Multipliers)
			}
		}
		for _, t := range hr.Teams {
			t.Points = TeamJunk(hr, t) * hr.HoleMultiplier
		}
	}
	return sc.withScoreboard(sb)
}

// TeamJunk sums the team's own junk and the junk of its members.
func TeamJunk(hr *HoleResult, t *TeamHoleResult) int {
	total := junkSum(t.Junk)
	for _, id := range t.PlayerIDs {
		if p := hr.Players[id]; p != nil {
			total += junkSum(p.Junk)
		}
	}
	return total
}
