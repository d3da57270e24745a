package scoringdomain

import "slices"

// TeamMetrics are a team's aggregates over the net scores of members who
// played the hole.
type TeamMetrics struct {
	LowBall  int
	HighBall int
	Total    int
	Score    int
}

// ComputeTeamMetrics derives the team aggregates from member net scores.
// An empty slice yields zero metrics.
func ComputeTeamMetrics(nets []int, calc TeamCalculation, count int) TeamMetrics {
	if len(nets) == 0 {
		return TeamMetrics{}
	}
	sorted := slices.Clone(nets)
	slices.Sort(sorted)

	m := TeamMetrics{
		LowBall:  sorted[0],
		HighBall: sorted[len(sorted)-1],
	}
	for _, n := range sorted {
		m.Total += n
	}

	switch calc {
	case TeamSum, TeamAggregate:
		m.Score = m.Total
	case TeamWorstBall:
		m.Score = m.HighBall
	case TeamBestN:
		n := min(max(count, 1), len(sorted))
		for _, v := range sorted[:n] {
			m.Score += v
		}
	case TeamVegas:
		m.Score = vegasScore(sorted)
	default:
		m.Score = m.LowBall
	}
	return m
}

// vegasScore joins the two best scores low digit first, e.g. 4 and 5 give
// 45. A lone score stands on its own. Negative nets count as zero so the
// second ball still orders the result.
func vegasScore(sorted []int) int {
	low := max(sorted[0], 0)
	if len(sorted) < 2 {
		return low
	}
	high := max(sorted[1], 0)
	shift := 10
	for high >= shift {
		shift *= 10
	}
	return low*shift + high
}
