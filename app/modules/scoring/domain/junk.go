package scoringdomain

import "slices"

// junkCandidate is a player or team that a junk rule is evaluated against.
type junkCandidate struct {
	id    string
	award func(Junk)
	input expressionInput
	// flagged is the user-entered flag for the rule's name.
	flagged bool
	// best is the score compared against par: the player's own score or
	// the team's best member score.
	best func(ScoreType) int
	// settled is false for a team while any rostered player on the hole
	// has yet to post, since its aggregates can still change.
	settled bool
}

// junkStage awards junk on every played hole.
func junkStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	var errs []*ConfigError
	for _, h := range sc.Holes {
		hr := sb.Holes[h.ID]
		if !hr.Scored() {
			continue
		}
		errs = append(errs, EvaluateJunk(sc, h, hr)...)
	}
	return sc.withScoreboard(sb, errs...)
}

// EvaluateJunk applies every junk rule in declaration order to one hole
// result, appending awards in place. A rule that fails on this hole is
// reported and the remaining rules still run.
func EvaluateJunk(sc ScoringContext, h Hole, hr *HoleResult) []*ConfigError {
	var errs []*ConfigError
	for _, rule := range sc.Rules.Junk {
		candidates := junkCandidates(sc, h, hr, rule)
		if err := evaluateJunkRule(rule, h, candidates); err != nil {
			errs = append(errs, &ConfigError{
				Option:  rule.Name,
				Hole:    h.ID,
				Message: "evaluation failed",
				Err:     err,
			})
		}
	}
	return errs
}

func evaluateJunkRule(rule JunkRule, h Hole, candidates []junkCandidate) error {
	award := Junk{Name: rule.Name, Value: rule.Value}

	switch c := rule.Condition.(type) {
	case UserFlag:
		for _, cand := range candidates {
			if cand.flagged {
				cand.award(award)
			}
		}
	case ScoreToPar:
		for _, cand := range candidates {
			if c.Matches(cand.best(c.ScoreType) - h.Par) {
				cand.award(award)
			}
		}
	case Comparison:
		if winner, ok := strictBest(candidates, c); ok {
			winner.award(award)
		}
	case Expression:
		for _, cand := range candidates {
			ok, err := c.program.eval(cand.input)
			if err != nil {
				return err
			}
			if ok {
				cand.award(award)
			}
		}
	}
	return nil
}

// strictBest returns the single candidate with the best metric. Any tie for
// best, fewer than two candidates, or an unsettled candidate means nobody
// wins.
func strictBest(candidates []junkCandidate, c Comparison) (junkCandidate, bool) {
	if len(candidates) < 2 {
		return junkCandidate{}, false
	}
	for _, cand := range candidates {
		if !cand.settled {
			return junkCandidate{}, false
		}
	}
	ranked := RankWithTies(candidates,
		func(cand junkCandidate) int { return comparisonMetric(cand.input, c.Metric) },
		func(cand junkCandidate) string { return cand.id },
		c.Better,
	)
	if ranked[0].Tie > 1 {
		return junkCandidate{}, false
	}
	return ranked[0].Item, true
}

func comparisonMetric(in expressionInput, m Metric) int {
	switch m {
	case MetricLowBall:
		return in.LowBall
	case MetricHighBall:
		return in.HighBall
	case MetricTotal:
		return in.Total
	case MetricScore:
		return in.Score
	case MetricGross:
		return in.Gross
	case MetricNet:
		return in.Net
	case MetricPops:
		return in.Pops
	}
	return 0
}

// junkCandidates lists who a rule is evaluated against on a hole, sorted
// by id: players who played the hole, or teams with at least one member
// who did. Team candidates are settled only once every rostered player on
// the hole has posted.
func junkCandidates(sc ScoringContext, h Hole, hr *HoleResult, rule JunkRule) []junkCandidate {
	var out []junkCandidate

	if rule.Scope == ScopeTeam {
		settled := rosterPosted(hr, sc.Rosters[h.ID])
		for _, t := range sc.Rosters[h.ID] {
			tr := hr.Teams[t.ID]
			if tr == nil || !teamPlayed(hr, tr) {
				continue
			}
			out = append(out, junkCandidate{
				id:      t.ID,
				award:   func(j Junk) { tr.Junk = append(tr.Junk, j) },
				flagged: t.Junk[rule.Name],
				best:    func(st ScoreType) int { return teamBestScore(hr, tr, st) },
				settled: settled,
				input: expressionInput{
					Hole:     h,
					ID:       t.ID,
					Gross:    teamBestScore(hr, tr, ScoreGross),
					Net:      teamBestScore(hr, tr, ScoreNet),
					Rank:     tr.Rank,
					Tie:      tr.Tie,
					LowBall:  tr.LowBall,
					HighBall: tr.HighBall,
					Total:    tr.Total,
					Score:    tr.Score,
					Members:  len(tr.PlayerIDs),
				},
			})
		}
		return out
	}

	for _, id := range sc.playerIDs() {
		pr := hr.Players[id]
		if pr == nil || pr.Gross <= 0 {
			continue
		}
		out = append(out, junkCandidate{
			id:      id,
			award:   func(j Junk) { pr.Junk = append(pr.Junk, j) },
			flagged: sc.entry(id, h.ID).Junk[rule.Name],
			settled: true,
			best: func(st ScoreType) int {
				if st == ScoreNet {
					return pr.Net
				}
				return pr.Gross
			},
			input: expressionInput{
				Hole:    h,
				ID:      id,
				Gross:   pr.Gross,
				Pops:    pr.Pops,
				Net:     pr.Net,
				Rank:    pr.Rank,
				Tie:     pr.Tie,
				Members: 1,
			},
		})
	}
	return out
}

// rosterPosted reports whether every player on every team has a score on
// the hole.
func rosterPosted(hr *HoleResult, teams []Team) bool {
	for _, t := range teams {
		for _, id := range t.PlayerIDs {
			if p := hr.Players[id]; p == nil || p.Gross <= 0 {
				return false
			}
		}
	}
	return true
}

// teamBestScore is the lowest gross or net among members who played.
func teamBestScore(hr *HoleResult, tr *TeamHoleResult, st ScoreType) int {
	var scores []int
	for _, id := range tr.PlayerIDs {
		p := hr.Players[id]
		if p == nil || p.Gross <= 0 {
			continue
		}
		if st == ScoreNet {
			scores = append(scores, p.Net)
		} else {
			scores = append(scores, p.Gross)
		}
	}
	if len(scores) == 0 {
		return 0
	}
	return slices.Min(scores)
}
