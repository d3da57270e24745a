package scoringdomain

// multiplierStage records active multipliers on every played hole and
// combines them into the hole-wide multiplier.
func multiplierStage(sc ScoringContext) ScoringContext {
	sb := sc.Scoreboard.Clone()
	format := sc.Format()
	for pos, h := range sc.Holes {
		hr := sb.Holes[h.ID]
		if !hr.Scored() {
			continue
		}
		EvaluateMultipliers(sc, pos, hr)
		if format == FormatTeam {
			hr.HoleMultiplier = HoleMultiplier(hr)
		}
	}
	return sc.withScoreboard(sb)
}

// EvaluateMultipliers appends every multiplier active on the hole at pos to
// the owning player or team results.
func EvaluateMultipliers(sc ScoringContext, pos int, hr *HoleResult) {
	h := sc.Holes[pos]
	for _, rule := range sc.Rules.Multipliers {
		if rule.Automatic() {
			applyTriggered(sc, h, hr, rule)
			continue
		}
		applyActivated(sc, pos, hr, rule)
	}
}

// applyTriggered fires an automatic multiplier for every owner awarded the
// trigger junk on this hole. A team also fires when one of its members was
// awarded it.
func applyTriggered(sc ScoringContext, h Hole, hr *HoleResult, rule MultiplierRule) {
	m := Multiplier{Name: rule.Name, Value: rule.Value, FirstHole: h.ID}

	if rule.Scope == ScopeTeam {
		for _, t := range sc.Rosters[h.ID] {
			tr := hr.Teams[t.ID]
			if tr == nil {
				continue
			}
			triggered := hasJunk(tr.Junk, rule.Trigger)
			for _, id := range tr.PlayerIDs {
				if p := hr.Players[id]; p != nil && hasJunk(p.Junk, rule.Trigger) {
					triggered = true
				}
			}
			if triggered {
				tr.Multipliers = append(tr.Multipliers, m)
			}
		}
		return
	}

	for _, id := range sc.playerIDs() {
		if p := hr.Players[id]; p != nil && hasJunk(p.Junk, rule.Trigger) {
			p.Multipliers = append(p.Multipliers, m)
		}
	}
}

// applyActivated looks up user activations through the activation index,
// so an activation stored on an earlier hole still applies here.
func applyActivated(sc ScoringContext, pos int, hr *HoleResult, rule MultiplierRule) {
	h := sc.Holes[pos]

	if rule.Scope == ScopeTeam {
		for _, t := range sc.Rosters[h.ID] {
			tr := hr.Teams[t.ID]
			if tr == nil {
				continue
			}
			if first, ok := sc.Activations.ActiveOn(ScopeTeam, t.ID, rule.Name, pos, rule.Duration); ok {
				tr.Multipliers = append(tr.Multipliers, Multiplier{
					Name:      rule.Name,
					Value:     rule.Value,
					FirstHole: sc.Holes[first].ID,
				})
			}
		}
		return
	}

	for _, id := range sc.playerIDs() {
		p := hr.Players[id]
		if p == nil {
			continue
		}
		if first, ok := sc.Activations.ActiveOn(ScopePlayer, id, rule.Name, pos, rule.Duration); ok {
			p.Multipliers = append(p.Multipliers, Multiplier{
				Name:      rule.Name,
				Value:     rule.Value,
				FirstHole: sc.Holes[first].ID,
			})
		}
	}
}

// HoleMultiplier multiplies together every multiplier active on the hole:
// each team's own and those of every player on a team. The result applies
// to every team, not only the one that activated it.
func HoleMultiplier(hr *HoleResult) int {
	product := 1
	counted := make(map[string]bool)
	for _, t := range hr.Teams {
		product *= multiplierProduct(t.Multipliers)
		for _, id := range t.PlayerIDs {
			if counted[id] {
				continue
			}
			counted[id] = true
			if p := hr.Players[id]; p != nil {
				product *= multiplierProduct(p.Multipliers)
			}
		}
	}
	return product
}
