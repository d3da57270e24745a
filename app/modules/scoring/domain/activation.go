package scoringdomain

import (
	"slices"
	"strings"
)

type activationKey struct {
	scope Scope
	owner string
	name  string
}

// ActivationIndex records user-activated multipliers only at the hole they
// were activated on and answers whether one is in effect on a later hole.
// Hole positions are 0-based indexes into the context's hole order.
type ActivationIndex struct {
	activations map[activationKey][]int
	rosters     []map[string]string // team id -> roster signature, per position
}

// NewActivationIndex scans player entries and team hole options for
// multiplier activations.
func NewActivationIndex(holes []Hole, rounds []PlayerRound, rosters map[string][]Team) ActivationIndex {
	ix := ActivationIndex{
		activations: make(map[activationKey][]int),
		rosters:     make([]map[string]string, len(holes)),
	}
	for pos, h := range holes {
		ix.rosters[pos] = make(map[string]string, len(rosters[h.ID]))
		for _, t := range rosters[h.ID] {
			ix.rosters[pos][t.ID] = strings.Join(t.PlayerIDs, "\x00")
			for name, on := range t.Multipliers {
				if on {
					ix.add(activationKey{ScopeTeam, t.ID, name}, pos)
				}
			}
		}
		for _, r := range rounds {
			for name, on := range r.Scores[h.ID].Multipliers {
				if on {
					ix.add(activationKey{ScopePlayer, r.PlayerID, name}, pos)
				}
			}
		}
	}
	return ix
}

func (ix ActivationIndex) add(key activationKey, pos int) {
	ix.activations[key] = append(ix.activations[key], pos)
}

// Activated reports whether the owner activated the multiplier exactly on
// the hole at pos.
func (ix ActivationIndex) Activated(scope Scope, owner, name string, pos int) bool {
	return slices.Contains(ix.activations[activationKey{scope, owner, name}], pos)
}

// ActiveOn reports whether the owner's multiplier is in effect on the hole
// at pos and, if so, the position it was first activated at. A rest-of-round
// activation stays in effect while a team keeps the same roster; a rotation
// or the team disappearing from a hole ends it.
func (ix ActivationIndex) ActiveOn(scope Scope, owner, name string, pos int, d Duration) (int, bool) {
	for _, first := range ix.activations[activationKey{scope, owner, name}] {
		if first > pos {
			break
		}
		if d == DurationHole {
			if first == pos {
				return first, true
			}
			continue
		}
		if scope == ScopePlayer || ix.rosterStable(owner, first, pos) {
			return first, true
		}
	}
	return 0, false
}

func (ix ActivationIndex) rosterStable(team string, from, to int) bool {
	if from < 0 || to >= len(ix.rosters) {
		return false
	}
	sig, ok := ix.rosters[from][team]
	if !ok {
		return false
	}
	for pos := from + 1; pos <= to; pos++ {
		if got, ok := ix.rosters[pos][team]; !ok || got != sig {
			return false
		}
	}
	return true
}
