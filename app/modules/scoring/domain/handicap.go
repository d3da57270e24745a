package scoringdomain

import "math"

// holesPerCycle is the number of stroke allocations in one pass over a
// course. A handicap above it gives extra strokes on the hardest holes.
const holesPerCycle = 18

// Pops returns the handicap strokes a player with the given adjusted
// handicap receives on a hole with the given stroke allocation.
func Pops(adjusted, allocation int) int {
	if adjusted <= 0 {
		return 0
	}
	pops := adjusted / holesPerCycle
	if allocation > 0 && adjusted%holesPerCycle >= allocation {
		pops++
	}
	return pops
}

// ApplyAllowance scales a course handicap by a percentage allowance,
// rounding half away from zero.
func ApplyAllowance(handicap, percent int) int {
	if percent == 100 {
		return handicap
	}
	return int(math.Round(float64(handicap*percent) / 100))
}

// AdjustedHandicaps returns the handicap each player plays off under the
// given mode. In low mode the minimum is taken over every participant in
// the game, so the lowest player gets zero strokes on every hole.
func AdjustedHandicaps(handicaps map[string]int, mode HandicapMode) map[string]int {
	adjusted := make(map[string]int, len(handicaps))
	switch mode {
	case HandicapOff:
		for id := range handicaps {
			adjusted[id] = 0
		}
	case HandicapLow:
		floor := 0
		first := true
		for _, h := range handicaps {
			if first || h < floor {
				floor = h
				first = false
			}
		}
		for id, h := range handicaps {
			adjusted[id] = h - floor
		}
	default:
		for id, h := range handicaps {
			adjusted[id] = h
		}
	}
	return adjusted
}
