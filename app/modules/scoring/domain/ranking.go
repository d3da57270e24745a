package scoringdomain

import (
	"cmp"
	"slices"
)

// Direction says which end of a ranking is best.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

// Ranked is an item with its competition rank. Tie is the size of the
// item's tie group, 1 when the item is alone at its rank.
type Ranked[T any] struct {
	Item T
	Rank int
	Tie  int
}

// RankWithTies applies standard competition ranking: tied items share a
// rank and the next distinct key skips ahead by the group size, so keys
// {70, 70, 72} rank {1, 1, 3}. Items within a tie group are ordered by id.
// The input slice is not modified.
func RankWithTies[T any](items []T, key func(T) int, id func(T) string, dir Direction) []Ranked[T] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		c := cmp.Compare(key(a), key(b))
		if dir == HigherIsBetter {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})

	ranked := make([]Ranked[T], len(sorted))
	groupStart := 0
	for i, item := range sorted {
		ranked[i] = Ranked[T]{Item: item, Rank: i + 1}
		if i > 0 && key(item) == key(sorted[i-1]) {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		markTies(ranked[groupStart:i])
		groupStart = i
	}
	markTies(ranked[groupStart:])
	return ranked
}

func markTies[T any](group []Ranked[T]) {
	for i := range group {
		group[i].Tie = len(group)
	}
}
