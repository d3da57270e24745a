package scoringdomain

import (
	"strconv"
	"testing"
)

type rankItem struct {
	id  string
	key int
}

func TestRankWithTies(t *testing.T) {
	tests := []struct {
		name      string
		keys      []int
		dir       Direction
		wantRanks []int
		wantTies  []int
	}{
		{
			name:      "competition ranking skips after a tie",
			keys:      []int{70, 70, 72},
			dir:       LowerIsBetter,
			wantRanks: []int{1, 1, 3},
			wantTies:  []int{2, 2, 1},
		},
		{
			name:      "tie at the top then distinct keys",
			keys:      []int{3, 3, 4, 5},
			dir:       LowerIsBetter,
			wantRanks: []int{1, 1, 3, 4},
			wantTies:  []int{2, 2, 1, 1},
		},
		{
			name:      "higher is better",
			keys:      []int{5, 9, 9, 1},
			dir:       HigherIsBetter,
			wantRanks: []int{3, 1, 1, 4},
			wantTies:  []int{1, 2, 2, 1},
		},
		{
			name:      "three way tie in the middle",
			keys:      []int{1, 4, 4, 4, 8},
			dir:       LowerIsBetter,
			wantRanks: []int{1, 2, 2, 2, 5},
			wantTies:  []int{1, 3, 3, 3, 1},
		},
		{
			name: "empty",
			keys: nil,
			dir:  LowerIsBetter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]rankItem, len(tt.keys))
			for i, k := range tt.keys {
				items[i] = rankItem{id: strconv.Itoa(i), key: k}
			}

			ranked := RankWithTies(items,
				func(r rankItem) int { return r.key },
				func(r rankItem) string { return r.id },
				tt.dir,
			)
			if len(ranked) != len(items) {
				t.Fatalf("expected %d ranked items, got %d", len(items), len(ranked))
			}

			byID := make(map[string]Ranked[rankItem], len(ranked))
			for _, r := range ranked {
				byID[r.Item.id] = r
			}
			for i := range items {
				got := byID[strconv.Itoa(i)]
				if got.Rank != tt.wantRanks[i] {
					t.Errorf("item %d (key %d): rank = %d, want %d", i, tt.keys[i], got.Rank, tt.wantRanks[i])
				}
				if got.Tie != tt.wantTies[i] {
					t.Errorf("item %d (key %d): tie = %d, want %d", i, tt.keys[i], got.Tie, tt.wantTies[i])
				}
			}
		})
	}
}

func TestRankWithTies_DoesNotReorderInput(t *testing.T) {
	items := []rankItem{{"b", 2}, {"a", 1}, {"c", 3}}
	RankWithTies(items, func(r rankItem) int { return r.key }, func(r rankItem) string { return r.id }, LowerIsBetter)

	if items[0].id != "b" || items[1].id != "a" || items[2].id != "c" {
		t.Fatalf("input was reordered: %+v", items)
	}
}

func TestRankWithTies_TieGroupOrderedByID(t *testing.T) {
	items := []rankItem{{"z", 1}, {"m", 1}, {"a", 1}}
	ranked := RankWithTies(items, func(r rankItem) int { return r.key }, func(r rankItem) string { return r.id }, LowerIsBetter)

	got := []string{ranked[0].Item.id, ranked[1].Item.id, ranked[2].Item.id}
	want := []string{"a", "m", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
