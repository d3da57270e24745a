package parsers

import (
	"fmt"
	"sort"
	"strings"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
)

// scorecardLayout locates the columns of a scorecard grid.
type scorecardLayout struct {
	nameCol     int
	handicapCol int
	teamCol     int
	holeCols    []int
	holeIDs     []string
}

func layoutFromHeader(header []string) scorecardLayout {
	l := scorecardLayout{
		nameCol:     findColumn(header, []string{"player", "name", "player name", "playername"}),
		handicapCol: findColumn(header, []string{"hcp", "handicap", "course handicap", "ch"}),
		teamCol:     findColumn(header, []string{"team", "side"}),
	}
	if l.nameCol < 0 {
		l.nameCol = 0
	}
	l.holeCols, l.holeIDs = findHoleColumns(header)
	return l
}

// inferHoles numbers the filled par cells 1..n when the header names no holes.
func (l *scorecardLayout) inferHoles(parRow []string) {
	l.holeCols, l.holeIDs = nil, nil
	for i := l.nameCol + 1; i < len(parRow); i++ {
		if i == l.handicapCol || i == l.teamCol {
			continue
		}
		if _, err := parseCell(parRow[i], false); err != nil {
			continue
		}
		l.holeCols = append(l.holeCols, i)
		l.holeIDs = append(l.holeIDs, fmt.Sprint(len(l.holeCols)))
	}
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// snapshotFromRows converts a scorecard grid into a snapshot. Rows are the
// header, a par row, an optional allocation row, and one row per player.
// Blank or dash cells are unplayed holes.
func snapshotFromRows(rows [][]string, format string) (*scoringdomain.GameSnapshot, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s file is empty", format)
	}

	headerIdx := detectHeaderRow(rows)
	var layout scorecardLayout
	if headerIdx >= 0 {
		layout = layoutFromHeader(rows[headerIdx])
	} else {
		layout = scorecardLayout{handicapCol: -1, teamCol: -1}
	}

	parIdx, allocIdx := -1, -1
	for i, row := range rows {
		if i == headerIdx {
			continue
		}
		label := cell(row, layout.nameCol)
		switch {
		case parIdx < 0 && isPARRow(label):
			parIdx = i
		case allocIdx < 0 && isAllocationRow(label):
			allocIdx = i
		}
	}
	if parIdx < 0 {
		return nil, fmt.Errorf("no par row found in %s", format)
	}
	if len(layout.holeCols) == 0 {
		layout.inferHoles(rows[parIdx])
	}
	if len(layout.holeCols) == 0 {
		return nil, fmt.Errorf("no hole columns found in %s", format)
	}

	pars, err := cellsAt(rows[parIdx], layout.holeCols, false)
	if err != nil {
		return nil, fmt.Errorf("invalid par row at line %d: %w", parIdx+1, err)
	}
	allocations := make([]int, len(pars))
	if allocIdx >= 0 {
		if allocations, err = cellsAt(rows[allocIdx], layout.holeCols, true); err != nil {
			return nil, fmt.Errorf("invalid allocation row at line %d: %w", allocIdx+1, err)
		}
	}

	snap := &scoringdomain.GameSnapshot{}
	for i, id := range layout.holeIDs {
		if pars[i] == 0 {
			return nil, fmt.Errorf("invalid par row at line %d: hole %s has par 0", parIdx+1, id)
		}
		snap.Holes = append(snap.Holes, scoringdomain.HoleSnapshot{Hole: id, Par: pars[i], Allocation: allocations[i]})
	}

	used := make(map[string]bool)
	teams := make(map[string][]string)
	for i, row := range rows {
		if i == headerIdx || i == parIdx || i == allocIdx || isBlankRow(row) {
			continue
		}
		name := cell(row, layout.nameCol)
		if name == "" || normalizeLabel(name) == "total" {
			continue
		}

		grosses, err := cellsAt(row, layout.holeCols, true)
		if err != nil {
			return nil, fmt.Errorf("invalid scores for player %q at line %d: %w", name, i+1, err)
		}

		player := scoringdomain.PlayerSnapshot{
			ID:     playerID(name, used),
			Name:   name,
			Scores: make(map[string]scoringdomain.HoleScoreEntry),
		}
		for j, gross := range grosses {
			if gross > 0 {
				player.Scores[layout.holeIDs[j]] = scoringdomain.HoleScoreEntry{Gross: gross}
			}
		}
		if v := cell(row, layout.handicapCol); v != "" && v != "-" {
			h, err := parseSignedCell(v)
			if err != nil {
				return nil, fmt.Errorf("invalid handicap for player %q at line %d: %w", name, i+1, err)
			}
			player.CourseHandicap = &h
		}
		if team := cell(row, layout.teamCol); team != "" {
			teams[team] = append(teams[team], player.ID)
		}
		snap.Players = append(snap.Players, player)
	}

	if len(snap.Players) == 0 {
		return nil, fmt.Errorf("no player score rows found in %s", format)
	}

	if len(teams) > 0 {
		snap.Teams = teamsOnEveryHole(teams, layout.holeIDs)
	}
	return snap, nil
}

// teamsOnEveryHole repeats a fixed team assignment across all holes.
func teamsOnEveryHole(teams map[string][]string, holes []string) map[string][]scoringdomain.TeamSnapshot {
	ids := make([]string, 0, len(teams))
	for id := range teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string][]scoringdomain.TeamSnapshot, len(holes))
	for _, hole := range holes {
		roster := make([]scoringdomain.TeamSnapshot, 0, len(ids))
		for _, id := range ids {
			roster = append(roster, scoringdomain.TeamSnapshot{
				ID:        id,
				PlayerIDs: append([]string(nil), teams[id]...),
			})
		}
		out[hole] = roster
	}
	return out
}

// parseSignedCell parses a course handicap. A plus handicap ("+2") is
// stored as -2, same as an explicit "-2".
func parseSignedCell(v string) (int, error) {
	negative := strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+")
	if negative {
		v = v[1:]
	}
	n, err := parseCell(v, false)
	if err != nil {
		return 0, err
	}
	if negative {
		return -n, nil
	}
	return n, nil
}
