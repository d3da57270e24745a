package parsers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// normalizeLabel lowercases and strips spaces, underscores, and hyphens.
func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// findColumn searches for a column by multiple possible names (case-insensitive)
// Removes spaces, underscores, and hyphens for normalization
func findColumn(header []string, possibleNames []string) int {
	for i, col := range header {
		colNorm := normalizeLabel(col)
		for _, name := range possibleNames {
			if colNorm == normalizeLabel(name) {
				return i
			}
		}
	}
	return -1
}

// holeLabel returns the hole number a header cell names.
// Matches patterns: "hole1", "hole_1", "hole 1", "h1", "H1", or just "1"
func holeLabel(col string) (string, bool) {
	colNorm := normalizeLabel(col)
	switch {
	case strings.HasPrefix(colNorm, "hole"):
		colNorm = strings.TrimPrefix(colNorm, "hole")
	case strings.HasPrefix(colNorm, "h") && len(colNorm) > 1:
		colNorm = strings.TrimPrefix(colNorm, "h")
	}
	n, err := strconv.Atoi(colNorm)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}

// findHoleColumns finds all columns that represent holes and the hole id each names.
func findHoleColumns(header []string) ([]int, []string) {
	var cols []int
	var ids []string
	for i, col := range header {
		if id, ok := holeLabel(col); ok {
			cols = append(cols, i)
			ids = append(ids, id)
		}
	}
	return cols, ids
}

// isPARRow checks if a row represents par values
func isPARRow(cellValue string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(cellValue))
	return normalized == "PAR" || normalized == "PARS" || normalized == "P"
}

// isAllocationRow checks if a row holds the handicap allocation (stroke index) of each hole.
func isAllocationRow(cellValue string) bool {
	switch normalizeLabel(cellValue) {
	case "hdcp", "hcp", "handicap", "si", "strokeindex", "allocation", "index":
		return true
	}
	return false
}

// isBlankRow reports whether every cell of the row is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCell converts a score cell. Blank and dash cells are zero when allowBlank is set.
func parseCell(val string, allowBlank bool) (int, error) {
	val = strings.TrimSpace(val)
	if val == "" || val == "-" {
		if allowBlank {
			return 0, nil
		}
		return 0, fmt.Errorf("missing value")
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("non-numeric score value: %q", val)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative score value: %d", n)
	}
	return n, nil
}

// cellsAt parses the cells of row at the given column indices.
func cellsAt(row []string, cols []int, allowBlank bool) ([]int, error) {
	out := make([]int, len(cols))
	for i, col := range cols {
		cell := ""
		if col < len(row) {
			cell = row[col]
		}
		n, err := parseCell(cell, allowBlank)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", col+1, err)
		}
		out[i] = n
	}
	return out, nil
}

// preprocessCSVData cleans CSV data and auto-detects delimiter
// Returns: cleaned string, delimiter rune, error
func preprocessCSVData(data []byte) (string, rune, error) {
	// Strip UTF-8 BOM if present (0xEF, 0xBB, 0xBF)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ',', fmt.Errorf("empty CSV data")
	}

	cleaned := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))

	// Auto-detect delimiter: count commas vs tabs in first 5 lines
	lines := strings.Split(cleaned, "\n")
	sampleSize := min(5, len(lines))

	commaCount := 0
	tabCount := 0
	for i := 0; i < sampleSize; i++ {
		commaCount += strings.Count(lines[i], ",")
		tabCount += strings.Count(lines[i], "\t")
	}

	delimiter := ','
	if tabCount > commaCount {
		delimiter = '\t'
	}

	return cleaned, delimiter, nil
}

// detectHeaderRow scans the first 5 rows to find the header
// Returns the index of the header row, or -1 if not found
func detectHeaderRow(rows [][]string) int {
	maxRows := min(5, len(rows))

	// Known header column names (normalized)
	knownColumns := []string{"playername", "player", "name", "total", "hcp", "handicap", "team"}

	bestScore := 0
	bestRow := -1

	for rowIdx := 0; rowIdx < maxRows; rowIdx++ {
		row := rows[rowIdx]
		if len(row) > 0 && (isPARRow(row[0]) || isAllocationRow(row[0])) {
			continue
		}

		named, holes, next := 0, 0, 1
		for _, cell := range row {
			if id, ok := holeLabel(cell); ok {
				// bare numbers only count as hole labels when they run 1, 2, 3...
				if id == strconv.Itoa(next) {
					holes++
					next++
				}
				continue
			}
			cellNorm := normalizeLabel(cell)
			for _, known := range knownColumns {
				if cellNorm == known {
					named++
					break
				}
			}
		}
		score := named + holes

		// Need at least 2 recognized columns to consider it a header
		if (named > 0 || holes > 1) && score >= 2 && score > bestScore {
			bestScore = score
			bestRow = rowIdx
		}
	}

	return bestRow
}

// playerID derives a stable id from a display name, suffixing repeats.
func playerID(name string, used map[string]bool) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimSuffix(b.String(), "-")
	if id == "" {
		id = "player"
	}
	base := id
	for n := 2; used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	used[id] = true
	return id
}
