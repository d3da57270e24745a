package parsers

import (
	"bytes"
	"fmt"
	"strings"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXParser parses XLSX scorecard files
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet of the workbook as a scorecard grid.
func (p *XLSXParser) Parse(data []byte) (*scoringdomain.GameSnapshot, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "zip: not a valid zip file") {
			return nil, fmt.Errorf("failed to open XLSX file: %w. (Hint: If this is a CSV file, please ensure it has a .csv extension)", err)
		}
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	// Use the first sheet
	sheetName := sheets[0]
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	var grid [][]string
	for _, row := range rows {
		if !isBlankRow(row) {
			grid = append(grid, row)
		}
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	return snapshotFromRows(grid, "XLSX")
}
