package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
)

// CSVParser parses CSV and tab-separated scorecard files
type CSVParser struct{}

// NewCSVParser creates a new CSV parser
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse parses CSV data and returns a snapshot without options or game id.
func (p *CSVParser) Parse(data []byte) (*scoringdomain.GameSnapshot, error) {
	cleaned, delimiter, err := preprocessCSVData(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(cleaned))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		// Skip empty rows
		if isBlankRow(record) {
			continue
		}
		records = append(records, record)
	}

	return snapshotFromRows(records, "CSV")
}
