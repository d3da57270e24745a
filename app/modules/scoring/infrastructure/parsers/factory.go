package parsers

import (
	"errors"
	"fmt"
	"strings"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
)

// ErrUnsupportedFile is returned for file extensions no parser handles.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Parser turns an uploaded file into a game snapshot.
type Parser interface {
	Parse(data []byte) (*scoringdomain.GameSnapshot, error)
}

// ParserFactory defines the interface for creating parsers
type ParserFactory interface {
	GetParser(filename string) (Parser, error)
}

// Factory creates the appropriate parser based on file extension
type Factory struct{}

// NewFactory creates a new parser factory
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns the appropriate parser for the given filename
func (f *Factory) GetParser(filename string) (Parser, error) {
	ext := strings.ToLower(getFileExtension(filename))

	switch ext {
	case ".json":
		return NewJSONParser(), nil
	case ".yaml", ".yml":
		return NewYAMLParser(), nil
	case ".csv", ".tsv":
		return NewCSVParser(), nil
	case ".xlsx", ".xls":
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
}

// getFileExtension extracts the file extension from a filename
func getFileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return filename[idx:]
}
