package parsers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	scoringdomain "github.com/spicygolf/spicy-sub003/app/modules/scoring/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSnapshot wraps schema violations in a snapshot document.
var ErrInvalidSnapshot = errors.New("invalid game snapshot")

// JSONParser parses a game snapshot document.
type JSONParser struct{}

// NewJSONParser creates a new JSON snapshot parser
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Parse validates data against the snapshot schema and decodes it.
func (p *JSONParser) Parse(data []byte) (*scoringdomain.GameSnapshot, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidSnapshot)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	schema, err := gameSnapshotSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	snap := new(scoringdomain.GameSnapshot)
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// YAMLParser parses a game snapshot written as YAML. The document is
// converted to JSON and validated with the same schema.
type YAMLParser struct {
	json *JSONParser
}

// NewYAMLParser creates a new YAML snapshot parser
func NewYAMLParser() *YAMLParser {
	return &YAMLParser{json: NewJSONParser()}
}

// Parse decodes YAML data into a snapshot.
func (p *YAMLParser) Parse(data []byte) (*scoringdomain.GameSnapshot, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidSnapshot)
	}

	converted, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return p.json.Parse(converted)
}

// stringKeys rewrites mappings with non-string keys (hole numbers written
// bare in YAML) so the document can be encoded as JSON.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = stringKeys(child)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = stringKeys(child)
		}
		return t
	default:
		return v
	}
}
