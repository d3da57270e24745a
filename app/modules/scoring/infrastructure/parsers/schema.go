package parsers

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const snapshotSchemaURL = "https://spicygolf.com/schemas/game-snapshot.json"

// snapshotSchema checks structure only. Rule semantics are checked by the
// rule compiler, which reports per-option errors instead of rejecting the game.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["holes", "players"],
  "properties": {
    "gameId": {"type": "string"},
    "name": {"type": "string"},
    "holes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["hole", "par"],
        "properties": {
          "hole": {"type": "string", "minLength": 1},
          "par": {"type": "integer", "minimum": 1},
          "allocation": {"type": "integer", "minimum": 0}
        }
      }
    },
    "players": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "courseHandicap": {"type": ["integer", "null"]},
          "scores": {
            "type": "object",
            "additionalProperties": {"$ref": "#/$defs/holeScore"}
          }
        }
      }
    },
    "teams": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "playerIds"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "playerIds": {"type": "array", "items": {"type": "string"}},
            "junk": {"$ref": "#/$defs/flags"},
            "multipliers": {"$ref": "#/$defs/flags"}
          }
        }
      }
    },
    "options": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string"},
          "value": {"type": "integer"}
        }
      }
    }
  },
  "$defs": {
    "flags": {
      "type": "object",
      "additionalProperties": {"type": "boolean"}
    },
    "holeScore": {
      "type": "object",
      "properties": {
        "gross": {"type": "integer", "minimum": 0},
        "junk": {"$ref": "#/$defs/flags"},
        "multipliers": {"$ref": "#/$defs/flags"}
      }
    }
  }
}`

var (
	compiledSchemaOnce sync.Once
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
)

func gameSnapshotSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(snapshotSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}
