package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"klinebot/internal/pkg/convert"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const statusSchemaJSON = `{
  "type": "object",
  "required": ["symbol", "size", "side"],
  "properties": {
    "symbol": {"type": "string", "minLength": 1},
    "size": {
      "anyOf": [
        {"type": "number"},
        {"type": "string", "pattern": "^\\s*-?[0-9]+(\\.[0-9]+)?([eE][-+]?[0-9]+)?\\s*$"}
      ]
    },
    "side": {"type": "string", "pattern": "^(?i)(long|short|close)$"}
  }
}`

var statusSchema = mustCompileSchema("status.json", statusSchemaJSON)

func mustCompileSchema(name, raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// ParseStatus validates a per-symbol status document and turns it into a
// PositionState.
func ParseStatus(raw []byte) (PositionState, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return PositionState{}, fmt.Errorf("decode status: %w", err)
	}
	if err := statusSchema.Validate(doc); err != nil {
		return PositionState{}, fmt.Errorf("invalid status: %w", err)
	}
	fields := doc.(map[string]any)
	size, err := convert.ParseFloat64(fields["size"])
	if err != nil {
		return PositionState{}, fmt.Errorf("status size: %w", err)
	}
	side, err := ParseSide(fields["side"].(string))
	if err != nil {
		return PositionState{}, fmt.Errorf("status side: %w", err)
	}
	return PositionState{
		Symbol: fields["symbol"].(string),
		Size:   size,
		Side:   side,
	}, nil
}
