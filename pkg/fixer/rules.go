package fixer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRules is returned when a rule table does not match the rule
// schema.
var ErrInvalidRules = errors.New("invalid fix rules")

// Action names a line transformation.
type Action string

const (
	ActionAppendAtEnd     Action = "append_at_end"
	ActionAddIndent       Action = "add_indent"
	ActionReplaceOperator Action = "replace_operator"
	ActionWrapContent     Action = "wrap_content"
	ActionCommentLine     Action = "comment_line"
)

// Rule is how to fix one kind of finding.
type Rule struct {
	Action     Action `yaml:"action" json:"action"`
	Correction string `yaml:"correction,omitempty" json:"correction,omitempty"`
}

// Rules maps finding ids to rules.
type Rules map[string]Rule

//go:embed rules.yaml
var defaultRules []byte

const rulesSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["action"],
    "additionalProperties": false,
    "properties": {
      "action": {
        "enum": ["append_at_end", "add_indent", "replace_operator", "wrap_content", "comment_line"]
      },
      "correction": {"type": "string"}
    },
    "allOf": [
      {
        "if": {"properties": {"action": {"enum": ["append_at_end", "add_indent", "comment_line"]}}},
        "then": {"required": ["correction"]}
      }
    ]
  }
}`

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(rulesSchema)))
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("rules.schema.json", doc); err != nil {
		panic(err)
	}
	return c.MustCompile("rules.schema.json")
}

// DefaultRules returns the built-in rule table.
func DefaultRules() Rules {
	rules, err := ParseRules(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("built-in fix rules: %v", err))
	}
	return rules
}

// LoadRules reads a YAML or JSON rule table from path.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes and validates a rule table. JSON input is accepted
// because it is valid YAML.
func ParseRules(data []byte) (Rules, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if raw == nil {
		return Rules{}, nil
	}

	// Round-trip through JSON so the validator sees JSON value types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	var rules Rules
	if err := json.Unmarshal(encoded, &rules); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return rules, nil
}
