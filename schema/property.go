package schema

import (
	"encoding/json"
	"fmt"
)

// Definition is the subset of a Singer JSON Schema the translator reads.
// The full schema document is kept separately (as raw bytes) for record
// validation; this type only models the property shapes.
type Definition struct {
	Properties map[string]Property `json:"properties"`
}

// Property is one JSON Schema property definition.
type Property struct {
	Type   TypeSet    `json:"type"`
	Format string     `json:"format,omitempty"`
	AnyOf  []Property `json:"anyOf,omitempty"`
}

// TypeSet holds a JSON Schema "type" keyword, which may be a single string
// or a list of strings. List preserves which form appeared on the wire:
// a bare "null" is an unsupported type, while ["null"] is an empty union
// and therefore a schema error.
type TypeSet struct {
	Names []string
	List  bool
}

func (t *TypeSet) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		t.Names = []string{single}
		t.List = false
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf(`"type" must be a string or a list of strings: %w`, err)
	}
	t.Names = many
	t.List = true
	return nil
}

func (t TypeSet) MarshalJSON() ([]byte, error) {
	if !t.List && len(t.Names) == 1 {
		return json.Marshal(t.Names[0])
	}
	return json.Marshal(t.Names)
}

// ParseDefinition decodes the properties of a raw JSON Schema document.
func ParseDefinition(raw json.RawMessage) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &def, nil
}
