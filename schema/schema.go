// Package schema translates Singer JSON Schemas into Cassandra table
// definitions. It maps each schema property to a column type, flags the
// stream's key properties as primary key columns, and produces a
// deterministic hash so unchanged definitions can skip storage round-trips.
package schema

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// ColumnType is a Cassandra column type produced by the type mapper.
type ColumnType int

const (
	// TypeUnsupported marks a property that has no column representation
	// (object, array, null-only). Callers skip such properties; it is a
	// deliberate omission, not an error.
	TypeUnsupported ColumnType = iota
	TypeText
	TypeBoolean
	TypeInt
	TypeFloat
	TypeTimestamp
)

// String returns the CQL name of the type.
func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeBoolean:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "unsupported"
	}
}

// ColumnDef describes a column within a table definition.
type ColumnDef struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	PrimaryKey bool       `json:"primary_key,omitempty"`
}

// TableDef is the full definition derived from one SCHEMA message: the
// table name plus its typed columns. Columns are sorted by name, which
// makes the definition (and its hash) deterministic.
type TableDef struct {
	Name    string      `json:"name"`
	Columns []ColumnDef `json:"columns"`
}

// PrimaryKeys returns the names of the primary key columns, in column order.
func (d TableDef) PrimaryKeys() []string {
	var keys []string
	for _, c := range d.Columns {
		if c.PrimaryKey {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

// Column returns the definition of the named column.
func (d TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// Hash returns a deterministic SHA-256 hash of the definition. Two
// definitions with the same name and columns produce the same hash.
func (d TableDef) Hash() string {
	data, _ := json.Marshal(d)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}

// TableName derives a valid Cassandra identifier from a stream name:
// lowercased, with every other rune replaced by an underscore, and a
// leading underscore prepended when the name starts with a digit.
func TableName(stream string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(stream) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		return "_"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}
	return name
}
