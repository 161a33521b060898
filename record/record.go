// Package record validates incoming records against their stream's JSON
// Schema and coerces declared column values into their Cassandra
// representations.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/coeff/target-cassandra/schema"
	"github.com/coeff/target-cassandra/targeterr"
)

// Row holds the values for one insert, keyed by column name. It contains
// exactly the columns of the table definition it was prepared against.
type Row map[string]any

// Validator wraps a compiled draft-4 JSON Schema. Compiled once per SCHEMA
// message and reused for every record of the stream.
type Validator struct {
	compiled *jsonschema.Schema
}

// CompileValidator compiles a raw JSON Schema document with draft-4
// semantics. Format keywords are annotations only; a date-time string is
// checked during coercion, not validation.
func CompileValidator(doc json.RawMessage) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft4
	if err := c.AddResource("stream.json", bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	compiled, err := c.Compile("stream.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// Validate checks rec against the schema: required properties and type
// constraints, draft-4 semantics.
func (v *Validator) Validate(stream string, rec map[string]any) error {
	err := v.compiled.Validate(rec)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &targeterr.ValidationError{Stream: stream, Problems: []string{err.Error()}}
	}

	var problems []string
	for _, unit := range ve.BasicOutput().Errors {
		if unit.Error == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}
		problems = append(problems, strings.TrimSpace(unit.InstanceLocation+": "+unit.Error))
	}
	if len(problems) == 0 {
		problems = []string{ve.Message}
	}
	return &targeterr.ValidationError{Stream: stream, Problems: problems}
}

// Prepare validates rec against the stream's schema and extracts the values
// of every declared column, coerced to their storage representation. Fields
// of rec outside the table definition are ignored; a declared column absent
// from rec is a MissingFieldError.
func Prepare(stream string, validator *Validator, table schema.TableDef, rec map[string]any) (Row, error) {
	if err := validator.Validate(stream, rec); err != nil {
		return nil, err
	}

	row := make(Row, len(table.Columns))
	for _, col := range table.Columns {
		raw, ok := rec[col.Name]
		if !ok {
			return nil, &targeterr.MissingFieldError{
				Stream: stream,
				Table:  table.Name,
				Column: col.Name,
			}
		}
		value, err := coerce(stream, col, raw)
		if err != nil {
			return nil, err
		}
		row[col.Name] = value
	}
	return row, nil
}

// coerce adapts a JSON value to the Go representation gocql expects for the
// column's CQL type. Nulls pass through for every type. Timestamps are
// parsed from ISO-8601 strings; integer and float columns adapt the float64
// that encoding/json produces for every number.
func coerce(stream string, col schema.ColumnDef, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	switch col.Type {
	case schema.TypeTimestamp:
		s, ok := raw.(string)
		if !ok {
			return nil, invalid(stream, col, "timestamp value is not a string")
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, invalid(stream, col, fmt.Sprintf("cannot parse %q as ISO-8601", s))
		}
		return ts, nil

	case schema.TypeInt:
		switch v := raw.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, invalid(stream, col, fmt.Sprintf("%v is not an integer", v))
			}
			return int64(v), nil
		case json.Number:
			n, err := v.Int64()
			if err != nil {
				return nil, invalid(stream, col, fmt.Sprintf("%v is not an integer", v))
			}
			return n, nil
		case int, int64:
			return v, nil
		default:
			return nil, invalid(stream, col, fmt.Sprintf("unexpected value of type %T", raw))
		}

	case schema.TypeFloat:
		switch v := raw.(type) {
		case float64:
			return float32(v), nil
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, invalid(stream, col, fmt.Sprintf("%v is not a number", v))
			}
			return float32(f), nil
		default:
			return nil, invalid(stream, col, fmt.Sprintf("unexpected value of type %T", raw))
		}

	default:
		return raw, nil
	}
}

func invalid(stream string, col schema.ColumnDef, msg string) error {
	return &targeterr.ValidationError{
		Stream:   stream,
		Problems: []string{fmt.Sprintf("%s: %s", col.Name, msg)},
	}
}
