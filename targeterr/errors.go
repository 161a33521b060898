// Package targeterr defines the error taxonomy for the target. None of these
// are recovered anywhere: every one aborts the run and surfaces to the CLI,
// which exits non-zero.
package targeterr

import (
	"fmt"
	"strings"
)

// ProtocolError indicates a malformed or out-of-sequence input message.
type ProtocolError struct {
	Line int // 1-based input line number, 0 if unknown
	Msg  string
	Err  error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error at line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("protocol error at line %d: %s", e.Line, e.Msg)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// SchemaError indicates a JSON Schema that cannot be mapped to a table
// definition: an unmappable type, an ambiguous type union, or a key property
// that would be silently dropped.
type SchemaError struct {
	Stream   string
	Property string // empty when the problem is table-wide
	Msg      string
}

func (e *SchemaError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("schema error in stream %q, property %q: %s", e.Stream, e.Property, e.Msg)
	}
	return fmt.Sprintf("schema error in stream %q: %s", e.Stream, e.Msg)
}

// ValidationError indicates a record that fails its stream's declared schema,
// or a value that cannot be coerced to its column's storage representation.
type ValidationError struct {
	Stream   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record in stream %q failed validation: %s", e.Stream, strings.Join(e.Problems, "; "))
}

// MissingFieldError indicates a record missing a column declared by its
// stream's table definition. Partial records are rejected, not defaulted.
type MissingFieldError struct {
	Stream string
	Table  string
	Column string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("record in stream %q is missing declared column %q (table %s)", e.Stream, e.Column, e.Table)
}

// StorageError indicates the storage backend was unreachable or rejected an
// operation.
type StorageError struct {
	Op    string // "connect", "sync", "insert"
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("storage %s failed for table %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
