// Package message models the Singer protocol: newline-delimited JSON
// messages of kind SCHEMA, RECORD, STATE, or ACTIVATE_VERSION. Each kind is
// a distinct type behind the Message interface, so consumers dispatch with
// a type switch instead of re-inspecting the raw "type" string.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/coeff/target-cassandra/targeterr"
)

// Kind is the value of a message's "type" field.
type Kind string

const (
	KindSchema          Kind = "SCHEMA"
	KindRecord          Kind = "RECORD"
	KindState           Kind = "STATE"
	KindActivateVersion Kind = "ACTIVATE_VERSION"
)

// Message is one parsed Singer protocol message.
type Message interface {
	Kind() Kind
}

// Schema declares a stream's JSON Schema and its key properties. The schema
// document is kept raw so the validator sees exactly what was sent.
type Schema struct {
	Stream        string
	Schema        json.RawMessage
	KeyProperties []string
}

func (Schema) Kind() Kind { return KindSchema }

// Record carries one record for a previously declared stream.
type Record struct {
	Stream string
	Record map[string]any
}

func (Record) Kind() Kind { return KindRecord }

// State carries an opaque checkpoint value.
type State struct {
	Value json.RawMessage
}

func (State) Kind() Kind { return KindState }

// ActivateVersion is accepted and ignored.
type ActivateVersion struct {
	Stream  string
	Version int64
}

func (ActivateVersion) Kind() Kind { return KindActivateVersion }

type envelope struct {
	Type          string          `json:"type"`
	Stream        string          `json:"stream"`
	Schema        json.RawMessage `json:"schema"`
	KeyProperties []string        `json:"key_properties"`
	Record        map[string]any  `json:"record"`
	Value         json.RawMessage `json:"value"`
	Version       int64           `json:"version"`
}

// Parse decodes one input line into a Message. The line number is only used
// for error context. Malformed JSON, a missing "type", a missing required
// field, or an unrecognized type all yield a ProtocolError.
func Parse(line []byte, lineNo int) (Message, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, &targeterr.ProtocolError{
			Line: lineNo,
			Msg:  "unable to parse line",
			Err:  err,
		}
	}

	if env.Type == "" {
		return nil, &targeterr.ProtocolError{
			Line: lineNo,
			Msg:  `line is missing required key "type"`,
		}
	}

	switch Kind(env.Type) {
	case KindSchema:
		if env.Stream == "" {
			return nil, missingKey(lineNo, "stream")
		}
		if len(env.Schema) == 0 {
			return nil, missingKey(lineNo, "schema")
		}
		if env.KeyProperties == nil {
			return nil, missingKey(lineNo, "key_properties")
		}
		return Schema{
			Stream:        env.Stream,
			Schema:        env.Schema,
			KeyProperties: env.KeyProperties,
		}, nil

	case KindRecord:
		if env.Stream == "" {
			return nil, missingKey(lineNo, "stream")
		}
		if env.Record == nil {
			return nil, missingKey(lineNo, "record")
		}
		return Record{Stream: env.Stream, Record: env.Record}, nil

	case KindState:
		if len(env.Value) == 0 {
			return nil, missingKey(lineNo, "value")
		}
		return State{Value: env.Value}, nil

	case KindActivateVersion:
		return ActivateVersion{Stream: env.Stream, Version: env.Version}, nil

	default:
		return nil, &targeterr.ProtocolError{
			Line: lineNo,
			Msg:  fmt.Sprintf("unknown message type %q", env.Type),
		}
	}
}

func missingKey(lineNo int, key string) error {
	return &targeterr.ProtocolError{
		Line: lineNo,
		Msg:  fmt.Sprintf("line is missing required key %q", key),
	}
}
