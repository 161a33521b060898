// Package checkpoint tracks the pending STATE value of a run. The upstream
// producer replays from the last emitted checkpoint, so a checkpoint must
// only surface once every record seen before it has been written durably.
package checkpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Tracker holds at most one pending checkpoint value. STATE messages
// overwrite it; a successfully persisted record clears it, signaling that
// storage has caught up with everything the last STATE covered.
type Tracker struct {
	pending json.RawMessage
}

// NewTracker returns a tracker with no pending checkpoint.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Set replaces the pending checkpoint with value.
func (t *Tracker) Set(value json.RawMessage) {
	t.pending = value
}

// Clear resets the tracker to "no pending checkpoint". Called after every
// successfully persisted record.
func (t *Tracker) Clear() {
	t.pending = nil
}

// Pending returns the current checkpoint value, or nil if none is pending.
func (t *Tracker) Pending() json.RawMessage {
	return t.pending
}

// Emit writes value as a single JSON line to w. A nil or JSON-null value
// emits nothing: "no pending checkpoint" is represented by silence, not by
// a null line.
func Emit(w io.Writer, value json.RawMessage) error {
	if value == nil || bytes.Equal(value, []byte("null")) {
		return nil
	}
	line := append(json.RawMessage{}, value...)
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("emit checkpoint: %w", err)
	}
	return nil
}
