// Package target implements a Singer target for Cassandra: it consumes a
// newline-delimited message stream (SCHEMA, RECORD, STATE,
// ACTIVATE_VERSION), materializes Cassandra tables from declared JSON
// Schemas, and persists every record synchronously. Processing is strictly
// sequential and fail-fast: the first error of any kind aborts the run.
package target

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coeff/target-cassandra/checkpoint"
	"github.com/coeff/target-cassandra/message"
	"github.com/coeff/target-cassandra/metrics"
	"github.com/coeff/target-cassandra/record"
	"github.com/coeff/target-cassandra/schema"
	"github.com/coeff/target-cassandra/sink"
	"github.com/coeff/target-cassandra/targeterr"
)

// streamState is everything known about one declared stream. A new SCHEMA
// message for the same stream name fully replaces it.
type streamState struct {
	name          string
	validator     *record.Validator
	table         schema.TableDef
	tableHash     string
	keyProperties []string
}

// Processor is the stream state machine. It owns the per-stream state map
// and the pending checkpoint; both are touched only by Run's goroutine.
type Processor struct {
	sink      sink.Sink
	keyPolicy schema.KeyPolicy
	logger    *slog.Logger
	streams   map[string]*streamState
	tracker   *checkpoint.Tracker
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithKeyPolicy sets the policy for key properties that cannot become
// primary key columns. The default is schema.KeyPolicyFail.
func WithKeyPolicy(policy schema.KeyPolicy) Option {
	return func(p *Processor) {
		p.keyPolicy = policy
	}
}

// New creates a Processor writing through s. Call Run to process a stream.
func New(s sink.Sink, opts ...Option) *Processor {
	p := &Processor{
		sink:    s,
		streams: make(map[string]*streamState),
		tracker: checkpoint.NewTracker(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "processor")
	return p
}

// Run consumes messages from r until end of input or the first error. On
// success it returns the final pending checkpoint value, which is nil when
// every STATE message was followed by a successfully persisted record.
func (p *Processor) Run(ctx context.Context, r io.Reader) (json.RawMessage, error) {
	dec := message.NewDecoder(r)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		msg, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		metrics.MessagesRead.WithLabelValues(string(msg.Kind())).Inc()

		switch m := msg.(type) {
		case message.Schema:
			if err := p.handleSchema(ctx, m); err != nil {
				return nil, err
			}
		case message.Record:
			if err := p.handleRecord(ctx, m, dec.Line()); err != nil {
				return nil, err
			}
		case message.State:
			p.logger.Debug("checkpoint updated", "value", string(m.Value))
			p.tracker.Set(m.Value)
		case message.ActivateVersion:
			p.logger.Debug("ignoring ACTIVATE_VERSION message", "stream", m.Stream, "version", m.Version)
		default:
			// Parse returns only the kinds above; a new kind must be wired
			// here explicitly.
			return nil, &targeterr.ProtocolError{
				Line: dec.Line(),
				Msg:  fmt.Sprintf("unhandled message kind %q", msg.Kind()),
			}
		}
	}

	p.logger.Info("input exhausted",
		"lines", dec.Line(),
		"streams", len(p.streams),
	)
	return p.tracker.Pending(), nil
}

// handleSchema translates and materializes the stream's table, then replaces
// any prior state for the stream. A definition hashing identically to the
// stream's current one skips the storage round-trip; materialization is
// idempotent either way.
func (p *Processor) handleSchema(ctx context.Context, m message.Schema) error {
	def, err := schema.ParseDefinition(m.Schema)
	if err != nil {
		return &targeterr.SchemaError{Stream: m.Stream, Msg: err.Error()}
	}

	table, err := schema.Translate(m.Stream, def, m.KeyProperties, p.keyPolicy, p.logger)
	if err != nil {
		return err
	}

	validator, err := record.CompileValidator(m.Schema)
	if err != nil {
		return &targeterr.SchemaError{Stream: m.Stream, Msg: err.Error()}
	}

	hash := table.Hash()
	if prev, ok := p.streams[m.Stream]; ok && prev.tableHash == hash {
		p.logger.Debug("schema unchanged, skipping table sync", "stream", m.Stream)
	} else {
		if err := p.sink.SyncTable(ctx, table); err != nil {
			return err
		}
		metrics.SchemasSynced.WithLabelValues(m.Stream).Inc()
		p.logger.Info("table synced",
			"stream", m.Stream,
			"table", table.Name,
			"columns", len(table.Columns),
			"primary_keys", table.PrimaryKeys(),
		)
	}

	p.streams[m.Stream] = &streamState{
		name:          m.Stream,
		validator:     validator,
		table:         table,
		tableHash:     hash,
		keyProperties: m.KeyProperties,
	}
	return nil
}

// handleRecord validates, coerces, and persists one record, then clears the
// pending checkpoint: state is only worth emitting once storage reflects it.
func (p *Processor) handleRecord(ctx context.Context, m message.Record, line int) error {
	state, ok := p.streams[m.Stream]
	if !ok {
		return &targeterr.ProtocolError{
			Line: line,
			Msg:  fmt.Sprintf("record for stream %q arrived before its schema", m.Stream),
		}
	}

	row, err := record.Prepare(m.Stream, state.validator, state.table, m.Record)
	if err != nil {
		return err
	}

	timer := prometheus.NewTimer(metrics.InsertDuration)
	err = p.sink.InsertRow(ctx, state.table, row)
	timer.ObserveDuration()
	if err != nil {
		return err
	}

	metrics.RecordsPersisted.WithLabelValues(m.Stream).Inc()
	p.tracker.Clear()
	return nil
}
