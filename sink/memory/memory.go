// Package memory provides an in-memory Sink for tests and dry runs.
package memory

import (
	"context"
	"fmt"

	"github.com/coeff/target-cassandra/record"
	"github.com/coeff/target-cassandra/schema"
)

// Sink records synced table definitions and inserted rows without touching
// any storage backend. Error fields allow tests to inject failures.
type Sink struct {
	tables    map[string]schema.TableDef
	syncCount map[string]int
	rows      map[string][]record.Row

	// FailSync and FailInsert, when non-nil, are returned by the
	// corresponding calls. Used to exercise the fail-fast path.
	FailSync   error
	FailInsert error
}

// New creates an empty in-memory sink.
func New() *Sink {
	return &Sink{
		tables:    make(map[string]schema.TableDef),
		syncCount: make(map[string]int),
		rows:      make(map[string][]record.Row),
	}
}

func (s *Sink) SyncTable(_ context.Context, def schema.TableDef) error {
	if s.FailSync != nil {
		return s.FailSync
	}

	// Additive convergence: a re-sync keeps every previously known column.
	if prev, ok := s.tables[def.Name]; ok {
		merged := def
		for _, col := range prev.Columns {
			if _, exists := def.Column(col.Name); !exists {
				merged.Columns = append(merged.Columns, col)
			}
		}
		s.tables[def.Name] = merged
	} else {
		s.tables[def.Name] = def
	}
	s.syncCount[def.Name]++
	return nil
}

func (s *Sink) InsertRow(_ context.Context, def schema.TableDef, row record.Row) error {
	if s.FailInsert != nil {
		return s.FailInsert
	}
	if _, ok := s.tables[def.Name]; !ok {
		return fmt.Errorf("insert into unsynced table %s", def.Name)
	}
	s.rows[def.Name] = append(s.rows[def.Name], row)
	return nil
}

func (s *Sink) Close() error {
	return nil
}

// Table returns the current (merged) definition of a synced table.
func (s *Sink) Table(name string) (schema.TableDef, bool) {
	def, ok := s.tables[name]
	return def, ok
}

// SyncCount returns how many times the named table was synced.
func (s *Sink) SyncCount(name string) int {
	return s.syncCount[name]
}

// Rows returns the rows inserted into the named table, in insert order.
func (s *Sink) Rows(name string) []record.Row {
	return s.rows[name]
}
