// Package sink defines the storage backend contract the stream processor
// writes through.
package sink

import (
	"context"

	"github.com/coeff/target-cassandra/record"
	"github.com/coeff/target-cassandra/schema"
)

// Sink is a table-oriented storage backend.
type Sink interface {
	// SyncTable ensures a table matching def exists. It is idempotent and
	// additive only: new columns may be created, existing columns are never
	// dropped or retyped.
	SyncTable(ctx context.Context, def schema.TableDef) error

	// InsertRow writes one row into the table described by def. The row
	// contains exactly the columns of def.
	InsertRow(ctx context.Context, def schema.TableDef, row record.Row) error

	// Close releases the underlying connection.
	Close() error
}
