// Package cassandra implements the storage sink on top of gocql. Table sync
// is additive: CREATE TABLE IF NOT EXISTS followed by ALTER TABLE ADD for
// any column missing from the live schema. Columns are never dropped or
// retyped.
package cassandra

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/coeff/target-cassandra/record"
	"github.com/coeff/target-cassandra/schema"
	"github.com/coeff/target-cassandra/targeterr"
)

const (
	defaultPort    = 9042
	defaultTimeout = 10 * time.Second
)

// Config holds everything needed to establish the Cassandra session.
type Config struct {
	ContactPoints   []string
	Port            int
	Keyspace        string
	Username        string
	Password        string
	ProtocolVersion int
	Consistency     gocql.Consistency
	Timeout         time.Duration
}

// Sink writes translated tables and coerced rows to Cassandra.
type Sink struct {
	session  *gocql.Session
	keyspace string
	logger   *slog.Logger
}

// Connect establishes the session. Reaching the cluster is a precondition
// for the whole run, so a failure here is a StorageError.
func Connect(cfg Config, logger *slog.Logger) (*Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cluster := gocql.NewCluster(cfg.ContactPoints...)
	if cfg.Port > 0 {
		cluster.Port = cfg.Port
	} else {
		cluster.Port = defaultPort
	}
	cluster.Keyspace = cfg.Keyspace
	if cfg.ProtocolVersion > 0 {
		cluster.ProtoVersion = cfg.ProtocolVersion
	}
	if cfg.Consistency != 0 {
		cluster.Consistency = cfg.Consistency
	}
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	} else {
		cluster.Timeout = defaultTimeout
	}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, &targeterr.StorageError{Op: "connect", Err: err}
	}

	logger.Info("connected to cassandra",
		"contact_points", cfg.ContactPoints,
		"keyspace", cfg.Keyspace,
	)

	return &Sink{
		session:  session,
		keyspace: cfg.Keyspace,
		logger:   logger.With("component", "cassandra"),
	}, nil
}

// SyncTable creates the table if needed, then adds any columns the live
// table is missing. Calling it twice with the same definition converges to
// the same physical schema.
func (s *Sink) SyncTable(ctx context.Context, def schema.TableDef) error {
	create := buildCreateTable(s.keyspace, def)
	if err := s.session.Query(create).WithContext(ctx).Exec(); err != nil {
		return &targeterr.StorageError{Op: "sync", Table: def.Name, Err: err}
	}

	existing, err := s.existingColumns(ctx, def.Name)
	if err != nil {
		return err
	}

	for _, col := range def.Columns {
		if existing[col.Name] {
			continue
		}
		alter := buildAlterAdd(s.keyspace, def.Name, col)
		if err := s.session.Query(alter).WithContext(ctx).Exec(); err != nil {
			return &targeterr.StorageError{Op: "sync", Table: def.Name, Err: err}
		}
		s.logger.Info("added column", "table", def.Name, "column", col.Name, "type", col.Type.String())
	}

	s.logger.Debug("table synced", "table", def.Name, "columns", len(def.Columns))
	return nil
}

// InsertRow writes one row. Every insert is synchronous; there is no
// batching.
func (s *Sink) InsertRow(ctx context.Context, def schema.TableDef, row record.Row) error {
	stmt, values := buildInsert(s.keyspace, def, row)
	if err := s.session.Query(stmt, values...).WithContext(ctx).Exec(); err != nil {
		return &targeterr.StorageError{Op: "insert", Table: def.Name, Err: err}
	}
	return nil
}

// Close shuts down the session.
func (s *Sink) Close() error {
	s.session.Close()
	return nil
}

func (s *Sink) existingColumns(ctx context.Context, table string) (map[string]bool, error) {
	iter := s.session.Query(
		"SELECT column_name FROM system_schema.columns WHERE keyspace_name = ? AND table_name = ?",
		s.keyspace, table,
	).WithContext(ctx).Iter()

	columns := make(map[string]bool)
	var name string
	for iter.Scan(&name) {
		columns[name] = true
	}
	if err := iter.Close(); err != nil {
		return nil, &targeterr.StorageError{Op: "sync", Table: table, Err: err}
	}
	return columns, nil
}

// quoteIdent double-quotes an identifier so arbitrary property names are
// safe in generated CQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func buildCreateTable(keyspace string, def schema.TableDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s.%s (", quoteIdent(keyspace), quoteIdent(def.Name))
	for i, col := range def.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", quoteIdent(col.Name), col.Type.String())
	}
	b.WriteString(", PRIMARY KEY (")
	for i, key := range def.PrimaryKeys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(key))
	}
	b.WriteString("))")
	return b.String()
}

func buildAlterAdd(keyspace, table string, col schema.ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE %s.%s ADD %s %s",
		quoteIdent(keyspace), quoteIdent(table), quoteIdent(col.Name), col.Type.String())
}

func buildInsert(keyspace string, def schema.TableDef, row record.Row) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.%s (", quoteIdent(keyspace), quoteIdent(def.Name))

	values := make([]any, 0, len(def.Columns))
	for i, col := range def.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(col.Name))
		values = append(values, row[col.Name])
	}

	b.WriteString(") VALUES (")
	for i := range def.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	b.WriteString(")")
	return b.String(), values
}
