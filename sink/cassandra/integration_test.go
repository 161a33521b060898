package cassandra

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/coeff/target-cassandra/record"
	"github.com/coeff/target-cassandra/schema"
)

// startCassandra starts a single-node Cassandra container and returns a
// sink connected to a fresh keyspace. The container is terminated when the
// test ends.
func startCassandra(t *testing.T) *Sink {
	t.Helper()

	if os.Getenv("TARGET_CASSANDRA_INTEGRATION") == "" {
		t.Skip("set TARGET_CASSANDRA_INTEGRATION=1 to run integration tests")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "cassandra:4.1",
		ExposedPorts: []string{"9042/tcp"},
		Env: map[string]string{
			"JVM_OPTS":      "-Xms512m -Xmx512m",
			"HEAP_NEWSIZE":  "128M",
			"MAX_HEAP_SIZE": "512m",
		},
		WaitingFor: wait.ForListeningPort("9042/tcp").WithStartupTimeout(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start cassandra container: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "9042")
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}

	// Create the test keyspace with a keyspace-less session.
	cluster := gocql.NewCluster(host)
	cluster.Port = port.Int()
	cluster.Timeout = 30 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		t.Fatalf("connect to cassandra: %v", err)
	}
	err = session.Query(fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}",
		"target_test",
	)).Exec()
	session.Close()
	if err != nil {
		t.Fatalf("create keyspace: %v", err)
	}

	sink, err := Connect(Config{
		ContactPoints: []string{host},
		Port:          port.Int(),
		Keyspace:      "target_test",
		Timeout:       30 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("connect sink: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	return sink
}

func TestSink_SyncInsertRoundTrip(t *testing.T) {
	s := startCassandra(t)
	ctx := context.Background()

	def := schema.TableDef{
		Name: "users",
		Columns: []schema.ColumnDef{
			{Name: "created_at", Type: schema.TypeTimestamp},
			{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
			{Name: "name", Type: schema.TypeText},
		},
	}

	if err := s.SyncTable(ctx, def); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	// Materializing the same definition twice must not error.
	if err := s.SyncTable(ctx, def); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := s.InsertRow(ctx, def, record.Row{
		"id":         int64(1),
		"name":       "ada",
		"created_at": created,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	var (
		name string
		ts   time.Time
	)
	err = s.session.Query(`SELECT "name", "created_at" FROM "target_test"."users" WHERE "id" = ?`, int64(1)).
		WithContext(ctx).Scan(&name, &ts)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if name != "ada" {
		t.Errorf("name = %q, want ada", name)
	}
	if !ts.Equal(created) {
		t.Errorf("created_at = %v, want %v", ts, created)
	}
}

func TestSink_AdditiveSchemaEvolution(t *testing.T) {
	s := startCassandra(t)
	ctx := context.Background()

	v1 := schema.TableDef{
		Name: "orders",
		Columns: []schema.ColumnDef{
			{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
		},
	}
	if err := s.SyncTable(ctx, v1); err != nil {
		t.Fatalf("sync v1: %v", err)
	}

	v2 := schema.TableDef{
		Name: "orders",
		Columns: []schema.ColumnDef{
			{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
			{Name: "note", Type: schema.TypeText},
		},
	}
	if err := s.SyncTable(ctx, v2); err != nil {
		t.Fatalf("sync v2: %v", err)
	}

	cols, err := s.existingColumns(ctx, "orders")
	if err != nil {
		t.Fatal(err)
	}
	if !cols["id"] || !cols["note"] {
		t.Errorf("expected id and note columns, got %v", cols)
	}

	if err := s.InsertRow(ctx, v2, record.Row{"id": int64(7), "note": "rush"}); err != nil {
		t.Fatalf("insert after evolution: %v", err)
	}
}
