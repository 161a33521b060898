package cassandra

import (
	"testing"

	"github.com/coeff/target-cassandra/record"
	"github.com/coeff/target-cassandra/schema"
)

var ordersDef = schema.TableDef{
	Name: "orders",
	Columns: []schema.ColumnDef{
		{Name: "created_at", Type: schema.TypeTimestamp},
		{Name: "id", Type: schema.TypeInt, PrimaryKey: true},
		{Name: "total", Type: schema.TypeFloat},
	},
}

func TestBuildCreateTable(t *testing.T) {
	got := buildCreateTable("shop", ordersDef)
	want := `CREATE TABLE IF NOT EXISTS "shop"."orders" ("created_at" timestamp, "id" int, "total" float, PRIMARY KEY ("id"))`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestBuildCreateTable_CompositeKey(t *testing.T) {
	def := schema.TableDef{
		Name: "events",
		Columns: []schema.ColumnDef{
			{Name: "day", Type: schema.TypeText, PrimaryKey: true},
			{Name: "seq", Type: schema.TypeInt, PrimaryKey: true},
			{Name: "value", Type: schema.TypeText},
		},
	}
	got := buildCreateTable("ks", def)
	want := `CREATE TABLE IF NOT EXISTS "ks"."events" ("day" text, "seq" int, "value" text, PRIMARY KEY ("day", "seq"))`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestBuildAlterAdd(t *testing.T) {
	got := buildAlterAdd("shop", "orders", schema.ColumnDef{Name: "note", Type: schema.TypeText})
	want := `ALTER TABLE "shop"."orders" ADD "note" text`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBuildInsert_ValuesFollowColumnOrder(t *testing.T) {
	row := record.Row{"id": int64(1), "total": float32(9.5), "created_at": nil}

	stmt, values := buildInsert("shop", ordersDef, row)
	wantStmt := `INSERT INTO "shop"."orders" ("created_at", "id", "total") VALUES (?, ?, ?)`
	if stmt != wantStmt {
		t.Errorf("got  %s\nwant %s", stmt, wantStmt)
	}

	if len(values) != 3 {
		t.Fatalf("got %d values, want 3", len(values))
	}
	if values[0] != nil || values[1] != int64(1) || values[2] != float32(9.5) {
		t.Errorf("values = %v", values)
	}
}

func TestQuoteIdent_EscapesQuotes(t *testing.T) {
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("got %s", got)
	}
}
