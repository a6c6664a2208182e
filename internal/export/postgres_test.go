package export

import (
	"context"
	"testing"

	"fieldsampler/pkg/grid"
)

func TestCreateTableSQL(t *testing.T) {
	got := createTableSQL("raster_values", []string{"dem", "ndvi_B1"})
	want := `CREATE TABLE "raster_values" (fid BIGINT PRIMARY KEY, x DOUBLE PRECISION NOT NULL, y DOUBLE PRECISION NOT NULL, "dem" DOUBLE PRECISION, "ndvi_B1" DOUBLE PRECISION)`
	if got != want {
		t.Fatalf("sql = %s", got)
	}
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL("t", []string{"a", "b"})
	want := `INSERT INTO "t" (fid, x, y, "a", "b") VALUES ($1, $2, $3, $4, $5)`
	if got != want {
		t.Fatalf("sql = %s", got)
	}
}

func TestPGIdentEscapesQuotes(t *testing.T) {
	if got := pgIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("ident = %s", got)
	}
}

func TestPostgresSinkRequiresDSN(t *testing.T) {
	s := &PostgresSink{}
	if err := s.Write(context.Background(), grid.New("", nil)); err == nil {
		t.Fatal("empty dsn accepted")
	}
}
