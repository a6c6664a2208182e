package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"fieldsampler/pkg/grid"
)

const pgDriver = "pgx"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// PostgresSink replaces a Postgres table with the run's result rows. Each
// run is a fresh snapshot: the table is dropped and recreated so its column
// set always matches the sampled rasters.
type PostgresSink struct {
	DSN   string
	Table string
}

// Write persists the grid. The whole load runs in one transaction.
func (s *PostgresSink) Write(ctx context.Context, g *grid.Grid) (retErr error) {
	if s.DSN == "" {
		return fmt.Errorf("postgres sink: dsn required")
	}
	table := s.Table
	if table == "" {
		table = "raster_values"
	}
	openMu.Lock()
	db, err := sqlOpen(pgDriver, s.DSN)
	openMu.Unlock()
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil && retErr == nil {
			retErr = fmt.Errorf("close postgres: %w", cErr)
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	cols := g.Columns()
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+pgIdent(table)); err != nil {
		retErr = fmt.Errorf("drop table: %w", err)
		return retErr
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(table, cols)); err != nil {
		retErr = fmt.Errorf("create table: %w", err)
		return retErr
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(table, cols))
	if err != nil {
		retErr = fmt.Errorf("prepare insert: %w", err)
		return retErr
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < g.Len(); i++ {
		p := g.Point(i)
		args := make([]any, 0, 3+len(cols))
		args = append(args, g.FID(i), p.X, p.Y)
		for _, c := range cols {
			if v := g.Value(c, i); math.IsNaN(v) {
				args = append(args, nil)
			} else {
				args = append(args, v)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			retErr = fmt.Errorf("insert row %d: %w", g.FID(i), err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func createTableSQL(table string, cols []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (fid BIGINT PRIMARY KEY, x DOUBLE PRECISION NOT NULL, y DOUBLE PRECISION NOT NULL", pgIdent(table))
	for _, c := range cols {
		fmt.Fprintf(&b, ", %s DOUBLE PRECISION", pgIdent(c))
	}
	b.WriteString(")")
	return b.String()
}

func insertSQL(table string, cols []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (fid, x, y", pgIdent(table))
	for _, c := range cols {
		fmt.Fprintf(&b, ", %s", pgIdent(c))
	}
	b.WriteString(") VALUES ($1, $2, $3")
	for i := range cols {
		fmt.Fprintf(&b, ", $%d", i+4)
	}
	b.WriteString(")")
	return b.String()
}

func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
