// Package gpkg writes point grids as GeoPackage feature tables. A
// GeoPackage is an sqlite database with a fixed metadata schema
// (gpkg_spatial_ref_sys, gpkg_contents, gpkg_geometry_columns) next to the
// feature tables; the pure Go sqlite driver covers the whole format, no
// native library involved.
package gpkg

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"fieldsampler/pkg/geom"
	"fieldsampler/pkg/grid"
)

const (
	applicationID = 0x47504B47 // "GPKG"
	userVersion   = 10300      // GeoPackage 1.3
)

// Write persists the grid to path as a single point feature layer,
// replacing any existing file. Attribute columns become REAL columns in
// grid order; NaN samples become NULL.
func Write(ctx context.Context, path, layer string, g *grid.Grid) (retErr error) {
	if layer == "" {
		layer = "raster_values"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create dirs: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open gpkg: %w", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil && retErr == nil {
			retErr = fmt.Errorf("close gpkg: %w", cErr)
		}
	}()

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA application_id = %d", applicationID)); err != nil {
		return fmt.Errorf("set application_id: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", userVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	if err := createMetadataTables(ctx, db); err != nil {
		return err
	}

	srid := g.CRS().SRID()
	if err := ensureSRS(ctx, db, g.CRS(), srid); err != nil {
		return err
	}

	cols := g.Columns()
	if err := createFeatureTable(ctx, db, layer, cols); err != nil {
		return err
	}
	if err := registerLayer(ctx, db, layer, g, srid); err != nil {
		return err
	}
	return insertFeatures(ctx, db, layer, g, cols, srid)
}

func createMetadataTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL,
			srs_id INTEGER PRIMARY KEY,
			organization TEXT NOT NULL,
			organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_contents (
			table_name TEXT PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER,
			CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_geometry_columns (
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL,
			m TINYINT NOT NULL,
			CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name),
			CONSTRAINT fk_gc_tn FOREIGN KEY (table_name) REFERENCES gpkg_contents(table_name),
			CONSTRAINT fk_gc_srs FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create gpkg metadata: %w", err)
		}
	}
	// GeoPackage requires the two undefined reference system rows.
	baseline := [][]any{
		{"Undefined Cartesian SRS", -1, "NONE", -1, "undefined", "undefined cartesian coordinate reference system"},
		{"Undefined Geographic SRS", 0, "NONE", 0, "undefined", "undefined geographic coordinate reference system"},
	}
	for _, row := range baseline {
		if _, err := db.ExecContext(ctx,
			`INSERT OR IGNORE INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition, description) VALUES (?,?,?,?,?,?)`,
			row...); err != nil {
			return fmt.Errorf("seed srs: %w", err)
		}
	}
	return nil
}

func ensureSRS(ctx context.Context, db *sql.DB, crs geom.CRS, srid int) error {
	if srid == 0 {
		return nil // falls back to the undefined geographic SRS
	}
	name := string(crs)
	if name == "" {
		name = fmt.Sprintf("EPSG:%d", srid)
	}
	// Without a WKT catalogue the definition stays a reference to the
	// authority code, which readers resolve themselves.
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO gpkg_spatial_ref_sys (srs_name, srs_id, organization, organization_coordsys_id, definition, description) VALUES (?,?,?,?,?,?)`,
		name, srid, "EPSG", srid, name, nil); err != nil {
		return fmt.Errorf("register srs %d: %w", srid, err)
	}
	return nil
}

func createFeatureTable(ctx context.Context, db *sql.DB, layer string, cols []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (fid INTEGER PRIMARY KEY AUTOINCREMENT, geom BLOB", quoteIdent(layer))
	for _, c := range cols {
		fmt.Fprintf(&b, ", %s REAL", quoteIdent(c))
	}
	b.WriteString(")")
	if _, err := db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("create feature table %s: %w", layer, err)
	}
	return nil
}

func registerLayer(ctx context.Context, db *sql.DB, layer string, g *grid.Grid, srid int) error {
	bounds := g.Bounds()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, last_change, min_x, min_y, max_x, max_y, srs_id) VALUES (?,?,?,?,?,?,?,?,?)`,
		layer, "features", layer, time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		bounds.MinX, bounds.MinY, bounds.MaxX, bounds.MaxY, srid); err != nil {
		return fmt.Errorf("register contents %s: %w", layer, err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m) VALUES (?,?,?,?,?,?)`,
		layer, "geom", "POINT", srid, 0, 0); err != nil {
		return fmt.Errorf("register geometry column %s: %w", layer, err)
	}
	return nil
}

func insertFeatures(ctx context.Context, db *sql.DB, layer string, g *grid.Grid, cols []string, srid int) (retErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (fid, geom", quoteIdent(layer))
	for _, c := range cols {
		fmt.Fprintf(&b, ", %s", quoteIdent(c))
	}
	b.WriteString(") VALUES (?,?")
	b.WriteString(strings.Repeat(",?", len(cols)))
	b.WriteString(")")
	stmt, err := tx.PrepareContext(ctx, b.String())
	if err != nil {
		retErr = fmt.Errorf("prepare insert: %w", err)
		return retErr
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < g.Len(); i++ {
		args := make([]any, 0, 2+len(cols))
		args = append(args, g.FID(i), pointBlob(g.Point(i), srid))
		for _, c := range cols {
			if v := g.Value(c, i); math.IsNaN(v) {
				args = append(args, nil)
			} else {
				args = append(args, v)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			retErr = fmt.Errorf("insert feature %d: %w", g.FID(i), err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// pointBlob wraps a WKB point with the GeoPackage binary header:
// magic "GP", version 0, little-endian flags without envelope, srs id.
func pointBlob(p geom.Point, srid int) []byte {
	header := make([]byte, 8)
	header[0] = 'G'
	header[1] = 'P'
	header[2] = 0
	header[3] = 0x01
	binary.LittleEndian.PutUint32(header[4:8], uint32(int32(srid)))
	return append(header, geom.PointWKB(p)...)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
