package geom

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Well-known binary encoding for point geometries, as consumed by the
// GeoPackage feature table. Only the little-endian XY point subset is
// implemented; nothing in the pipeline persists other geometry types.

const wkbPoint = 1

// PointWKB encodes p as a little-endian WKB point (21 bytes).
func PointWKB(p Point) []byte {
	buf := make([]byte, 21)
	buf[0] = 1 // little endian
	binary.LittleEndian.PutUint32(buf[1:5], wkbPoint)
	binary.LittleEndian.PutUint64(buf[5:13], math.Float64bits(p.X))
	binary.LittleEndian.PutUint64(buf[13:21], math.Float64bits(p.Y))
	return buf
}

// ParsePointWKB decodes a WKB point produced by PointWKB.
func ParsePointWKB(b []byte) (Point, error) {
	if len(b) != 21 {
		return Point{}, fmt.Errorf("wkb point: want 21 bytes, got %d", len(b))
	}
	if b[0] != 1 {
		return Point{}, fmt.Errorf("wkb point: unsupported byte order %d", b[0])
	}
	if typ := binary.LittleEndian.Uint32(b[1:5]); typ != wkbPoint {
		return Point{}, fmt.Errorf("wkb point: unexpected geometry type %d", typ)
	}
	return Point{
		X: math.Float64frombits(binary.LittleEndian.Uint64(b[5:13])),
		Y: math.Float64frombits(binary.LittleEndian.Uint64(b[13:21])),
	}, nil
}
