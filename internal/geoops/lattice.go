package geoops

import (
	"fmt"
	"math"

	"fieldsampler/pkg/geom"
	"fieldsampler/pkg/grid"
)

// GridExtent builds the rectangle spanned by nx by ny cells of the given
// resolution anchored at its lower-left corner.
func GridExtent(left, bottom float64, nx, ny int, resX, resY float64) geom.Rect {
	return geom.Rect{
		MinX: left,
		MinY: bottom,
		MaxX: left + float64(nx)*resX,
		MaxY: bottom + float64(ny)*resY,
	}
}

// PointLattice builds the regular point grid engines hand back from
// GenerateGrid: one point per cell center, row-major from the top-left
// corner of the extent.
func PointLattice(extent geom.Rect, hSpacing, vSpacing float64, crs geom.CRS) (*grid.Grid, error) {
	if hSpacing <= 0 || vSpacing <= 0 {
		return nil, fmt.Errorf("point lattice: non-positive spacing %g x %g", hSpacing, vSpacing)
	}
	nx := int(math.Round(extent.Width() / hSpacing))
	ny := int(math.Round(extent.Height() / vSpacing))
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("point lattice: extent smaller than one cell")
	}
	points := make([]geom.Point, 0, nx*ny)
	for row := 0; row < ny; row++ {
		y := extent.MaxY - (float64(row)+0.5)*vSpacing
		for col := 0; col < nx; col++ {
			points = append(points, geom.Point{X: extent.MinX + (float64(col)+0.5)*hSpacing, Y: y})
		}
	}
	return grid.New(crs, points), nil
}
