// Command fieldsampler extracts raster values at regular grid points
// across a field boundary polygon and writes the merged sample table
// as GeoPackage and CSV.
package main

func main() {
	Execute()
}
