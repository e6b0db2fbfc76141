/*
Copyright © 2024 the climindex authors.
This file is part of climindex.

climindex is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

climindex is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with climindex.  If not, see <http://www.gnu.org/licenses/>.
*/

package climindex

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ctessum/geom"
)

// Region is a closed latitude-longitude rectangle. The bounds' X axis
// is longitude in degrees east [0, 360) and the Y axis is latitude.
type Region struct {
	Name string
	geom.Bounds
}

// NewRegion returns a region spanning the given latitude and longitude
// ranges, bounds included.
func NewRegion(name string, latMin, latMax, lonMin, lonMax float64) Region {
	return Region{
		Name: name,
		Bounds: geom.Bounds{
			Min: geom.Point{X: lonMin, Y: latMin},
			Max: geom.Point{X: lonMax, Y: latMax},
		},
	}
}

// Contains returns whether the point (lat, lon) falls in r, including
// its edges.
func (r Region) Contains(lat, lon float64) bool {
	return r.Bounds.Overlaps(geom.Point{X: lon, Y: lat}.Bounds())
}

func (r Region) String() string {
	return fmt.Sprintf("%s [%g,%g]N [%g,%g]E", r.Name, r.Min.Y, r.Max.Y, r.Min.X, r.Max.X)
}

// Index regions.
var (
	Nino34Region = NewRegion("NINO3.4", -5, 5, 190, 240)
	IOBMRegion   = NewRegion("IOBM", -20, 20, 40, 100)
	// WTIO is the western tropical Indian Ocean pole of the dipole.
	WTIO = NewRegion("WTIO", -10, 10, 50, 70)
	// SETIO is the south-eastern tropical Indian Ocean pole of the dipole.
	SETIO = NewRegion("SETIO", -10, 0, 90, 110)
)

// regionCells returns the offsets within a single time step of the
// cells of f that fall in r.
func regionCells(f *Field, r Region) ([]int, error) {
	if len(f.Dims) != 3 {
		return nil, fmt.Errorf("%w: regional mean needs dimensions (time, lat, lon), have %v", ErrShape, f.Dims)
	}
	la, err := f.Axis(LatDim)
	if err != nil {
		return nil, err
	}
	lo, err := f.Axis(LonDim)
	if err != nil {
		return nil, err
	}
	stride := func(axis int) int {
		s := 1
		for _, d := range f.Data.Shape[axis+1:] {
			s *= d
		}
		return s
	}
	laStride, loStride := stride(la), stride(lo)
	var cells []int
	for j, lat := range f.Coords[LatDim] {
		for i, lon := range f.Coords[LonDim] {
			if r.Contains(lat, lon) {
				cells = append(cells, j*laStride+i*loStride)
			}
		}
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no grid cells in region %v", ErrShape, r)
	}
	sort.Ints(cells)
	return cells, nil
}

// RegionMean returns the unweighted mean of f over the cells in r at
// every time step. NaN cells are skipped. f must have dimensions
// time, lat and lon, with longitude already normalized to [0, 360).
func RegionMean(f *Field, r Region) (*Series, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	cells, err := regionCells(f, r)
	if err != nil {
		return nil, err
	}
	s := &Series{
		Name:     r.Name,
		Time:     append([]time.Time{}, f.Time...),
		Values:   make([]float64, f.Len()),
		Calendar: f.Calendar,
	}
	for i := range f.Time {
		step := f.step(i)
		var sum float64
		var n int
		for _, c := range cells {
			if v := step[c]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			s.Values[i] = math.NaN()
			continue
		}
		s.Values[i] = sum / float64(n)
	}
	return s, nil
}

// anomalyIndex is the regional mean of the anomaly of sst, labeled with
// the calendar month of each sample.
func anomalyIndex(name string, sst *Field, r Region) (*Series, error) {
	a, err := Anomaly(sst)
	if err != nil {
		return nil, err
	}
	s, err := RegionMean(a, r)
	if err != nil {
		return nil, err
	}
	s.Name = name
	s.Month = months(s.Time)
	return s, nil
}

// NINO34 returns the Niño 3.4 index: the mean SST anomaly over
// 5°S-5°N, 190-240°E.
func NINO34(sst *Field) (*Series, error) { return anomalyIndex("NINO3.4", sst, Nino34Region) }

// IOBM returns the Indian Ocean basin mode index: the mean SST anomaly
// over 20°S-20°N, 40-100°E.
func IOBM(sst *Field) (*Series, error) { return anomalyIndex("IOBM", sst, IOBMRegion) }

// DMI returns the dipole mode index, WIO minus EIO.
func DMI(sst *Field) (*Series, error) {
	a, err := Anomaly(sst)
	if err != nil {
		return nil, err
	}
	w, err := RegionMean(a, WTIO)
	if err != nil {
		return nil, err
	}
	e, err := RegionMean(a, SETIO)
	if err != nil {
		return nil, err
	}
	return Sub("DMI", w, e)
}

// EIO returns the eastern Indian Ocean index: the mean SST anomaly
// over the SETIO box.
func EIO(sst *Field) (*Series, error) {
	s, err := anomalyIndex("EIO", sst, SETIO)
	if err != nil {
		return nil, err
	}
	return s.DropMonth(), nil
}

// WIO returns the western Indian Ocean index: the mean SST anomaly
// over the WTIO box.
func WIO(sst *Field) (*Series, error) {
	s, err := anomalyIndex("WIO", sst, WTIO)
	if err != nil {
		return nil, err
	}
	return s.DropMonth(), nil
}

// EIO1 is the mean of the raw field over the SETIO box, without
// removing the climatology.
func EIO1(sst *Field) (*Series, error) {
	s, err := RegionMean(sst, SETIO)
	if err != nil {
		return nil, err
	}
	s.Name = "EIO_1"
	return s, nil
}

// WIO1 is the mean of the raw field over the WTIO box, without
// removing the climatology.
func WIO1(sst *Field) (*Series, error) {
	s, err := RegionMean(sst, WTIO)
	if err != nil {
		return nil, err
	}
	s.Name = "WIO_1"
	return s, nil
}

// IndexFunc computes an index time series from a field.
type IndexFunc func(*Field) (*Series, error)

// Indices holds the built-in indices by name.
var Indices = map[string]IndexFunc{
	"NINO3.4": NINO34,
	"IOBM":    IOBM,
	"DMI":     DMI,
	"EIO":     EIO,
	"WIO":     WIO,
	"EIO_1":   EIO1,
	"WIO_1":   WIO1,
}

// LookupIndex returns the built-in index with the given name. Matching
// ignores case, and "NINO34" is accepted for "NINO3.4".
func LookupIndex(name string) (IndexFunc, error) {
	n := strings.ToUpper(name)
	if n == "NINO34" {
		n = "NINO3.4"
	}
	if f, ok := Indices[n]; ok {
		return f, nil
	}
	names := make([]string, 0, len(Indices))
	for k := range Indices {
		names = append(names, k)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("climindex: unknown index %q; valid indices are %v", name, names)
}
