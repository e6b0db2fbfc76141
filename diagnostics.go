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
	"slices"
	"time"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// ZeroCelsius is the freezing point of water in Kelvin.
const ZeroCelsius = 273.15

// reduceAxis collapses the named non-time dimension of f, calling
// reduce once per column with the column values and the coordinate of
// the dimension.
func reduceAxis(f *Field, dim string, reduce func(col, coord []float64) float64) (*Field, error) {
	axis, err := f.Axis(dim)
	if err != nil {
		return nil, err
	}
	if axis == 0 {
		return nil, fmt.Errorf("climindex: cannot reduce over the %s dimension", TimeDim)
	}
	coord := f.Coords[dim]
	outer, n, inner := strides(f.Data.Shape, axis)

	shape := make([]int, 0, len(f.Data.Shape)-1)
	dims := make([]string, 0, len(f.Dims)-1)
	for i, d := range f.Dims {
		if i != axis {
			dims = append(dims, d)
			shape = append(shape, f.Data.Shape[i])
		}
	}
	o := &Field{
		Dims:     dims,
		Coords:   make(map[string][]float64, len(f.Coords)),
		Time:     append([]time.Time{}, f.Time...),
		Calendar: f.Calendar,
		Data:     sparse.ZerosDense(shape...),
	}
	for k, v := range f.Coords {
		if k != dim {
			o.Coords[k] = append([]float64{}, v...)
		}
	}
	col := make([]float64, n)
	for a := 0; a < outer; a++ {
		for b := 0; b < inner; b++ {
			for k := 0; k < n; k++ {
				col[k] = f.Data.Elements[(a*n+k)*inner+b]
			}
			o.Data.Elements[a*inner+b] = reduce(col, coord)
		}
	}
	return o, nil
}

// Isosurface returns, for every column along dim, the coordinate at
// which f crosses target, found by linear interpolation between
// consecutive levels. Where a column crosses more than once the
// largest coordinate is returned; where it does not cross at all the
// result is NaN. With dim = DepthDim and a temperature in Kelvin,
// target = ZeroCelsius + 20 gives the depth of the 20°C isotherm.
func Isosurface(f *Field, target float64, dim string) (*Field, error) {
	return reduceAxis(f, dim, func(col, z []float64) float64 {
		o := math.NaN()
		for k := 0; k < len(col)-1; k++ {
			f0, f1 := col[k], col[k+1]
			if math.IsNaN(f0) || math.IsNaN(f1) {
				continue
			}
			if (f0 > target && target >= f1) || (f0 < target && target <= f1) {
				v := z[k] + (target-f0)*(z[k+1]-z[k])/(f1-f0)
				if math.IsNaN(o) || v > o {
					o = v
				}
			}
		}
		return o
	})
}

// SumOver sums f over the named dimension, skipping missing values.
// A column with no valid values sums to zero.
func SumOver(f *Field, dim string) (*Field, error) {
	return reduceAxis(f, dim, func(col, _ []float64) float64 {
		var s float64
		for _, v := range col {
			if !math.IsNaN(v) {
				s += v
			}
		}
		return s
	})
}

// NetHeatFlux adds the depth-integrated sum of each of the given
// three-dimensional heat terms to the surface flux.
func NetHeatFlux(surface *Field, terms ...*Field) (*Field, error) {
	o := surface.Copy()
	for _, t := range terms {
		s, err := SumOver(t, DepthDim)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(s.Dims, o.Dims) || !slices.Equal(s.Data.Shape, o.Data.Shape) {
			return nil, fmt.Errorf("%w: depth-integrated heat term %v%v does not match surface %v%v",
				ErrShape, s.Dims, s.Data.Shape, o.Dims, o.Data.Shape)
		}
		floats.Add(o.Data.Elements, s.Data.Elements)
	}
	return o, nil
}

// SelectLevel returns the level of f along dim whose coordinate is
// nearest to value. The dimension is dropped from the result.
func SelectLevel(f *Field, dim string, value float64) (*Field, error) {
	coord, ok := f.Coords[dim]
	if !ok || len(coord) == 0 {
		return nil, fmt.Errorf("%w: no coordinate for %q", ErrNoDimension, dim)
	}
	best := 0
	for i, c := range coord {
		if math.Abs(c-value) < math.Abs(coord[best]-value) {
			best = i
		}
	}
	return reduceAxis(f, dim, func(col, _ []float64) float64 { return col[best] })
}

// KelvinToCelsius returns a copy of f converted from Kelvin to degrees
// Celsius.
func KelvinToCelsius(f *Field) *Field {
	o := f.Copy()
	floats.AddConst(-ZeroCelsius, o.Data.Elements)
	return o
}
