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
	"math"
	"sort"
)

// NormalizeLongitude returns a copy of f with the longitude coordinate
// wrapped into [0, 360) and the longitude axis re-sorted so that it is
// increasing. Applying it to an already normalized field returns an
// identical field.
func NormalizeLongitude(f *Field) (*Field, error) {
	axis, err := f.Axis(LonDim)
	if err != nil {
		return nil, err
	}
	lon := f.Coords[LonDim]
	wrapped := make([]float64, len(lon))
	for i, v := range lon {
		wrapped[i] = wrapLongitude(v)
	}
	order := make([]int, len(lon))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return wrapped[order[i]] < wrapped[order[j]] })

	o := f.Copy()
	for i, j := range order {
		o.Coords[LonDim][i] = wrapped[j]
	}
	outer, n, inner := strides(f.Data.Shape, axis)
	for a := 0; a < outer; a++ {
		for i, j := range order {
			dst := (a*n + i) * inner
			src := (a*n + j) * inner
			copy(o.Data.Elements[dst:dst+inner], f.Data.Elements[src:src+inner])
		}
	}
	return o, nil
}

func wrapLongitude(v float64) float64 {
	m := math.Mod(v, 360)
	if m < 0 {
		m += 360
	}
	if m >= 360 { // -tiny + 360 rounds to 360.
		m = 0
	}
	return m
}

// strides returns the number of blocks before the given axis, the
// length of the axis, and the number of contiguous elements after it.
func strides(shape []int, axis int) (outer, n, inner int) {
	outer, inner = 1, 1
	for _, d := range shape[:axis] {
		outer *= d
	}
	for _, d := range shape[axis+1:] {
		inner *= d
	}
	return outer, shape[axis], inner
}
