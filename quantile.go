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

// Quantile returns the p-quantile of x, ignoring NaN values, by linear
// interpolation between the closest order statistics: with the sorted
// values v[0..n-1] and h = (n-1)p, it returns
// v[⌊h⌋] + (h-⌊h⌋)(v[⌊h⌋+1]-v[⌊h⌋]). It returns NaN if x holds no
// valid values. x is not modified.
func Quantile(x []float64, p float64) float64 {
	v := make([]float64, 0, len(x))
	for _, xx := range x {
		if !math.IsNaN(xx) {
			v = append(v, xx)
		}
	}
	if len(v) == 0 || p < 0 || p > 1 {
		return math.NaN()
	}
	sort.Float64s(v)
	h := float64(len(v)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(v)-1 {
		return v[len(v)-1]
	}
	return v[lo] + (h-float64(lo))*(v[lo+1]-v[lo])
}
