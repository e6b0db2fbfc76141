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
	"time"

	"github.com/ctessum/sparse"
)

const testTolerance = 1.e-9

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b, tolerance float64) bool {
	return math.Abs(a-b) > tolerance || math.IsNaN(a) != math.IsNaN(b)
}

// Test grid covering the tropical Indian and Pacific Oceans.
var (
	testLats = []float64{-20, -15, -10, -5, 0, 5, 10, 15, 20}
	testLons = func() []float64 {
		o := make([]float64, 36)
		for i := range o {
			o[i] = float64(i) * 10
		}
		return o
	}()
)

// monthly returns n monthly times starting in January of year.
func monthly(year, n int) []time.Time {
	t := make([]time.Time, n)
	for i := range t {
		t[i] = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}
	return t
}

// gridField returns a (time, lat, lon) field on the test grid with
// values given by value.
func gridField(t []time.Time, value func(t time.Time, lat, lon float64) float64) *Field {
	data := sparse.ZerosDense(len(t), len(testLats), len(testLons))
	for i, tt := range t {
		for j, lat := range testLats {
			for k, lon := range testLons {
				data.Set(value(tt, lat, lon), i, j, k)
			}
		}
	}
	f, err := NewField(t, "noleap", []string{TimeDim, LatDim, LonDim},
		map[string][]float64{
			LatDim: append([]float64{}, testLats...),
			LonDim: append([]float64{}, testLons...),
		}, data)
	if err != nil {
		panic(err)
	}
	return f
}

// seasonalCycle is a sea surface temperature with an annual cycle
// and a spatial gradient.
func seasonalCycle(t time.Time, lat, lon float64) float64 {
	return 300 + 2*math.Sin(2*math.Pi*float64(t.Month())/12) - 0.05*math.Abs(lat) + 0.001*lon
}

// testSeries returns a series with the given times and values.
func testSeries(name string, t []time.Time, v []float64) *Series {
	return &Series{Name: name, Time: t, Values: v, Calendar: "noleap"}
}
