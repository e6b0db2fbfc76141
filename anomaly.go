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
	"gonum.org/v1/gonum/floats"
)

// Climatology is the mean annual cycle of a field: the mean of every
// spatial cell over all samples falling in each calendar month.
type Climatology struct {
	// Mean has shape (12, spatial dims...); index 0 is January.
	// Cells with no valid samples in a month are NaN.
	Mean *sparse.DenseArray

	// Count is the number of time samples in each month.
	Count [12]int
}

// NewClimatology computes the monthly climatology of f. Months need not
// be evenly sampled; each month is averaged over whatever samples exist.
// NaN values are skipped.
func NewClimatology(f *Field) (*Climatology, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	shape := append([]int{12}, f.Data.Shape[1:]...)
	c := &Climatology{Mean: sparse.ZerosDense(shape...)}
	n := f.cellSize()
	valid := make([]int, 12*n)
	for i, t := range f.Time {
		m := int(t.Month()) - 1
		c.Count[m]++
		sum := c.Mean.Elements[m*n : (m+1)*n]
		cnt := valid[m*n : (m+1)*n]
		for j, v := range f.step(i) {
			if math.IsNaN(v) {
				continue
			}
			sum[j] += v
			cnt[j]++
		}
	}
	for i, cnt := range valid {
		if cnt == 0 {
			c.Mean.Elements[i] = math.NaN()
			continue
		}
		c.Mean.Elements[i] /= float64(cnt)
	}
	return c, nil
}

// Month returns the climatological values for month m. The returned
// slice shares memory with c.
func (c *Climatology) Month(m time.Month) []float64 {
	n := len(c.Mean.Elements) / 12
	i := int(m) - 1
	return c.Mean.Elements[i*n : (i+1)*n]
}

// Anomaly returns f minus its monthly climatology, matching each time
// step to the climatology of its calendar month. The climatology is
// recomputed from f on every call.
func Anomaly(f *Field) (*Field, error) {
	c, err := NewClimatology(f)
	if err != nil {
		return nil, err
	}
	o := f.Copy()
	for i, t := range o.Time {
		floats.Sub(o.step(i), c.Month(t.Month()))
	}
	return o, nil
}

// SSTA is the sea surface temperature anomaly of sst.
func SSTA(sst *Field) (*Field, error) { return Anomaly(sst) }

// months returns the calendar month of every time in t.
func months(t []time.Time) []time.Month {
	o := make([]time.Month, len(t))
	for i, tt := range t {
		o[i] = tt.Month()
	}
	return o
}
