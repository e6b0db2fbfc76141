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
	"errors"
	"fmt"
	"time"

	"github.com/ctessum/sparse"
)

// Dimension names understood by the index calculators.
const (
	TimeDim  = "time"
	LatDim   = "lat"
	LonDim   = "lon"
	DepthDim = "depth"
)

// Errors for inputs that do not have the layout an operation requires.
var (
	ErrNoDimension = errors.New("climindex: missing dimension")
	ErrShape       = errors.New("climindex: shape mismatch")
)

// Field is a labeled array whose first dimension is time. The remaining
// dimensions are arbitrary; a sea surface temperature field has
// dimensions (time, lat, lon).
type Field struct {
	// Dims holds the dimension names. Dims[0] is always TimeDim.
	Dims []string

	// Coords holds the coordinate values of every non-time dimension.
	Coords map[string][]float64

	// Time holds the time coordinate, which must be increasing.
	Time []time.Time

	// Calendar is the CF calendar the time coordinate was decoded with.
	Calendar string

	// Data holds the values, with Data.Shape[0] == len(Time).
	Data *sparse.DenseArray
}

// NewField checks that the given components are consistent with each
// other and returns them as a Field.
func NewField(t []time.Time, calendar string, dims []string, coords map[string][]float64, data *sparse.DenseArray) (*Field, error) {
	f := &Field{
		Dims:     dims,
		Coords:   coords,
		Time:     t,
		Calendar: calendar,
		Data:     data,
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Field) check() error {
	if f.Data == nil {
		return fmt.Errorf("%w: field has no data", ErrShape)
	}
	if len(f.Dims) == 0 || f.Dims[0] != TimeDim {
		return fmt.Errorf("%w: first dimension must be %q, have %v", ErrNoDimension, TimeDim, f.Dims)
	}
	if f.Calendar == "" {
		return fmt.Errorf("%w: time dimension has no calendar", ErrNoDimension)
	}
	if len(f.Dims) != len(f.Data.Shape) {
		return fmt.Errorf("%w: %d dimension names for %d-d data", ErrShape, len(f.Dims), len(f.Data.Shape))
	}
	if f.Data.Shape[0] != len(f.Time) {
		return fmt.Errorf("%w: %d time values for time dimension of length %d", ErrShape, len(f.Time), f.Data.Shape[0])
	}
	n := 1
	for _, d := range f.Data.Shape {
		n *= d
	}
	if len(f.Data.Elements) != n {
		return fmt.Errorf("%w: shape %v needs %d elements, have %d", ErrShape, f.Data.Shape, n, len(f.Data.Elements))
	}
	for i, d := range f.Dims[1:] {
		c, ok := f.Coords[d]
		if !ok {
			return fmt.Errorf("%w: no coordinate values for dimension %q", ErrNoDimension, d)
		}
		if len(c) != f.Data.Shape[i+1] {
			return fmt.Errorf("%w: dimension %q has %d coordinates for length %d", ErrShape, d, len(c), f.Data.Shape[i+1])
		}
	}
	for i := 1; i < len(f.Time); i++ {
		if !f.Time[i].After(f.Time[i-1]) {
			return fmt.Errorf("%w: time coordinate is not increasing at index %d (%v, %v)", ErrShape, i, f.Time[i-1], f.Time[i])
		}
	}
	return nil
}

// Len returns the number of time steps in f.
func (f *Field) Len() int { return len(f.Time) }

// cellSize returns the number of values in a single time step.
func (f *Field) cellSize() int {
	n := 1
	for _, d := range f.Data.Shape[1:] {
		n *= d
	}
	return n
}

// Axis returns the index of the named dimension.
func (f *Field) Axis(name string) (int, error) {
	for i, d := range f.Dims {
		if d == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q not in %v", ErrNoDimension, name, f.Dims)
}

// Copy returns a deep copy of f.
func (f *Field) Copy() *Field {
	o := &Field{
		Dims:     append([]string{}, f.Dims...),
		Coords:   make(map[string][]float64, len(f.Coords)),
		Time:     append([]time.Time{}, f.Time...),
		Calendar: f.Calendar,
		Data:     sparse.ZerosDense(append([]int{}, f.Data.Shape...)...),
	}
	for k, v := range f.Coords {
		o.Coords[k] = append([]float64{}, v...)
	}
	copy(o.Data.Elements, f.Data.Elements)
	return o
}

// step returns the values of time step i. The returned slice
// shares memory with f.
func (f *Field) step(i int) []float64 {
	n := f.cellSize()
	return f.Data.Elements[i*n : (i+1)*n]
}

// withSteps returns a new field with the same spatial layout as f
// holding nt time steps at the given times. Data is zeroed.
func (f *Field) withSteps(t []time.Time) *Field {
	shape := append([]int{len(t)}, f.Data.Shape[1:]...)
	o := &Field{
		Dims:     append([]string{}, f.Dims...),
		Coords:   make(map[string][]float64, len(f.Coords)),
		Time:     t,
		Calendar: f.Calendar,
		Data:     sparse.ZerosDense(shape...),
	}
	for k, v := range f.Coords {
		o.Coords[k] = append([]float64{}, v...)
	}
	return o
}

// Select returns a new field holding the given time steps of f, in
// the given order.
func (f *Field) Select(steps []int) *Field {
	t := make([]time.Time, len(steps))
	for i, s := range steps {
		t[i] = f.Time[s]
	}
	o := f.withSteps(t)
	for i, s := range steps {
		copy(o.step(i), f.step(s))
	}
	return o
}

// ConcatTime concatenates fields along the time dimension. template
// provides the spatial layout when no fields are given, in which case
// the result has zero time steps.
func ConcatTime(template *Field, fields ...*Field) (*Field, error) {
	var t []time.Time
	for _, g := range fields {
		if len(g.Data.Shape) != len(template.Data.Shape) {
			return nil, fmt.Errorf("%w: concatenating %d-d field onto %d-d field", ErrShape, len(g.Data.Shape), len(template.Data.Shape))
		}
		for i := 1; i < len(g.Data.Shape); i++ {
			if g.Data.Shape[i] != template.Data.Shape[i] {
				return nil, fmt.Errorf("%w: concatenating shape %v onto %v", ErrShape, g.Data.Shape, template.Data.Shape)
			}
		}
		t = append(t, g.Time...)
	}
	if t == nil {
		t = []time.Time{}
	}
	o := template.withSteps(t)
	n := 0
	for _, g := range fields {
		n += copy(o.Data.Elements[n:], g.Data.Elements)
	}
	return o, nil
}

// Series is a one-dimensional time series, such as a regional index.
type Series struct {
	// Name identifies the quantity, e.g. "DMI".
	Name string

	Time   []time.Time
	Values []float64

	// Calendar is carried over from the field the series was derived from.
	Calendar string

	// Month is the calendar-month label attached by the anomaly
	// computation. It is nil for series that do not retain it.
	Month []time.Month
}

// Len returns the number of samples in s.
func (s *Series) Len() int { return len(s.Time) }

// Copy returns a deep copy of s.
func (s *Series) Copy() *Series {
	o := &Series{
		Name:     s.Name,
		Time:     append([]time.Time{}, s.Time...),
		Values:   append([]float64{}, s.Values...),
		Calendar: s.Calendar,
	}
	if s.Month != nil {
		o.Month = append([]time.Month{}, s.Month...)
	}
	return o
}

// DropMonth returns a copy of s without the month label.
func (s *Series) DropMonth() *Series {
	o := s.Copy()
	o.Month = nil
	return o
}

// Field converts s to a field with the single dimension time.
func (s *Series) Field() *Field {
	data := sparse.ZerosDense(len(s.Values))
	copy(data.Elements, s.Values)
	return &Field{
		Dims:     []string{TimeDim},
		Coords:   map[string][]float64{},
		Time:     append([]time.Time{}, s.Time...),
		Calendar: s.Calendar,
		Data:     data,
	}
}

// SeriesFromField converts a field with the single dimension time into
// a series with the given name.
func SeriesFromField(name string, f *Field) (*Series, error) {
	if len(f.Dims) != 1 {
		return nil, fmt.Errorf("%w: series needs a 1-d field, have dimensions %v", ErrShape, f.Dims)
	}
	return &Series{
		Name:     name,
		Time:     append([]time.Time{}, f.Time...),
		Values:   append([]float64{}, f.Data.Elements...),
		Calendar: f.Calendar,
	}, nil
}

// Sub returns a - b, sample by sample. Both series must share the
// same time coordinate. The result carries no month label.
func Sub(name string, a, b *Series) (*Series, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("%w: subtracting series of length %d from length %d", ErrShape, b.Len(), a.Len())
	}
	o := &Series{
		Name:     name,
		Time:     append([]time.Time{}, a.Time...),
		Values:   make([]float64, a.Len()),
		Calendar: a.Calendar,
	}
	for i := range a.Values {
		if !a.Time[i].Equal(b.Time[i]) {
			return nil, fmt.Errorf("%w: series times differ at index %d (%v, %v)", ErrShape, i, a.Time[i], b.Time[i])
		}
		o.Values[i] = a.Values[i] - b.Values[i]
	}
	return o, nil
}
