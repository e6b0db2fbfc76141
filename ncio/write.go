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

package ncio

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/climindex"
)

// DataVersion is written as a global attribute of every output file.
const DataVersion = "climindex-" + climindex.Version

// Variable is a field to be written along with its metadata.
type Variable struct {
	*climindex.Field
	Description string
	Units       string
}

// coordUnits are the units attributes written for coordinate variables.
var coordUnits = map[string]string{
	climindex.LatDim:   "degrees_north",
	climindex.LonDim:   "degrees_east",
	climindex.DepthDim: "m",
}

// Write writes vars to w as a NetCDF classic file. All variables must
// share the same time coordinate, and dimensions with the same name
// must have the same length.
func Write(w *os.File, vars map[string]Variable) error {
	if len(vars) == 0 {
		return fmt.Errorf("ncio: no variables to write")
	}
	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	first := vars[names[0]].Field
	var dims []string
	var lengths []int
	coords := make(map[string][]float64)
	dimLen := make(map[string]int)
	for _, name := range names {
		v := vars[name]
		if v.Len() != first.Len() {
			return fmt.Errorf("ncio: variable %s has %d time steps but %s has %d: %w",
				name, v.Len(), names[0], first.Len(), climindex.ErrShape)
		}
		for i, t := range v.Time {
			if !t.Equal(first.Time[i]) {
				return fmt.Errorf("ncio: variable %s time %d is %v, not %v: %w", name, i, t, first.Time[i], climindex.ErrShape)
			}
		}
		for i, d := range v.Dims {
			l := v.Data.Shape[i]
			if have, ok := dimLen[d]; ok {
				if have != l {
					return fmt.Errorf("ncio: variable %s dimension %s has length %d, not %d: %w", name, d, l, have, climindex.ErrShape)
				}
				continue
			}
			dimLen[d] = l
			dims = append(dims, d)
			lengths = append(lengths, l)
			if i > 0 {
				coords[d] = v.Coords[d]
			}
		}
	}

	// A zero length dimension is the record dimension.
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", "climate index diagnostics")
	h.AddAttribute("", "data_version", DataVersion)

	h.AddVariable(climindex.TimeDim, []string{climindex.TimeDim}, []float64{0})
	h.AddAttribute(climindex.TimeDim, "units", "days since "+Epoch.Format("2006-01-02 15:04:05"))
	h.AddAttribute(climindex.TimeDim, "calendar", Standard)
	for _, d := range dims[1:] {
		h.AddVariable(d, []string{d}, []float64{0})
		if u, ok := coordUnits[d]; ok {
			h.AddAttribute(d, "units", u)
		}
	}
	for _, name := range names {
		v := vars[name]
		h.AddVariable(name, v.Dims, []float32{0})
		h.AddAttribute(name, "description", v.Description)
		h.AddAttribute(name, "units", v.Units)
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	if err := writeFloat64(f, climindex.TimeDim, EncodeTime(first.Time)); err != nil {
		return fmt.Errorf("ncio: writing time coordinate: %v", err)
	}
	for _, d := range dims[1:] {
		if err := writeFloat64(f, d, coords[d]); err != nil {
			return fmt.Errorf("ncio: writing coordinate %s: %v", d, err)
		}
	}
	for _, name := range names {
		if err := writeNCF(f, name, vars[name].Data); err != nil {
			return fmt.Errorf("ncio: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// WriteField writes a single field to w.
func WriteField(w *os.File, name string, f *climindex.Field) error {
	return Write(w, map[string]Variable{name: {Field: f}})
}

// WriteSeries writes one or more series sharing a time coordinate to w,
// each as a variable named after the series.
func WriteSeries(w *os.File, series ...*climindex.Series) error {
	vars := make(map[string]Variable, len(series))
	for _, s := range series {
		if _, ok := vars[s.Name]; ok {
			return fmt.Errorf("ncio: duplicate series %s", s.Name)
		}
		vars[s.Name] = Variable{Field: s.Field(), Description: s.Name + " index"}
	}
	return Write(w, vars)
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	return writeVar(f, name, data32, len(data32))
}

func writeFloat64(f *cdf.File, name string, data []float64) error {
	return writeVar(f, name, data, len(data))
}

// writeVar writes all n values of a variable. The writer reports
// io.EOF once it reaches the end of a fixed-size variable.
func writeVar(f *cdf.File, name string, values interface{}, n int) error {
	if n == 0 {
		return nil
	}
	_, err := f.Writer(name, nil, nil).Write(values)
	if err == io.EOF {
		return nil
	}
	return err
}
