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

// Package ncio reads and writes climindex fields as NetCDF files.
package ncio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/climindex"
	"github.com/spf13/cast"
)

// Names that coordinate variables are commonly given in model and
// reanalysis output, by the dimension they are read as.
var aliases = map[string][]string{
	climindex.TimeDim:  {"time", "t", "Time", "TIME", "time_counter"},
	climindex.LatDim:   {"lat", "latitude", "Latitude", "LAT", "nav_lat", "yt_ocean", "yu_ocean", "y"},
	climindex.LonDim:   {"lon", "longitude", "Longitude", "LON", "nav_lon", "xt_ocean", "xu_ocean", "x"},
	climindex.DepthDim: {"depth", "lev", "level", "st_ocean", "sw_ocean", "z", "deptht", "plev"},
}

func canonicalDim(name string) string {
	for c, names := range aliases {
		for _, n := range names {
			if n == name {
				return c
			}
		}
	}
	return name
}

// source is a NetCDF file opened by one of the supported readers.
type source interface {
	// dims returns the dimension names of variable v, or nil if v
	// does not exist.
	dims(v string) []string

	// values returns the contents of variable v in row-major order.
	values(v string) ([]float64, []int, error)

	// attr returns attribute a of variable v.
	attr(v, a string) (interface{}, bool)

	Close() error
}

var (
	classicMagic = []byte("CDF")
	hdf5Magic    = []byte("\x89HDF\r\n\x1a\n")
)

// open opens path with the reader suited to its format.
func open(path string) (source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncio: %v", err)
	}
	magic := make([]byte, len(hdf5Magic))
	if _, err := io.ReadFull(f, magic); err != nil {
		f.Close()
		return nil, fmt.Errorf("ncio: reading %s: %v", path, err)
	}
	switch {
	case bytes.HasPrefix(magic, classicMagic):
		ff, err := cdf.Open(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ncio: opening %s: %v", path, err)
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("ncio: %v", err)
		}
		return &cdfSource{f: f, ff: ff, size: fi.Size()}, nil
	case bytes.Equal(magic, hdf5Magic):
		f.Close()
		g, err := netcdf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ncio: opening %s: %v", path, err)
		}
		return &hdf5Source{g: g}, nil
	default:
		f.Close()
		return nil, fmt.Errorf("ncio: %s is not a NetCDF file", path)
	}
}

// cdfSource reads NetCDF classic and 64-bit offset files.
type cdfSource struct {
	f    *os.File
	ff   *cdf.File
	size int64
}

func (s *cdfSource) dims(v string) []string { return s.ff.Header.Dimensions(v) }

func (s *cdfSource) values(v string) ([]float64, []int, error) {
	if s.dims(v) == nil {
		return nil, nil, fmt.Errorf("ncio: variable %s not in file", v)
	}
	shape := append([]int{}, s.ff.Header.Lengths(v)...)
	if s.ff.Header.IsRecordVariable(v) {
		shape[0] = int(s.ff.Header.NumRecs(s.size))
	}
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n == 0 {
		return []float64{}, shape, nil
	}
	end := make([]int, len(shape))
	for i, d := range shape {
		end[i] = d - 1
	}
	r := s.ff.Reader(v, nil, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, nil, fmt.Errorf("ncio: reading netcdf variable %s: %v", v, err)
	}
	o, err := toFloats(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("ncio: variable %s: %v", v, err)
	}
	return o, shape, nil
}

func (s *cdfSource) attr(v, a string) (interface{}, bool) {
	val := s.ff.Header.GetAttribute(v, a)
	return val, val != nil
}

func (s *cdfSource) Close() error { return s.f.Close() }

// hdf5Source reads NetCDF-4 files. It accepts any group opened by
// go-native-netcdf, classic files included.
type hdf5Source struct {
	g api.Group
}

func (s *hdf5Source) dims(v string) []string {
	vr, err := s.g.GetVariable(v)
	if err != nil {
		return nil
	}
	return vr.Dimensions
}

func (s *hdf5Source) values(v string) ([]float64, []int, error) {
	vr, err := s.g.GetVariable(v)
	if err != nil {
		return nil, nil, fmt.Errorf("ncio: variable %s: %v", v, err)
	}
	var o []float64
	shape, err := flatten(reflect.ValueOf(vr.Values), 0, nil, &o)
	if err != nil {
		return nil, nil, fmt.Errorf("ncio: variable %s: %v", v, err)
	}
	return o, shape, nil
}

func (s *hdf5Source) attr(v, a string) (interface{}, bool) {
	vr, err := s.g.GetVariable(v)
	if err != nil {
		return nil, false
	}
	return vr.Attributes.Get(a)
}

func (s *hdf5Source) Close() error {
	s.g.Close()
	return nil
}

// flatten appends the numbers in the nested slice v to o and returns
// the shape of v.
func flatten(v reflect.Value, depth int, shape []int, o *[]float64) ([]int, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		f, err := cast.ToFloat64E(v.Interface())
		if err != nil {
			return nil, err
		}
		*o = append(*o, f)
		return shape, nil
	}
	if depth == len(shape) {
		shape = append(shape, v.Len())
	} else if shape[depth] != v.Len() {
		return nil, fmt.Errorf("ragged array: length %d at depth %d, want %d", v.Len(), depth, shape[depth])
	}
	if k := v.Type().Elem().Kind(); k != reflect.Slice && k != reflect.Interface {
		f, err := toFloats(v.Interface())
		if err != nil {
			return nil, err
		}
		*o = append(*o, f...)
		return shape, nil
	}
	for i := 0; i < v.Len(); i++ {
		var err error
		if shape, err = flatten(v.Index(i), depth+1, shape, o); err != nil {
			return nil, err
		}
	}
	return shape, nil
}

// toFloats converts a numeric slice or scalar to []float64.
func toFloats(v interface{}) ([]float64, error) {
	var o []float64
	switch t := v.(type) {
	case []float64:
		o = append(o, t...)
	case []float32:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int16:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int32:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int64:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []int8:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	case []uint8:
		o = make([]float64, len(t))
		for i, x := range t {
			o[i] = float64(x)
		}
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("unsupported data type %T", v)
		}
		o = []float64{f}
	}
	return o, nil
}

// numberAttr returns the first value of a numeric attribute.
func numberAttr(s source, v, a string) (float64, bool) {
	val, ok := s.attr(v, a)
	if !ok {
		return 0, false
	}
	f, err := toFloats(val)
	if err != nil || len(f) == 0 {
		return 0, false
	}
	return f[0], true
}

// stringAttr returns a text attribute, or def if it is not present.
func stringAttr(s source, v, a, def string) string {
	val, ok := s.attr(v, a)
	if !ok {
		return def
	}
	switch t := val.(type) {
	case string:
		return strings.TrimRight(t, "\x00")
	case []byte:
		return strings.TrimRight(string(t), "\x00")
	}
	return def
}

// ReadField reads variable from the NetCDF file at path. The first
// dimension of the variable must be time, described by a CF units
// attribute of the form "<unit> since <date>" and an optional calendar
// attribute. Other dimensions are renamed to lat, lon and depth when
// they have one of the usual names for those coordinates. Fill and
// missing values become NaN, and packed values are unpacked with
// scale_factor and add_offset.
func ReadField(path, variable string) (*climindex.Field, error) {
	v, err := ReadVariable(path, variable)
	if err != nil {
		return nil, err
	}
	return v.Field, nil
}

// ReadVariable is like ReadField but also returns the description
// and units of the variable.
func ReadVariable(path, variable string) (*Variable, error) {
	s, err := open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return readVariable(s, path, variable)
}

func readVariable(s source, path, variable string) (*Variable, error) {
	fileDims := s.dims(variable)
	if fileDims == nil {
		return nil, fmt.Errorf("ncio: variable %s not in %s", variable, path)
	}
	values, shape, err := s.values(variable)
	if err != nil {
		return nil, err
	}
	if len(shape) != len(fileDims) {
		return nil, fmt.Errorf("ncio: variable %s has %d dimensions but %d-d data", variable, len(fileDims), len(shape))
	}
	unpack(s, variable, values)

	dims := make([]string, len(fileDims))
	coords := make(map[string][]float64)
	for i, d := range fileDims {
		dims[i] = canonicalDim(d)
		if i == 0 {
			continue
		}
		c, err := coordinate(s, d, shape[i])
		if err != nil {
			return nil, err
		}
		coords[dims[i]] = c
	}
	if dims[0] != climindex.TimeDim {
		return nil, fmt.Errorf("ncio: first dimension of %s is %q, not time: %w", variable, fileDims[0], climindex.ErrNoDimension)
	}
	tv, _, err := s.values(fileDims[0])
	if err != nil {
		return nil, err
	}
	if len(tv) != shape[0] {
		return nil, fmt.Errorf("ncio: time coordinate has %d values for %d time steps", len(tv), shape[0])
	}
	calendar := stringAttr(s, fileDims[0], "calendar", Standard)
	t, err := DecodeTime(tv, stringAttr(s, fileDims[0], "units", ""), calendar)
	if err != nil {
		return nil, fmt.Errorf("ncio: variable %s: %v", variable, err)
	}

	data := sparse.ZerosDense(shape...)
	copy(data.Elements, values)
	f, err := climindex.NewField(t, calendar, dims, coords, data)
	if err != nil {
		return nil, err
	}
	desc := stringAttr(s, variable, "long_name", "")
	if desc == "" {
		desc = stringAttr(s, variable, "description", "")
	}
	return &Variable{
		Field:       f,
		Description: desc,
		Units:       stringAttr(s, variable, "units", ""),
	}, nil
}

// coordinate returns the values of the coordinate variable of
// dimension d, or 0, 1, 2, ... if there is none.
func coordinate(s source, d string, n int) ([]float64, error) {
	if s.dims(d) == nil {
		c := make([]float64, n)
		for i := range c {
			c[i] = float64(i)
		}
		return c, nil
	}
	c, _, err := s.values(d)
	if err != nil {
		return nil, err
	}
	if len(c) != n {
		return nil, fmt.Errorf("ncio: coordinate %s has %d values for dimension of length %d", d, len(c), n)
	}
	return c, nil
}

// unpack replaces fill values with NaN and applies scale_factor and
// add_offset in place.
func unpack(s source, v string, values []float64) {
	var missing []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		if f, ok := numberAttr(s, v, a); ok {
			missing = append(missing, f)
		}
	}
	scale, hasScale := numberAttr(s, v, "scale_factor")
	offset, hasOffset := numberAttr(s, v, "add_offset")
	for i, x := range values {
		for _, m := range missing {
			if x == m || float64(float32(x)) == float64(float32(m)) {
				x = math.NaN()
				break
			}
		}
		if hasScale {
			x *= scale
		}
		if hasOffset {
			x += offset
		}
		values[i] = x
	}
}
