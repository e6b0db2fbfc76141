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
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		in     interface{}
		shape  []int
		values []float64
		err    bool
	}{
		{
			name:   "3-d float32",
			in:     [][][]float32{{{1, 2, 3}, {4, 5, 6}}, {{7, 8, 9}, {10, 11, 12}}},
			shape:  []int{2, 2, 3},
			values: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		},
		{
			name:   "interface nest",
			in:     []interface{}{[]int16{1, 2}, []int16{3, 4}, []int16{5, 6}},
			shape:  []int{3, 2},
			values: []float64{1, 2, 3, 4, 5, 6},
		},
		{
			name:   "1-d",
			in:     []float64{0.5, 1.5},
			shape:  []int{2},
			values: []float64{0.5, 1.5},
		},
		{
			name:   "scalar",
			in:     float32(2.5),
			values: []float64{2.5},
		},
		{
			name: "ragged",
			in:   [][]float32{{1, 2}, {3}},
			err:  true,
		},
		{
			name: "ragged interface nest",
			in:   []interface{}{[]float64{1}, []float64{2, 3}},
			err:  true,
		},
		{
			name: "strings",
			in:   []string{"a", "b"},
			err:  true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var values []float64
			shape, err := flatten(reflect.ValueOf(test.in), 0, nil, &values)
			if test.err {
				if err == nil {
					t.Errorf("should be an error; have shape %v", shape)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(shape, test.shape) {
				t.Errorf("shape: have %v, want %v", shape, test.shape)
			}
			if !reflect.DeepEqual(values, test.values) {
				t.Errorf("values: have %v, want %v", values, test.values)
			}
		})
	}
}

// TestReadNetCDF4 reads a NetCDF-4 file written by the NetCDF C
// library, with big-endian data in a symbol-table root group.
func TestReadNetCDF4(t *testing.T) {
	const path = "testdata/types_be.nc"
	s, err := open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*hdf5Source); !ok {
		t.Fatalf("opened as %T", s)
	}

	tests := []struct {
		v      string
		shape  []int
		values []float64
	}{
		{v: "i16x2", shape: []int{2, 2}, values: []float64{-10000, 10000, -20000, 20000}},
		{v: "i32x1", shape: []int{1}, values: []float64{-10000000}},
		{v: "f64x2", shape: []int{2, 2}, values: []float64{-10.1, 10.1, -20.2, 20.2}},
		{v: "f32x2", shape: []int{2, 2}, values: []float64{
			float64(float32(-10.1)), float64(float32(10.1)), float64(float32(-20.2)), float64(float32(20.2)),
		}},
	}
	for _, test := range tests {
		values, shape, err := s.values(test.v)
		if err != nil {
			t.Errorf("%s: %v", test.v, err)
			continue
		}
		if !reflect.DeepEqual(shape, test.shape) {
			t.Errorf("%s shape: have %v, want %v", test.v, shape, test.shape)
		}
		if !reflect.DeepEqual(values, test.values) {
			t.Errorf("%s: have %v, want %v", test.v, values, test.values)
		}
	}

	if _, _, err := s.values("sst"); err == nil {
		t.Error("missing variable should be an error")
	}
	if s.dims("sst") != nil {
		t.Error("missing variable should have no dimensions")
	}
	// The variables have no time dimension.
	if _, err := ReadField(path, "f64x2"); err == nil {
		t.Error("field without a time dimension should be an error")
	}
}

// TestReadGroup reads a gridded field through go-native-netcdf and
// checks it against the classic reader.
func TestReadGroup(t *testing.T) {
	f := testField(t, time.Date(1997, time.June, 1, 0, 0, 0, 0, time.UTC), 5)
	path := createFile(t, "sst.nc", func(w *os.File) error {
		return Write(w, map[string]Variable{
			"sst": {Field: f, Description: "Sea surface temperature", Units: "K"},
		})
	})
	want, err := ReadVariable(path, "sst")
	if err != nil {
		t.Fatal(err)
	}

	g, err := netcdf.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s := &hdf5Source{g: g}
	defer s.Close()
	have, err := readVariable(s, path, "sst")
	if err != nil {
		t.Fatal(err)
	}
	if have.Description != want.Description || have.Units != want.Units {
		t.Errorf("metadata: have %q %q, want %q %q", have.Description, have.Units, want.Description, want.Units)
	}
	if !reflect.DeepEqual(have.Dims, want.Dims) || !reflect.DeepEqual(have.Coords, want.Coords) {
		t.Errorf("grid: have %v %v, want %v %v", have.Dims, have.Coords, want.Dims, want.Coords)
	}
	if !reflect.DeepEqual(have.Data.Shape, want.Data.Shape) {
		t.Fatalf("shape: have %v, want %v", have.Data.Shape, want.Data.Shape)
	}
	if !reflect.DeepEqual(have.Data.Elements, want.Data.Elements) {
		t.Errorf("values: have %v, want %v", have.Data.Elements, want.Data.Elements)
	}
	for i := range want.Time {
		if !have.Time[i].Equal(want.Time[i]) {
			t.Errorf("time %d: have %v, want %v", i, have.Time[i], want.Time[i])
		}
	}
}
