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

// Package hash computes cache keys for gridded data.
package hash

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"
	"math"
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Grid returns a hash key for the contents of a labeled array: its
// dimension names, coordinates, time stamps, calendar and values.
// NaN values hash by bit pattern, so two arrays with missing values
// in the same places hash the same.
func Grid(dims []string, coords map[string][]float64, t []time.Time, calendar string, values []float64) string {
	h := fnv.New128a()
	writeString(h, calendar)
	for _, d := range dims {
		writeString(h, d)
	}
	names := make([]string, 0, len(coords))
	for k := range coords {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		writeString(h, k)
		writeFloats(h, coords[k])
	}
	var b [8]byte
	for _, tt := range t {
		binary.LittleEndian.PutUint64(b[:], uint64(tt.Unix()))
		h.Write(b[:])
	}
	writeFloats(h, values)
	return sum(h)
}

// Hash returns a hash key for the specified object, such as a
// custom index definition.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(object); err == nil {
		return sum(h)
	}
	// gob cannot encode some values, e.g. NaN map keys.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	return sum(h)
}

func writeString(h hash.Hash, s string) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(len(s)))
	h.Write(b[:])
	h.Write([]byte(s))
}

func writeFloats(h hash.Hash, v []float64) {
	b := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(f))
	}
	h.Write(b)
}

func sum(h hash.Hash) string {
	return fmt.Sprintf("%x", h.Sum(nil))
}
