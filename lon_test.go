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
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

func TestNormalizeLongitude(t *testing.T) {
	lons := []float64{-180, -90, 0, 90}
	data := sparse.ZerosDense(2, 1, 4)
	for i := 0; i < 2; i++ {
		for k, lon := range lons {
			data.Set(lon+1000*float64(i), i, 0, k)
		}
	}
	f, err := NewField(monthly(2000, 2), "noleap", []string{TimeDim, LatDim, LonDim},
		map[string][]float64{LatDim: {0}, LonDim: lons}, data)
	if err != nil {
		t.Fatal(err)
	}
	n, err := NormalizeLongitude(f)
	if err != nil {
		t.Fatal(err)
	}
	wantLon := []float64{0, 90, 180, 270}
	if !reflect.DeepEqual(n.Coords[LonDim], wantLon) {
		t.Errorf("longitude: have %v, want %v", n.Coords[LonDim], wantLon)
	}
	wantData := []float64{0, 90, -180, -90, 1000, 1090, 820, 910}
	if !reflect.DeepEqual(n.Data.Elements, wantData) {
		t.Errorf("data: have %v, want %v", n.Data.Elements, wantData)
	}
	if !reflect.DeepEqual(f.Coords[LonDim], lons) {
		t.Errorf("input was modified: %v", f.Coords[LonDim])
	}

	t.Run("idempotent", func(t *testing.T) {
		n2, err := NormalizeLongitude(n)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(n2.Coords, n.Coords) || !reflect.DeepEqual(n2.Data.Elements, n.Data.Elements) {
			t.Errorf("normalizing twice changed the field")
		}
	})
}

func TestNormalizeLongitudeNoLon(t *testing.T) {
	f, err := NewField([]time.Time{time.Now()}, "standard", []string{TimeDim, LatDim},
		map[string][]float64{LatDim: {0}}, sparse.ZerosDense(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NormalizeLongitude(f); err == nil {
		t.Error("missing longitude should be an error")
	}
}

func TestWrapLongitude(t *testing.T) {
	for _, test := range []struct{ in, want float64 }{
		{0, 0}, {359.5, 359.5}, {360, 0}, {-1, 359}, {-1e-14, 0}, {720.5, 0.5}, {-190, 170},
	} {
		if have := wrapLongitude(test.in); absDifferent(have, test.want, testTolerance) {
			t.Errorf("wrapLongitude(%g): have %g, want %g", test.in, have, test.want)
		}
		if have := wrapLongitude(test.in); have < 0 || have >= 360 {
			t.Errorf("wrapLongitude(%g) = %g is out of range", test.in, have)
		}
	}
}
