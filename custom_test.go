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
	"testing"

	"github.com/GaryBoone/GoStats/stats"
)

func TestCustomIndexDMI(t *testing.T) {
	f := dipoleField()
	dmi, err := DMI(f)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		expr string
		want func(float64) float64
	}{
		{expr: "WTIO - SETIO", want: func(v float64) float64 { return v }},
		{expr: "abs(WTIO - SETIO)", want: math.Abs},
		{expr: "(WTIO - SETIO) / 2", want: func(v float64) float64 { return v / 2 }},
	} {
		t.Run(test.expr, func(t *testing.T) {
			ci := &CustomIndex{Name: "x", Expression: test.expr}
			s, err := ci.Index(f)
			if err != nil {
				t.Fatal(err)
			}
			if s.Len() != dmi.Len() || s.Name != "x" {
				t.Fatalf("have %d samples named %q", s.Len(), s.Name)
			}
			for i, v := range s.Values {
				if w := test.want(dmi.Values[i]); absDifferent(v, w, testTolerance) {
					t.Errorf("%v: have %g, want %g", s.Time[i], v, w)
				}
			}
		})
	}
}

func TestCustomIndexRegression(t *testing.T) {
	f := dipoleField()
	dmi, err := DMI(f)
	if err != nil {
		t.Fatal(err)
	}
	s, err := (&CustomIndex{Name: "half", Expression: "0.5 * WTIO - 0.5 * SETIO + 1"}).Index(f)
	if err != nil {
		t.Fatal(err)
	}
	slope, intercept, rsquared, _, _, _ := stats.LinearRegression(dmi.Values, s.Values)
	if different(slope, 0.5, 1.e-6) || different(intercept, 1, 1.e-6) || different(rsquared, 1, 1.e-6) {
		t.Errorf("regression on DMI: slope %g, intercept %g, r² %g", slope, intercept, rsquared)
	}
}

func TestCustomIndexRaw(t *testing.T) {
	f := gridField(monthly(2000, 12), seasonalCycle)
	ci := &CustomIndex{
		Name:       "box",
		Expression: "2 * BOX",
		Regions:    map[string]Region{"BOX": NewRegion("BOX", -1, 1, 19, 21)},
		Raw:        true,
	}
	s, err := ci.Index(f)
	if err != nil {
		t.Fatal(err)
	}
	for i, tt := range s.Time {
		if want := 2 * seasonalCycle(tt, 0, 20); different(s.Values[i], want, testTolerance) {
			t.Errorf("%v: have %g, want %g", tt, s.Values[i], want)
		}
	}
}

func TestCustomIndexErrors(t *testing.T) {
	f := gridField(monthly(2000, 12), seasonalCycle)
	for _, ci := range []*CustomIndex{
		{Name: "undefined", Expression: "WTIO - NOWHERE"},
		{Name: "syntax", Expression: "WTIO -* (SETIO"},
		{Name: "empty", Expression: "EMPTY", Regions: map[string]Region{"EMPTY": NewRegion("EMPTY", 80, 85, 0, 10)}},
	} {
		if _, err := ci.Index(f); err == nil {
			t.Errorf("%s: expected an error", ci.Name)
		}
	}
}

func TestCustomIndexString(t *testing.T) {
	a := &CustomIndex{Name: "x", Expression: "A + B", Regions: map[string]Region{}}
	b := &CustomIndex{Name: "x", Expression: "A + B", Regions: map[string]Region{}}
	names := []string{"A", "B", "C", "D", "E", "F"}
	for i, n := range names {
		a.Regions[n] = NewRegion(n, float64(i), float64(i+1), 0, 10)
	}
	for i := len(names) - 1; i >= 0; i-- {
		b.Regions[names[i]] = NewRegion(names[i], float64(i), float64(i+1), 0, 10)
	}
	for i := 0; i < 20; i++ {
		if a.String() != b.String() {
			t.Fatalf("equal definitions differ: %s, %s", a, b)
		}
	}
	b.Raw = true
	if a.String() == b.String() {
		t.Errorf("raw flag not in description %s", b)
	}
}
