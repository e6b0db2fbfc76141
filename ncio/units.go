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
	"strconv"
	"strings"

	"github.com/ctessum/unit"
)

// unitSymbols maps the unit symbols found in ocean model output to
// their dimensions.
var unitSymbols = map[string]unit.Dimensions{
	"1":         unit.Dimless,
	"K":         unit.Kelvin,
	"degK":      unit.Kelvin,
	"degC":      unit.Kelvin,
	"deg_C":     unit.Kelvin,
	"degrees_C": unit.Kelvin,
	"Celsius":   unit.Kelvin,
	"C":         unit.Kelvin,
	"m":         unit.Meter,
	"meters":    unit.Meter,
	"kg":        unit.Kilogram,
	"s":         unit.Second,
	"W":         unit.Watt,
	"J":         unit.Joule,
	"Pa":        unit.Pascal,
	"N":         {unit.MassDim: 1, unit.LengthDim: 1, unit.TimeDim: -2},
}

// celsius are the spellings of degrees Celsius.
var celsius = map[string]bool{"degC": true, "deg_C": true, "degrees_C": true, "Celsius": true, "C": true}

// ParseUnits returns the dimensions of a units attribute such as
// "W m-2", "W/m^2" or "N m**-2".
func ParseUnits(s string) (unit.Dimensions, error) {
	o := unit.Dimensions{}
	s = strings.Replace(s, "/", " /", -1)
	for _, tok := range strings.Fields(s) {
		sign := 1
		if strings.HasPrefix(tok, "/") {
			sign = -1
			tok = tok[1:]
		}
		sym, pow := splitPower(tok)
		d, ok := unitSymbols[sym]
		if !ok {
			return nil, fmt.Errorf("ncio: unknown unit %q in %q", sym, s)
		}
		p, err := strconv.Atoi(pow)
		if err != nil {
			return nil, fmt.Errorf("ncio: invalid exponent in unit %q", tok)
		}
		for dim, n := range d {
			o[dim] += sign * p * n
			if o[dim] == 0 {
				delete(o, dim)
			}
		}
	}
	return o, nil
}

// splitPower splits a unit token into its symbol and exponent.
func splitPower(tok string) (string, string) {
	for _, sep := range []string{"**", "^"} {
		if i := strings.Index(tok, sep); i >= 0 {
			return tok[:i], tok[i+len(sep):]
		}
	}
	i := strings.IndexAny(tok, "-0123456789")
	if i <= 0 {
		return tok, "1"
	}
	return tok[:i], tok[i:]
}

// IsCelsius reports whether units is a spelling of degrees Celsius.
func IsCelsius(units string) bool {
	return celsius[strings.TrimSpace(units)]
}

// CheckUnits returns an error if units do not have dimensions d.
// Empty units are not checked.
func CheckUnits(units string, d unit.Dimensions) error {
	if units == "" {
		return nil
	}
	u, err := ParseUnits(units)
	if err != nil {
		return err
	}
	return unit.New(1, u).Check(d)
}
