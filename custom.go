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
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
)

// builtinRegions can be referred to by name from custom index
// expressions without being defined.
var builtinRegions = map[string]Region{
	"NINO34": Nino34Region,
	"IOBM":   IOBMRegion,
	"WTIO":   WTIO,
	"SETIO":  SETIO,
}

// expressionFuncs are the functions available in custom index
// expressions.
var expressionFuncs = map[string]govaluate.ExpressionFunction{
	"abs": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("climindex: got %d arguments for function 'abs', but needs 1", len(arg))
		}
		return math.Abs(arg[0].(float64)), nil
	},
}

// CustomIndex is an index defined as an arithmetic expression over
// regional means, for example "WTIO - SETIO". Variables in the
// expression name entries of Regions or one of the built-in regions
// NINO34, IOBM, WTIO and SETIO.
type CustomIndex struct {
	Name       string
	Expression string
	Regions    map[string]Region

	// Raw selects the regional means of the field itself instead of
	// its anomaly.
	Raw bool
}

// String returns a canonical description of c, listing its regions in
// order of variable name. Indices with the same definition have the same
// description, which makes it usable as a cache key.
func (c *CustomIndex) String() string {
	names := make([]string, 0, len(c.Regions))
	for n := range c.Regions {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	fmt.Fprintf(&b, "%q %q raw=%t", c.Name, c.Expression, c.Raw)
	for _, n := range names {
		fmt.Fprintf(&b, " %q=%v", n, c.Regions[n])
	}
	return b.String()
}

// regions returns the regions used by the expression, by variable name.
func (c *CustomIndex) regions(expr *govaluate.EvaluableExpression) (map[string]Region, error) {
	o := make(map[string]Region)
	for _, v := range expr.Vars() {
		if r, ok := c.Regions[v]; ok {
			o[v] = r
			continue
		}
		if r, ok := builtinRegions[v]; ok {
			o[v] = r
			continue
		}
		return nil, fmt.Errorf("climindex: index %s: undefined region %q", c.Name, v)
	}
	return o, nil
}

// Index computes the index from f.
func (c *CustomIndex) Index(f *Field) (*Series, error) {
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(c.Expression, expressionFuncs)
	if err != nil {
		return nil, fmt.Errorf("climindex: index %s: %v", c.Name, err)
	}
	regions, err := c.regions(expr)
	if err != nil {
		return nil, err
	}
	src := f
	if !c.Raw {
		if src, err = Anomaly(f); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, len(regions))
	for n := range regions {
		names = append(names, n)
	}
	sort.Strings(names)
	means := make(map[string]*Series, len(regions))
	for _, n := range names {
		if means[n], err = RegionMean(src, regions[n]); err != nil {
			return nil, err
		}
	}

	o := &Series{
		Name:     c.Name,
		Time:     append([]time.Time{}, f.Time...),
		Values:   make([]float64, f.Len()),
		Calendar: f.Calendar,
	}
	params := make(map[string]interface{}, len(names))
	for i := range o.Time {
		for _, n := range names {
			params[n] = means[n].Values[i]
		}
		v, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("climindex: index %s at %v: %v", c.Name, o.Time[i], err)
		}
		fv, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("climindex: index %s: expression %q evaluates to %T, not a number", c.Name, c.Expression, v)
		}
		o.Values[i] = fv
	}
	return o, nil
}
