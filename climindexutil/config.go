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

package climindexutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/climindex"
)

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: output="indices.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("climindex: the output file directory doesn't exist: %v", err)
	}
	return f, nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// RegionConfig is a latitude-longitude box in a custom index file.
type RegionConfig struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// IndexConfig is an index definition in a custom index file.
type IndexConfig struct {
	Name       string
	Expression string
	Raw        bool
}

// customFile is the layout of a custom index file, for example:
//
//	[Regions.NTA]
//	LatMin = -5.0
//	LatMax = 5.0
//	LonMin = 300.0
//	LonMax = 340.0
//
//	[[Index]]
//	Name = "NTA"
//	Expression = "NTA"
type customFile struct {
	Regions map[string]RegionConfig
	Index   []IndexConfig
}

// LoadCustomIndices reads the custom region and index definitions in
// the TOML file at path.
func LoadCustomIndices(path string) ([]*climindex.CustomIndex, error) {
	var c customFile
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return nil, fmt.Errorf("climindex: reading custom index file: %v", err)
	}
	if u := md.Undecoded(); len(u) > 0 {
		return nil, fmt.Errorf("climindex: unknown keys in custom index file %s: %v", path, u)
	}
	regions := make(map[string]climindex.Region, len(c.Regions))
	names := make([]string, 0, len(c.Regions))
	for name := range c.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := c.Regions[name]
		if r.LatMin > r.LatMax || r.LonMin > r.LonMax {
			return nil, fmt.Errorf("climindex: region %s has minimum greater than maximum", name)
		}
		regions[name] = climindex.NewRegion(name, r.LatMin, r.LatMax, r.LonMin, r.LonMax)
	}
	o := make([]*climindex.CustomIndex, len(c.Index))
	for i, ic := range c.Index {
		if ic.Name == "" || strings.TrimSpace(ic.Expression) == "" {
			return nil, fmt.Errorf("climindex: custom index %d needs both a Name and an Expression", i)
		}
		o[i] = &climindex.CustomIndex{
			Name:       ic.Name,
			Expression: ic.Expression,
			Regions:    regions,
			Raw:        ic.Raw,
		}
	}
	return o, nil
}
