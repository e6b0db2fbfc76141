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
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/climindex"
	"github.com/spatialmodel/climindex/ncio"
)

var (
	testLats = []float64{-10, -5, 0, 5, 10}
	testLons = []float64{-180, -150, -120, -90, -60, -30, 0, 30, 60, 90, 120, 150}
	// eventYears have a strong positive dipole and El Niño.
	eventYears = map[int]bool{1994: true, 1997: true}
)

func field(t *testing.T, tt []time.Time, dims []string, coords map[string][]float64, value func(i int, idx []int) float64) *climindex.Field {
	shape := []int{len(tt)}
	for _, d := range dims[1:] {
		shape = append(shape, len(coords[d]))
	}
	data := sparse.ZerosDense(shape...)
	idx := make([]int, len(shape))
	for i := range data.Elements {
		r := i
		for k := len(shape) - 1; k >= 0; k-- {
			idx[k] = r % shape[k]
			r /= shape[k]
		}
		data.Elements[i] = value(idx[0], idx)
	}
	f, err := climindex.NewField(tt, ncio.Standard, dims, coords, data)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func monthly(year, n int) []time.Time {
	t := make([]time.Time, n)
	for i := range t {
		t[i] = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
	}
	return t
}

// writeSST writes 1990-1999 sea surface temperature in Kelvin on a grid
// with longitudes from -180 to 150 and returns the file name.
func writeSST(t *testing.T, dir string) string {
	tt := monthly(1990, 120)
	sst := field(t, tt, []string{climindex.TimeDim, climindex.LatDim, climindex.LonDim},
		map[string][]float64{climindex.LatDim: testLats, climindex.LonDim: testLons},
		func(i int, idx []int) float64 {
			lat, lon := testLats[idx[1]], testLons[idx[2]]
			if lon < 0 {
				lon += 360
			}
			v := 300 + math.Sin(2*math.Pi*float64(tt[i].Month())/12) + 0.01*float64(tt[i].Year()%3)
			event := eventYears[tt[i].Year()] && tt[i].Month() >= time.September
			if event && climindex.WTIO.Contains(lat, lon) {
				v += 1.5
			}
			if event && climindex.SETIO.Contains(lat, lon) {
				v -= 1.2
			}
			if event && climindex.Nino34Region.Contains(lat, lon) {
				v += 2
			}
			return v
		})
	path := filepath.Join(dir, "sst.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := ncio.Write(w, map[string]ncio.Variable{"sst": {Field: sst, Units: "K"}}); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeOcean writes a temperature profile and heat fluxes with a depth
// dimension and returns the file name.
func writeOcean(t *testing.T, dir string) string {
	tt := monthly(2000, 2)
	depth := []float64{0, 50, 100, 200}
	coords3 := map[string][]float64{climindex.DepthDim: depth, climindex.LatDim: {0, 1}, climindex.LonDim: {100, 101}}
	coords2 := map[string][]float64{climindex.LatDim: {0, 1}, climindex.LonDim: {100, 101}}
	dims3 := []string{climindex.TimeDim, climindex.DepthDim, climindex.LatDim, climindex.LonDim}
	dims2 := []string{climindex.TimeDim, climindex.LatDim, climindex.LonDim}
	vars := map[string]ncio.Variable{
		"temp": {
			Field: field(t, tt, dims3, coords3, func(_ int, idx []int) float64 { return 300 - 0.5*depth[idx[1]] }),
			Units: "K",
		},
		"net_sfc_heating": {
			Field: field(t, tt, dims2, coords2, func(int, []int) float64 { return 100 }),
			Units: "W m-2",
		},
		"frazil_3d": {
			Field: field(t, tt, dims3, coords3, func(int, []int) float64 { return 1 }),
			Units: "W/m^2",
		},
	}
	path := filepath.Join(dir, "ocean.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := ncio.Write(w, vars); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	Root.SetOutput(&buf)
	defer Root.SetOutput(nil)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "climindex v" + climindex.Version; !strings.Contains(buf.String(), want) {
		t.Errorf("have %q, want %q", buf.String(), want)
	}
}

func TestIndexCmd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "indices.nc")
	Cfg.Set("input", writeSST(t, dir))
	Cfg.Set("var", "sst")
	Cfg.Set("output", out)
	Cfg.Set("plot", filepath.Join(dir, "indices.png"))
	Cfg.Set("custom", "")
	Cfg.Set("indices", []string{"DMI", "nino34", "WIO_1"})
	Root.SetArgs([]string{"index"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"DMI", "NINO3.4", "WIO_1"} {
		f, err := ncio.ReadField(out, name)
		if err != nil {
			t.Fatal(err)
		}
		if f.Len() != 120 {
			t.Errorf("%s: have %d samples, want 120", name, f.Len())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "indices.png")); err != nil {
		t.Error(err)
	}
}

func TestIndexCustom(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(custom, []byte(`
[Regions.WEST]
LatMin = -10.0
LatMax = 10.0
LonMin = 50.0
LonMax = 70.0

[[Index]]
Name = "dipole"
Expression = "WEST - SETIO"
`), 0644); err != nil {
		t.Fatal(err)
	}
	input := writeSST(t, dir)
	out := filepath.Join(dir, "custom.nc")
	if err := Index(context.Background(), input, "sst", out, "", custom, []string{"dipole", "DMI"}, climindex.NewCache(10)); err != nil {
		t.Fatal(err)
	}
	c, err := ncio.ReadField(out, "dipole")
	if err != nil {
		t.Fatal(err)
	}
	d, err := ncio.ReadField(out, "DMI")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range c.Data.Elements {
		if math.Abs(v-d.Data.Elements[i]) > 1e-5 {
			t.Errorf("sample %d: custom index %g != DMI %g", i, v, d.Data.Elements[i])
		}
	}
}

func TestEvents(t *testing.T) {
	dir := t.TempDir()
	input := writeSST(t, dir)
	report := filepath.Join(dir, "events.xlsx")
	cache := climindex.NewCache(10)
	for _, test := range []struct {
		mode   string
		season climindex.Season
		year   int
	}{
		{mode: "IOD", season: climindex.SON, year: 1994},
		{mode: "ENSO", season: climindex.DJF, year: 1997},
	} {
		neg, pos, err := Events(context.Background(), input, "sst", test.mode, report, cache)
		if err != nil {
			t.Fatal(err)
		}
		if pos.Season != test.season || neg.Season != test.season {
			t.Errorf("%s: have season %v, want %v", test.mode, pos.Season, test.season)
		}
		found := false
		for _, y := range pos.Years() {
			found = found || y == test.year
		}
		if !found {
			t.Errorf("%s: %d not among the positive event years %v", test.mode, test.year, pos.Years())
		}
		if _, err := os.Stat(report); err != nil {
			t.Error(err)
		}
	}
}

func TestEventsCmd(t *testing.T) {
	dir := t.TempDir()
	Cfg.Set("input", writeSST(t, dir))
	Cfg.Set("var", "sst")
	Cfg.Set("mode", "bad")
	Cfg.Set("report", "")
	Root.SetArgs([]string{"events"})
	if err := Root.Execute(); err == nil {
		t.Error("invalid mode should be an error")
	}
	Cfg.Set("mode", "IOD")
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestCompositeFiles(t *testing.T) {
	pos, neg, err := CompositeFiles("out/comp.nc", "enso")
	if err != nil {
		t.Fatal(err)
	}
	if pos != "out/comp_elnino.nc" || neg != "out/comp_lanina.nc" {
		t.Errorf("have %s and %s", pos, neg)
	}
	if _, _, err := CompositeFiles("comp.nc", "MJO"); err == nil {
		t.Error("unknown mode should be an error")
	}
}

func TestCompositeCmd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "comp.nc")
	Cfg.Set("input", writeSST(t, dir))
	Cfg.Set("var", "sst")
	Cfg.Set("companion", "")
	Cfg.Set("companionvar", "")
	Cfg.Set("mode", "IOD")
	Cfg.Set("output", out)
	Root.SetArgs([]string{"composite"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	posFile, negFile, err := CompositeFiles(out, "IOD")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{posFile, negFile} {
		c, err := ncio.ReadField(f, "sst")
		if err != nil {
			t.Fatal(err)
		}
		if c.Len()%4 != 0 {
			t.Errorf("%s: %d time steps is not a whole number of years", f, c.Len())
		}
	}
}

func TestSeasonalCmd(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "son.nc")
	Cfg.Set("input", writeSST(t, dir))
	Cfg.Set("var", "sst")
	Cfg.Set("season", "SON")
	Cfg.Set("output", out)
	Root.SetArgs([]string{"seasonal"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	f, err := ncio.ReadField(out, "sst")
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 10 {
		t.Errorf("have %d years, want 10", f.Len())
	}
	Cfg.Set("season", "autumn")
	if err := Root.Execute(); err == nil {
		t.Error("invalid season should be an error")
	}
}

func TestOceanDiagnostics(t *testing.T) {
	dir := t.TempDir()
	input := writeOcean(t, dir)

	z20 := filepath.Join(dir, "z20.nc")
	if err := Z20(input, "temp", 20, z20); err != nil {
		t.Fatal(err)
	}
	checkAll(t, z20, "z20", 2*(300-293.15), 1e-3)

	qnet := filepath.Join(dir, "qnet.nc")
	if err := QNet(input, "net_sfc_heating", []string{"frazil_3d"}, qnet); err != nil {
		t.Fatal(err)
	}
	checkAll(t, qnet, "qnet", 104, 1e-6)
	if err := QNet(input, "temp", nil, qnet); err == nil {
		t.Error("a temperature is not a heat flux")
	}

	level := filepath.Join(dir, "level.nc")
	if err := Level(input, "temp", 105, true, level); err != nil {
		t.Fatal(err)
	}
	checkAll(t, level, "temp", 250-climindex.ZeroCelsius, 1e-4)

	extract := filepath.Join(dir, "extract.nc")
	if err := Extract(input, "net_sfc_heating", "shflux", extract); err != nil {
		t.Fatal(err)
	}
	checkAll(t, extract, "shflux", 100, 0)
}

// checkAll checks that every value of variable in file is want.
func checkAll(t *testing.T, file, variable string, want, tolerance float64) {
	t.Helper()
	f, err := ncio.ReadField(file, variable)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range f.Data.Elements {
		if math.Abs(v-want) > tolerance {
			t.Errorf("%s element %d: have %g, want %g", variable, i, v, want)
		}
	}
}

func TestLoadCustomIndices(t *testing.T) {
	dir := t.TempDir()
	write := func(name, s string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(s), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	good := write("good.toml", `
[Regions.NTA]
LatMin = -5.0
LatMax = 5.0
LonMin = 300.0
LonMax = 340.0

[[Index]]
Name = "NTA"
Expression = "NTA"
Raw = true
`)
	c, err := LoadCustomIndices(good)
	if err != nil {
		t.Fatal(err)
	}
	if len(c) != 1 || c[0].Name != "NTA" || !c[0].Raw {
		t.Fatalf("have %+v", c)
	}
	if r := c[0].Regions["NTA"]; r.Min.X != 300 || r.Max.Y != 5 {
		t.Errorf("region: have %v", r)
	}

	for name, s := range map[string]string{
		"unknown.toml":  "[[Index]]\nName = \"x\"\nExpression = \"NINO34\"\nColor = \"red\"\n",
		"inverted.toml": "[Regions.X]\nLatMin = 5.0\nLatMax = -5.0\n",
		"noexpr.toml":   "[[Index]]\nName = \"x\"\n",
	} {
		if _, err := LoadCustomIndices(write(name, s)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("empty output file should be an error")
	}
	if _, err := checkOutputFile(filepath.Join(t.TempDir(), "missing", "x.nc")); err == nil {
		t.Error("missing directory should be an error")
	}
	os.Setenv("CLIMINDEX_TEST_DIR", t.TempDir())
	defer os.Unsetenv("CLIMINDEX_TEST_DIR")
	f, err := checkOutputFile("$CLIMINDEX_TEST_DIR/x.nc")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(f, "$") {
		t.Errorf("variable not expanded: %s", f)
	}
}
