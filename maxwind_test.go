/*
Copyright © 2018 the STJ authors.
This file is part of STJ.

STJ is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

STJ is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with STJ.  If not, see <http://www.gnu.org/licenses/>.
*/

package stj

import (
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
)

// maxWindField builds a single-level wind field peaking exactly at the
// ±25° grid points. Samples at times with missing set are all-missing.
func maxWindField(missing map[int]bool) *Field {
	times := []time.Time{
		time.Date(2000, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, time.June, 2, 0, 0, 0, 0, time.UTC),
	}
	lev := []float64{85000, 25000, 10000} // Pa
	lat := make([]float64, 71)
	for j := range lat {
		lat[j] = -87.5 + 2.5*float64(j)
	}
	lon := []float64{0, 90, 180, 270}
	f := NewField(times, lev, lat, lon, "Pa")

	uwnd := sparse.ZerosDense(2, 3, 71, 4)
	for t := range times {
		for k := range lev {
			for j, phi := range lat {
				u := 45 - 0.5*math.Abs(math.Abs(phi)-25)
				if k != 1 {
					u = 0 // the peak only exists on the search level
				}
				if missing[t] {
					u = math.NaN()
				}
				for i := range lon {
					uwnd.Elements[uwnd.Index1d(t, k, j, i)] = u
				}
			}
		}
	}
	if err := f.AddVariable(VarUwnd, []Axis{AxisTime, AxisLev, AxisLat, AxisLon}, uwnd); err != nil {
		panic(err)
	}
	return f
}

func TestMaxWindFindJet(t *testing.T) {
	const tol = 1e-12
	m, err := NewMaxWind(validConfig(), maxWindField(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		shemis  bool
		wantLat float64
	}{
		{true, -25},
		{false, 25},
	} {
		if err := m.FindJet(c.shemis); err != nil {
			t.Fatal(err)
		}
		tag := "nh"
		if c.shemis {
			tag = "sh"
		}
		out := m.Output()
		lat := out.Data["lat_"+tag]
		intens := out.Data["intens_"+tag]
		for tm := 0; tm < 2; tm++ {
			if math.Abs(lat.Elements[tm]-c.wantLat) > tol {
				t.Errorf("%s t=%d: want latitude %g but have %g", tag, tm, c.wantLat, lat.Elements[tm])
			}
			if math.Abs(intens.Elements[tm]-45) > tol {
				t.Errorf("%s t=%d: want intensity 45 but have %g", tag, tm, intens.Elements[tm])
			}
		}
	}
}

func TestMaxWindMissingSample(t *testing.T) {
	m, err := NewMaxWind(validConfig(), maxWindField(map[int]bool{0: true}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.FindJet(false); err != nil {
		t.Fatal(err)
	}
	lat := m.Output().Data["lat_nh"]
	if !math.IsNaN(lat.Elements[0]) {
		t.Errorf("t=0: want NaN but have %g", lat.Elements[0])
	}
	if math.IsNaN(lat.Elements[1]) {
		t.Error("t=1: want a jet but have NaN")
	}
}

// TestMaxWindAbsentLevel checks that a search level the file does not carry
// is a configuration error rather than an interpolation target.
func TestMaxWindAbsentLevel(t *testing.T) {
	cfg := validConfig()
	cfg.PresLevel = 20000
	m, err := NewMaxWind(cfg, maxWindField(nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.FindJet(false); err == nil {
		t.Error("want error for absent level")
	}
}
