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

// tropTheta is a synthetic tropopause potential temperature profile whose
// latitude derivative has a strict extremum at ±30°: a local maximum in
// the southern hemisphere and a local minimum in the northern, matching the
// detection convention.
func tropTheta(lat float64) float64 {
	if lat < 0 {
		return 350 - 0.001*math.Pow(lat+30, 3)/3
	}
	return 350 + 0.001*math.Pow(lat-30, 3)/3
}

// pvGradField builds a field where the potential vorticity crosses
// ±2 PVU exactly where the isentropic level equals tropTheta(lat), so the
// interpolated tropopause recovers tropTheta to rounding error. The zonal
// wind is constant in the vertical, peaking at ±30°. Samples at times with
// missing set are all-missing.
func pvGradField(missing map[int]bool) *Field {
	times := []time.Time{
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, time.January, 2, 0, 0, 0, 0, time.UTC),
	}
	lev := make([]float64, 11) // 300-400 K
	for k := range lev {
		lev[k] = 300 + 10*float64(k)
	}
	lat := make([]float64, 71) // -87.5-87.5 degrees
	for j := range lat {
		lat[j] = -87.5 + 2.5*float64(j)
	}
	lon := []float64{0, 120, 240}
	f := NewField(times, lev, lat, lon, "K")

	ipv := sparse.ZerosDense(2, 11, 71, 3)
	uwnd := sparse.ZerosDense(2, 11, 71, 3)
	for t := range times {
		for k := range lev {
			for j, phi := range lat {
				sign := 1.0
				if phi < 0 {
					sign = -1
				}
				pv := sign * 2e-6 * (1 + 0.01*(lev[k]-tropTheta(phi)))
				if missing[t] {
					pv = math.NaN()
				}
				u := 40 - 0.5*math.Abs(math.Abs(phi)-30)
				for i := range lon {
					cell := ipv.Index1d(t, k, j, i)
					ipv.Elements[cell] = pv
					uwnd.Elements[cell] = u
				}
			}
		}
	}
	axes := []Axis{AxisTime, AxisLev, AxisLat, AxisLon}
	if err := f.AddVariable(VarIPV, axes, ipv); err != nil {
		panic(err)
	}
	if err := f.AddVariable(VarUwnd, axes, uwnd); err != nil {
		panic(err)
	}
	return f
}

func pvGradConfig() Config {
	c := validConfig()
	c.FitDeg = 4
	return c
}

func TestPVGradFindJet(t *testing.T) {
	const tol = 1e-6
	for _, basis := range []string{"cheby", "poly", "leg"} {
		cfg := pvGradConfig()
		cfg.Poly = basis
		m, err := NewPVGrad(cfg, pvGradField(nil), nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range []struct {
			shemis  bool
			wantLat float64
		}{
			{true, -30},
			{false, 30},
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
			theta := out.Data["theta_"+tag]
			intens := out.Data["intens_"+tag]
			for tm := 0; tm < 2; tm++ {
				if math.Abs(lat.Elements[tm]-c.wantLat) > tol {
					t.Errorf("%s %s t=%d: want latitude %g but have %g",
						basis, tag, tm, c.wantLat, lat.Elements[tm])
				}
				if math.Abs(theta.Elements[tm]-350) > tol {
					t.Errorf("%s %s t=%d: want theta 350 but have %g",
						basis, tag, tm, theta.Elements[tm])
				}
				if math.Abs(intens.Elements[tm]-40) > tol {
					t.Errorf("%s %s t=%d: want intensity 40 but have %g",
						basis, tag, tm, intens.Elements[tm])
				}
			}
		}
	}
}

// TestPVGradMissingSample checks that an all-missing time sample yields NaN
// instead of an error or a spurious jet.
func TestPVGradMissingSample(t *testing.T) {
	m, err := NewPVGrad(pvGradConfig(), pvGradField(map[int]bool{1: true}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.FindJet(true); err != nil {
		t.Fatal(err)
	}
	lat := m.Output().Data["lat_sh"]
	if math.IsNaN(lat.Elements[0]) {
		t.Error("t=0: want a jet but have NaN")
	}
	if !math.IsNaN(lat.Elements[1]) {
		t.Errorf("t=1: want NaN but have %g", lat.Elements[1])
	}
}

// TestPVGradSequentialMatch checks that the batched and sequential paths
// agree bitwise.
func TestPVGradSequentialMatch(t *testing.T) {
	outs := make([]*Output, 2)
	for i, sequential := range []bool{false, true} {
		cfg := pvGradConfig()
		cfg.Sequential = sequential
		m, err := NewPVGrad(cfg, pvGradField(map[int]bool{1: true}), nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, shemis := range []bool{true, false} {
			if err := m.FindJet(shemis); err != nil {
				t.Fatal(err)
			}
		}
		outs[i] = m.Output()
	}
	for key, batched := range outs[0].Data {
		sequential := outs[1].Data[key]
		if sequential == nil {
			t.Fatalf("%s: missing from sequential output", key)
		}
		for i := range batched.Elements {
			b, s := batched.Elements[i], sequential.Elements[i]
			if b != s && !(math.IsNaN(b) && math.IsNaN(s)) {
				t.Errorf("%s element %d: batched %g != sequential %g", key, i, b, s)
			}
		}
	}
}
