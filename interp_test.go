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

	"github.com/ctessum/sparse"
)

func TestVinterpColumn(t *testing.T) {
	const tol = 1e-12
	nan := math.NaN()
	cases := []struct {
		name   string
		vals   []float64
		cross  []float64
		target float64
		want   float64
	}{
		{
			name:   "midpoint",
			vals:   []float64{0, 10, 20},
			cross:  []float64{1, 2, 3},
			target: 1.5,
			want:   5,
		},
		{
			name:   "on grid point",
			vals:   []float64{0, 10, 20},
			cross:  []float64{1, 2, 3},
			target: 2,
			want:   10,
		},
		{
			name:   "first crossing wins",
			vals:   []float64{0, 10, 20, 30},
			cross:  []float64{1, 3, 1, 3},
			target: 2,
			want:   5,
		},
		{
			name:   "nan levels skipped",
			vals:   []float64{0, 10, 20, 30},
			cross:  []float64{nan, nan, 1, 3},
			target: 2,
			want:   25,
		},
		{
			name:   "degenerate bracket",
			vals:   []float64{0, 10, 20},
			cross:  []float64{2, 2, 3},
			target: 2,
			want:   0,
		},
		{
			name:   "no crossing",
			vals:   []float64{0, 10, 20},
			cross:  []float64{1, 2, 3},
			target: 5,
			want:   nan,
		},
		{
			name:   "all missing",
			vals:   []float64{0, 10, 20},
			cross:  []float64{nan, nan, nan},
			target: 2,
			want:   nan,
		},
	}
	for _, c := range cases {
		have := vinterpColumn(c.vals, c.cross, c.target)
		if math.IsNaN(c.want) {
			if !math.IsNaN(have) {
				t.Errorf("%s: want NaN but have %g", c.name, have)
			}
			continue
		}
		if math.Abs(have-c.want) > tol {
			t.Errorf("%s: want %g but have %g", c.name, c.want, have)
		}
	}
}

func TestLowestValid(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		col      []float64
		lowFirst bool
		want     float64
	}{
		{[]float64{1, 2, 3}, true, 1},
		{[]float64{1, 2, 3}, false, 3},
		{[]float64{nan, 2, 3}, true, 2},
		{[]float64{1, 2, nan}, false, 2},
		{[]float64{nan, nan, nan}, true, nan},
		{[]float64{math.Inf(1), 2, 3}, true, 2},
	}
	for i, c := range cases {
		have := lowestValid(c.col, c.lowFirst)
		if math.IsNaN(c.want) {
			if !math.IsNaN(have) {
				t.Errorf("case %d: want NaN but have %g", i, have)
			}
			continue
		}
		if have != c.want {
			t.Errorf("case %d: want %g but have %g", i, c.want, have)
		}
	}
}

// TestVInterpSequentialMatch checks that the batched and sequential
// evaluation paths produce identical results.
func TestVInterpSequentialMatch(t *testing.T) {
	nt, nk, nj, ni := 3, 5, 4, 2
	vals := sparse.ZerosDense(nt, nk, nj, ni)
	cross := sparse.ZerosDense(nt, nk, nj, ni)
	for i := range vals.Elements {
		vals.Elements[i] = float64(i % 17)
		cross.Elements[i] = float64(i % 7)
	}
	// Puncture the crossing field with missing values.
	for i := 0; i < len(cross.Elements); i += 11 {
		cross.Elements[i] = math.NaN()
	}
	batched := VInterp(vals, cross, 3.5, false)
	sequential := VInterp(vals, cross, 3.5, true)
	for i := range batched.Elements {
		b, s := batched.Elements[i], sequential.Elements[i]
		if b != s && !(math.IsNaN(b) && math.IsNaN(s)) {
			t.Fatalf("element %d: batched %g != sequential %g", i, b, s)
		}
	}
}

func TestVInterpCoord(t *testing.T) {
	const tol = 1e-12
	lev := []float64{300, 310, 320}
	cross := sparse.ZerosDense(1, 3, 1, 1)
	cross.Elements[0] = 1
	cross.Elements[1] = 2
	cross.Elements[2] = 4
	out := VInterpCoord(lev, cross, 3, true)
	if want := 315.0; math.Abs(out.Elements[0]-want) > tol {
		t.Errorf("want %g but have %g", want, out.Elements[0])
	}
}
