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

	"gonum.org/v1/gonum/floats"
)

func TestParseBasis(t *testing.T) {
	cases := []struct {
		name string
		want Basis
		err  bool
	}{
		{"cheby", Chebyshev, false},
		{"cby", Chebyshev, false},
		{"cheb", Chebyshev, false},
		{"Chebyshev", Chebyshev, false},
		{"leg", Legendre, false},
		{"legen", Legendre, false},
		{"LEGENDRE", Legendre, false},
		{"poly", Plain, false},
		{"polynomial", Plain, false},
		{"spline", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		have, err := ParseBasis(c.name)
		if c.err {
			if err == nil {
				t.Errorf("%q: want error but have %v", c.name, have)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", c.name, err)
		} else if have != c.want {
			t.Errorf("%q: want %v but have %v", c.name, c.want, have)
		}
	}
}

// TestDerivAtBases checks that all three bases take the same derivative of
// the same samples: y = x³ - 2x sampled exactly, so dy/dx = 3x² - 2 should
// be recovered to rounding error regardless of basis.
func TestDerivAtBases(t *testing.T) {
	const tol = 1e-9
	x := make([]float64, 21)
	y := make([]float64, 21)
	for i := range x {
		x[i] = -1 + 0.1*float64(i)
		y[i] = x[i]*x[i]*x[i] - 2*x[i]
	}
	for _, basis := range []Basis{Plain, Chebyshev, Legendre} {
		p := PolyFitter{Basis: basis, Deg: 4}
		deriv, degenerate := p.DerivAt(x, y)
		if degenerate {
			t.Fatalf("%v: unexpected degenerate fit", basis)
		}
		for i, xi := range x {
			want := 3*xi*xi - 2
			if math.Abs(deriv[i]-want) > tol {
				t.Errorf("%v: deriv(%g): want %g but have %g", basis, xi, want, deriv[i])
			}
		}
	}
}

// TestDerivCoeffs checks the basis-specific derivative recurrences against
// hand-computed results.
func TestDerivCoeffs(t *testing.T) {
	const tol = 1e-12
	cases := []struct {
		basis Basis
		c     []float64
		want  []float64
	}{
		// d/dx(x + x²) = 1 + 2x.
		{Plain, []float64{0, 1, 1}, []float64{1, 2}},
		// d/dx T₂ = 4T₁.
		{Chebyshev, []float64{0, 0, 1}, []float64{0, 4}},
		// d/dx T₃ = 3T₀ + 6T₂.
		{Chebyshev, []float64{0, 0, 0, 1}, []float64{3, 0, 6}},
		// d/dx P₂ = 3P₁.
		{Legendre, []float64{0, 0, 1}, []float64{0, 3}},
		// d/dx P₃ = P₀ + 5P₂.
		{Legendre, []float64{0, 0, 0, 1}, []float64{1, 0, 5}},
	}
	for _, c := range cases {
		p := PolyFitter{Basis: c.basis, Deg: len(c.c) - 1}
		have := p.Deriv(c.c, 1)
		if len(have) != len(c.want) {
			t.Errorf("%v %v: want %v but have %v", c.basis, c.c, c.want, have)
			continue
		}
		for i := range have {
			if math.Abs(have[i]-c.want[i]) > tol {
				t.Errorf("%v %v: want %v but have %v", c.basis, c.c, c.want, have)
				break
			}
		}
	}
}

func TestFitMissingSamples(t *testing.T) {
	const tol = 1e-9
	x := []float64{-2, -1, 0, 1, 2}
	// y = 1 + 2x with a missing sample; the fit should ignore it.
	y := []float64{-3, math.NaN(), 1, 3, 5}
	p := PolyFitter{Basis: Plain, Deg: 1}
	c, degenerate := p.Fit(x, y)
	if degenerate {
		t.Fatal("unexpected degenerate fit")
	}
	if !floats.EqualApprox(c, []float64{1, 2}, tol) {
		t.Errorf("want [1 2] but have %v", c)
	}
}

func TestFitAllMissing(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2}
	y := []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	p := PolyFitter{Basis: Chebyshev, Deg: 3}
	c, degenerate := p.Fit(x, y)
	if !degenerate {
		t.Error("want degenerate fit")
	}
	if len(c) != p.Deg+1 {
		t.Errorf("want %d coefficients but have %d", p.Deg+1, len(c))
	}
	for i, v := range c {
		if v != 0 {
			t.Errorf("coefficient %d: want 0 but have %g", i, v)
		}
	}
	// The derivative of a degenerate fit is exactly zero everywhere.
	deriv, degenerate := p.DerivAt(x, y)
	if !degenerate {
		t.Error("want degenerate derivative")
	}
	for i, v := range deriv {
		if v != 0 {
			t.Errorf("derivative %d: want 0 but have %g", i, v)
		}
	}
}

// TestFitFewSamples checks that a fit with fewer valid samples than
// coefficients reduces the fitted degree instead of failing.
func TestFitFewSamples(t *testing.T) {
	const tol = 1e-9
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, math.NaN(), math.NaN(), math.NaN()}
	p := PolyFitter{Basis: Plain, Deg: 4}
	c, degenerate := p.Fit(x, y)
	if degenerate {
		t.Fatal("unexpected degenerate fit")
	}
	want := []float64{1, 2, 0, 0, 0}
	if !floats.EqualApprox(c, want, tol) {
		t.Errorf("want %v but have %v", want, c)
	}
}

func TestEval(t *testing.T) {
	const tol = 1e-12
	// T₀ + 2T₁ + 3T₂ at x: 1 + 2x + 3(2x²-1).
	p := PolyFitter{Basis: Chebyshev, Deg: 2}
	for _, x := range []float64{-1, -0.3, 0, 0.5, 1} {
		want := 1 + 2*x + 3*(2*x*x-1)
		if have := p.Eval(x, []float64{1, 2, 3}); math.Abs(have-want) > tol {
			t.Errorf("chebyshev at %g: want %g but have %g", x, want, have)
		}
	}
	// P₀ + 2P₁ + 3P₂ at x: 1 + 2x + 3(3x²-1)/2.
	p = PolyFitter{Basis: Legendre, Deg: 2}
	for _, x := range []float64{-1, -0.3, 0, 0.5, 1} {
		want := 1 + 2*x + 3*(3*x*x-1)/2
		if have := p.Eval(x, []float64{1, 2, 3}); math.Abs(have-want) > tol {
			t.Errorf("legendre at %g: want %g but have %g", x, want, have)
		}
	}
}
