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
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Basis selects the polynomial basis used for fitting the tropopause
// potential temperature.
type Basis int

// The supported polynomial bases.
const (
	Plain Basis = iota
	Chebyshev
	Legendre
)

func (b Basis) String() string {
	switch b {
	case Plain:
		return "polynomial"
	case Chebyshev:
		return "chebyshev"
	case Legendre:
		return "legendre"
	}
	return fmt.Sprintf("Basis(%d)", int(b))
}

// ParseBasis resolves a configured basis name to a Basis. The recognized
// spellings follow the original configuration format; anything else is a
// configuration error.
func ParseBasis(name string) (Basis, error) {
	switch strings.ToLower(name) {
	case "cheby", "cby", "cheb", "chebyshev":
		return Chebyshev, nil
	case "leg", "legen", "legendre":
		return Legendre, nil
	case "poly", "polynomial":
		return Plain, nil
	}
	return 0, fmt.Errorf("stj: unknown polynomial basis %q; want chebyshev, legendre, or polynomial", name)
}

// PolyFitter fits polynomials of a fixed basis and degree to
// (latitude, value) samples and evaluates their derivatives.
type PolyFitter struct {
	Basis Basis
	Deg   int
}

// Fit least-squares fits a degree-Deg polynomial to the samples (x, y),
// ignoring samples where y is not finite. The returned coefficients are in
// ascending basis order (length Deg+1). If no valid samples remain, or the
// solve fails, an all-zero coefficient vector is returned with degenerate
// set to true so callers can short-circuit to "no jet found".
func (p PolyFitter) Fit(x, y []float64) (coeffs []float64, degenerate bool) {
	var xv, yv []float64
	for i, v := range y {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xv = append(xv, x[i])
			yv = append(yv, v)
		}
	}
	coeffs = make([]float64, p.Deg+1)
	if len(xv) == 0 {
		return coeffs, true
	}
	// With fewer samples than coefficients the QR solve would be
	// underdetermined, so fit the largest degree the samples support and
	// leave the remaining coefficients zero.
	ncoef := p.Deg + 1
	if len(xv) < ncoef {
		ncoef = len(xv)
	}
	a := mat.NewDense(len(xv), ncoef, nil)
	for i, xi := range xv {
		row := p.basisRow(xi, ncoef)
		a.SetRow(i, row)
	}
	b := mat.NewVecDense(len(yv), yv)
	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return make([]float64, p.Deg+1), true
	}
	for i := 0; i < ncoef; i++ {
		coeffs[i] = c.AtVec(i)
	}
	return coeffs, false
}

// basisRow evaluates the first n basis functions at x.
func (p PolyFitter) basisRow(x float64, n int) []float64 {
	row := make([]float64, n)
	switch p.Basis {
	case Plain:
		v := 1.0
		for k := 0; k < n; k++ {
			row[k] = v
			v *= x
		}
	case Chebyshev:
		for k := 0; k < n; k++ {
			switch k {
			case 0:
				row[k] = 1
			case 1:
				row[k] = x
			default:
				row[k] = 2*x*row[k-1] - row[k-2]
			}
		}
	case Legendre:
		for k := 0; k < n; k++ {
			switch k {
			case 0:
				row[k] = 1
			case 1:
				row[k] = x
			default:
				fk := float64(k)
				row[k] = ((2*fk-1)*x*row[k-1] - (fk-1)*row[k-2]) / fk
			}
		}
	}
	return row
}

// Deriv returns the coefficients of the order-th derivative of the
// polynomial with coefficients c, in the same basis.
func (p PolyFitter) Deriv(c []float64, order int) []float64 {
	out := append([]float64(nil), c...)
	for o := 0; o < order; o++ {
		out = p.deriv1(out)
	}
	return out
}

func (p PolyFitter) deriv1(c []float64) []float64 {
	n := len(c) - 1
	if n < 1 {
		return []float64{0}
	}
	c = append([]float64(nil), c...)
	der := make([]float64, n)
	switch p.Basis {
	case Plain:
		for k := 1; k <= n; k++ {
			der[k-1] = float64(k) * c[k]
		}
	case Chebyshev:
		for j := n; j > 2; j-- {
			der[j-1] = 2 * float64(j) * c[j]
			c[j-2] += float64(j) * c[j] / float64(j-2)
		}
		if n > 1 {
			der[1] = 4 * c[2]
		}
		der[0] = c[1]
	case Legendre:
		for j := n; j > 2; j-- {
			der[j-1] = (2*float64(j) - 1) * c[j]
			c[j-2] += c[j]
		}
		if n > 1 {
			der[1] = 3 * c[2]
		}
		der[0] = c[1]
	}
	return der
}

// Eval evaluates the polynomial with coefficients c at x.
func (p PolyFitter) Eval(x float64, c []float64) float64 {
	switch p.Basis {
	case Plain:
		// Horner's method.
		v := 0.0
		for k := len(c) - 1; k >= 0; k-- {
			v = v*x + c[k]
		}
		return v
	case Chebyshev:
		// Clenshaw recurrence.
		var b1, b2 float64
		for k := len(c) - 1; k >= 1; k-- {
			b1, b2 = c[k]+2*x*b1-b2, b1
		}
		return c[0] + x*b1 - b2
	default: // Legendre
		v := 0.0
		var pk, pk1, pk2 float64
		for k := range c {
			switch k {
			case 0:
				pk = 1
			case 1:
				pk = x
			default:
				fk := float64(k)
				pk = ((2*fk-1)*x*pk1 - (fk-1)*pk2) / fk
			}
			v += c[k] * pk
			pk2, pk1 = pk1, pk
		}
		return v
	}
}

// DerivAt fits a polynomial to (x, y), differentiates it once, and
// evaluates the derivative at every x sample, including samples where y was
// missing, so degenerate and valid results have identical shape. degenerate
// reports an all-zero fit (no valid samples): the derivative is then
// exactly zero everywhere.
func (p PolyFitter) DerivAt(x, y []float64) (deriv []float64, degenerate bool) {
	coeffs, degenerate := p.Fit(x, y)
	dc := p.Deriv(coeffs, 1)
	deriv = make([]float64, len(x))
	if degenerate {
		return deriv, true
	}
	for i, xi := range x {
		deriv[i] = p.Eval(xi, dc)
	}
	return deriv, false
}
