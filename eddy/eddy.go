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

// Package eddy computes kinetic eddy-energy quantities from gridded wind
// components. It provides the meridional eddy-momentum-flux divergence
// used by the Kang–Polvani jet metric.
package eddy

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// earthRadius is the mean Earth radius [m].
const earthRadius = 6.371e6

// Calculator computes eddy quantities on a latitude/longitude grid.
// The zero value is ready to use.
type Calculator struct {
	// EarthRadius is the planetary radius [m]; zero means Earth's.
	EarthRadius float64
}

// FluxDiv computes the zonal-mean meridional eddy-momentum-flux divergence
//
//	1/(a cos²φ) ∂(cos²φ · [u'v'])/∂φ
//
// where primes are departures from the zonal mean and brackets the zonal
// mean itself. u and v are (time, lat, lon) wind components on one level;
// the result is (time, lat). Missing (NaN) samples are excluded from the
// zonal means.
func (c *Calculator) FluxDiv(u, v *sparse.DenseArray, lat []float64) (*sparse.DenseArray, error) {
	if len(u.Shape) != 3 || len(v.Shape) != 3 {
		return nil, fmt.Errorf("eddy: FluxDiv wants 3-d (time, lat, lon) winds; got %d-d and %d-d",
			len(u.Shape), len(v.Shape))
	}
	for d := 0; d < 3; d++ {
		if u.Shape[d] != v.Shape[d] {
			return nil, fmt.Errorf("eddy: wind component shapes differ in dimension %d (%d vs %d)",
				d, u.Shape[d], v.Shape[d])
		}
	}
	if u.Shape[1] != len(lat) {
		return nil, fmt.Errorf("eddy: %d latitude points given for %d grid rows", len(lat), u.Shape[1])
	}

	a := c.EarthRadius
	if a == 0 {
		a = earthRadius
	}
	nt, nl, nx := u.Shape[0], u.Shape[1], u.Shape[2]

	phi := make([]float64, nl)
	cos2 := make([]float64, nl)
	for j, l := range lat {
		phi[j] = l * math.Pi / 180
		cosphi := math.Cos(phi[j])
		cos2[j] = cosphi * cosphi
	}

	out := sparse.ZerosDense(nt, nl)
	urow := make([]float64, nx)
	vrow := make([]float64, nx)
	flux := make([]float64, nl)
	for t := 0; t < nt; t++ {
		// cos²φ-weighted zonal-mean eddy momentum flux.
		for j := 0; j < nl; j++ {
			for i := 0; i < nx; i++ {
				cell := u.Index1d(t, j, i)
				urow[i] = u.Elements[cell]
				vrow[i] = v.Elements[cell]
			}
			um, vm := zonalMean(urow), zonalMean(vrow)
			var sum float64
			var n int
			for i := 0; i < nx; i++ {
				f := (urow[i] - um) * (vrow[i] - vm)
				if !math.IsNaN(f) {
					sum += f
					n++
				}
			}
			if n == 0 {
				flux[j] = math.NaN()
			} else {
				flux[j] = sum / float64(n) * cos2[j]
			}
		}
		// Meridional derivative by central differences, one-sided at
		// the poleward and equatorward ends.
		for j := 0; j < nl; j++ {
			jm, jp := j-1, j+1
			if jm < 0 {
				jm = 0
			}
			if jp > nl-1 {
				jp = nl - 1
			}
			dF := (flux[jp] - flux[jm]) / (phi[jp] - phi[jm])
			out.Elements[out.Index1d(t, j)] = dF / (a * cos2[j])
		}
	}
	return out, nil
}

// zonalMean is the mean of the finite elements of x, NaN if none.
func zonalMean(x []float64) float64 {
	var sum float64
	var n int
	for _, v := range x {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
