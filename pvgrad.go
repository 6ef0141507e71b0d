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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// PVGrad locates the subtropical jet as an extremum of the latitude
// derivative of the dynamical-tropopause potential temperature (potential
// temperature on a fixed potential vorticity surface), disambiguating
// between candidates by the wind shear between that surface and the lowest
// valid wind level.
type PVGrad struct {
	metricBase
	fitter PolyFitter
	pvLev  float64 // PVU
}

// NewPVGrad creates a PV-gradient metric over data. The field must carry
// isentropic potential vorticity and zonal wind on isentropic levels.
// Unrecognized basis names in the configuration fail here, never at
// computation time.
func NewPVGrad(cfg Config, data *Field, log *logrus.Logger) (*PVGrad, error) {
	basis, err := ParseBasis(cfg.Poly)
	if err != nil {
		return nil, err
	}
	if cfg.FitDeg < 1 {
		return nil, fmt.Errorf("stj: PVGrad: fit_deg must be a positive integer; got %d", cfg.FitDeg)
	}
	p := &PVGrad{
		metricBase: newMetricBase("PVGrad", cfg, data, log),
		fitter:     PolyFitter{Basis: basis, Deg: cfg.FitDeg},
		pvLev:      cfg.PVValue,
	}
	if _, err := p.variable(VarIPV); err != nil {
		return nil, err
	}
	if _, err := p.variable(VarUwnd); err != nil {
		return nil, err
	}
	data.Relayout()
	return p, nil
}

// FindJet implements Metric. The PV surface is the configured magnitude
// signed for the hemisphere, in the grid's native PV units (the
// configuration is in PVU).
func (p *PVGrad) FindJet(shemis bool) error {
	var pvLev float64
	if shemis && p.pvLev < 0 || !shemis && p.pvLev > 0 {
		pvLev = p.pvLev * 1e-6
	} else {
		pvLev = -p.pvLev * 1e-6
	}

	w := p.hemis(shemis)
	j0, j1, err := selectLatRange(p.data.Lat, w.hemiLo, w.hemiHi)
	if err != nil {
		return err
	}

	p.log.Infof("computing theta/uwnd on %.1f PVU for %s", pvLev*1e6, w.tag)
	thetaXPV, uwndXPV, ushear, err := p.isolatePV(pvLev, j0, j1)
	if err != nil {
		return err
	}

	hlat := p.data.Lat[j0 : j1+1]
	jj0, jj1, err := selectLatRange(hlat, w.bandLo, w.bandHi)
	if err != nil {
		return err
	}
	band := hlat[jj0 : jj1+1]

	nt, nx := len(p.data.Time), len(p.data.Lon)
	jetLat := sparse.ZerosDense(nt, nx)
	jetTheta := sparse.ZerosDense(nt, nx)
	jetIntens := sparse.ZerosDense(nt, nx)

	p.log.Infof("computing jet position for %s over %d times", w.tag, nt)
	runCells(nt, p.cfg.Sequential, func(t int) {
		theta := make([]float64, len(band))
		shear := make([]float64, len(band))
		for i := 0; i < nx; i++ {
			for j := range band {
				theta[j] = thetaXPV.Get(t, jj0+j, i)
				shear[j] = ushear.Get(t, jj0+j, i)
			}
			jj := p.findSingleJet(theta, band, shear, w.mode)
			cell := jetLat.Index1d(t, i)
			if jj < 0 {
				p.log.Infof("no jet found at sample t=%d lon=%d (%s)", t, i, w.tag)
				jetLat.Elements[cell] = math.NaN()
				jetTheta.Elements[cell] = math.NaN()
				jetIntens.Elements[cell] = math.NaN()
				continue
			}
			full := jj0 + jj
			jetLat.Elements[cell] = band[jj]
			jetTheta.Elements[cell] = thetaXPV.Get(t, full, i)
			jetIntens.Elements[cell] = uwndXPV.Get(t, full, i)
		}
	})

	p.store("lat_"+w.tag, jetLat)
	p.store("theta_"+w.tag, jetTheta)
	p.store("intens_"+w.tag, jetIntens)
	return nil
}

// isolatePV restricts the level axis to the configured theta range and the
// latitude axis to [j0, j1], interpolates potential temperature and zonal
// wind onto the pvLev surface, and computes the shear between the wind on
// that surface and the lowest valid wind level. The returned arrays are
// (time, lat, lon) over the hemisphere latitudes.
func (p *PVGrad) isolatePV(pvLev float64, j0, j1 int) (thetaXPV, uwndXPV, ushear *sparse.DenseArray, err error) {
	ipv := p.data.Vars[VarIPV].Data
	uwnd := p.data.Vars[VarUwnd].Data

	lev := p.data.Lev
	k0, k1 := 0, len(lev)-1
	if p.cfg.ThetaS != 0 || p.cfg.ThetaE != 0 {
		lo, hi := p.cfg.ThetaS, p.cfg.ThetaE
		if p.data.LevDescending() {
			lo, hi = hi, lo
		}
		var ok bool
		k0, k1, ok = trySelect(lev, lo, hi)
		if !ok {
			return nil, nil, nil, fmt.Errorf("stj: PVGrad: no isentropic levels between %g and %g K",
				p.cfg.ThetaS, p.cfg.ThetaE)
		}
	}
	sublev := lev[k0 : k1+1]

	nt, nk, nx := len(p.data.Time), len(lev), len(p.data.Lon)
	nhl := j1 - j0 + 1
	thetaXPV = sparse.ZerosDense(nt, nhl, nx)
	uwndXPV = sparse.ZerosDense(nt, nhl, nx)
	ushear = sparse.ZerosDense(nt, nhl, nx)

	lowFirst := p.data.LevLowFirst()
	runCells(nt, p.cfg.Sequential, func(t int) {
		pvcol := make([]float64, nk)
		ucol := make([]float64, nk)
		for j := 0; j < nhl; j++ {
			for i := 0; i < nx; i++ {
				levColumn(ipv, t, j0+j, i, pvcol)
				levColumn(uwnd, t, j0+j, i, ucol)
				cell := thetaXPV.Index1d(t, j, i)
				theta := vinterpColumn(sublev, pvcol[k0:k1+1], pvLev)
				uxpv := vinterpColumn(ucol[k0:k1+1], pvcol[k0:k1+1], pvLev)
				thetaXPV.Elements[cell] = theta
				uwndXPV.Elements[cell] = uxpv
				ushear.Elements[cell] = uxpv - lowestValid(ucol, lowFirst)
			}
		}
	})
	return thetaXPV, uwndXPV, ushear, nil
}

// findSingleJet resolves one latitude column to a jet index within lat, or
// -1 when no jet can be identified. The fit degenerating to all zeros (no
// valid theta samples) forces -1 regardless of candidates.
func (p *PVGrad) findSingleJet(theta, lat, shear []float64, mode ExtremumMode) int {
	deriv, degenerate := p.fitter.DerivAt(lat, theta)
	sel := selectJet(extrema(deriv, mode), shear)
	if degenerate {
		return -1
	}
	return sel
}
