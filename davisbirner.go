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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// DavisBirner locates the subtropical jet with the method of Davis and
// Birner (2016), doi:10.1175/JCLI-D-15-0336.1: subtract the surface wind,
// take the column maximum of the wind in an upper-tropospheric pressure
// layer, and keep the most equatorward local maximum of the result,
// refined by quadratic interpolation.
type DavisBirner struct {
	metricBase
	upperPLevel float64
	lowerPLevel float64
	surfPLevel  float64
}

// NewDavisBirner creates a Davis–Birner metric over data. The configured
// levels are in Pa; they are rescaled here when the field's level axis is
// in hPa-family units.
func NewDavisBirner(cfg Config, data *Field, log *logrus.Logger) (*DavisBirner, error) {
	d := &DavisBirner{
		metricBase:  newMetricBase("DavisBirner", cfg, data, log),
		upperPLevel: cfg.UpperPLevel,
		lowerPLevel: cfg.LowerPLevel,
		surfPLevel:  cfg.SurfPLevel,
	}
	if _, err := d.variable(VarUwnd); err != nil {
		return nil, err
	}
	if pressureUnits[data.LevUnits] {
		d.upperPLevel /= 100
		d.lowerPLevel /= 100
		d.surfPLevel /= 100
	}
	data.Relayout()
	return d, nil
}

// FindJet implements Metric.
func (d *DavisBirner) FindJet(shemis bool) error {
	w := d.hemis(shemis)
	lev := d.data.Lev

	lo, hi := d.upperPLevel, d.lowerPLevel
	if d.data.LevDescending() {
		lo, hi = d.lowerPLevel, d.upperPLevel
	}
	k0, k1, ok := trySelect(lev, lo, hi)
	if !ok {
		return errNoLevels(d.name, d.lowerPLevel, d.upperPLevel)
	}
	ksurf, err := d.levelIndex(d.surfPLevel)
	if err != nil {
		return err
	}
	j0, j1, err := selectLatRange(d.data.Lat, w.bandLo, w.bandHi)
	if err != nil {
		return err
	}
	band := d.data.Lat[j0 : j1+1]

	uwnd := d.data.Vars[VarUwnd].Data
	nt, nx := len(d.data.Time), len(d.data.Lon)
	nk, nl := k1-k0+1, len(band)
	d.log.Infof("computing jet position for %d times hemis: %s", nt, w.tag)

	// Wind in the layer minus the surface wind.
	layer := func(t, k, j, i int) float64 {
		return uwnd.Get(t, k0+k, j0+j, i) - uwnd.Get(t, ksurf, j0+j, i)
	}

	d.out.Time = d.data.Time
	if d.cfg.ZonalOpt == ZonalMean {
		jetLat := sparse.ZerosDense(nt)
		jetIntens := sparse.ZerosDense(nt)
		runCells(nt, d.cfg.Sequential, func(t int) {
			u := make([]float64, nk*nl)
			for k := 0; k < nk; k++ {
				for j := 0; j < nl; j++ {
					var sum float64
					var n int
					for i := 0; i < nx; i++ {
						if v := layer(t, k, j, i); !math.IsNaN(v) {
							sum += v
							n++
						}
					}
					if n == 0 {
						u[k*nl+j] = math.NaN()
					} else {
						u[k*nl+j] = sum / float64(n)
					}
				}
			}
			lat, intens, found := d.findMaxWindSurface(u, nk, band)
			if !found {
				d.log.Infof("no jet found at sample t=%d (%s)", t, w.tag)
			}
			jetLat.Elements[t] = lat
			jetIntens.Elements[t] = intens
		})
		d.out.Data["lat_"+w.tag] = jetLat
		d.out.Data["intens_"+w.tag] = jetIntens
		return nil
	}

	d.out.Lon = d.data.Lon
	jetLat := sparse.ZerosDense(nt, nx)
	jetIntens := sparse.ZerosDense(nt, nx)
	runCells(nt, d.cfg.Sequential, func(t int) {
		u := make([]float64, nk*nl)
		for i := 0; i < nx; i++ {
			for k := 0; k < nk; k++ {
				for j := 0; j < nl; j++ {
					u[k*nl+j] = layer(t, k, j, i)
				}
			}
			lat, intens, found := d.findMaxWindSurface(u, nk, band)
			if !found {
				d.log.Infof("no jet found at sample t=%d lon=%d (%s)", t, i, w.tag)
			}
			cell := jetLat.Index1d(t, i)
			jetLat.Elements[cell] = lat
			jetIntens.Elements[cell] = intens
		}
	})
	d.out.Data["lat_"+w.tag] = jetLat
	d.out.Data["intens_"+w.tag] = jetIntens
	return nil
}

// findMaxWindSurface finds the most equatorward local maximum of the
// column-maximum wind surface. u is row-major (nlev, len(lat)). Local
// maxima use a greater-or-equal neighbor relation, so plateau interior
// points are candidates. A selection away from the array boundary is
// refined by fitting a quadratic to the three samples around it and taking
// the analytic vertex; boundary-adjacent selections keep the raw grid
// value. found is false when the surface has no interior local maximum; the
// outputs are then NaN.
func (d *DavisBirner) findMaxWindSurface(u []float64, nlev int, lat []float64) (jetLat, jetIntens float64, found bool) {
	nl := len(lat)
	maxSurf := make([]float64, nl)
	for j := 0; j < nl; j++ {
		m := u[j]
		for k := 1; k < nlev; k++ {
			v := u[k*nl+j]
			if math.IsNaN(v) {
				m = v
				break
			}
			if v > m {
				m = v
			}
		}
		maxSurf[j] = m
	}

	turning := argRelMaxPlateau(maxSurf)
	if len(turning) == 0 {
		return math.NaN(), math.NaN(), false
	}
	best := turning[0]
	for _, tp := range turning[1:] {
		if math.Abs(lat[tp]) < math.Abs(lat[best]) {
			best = tp
		}
	}

	if best <= 1 || best >= nl-1 {
		return lat[best], maxSurf[best], true
	}
	// Quadratic through the three points around the peak; the vertex is
	// the refined jet position.
	quad := PolyFitter{Basis: Plain, Deg: 2}
	c, degenerate := quad.Fit(lat[best-1:best+2], maxSurf[best-1:best+2])
	if degenerate {
		return lat[best], maxSurf[best], true
	}
	jetLat = -c[1] / (2 * c[2])
	jetIntens = quad.Eval(jetLat, c)
	return jetLat, jetIntens, true
}
