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
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// FluxDivCalculator computes the zonal, time-resolved meridional
// eddy-momentum-flux divergence from wind components at a fixed level.
// u and v are (time, lat, lon); the result is (time, lat). The in-tree
// implementation is in package eddy.
type FluxDivCalculator interface {
	FluxDiv(u, v *sparse.DenseArray, lat []float64) (*sparse.DenseArray, error)
}

// KangPolvani locates the subtropical jet with the method of Kang and
// Polvani (2011): the sign change of the meridional eddy-momentum-flux
// divergence at 200 hPa, disambiguated by the maximum 200 minus 1000 hPa
// wind shear. Daily positions are averaged to calendar months.
type KangPolvani struct {
	metricBase
	calc   FluxDivCalculator
	wh200  float64
	wh1000 float64
}

// NewKangPolvani creates a Kang–Polvani metric over data. A nil flux
// divergence calculator makes this metric, and only this metric,
// unavailable.
func NewKangPolvani(cfg Config, data *Field, log *logrus.Logger, calc FluxDivCalculator) (*KangPolvani, error) {
	if calc == nil {
		return nil, fmt.Errorf("stj: KangPolvani: no eddy flux divergence calculator available")
	}
	if cfg.PFac <= 0 {
		return nil, fmt.Errorf("stj: KangPolvani: pfac must be positive; got %g", cfg.PFac)
	}
	k := &KangPolvani{
		metricBase: newMetricBase("KangPolvani", cfg, data, log),
		calc:       calc,
		wh200:      20000.0 / cfg.PFac,
		wh1000:     100000.0 / cfg.PFac,
	}
	if _, err := k.variable(VarUwnd); err != nil {
		return nil, err
	}
	if _, err := k.variable(VarVwnd); err != nil {
		return nil, err
	}
	data.Relayout()
	return k, nil
}

// FindJet implements Metric.
func (k *KangPolvani) FindJet(shemis bool) error {
	w := k.hemis(shemis)
	j0, j1, err := selectLatRange(k.data.Lat, w.hemiLo, w.hemiHi)
	if err != nil {
		return err
	}
	hlat := k.data.Lat[j0 : j1+1]

	k200, err := k.levelIndex(k.wh200)
	if err != nil {
		return err
	}
	k1000, err := k.levelIndex(k.wh1000)
	if err != nil {
		return err
	}

	delF, err := k.fluxDiv(k200, j0, j1, hlat)
	if err != nil {
		return err
	}

	uwnd := k.data.Vars[VarUwnd].Data
	nt, nx := len(k.data.Time), len(k.data.Lon)
	nl := len(hlat)

	// Zonal-mean winds on the two shear levels.
	u200 := sparse.ZerosDense(nt, nl)
	u1000 := sparse.ZerosDense(nt, nl)
	row := make([]float64, nx)
	for t := 0; t < nt; t++ {
		for j := 0; j < nl; j++ {
			for i := 0; i < nx; i++ {
				row[i] = uwnd.Get(t, k200, j0+j, i)
			}
			u200.Elements[u200.Index1d(t, j)] = nanMean(row)
			for i := 0; i < nx; i++ {
				row[i] = uwnd.Get(t, k1000, j0+j, i)
			}
			u1000.Elements[u1000.Index1d(t, j)] = nanMean(row)
		}
	}

	k.log.Infof("computing jet position for %d times hemis: %s", nt, w.tag)
	jetLat := make([]float64, nt)
	jetIntens := make([]float64, nt)
	for t := 0; t < nt; t++ {
		best := -1
		// Endpoints are never sign-change candidates.
		for j := 1; j+1 < nl; j++ {
			if sign(delF.Get(t, j-1)) == sign(delF.Get(t, j)) {
				continue
			}
			if best < 0 {
				best = j
				continue
			}
			shear := u200.Get(t, j) - u1000.Get(t, j)
			if shear > u200.Get(t, best)-u1000.Get(t, best) {
				best = j
			}
		}
		if best < 0 {
			k.log.Infof("no jet found at sample t=%d (%s)", t, w.tag)
			jetLat[t] = math.NaN()
			jetIntens[t] = math.NaN()
			continue
		}
		jetLat[t] = hlat[best]
		jetIntens[t] = u200.Get(t, best)
	}

	months, latMM := monthlyMean(k.data.Time, jetLat)
	_, intensMM := monthlyMean(k.data.Time, jetIntens)
	k.out.Time = months
	k.out.Data["lat_"+w.tag] = latMM
	k.out.Data["intens_"+w.tag] = intensMM
	return nil
}

// fluxDiv extracts the hemisphere wind components on the 200 hPa level and
// delegates to the eddy calculator.
func (k *KangPolvani) fluxDiv(k200, j0, j1 int, hlat []float64) (*sparse.DenseArray, error) {
	uwnd := k.data.Vars[VarUwnd].Data
	vwnd := k.data.Vars[VarVwnd].Data
	nt, nx := len(k.data.Time), len(k.data.Lon)
	nl := j1 - j0 + 1
	u := sparse.ZerosDense(nt, nl, nx)
	v := sparse.ZerosDense(nt, nl, nx)
	for t := 0; t < nt; t++ {
		for j := 0; j < nl; j++ {
			for i := 0; i < nx; i++ {
				cell := u.Index1d(t, j, i)
				u.Elements[cell] = uwnd.Get(t, k200, j0+j, i)
				v.Elements[cell] = vwnd.Get(t, k200, j0+j, i)
			}
		}
	}
	return k.calc.FluxDiv(u, v, hlat)
}

// sign mirrors the sign convention of the sign-change detector: NaN input
// stays NaN, so comparisons against NaN always report a change.
func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// monthlyMean averages x (one value per time sample) to calendar months,
// skipping NaN samples. It returns the month-start dates and the means.
func monthlyMean(times []time.Time, x []float64) ([]time.Time, *sparse.DenseArray) {
	var months []time.Time
	var groups [][]float64
	for i, tm := range times {
		ms := time.Date(tm.Year(), tm.Month(), 1, 0, 0, 0, 0, time.UTC)
		if len(months) == 0 || !months[len(months)-1].Equal(ms) {
			months = append(months, ms)
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], x[i])
	}
	out := sparse.ZerosDense(len(months))
	for g, vals := range groups {
		out.Elements[g] = nanMean(vals)
	}
	return months, out
}
