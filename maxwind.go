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

// MaxWind locates the subtropical jet as the latitude of maximum zonal
// wind on a single pressure level. The simplest of the metrics: a direct
// argmax, no fitting and no candidate disambiguation.
type MaxWind struct {
	metricBase
	presLev float64
}

// NewMaxWind creates a maximum-wind metric over data. The configured level
// is in Pa and rescaled when the field's level axis is in hPa-family
// units.
func NewMaxWind(cfg Config, data *Field, log *logrus.Logger) (*MaxWind, error) {
	m := &MaxWind{
		metricBase: newMetricBase("UMax", cfg, data, log),
		presLev:    cfg.PresLevel,
	}
	if _, err := m.variable(VarUwnd); err != nil {
		return nil, err
	}
	if pressureUnits[data.LevUnits] {
		m.presLev /= 100
	}
	data.Relayout()
	return m, nil
}

// FindJet implements Metric.
func (m *MaxWind) FindJet(shemis bool) error {
	w := m.hemis(shemis)
	klev, err := m.levelIndex(m.presLev)
	if err != nil {
		return err
	}
	j0, j1, err := selectLatRange(m.data.Lat, w.bandLo, w.bandHi)
	if err != nil {
		return err
	}
	band := m.data.Lat[j0 : j1+1]

	uwnd := m.data.Vars[VarUwnd].Data
	nt, nx := len(m.data.Time), len(m.data.Lon)
	m.log.Infof("computing jet position for %d times hemis: %s", nt, w.tag)

	jetLat := sparse.ZerosDense(nt, nx)
	jetIntens := sparse.ZerosDense(nt, nx)
	runCells(nt, m.cfg.Sequential, func(t int) {
		for i := 0; i < nx; i++ {
			jmax, umax := -1, math.Inf(-1)
			for j := range band {
				if v := uwnd.Get(t, klev, j0+j, i); !math.IsNaN(v) && v > umax {
					jmax, umax = j, v
				}
			}
			cell := jetLat.Index1d(t, i)
			if jmax < 0 { // whole column missing
				m.log.Infof("no jet found at sample t=%d lon=%d (%s)", t, i, w.tag)
				jetLat.Elements[cell] = math.NaN()
				jetIntens.Elements[cell] = math.NaN()
				continue
			}
			jetLat.Elements[cell] = band[jmax]
			jetIntens.Elements[cell] = umax
		}
	})

	// This metric always reports the zonal mean.
	m.out.Time = m.data.Time
	m.out.Data["lat_"+w.tag] = reduceLon(jetLat, nanMean)
	m.out.Data["intens_"+w.tag] = reduceLon(jetIntens, nanMean)
	return nil
}
