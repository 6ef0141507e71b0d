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

// Package stj locates the subtropical jet stream in gridded atmospheric
// fields. Given a field holding isentropic potential vorticity, zonal and
// meridional wind, and tropopause potential temperature on a
// time/level/latitude/longitude grid, it finds the jet latitude, vertical
// level, and intensity per hemisphere and per time (and, optionally,
// longitude) sample using one of four detection metrics: the
// potential-vorticity gradient method, the Davis–Birner (2016) wind-shear
// method, the maximum-wind method, and the Kang–Polvani (2011)
// eddy-momentum-flux method.
package stj

import (
	"fmt"
	"strings"
	"time"
)

// Version gives the version number.
const Version = "1.0.0"

// Zonal reduction options for metric output.
const (
	ZonalMean   = "mean"
	ZonalMedian = "median"
	ZonalNone   = "none"
)

// Config holds the validated configuration for a jet-finding run.
// It is treated as immutable once created: metrics read from it but
// never change it.
type Config struct {
	// TimeName, LevName, LatName and LonName map the logical axis names
	// to the axis variable names used in the input file.
	TimeName, LevName, LatName, LonName string

	// IPVName, UwndName, VwndName and TropThetaName map the logical
	// variable names to the variable names used in the input file.
	IPVName, UwndName, VwndName, TropThetaName string

	// PVValue is the potential vorticity value defining the dynamical
	// tropopause [PVU]. It is given as a positive (northern-hemisphere)
	// magnitude and negated for the southern hemisphere.
	PVValue float64

	// FitDeg is the degree of the polynomial fitted to the tropopause
	// potential temperature when taking its latitude derivative.
	FitDeg int

	// Poly selects the polynomial basis; see ParseBasis for the
	// recognized spellings.
	Poly string

	// MinLat and MaxLat bound the latitude band searched for the jet,
	// as unsigned magnitudes in degrees.
	MinLat, MaxLat float64

	// ZonalOpt is one of ZonalMean, ZonalMedian or ZonalNone.
	ZonalOpt string

	// ThetaS and ThetaE optionally restrict the isentropic levels used
	// for the tropopause interpolation [K]. Both zero means no
	// restriction.
	ThetaS, ThetaE float64

	// UpperPLevel, LowerPLevel and SurfPLevel are the Davis–Birner
	// layer bounds and surface level [Pa].
	UpperPLevel, LowerPLevel, SurfPLevel float64

	// PresLevel is the single level searched by the maximum-wind
	// metric [Pa].
	PresLevel float64

	// PFac converts pascals to the pressure units of the level axis
	// (e.g. 100 when the file uses hPa), used by the Kang–Polvani
	// metric.
	PFac float64

	// Sequential switches the metrics from the parallel batched
	// evaluation to a per-cell reference loop. Both produce identical
	// results; the loop exists for debugging.
	Sequential bool
}

// Check validates the configuration. It must pass before any metric is
// constructed; metrics assume a valid configuration.
func (c *Config) Check() error {
	if _, err := ParseBasis(c.Poly); err != nil {
		return err
	}
	if c.FitDeg < 1 {
		return fmt.Errorf("stj: fit_deg must be a positive integer; got %d", c.FitDeg)
	}
	switch strings.ToLower(c.ZonalOpt) {
	case ZonalMean, ZonalMedian, ZonalNone, "":
	default:
		return fmt.Errorf("stj: unknown zonal_opt %q; want mean, median, or none", c.ZonalOpt)
	}
	if c.MinLat < 0 || c.MaxLat < 0 {
		return fmt.Errorf("stj: min_lat and max_lat are unsigned magnitudes; got %g, %g", c.MinLat, c.MaxLat)
	}
	if c.MinLat >= c.MaxLat {
		return fmt.Errorf("stj: min_lat (%g) must be less than max_lat (%g)", c.MinLat, c.MaxLat)
	}
	if c.ThetaS != 0 || c.ThetaE != 0 {
		if c.ThetaS >= c.ThetaE {
			return fmt.Errorf("stj: theta_s (%g) must be strictly less than theta_e (%g)", c.ThetaS, c.ThetaE)
		}
	}
	if c.PFac < 0 {
		return fmt.Errorf("stj: pfac must be positive; got %g", c.PFac)
	}
	return nil
}

// pressureUnits are the recognized pressure-unit spellings for the level
// axis. Level-axis units among these trigger a Pa-to-hPa rescaling of the
// configured pressure thresholds.
var pressureUnits = map[string]bool{
	"mb":        true,
	"millibars": true,
	"hPa":       true,
}

// Season maps a calendar month to a season index:
// DJF is 0, MAM is 1, JJA is 2, SON is 3.
func Season(m time.Month) int {
	seasons := [12]int{0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3, 0}
	return seasons[m-1]
}
