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

package stjutil

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/stj"
	"github.com/spatialmodel/stj/eddy"
)

// newMetric constructs the named jet detection metric over data.
func newMetric(name string, cfg stj.Config, data *stj.Field, log *logrus.Logger) (stj.Metric, error) {
	switch name {
	case "PVGrad":
		return stj.NewPVGrad(cfg, data, log)
	case "DavisBirner":
		return stj.NewDavisBirner(cfg, data, log)
	case "UMax":
		return stj.NewMaxWind(cfg, data, log)
	case "KangPolvani":
		return stj.NewKangPolvani(cfg, data, log, &eddy.Calculator{})
	}
	return nil, fmt.Errorf("stj: unknown metric %s; want PVGrad, DavisBirner, UMax or KangPolvani", name)
}

// Run loads the input fields from inputFile, locates the jet in both
// hemispheres with each of the named metrics, and writes one output file
// per metric to outputDir. commitID is recorded in each output file as
// provenance.
func Run(cfg stj.Config, methods []string, inputFile, outputDir, commitID string, log *logrus.Logger) error {
	if len(methods) == 0 {
		return fmt.Errorf("stj: no detection metrics configured")
	}
	if inputFile == "" {
		return fmt.Errorf("stj: no input file configured")
	}
	data, err := stj.LoadField(cfg, inputFile)
	if err != nil {
		return err
	}
	log.Infof("loaded %d time samples from %s", len(data.Time), inputFile)

	for _, method := range methods {
		m, err := newMetric(method, cfg, data, log)
		if err != nil {
			return err
		}
		for _, shemis := range []bool{true, false} {
			if err := m.FindJet(shemis); err != nil {
				return err
			}
		}
		out := m.Output()
		summarize(m.Name(), out, log)
		path := filepath.Join(outputDir, fmt.Sprintf("stj_%s.nc", strings.ToLower(m.Name())))
		if err := stj.SaveJet(out, path, commitID); err != nil {
			return err
		}
		log.Infof("%s results written to %s", m.Name(), path)
	}
	return nil
}

var seasonNames = [4]string{"DJF", "MAM", "JJA", "SON"}

// windSpeed are the dimensions of a wind speed quantity.
var windSpeed = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}

// summarize logs the seasonal mean jet position and intensity per
// hemisphere. Outputs that kept the longitude axis are skipped; the
// summary is a zonal diagnostic.
func summarize(name string, out *stj.Output, log *logrus.Logger) {
	if out.Lon != nil {
		return
	}
	for _, tag := range []string{"sh", "nh"} {
		lat, ok := out.Data["lat_"+tag]
		if !ok {
			continue
		}
		intens := out.Data["intens_"+tag]
		var latSum, intensSum [4]float64
		var n [4]int
		for i, tm := range out.Time {
			if math.IsNaN(lat.Elements[i]) {
				continue
			}
			s := stj.Season(tm.Month())
			latSum[s] += lat.Elements[i]
			if intens != nil {
				intensSum[s] += intens.Elements[i]
			}
			n[s]++
		}
		for s := range seasonNames {
			if n[s] == 0 {
				continue
			}
			speed := unit.New(intensSum[s]/float64(n[s]), windSpeed)
			log.Infof("%s %s %s: mean jet at %.2f degrees_north, %.1f",
				name, tag, seasonNames[s], latSum[s]/float64(n[s]), speed)
		}
	}
}
