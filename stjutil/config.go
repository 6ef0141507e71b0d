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

	"github.com/lnashier/viper"
	"github.com/spatialmodel/stj"
	"github.com/spf13/cast"
)

// JetConfig reads the jet-finding configuration out of cfg and validates
// it into an immutable stj.Config.
func JetConfig(cfg *viper.Viper) (stj.Config, error) {
	fitDeg, err := cast.ToIntE(cfg.Get("FitDeg"))
	if err != nil {
		return stj.Config{}, fmt.Errorf("stj: parsing FitDeg: %v", err)
	}
	c := stj.Config{
		TimeName: cfg.GetString("Data.TimeName"),
		LevName:  cfg.GetString("Data.LevName"),
		LatName:  cfg.GetString("Data.LatName"),
		LonName:  cfg.GetString("Data.LonName"),

		IPVName:       cfg.GetString("Data.IPVName"),
		UwndName:      cfg.GetString("Data.UwndName"),
		VwndName:      cfg.GetString("Data.VwndName"),
		TropThetaName: cfg.GetString("Data.TropThetaName"),

		PVValue:  cfg.GetFloat64("PVValue"),
		FitDeg:   fitDeg,
		Poly:     cfg.GetString("Poly"),
		MinLat:   cfg.GetFloat64("MinLat"),
		MaxLat:   cfg.GetFloat64("MaxLat"),
		ZonalOpt: cfg.GetString("ZonalOpt"),
		ThetaS:   cfg.GetFloat64("ThetaS"),
		ThetaE:   cfg.GetFloat64("ThetaE"),

		UpperPLevel: cfg.GetFloat64("DavisBirner.UpperPLevel"),
		LowerPLevel: cfg.GetFloat64("DavisBirner.LowerPLevel"),
		SurfPLevel:  cfg.GetFloat64("DavisBirner.SurfPLevel"),

		PresLevel: cfg.GetFloat64("PresLevel"),
		PFac:      cfg.GetFloat64("PFac"),

		Sequential: cfg.GetBool("Sequential"),
	}
	if err := c.Check(); err != nil {
		return stj.Config{}, err
	}
	return c, nil
}
