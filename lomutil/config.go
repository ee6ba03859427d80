/*
Copyright © 2026 the LOM authors.
This file is part of LOM.

LOM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

LOM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with LOM.  If not, see <http://www.gnu.org/licenses/>.
*/

package lomutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/oceanmodel/lom"
	"github.com/spf13/cast"
)

// aleConfig assembles the thickness-solver configuration from the
// configuration data.
func aleConfig(cfg *viper.Viper) lom.ALEConfig {
	return lom.ALEConfig{
		UseFreqFilteredThickness: cast.ToBool(cfg.Get("ALE.UseFreqFilteredThickness")),
		UseMinMaxThickness:       cast.ToBool(cfg.Get("ALE.UseMinMaxThickness")),
		MinThickness:             cast.ToFloat64(cfg.Get("ALE.MinThickness")),
		MaxThicknessFactor:       cast.ToFloat64(cfg.Get("ALE.MaxThicknessFactor")),
	}
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`lom: you need to specify an output file configuration variable (for example: OutputFile="thickness.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("lom: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one
// isn't specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}
