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
	"io"
	"os"

	"github.com/oceanmodel/lom"
	"github.com/sirupsen/logrus"
)

// Run reads the mesh and forcing data, integrates the ALE thickness
// solver for numIterations steps of length dt seconds, and writes the
// final layer thickness field to outputFile. Progress is logged to both
// standard output and logFile.
func Run(logFile, outputFile, meshFile, forcingFile string,
	numIterations int, dt float64, config lom.ALEConfig) error {

	logFileWriter, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("lom: creating log file: %v", err)
	}
	defer logFileWriter.Close()
	w := io.MultiWriter(os.Stdout, logFileWriter)

	log := logrus.StandardLogger()
	log.WithFields(logrus.Fields{
		"mesh":    meshFile,
		"forcing": forcingFile,
		"steps":   numIterations,
		"dt":      dt,
	}).Info("lom: starting simulation")

	mesh, vert, err := lom.ReadMeshFile(meshFile)
	if err != nil {
		return err
	}
	ale, err := lom.NewALE(config, mesh, vert)
	if err != nil {
		return err
	}

	initFuncs := []lom.DomainManipulator{
		lom.UseMesh(mesh, vert),
	}
	if forcingFile != "" {
		initFuncs = append(initFuncs, lom.LoadForcingFile(forcingFile))
	}

	d := &lom.LOM{
		Dt:        dt,
		InitFuncs: initFuncs,
		RunFuncs: []lom.DomainManipulator{
			lom.UpdateALEThickness(ale),
			lom.AdvanceSSH(),
			lom.Log(w),
			lom.VolumeConvergenceCheck(numIterations, w),
		},
		CleanupFuncs: []lom.DomainManipulator{
			lom.WriteThicknessFile(outputFile),
		},
	}

	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Run(); err != nil {
		return err
	}
	if err := d.Cleanup(); err != nil {
		return err
	}

	if n := ale.SinkResidualCount(); n > 0 {
		log.WithFields(logrus.Fields{
			"columns": n,
		}).Warn("lom: thickness bounds could not be satisfied everywhere; " +
			"residual thickness was absorbed by surface layers")
	}
	log.WithFields(logrus.Fields{
		"output": outputFile,
	}).Info("lom: simulation finished")
	return nil
}

// Check reads the mesh and validates it together with the thickness
// bounds configuration, without running a simulation.
func Check(meshFile string, config lom.ALEConfig) error {
	log := logrus.StandardLogger()

	mesh, vert, err := lom.ReadMeshFile(meshFile)
	if err != nil {
		return err
	}
	if _, err := lom.NewALE(config, mesh, vert); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"cells":  mesh.NCells,
		"levels": mesh.NVertLevels,
	}).Info("lom: mesh and configuration are consistent")
	return nil
}
