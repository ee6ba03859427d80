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

package lom

import (
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

const daysPerSecond = 1. / 3600. / 24.

// UpdateALEThickness returns a function that recomputes the target layer
// thickness distribution for every column using the given solver. It
// should run before AdvanceSSH so the solver sees the old time level.
func UpdateALEThickness(a *ALE) DomainManipulator {
	return func(d *LOM) error {
		return a.Thickness(d.SSH, d.DivHuBtr, d.HighFreqThickness, d.Dt, d.Thickness)
	}
}

// AdvanceSSH returns a function that commits the barotropic sea-surface
// height update for the step; in the full dynamical core this is done by
// the barotropic subcycling, so here it is only a driver-harness stand-in.
func AdvanceSSH() DomainManipulator {
	return func(d *LOM) error {
		for i, div := range d.DivHuBtr {
			d.SSH[i] -= d.Dt * div
		}
		return nil
	}
}

// TotalVolumePerArea returns the domain total of layer thickness [m]
// summed over all active layers of all columns. Because inactive layers
// are never written, this is a plain sum over the thickness array.
func (d *LOM) TotalVolumePerArea() float64 {
	return floats.Sum(d.Thickness.Elements)
}

// VolumeConvergenceCheck returns a function that stops the simulation
// after nSteps steps and reports the drift in total thickness between
// consecutive steps to w. A drift larger than the conservation
// tolerance of the redistribution stage is reported as an error.
func VolumeConvergenceCheck(nSteps int, w io.Writer) DomainManipulator {
	const tolerance = 1.e-10 // relative, per step

	iteration := 0
	oldSum := math.NaN()

	return func(d *LOM) error {
		iteration++

		sum := d.TotalVolumePerArea()
		if !math.IsNaN(oldSum) {
			// The SSH stage legitimately changes the total by the
			// integrated surface flux; compare against that expectation.
			expected := oldSum
			for i := range d.DivHuBtr {
				expected -= d.Dt * d.DivHuBtr[i] * activeWeightFraction(d, i)
			}
			bias := (sum - expected) / math.Max(math.Abs(expected), 1)
			fmt.Fprintf(w, "volume: total=%.12g drift=%3.2g%%\n", sum, bias*100)
			if math.Abs(bias) > tolerance {
				return fmt.Errorf("lom: volume drift %g at iteration %d exceeds tolerance %g",
					bias, iteration, tolerance)
			}
		}
		oldSum = sum

		if iteration >= nSteps {
			d.Done = true
		}
		return nil
	}
}

// activeWeightFraction gives the fraction of an SSH perturbation that
// column i absorbs into its layers: one for any column with a nonzero
// movement weight on an active layer, zero for degenerate columns.
func activeWeightFraction(d *LOM, i int) float64 {
	kMax := int(d.Mesh.MaxLevelCell[i])
	for k := 0; k < kMax; k++ {
		if d.Vert.VertCoordMovementWeights[k] != 0 {
			return 1
		}
	}
	return 0
}

// Log returns a function that writes simulation status messages to w.
func Log(w io.Writer) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()

	iteration := 0
	nDaysRun := 0.

	return func(d *LOM) error {
		iteration++
		nDaysRun += d.Dt * daysPerSecond
		fmt.Fprintf(w, "Iteration %-4d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
			"timestep=%2.0fs  day=%.3g\n",
			iteration, time.Since(startTime).Hours(),
			time.Since(timeStepTime).Seconds(), d.Dt, nDaysRun)
		timeStepTime = time.Now()
		return nil
	}
}
