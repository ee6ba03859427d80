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
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ctessum/sparse"
)

// epsThicknessSum keeps the weighted-thickness divisor in the
// sea-surface-height stage strictly positive for columns whose movement
// weights are all zero.
const epsThicknessSum = 1.e-14

// ALEConfig holds the configuration for the arbitrary Lagrangian-Eulerian
// (ALE) vertical-coordinate thickness solver.
type ALEConfig struct {
	// UseFreqFilteredThickness enables the z-tilde high-frequency
	// correction stage, which adds an externally computed thickness
	// perturbation to each layer to remove high-frequency (e.g. internal
	// wave) signal from the vertical coordinate.
	UseFreqFilteredThickness bool

	// UseMinMaxThickness enables the min/max redistribution stage,
	// which clamps each layer into
	// [MinThickness, MaxThicknessFactor × restingThickness] while
	// conserving the total thickness of each column.
	UseMinMaxThickness bool

	// MinThickness is the smallest allowed layer thickness [m].
	MinThickness float64

	// MaxThicknessFactor is the largest allowed ratio of layer
	// thickness to resting thickness.
	MaxThicknessFactor float64
}

// ALE computes the target thickness distribution for every column of the
// mesh at each time step, blending a fixed (Eulerian) and
// moving-with-flow (Lagrangian) layer structure. It is created once with
// NewALE and is safe for use from a single goroutine per call; columns
// are processed concurrently internally.
type ALE struct {
	config ALEConfig
	mesh   *Mesh
	vert   *VertMesh

	// sinkResiduals counts the columns in which the redistribution
	// stage could not absorb the whole correction within bounds and
	// dumped the residual into layer 1. A nonzero count indicates a
	// physically suspect state.
	sinkResiduals uint64
}

// NewALE creates a thickness solver for the given mesh. It validates the
// configuration against the mesh geometry: if UseMinMaxThickness is
// enabled, MinThickness must not exceed
// MaxThicknessFactor × restingThickness for any active layer, otherwise
// the two bounds cannot be simultaneously satisfied.
func NewALE(config ALEConfig, mesh *Mesh, vert *VertMesh) (*ALE, error) {
	if err := mesh.Check(); err != nil {
		return nil, err
	}
	if err := vert.Check(mesh); err != nil {
		return nil, err
	}
	if config.UseMinMaxThickness {
		if config.MinThickness <= 0 {
			return nil, fmt.Errorf("lom: ale: minThickness = %g; must be positive",
				config.MinThickness)
		}
		if config.MaxThicknessFactor <= 0 {
			return nil, fmt.Errorf("lom: ale: maxThicknessFactor = %g; must be positive",
				config.MaxThicknessFactor)
		}
		for i := 0; i < mesh.NCells; i++ {
			for k := 0; k < int(mesh.MaxLevelCell[i]); k++ {
				ceiling := config.MaxThicknessFactor * vert.RestingThickness.Get(k, i)
				if config.MinThickness > ceiling {
					return nil, fmt.Errorf("lom: ale: minThickness (%g) exceeds "+
						"maxThicknessFactor × restingThickness (%g) at layer %d of cell %d",
						config.MinThickness, ceiling, k, i)
				}
			}
		}
	}
	return &ALE{config: config, mesh: mesh, vert: vert}, nil
}

// SinkResidualCount reports how many columns have had an unabsorbed
// redistribution residual added to their top layer since the solver was
// created.
func (a *ALE) SinkResidualCount() uint64 {
	return atomic.LoadUint64(&a.sinkResiduals)
}

// Thickness computes the target layer thickness for every active layer
// of every column and writes it into aleThickness, which must be shaped
// [nVertLevels, nCells]. All active layers are fully overwritten;
// inactive layers are left untouched.
//
// oldSSH is the sea-surface height at the previous time level [m] and
// divHuBtr is the depth-integrated barotropic divergence [m/s], both per
// column. newHighFreqThickness is the precomputed z-tilde perturbation
// [m]; it is only consulted when the solver was configured with
// UseFreqFilteredThickness and may be nil otherwise. dt is the time-step
// length [s].
func (a *ALE) Thickness(oldSSH, divHuBtr []float64, newHighFreqThickness *sparse.DenseArray,
	dt float64, aleThickness *sparse.DenseArray) error {

	if len(oldSSH) != a.mesh.NCells {
		return fmt.Errorf("lom: ale: oldSSH has length %d but the mesh has %d cells",
			len(oldSSH), a.mesh.NCells)
	}
	if len(divHuBtr) != a.mesh.NCells {
		return fmt.Errorf("lom: ale: divHuBtr has length %d but the mesh has %d cells",
			len(divHuBtr), a.mesh.NCells)
	}
	if aleThickness == nil || len(aleThickness.Shape) != 2 ||
		aleThickness.Shape[0] != a.mesh.NVertLevels ||
		aleThickness.Shape[1] != a.mesh.NCells {
		return fmt.Errorf("lom: ale: aleThickness must be shaped [%d %d]",
			a.mesh.NVertLevels, a.mesh.NCells)
	}
	if a.config.UseFreqFilteredThickness {
		if newHighFreqThickness == nil || len(newHighFreqThickness.Shape) != 2 ||
			newHighFreqThickness.Shape[0] != a.mesh.NVertLevels ||
			newHighFreqThickness.Shape[1] != a.mesh.NCells {
			return fmt.Errorf("lom: ale: newHighFreqThickness must be shaped [%d %d] "+
				"when frequency-filtered thickness is enabled",
				a.mesh.NVertLevels, a.mesh.NCells)
		}
	}

	// Columns are mutually independent, so partition them across the
	// available processors. Each worker carries its own scratch buffers.
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			scratch := newColumnScratch(a.mesh.NVertLevels)
			for i := pp; i < a.mesh.NCells; i += nprocs {
				a.columnThickness(i, oldSSH[i], divHuBtr[i],
					newHighFreqThickness, dt, aleThickness, scratch)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return nil
}

// columnScratch holds the transient per-column work arrays. The arrays
// have no cross-call persistence; they only exist to avoid reallocation
// in the column loop.
type columnScratch struct {
	prelim []float64 // thickness after the SSH and high-frequency stages
	up     []float64 // upward-pass corrections
}

func newColumnScratch(nVertLevels int) *columnScratch {
	return &columnScratch{
		prelim: make([]float64, nVertLevels),
		up:     make([]float64, nVertLevels),
	}
}

// columnThickness runs the three thickness stages for a single column.
func (a *ALE) columnThickness(i int, oldSSH, divHuBtr float64,
	newHighFreqThickness *sparse.DenseArray, dt float64,
	aleThickness *sparse.DenseArray, scratch *columnScratch) {

	kMax := int(a.mesh.MaxLevelCell[i])
	if kMax == 0 {
		return
	}

	// Sea-surface-height evolution (z-star): distribute the new SSH
	// across the active layers in proportion to each layer's weighted
	// resting thickness, so a uniform free-surface rise or fall
	// preserves the relative layer proportions.
	newSSH := oldSSH - dt*divHuBtr
	thicknessSum := epsThicknessSum
	for k := 0; k < kMax; k++ {
		thicknessSum += a.vert.VertCoordMovementWeights[k] *
			a.vert.RestingThickness.Get(k, i)
	}
	for k := 0; k < kMax; k++ {
		restingThickness := a.vert.RestingThickness.Get(k, i)
		sshPerturb := newSSH * a.vert.VertCoordMovementWeights[k] *
			restingThickness / thicknessSum
		scratch.prelim[k] = restingThickness + sshPerturb
	}

	// High-frequency correction (z-tilde).
	if a.config.UseFreqFilteredThickness {
		for k := 0; k < kMax; k++ {
			scratch.prelim[k] += newHighFreqThickness.Get(k, i)
		}
	}

	if a.config.UseMinMaxThickness {
		a.enforceThicknessBounds(i, kMax, scratch)
	}

	for k := 0; k < kMax; k++ {
		aleThickness.Elements[k*a.mesh.NCells+i] = scratch.prelim[k]
	}
}

// enforceThicknessBounds clamps each layer of the preliminary thickness
// column into [MinThickness, MaxThicknessFactor × restingThickness]
// while conserving the column total, by a two-pass carry-the-remainder
// sweep: a downward pass hands each layer's unabsorbable correction to
// the layer below, and an upward pass gives the shallower layers a
// second chance to absorb whatever reached the bottom. The corrected
// column is written back into scratch.prelim.
func (a *ALE) enforceThicknessBounds(i, kMax int, scratch *columnScratch) {
	minThickness := a.config.MinThickness

	// Downward pass.
	remainder := 0.
	for k := 0; k < kMax; k++ {
		candidate := scratch.prelim[k] + remainder
		ceiling := a.config.MaxThicknessFactor * a.vert.RestingThickness.Get(k, i)
		newThickness := math.Max(math.Min(candidate, ceiling), minThickness)
		remainder = candidate - newThickness
		scratch.prelim[k] = newThickness
	}

	// Upward pass, reusing the downward pass's leftover remainder. The
	// bottom layer takes no upward correction.
	scratch.up[kMax-1] = 0
	for k := kMax - 2; k >= 0; k-- {
		candidate := scratch.prelim[k] + remainder
		ceiling := a.config.MaxThicknessFactor * a.vert.RestingThickness.Get(k, i)
		newThickness := math.Max(math.Min(candidate, ceiling), minThickness)
		scratch.up[k] = newThickness - scratch.prelim[k]
		remainder -= scratch.up[k]
	}

	// Top-layer sink: if every layer is pinned at a bound, the residual
	// goes into layer 1 unconditionally so that the column total is
	// conserved exactly. This can push layer 1 outside its own bound;
	// the counter surfaces how often that happens.
	if remainder != 0 {
		scratch.up[0] += remainder
		atomic.AddUint64(&a.sinkResiduals, 1)
	}

	for k := 0; k < kMax; k++ {
		scratch.prelim[k] += scratch.up[k]
	}
}
