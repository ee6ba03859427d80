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

	"github.com/ctessum/sparse"
)

// Mesh describes the horizontal extent of the model domain: a set of
// columns (one per horizontal cell), each with its own number of active
// vertical layers. Layers at indices >= MaxLevelCell[i] are inactive for
// column i and are never read or written by the model.
type Mesh struct {
	NCells      int // number of horizontal cells (columns)
	NVertLevels int // global maximum number of vertical layers

	// MaxLevelCell gives the number of active layers in each column.
	// Columns with zero active layers represent land cells.
	MaxLevelCell []int32
}

// Check returns an error if the mesh dimensions are inconsistent.
func (m *Mesh) Check() error {
	if m.NCells <= 0 || m.NVertLevels <= 0 {
		return fmt.Errorf("lom: mesh has invalid dimensions nCells=%d, nVertLevels=%d",
			m.NCells, m.NVertLevels)
	}
	if len(m.MaxLevelCell) != m.NCells {
		return fmt.Errorf("lom: mesh maxLevelCell has length %d but the mesh has %d cells",
			len(m.MaxLevelCell), m.NCells)
	}
	for i, kMax := range m.MaxLevelCell {
		if kMax < 0 || int(kMax) > m.NVertLevels {
			return fmt.Errorf("lom: mesh cell %d has %d active layers; must be in [0, %d]",
				i, kMax, m.NVertLevels)
		}
	}
	return nil
}

// VertMesh holds the static vertical-coordinate geometry of the model
// domain. Both fields are set at mesh-load time and never mutated
// during a simulation.
type VertMesh struct {
	// RestingThickness is the thickness each layer would have with no
	// sea-surface perturbation and no flow [m], shaped
	// [nVertLevels, nCells].
	RestingThickness *sparse.DenseArray

	// VertCoordMovementWeights controls what fraction of a sea-surface
	// height perturbation each layer absorbs. A layer with weight zero
	// holds its resting thickness regardless of the free surface
	// (quasi-Lagrangian); uniform nonzero weights scale all layers
	// proportionally (z-star).
	VertCoordMovementWeights []float64
}

// Check returns an error if the vertical mesh is inconsistent with the
// horizontal mesh m, or if any active layer has a non-positive resting
// thickness.
func (vm *VertMesh) Check(m *Mesh) error {
	if vm.RestingThickness == nil {
		return fmt.Errorf("lom: vertical mesh is missing restingThickness")
	}
	if len(vm.RestingThickness.Shape) != 2 ||
		vm.RestingThickness.Shape[0] != m.NVertLevels ||
		vm.RestingThickness.Shape[1] != m.NCells {
		return fmt.Errorf("lom: restingThickness has shape %v; want [%d %d]",
			vm.RestingThickness.Shape, m.NVertLevels, m.NCells)
	}
	if len(vm.VertCoordMovementWeights) != m.NVertLevels {
		return fmt.Errorf("lom: vertCoordMovementWeights has length %d but the mesh has %d levels",
			len(vm.VertCoordMovementWeights), m.NVertLevels)
	}
	for i := 0; i < m.NCells; i++ {
		for k := 0; k < int(m.MaxLevelCell[i]); k++ {
			if h := vm.RestingThickness.Get(k, i); h <= 0 {
				return fmt.Errorf("lom: restingThickness[%d,%d] = %g; active layers must be positive",
					k, i, h)
			}
		}
	}
	return nil
}
