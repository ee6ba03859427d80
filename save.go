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
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ctessum/sparse"
)

// denseData is the serialized form of a dense array. Arrays are rebuilt
// through sparse.ZerosDense on load because the array type keeps
// internal bookkeeping that gob does not carry.
type denseData struct {
	Shape    []int
	Elements []float64
}

func denseToData(a *sparse.DenseArray) *denseData {
	if a == nil {
		return nil
	}
	return &denseData{Shape: a.Shape, Elements: a.Elements}
}

func dataToDense(d *denseData) *sparse.DenseArray {
	if d == nil {
		return nil
	}
	a := sparse.ZerosDense(d.Shape...)
	copy(a.Elements, d.Elements)
	return a
}

// snapshot is the gob-serialized form of the model state.
type snapshot struct {
	Dt                float64
	NCells            int
	NVertLevels       int
	MaxLevelCell      []int32
	RestingThickness  *denseData
	MovementWeights   []float64
	SSH               []float64
	DivHuBtr          []float64
	HighFreqThickness *denseData
	Thickness         *denseData
}

// Save returns a function that saves the model state to w.
func Save(w io.Writer) DomainManipulator {
	return func(d *LOM) error {
		e := gob.NewEncoder(w)
		s := snapshot{
			Dt:                d.Dt,
			NCells:            d.Mesh.NCells,
			NVertLevels:       d.Mesh.NVertLevels,
			MaxLevelCell:      d.Mesh.MaxLevelCell,
			RestingThickness:  denseToData(d.Vert.RestingThickness),
			MovementWeights:   d.Vert.VertCoordMovementWeights,
			SSH:               d.SSH,
			DivHuBtr:          d.DivHuBtr,
			HighFreqThickness: denseToData(d.HighFreqThickness),
			Thickness:         denseToData(d.Thickness),
		}
		if err := e.Encode(s); err != nil {
			return fmt.Errorf("lom.LOM.Save: %v", err)
		}
		return nil
	}
}

// Load returns a function that loads the state from a previously Saved
// file into a LOM object.
func Load(r io.Reader) DomainManipulator {
	return func(d *LOM) error {
		dec := gob.NewDecoder(r)
		var s snapshot
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("lom.LOM.Load: %v", err)
		}
		mesh := &Mesh{
			NCells:       s.NCells,
			NVertLevels:  s.NVertLevels,
			MaxLevelCell: s.MaxLevelCell,
		}
		vert := &VertMesh{
			RestingThickness:         dataToDense(s.RestingThickness),
			VertCoordMovementWeights: s.MovementWeights,
		}
		if err := mesh.Check(); err != nil {
			return err
		}
		if err := vert.Check(mesh); err != nil {
			return err
		}
		d.Dt = s.Dt
		d.Mesh = mesh
		d.Vert = vert
		d.SSH = s.SSH
		d.DivHuBtr = s.DivHuBtr
		d.HighFreqThickness = dataToDense(s.HighFreqThickness)
		d.Thickness = dataToDense(s.Thickness)
		return nil
	}
}
