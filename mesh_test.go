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
	"testing"

	"github.com/ctessum/sparse"
)

func TestMeshCheck(t *testing.T) {
	mesh, vert := uniformMesh(2, []float64{10, 10}, []float64{1, 1})
	if err := mesh.Check(); err != nil {
		t.Error(err)
	}
	if err := vert.Check(mesh); err != nil {
		t.Error(err)
	}

	bad := &Mesh{NCells: 2, NVertLevels: 2, MaxLevelCell: []int32{1}}
	if err := bad.Check(); err == nil {
		t.Error("expected an error for a short maxLevelCell")
	}
	bad = &Mesh{NCells: 1, NVertLevels: 2, MaxLevelCell: []int32{3}}
	if err := bad.Check(); err == nil {
		t.Error("expected an error for maxLevelCell above nVertLevels")
	}
	bad = &Mesh{NCells: 0, NVertLevels: 2, MaxLevelCell: nil}
	if err := bad.Check(); err == nil {
		t.Error("expected an error for an empty mesh")
	}
}

func TestVertMeshCheck(t *testing.T) {
	mesh, vert := uniformMesh(2, []float64{10, 10}, []float64{1, 1})

	badVert := &VertMesh{
		RestingThickness:         sparse.ZerosDense(2, 1),
		VertCoordMovementWeights: vert.VertCoordMovementWeights,
	}
	if err := badVert.Check(mesh); err == nil {
		t.Error("expected an error for a misshapen restingThickness")
	}

	badVert = &VertMesh{
		RestingThickness:         vert.RestingThickness,
		VertCoordMovementWeights: []float64{1},
	}
	if err := badVert.Check(mesh); err == nil {
		t.Error("expected an error for short movement weights")
	}

	// Non-positive resting thickness on an active layer.
	rt := sparse.ZerosDense(2, 2)
	rt.Set(10, 0, 0)
	rt.Set(10, 0, 1)
	rt.Set(10, 1, 0) // layer 1 of cell 1 left at zero
	badVert = &VertMesh{
		RestingThickness:         rt,
		VertCoordMovementWeights: []float64{1, 1},
	}
	if err := badVert.Check(mesh); err == nil {
		t.Error("expected an error for a zero resting thickness on an active layer")
	}
}
