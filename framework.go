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

// Package lom implements the vertical-coordinate core of a layered ocean
// model: an arbitrary Lagrangian-Eulerian (ALE) thickness solver for a
// column-based unstructured mesh, and a small driver framework for
// stepping it through time.
package lom

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Version gives the version number of this version of LOM.
const Version = "0.1.0"

// LOM holds the current state of the model.
type LOM struct {
	// InitFuncs are run (in order) at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are run (in order) at each time step of the simulation.
	RunFuncs []DomainManipulator

	// CleanupFuncs are run (in order) after the simulation has finished.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool

	// Dt is the time step length [seconds].
	Dt float64

	Mesh *Mesh     // horizontal mesh (column descriptors)
	Vert *VertMesh // static vertical-coordinate geometry

	// SSH is the sea-surface height at the current time level [m].
	SSH []float64

	// DivHuBtr is the depth-integrated barotropic divergence [m/s].
	DivHuBtr []float64

	// HighFreqThickness is the externally computed z-tilde thickness
	// perturbation [m], shaped [nVertLevels, nCells]. It may be nil if
	// frequency-filtered thickness is disabled.
	HighFreqThickness *sparse.DenseArray

	// Thickness is the target layer thickness computed by the ALE
	// solver at the most recent time step [m], shaped
	// [nVertLevels, nCells].
	Thickness *sparse.DenseArray
}

// DomainManipulator is a class of functions that operate on the entire
// model domain.
type DomainManipulator func(d *LOM) error

// Init initializes the model by running InitFuncs.
func (d *LOM) Init() error {
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running RunFuncs until Done is set
// to true.
func (d *LOM) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running CleanupFuncs.
func (d *LOM) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// UseMesh returns a function that attaches the given mesh and vertical
// mesh to the model and allocates the model state fields.
func UseMesh(mesh *Mesh, vert *VertMesh) DomainManipulator {
	return func(d *LOM) error {
		if err := mesh.Check(); err != nil {
			return err
		}
		if err := vert.Check(mesh); err != nil {
			return err
		}
		d.Mesh = mesh
		d.Vert = vert
		d.SSH = make([]float64, mesh.NCells)
		d.DivHuBtr = make([]float64, mesh.NCells)
		d.Thickness = sparse.ZerosDense(mesh.NVertLevels, mesh.NCells)
		return nil
	}
}

// InitialState returns a function that sets the initial sea-surface
// height and barotropic divergence fields. Either argument may be nil to
// leave the corresponding field at zero.
func InitialState(ssh, divHuBtr []float64) DomainManipulator {
	return func(d *LOM) error {
		if ssh != nil {
			if len(ssh) != d.Mesh.NCells {
				return fmt.Errorf("lom: initial SSH has length %d but the mesh has %d cells",
					len(ssh), d.Mesh.NCells)
			}
			copy(d.SSH, ssh)
		}
		if divHuBtr != nil {
			if len(divHuBtr) != d.Mesh.NCells {
				return fmt.Errorf("lom: initial divHuBtr has length %d but the mesh has %d cells",
					len(divHuBtr), d.Mesh.NCells)
			}
			copy(d.DivHuBtr, divHuBtr)
		}
		return nil
	}
}

// ColumnProfile returns the active-layer thicknesses of column i, from
// the surface downward.
func (d *LOM) ColumnProfile(i int) ([]float64, error) {
	if i < 0 || i >= d.Mesh.NCells {
		return nil, fmt.Errorf("lom: column %d is outside the mesh (%d cells)", i, d.Mesh.NCells)
	}
	kMax := int(d.Mesh.MaxLevelCell[i])
	o := make([]float64, kMax)
	for k := 0; k < kMax; k++ {
		o[k] = d.Thickness.Get(k, i)
	}
	return o, nil
}
