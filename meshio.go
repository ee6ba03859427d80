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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// NetCDF variable names in LOM mesh and output files.
const (
	ncMaxLevelCell     = "maxLevelCell"
	ncRestingThickness = "restingThickness"
	ncMovementWeights  = "vertCoordMovementWeights"
	ncLayerThickness   = "layerThickness"
)

// ReadMesh reads the column descriptors and static vertical-coordinate
// geometry from the NetCDF mesh file ff. The file must contain the
// variables maxLevelCell[nCells], restingThickness[nVertLevels,nCells],
// and vertCoordMovementWeights[nVertLevels].
func ReadMesh(ff *cdf.File) (*Mesh, *VertMesh, error) {
	restingThickness, err := readNCF(ncRestingThickness, ff)
	if err != nil {
		return nil, nil, err
	}
	if len(restingThickness.Shape) != 2 {
		return nil, nil, fmt.Errorf("lom: read mesh: %s has %d dimensions; want 2",
			ncRestingThickness, len(restingThickness.Shape))
	}
	mesh := &Mesh{
		NVertLevels: restingThickness.Shape[0],
		NCells:      restingThickness.Shape[1],
	}

	maxLevel, err := readNCF(ncMaxLevelCell, ff)
	if err != nil {
		return nil, nil, err
	}
	mesh.MaxLevelCell = make([]int32, len(maxLevel.Elements))
	for i, v := range maxLevel.Elements {
		mesh.MaxLevelCell[i] = int32(v)
	}

	weights, err := readNCF(ncMovementWeights, ff)
	if err != nil {
		return nil, nil, err
	}
	vert := &VertMesh{
		RestingThickness:         restingThickness,
		VertCoordMovementWeights: weights.Elements,
	}

	if err := mesh.Check(); err != nil {
		return nil, nil, err
	}
	if err := vert.Check(mesh); err != nil {
		return nil, nil, err
	}
	return mesh, vert, nil
}

// ReadMeshFile opens the NetCDF mesh file at path and reads the mesh
// from it.
func ReadMeshFile(path string) (*Mesh, *VertMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("lom: opening mesh file: %v", err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, nil, fmt.Errorf("lom: reading mesh file %s: %v", path, err)
	}
	return ReadMesh(ff)
}

// LoadMeshFile returns a function that reads the mesh from the NetCDF
// file at path and attaches it to the model.
func LoadMeshFile(path string) DomainManipulator {
	return func(d *LOM) error {
		mesh, vert, err := ReadMeshFile(path)
		if err != nil {
			return err
		}
		return UseMesh(mesh, vert)(d)
	}
}

// NetCDF variable names in LOM forcing files. All three are optional;
// a missing variable leaves the corresponding field at zero.
const (
	ncSSH               = "ssh"
	ncDivHuBtr          = "divHuBtr"
	ncHighFreqThickness = "highFreqThickness"
)

// LoadForcingFile returns a function that reads the initial sea-surface
// height, barotropic divergence, and high-frequency thickness
// perturbation from the NetCDF file at path. It must run after the mesh
// has been attached.
func LoadForcingFile(path string) DomainManipulator {
	return func(d *LOM) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("lom: opening forcing file: %v", err)
		}
		defer f.Close()
		ff, err := cdf.Open(f)
		if err != nil {
			return fmt.Errorf("lom: reading forcing file %s: %v", path, err)
		}
		for _, v := range ff.Header.Variables() {
			switch v {
			case ncSSH, ncDivHuBtr:
				data, err := readNCF(v, ff)
				if err != nil {
					return err
				}
				if len(data.Elements) != d.Mesh.NCells {
					return fmt.Errorf("lom: forcing variable %s has %d elements but the mesh has %d cells",
						v, len(data.Elements), d.Mesh.NCells)
				}
				if v == ncSSH {
					copy(d.SSH, data.Elements)
				} else {
					copy(d.DivHuBtr, data.Elements)
				}
			case ncHighFreqThickness:
				data, err := readNCF(v, ff)
				if err != nil {
					return err
				}
				if len(data.Shape) != 2 || data.Shape[0] != d.Mesh.NVertLevels ||
					data.Shape[1] != d.Mesh.NCells {
					return fmt.Errorf("lom: forcing variable %s has shape %v; want [%d %d]",
						v, data.Shape, d.Mesh.NVertLevels, d.Mesh.NCells)
				}
				d.HighFreqThickness = data
			}
		}
		return nil
	}
}

// readNCF reads variable v out of netcdf file ff into a dense array.
func readNCF(v string, ff *cdf.File) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("lom: read netcdf: variable %v not in file", v)
	}
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	r := ff.Reader(v, nil, nil)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("lom: read netcdf variable %s: %v", v, err)
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []float64:
		copy(data.Elements, b)
	case []float32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []int32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	default:
		return nil, fmt.Errorf("lom: read netcdf variable %s: unsupported type %T", v, buf)
	}
	return data, nil
}

// WriteMesh writes the mesh geometry to rw as a NetCDF file, in the
// layout ReadMesh expects.
func WriteMesh(rw cdf.ReaderWriterAt, mesh *Mesh, vert *VertMesh) error {
	h := cdf.NewHeader([]string{"nVertLevels", "nCells"},
		[]int{mesh.NVertLevels, mesh.NCells})
	h.AddVariable(ncMaxLevelCell, []string{"nCells"}, []int32{0})
	h.AddAttribute(ncMaxLevelCell, "description", "number of active layers in each column")
	h.AddVariable(ncRestingThickness, []string{"nVertLevels", "nCells"}, []float64{0.})
	h.AddAttribute(ncRestingThickness, "description", "layer thickness with no SSH or flow perturbation")
	h.AddAttribute(ncRestingThickness, "units", "m")
	h.AddVariable(ncMovementWeights, []string{"nVertLevels"}, []float64{0.})
	h.AddAttribute(ncMovementWeights, "description", "fraction of an SSH perturbation absorbed by each layer")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("lom: creating mesh netcdf header: %v", err)
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("lom: creating mesh netcdf file: %v", err)
	}
	if err := writeNCFInt(f, ncMaxLevelCell, mesh.MaxLevelCell); err != nil {
		return err
	}
	if err := writeNCF(f, ncRestingThickness, vert.RestingThickness.Elements); err != nil {
		return err
	}
	return writeNCF(f, ncMovementWeights, vert.VertCoordMovementWeights)
}

// WriteThickness writes the computed layer thickness field to rw as a
// NetCDF file.
func WriteThickness(rw cdf.ReaderWriterAt, mesh *Mesh, thickness *sparse.DenseArray) error {
	h := cdf.NewHeader([]string{"nVertLevels", "nCells"},
		[]int{mesh.NVertLevels, mesh.NCells})
	h.AddVariable(ncLayerThickness, []string{"nVertLevels", "nCells"}, []float64{0.})
	h.AddAttribute(ncLayerThickness, "description", "ALE target layer thickness")
	h.AddAttribute(ncLayerThickness, "units", "m")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("lom: creating thickness netcdf header: %v", err)
	}
	f, err := cdf.Create(rw, h)
	if err != nil {
		return fmt.Errorf("lom: creating thickness netcdf file: %v", err)
	}
	return writeNCF(f, ncLayerThickness, thickness.Elements)
}

// WriteThicknessFile returns a function that writes the model's current
// thickness field to the NetCDF file at path.
func WriteThicknessFile(path string) DomainManipulator {
	return func(d *LOM) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("lom: creating output file: %v", err)
		}
		defer f.Close()
		return WriteThickness(f, d.Mesh, d.Thickness)
	}
}

func writeNCF(f *cdf.File, v string, data []float64) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("lom: write netcdf variable %s: %v", v, err)
	}
	return nil
}

func writeNCFInt(f *cdf.File, v string, data []int32) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	w := f.Writer(v, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("lom: write netcdf variable %s: %v", v, err)
	}
	return nil
}
