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
	"bytes"
	"reflect"
	"strings"
	"testing"
)

// Three steps of the driver harness should leave each column holding
// its resting total plus the integrated surface flux.
func TestModelRun(t *testing.T) {
	const (
		tolerance = 1.e-9
		dt        = 100.
		nSteps    = 3
	)

	mesh, vert := uniformMesh(2, []float64{10, 10, 10}, []float64{1, 1, 1})
	a, err := NewALE(ALEConfig{}, mesh, vert)
	if err != nil {
		t.Fatal(err)
	}

	ssh := []float64{0.3, 0}
	divHuBtr := []float64{0.001, 0.002}
	var logBuf bytes.Buffer

	d := &LOM{
		Dt: dt,
		InitFuncs: []DomainManipulator{
			UseMesh(mesh, vert),
			InitialState(ssh, divHuBtr),
		},
		RunFuncs: []DomainManipulator{
			UpdateALEThickness(a),
			AdvanceSSH(),
			Log(&logBuf),
			VolumeConvergenceCheck(nSteps, &logBuf),
		},
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}

	// At the last step the solver sees SSH after nSteps−1 commits, and
	// applies one more barotropic update internally.
	want := []float64{
		30 + 0.3 - nSteps*dt*0.001,
		30 + 0 - nSteps*dt*0.002,
	}
	for i := 0; i < 2; i++ {
		profile, err := d.ColumnProfile(i)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0.
		for _, h := range profile {
			sum += h
		}
		if different(sum, want[i], tolerance) {
			t.Errorf("cell %d: column total = %g, want %g", i, sum, want[i])
		}
	}

	if !strings.Contains(logBuf.String(), "Iteration") {
		t.Error("no progress lines were logged")
	}
	if !strings.Contains(logBuf.String(), "volume:") {
		t.Error("no volume drift lines were logged")
	}
}

func TestColumnProfileRange(t *testing.T) {
	mesh, vert := uniformMesh(1, []float64{10}, []float64{1})
	d := &LOM{InitFuncs: []DomainManipulator{UseMesh(mesh, vert)}}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ColumnProfile(1); err == nil {
		t.Error("expected an error for an out-of-range column")
	}
	if _, err := d.ColumnProfile(-1); err == nil {
		t.Error("expected an error for a negative column")
	}
}

// A saved model state loads back identically.
func TestSaveLoad(t *testing.T) {
	mesh, vert := uniformMesh(2, []float64{10, 20}, []float64{1, 0.5})
	a, err := NewALE(ALEConfig{}, mesh, vert)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	d := &LOM{
		Dt: 60,
		InitFuncs: []DomainManipulator{
			UseMesh(mesh, vert),
			InitialState([]float64{0.1, -0.2}, []float64{0.001, 0}),
		},
		RunFuncs: []DomainManipulator{
			UpdateALEThickness(a),
			AdvanceSSH(),
			VolumeConvergenceCheck(1, &bytes.Buffer{}),
		},
		CleanupFuncs: []DomainManipulator{
			Save(&buf),
		},
	}
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if err := d.Run(); err != nil {
		t.Fatal(err)
	}
	if err := d.Cleanup(); err != nil {
		t.Fatal(err)
	}

	d2 := &LOM{InitFuncs: []DomainManipulator{Load(&buf)}}
	if err := d2.Init(); err != nil {
		t.Fatal(err)
	}

	if d2.Dt != d.Dt {
		t.Errorf("Dt: got %g, want %g", d2.Dt, d.Dt)
	}
	if !reflect.DeepEqual(d2.SSH, d.SSH) {
		t.Errorf("SSH: got %v, want %v", d2.SSH, d.SSH)
	}
	if !reflect.DeepEqual(d2.Thickness.Elements, d.Thickness.Elements) {
		t.Error("thickness fields differ after a save/load roundtrip")
	}
	if !reflect.DeepEqual(d2.Mesh, d.Mesh) {
		t.Error("meshes differ after a save/load roundtrip")
	}

	// The rebuilt arrays must be fully usable.
	if got := d2.Thickness.Get(1, 1); got != d.Thickness.Get(1, 1) {
		t.Errorf("indexed read after load: got %g, want %g", got, d.Thickness.Get(1, 1))
	}
}

func TestInitialStateErrors(t *testing.T) {
	mesh, vert := uniformMesh(2, []float64{10}, []float64{1})
	d := &LOM{InitFuncs: []DomainManipulator{
		UseMesh(mesh, vert),
		InitialState([]float64{0.1}, nil),
	}}
	if err := d.Init(); err == nil {
		t.Error("expected an error for a short initial SSH field")
	}
}
