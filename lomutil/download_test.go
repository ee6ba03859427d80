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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func TestMaybeDownloadLocal(t *testing.T) {
	f, err := ioutil.TempFile("", "lomtest")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if got := maybeDownload(f.Name(), nil); got != f.Name() {
		t.Errorf("got %s, want %s", got, f.Name())
	}
	if got := maybeDownload("", nil); got != "" {
		t.Errorf("an empty path should pass through, got %s", got)
	}
}

func TestMaybeDownloadHTTP(t *testing.T) {
	const contents = "netcdf bytes"
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(contents))
		}))
	defer ts.Close()

	c := make(chan string)
	go func() {
		for range c {
		}
	}()
	out := maybeDownload(ts.URL+"/mesh.nc", c)
	defer os.Remove(out)

	b, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != contents {
		t.Errorf("got %q, want %q", string(b), contents)
	}
}
