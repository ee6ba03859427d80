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
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
)

// maybeDownload checks if the input is an existing file locally. If not,
// it checks whether the file is an HTTP URL; if it is, it downloads the
// file and returns the path to the downloaded copy. c, if not nil, is a
// channel across which logging messages will be sent.
func maybeDownload(path string, c chan string) string {
	if path == "" {
		return path
	}

	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path, c)
	}

	return path
}

// downloadHTTP downloads a file from the specified URL, retrying with
// exponential backoff on transient failures, and returns the path to the
// downloaded file.
func downloadHTTP(path string, c chan string) string {
	dir, err := ioutil.TempDir("", "lom")
	if err != nil {
		panic(fmt.Errorf("lomutil: failed creating temporary download directory: %v", err))
	}
	out := filepath.Join(dir, filepath.Base(path))

	if c != nil {
		c <- fmt.Sprintf("Downloading %s...\n", path)
	}
	err = backoff.RetryNotify(
		func() error {
			resp, err := http.Get(path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("lomutil: downloading %s: %s", path, resp.Status)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(f, resp.Body)
			return err
		},
		backoff.NewExponentialBackOff(),
		func(err error, d time.Duration) {
			if c != nil {
				c <- fmt.Sprintf("%v: retrying in %v\n", err, d)
			}
		},
	)
	if err != nil {
		panic(fmt.Errorf("lomutil: failed downloading %s: %v", path, err))
	}
	return out
}
