// Package fileutil holds small file helpers shared by the data stores.
package fileutil

import (
	"bufio"
	"os"
	"path/filepath"
)

// WriteAtomic writes path.tmp through a buffered writer, syncs it and renames it over path.
// The temporary file is removed if any step fails.
func WriteAtomic(path string, write func(w *bufio.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				_ = f.Close()
			}
			_ = os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(f)
	if err = write(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	closed = true
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
