package fileutil

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriteAtomic(t *testing.T) {
	t.Run("Success - replaces existing file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "data", "products.dat")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		// when
		err := WriteAtomic(path, func(w *bufio.Writer) error {
			_, err := w.WriteString("new")
			return err
		})
		// then
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
		assert.NoFileExists(t, path+".tmp")
	})

	t.Run("Success - creates missing directory", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
		// when
		err := WriteAtomic(path, func(w *bufio.Writer) error {
			_, err := w.WriteString("id\n")
			return err
		})
		// then
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("Error - writer failure keeps original", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "products.dat")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
		errWrite := errors.New("write failed")
		// when
		err := WriteAtomic(path, func(_ *bufio.Writer) error {
			return errWrite
		})
		// then
		assert.ErrorIs(t, err, errWrite)
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "old", string(data))
		assert.NoFileExists(t, path+".tmp")
	})
}
