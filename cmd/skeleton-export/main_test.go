package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
}

func TestListInputs(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		file := filepath.Join(dir, "clip.json")
		touch(t, file)

		paths, err := listInputs(file)
		require.NoError(t, err)
		assert.Equal(t, []string{file}, paths)
	})

	t.Run("directory walks subdirectories", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "b.json"))
		touch(t, filepath.Join(dir, "sub", "a.json"))
		touch(t, filepath.Join(dir, "sub", "deep", "c.json"))
		touch(t, filepath.Join(dir, "notes.txt"))

		paths, err := listInputs(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "b.json"),
			filepath.Join(dir, "sub", "a.json"),
			filepath.Join(dir, "sub", "deep", "c.json"),
		}, paths)
	})

	t.Run("glob pattern", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "run1.json"))
		touch(t, filepath.Join(dir, "run2.json"))
		touch(t, filepath.Join(dir, "other.json"))

		paths, err := listInputs(filepath.Join(dir, "run*.json"))
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "run1.json"),
			filepath.Join(dir, "run2.json"),
		}, paths)
	})

	t.Run("missing path", func(t *testing.T) {
		t.Parallel()
		_, err := listInputs(filepath.Join(t.TempDir(), "absent"))
		assert.Error(t, err)
	})
}
