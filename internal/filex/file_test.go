package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeToCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDir("orders")
	require.NoError(t, err)

	want := filepath.Join(tmp, "orders")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_AbsoluteAndIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)

	require.Equal(t, dir, first)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	require.NoError(t, os.WriteFile("orders", []byte("x"), 0o660))

	_, err := EnsureDir("orders")
	require.Error(t, err)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, Remove(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	require.NoError(t, Remove(path), "missing file is fine")
}
