package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	dir := t.TempDir()
	lfs := LocalFS{}

	f, err := lfs.CreateTemp(dir, "test-*.tmp")
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	target := filepath.Join(dir, "test.txt")
	require.NoError(t, lfs.Rename(f.Name(), target))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(target))
	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	t.Run("write limit", func(t *testing.T) {
		ffs := NewFaultyFS(nil, Fault{FailAfterBytes: 4})
		f, err := ffs.CreateTemp(t.TempDir(), "*")
		require.NoError(t, err)
		defer f.Close()

		_, err = f.Write([]byte("abc"))
		require.NoError(t, err)
		_, err = f.Write([]byte("de"))
		require.ErrorIs(t, err, ErrInjected)
	})

	t.Run("sync and close", func(t *testing.T) {
		ffs := NewFaultyFS(nil, Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true})
		f, err := ffs.CreateTemp(t.TempDir(), "*")
		require.NoError(t, err)

		require.ErrorIs(t, f.Sync(), ErrInjected)
		require.ErrorIs(t, f.Close(), ErrInjected)
	})

	t.Run("rename", func(t *testing.T) {
		dir := t.TempDir()
		ffs := NewFaultyFS(nil, Fault{FailAfterBytes: -1, FailOnRename: true})
		f, err := ffs.CreateTemp(dir, "*")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		require.ErrorIs(t, ffs.Rename(f.Name(), filepath.Join(dir, "x")), ErrInjected)
		require.NoError(t, ffs.Remove(f.Name()))
		assert.Equal(t, []string{f.Name()}, ffs.Removed())
	})
}
