package doublets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/doublets/internal/fs"
)

func TestExportFile(t *testing.T) {
	links, err := New[uint64]()
	require.NoError(t, err)
	defer links.Close()

	for range 100 {
		_, err := links.Create()
		require.NoError(t, err)
	}
	_, err = links.Update(50, 1, 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "links.dblt")
	n, err := links.ExportFile(context.Background(), path, WithCompression(CompressionLZ4))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, n, info.Size())

	restored, err := ImportFile[uint64](context.Background(), path)
	require.NoError(t, err)
	defer restored.Close()

	got, err := restored.Get(50)
	require.NoError(t, err)
	assert.Equal(t, Link[uint64]{ID: 50, Source: 1, Target: 2}, got)
	assert.Equal(t, uint64(100), restored.CountAll())
}

func TestExportFileFaults(t *testing.T) {
	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"write", fs.Fault{FailAfterBytes: 100}},
		{"sync", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := New[uint64]()
			require.NoError(t, err)
			defer links.Close()
			for range 1000 {
				_, err := links.Create()
				require.NoError(t, err)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "links.dblt")
			require.NoError(t, os.WriteFile(path, []byte("previous"), 0o600))

			ffs := fs.NewFaultyFS(nil, tt.fault)
			_, err = links.exportFile(context.Background(), ffs, path, nil)
			require.ErrorIs(t, err, fs.ErrInjected)

			// The old file survives and no temp file is left behind.
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "previous", string(data))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
			assert.Len(t, ffs.Removed(), 1)
		})
	}
}
