package doublets

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/doublets/internal/fs"
)

const fileBufferSize = 256 << 10

// ExportFile writes an image to path. The image is written to a temporary
// file in the same directory, synced and renamed into place, so path holds
// either the previous contents or the complete new image.
func (l *Links[T]) ExportFile(ctx context.Context, path string, optFns ...ImageOption) (int64, error) {
	return l.exportFile(ctx, fs.Default, path, optFns)
}

func (l *Links[T]) exportFile(ctx context.Context, fsys fs.FileSystem, path string, optFns []ImageOption) (int64, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := fsys.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, fileBufferSize)
	n, err := l.Export(ctx, buf, optFns...)
	if err != nil {
		return n, err
	}
	if err := buf.Flush(); err != nil {
		return n, fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("failed to sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close image: %w", err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName)
		committed = true
		return n, fmt.Errorf("failed to rename image: %w", err)
	}
	committed = true
	return n, nil
}
