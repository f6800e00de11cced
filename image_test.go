package doublets_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/doublets"
	"github.com/hupe1980/doublets/testutil"
)

// buildGraph fills a store with n links, rewires them randomly and frees
// every fifth one, so the image carries a non-trivial free list.
func buildGraph(t *testing.T, links *doublets.Links[uint64], n int) {
	t.Helper()
	rng := testutil.NewRNG(7)
	for range n {
		_, err := links.Create()
		require.NoError(t, err)
	}
	for id := uint64(1); id <= uint64(n); id++ {
		s := uint64(rng.Intn(n)) + 1
		tg := uint64(rng.Intn(n)) + 1
		_, err := links.Update(id, s, tg)
		require.NoError(t, err)
	}
	for id := uint64(5); id <= uint64(n); id += 5 {
		_, err := links.Delete(id)
		require.NoError(t, err)
	}
}

func snapshot(t *testing.T, links *doublets.Links[uint64]) []doublets.Link[uint64] {
	t.Helper()
	var out []doublets.Link[uint64]
	for l, err := range links.EachSeq(links.Constants().AnyQuery()) {
		require.NoError(t, err)
		out = append(out, l)
	}
	return out
}

func exportImage(t *testing.T, links *doublets.Links[uint64], opts ...doublets.ImageOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := links.Export(context.Background(), &buf, opts...)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	return buf.Bytes()
}

func TestImageRoundTrip(t *testing.T) {
	for _, c := range []doublets.Compression{doublets.CompressionNone, doublets.CompressionLZ4, doublets.CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			links := newStore(t)
			buildGraph(t, links, 5000)
			want := snapshot(t, links)

			img := exportImage(t, links, doublets.WithCompression(c), doublets.WithBlockSize(16<<10))

			restored, err := doublets.Import[uint64](context.Background(), bytes.NewReader(img))
			require.NoError(t, err)
			defer restored.Close()

			assert.Equal(t, want, snapshot(t, restored))
			assert.Equal(t, links.Stats().Free, restored.Stats().Free)

			report, err := restored.Verify(context.Background())
			require.NoError(t, err)
			assert.Equal(t, uint64(len(want)), report.Live)

			// Freed ids come back in the same order.
			for range 3 {
				a, err := links.Create()
				require.NoError(t, err)
				b, err := restored.Create()
				require.NoError(t, err)
				assert.Equal(t, a, b)
			}
		})
	}
}

func TestImageCompresses(t *testing.T) {
	links := newStore(t)
	for range 10000 {
		_, err := links.Create()
		require.NoError(t, err)
	}

	raw := exportImage(t, links)
	packed := exportImage(t, links, doublets.WithCompression(doublets.CompressionZstd))
	assert.Less(t, len(packed), len(raw))
}

func TestImageEmptyStore(t *testing.T) {
	links := newStore(t)
	img := exportImage(t, links, doublets.WithCompression(doublets.CompressionLZ4))

	restored, err := doublets.Import[uint64](context.Background(), bytes.NewReader(img))
	require.NoError(t, err)
	defer restored.Close()
	assert.Equal(t, uint64(0), restored.CountAll())

	id, err := restored.Create()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestImportFile(t *testing.T) {
	links := newStore(t)
	buildGraph(t, links, 300)
	img := exportImage(t, links, doublets.WithCompression(doublets.CompressionZstd))

	path := filepath.Join(t.TempDir(), "links.dblt")
	require.NoError(t, os.WriteFile(path, img, 0o600))

	restored, err := doublets.ImportFile[uint64](context.Background(), path, doublets.WithMemory(doublets.MemoryAnon))
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, snapshot(t, links), snapshot(t, restored))
	assert.Equal(t, doublets.MemoryAnon, restored.Stats().MemoryKind)

	_, err = doublets.ImportFile[uint64](context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestImportRejects(t *testing.T) {
	links := newStore(t)
	for range 4 {
		_, err := links.Create()
		require.NoError(t, err)
	}
	img := exportImage(t, links)

	// Preamble is 8 bytes, 14 constant words and the body length; the body
	// then starts with an 8-byte block header, allocated and freeHead.
	const preamble = 8 + 14*8 + 8
	const firstPair = preamble + 8 + 16

	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(bytes.Clone(img))
	}

	tests := []struct {
		name    string
		img     []byte
		opts    []doublets.Option
		wantErr error
	}{
		{"empty", nil, nil, doublets.ErrCorruptImage},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), nil, doublets.ErrCorruptImage},
		{"version", mutate(func(b []byte) []byte { b[4] = 9; return b }), nil, doublets.ErrCorruptImage},
		{"compression", mutate(func(b []byte) []byte { b[7] = 42; return b }), nil, doublets.ErrCorruptImage},
		{"checksum", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }), nil, doublets.ErrCorruptImage},
		// Link 3 now reads 2 -> 3: still well formed, only the CRC notices.
		{"body", mutate(func(b []byte) []byte { b[firstPair+2*16] = 2; return b }), nil, doublets.ErrCorruptImage},
		{"truncated", img[:len(img)-10], nil, doublets.ErrCorruptImage},
		// Claims 2^40 links with a four-link body: fails on the short body
		// instead of sizing the table up front.
		{"overstated allocated", mutate(func(b []byte) []byte {
			const allocated = uint64(1) << 40
			binary.LittleEndian.PutUint64(b[preamble+8:], allocated)
			binary.LittleEndian.PutUint64(b[preamble-8:], (allocated+1)*16)
			return b
		}), nil, doublets.ErrCorruptImage},
		{"missing trailer", mutate(func(b []byte) []byte { return b[:len(b)-4] }), nil, doublets.ErrCorruptImage},
		{"constants", img, []doublets.Option{doublets.WithConstants(doublets.ViaOnlyExternal[uint64](true))}, doublets.ErrInvalidConstants},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := doublets.Import[uint64](context.Background(), bytes.NewReader(tt.img), tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, l)
		})
	}
}

func TestImportWidthMismatch(t *testing.T) {
	links := newStore(t)
	_, err := links.Create()
	require.NoError(t, err)
	img := exportImage(t, links)

	_, err = doublets.Import[uint32](context.Background(), bytes.NewReader(img))
	require.ErrorIs(t, err, doublets.ErrCorruptImage)
}

func TestImportMemoryLimit(t *testing.T) {
	links := newStore(t)
	for range 1000 {
		_, err := links.Create()
		require.NoError(t, err)
	}
	img := exportImage(t, links)

	_, err := doublets.Import[uint64](context.Background(), bytes.NewReader(img), doublets.WithMemoryLimit(4096))
	require.ErrorIs(t, err, doublets.ErrOutOfMemory)
}

func TestExportIOLimit(t *testing.T) {
	links := newStore(t, doublets.WithIOLimit(1024))
	for range 100 {
		_, err := links.Create()
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	_, err := links.Export(ctx, &buf)
	require.Error(t, err)
}

func TestExportClosed(t *testing.T) {
	links, err := doublets.New[uint64]()
	require.NoError(t, err)
	require.NoError(t, links.Close())

	var buf bytes.Buffer
	_, err = links.Export(context.Background(), &buf)
	require.ErrorIs(t, err, doublets.ErrClosed)
}
