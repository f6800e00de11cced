package doublets

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/doublets/internal/blockcomp"
	"github.com/hupe1980/doublets/internal/conv"
	"github.com/hupe1980/doublets/internal/hash"
	"github.com/hupe1980/doublets/internal/mmap"
	"github.com/hupe1980/doublets/resource"
)

// Image layout, all integers little-endian:
//
//	preamble  magic "DBLT" | version u16 | id width u8 | compression u8 |
//	          14 constant words | body length u64
//	body      block framed (package blockcomp):
//	          allocated | freeHead | allocated x (source, target)
//	trailer   CRC32C u32 over preamble and uncompressed body
//
// Free slots are stored as (next, 0). Liveness is recovered on import by
// walking the free list from freeHead.
const (
	imageMagic   = "DBLT"
	imageVersion = 1

	constantWords = 14
	chunkPairs    = 4096
)

// Compression selects image body compression.
type Compression = blockcomp.Kind

const (
	// CompressionNone stores the body raw.
	CompressionNone = blockcomp.None
	// CompressionLZ4 favours speed.
	CompressionLZ4 = blockcomp.LZ4
	// CompressionZstd favours size.
	CompressionZstd = blockcomp.Zstd
)

type imageOptions struct {
	compression Compression
	blockSize   int
}

// ImageOption configures Export.
type ImageOption func(*imageOptions)

// WithCompression sets the body compression. Default: CompressionNone.
func WithCompression(c Compression) ImageOption {
	return func(o *imageOptions) {
		o.compression = c
	}
}

// WithBlockSize sets the uncompressed size of each body block.
// Default: 256KB.
func WithBlockSize(n int) ImageOption {
	return func(o *imageOptions) {
		o.blockSize = n
	}
}

func putWord[T ID](b []byte, v T) []byte {
	if conv.WidthOf[T]() == 4 {
		return binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return binary.LittleEndian.AppendUint64(b, uint64(v))
}

func getWord[T ID](b []byte) T {
	if conv.WidthOf[T]() == 4 {
		return T(binary.LittleEndian.Uint32(b))
	}
	return T(binary.LittleEndian.Uint64(b))
}

func (c Constants[T]) words() [constantWords]T {
	w := [constantWords]T{
		c.IndexPart, c.SourcePart, c.TargetPart,
		c.Null, c.Any, c.Itself, c.Continue, c.Break, c.Skip,
		c.InternalRange.Lo, c.InternalRange.Hi,
	}
	if c.ExternalRange != nil {
		w[11], w[12], w[13] = 1, c.ExternalRange.Lo, c.ExternalRange.Hi
	}
	return w
}

func constantsFromWords[T ID](w [constantWords]T) Constants[T] {
	c := Constants[T]{
		IndexPart: w[0], SourcePart: w[1], TargetPart: w[2],
		Null: w[3], Any: w[4], Itself: w[5], Continue: w[6], Break: w[7], Skip: w[8],
		InternalRange: Range[T]{Lo: w[9], Hi: w[10]},
	}
	if w[11] != 0 {
		c.ExternalRange = &Range[T]{Lo: w[12], Hi: w[13]}
	}
	return c
}

// Equal reports whether both constants describe the same store.
func (c Constants[T]) Equal(o Constants[T]) bool {
	return c.words() == o.words()
}

// Export writes an image of the store to w and returns the number of bytes
// written. Writes are throttled by the store's IO limit, if any.
func (l *Links[T]) Export(ctx context.Context, w io.Writer, optFns ...ImageOption) (int64, error) {
	rw := resource.NewRateLimitedWriter(ctx, w, l.rc)
	err := l.export(ctx, rw, optFns)

	var links uint64
	if l.table != nil {
		links = uint64(l.table.Live())
	}
	l.logger.LogImage(ctx, "export", links, rw.Written(), err)
	return rw.Written(), err
}

func (l *Links[T]) export(ctx context.Context, w io.Writer, optFns []ImageOption) error {
	table := l.table
	if table == nil {
		return ErrClosed
	}

	o := imageOptions{compression: CompressionNone}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	width := conv.WidthOf[T]()
	allocated := table.Allocated()
	crc := hash.NewCRC32C()

	pre := make([]byte, 0, 8+constantWords*width+8)
	pre = append(pre, imageMagic...)
	pre = binary.LittleEndian.AppendUint16(pre, imageVersion)
	pre = append(pre, byte(width), byte(o.compression))
	for _, v := range l.constants.words() {
		pre = putWord(pre, v)
	}
	pre = binary.LittleEndian.AppendUint64(pre, (uint64(allocated)+1)*2*uint64(width))

	if _, err := w.Write(pre); err != nil {
		return fmt.Errorf("failed to write image preamble: %w", err)
	}
	_, _ = crc.Write(pre)

	bw, err := blockcomp.NewWriter(w, o.compression, o.blockSize)
	if err != nil {
		return err
	}
	body := io.MultiWriter(bw, crc)

	buf := make([]byte, 0, chunkPairs*2*width)
	buf = putWord(buf, allocated)
	buf = putWord(buf, table.FreeHead())

	for id := T(1); id != 0 && id <= allocated; id++ {
		source, target := table.Raw(id)
		buf = putWord(buf, source)
		buf = putWord(buf, target)

		if len(buf) == cap(buf) {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := body.Write(buf); err != nil {
				return fmt.Errorf("failed to write image body: %w", err)
			}
			buf = buf[:0]
		}
	}
	if _, err := body.Write(buf); err != nil {
		return fmt.Errorf("failed to write image body: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("failed to write image body: %w", err)
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc.Sum32())
	if _, err := w.Write(trailer[:]); err != nil {
		return fmt.Errorf("failed to write image trailer: %w", err)
	}
	return nil
}

// Import reads an image written by Export into a new store. The constants
// come from the image; if WithConstants is also given it must match.
// Memory options apply to the new store.
func Import[T ID](ctx context.Context, r io.Reader, optFns ...Option) (*Links[T], error) {
	o := applyOptions(optFns)
	l, err := importImage[T](ctx, r, &o)

	var links uint64
	if l != nil {
		links = uint64(l.table.Live())
	}
	o.logger.LogImage(ctx, "import", links, 0, err)
	return l, err
}

// ImportFile maps the image at path read-only and imports it.
func ImportFile[T ID](ctx context.Context, path string, optFns ...Option) (*Links[T], error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	_ = m.Advise(mmap.AccessSequential)

	return Import[T](ctx, io.NewSectionReader(m, 0, int64(m.Size())), optFns...)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptImage, fmt.Sprintf(format, args...))
}

func importImage[T ID](ctx context.Context, r io.Reader, o *options) (*Links[T], error) {
	width := conv.WidthOf[T]()
	crc := hash.NewCRC32C()
	tr := io.TeeReader(r, crc)

	head := make([]byte, 8)
	if _, err := io.ReadFull(tr, head); err != nil {
		return nil, corrupt("preamble: %v", err)
	}
	if string(head[:4]) != imageMagic {
		return nil, corrupt("bad magic %q", head[:4])
	}
	if v := binary.LittleEndian.Uint16(head[4:]); v != imageVersion {
		return nil, corrupt("unsupported version %d", v)
	}
	if int(head[6]) != width {
		return nil, corrupt("image has %d-byte ids, store uses %d", head[6], width)
	}
	kind := Compression(head[7])
	if !kind.Valid() {
		return nil, corrupt("unknown compression %d", head[7])
	}

	rest := make([]byte, constantWords*width+8)
	if _, err := io.ReadFull(tr, rest); err != nil {
		return nil, corrupt("preamble: %v", err)
	}
	var words [constantWords]T
	for i := range words {
		words[i] = getWord[T](rest[i*width:])
	}
	c := constantsFromWords(words)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}
	if o.constants != nil {
		given, ok := o.constants.(Constants[T])
		if !ok || !given.Equal(c) {
			return nil, fmt.Errorf("%w: image constants differ from the configured ones", ErrInvalidConstants)
		}
	}
	bodyLen := binary.LittleEndian.Uint64(rest[constantWords*width:])

	br, err := blockcomp.NewReader(r, kind)
	if err != nil {
		return nil, err
	}
	body := io.TeeReader(br, crc)

	hdr := make([]byte, 2*width)
	if _, err := io.ReadFull(body, hdr); err != nil {
		return nil, corrupt("body header: %v", err)
	}
	allocated := getWord[T](hdr)
	freeHead := getWord[T](hdr[width:])
	if want := (uint64(allocated) + 1) * 2 * uint64(width); bodyLen != want {
		return nil, corrupt("body length %d, expected %d", bodyLen, want)
	}

	l, err := newLinks(c, o)
	if err != nil {
		return nil, err
	}
	if err := l.load(ctx, body, allocated, freeHead); err != nil {
		_ = l.Close()
		return nil, err
	}

	var extra [1]byte
	if n, err := br.Read(extra[:]); n != 0 || !errors.Is(err, io.EOF) {
		_ = l.Close()
		return nil, corrupt("trailing data in body")
	}
	sum := crc.Sum32()

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		_ = l.Close()
		return nil, corrupt("trailer: %v", err)
	}
	if got := binary.LittleEndian.Uint32(trailer[:]); got != sum {
		_ = l.Close()
		return nil, corrupt("checksum mismatch: stored %08x, computed %08x", got, sum)
	}

	return l, nil
}

// load fills the table from the body and rebuilds free list and indices.
// The table grows chunk by chunk as pairs arrive, so a preamble that
// overstates allocated fails on the short body before memory is spent.
func (l *Links[T]) load(ctx context.Context, body io.Reader, allocated, freeHead T) error {
	table := l.table
	if allocated > table.Limit() {
		return corrupt("%d allocated ids exceed internal range", allocated)
	}
	if err := table.Reset(); err != nil {
		return translateError(err)
	}

	width := conv.WidthOf[T]()
	buf := make([]byte, chunkPairs*2*width)
	for id := T(1); id != 0 && id <= allocated; {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := min(uint64(allocated-id)+1, chunkPairs)
		chunk := buf[:n*2*uint64(width)]
		if _, err := io.ReadFull(body, chunk); err != nil {
			return corrupt("body: %v", err)
		}
		if err := table.Extend(id + T(n) - 1); err != nil {
			return translateError(err)
		}
		for off := 0; off < len(chunk); off += 2 * width {
			table.SetRaw(id, getWord[T](chunk[off:]), getWord[T](chunk[off+width:]))
			id++
		}
	}

	free := roaring64.New()
	for id := freeHead; id != 0; {
		if id > allocated {
			return corrupt("free id %d beyond allocated %d", id, allocated)
		}
		if free.Contains(uint64(id)) {
			return corrupt("free list cycles at %d", id)
		}
		free.Add(uint64(id))
		id, _ = table.Raw(id)
	}

	if err := table.Reindex(freeHead, func(id T) bool { return free.Contains(uint64(id)) }); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	c := &l.constants
	var bad error
	table.EachLive(func(id T) bool {
		source, target, _ := table.Get(id)
		for _, v := range [2]T{source, target} {
			if v != c.Null && !c.IsExternal(v) && !(c.IsInternal(v) && v <= allocated) {
				bad = corrupt("link %d references %d outside every range", id, v)
				return false
			}
		}
		return true
	})
	return bad
}
