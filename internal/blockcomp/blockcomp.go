package blockcomp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind selects the block compression algorithm.
type Kind uint8

const (
	// None stores blocks raw.
	None Kind = 0
	// LZ4 uses LZ4 block compression.
	LZ4 Kind = 1
	// Zstd uses Zstandard at the default level.
	Zstd Kind = 2
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is a known algorithm.
func (k Kind) Valid() bool {
	return k <= Zstd
}

const (
	headerSize = 8

	// DefaultBlockSize is used when the writer is given a non-positive block size.
	DefaultBlockSize = 256 * 1024

	// MaxBlockSize bounds the raw size a reader accepts.
	MaxBlockSize = 64 * 1024 * 1024
)

var (
	// ErrCorrupt is returned when a block header or payload cannot be decoded.
	ErrCorrupt = errors.New("blockcomp: corrupt stream")
	// ErrUnknownKind is returned for an unsupported compression kind.
	ErrUnknownKind = errors.New("blockcomp: unknown compression kind")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// compress returns the stored payload for data and whether it is compressed.
func compress(kind Kind, data []byte) ([]byte, bool, error) {
	var out []byte
	switch kind {
	case None:
		return data, false, nil
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, false, err
		}
		out = buf[:n]
	case Zstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, false, err
		}
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, false, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return data, false, nil
	}
	return out, true, nil
}

func decompress(kind Kind, payload []byte, rawSize int) ([]byte, error) {
	dst := make([]byte, rawSize)
	switch kind {
	case LZ4:
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if n != rawSize {
			return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", ErrCorrupt, n, rawSize)
		}
		return dst, nil
	case Zstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, dst[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if len(out) != rawSize {
			return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", ErrCorrupt, len(out), rawSize)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compressed block in %s stream", ErrCorrupt, kind)
	}
}

// Writer compresses everything written to it in fixed-size blocks.
// Close must be called to flush the final block and the terminator;
// it does not close the underlying writer.
type Writer struct {
	w         io.Writer
	kind      Kind
	blockSize int
	buf       []byte
	written   int64
	closed    bool
}

// NewWriter creates a block writer.
func NewWriter(w io.Writer, kind Kind, blockSize int) (*Writer, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize > MaxBlockSize {
		blockSize = MaxBlockSize
	}
	return &Writer{
		w:         w,
		kind:      kind,
		blockSize: blockSize,
		buf:       make([]byte, 0, blockSize),
	}, nil
}

// Write buffers p, flushing whole blocks as they fill.
func (bw *Writer) Write(p []byte) (int, error) {
	if bw.closed {
		return 0, io.ErrClosedPipe
	}

	total := 0
	for len(p) > 0 {
		space := bw.blockSize - len(bw.buf)
		if space == 0 {
			if err := bw.Flush(); err != nil {
				return total, err
			}
			space = bw.blockSize
		}
		n := min(space, len(p))
		bw.buf = append(bw.buf, p[:n]...)
		total += n
		p = p[n:]
	}
	return total, nil
}

// Flush compresses and writes the buffered block, if any.
func (bw *Writer) Flush() error {
	if len(bw.buf) == 0 {
		return nil
	}

	payload, compressed, err := compress(bw.kind, bw.buf)
	if err != nil {
		return err
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(bw.buf)))
	if compressed {
		binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	}
	if err := bw.emit(hdr[:]); err != nil {
		return err
	}
	if err := bw.emit(payload); err != nil {
		return err
	}
	bw.buf = bw.buf[:0]
	return nil
}

func (bw *Writer) emit(p []byte) error {
	n, err := bw.w.Write(p)
	bw.written += int64(n)
	return err
}

// Close flushes the last block and writes the stream terminator.
func (bw *Writer) Close() error {
	if bw.closed {
		return nil
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	bw.closed = true
	var hdr [headerSize]byte
	return bw.emit(hdr[:])
}

// BytesWritten returns the number of framed bytes emitted so far.
func (bw *Writer) BytesWritten() int64 {
	return bw.written
}

// Reader decodes a stream produced by Writer.
type Reader struct {
	r     io.Reader
	kind  Kind
	block []byte
	pos   int
	done  bool
}

// NewReader creates a block reader.
func NewReader(r io.Reader, kind Kind) (*Reader, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	return &Reader{r: r, kind: kind}, nil
}

// Read implements io.Reader. It returns io.EOF after the terminator block.
func (br *Reader) Read(p []byte) (int, error) {
	for br.pos == len(br.block) {
		if br.done {
			return 0, io.EOF
		}
		if err := br.next(); err != nil {
			return 0, err
		}
	}
	n := copy(p, br.block[br.pos:])
	br.pos += n
	return n, nil
}

func (br *Reader) next() error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(br.r, hdr[:]); err != nil {
		return fmt.Errorf("%w: block header: %w", ErrCorrupt, err)
	}
	rawSize := binary.LittleEndian.Uint32(hdr[0:])
	storedSize := binary.LittleEndian.Uint32(hdr[4:])

	if rawSize == 0 {
		if storedSize != 0 {
			return fmt.Errorf("%w: empty block with %d stored bytes", ErrCorrupt, storedSize)
		}
		br.done = true
		br.block, br.pos = nil, 0
		return nil
	}
	if rawSize > MaxBlockSize || storedSize > MaxBlockSize {
		return fmt.Errorf("%w: block of %d bytes exceeds limit", ErrCorrupt, max(rawSize, storedSize))
	}

	if storedSize == 0 {
		block := make([]byte, rawSize)
		if _, err := io.ReadFull(br.r, block); err != nil {
			return fmt.Errorf("%w: raw block: %w", ErrCorrupt, err)
		}
		br.block, br.pos = block, 0
		return nil
	}

	payload := make([]byte, storedSize)
	if _, err := io.ReadFull(br.r, payload); err != nil {
		return fmt.Errorf("%w: compressed block: %w", ErrCorrupt, err)
	}
	block, err := decompress(br.kind, payload, int(rawSize))
	if err != nil {
		return err
	}
	br.block, br.pos = block, 0
	return nil
}
