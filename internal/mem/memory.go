package mem

import (
	"errors"
	"fmt"
)

var (
	// ErrGrowthRefused is returned when the acquirer refuses additional bytes.
	ErrGrowthRefused = errors.New("mem: growth refused")
	// ErrClosed is returned when growing a closed region.
	ErrClosed = errors.New("mem: region is closed")
)

// Acquirer accounts for the bytes held by a region.
type Acquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// Kind names a Memory implementation.
type Kind string

const (
	// KindHeap is a Go heap region.
	KindHeap Kind = "heap"
	// KindAnon is an off-heap anonymous mapping.
	KindAnon Kind = "anon"
)

// Memory is a growable byte region.
type Memory interface {
	// Bytes returns the whole region. The slice is invalidated by Grow and Close.
	Bytes() []byte
	// Grow ensures len(Bytes()) >= size. Existing contents are preserved and
	// new bytes are zero.
	Grow(size int) error
	// Kind reports the implementation.
	Kind() Kind
	// Close releases the region and its reservation.
	Close() error
}

// New creates a region of the given kind.
func New(kind Kind, acquirer Acquirer) (Memory, error) {
	switch kind {
	case KindHeap, "":
		return NewHeap(acquirer), nil
	case KindAnon:
		return NewAnon(acquirer), nil
	default:
		return nil, fmt.Errorf("mem: unknown kind %q", kind)
	}
}

// reserve charges delta bytes to the acquirer.
func reserve(acquirer Acquirer, delta int) error {
	if acquirer == nil || delta <= 0 {
		return nil
	}
	if err := acquirer.AcquireMemory(int64(delta)); err != nil {
		return fmt.Errorf("%w: %d bytes: %w", ErrGrowthRefused, delta, err)
	}
	return nil
}

func release(acquirer Acquirer, n int) {
	if acquirer == nil || n <= 0 {
		return
	}
	acquirer.ReleaseMemory(int64(n))
}
