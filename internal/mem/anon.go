package mem

import (
	"fmt"

	"github.com/hupe1980/doublets/internal/mmap"
)

// Anon is a Memory backed by an anonymous mapping outside the Go heap.
type Anon struct {
	mapping  *mmap.Mapping
	acquirer Acquirer
	closed   bool
}

// NewAnon creates an empty off-heap region. Nothing is mapped until the first Grow.
func NewAnon(acquirer Acquirer) *Anon {
	return &Anon{acquirer: acquirer}
}

// Bytes implements Memory.
func (a *Anon) Bytes() []byte {
	if a.mapping == nil {
		return nil
	}
	return a.mapping.Bytes()
}

// Grow implements Memory.
//
// A new mapping is created and the old contents copied over; the kernel hands
// out zero pages so the tail needs no clearing.
func (a *Anon) Grow(size int) error {
	if a.closed {
		return ErrClosed
	}
	current := 0
	if a.mapping != nil {
		current = a.mapping.Size()
	}
	if size <= current {
		return nil
	}

	if err := reserve(a.acquirer, size-current); err != nil {
		return err
	}

	next, err := mmap.MapAnon(size)
	if err != nil {
		release(a.acquirer, size-current)
		return fmt.Errorf("failed to map anonymous memory: %w", err)
	}
	_ = next.Advise(mmap.AccessRandom)

	if a.mapping != nil {
		copy(next.Bytes(), a.mapping.Bytes())
		if err := a.mapping.Close(); err != nil {
			_ = next.Close()
			release(a.acquirer, size-current)
			return fmt.Errorf("failed to unmap previous region: %w", err)
		}
	}
	a.mapping = next

	return nil
}

// Kind implements Memory.
func (a *Anon) Kind() Kind {
	return KindAnon
}

// Close implements Memory.
func (a *Anon) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.mapping == nil {
		return nil
	}
	size := a.mapping.Size()
	err := a.mapping.Close()
	a.mapping = nil
	release(a.acquirer, size)
	return err
}
