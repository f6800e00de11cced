package united

import (
	"fmt"
)

// Reset discards all links. Slots are then added with Extend, written
// with SetRaw and indexed with Reindex.
func (t *Table[T]) Reset() error {
	if t.words == nil {
		return ErrClosed
	}
	version := t.header(headerVersion)
	clear(t.words)
	t.setHeader(headerVersion, version+1)
	return nil
}

// Extend raises the allocated mark to to, growing the region as needed.
// New slots read as free with zero payload.
func (t *Table[T]) Extend(to T) error {
	if t.words == nil {
		return ErrClosed
	}
	allocated := t.header(headerAllocated)
	if to <= allocated {
		return nil
	}
	if to > t.limit {
		return fmt.Errorf("%w: %d slots exceed limit %d", ErrOutOfMemory, to, t.limit)
	}
	if err := t.ensure(to); err != nil {
		return err
	}
	t.setHeader(headerAllocated, to)
	return nil
}

// Raw returns the stored (source, target) pair of a slot, live or free.
// For a free slot this is (next, 0).
func (t *Table[T]) Raw(id T) (source, target T) {
	return t.word(id, fieldSource), t.word(id, fieldTarget)
}

// SetRaw stores a (source, target) pair without touching the indices.
func (t *Table[T]) SetRaw(id, source, target T) {
	t.setWord(id, fieldSource, source)
	t.setWord(id, fieldTarget, target)
}

// Reindex rebuilds the free list header and both indices after SetRaw.
// isFree classifies each slot; free slots keep their stored next pointer.
func (t *Table[T]) Reindex(freeHead T, isFree func(id T) bool) error {
	if t.words == nil {
		return ErrClosed
	}
	allocated := t.header(headerAllocated)
	if freeHead > allocated {
		return fmt.Errorf("%w: free head %d beyond allocated %d", ErrCorrupt, freeHead, allocated)
	}

	t.setHeader(headerSourceRoot, 0)
	t.setHeader(headerTargetRoot, 0)

	var free T
	for id := T(1); id != 0 && id <= allocated; id++ {
		if isFree(id) {
			if t.word(id, fieldTarget) != 0 {
				return fmt.Errorf("%w: free slot %d has target %d", ErrCorrupt, id, t.word(id, fieldTarget))
			}
			free++
			continue
		}
		t.link(id)
	}

	t.setHeader(headerFreeHead, freeHead)
	t.setHeader(headerFreeCount, free)
	t.bump()
	return nil
}
