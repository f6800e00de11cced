package united

import "fmt"

// acquire pops the free list or extends the allocated range.
func (t *Table[T]) acquire() (T, error) {
	if head := t.header(headerFreeHead); head != 0 {
		t.setHeader(headerFreeHead, t.word(head, fieldNext))
		t.setHeader(headerFreeCount, t.header(headerFreeCount)-1)
		t.setWord(head, fieldNext, 0)
		return head, nil
	}

	allocated := t.header(headerAllocated)
	if allocated >= t.limit {
		return 0, fmt.Errorf("%w: id space exhausted at %d", ErrOutOfMemory, t.limit)
	}
	id := allocated + 1
	if err := t.ensure(id); err != nil {
		return 0, err
	}
	t.setHeader(headerAllocated, id)
	return id, nil
}

// release pushes a detached slot onto the free list.
func (t *Table[T]) release(id T) {
	t.setWord(id, fieldNext, t.header(headerFreeHead))
	t.setHeader(headerFreeHead, id)
	t.setHeader(headerFreeCount, t.header(headerFreeCount)+1)
}

// WalkFree calls fn for every id on the free list, head first.
// A cycle, an out-of-range id or a live id on the list is reported as ErrCorrupt.
func (t *Table[T]) WalkFree(fn func(id T)) error {
	allocated := t.Allocated()
	count := t.FreeCount()

	var seen T
	for id := t.FreeHead(); id != 0; id = t.word(id, fieldNext) {
		if id > allocated {
			return fmt.Errorf("%w: free id %d beyond allocated %d", ErrCorrupt, id, allocated)
		}
		if t.word(id, fieldSourceSize) != 0 {
			return fmt.Errorf("%w: live id %d on free list", ErrCorrupt, id)
		}
		seen++
		if seen > count {
			return fmt.Errorf("%w: free list longer than %d (cycle?)", ErrCorrupt, count)
		}
		if fn != nil {
			fn(id)
		}
	}

	if seen != count {
		return fmt.Errorf("%w: free list holds %d ids, header says %d", ErrCorrupt, seen, count)
	}
	return nil
}
