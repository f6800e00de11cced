package mem

// Heap is a Memory backed by an aligned Go slice.
type Heap struct {
	buf      []byte
	acquirer Acquirer
	closed   bool
}

// NewHeap creates an empty heap region.
func NewHeap(acquirer Acquirer) *Heap {
	return &Heap{acquirer: acquirer}
}

// Bytes implements Memory.
func (h *Heap) Bytes() []byte {
	return h.buf
}

// Grow implements Memory.
func (h *Heap) Grow(size int) error {
	if h.closed {
		return ErrClosed
	}
	if size <= len(h.buf) {
		return nil
	}

	if err := reserve(h.acquirer, size-len(h.buf)); err != nil {
		return err
	}

	buf := AllocAligned(size)
	copy(buf, h.buf)
	h.buf = buf

	return nil
}

// Kind implements Memory.
func (h *Heap) Kind() Kind {
	return KindHeap
}

// Close implements Memory.
func (h *Heap) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	release(h.acquirer, len(h.buf))
	h.buf = nil
	return nil
}
