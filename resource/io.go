package resource

import (
	"context"
	"io"
)

// RateLimitedWriter throttles writes to the controller's IO limit and
// counts the bytes that reached the underlying writer.
type RateLimitedWriter struct {
	ctx     context.Context
	w       io.Writer
	rc      *Controller
	written int64
}

// NewRateLimitedWriter wraps w. A nil controller only counts.
func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{ctx: ctx, w: w, rc: rc}
}

// Write waits for IO budget, then writes p. Large writes are admitted in
// burst-sized pieces, so a partial count is possible when ctx ends.
func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	var n int
	for len(p) > 0 {
		chunk := p[:min(len(p), w.rc.ioBurst(len(p)))]
		if err := w.rc.AcquireIO(w.ctx, len(chunk)); err != nil {
			return n, err
		}
		m, err := w.w.Write(chunk)
		n += m
		w.written += int64(m)
		if err != nil {
			return n, err
		}
		p = p[m:]
	}
	return n, nil
}

// Written returns the number of bytes written so far.
func (w *RateLimitedWriter) Written() int64 {
	return w.written
}
