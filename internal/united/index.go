package united

import (
	"fmt"

	"github.com/hupe1980/doublets/internal/conv"
	"github.com/hupe1980/doublets/internal/sbt"
)

type sourceTree[T conv.Unsigned] struct{ t *Table[T] }

func (s sourceTree[T]) Left(n T) T      { return s.t.word(n, fieldSourceLeft) }
func (s sourceTree[T]) Right(n T) T     { return s.t.word(n, fieldSourceRight) }
func (s sourceTree[T]) Size(n T) T      { return s.t.word(n, fieldSourceSize) }
func (s sourceTree[T]) SetLeft(n, v T)  { s.t.setWord(n, fieldSourceLeft, v) }
func (s sourceTree[T]) SetRight(n, v T) { s.t.setWord(n, fieldSourceRight, v) }
func (s sourceTree[T]) SetSize(n, v T)  { s.t.setWord(n, fieldSourceSize, v) }
func (s sourceTree[T]) Key(n T) T       { return s.t.word(n, fieldSource) }

type targetTree[T conv.Unsigned] struct{ t *Table[T] }

func (s targetTree[T]) Left(n T) T      { return s.t.word(n, fieldTargetLeft) }
func (s targetTree[T]) Right(n T) T     { return s.t.word(n, fieldTargetRight) }
func (s targetTree[T]) Size(n T) T      { return s.t.word(n, fieldTargetSize) }
func (s targetTree[T]) SetLeft(n, v T)  { s.t.setWord(n, fieldTargetLeft, v) }
func (s targetTree[T]) SetRight(n, v T) { s.t.setWord(n, fieldTargetRight, v) }
func (s targetTree[T]) SetSize(n, v T)  { s.t.setWord(n, fieldTargetSize, v) }
func (s targetTree[T]) Key(n T) T       { return s.t.word(n, fieldTarget) }

// CheckSourceIndex validates the source tree and calls visit for each node
// in (source, id) order. It returns the number of indexed links.
func (t *Table[T]) CheckSourceIndex(visit func(id T)) (T, error) {
	return t.checkIndex("source", t.src, t.header(headerSourceRoot), visit)
}

// CheckTargetIndex validates the target tree and calls visit for each node
// in (target, id) order. It returns the number of indexed links.
func (t *Table[T]) CheckTargetIndex(visit func(id T)) (T, error) {
	return t.checkIndex("target", t.tgt, t.header(headerTargetRoot), visit)
}

func (t *Table[T]) checkIndex(name string, s sbt.Store[T], root T, visit func(id T)) (T, error) {
	if root > t.Allocated() {
		return 0, fmt.Errorf("%w: %s root %d beyond allocated", ErrCorrupt, name, root)
	}
	live := t.Live()
	if n := sbt.Len(s, root); n != live {
		return 0, fmt.Errorf("%w: %s root size %d, table holds %d", ErrCorrupt, name, n, live)
	}

	n, err := sbt.Check(s, root, func(id T) {
		if visit != nil {
			visit(id)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s index: %w", ErrCorrupt, name, err)
	}
	if n != live {
		return 0, fmt.Errorf("%w: %s index holds %d links, table holds %d", ErrCorrupt, name, n, live)
	}
	return n, nil
}

// Height returns the heights of the source and target trees.
func (t *Table[T]) Height() (source, target int) {
	if t.words == nil {
		return 0, 0
	}
	return sbt.Height(t.src, t.header(headerSourceRoot)), sbt.Height(t.tgt, t.header(headerTargetRoot))
}
