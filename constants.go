package doublets

import (
	"fmt"

	"github.com/hupe1980/doublets/internal/conv"
)

// Constants parameterises wildcard semantics, reserved ids and visitor
// return codes. They are fixed when a store is created.
//
// Reserved values are carved from the top of the requested internal range:
// Continue is its upper bound, followed by Break, Skip, Any and Itself, and
// the effective InternalRange ends just below Itself.
type Constants[T ID] struct {
	IndexPart  T
	SourcePart T
	TargetPart T

	Null     T
	Any      T
	Itself   T
	Continue T
	Break    T
	Skip     T

	InternalRange Range[T]
	// ExternalRange, if set, holds opaque references that are legal
	// endpoints but never occupy a slot.
	ExternalRange *Range[T]
}

// reservedCount is the number of ids taken from the top of the internal range.
const reservedCount = 5

// DefaultConstants returns constants with target part 2, the whole id space
// as internal range and no external range.
func DefaultConstants[T ID]() Constants[T] {
	return ViaOnlyExternal[T](false)
}

// ViaExternal derives the ranges from the id space. With external set, the
// lower half is internal and the upper half external; otherwise the whole
// space is internal.
func ViaExternal[T ID](targetPart T, external bool) Constants[T] {
	top := conv.MaxOf[T]()
	if !external {
		return FullConstants(targetPart, Range[T]{Lo: 1, Hi: top}, nil)
	}
	half := top / 2
	return FullConstants(targetPart, Range[T]{Lo: 1, Hi: half}, &Range[T]{Lo: half + 1, Hi: top})
}

// ViaOnlyExternal is ViaExternal with target part 2.
func ViaOnlyExternal[T ID](external bool) Constants[T] {
	return ViaExternal[T](2, external)
}

// ViaRanges builds constants from explicit ranges with target part 2.
func ViaRanges[T ID](internal Range[T], external *Range[T]) Constants[T] {
	return FullConstants(2, internal, external)
}

// FullConstants builds fully specified constants. The reserved ids are
// taken from the top of internal.
func FullConstants[T ID](targetPart T, internal Range[T], external *Range[T]) Constants[T] {
	hi := internal.Hi
	c := Constants[T]{
		IndexPart:  0,
		SourcePart: 1,
		TargetPart: targetPart,
		Null:       0,
		Continue:   hi,
		Break:      hi - 1,
		Skip:       hi - 2,
		Any:        hi - 3,
		Itself:     hi - 4,
	}
	c.InternalRange = Range[T]{Lo: internal.Lo, Hi: hi - reservedCount}
	if external != nil {
		ext := *external
		c.ExternalRange = &ext
	}
	return c
}

// Validate checks that the constants describe a usable store.
func (c Constants[T]) Validate() error {
	parts := [3]T{c.IndexPart, c.SourcePart, c.TargetPart}
	var seen [3]bool
	for _, p := range parts {
		if p > 2 || seen[p] {
			return fmt.Errorf("%w: parts %v are not a permutation of 0, 1, 2", ErrInvalidConstants, parts)
		}
		seen[p] = true
	}

	if c.Null != 0 {
		return fmt.Errorf("%w: null must be 0, got %d", ErrInvalidConstants, c.Null)
	}
	// Slot ids are 1-based positions; slot 0 is the header.
	if c.InternalRange.Lo != 1 {
		return fmt.Errorf("%w: internal range must start at 1, got %d", ErrInvalidConstants, c.InternalRange.Lo)
	}
	if c.InternalRange.Hi < c.InternalRange.Lo {
		return fmt.Errorf("%w: internal range [%d, %d] is empty", ErrInvalidConstants, c.InternalRange.Lo, c.InternalRange.Hi)
	}

	reserved := c.reserved()
	for i, v := range reserved {
		if v == c.Null || c.InternalRange.Contains(v) {
			return fmt.Errorf("%w: reserved id %d collides with null or the internal range", ErrInvalidConstants, v)
		}
		for _, w := range reserved[i+1:] {
			if v == w {
				return fmt.Errorf("%w: reserved id %d used twice", ErrInvalidConstants, v)
			}
		}
	}

	if ext := c.ExternalRange; ext != nil {
		if ext.Hi < ext.Lo {
			return fmt.Errorf("%w: external range [%d, %d] is empty", ErrInvalidConstants, ext.Lo, ext.Hi)
		}
		if ext.Lo <= c.InternalRange.Hi && c.InternalRange.Lo <= ext.Hi {
			return fmt.Errorf("%w: external range overlaps internal range", ErrInvalidConstants)
		}
		for _, v := range reserved {
			if ext.Contains(v) {
				return fmt.Errorf("%w: reserved id %d lies in the external range", ErrInvalidConstants, v)
			}
		}
	}
	return nil
}

func (c Constants[T]) reserved() [reservedCount]T {
	return [reservedCount]T{c.Continue, c.Break, c.Skip, c.Any, c.Itself}
}

// IsInternal reports whether v lies in the internal range.
func (c Constants[T]) IsInternal(v T) bool {
	return c.InternalRange.Contains(v)
}

// IsExternal reports whether v lies in the external range.
func (c Constants[T]) IsExternal(v T) bool {
	return c.ExternalRange != nil && c.ExternalRange.Contains(v)
}

// Query builds a pattern triple laid out according to the part positions.
func (c Constants[T]) Query(id, source, target T) Query[T] {
	var q Query[T]
	q[c.IndexPart] = id
	q[c.SourcePart] = source
	q[c.TargetPart] = target
	return q
}

// AnyQuery matches every link.
func (c Constants[T]) AnyQuery() Query[T] {
	return c.Query(c.Any, c.Any, c.Any)
}

func (c Constants[T]) unpack(q Query[T]) (id, source, target T) {
	return q[c.IndexPart], q[c.SourcePart], q[c.TargetPart]
}
