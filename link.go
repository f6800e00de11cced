package doublets

import "fmt"

// ID is the set of unsigned integer types a store can be instantiated with.
type ID interface {
	~uint32 | ~uint64
}

// Link is a doublet: a directed association from Source to Target, identified by ID.
type Link[T ID] struct {
	ID     T
	Source T
	Target T
}

// String formats the link as "(id: source -> target)".
func (l Link[T]) String() string {
	return fmt.Sprintf("(%d: %d -> %d)", l.ID, l.Source, l.Target)
}

// Range is an inclusive id range.
type Range[T ID] struct {
	Lo T
	Hi T
}

// Contains reports whether v lies in [Lo, Hi].
func (r Range[T]) Contains(v T) bool {
	return r.Lo <= v && v <= r.Hi
}

// Query is a pattern triple. Positions are given by the store's
// IndexPart, SourcePart and TargetPart; each component is either a
// concrete id or Any. Build one with Constants.Query.
type Query[T ID] [3]T
