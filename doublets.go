package doublets

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/hupe1980/doublets/internal/conv"
	"github.com/hupe1980/doublets/internal/mem"
	"github.com/hupe1980/doublets/internal/united"
	"github.com/hupe1980/doublets/resource"
)

// Links is a united doublets store.
//
// Links is not safe for concurrent use; callers must serialize access.
// A visitor may call Count and the read-only accessors on the store it is
// iterating, but any mutation aborts the iteration with
// ErrConcurrentModification.
type Links[T ID] struct {
	constants Constants[T]
	table     *united.Table[T]
	rc        *resource.Controller
	logger    *Logger
	metrics   MetricsCollector
}

// New creates an empty store.
//
// Example:
//
//	links, err := doublets.New[uint64](doublets.WithMemory(doublets.MemoryAnon))
//	if err != nil {
//	    return err
//	}
//	defer links.Close()
//
//	id, _ := links.Create()
func New[T ID](optFns ...Option) (*Links[T], error) {
	o := applyOptions(optFns)

	c := DefaultConstants[T]()
	if o.constants != nil {
		given, ok := o.constants.(Constants[T])
		if !ok {
			return nil, fmt.Errorf("%w: constants of type %T for a store of %d-byte ids", ErrInvalidConstants, o.constants, conv.WidthOf[T]())
		}
		c = given
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return newLinks(c, &o)
}

func newLinks[T ID](c Constants[T], o *options) (*Links[T], error) {
	rc := o.controller()

	memory, err := mem.New(mem.Kind(o.memoryKind), rc)
	if err != nil {
		return nil, err
	}

	l := &Links[T]{
		constants: c,
		rc:        rc,
		logger:    o.logger,
		metrics:   o.metricsCollector,
	}

	table, err := united.New(memory, united.Config[T]{
		Limit:           c.InternalRange.Hi,
		InitialCapacity: o.initialCapacity,
		GrowthStep:      o.growthStep,
		OnGrow:          l.onGrow,
	})
	if err != nil {
		_ = memory.Close()
		return nil, translateError(err)
	}
	l.table = table

	return l, nil
}

func (l *Links[T]) onGrow(oldBytes, newBytes int) {
	l.logger.LogGrow(context.Background(), oldBytes, newBytes)
	l.metrics.RecordGrow(oldBytes, newBytes)
}

// Constants returns the store constants.
func (l *Links[T]) Constants() Constants[T] {
	return l.constants
}

// Create adds the self-loop (i, i) and returns its id i.
// Freed ids are reused before the table grows, most recently freed first.
func (l *Links[T]) Create() (T, error) {
	start := time.Now()
	id, err := l.create()
	l.metrics.RecordCreate(time.Since(start), err)
	l.logger.LogCreate(context.Background(), uint64(id), err)
	return id, err
}

func (l *Links[T]) create() (T, error) {
	if l.table == nil {
		return 0, ErrClosed
	}
	id, err := l.table.Create()
	if err != nil {
		return 0, translateError(err)
	}
	return id, nil
}

// Update rewrites the endpoints of a live link and returns its id.
//
// Each endpoint must be Null, a live internal link, an external reference,
// or Itself, which is stored as id. The store is unchanged on failure.
func (l *Links[T]) Update(id, source, target T) (T, error) {
	start := time.Now()
	err := l.update(id, source, target)
	l.metrics.RecordUpdate(time.Since(start), err)
	l.logger.LogUpdate(context.Background(), uint64(id), uint64(source), uint64(target), err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Links[T]) update(id, source, target T) error {
	if l.table == nil {
		return ErrClosed
	}
	if !l.table.IsLive(id) {
		return &NotFoundError{ID: uint64(id)}
	}

	if source == l.constants.Itself {
		source = id
	}
	if target == l.constants.Itself {
		target = id
	}
	if !l.isReference(source) {
		return &InvalidReferenceError{ID: uint64(id), Endpoint: "source", Value: uint64(source)}
	}
	if !l.isReference(target) {
		return &InvalidReferenceError{ID: uint64(id), Endpoint: "target", Value: uint64(target)}
	}

	return translateError(l.table.Update(id, source, target))
}

// isReference reports whether v may be stored as an endpoint.
func (l *Links[T]) isReference(v T) bool {
	c := &l.constants
	switch {
	case v == c.Null:
		return true
	case c.IsInternal(v):
		return l.table.IsLive(v)
	default:
		return c.IsExternal(v)
	}
}

// Delete removes a live link and returns its id. Links that reference it
// are left untouched; Verify reports them as dangling.
func (l *Links[T]) Delete(id T) (T, error) {
	start := time.Now()
	err := l.delete(id)
	l.metrics.RecordDelete(time.Since(start), err)
	l.logger.LogDelete(context.Background(), uint64(id), err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Links[T]) delete(id T) error {
	if l.table == nil {
		return ErrClosed
	}
	if !l.table.IsLive(id) {
		return &NotFoundError{ID: uint64(id)}
	}
	return translateError(l.table.Delete(id))
}

// Get returns the live link id.
func (l *Links[T]) Get(id T) (Link[T], error) {
	if l.table == nil {
		return Link[T]{}, ErrClosed
	}
	source, target, ok := l.table.Get(id)
	if !ok {
		return Link[T]{}, &NotFoundError{ID: uint64(id)}
	}
	return Link[T]{ID: id, Source: source, Target: target}, nil
}

// Exists reports whether id names a live link.
func (l *Links[T]) Exists(id T) bool {
	return l.table != nil && l.table.IsLive(id)
}

// Count returns the number of live links matching q.
func (l *Links[T]) Count(q Query[T]) T {
	start := time.Now()
	n := l.count(q)
	l.metrics.RecordCount(time.Since(start))
	return n
}

// CountAll returns the number of live links.
func (l *Links[T]) CountAll() T {
	return l.Count(l.constants.AnyQuery())
}

func (l *Links[T]) count(q Query[T]) T {
	if l.table == nil {
		return 0
	}
	anyID := l.constants.Any
	id, source, target := l.constants.unpack(q)

	switch {
	case id != anyID:
		s, t, ok := l.table.Get(id)
		if ok && (source == anyID || source == s) && (target == anyID || target == t) {
			return 1
		}
		return 0
	case source != anyID && target != anyID:
		var n T
		l.eachBoth(source, target, func(T) bool {
			n++
			return true
		})
		return n
	case source != anyID:
		return l.table.CountSource(source)
	case target != anyID:
		return l.table.CountTarget(target)
	default:
		return l.table.Live()
	}
}

// eachBoth walks the smaller of the two buckets and filters on the other
// endpoint. Ties prefer the source index.
func (l *Links[T]) eachBoth(source, target T, fn func(id T) bool) bool {
	if l.table.CountSource(source) <= l.table.CountTarget(target) {
		return l.table.EachSource(source, func(id T) bool {
			if _, t, _ := l.table.Get(id); t != target {
				return true
			}
			return fn(id)
		})
	}
	return l.table.EachTarget(target, func(id T) bool {
		if s, _, _ := l.table.Get(id); s != source {
			return true
		}
		return fn(id)
	})
}

// Each calls visit for every live link matching q.
//
// Links are visited by ascending key of the chosen index, then ascending id;
// a full scan visits ascending ids. The result is Break if the visitor
// stopped the iteration and Continue if it ran to the end.
//
// A visitor error is returned as a *HostError. Mutating the store from
// inside visit fails the iteration with ErrConcurrentModification once visit
// returns; no further links are visited.
func (l *Links[T]) Each(q Query[T], visit Visitor[T]) (Control, error) {
	start := time.Now()
	visited, ctrl, err := l.each(q, visit)
	l.metrics.RecordEach(visited, time.Since(start), err)
	l.logger.LogEach(context.Background(), visited, ctrl, err)
	return ctrl, err
}

// EachAll visits every live link in ascending id order.
func (l *Links[T]) EachAll(visit Visitor[T]) (Control, error) {
	return l.Each(l.constants.AnyQuery(), visit)
}

// EachSeq returns the links matching q as a sequence. The sequence yields
// a single trailing error if the iteration fails. Breaking out of the
// range loop stops the walk; an error raised after the break, such as a
// mutation made by the loop body, is then dropped.
//
// Example:
//
//	for link, err := range links.EachSeq(c.Query(c.Any, 1, c.Any)) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(link)
//	}
func (l *Links[T]) EachSeq(q Query[T]) iter.Seq2[Link[T], error] {
	return func(yield func(Link[T], error) bool) {
		done := false
		_, err := l.Each(q, func(link Link[T]) (Control, error) {
			if !yield(link, nil) {
				done = true
				return Break, nil
			}
			return Continue, nil
		})
		if err != nil && !done {
			yield(Link[T]{}, err)
		}
	}
}

func (l *Links[T]) each(q Query[T], visit Visitor[T]) (int, Control, error) {
	if l.table == nil {
		return 0, Break, ErrClosed
	}

	var (
		table   = l.table
		visited int
		stopped bool
		failure error
		version = table.Version()
	)

	call := func(id T) bool {
		source, target, _ := table.Get(id)
		visited++

		ctrl, err := visit(Link[T]{ID: id, Source: source, Target: target})
		if err != nil {
			failure = &HostError{cause: err}
			return false
		}
		if l.table != table {
			failure = fmt.Errorf("%w: store closed while visiting link %d", ErrConcurrentModification, id)
			return false
		}
		if table.Version() != version {
			failure = fmt.Errorf("%w: store changed while visiting link %d", ErrConcurrentModification, id)
			return false
		}

		switch ctrl {
		case Continue, Skip:
			return true
		case Break:
			stopped = true
			return false
		default:
			failure = &VisitorProtocolError{Found: ctrl.String()}
			return false
		}
	}

	anyID := l.constants.Any
	id, source, target := l.constants.unpack(q)

	switch {
	case id != anyID:
		s, t, ok := l.table.Get(id)
		if ok && (source == anyID || source == s) && (target == anyID || target == t) {
			call(id)
		}
	case source != anyID && target != anyID:
		l.eachBoth(source, target, call)
	case source != anyID:
		l.table.EachSource(source, call)
	case target != anyID:
		l.table.EachTarget(target, call)
	default:
		l.table.EachLive(call)
	}

	switch {
	case failure != nil:
		return visited, Break, failure
	case stopped:
		return visited, Break, nil
	default:
		return visited, Continue, nil
	}
}

// isEngineError reports whether err came from the store rather than a visitor.
func isEngineError(err error) bool {
	var host *HostError
	return !errors.As(err, &host)
}

// Stats is a snapshot of store occupancy.
type Stats struct {
	// Allocated is the high-water mark of ids.
	Allocated uint64
	// Live is the number of links.
	Live uint64
	// Free is the number of ids waiting for reuse.
	Free uint64
	// CapacityBytes is the size of the slot region.
	CapacityBytes int
	// MemoryKind names the slot backing.
	MemoryKind MemoryKind
	// SourceHeight and TargetHeight are the index tree heights.
	SourceHeight int
	TargetHeight int
	// MemoryUsage is the resource controller's accounted usage, which may
	// include other stores sharing it.
	MemoryUsage int64
}

// Stats returns occupancy figures.
func (l *Links[T]) Stats() Stats {
	if l.table == nil {
		return Stats{}
	}
	srcHeight, tgtHeight := l.table.Height()
	return Stats{
		Allocated:     uint64(l.table.Allocated()),
		Live:          uint64(l.table.Live()),
		Free:          uint64(l.table.FreeCount()),
		CapacityBytes: l.table.CapacityBytes(),
		MemoryKind:    MemoryKind(l.table.MemoryKind()),
		SourceHeight:  srcHeight,
		TargetHeight:  tgtHeight,
		MemoryUsage:   l.rc.MemoryUsage(),
	}
}

// Close releases the slot region and its memory reservation. Every later
// call fails with ErrClosed. Close is idempotent.
func (l *Links[T]) Close() error {
	if l == nil || l.table == nil {
		return nil
	}
	err := l.table.Close()
	l.table = nil
	return translateError(err)
}
