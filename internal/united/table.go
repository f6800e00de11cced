package united

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/doublets/internal/conv"
	"github.com/hupe1980/doublets/internal/mem"
	"github.com/hupe1980/doublets/internal/sbt"
)

var (
	// ErrOutOfMemory is returned when no slot can be acquired.
	ErrOutOfMemory = errors.New("united: out of memory")
	// ErrNotFound is returned when an id does not name a live slot.
	ErrNotFound = errors.New("united: link not found")
	// ErrCorrupt is returned when a structural check fails.
	ErrCorrupt = errors.New("united: corrupt table")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("united: table is closed")
)

// SlotWords is the number of id-sized words per slot.
const SlotWords = 8

const (
	fieldSource = iota
	fieldTarget
	fieldSourceLeft
	fieldSourceRight
	fieldSourceSize
	fieldTargetLeft
	fieldTargetRight
	fieldTargetSize
)

// Free slots reuse the source word for the free-list link.
const fieldNext = fieldSource

const (
	headerAllocated = iota
	headerFreeHead
	headerFreeCount
	headerSourceRoot
	headerTargetRoot
	headerVersion
)

// DefaultGrowthStep is the minimum number of slots added per growth.
const DefaultGrowthStep = 1024

// Config configures a Table.
type Config[T conv.Unsigned] struct {
	// Limit is the highest id the table may allocate.
	Limit T
	// InitialCapacity is the number of link slots reserved up front.
	InitialCapacity int
	// GrowthStep is the minimum number of slots added per growth.
	GrowthStep int
	// OnGrow is called after the backing region grew.
	OnGrow func(oldBytes, newBytes int)
}

// Table is the united slot table. It is not safe for concurrent use.
type Table[T conv.Unsigned] struct {
	memory     mem.Memory
	words      []T
	limit      T
	growthStep int
	onGrow     func(oldBytes, newBytes int)

	src sbt.Store[T]
	tgt sbt.Store[T]
}

// New creates an empty table on top of memory. The table owns memory from now on.
func New[T conv.Unsigned](memory mem.Memory, cfg Config[T]) (*Table[T], error) {
	if cfg.Limit == 0 {
		return nil, fmt.Errorf("united: limit must be positive")
	}
	if cfg.GrowthStep <= 0 {
		cfg.GrowthStep = DefaultGrowthStep
	}
	if cfg.InitialCapacity < 0 {
		cfg.InitialCapacity = 0
	}

	t := &Table[T]{
		memory:     memory,
		limit:      cfg.Limit,
		growthStep: cfg.GrowthStep,
		onGrow:     cfg.OnGrow,
	}
	t.src = sourceTree[T]{t}
	t.tgt = targetTree[T]{t}

	if err := t.reserve(cfg.InitialCapacity + 1); err != nil {
		return nil, err
	}
	return t, nil
}

func slotBytes[T conv.Unsigned]() int {
	return SlotWords * conv.WidthOf[T]()
}

// capacity returns the number of slots (header included) the region holds.
func (t *Table[T]) capacity() int {
	return len(t.words) / SlotWords
}

// reserve ensures room for n slots, header included, without growth policy.
func (t *Table[T]) reserve(n int) error {
	if n <= t.capacity() {
		return nil
	}
	if t.memory == nil {
		return ErrClosed
	}

	old := len(t.memory.Bytes())
	if err := t.memory.Grow(n * slotBytes[T]()); err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	t.remap()

	if t.onGrow != nil {
		t.onGrow(old, len(t.memory.Bytes()))
	}
	return nil
}

// ensure makes slot id addressable, growing geometrically.
func (t *Table[T]) ensure(id T) error {
	need, err := conv.ToInt(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	need++
	if need <= t.capacity() {
		return nil
	}

	want := max(2*t.capacity(), t.capacity()+t.growthStep, need)
	if maxSlots, err := conv.ToInt(t.limit); err == nil && want-1 > maxSlots {
		want = maxSlots + 1
	}
	return t.reserve(want)
}

func (t *Table[T]) remap() {
	b := t.memory.Bytes()
	if len(b) == 0 {
		t.words = nil
		return
	}
	n := len(b) / conv.WidthOf[T]()
	t.words = unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n) //nolint:gosec // slot words live in the raw region
}

func (t *Table[T]) word(id T, field int) T {
	return t.words[int(id)*SlotWords+field]
}

func (t *Table[T]) setWord(id T, field int, v T) {
	t.words[int(id)*SlotWords+field] = v
}

func (t *Table[T]) header(field int) T {
	return t.words[field]
}

func (t *Table[T]) setHeader(field int, v T) {
	t.words[field] = v
}

func (t *Table[T]) bump() {
	t.words[headerVersion]++
}

// Limit returns the highest allocatable id.
func (t *Table[T]) Limit() T {
	return t.limit
}

// Allocated returns the high-water mark of allocated ids.
func (t *Table[T]) Allocated() T {
	if t.words == nil {
		return 0
	}
	return t.header(headerAllocated)
}

// FreeHead returns the head of the free list.
func (t *Table[T]) FreeHead() T {
	if t.words == nil {
		return 0
	}
	return t.header(headerFreeHead)
}

// FreeCount returns the length of the free list.
func (t *Table[T]) FreeCount() T {
	if t.words == nil {
		return 0
	}
	return t.header(headerFreeCount)
}

// Live returns the number of live links.
func (t *Table[T]) Live() T {
	return t.Allocated() - t.FreeCount()
}

// Version returns the mutation counter.
func (t *Table[T]) Version() T {
	if t.words == nil {
		return 0
	}
	return t.header(headerVersion)
}

// CapacityBytes returns the size of the backing region.
func (t *Table[T]) CapacityBytes() int {
	if t.memory == nil {
		return 0
	}
	return len(t.memory.Bytes())
}

// MemoryKind reports the backing implementation.
func (t *Table[T]) MemoryKind() mem.Kind {
	if t.memory == nil {
		return ""
	}
	return t.memory.Kind()
}

// IsLive reports whether id names a live link.
func (t *Table[T]) IsLive(id T) bool {
	return id != 0 && id <= t.Allocated() && t.word(id, fieldSourceSize) != 0
}

// Get returns the endpoints of a live link.
func (t *Table[T]) Get(id T) (source, target T, ok bool) {
	if !t.IsLive(id) {
		return 0, 0, false
	}
	return t.word(id, fieldSource), t.word(id, fieldTarget), true
}

// Create acquires a slot and stores the self-loop (id, id).
func (t *Table[T]) Create() (T, error) {
	if t.words == nil {
		return 0, ErrClosed
	}
	id, err := t.acquire()
	if err != nil {
		return 0, err
	}

	t.setWord(id, fieldSource, id)
	t.setWord(id, fieldTarget, id)
	t.link(id)
	t.bump()
	return id, nil
}

// Update rewrites the endpoints of a live link.
func (t *Table[T]) Update(id, source, target T) error {
	if t.words == nil {
		return ErrClosed
	}
	if !t.IsLive(id) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	t.unlink(id)
	t.setWord(id, fieldSource, source)
	t.setWord(id, fieldTarget, target)
	t.link(id)
	t.bump()
	return nil
}

// Delete removes a live link and releases its slot.
func (t *Table[T]) Delete(id T) error {
	if t.words == nil {
		return ErrClosed
	}
	if !t.IsLive(id) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	t.unlink(id)
	t.setWord(id, fieldSource, 0)
	t.setWord(id, fieldTarget, 0)
	t.release(id)
	t.bump()
	return nil
}

func (t *Table[T]) link(id T) {
	t.setHeader(headerSourceRoot, sbt.Insert(t.src, t.header(headerSourceRoot), id))
	t.setHeader(headerTargetRoot, sbt.Insert(t.tgt, t.header(headerTargetRoot), id))
}

func (t *Table[T]) unlink(id T) {
	root, _ := sbt.Remove(t.src, t.header(headerSourceRoot), id)
	t.setHeader(headerSourceRoot, root)
	root, _ = sbt.Remove(t.tgt, t.header(headerTargetRoot), id)
	t.setHeader(headerTargetRoot, root)
}

// CountSource returns the number of live links with the given source.
func (t *Table[T]) CountSource(source T) T {
	if t.words == nil {
		return 0
	}
	return sbt.CountKey(t.src, t.header(headerSourceRoot), source)
}

// CountTarget returns the number of live links with the given target.
func (t *Table[T]) CountTarget(target T) T {
	if t.words == nil {
		return 0
	}
	return sbt.CountKey(t.tgt, t.header(headerTargetRoot), target)
}

// EachSource calls fn for every live link with the given source in ascending id order.
// It reports whether the walk ran to completion.
func (t *Table[T]) EachSource(source T, fn func(id T) bool) bool {
	if t.words == nil {
		return true
	}
	return sbt.EachKey(t.src, t.header(headerSourceRoot), source, fn)
}

// EachTarget calls fn for every live link with the given target in ascending id order.
// It reports whether the walk ran to completion.
func (t *Table[T]) EachTarget(target T, fn func(id T) bool) bool {
	if t.words == nil {
		return true
	}
	return sbt.EachKey(t.tgt, t.header(headerTargetRoot), target, fn)
}

// EachLive calls fn for every live link in ascending id order.
// It reports whether the walk ran to completion.
func (t *Table[T]) EachLive(fn func(id T) bool) bool {
	allocated := t.Allocated()
	for id := T(1); id != 0 && id <= allocated; id++ {
		if t.word(id, fieldSourceSize) == 0 {
			continue
		}
		if !fn(id) {
			return false
		}
	}
	return true
}

// Close releases the backing region. It is idempotent.
func (t *Table[T]) Close() error {
	if t.memory == nil {
		return nil
	}
	err := t.memory.Close()
	t.memory = nil
	t.words = nil
	return err
}
