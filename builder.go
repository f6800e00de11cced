// This file implements the fluent builder for link stores.
// Builders are immutable - each method returns a new builder with the updated configuration.

package doublets

import (
	"github.com/hupe1980/doublets/resource"
)

// United creates a builder for a united link store with default constants.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration, so a partially configured builder can be shared.
//
// Example:
//
//	links, err := doublets.United[uint64]().
//	    Constants(doublets.ViaOnlyExternal[uint64](true)).
//	    MemoryLimit(256 << 20).
//	    Anon().
//	    Build()
func United[T ID]() UnitedBuilder[T] {
	return UnitedBuilder[T]{
		constants:  DefaultConstants[T](),
		memoryKind: MemoryHeap,
	}
}

// UnitedBuilder is an immutable fluent builder for Links.
type UnitedBuilder[T ID] struct {
	constants       Constants[T]
	memoryKind      MemoryKind
	memoryLimit     int64
	ioLimit         int64
	rc              *resource.Controller
	initialCapacity int
	growthStep      int
	logger          *Logger
	metrics         MetricsCollector
}

// Constants sets the store constants.
func (b UnitedBuilder[T]) Constants(c Constants[T]) UnitedBuilder[T] {
	b.constants = c
	return b
}

// Heap keeps the slot table on the Go heap (default).
func (b UnitedBuilder[T]) Heap() UnitedBuilder[T] {
	b.memoryKind = MemoryHeap
	return b
}

// Anon keeps the slot table in an anonymous mapping outside the Go heap.
func (b UnitedBuilder[T]) Anon() UnitedBuilder[T] {
	b.memoryKind = MemoryAnon
	return b
}

// MemoryLimit caps the slot table size in bytes.
func (b UnitedBuilder[T]) MemoryLimit(bytes int64) UnitedBuilder[T] {
	b.memoryLimit = bytes
	return b
}

// IOLimit throttles image export to bytes per second.
func (b UnitedBuilder[T]) IOLimit(bytesPerSec int64) UnitedBuilder[T] {
	b.ioLimit = bytesPerSec
	return b
}

// ResourceController shares a resource controller with other stores.
// It takes precedence over MemoryLimit and IOLimit.
func (b UnitedBuilder[T]) ResourceController(rc *resource.Controller) UnitedBuilder[T] {
	b.rc = rc
	return b
}

// InitialCapacity reserves room for n links.
func (b UnitedBuilder[T]) InitialCapacity(n int) UnitedBuilder[T] {
	b.initialCapacity = n
	return b
}

// GrowthStep sets the minimum number of slots added per growth.
func (b UnitedBuilder[T]) GrowthStep(slots int) UnitedBuilder[T] {
	b.growthStep = slots
	return b
}

// Logger sets the structured logger for operation tracing.
func (b UnitedBuilder[T]) Logger(l *Logger) UnitedBuilder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b UnitedBuilder[T]) Metrics(mc MetricsCollector) UnitedBuilder[T] {
	b.metrics = mc
	return b
}

// Options returns the builder configuration as options, for use with Import.
func (b UnitedBuilder[T]) Options() []Option {
	opts := []Option{
		WithConstants(b.constants),
		WithMemory(b.memoryKind),
	}
	if b.memoryLimit > 0 {
		opts = append(opts, WithMemoryLimit(b.memoryLimit))
	}
	if b.ioLimit > 0 {
		opts = append(opts, WithIOLimit(b.ioLimit))
	}
	if b.rc != nil {
		opts = append(opts, WithResourceController(b.rc))
	}
	if b.initialCapacity > 0 {
		opts = append(opts, WithInitialCapacity(b.initialCapacity))
	}
	if b.growthStep > 0 {
		opts = append(opts, WithGrowthStep(b.growthStep))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	return opts
}

// Build creates the store.
func (b UnitedBuilder[T]) Build() (*Links[T], error) {
	return New[T](b.Options()...)
}

// MustBuild creates the store, panicking on error.
func (b UnitedBuilder[T]) MustBuild() *Links[T] {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}
