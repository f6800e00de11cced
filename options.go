package doublets

import (
	"log/slog"

	"github.com/hupe1980/doublets/internal/united"
	"github.com/hupe1980/doublets/resource"
)

// MemoryKind selects where the slot table lives.
type MemoryKind string

const (
	// MemoryHeap keeps slots in a 64-byte aligned Go heap buffer (default).
	MemoryHeap MemoryKind = "heap"
	// MemoryAnon keeps slots in an anonymous mapping outside the Go heap.
	// Large tables then add no GC scan work; growth remaps and copies.
	MemoryAnon MemoryKind = "anon"
)

type options struct {
	constants        any
	logger           *Logger
	metricsCollector MetricsCollector
	memoryKind       MemoryKind
	memoryLimit      int64
	ioLimit          int64
	rc               *resource.Controller
	initialCapacity  int
	growthStep       int
}

// Option configures a link store.
type Option func(*options)

// WithConstants sets the store constants. The id type of c must match the
// store's; New fails with ErrInvalidConstants otherwise.
//
// Example:
//
//	links, _ := doublets.New[uint32](
//	    doublets.WithConstants(doublets.ViaOnlyExternal[uint32](true)),
//	)
func WithConstants[T ID](c Constants[T]) Option {
	return func(o *options) {
		o.constants = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &doublets.BasicMetricsCollector{}
//	links, _ := doublets.New[uint64](doublets.WithMetricsCollector(metrics))
//	// ... use links ...
//	stats := metrics.GetStats()
//	fmt.Printf("Creates: %d, Avg latency: %dns\n", stats.CreateCount, stats.CreateAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := doublets.NewJSONLogger(slog.LevelInfo)
//	links, _ := doublets.New[uint64](doublets.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemory selects the slot table backing.
func WithMemory(kind MemoryKind) Option {
	return func(o *options) {
		o.memoryKind = kind
	}
}

// WithMemoryLimit caps the bytes the slot table may hold. A Create that
// would need more fails with ErrOutOfMemory. Ignored when a resource
// controller is supplied with WithResourceController.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit throttles image export to bytes per second. Ignored when a
// resource controller is supplied with WithResourceController.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithResourceController shares a resource controller between stores, so
// several tables draw from one memory budget.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 256 << 20})
//	a, _ := doublets.New[uint64](doublets.WithResourceController(rc))
//	b, _ := doublets.New[uint64](doublets.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithInitialCapacity reserves room for n links up front.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

// WithGrowthStep sets the minimum number of slots added when the table grows.
// Growth otherwise doubles the capacity.
func WithGrowthStep(slots int) Option {
	return func(o *options) {
		o.growthStep = slots
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		memoryKind:       MemoryHeap,
		growthStep:       united.DefaultGrowthStep,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) controller() *resource.Controller {
	if o.rc != nil {
		return o.rc
	}
	if o.memoryLimit <= 0 && o.ioLimit <= 0 {
		return nil
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})
}
