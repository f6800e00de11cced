// Package resource implements the Controller that governs memory and IO for a link store.
//
// The Controller provides two resource types:
//
//   - Memory: track and limit the bytes held by slot table backings (fail-fast)
//   - IO: rate-limit image export so a large dump does not saturate a shared disk or socket
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. AcquireMemory never blocks; a refused growth surfaces to
// the link store as an out-of-memory error:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20, // 64MB of slots
//	})
//
//	if err := rc.AcquireMemory(1 << 20); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer rc.ReleaseMemory(1 << 20)
//
// # IO Rate Limiting
//
// A token bucket limits image writes:
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 32 << 20,
//	})
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
