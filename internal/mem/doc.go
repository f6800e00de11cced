// Package mem provides the growable byte regions that back a link table.
//
// A Memory is a contiguous, byte-addressable region. Growing it may relocate
// the bytes, so callers re-read Bytes after every Grow and never keep slices
// across calls.
//
// # Implementations
//
//   - Heap: a 64-byte aligned Go slice, copied into a larger one on growth
//   - Anon: an anonymous mmap outside the Go heap, remapped on growth
//
// Both charge growth to an optional Acquirer (the resource controller) and
// report a refusal as ErrGrowthRefused.
package mem
