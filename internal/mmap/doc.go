// Package mmap wraps the platform memory mapping calls used by the link store.
//
// Two kinds of mapping are provided:
//
//   - MapAnon creates a read-write anonymous mapping. The off-heap memory
//     backing places the slot table in such a mapping so that large tables do
//     not add to the garbage collector's scan set.
//   - Open maps an image file read-only so it can be decoded without copying
//     it through a read buffer first.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // len(buf) == 1<<20, zero filled
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) and madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (Advise is a no-op)
//
// # Thread Safety
//
// Close is idempotent and guarded by an atomic flag. Callers must not touch the
// slice returned by Bytes after Close returns.
package mmap
