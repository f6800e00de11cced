// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: a file being written, with sync
//   - [FileSystem]: temp file creation, remove and rename
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// # Usage
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	tmp, err := fs.Default.CreateTemp(dir, "links.dblt.tmp-*")
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil, fs.Fault{FailAfterBytes: 1024}) // Fail after 1KB written
//	// inject ffs into component under test
//
// This package intentionally does NOT include context.Context parameters.
// Local file operations are not interruptible at the syscall level.
package fs
