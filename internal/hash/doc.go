// Package hash provides the checksum used by link table images.
//
// Images carry a CRC32-Castagnoli trailer over the uncompressed body. The
// standard library's crc32 package uses SSE4.2 / ARM CRC instructions for
// this polynomial, so nothing else is needed.
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
