// Package blockcomp frames a byte stream into independently compressed blocks.
//
// Each block is written as
//
//	[rawSize uint32][storedSize uint32][payload]
//
// storedSize == 0 means the payload is stored raw (rawSize bytes). Blocks that
// do not shrink by at least 10% are stored raw. A header of two zero words
// terminates the stream.
//
// LZ4 is fast and suits hot data; Zstd trades speed for ratio.
package blockcomp
