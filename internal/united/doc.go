// Package united implements the united link table: one contiguous array of
// fixed-size slots that carries both link payloads and the two endpoint
// indices.
//
// # Layout
//
// Every slot is eight id-sized words:
//
//	[source][target][srcLeft][srcRight][srcSize][tgtLeft][tgtRight][tgtSize]
//
// Slot 0 is the header (allocated, freeHead, freeCount, sourceRoot,
// targetRoot, version). Slot i holds link i.
//
// A slot is live exactly when srcSize != 0: every node in a size-balanced
// tree has size >= 1. A free slot keeps only the next free id in word 0 and
// zero everywhere else, so its (source, target) pair reads as (next, 0).
//
// # Indices
//
// The source and target trees are size-balanced trees (package sbt) threaded
// through the left/right/size words, ordered by (source, id) and
// (target, id). Bucket sizes are rank queries, so the table can pick the
// cheaper index for a two-endpoint query without walking either.
//
// The table validates nothing about references; that is the caller's job.
package united
