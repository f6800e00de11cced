// Package doublets provides an in-memory associative store of links.
//
// A link (a doublet) is a triple (id, source, target): a directed edge
// whose endpoints are themselves link ids, the null id, or opaque external
// references. Every structure is built from links alone, so a store is a
// self-describing graph of 32- or 64-bit integers.
//
// # Quick Start
//
//	links, _ := doublets.New[uint64]()
//	defer links.Close()
//
//	c := links.Constants()
//	a, _ := links.Create()         // (1: 1 -> 1)
//	b, _ := links.Create()         // (2: 2 -> 2)
//	ab, _ := links.Create()
//	links.Update(ab, a, b)         // (3: 1 -> 2)
//
//	n := links.Count(c.Query(c.Any, a, c.Any)) // 2
//
// # Storage Layout
//
// Links live in a single "united" slot table. Each slot holds the link's
// endpoints plus the nodes of two size-balanced trees, one ordered by
// (source, id) and one by (target, id). Queries by source or target are
// answered from these trees in O(log n + k); counts in O(log n). Freed
// slots form a LIFO free list and are reused before the table grows.
//
// The table is backed by a 64-byte aligned heap buffer or, with
// WithMemory(MemoryAnon), by an anonymous mapping outside the Go heap.
// WithMemoryLimit and WithResourceController cap its size; a Create that
// would exceed the cap fails with ErrOutOfMemory.
//
// # Constants
//
// Wildcards, reserved ids and visitor codes are configured through
// Constants. The reserved ids (Continue, Break, Skip, Any, Itself) are
// carved from the top of the internal range:
//
//	c := doublets.ViaOnlyExternal[uint32](true) // lower half internal, upper half external
//	links, _ := doublets.New[uint32](doublets.WithConstants(c))
//
// Query triples are laid out by IndexPart, SourcePart and TargetPart; use
// Constants.Query to build them.
//
// # Iteration
//
// Each calls a visitor for every matching link. The visitor answers with
// Continue or Break:
//
//	ctrl, err := links.Each(c.Query(c.Any, c.Any, b), func(l doublets.Link[uint64]) (doublets.Control, error) {
//	    fmt.Println(l)
//	    return doublets.Continue, nil
//	})
//
// A visitor may call Count and Get but must not mutate the store: a
// mutation aborts the iteration with ErrConcurrentModification. Errors
// returned by the visitor come back wrapped in a *HostError. EachSeq
// exposes the same walk as an iter.Seq2.
//
// # Images
//
// Export writes a checksummed, optionally LZ4 or Zstd compressed image of
// the store; Import and ImportFile rebuild a store from one, preserving
// ids and the order of the free list:
//
//	links.Export(ctx, w, doublets.WithCompression(doublets.CompressionZstd))
//	restored, err := doublets.Import[uint64](ctx, r)
//
// # Integrity
//
// Verify audits both index trees, the free list and the live/free
// partition, and lists endpoints that still name deleted links. Delete
// never cascades.
//
// # Observability
//
// WithLogger attaches a structured slog logger and WithMetricsCollector a
// MetricsCollector. BasicMetricsCollector keeps atomic counters in
// process; metric.PrometheusCollector exports to Prometheus.
//
// # Thread Safety
//
// A store is not safe for concurrent use. Callers must serialize access.
package doublets
