// Package testutil provides testing utilities for link stores.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Operation Sequences
//
//	rng := testutil.NewRNG(seed)
//	ops := rng.Ops(1000, testutil.DefaultMix)
//
// Each Op carries raw random picks; the test maps them onto whatever links
// are live when the op runs, so a sequence stays valid under any prefix.
//
// # Reference Model
//
// Model is a map-based store with the same create/update/delete semantics
// (LIFO id reuse included) to compare a real store against.
package testutil
