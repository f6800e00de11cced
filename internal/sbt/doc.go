// Package sbt implements a size-balanced binary search tree threaded through
// externally owned nodes.
//
// The tree never allocates. Nodes are ids, and every link (left, right,
// subtree size) lives wherever the Store keeps it - for the link table that is
// inside the slot words themselves. Id 0 is the null node.
//
// Nodes are ordered by (Key(n), n): equal keys are threaded into ascending id
// order, which gives a deterministic tie-break for multi-map lookups.
//
// Subtree sizes make rank queries O(log n): CountKey answers "how many nodes
// have this key" with two descents and no iteration.
package sbt
