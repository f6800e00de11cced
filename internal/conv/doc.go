// Package conv provides safe integer conversions between link ids and Go ints.
//
// Link ids are unsigned (32 or 64 bit). Slot arithmetic happens in int because
// that is what slices index with, so every crossing is bounds checked here.
//
// Use cases:
//   - Turning slot counts read from an image header into slice lengths
//   - Turning byte capacities back into slot counts
//
// For conversions that are provably safe by domain constraints (loop indices
// bounded by an already validated count), use direct casts instead.
package conv
