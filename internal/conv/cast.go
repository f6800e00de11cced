package conv

import (
	"fmt"
	"math"
)

// Unsigned is the set of id widths the link store is instantiated with.
type Unsigned interface {
	~uint32 | ~uint64
}

// ToInt converts an id-typed value to int.
func ToInt[T Unsigned](v T) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", uint64(v))
	}
	return int(v), nil
}

// FromInt converts a non-negative int to an id-typed value.
func FromInt[T Unsigned](v int) (T, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to id (negative)", v)
	}
	if uint64(v) > uint64(MaxOf[T]()) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to id (too large)", v)
	}
	return T(v), nil
}

// FromUint64 narrows a uint64 to an id-typed value.
func FromUint64[T Unsigned](v uint64) (T, error) {
	if v > uint64(MaxOf[T]()) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to id (too large)", v)
	}
	return T(v), nil
}

// MaxOf returns the largest value representable by T.
func MaxOf[T Unsigned]() T {
	return ^T(0)
}

// WidthOf returns the size of T in bytes.
func WidthOf[T Unsigned]() int {
	if uint64(MaxOf[T]()) == math.MaxUint32 {
		return 4
	}
	return 8
}

// IntToUint64 converts int to uint64 safely.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint64 (negative)", v)
	}
	return uint64(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}
