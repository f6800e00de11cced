package doublets

import (
	"errors"
	"fmt"

	"github.com/hupe1980/doublets/internal/mem"
	"github.com/hupe1980/doublets/internal/united"
	"github.com/hupe1980/doublets/resource"
)

// Every error returned by a store begins with the kind tag of one of these
// sentinels, so callers on the far side of a string boundary can still branch.
var (
	// ErrOutOfMemory is returned when the table cannot grow.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrNotFound is returned when an operation targets a free id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidReference is returned when an Update endpoint is not null,
	// a live internal link, an external reference or Itself.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConcurrentModification is returned when the store was mutated
	// while an iteration was running.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrVisitorProtocol is returned when a visitor answers with something
	// that is not a control code.
	ErrVisitorProtocol = errors.New("visitor protocol")
	// ErrHostError marks errors raised by a visitor.
	ErrHostError = errors.New("host error")
	// ErrInvalidConstants is returned for constants that fail validation.
	ErrInvalidConstants = errors.New("invalid constants")
	// ErrCorruptImage is returned when an image cannot be decoded.
	ErrCorruptImage = errors.New("corrupt image")
	// ErrCorrupt is returned by Verify when the table is structurally broken.
	ErrCorrupt = errors.New("corrupt store")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("closed")
)

// NotFoundError reports an id that does not name a live link.
type NotFoundError struct {
	ID uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: link %d", e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidReferenceError reports an Update endpoint that may not be stored.
type InvalidReferenceError struct {
	ID       uint64
	Endpoint string // "source" or "target"
	Value    uint64
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference: %s %d of link %d is neither null, a live link nor external", e.Endpoint, e.Value, e.ID)
}

// Is matches ErrInvalidReference.
func (e *InvalidReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// VisitorProtocolError reports a visitor answer that is not a control code.
type VisitorProtocolError struct {
	Found string
}

func (e *VisitorProtocolError) Error() string {
	return fmt.Sprintf("visitor protocol: expected control code, found %s", e.Found)
}

// Is matches ErrVisitorProtocol.
func (e *VisitorProtocolError) Is(target error) bool { return target == ErrVisitorProtocol }

// HostError wraps an error returned by a visitor.
//
// The original error can be accessed via errors.Unwrap.
type HostError struct {
	cause error
}

func (e *HostError) Error() string {
	return "host error: " + e.cause.Error()
}

func (e *HostError) Unwrap() error { return e.cause }

// Is matches ErrHostError.
func (e *HostError) Is(target error) bool { return target == ErrHostError }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, united.ErrOutOfMemory),
		errors.Is(err, mem.ErrGrowthRefused),
		errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	case errors.Is(err, united.ErrClosed), errors.Is(err, mem.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, united.ErrCorrupt):
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return err
}
