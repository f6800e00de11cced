package doublets

import (
	"fmt"
	"math"
	"reflect"

	"github.com/hupe1980/doublets/internal/conv"
)

// Control tells an iteration whether to go on.
type Control uint8

const (
	// Continue proceeds to the next match.
	Continue Control = iota
	// Break stops the iteration.
	Break
	// Skip is reserved; iterations treat it like Continue.
	Skip
)

func (c Control) String() string {
	switch c {
	case Continue:
		return "continue"
	case Break:
		return "break"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("control(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the three control codes.
func (c Control) Valid() bool {
	return c <= Skip
}

// Visitor is called for every link an iteration matches.
// A non-nil error aborts the iteration and is returned wrapped in a *HostError.
type Visitor[T ID] func(link Link[T]) (Control, error)

// Code returns the numeric code a host sees for ctrl.
func (c Constants[T]) Code(ctrl Control) T {
	switch ctrl {
	case Break:
		return c.Break
	case Skip:
		return c.Skip
	default:
		return c.Continue
	}
}

// ParseControl maps a numeric host code to a Control. The Continue and Skip
// codes proceed; every other number stops the iteration.
func (c Constants[T]) ParseControl(code T) Control {
	switch code {
	case c.Continue:
		return Continue
	case c.Skip:
		return Skip
	default:
		return Break
	}
}

// ControlOf converts a dynamically typed host value to a Control.
// Integers go through ParseControl. Floats are truncated toward zero
// first; NaN, negative and out-of-range values break. Anything that is
// not a number is a *VisitorProtocolError.
func (c Constants[T]) ControlOf(v any) (Control, error) {
	switch x := v.(type) {
	case Control:
		if !x.Valid() {
			return Break, &VisitorProtocolError{Found: x.String()}
		}
		return x, nil
	case T:
		return c.ParseControl(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return Break, nil
		}
		return c.parseWide(uint64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return c.parseWide(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || f < 0 || f >= 1<<64 {
			return Break, nil
		}
		return c.parseWide(uint64(f)), nil
	default:
		return Break, &VisitorProtocolError{Found: describe(v)}
	}
}

func (c Constants[T]) parseWide(v uint64) Control {
	code, err := conv.FromUint64[T](v)
	if err != nil {
		return Break
	}
	return c.ParseControl(code)
}

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T(%v)", v, v)
}
