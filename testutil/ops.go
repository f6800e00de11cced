package testutil

import "fmt"

// OpKind is the kind of a generated store operation.
type OpKind int

const (
	// OpCreate creates a link.
	OpCreate OpKind = iota
	// OpUpdate rewires a live link.
	OpUpdate
	// OpDelete deletes a live link.
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is a generated operation. Link, Source and Target are raw picks:
// Link selects among live links modulo their number; Source and Target do
// the same, except that a negative pick means null.
type Op struct {
	Kind   OpKind
	Link   int
	Source int
	Target int
}

// Mix weights the operation kinds.
type Mix struct {
	Create int
	Update int
	Delete int
}

// DefaultMix grows the store slowly while churning ids.
var DefaultMix = Mix{Create: 4, Update: 4, Delete: 2}

// Ops generates n operations. Endpoint picks are Zipf-skewed so a few
// links collect most references.
func (r *RNG) Ops(n int, mix Mix) []Op {
	total := mix.Create + mix.Update + mix.Delete
	if total <= 0 {
		mix, total = DefaultMix, DefaultMix.Create+DefaultMix.Update+DefaultMix.Delete
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make([]Op, n)
	for i := range ops {
		op := Op{Link: r.rand.IntN(1 << 30)}
		switch w := r.rand.IntN(total); {
		case w < mix.Create:
			op.Kind = OpCreate
		case w < mix.Create+mix.Update:
			op.Kind = OpUpdate
		default:
			op.Kind = OpDelete
		}
		op.Source = r.endpointLocked()
		op.Target = r.endpointLocked()
		ops[i] = op
	}
	return ops
}

func (r *RNG) endpointLocked() int {
	if r.rand.IntN(8) == 0 {
		return -1
	}
	return r.zipfLocked(64, 1.2)
}
