package sbt

import (
	"errors"
	"fmt"

	"github.com/hupe1980/doublets/internal/conv"
)

// ErrCorrupt is returned by Check when the tree violates an invariant.
var ErrCorrupt = errors.New("sbt: corrupt tree")

// Store gives the tree access to node fields. Node 0 is never passed in.
type Store[T conv.Unsigned] interface {
	Left(n T) T
	Right(n T) T
	Size(n T) T
	SetLeft(n, v T)
	SetRight(n, v T)
	SetSize(n, v T)
	// Key returns the ordering key of n.
	Key(n T) T
}

func size[T conv.Unsigned](s Store[T], n T) T {
	if n == 0 {
		return 0
	}
	return s.Size(n)
}

func less[T conv.Unsigned](s Store[T], a, b T) bool {
	ka, kb := s.Key(a), s.Key(b)
	return ka < kb || (ka == kb && a < b)
}

func fixSize[T conv.Unsigned](s Store[T], n T) {
	s.SetSize(n, size(s, s.Left(n))+size(s, s.Right(n))+1)
}

func rotateRight[T conv.Unsigned](s Store[T], t T) T {
	k := s.Left(t)
	s.SetLeft(t, s.Right(k))
	s.SetRight(k, t)
	s.SetSize(k, s.Size(t))
	fixSize(s, t)
	return k
}

func rotateLeft[T conv.Unsigned](s Store[T], t T) T {
	k := s.Right(t)
	s.SetRight(t, s.Left(k))
	s.SetLeft(k, t)
	s.SetSize(k, s.Size(t))
	fixSize(s, t)
	return k
}

// maintain restores the size balance of t. rightSide selects which side may
// have grown too heavy.
func maintain[T conv.Unsigned](s Store[T], t T, rightSide bool) T {
	if t == 0 {
		return 0
	}

	if !rightSide {
		l := s.Left(t)
		if l == 0 {
			return t
		}
		rs := size(s, s.Right(t))
		switch {
		case size(s, s.Left(l)) > rs:
			t = rotateRight(s, t)
		case size(s, s.Right(l)) > rs:
			s.SetLeft(t, rotateLeft(s, l))
			t = rotateRight(s, t)
		default:
			return t
		}
	} else {
		r := s.Right(t)
		if r == 0 {
			return t
		}
		ls := size(s, s.Left(t))
		switch {
		case size(s, s.Right(r)) > ls:
			t = rotateLeft(s, t)
		case size(s, s.Left(r)) > ls:
			s.SetRight(t, rotateRight(s, r))
			t = rotateLeft(s, t)
		default:
			return t
		}
	}

	s.SetLeft(t, maintain(s, s.Left(t), false))
	s.SetRight(t, maintain(s, s.Right(t), true))
	t = maintain(s, t, false)
	return maintain(s, t, true)
}

// Insert adds the detached node n to the tree rooted at root and returns the new root.
func Insert[T conv.Unsigned](s Store[T], root, n T) T {
	if root == 0 {
		s.SetLeft(n, 0)
		s.SetRight(n, 0)
		s.SetSize(n, 1)
		return n
	}

	s.SetSize(root, s.Size(root)+1)
	if less(s, n, root) {
		s.SetLeft(root, Insert(s, s.Left(root), n))
		return maintain(s, root, false)
	}
	s.SetRight(root, Insert(s, s.Right(root), n))
	return maintain(s, root, true)
}

// Remove detaches n from the tree rooted at root and returns the new root.
// The second result is false if n was not found; the tree is then unchanged.
// A removed node has its left, right and size fields cleared.
func Remove[T conv.Unsigned](s Store[T], root, n T) (T, bool) {
	if root == 0 {
		return 0, false
	}

	if root == n {
		l, r := s.Left(n), s.Right(n)
		var repl T
		switch {
		case l == 0:
			repl = r
		case r == 0:
			repl = l
		default:
			var m T
			r, m = removeMin(s, r)
			s.SetLeft(m, l)
			s.SetRight(m, r)
			fixSize(s, m)
			repl = maintain(s, m, false)
		}
		s.SetLeft(n, 0)
		s.SetRight(n, 0)
		s.SetSize(n, 0)
		return repl, true
	}

	if less(s, n, root) {
		l, ok := Remove(s, s.Left(root), n)
		if !ok {
			return root, false
		}
		s.SetLeft(root, l)
		s.SetSize(root, s.Size(root)-1)
		return maintain(s, root, true), true
	}

	r, ok := Remove(s, s.Right(root), n)
	if !ok {
		return root, false
	}
	s.SetRight(root, r)
	s.SetSize(root, s.Size(root)-1)
	return maintain(s, root, false), true
}

func removeMin[T conv.Unsigned](s Store[T], t T) (rest, minNode T) {
	l := s.Left(t)
	if l == 0 {
		return s.Right(t), t
	}
	l, minNode = removeMin(s, l)
	s.SetLeft(t, l)
	s.SetSize(t, s.Size(t)-1)
	return maintain(s, t, true), minNode
}

// Len returns the number of nodes in the tree.
func Len[T conv.Unsigned](s Store[T], root T) T {
	return size(s, root)
}

// CountLess returns the number of nodes whose key is strictly below key.
func CountLess[T conv.Unsigned](s Store[T], root, key T) T {
	var c T
	for t := root; t != 0; {
		if s.Key(t) < key {
			c += size(s, s.Left(t)) + 1
			t = s.Right(t)
		} else {
			t = s.Left(t)
		}
	}
	return c
}

// CountLessOrEqual returns the number of nodes whose key is at most key.
func CountLessOrEqual[T conv.Unsigned](s Store[T], root, key T) T {
	var c T
	for t := root; t != 0; {
		if s.Key(t) <= key {
			c += size(s, s.Left(t)) + 1
			t = s.Right(t)
		} else {
			t = s.Left(t)
		}
	}
	return c
}

// CountKey returns the number of nodes whose key equals key.
func CountKey[T conv.Unsigned](s Store[T], root, key T) T {
	return CountLessOrEqual(s, root, key) - CountLess(s, root, key)
}

// EachKey calls fn for every node with the given key in ascending id order.
// It stops when fn returns false and reports whether the walk ran to completion.
//
// fn must not modify the tree unless it also returns false.
func EachKey[T conv.Unsigned](s Store[T], root, key T, fn func(n T) bool) bool {
	var stack []T
	for t := root; t != 0; {
		if s.Key(t) >= key {
			stack = append(stack, t)
			t = s.Left(t)
		} else {
			t = s.Right(t)
		}
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.Key(n) != key {
			return true
		}
		if !fn(n) {
			return false
		}
		for t := s.Right(n); t != 0; t = s.Left(t) {
			stack = append(stack, t)
		}
	}
	return true
}

// Each calls fn for every node in (key, id) order.
// It stops when fn returns false and reports whether the walk ran to completion.
//
// fn must not modify the tree unless it also returns false.
func Each[T conv.Unsigned](s Store[T], root T, fn func(n T) bool) bool {
	var stack []T
	for t := root; t != 0; t = s.Left(t) {
		stack = append(stack, t)
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return false
		}
		for t := s.Right(n); t != 0; t = s.Left(t) {
			stack = append(stack, t)
		}
	}
	return true
}

// Height returns the length of the longest root-to-leaf path.
func Height[T conv.Unsigned](s Store[T], root T) int {
	if root == 0 {
		return 0
	}
	return 1 + max(Height(s, s.Left(root)), Height(s, s.Right(root)))
}

// Check validates ordering and subtree sizes and calls visit for every node.
// It returns the number of nodes.
func Check[T conv.Unsigned](s Store[T], root T, visit func(n T)) (T, error) {
	var prev T
	var havePrev bool
	var count T

	var walk func(t T) (T, error)
	walk = func(t T) (T, error) {
		if t == 0 {
			return 0, nil
		}
		count++
		if count > s.Size(root) {
			return 0, fmt.Errorf("%w: more nodes than root size %d (cycle?)", ErrCorrupt, s.Size(root))
		}

		ls, err := walk(s.Left(t))
		if err != nil {
			return 0, err
		}

		if havePrev && !less(s, prev, t) {
			return 0, fmt.Errorf("%w: node %d out of order after %d", ErrCorrupt, t, prev)
		}
		prev, havePrev = t, true
		if visit != nil {
			visit(t)
		}

		rs, err := walk(s.Right(t))
		if err != nil {
			return 0, err
		}

		if got := ls + rs + 1; s.Size(t) != got {
			return 0, fmt.Errorf("%w: node %d has size %d, subtree holds %d", ErrCorrupt, t, s.Size(t), got)
		}
		return ls + rs + 1, nil
	}

	n, err := walk(root)
	if err != nil {
		return 0, err
	}
	return n, nil
}
