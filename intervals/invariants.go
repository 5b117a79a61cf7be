package intervals

import (
	"fmt"
	"math"
)

// Check validates the tree invariants: red-black coloring and black height,
// parent links, ordering and uniqueness of intervals, maxEnd aggregates and
// the node and item counters.
//
// This checker is strict and meant to be used in tests.
func (t *Tree[T]) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrInconsistent)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.check()
}

type checkState[T any] struct {
	prev         *Node[T]
	prevS, prevE int
	nodes, items int
}

func (t *Tree[T]) check() error {
	if t.root == nil {
		if t.nodes != 0 || t.items != 0 {
			return fmt.Errorf("%w: empty tree with %d nodes, %d items", ErrInconsistent, t.nodes, t.items)
		}
		return nil
	}
	if t.root.red {
		return fmt.Errorf("%w: red root", ErrInconsistent)
	}
	if t.root.parent != nil {
		return fmt.Errorf("%w: root has a parent", ErrInconsistent)
	}
	var st checkState[T]
	if _, _, err := t.checkNode(t.root, 0, &st); err != nil {
		return err
	}
	if st.nodes != t.nodes {
		return fmt.Errorf("%w: %d nodes linked, counter says %d", ErrInconsistent, st.nodes, t.nodes)
	}
	if st.items != t.items {
		return fmt.Errorf("%w: %d items registered, counter says %d", ErrInconsistent, st.items, t.items)
	}
	return nil
}

// checkNode returns the black height and the maximum effective end of the
// subtree at n.
func (t *Tree[T]) checkNode(n *Node[T], acc int, st *checkState[T]) (int, int, error) {
	if n == nil {
		return 1, math.MinInt, nil
	}
	acc += n.delta
	if !n.attached {
		return 0, 0, fmt.Errorf("%w: detached node %v linked", ErrInconsistent, n)
	}
	for _, c := range []*Node[T]{n.left, n.right} {
		if c != nil && c.parent != n {
			return 0, 0, fmt.Errorf("%w: broken parent link at %v", ErrInconsistent, c)
		}
	}
	if n.red && (isRed(n.left) || isRed(n.right)) {
		return 0, 0, fmt.Errorf("%w: red node %v has a red child", ErrInconsistent, n)
	}
	s, e := n.start+acc, n.end+acc
	if s < 0 || e < s {
		return 0, 0, fmt.Errorf("%w: invalid interval [%d,%d]", ErrInconsistent, s, e)
	}
	lh, lmax, err := t.checkNode(n.left, acc, st)
	if err != nil {
		return 0, 0, err
	}
	if st.prev != nil && compare(st.prevS, st.prevE, st.prev.flags, s, e, n.flags) >= 0 {
		return 0, 0, fmt.Errorf("%w: [%d,%d] not ordered after [%d,%d]", ErrInconsistent,
			s, e, st.prevS, st.prevE)
	}
	st.prev, st.prevS, st.prevE = n, s, e
	st.nodes++
	st.items += len(n.refs)
	rh, rmax, err := t.checkNode(n.right, acc, st)
	if err != nil {
		return 0, 0, err
	}
	if lh != rh {
		return 0, 0, fmt.Errorf("%w: black heights %d and %d below [%d,%d]", ErrInconsistent,
			lh, rh, s, e)
	}
	m := max(e, lmax, rmax)
	if m != n.maxEnd+acc {
		return 0, 0, fmt.Errorf("%w: maxEnd of [%d,%d] is %d, should be %d", ErrInconsistent,
			s, e, n.maxEnd+acc, m)
	}
	if !n.red {
		lh++
	}
	return lh, m, nil
}

// Height returns the number of nodes on the longest path from the root to a
// leaf.
func (t *Tree[T]) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var height func(*Node[T]) int
	height = func(n *Node[T]) int {
		if n == nil {
			return 0
		}
		return 1 + max(height(n.left), height(n.right))
	}
	return height(t.root)
}
