package intervals

import (
	"fmt"
	"weak"
)

// Node is a node of an interval tree. All items registered at a node share
// its interval and flags.
//
// Coordinates stored at a node are relative: the effective start of a node is
// its stored start plus the deltas of the node and all of its ancestors.
// maxEnd is stored in the same frame as the node's own end.
type Node[T any] struct {
	parent, left, right *Node[T]
	start, end          int
	maxEnd              int
	delta               int
	red                 bool
	attached            bool // linked into the tree structure
	flags               Flags
	refs                []weak.Pointer[T]
	extra               any
}

// Flags returns the boundary flags of the node.
func (n *Node[T]) Flags() Flags {
	return n.flags
}

// Extra returns client data attached to the node. It must only be called
// from callbacks running under the tree's lock; other clients use Tree.Extra.
func (n *Node[T]) Extra() any {
	return n.extra
}

// SetExtra replaces client data attached to the node. It must only be called
// from callbacks running under the tree's lock.
func (n *Node[T]) SetExtra(x any) {
	n.extra = x
}

// liveItems returns the items still referenced by clients and drops the
// references to collected ones. The number of dropped references is returned
// as well.
func (n *Node[T]) liveItems() (items []*T, dropped int) {
	refs := n.refs[:0]
	for _, w := range n.refs {
		if item := w.Value(); item != nil {
			items = append(items, item)
			refs = append(refs, w)
		} else {
			dropped++
		}
	}
	clear(n.refs[len(refs):])
	n.refs = refs
	return
}

func (n *Node[T]) hasLiveItem() bool {
	for _, w := range n.refs {
		if w.Value() != nil {
			return true
		}
	}
	return false
}

func (n *Node[T]) removeRef(w weak.Pointer[T]) bool {
	for i, r := range n.refs {
		if r == w {
			n.refs = append(n.refs[:i], n.refs[i+1:]...)
			return true
		}
	}
	return false
}

// pushDelta applies the pending shift of n to its own coordinates and hands
// it down to its children.
func (n *Node[T]) pushDelta() {
	if n == nil || n.delta == 0 {
		return
	}
	d := n.delta
	n.start += d
	n.end += d
	n.maxEnd += d
	n.delta = 0
	if n.left != nil {
		n.left.delta += d
	}
	if n.right != nil {
		n.right.delta += d
	}
}

// correctMax recomputes maxEnd from n's interval and its children.
func (n *Node[T]) correctMax() {
	m := n.end
	if l := n.left; l != nil {
		m = max(m, l.maxEnd+l.delta)
	}
	if r := n.right; r != nil {
		m = max(m, r.maxEnd+r.delta)
	}
	n.maxEnd = m
}

// deltaUpToRoot sums the pending shifts of n and all of its ancestors.
func (n *Node[T]) deltaUpToRoot() int {
	d := 0
	for p := n; p != nil; p = p.parent {
		d += p.delta
	}
	return d
}

func (n *Node[T]) String() string {
	return fmt.Sprintf("[%d,%d]%+d", n.start, n.end, n.delta)
}

func isRed[T any](n *Node[T]) bool {
	return n != nil && n.red
}

// compare orders intervals by start, then greedy-left first, then by length,
// then greedy-right first, then sticky-right first.
func compare(s1, e1 int, f1 Flags, s2, e2 int, f2 Flags) int {
	if s1 != s2 {
		return sign(s1 - s2)
	}
	if g1, g2 := f1&GreedyToLeft != 0, f2&GreedyToLeft != 0; g1 != g2 {
		return first(g1)
	}
	if d := (e1 - s1) - (e2 - s2); d != 0 {
		return sign(d)
	}
	if g1, g2 := f1&GreedyToRight != 0, f2&GreedyToRight != 0; g1 != g2 {
		return first(g1)
	}
	if s1, s2 := f1&StickyToRight != 0, f2&StickyToRight != 0; s1 != s2 {
		return first(s1)
	}
	return 0
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// first returns -1 if the flag set at the first operand sorts it first.
func first(flagged bool) int {
	if flagged {
		return -1
	}
	return 1
}
