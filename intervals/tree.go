package intervals

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"
)

// Config configures a Tree.
type Config[T any] struct {
	// Attach, if set, is called whenever an item is bound to a node: when it
	// is added and when its node is merged into another one. It is called
	// with the tree's lock held and must not call back into the tree.
	Attach func(item *T, n *Node[T])
	// Verify checks all tree invariants after every mutation and panics on
	// violations. Expensive, meant for tests.
	Verify bool
}

// Tree is a red-black interval tree of items of type T. Items are held by
// weak pointers; they are registered with Add and unregistered with Remove or
// by being garbage collected.
//
// A Tree is safe for concurrent use.
type Tree[T any] struct {
	mu       sync.RWMutex
	root     *Node[T]
	attach   func(*T, *Node[T])
	verify   bool
	nodes    int          // number of nodes linked into the tree
	items    int          // number of item references held by nodes
	modCount uint64       // incremented with every mutation
	dead     atomic.Int64 // items collected since the last drain
}

// New creates an empty interval tree.
func New[T any](config Config[T]) *Tree[T] {
	return &Tree[T]{
		attach: config.Attach,
		verify: config.Verify,
	}
}

// Len returns the number of registered items. Items collected by the garbage
// collector are counted until the tree notices their loss.
func (t *Tree[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.items
}

// NodeCount returns the number of nodes, i.e. of distinct intervals.
func (t *Tree[T]) NodeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nodes
}

// ModCount returns a counter incremented by every mutation of the tree.
func (t *Tree[T]) ModCount() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modCount
}

// Add registers item with interval [start,end] and flags. If a node with the
// same geometry exists, item joins it, otherwise a new node carrying extra is
// created. The node item is bound to is returned.
func (t *Tree[T]) Add(item *T, start, end int, flags Flags, extra any) (*Node[T], error) {
	if item == nil {
		return nil, fmt.Errorf("%w: nil item", ErrInvalidInterval)
	}
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: [%d,%d]", ErrInvalidInterval, start, end)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drainLocked()
	n := t.findOrInsert(&Node[T]{start: start, end: end, flags: flags, extra: extra})
	t.bind(item, weak.Make(item), n)
	runtime.AddCleanup(item, func(t *Tree[T]) { t.dead.Add(1) }, t)
	t.modCount++
	t.verifyLocked()
	return n, nil
}

func (t *Tree[T]) bind(item *T, w weak.Pointer[T], n *Node[T]) {
	n.refs = append(n.refs, w)
	t.items++
	if t.attach != nil {
		t.attach(item, n)
	}
}

// Remove unregisters item, which is expected to be bound to node n. A node
// left without items is removed from the tree. Remove returns false if item
// is not registered.
func (t *Tree[T]) Remove(item *T, n *Node[T]) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := weak.Make(item)
	if n == nil || !n.attached || !n.removeRef(w) {
		if n = t.nodeOf(w); n == nil {
			return false
		}
		n.removeRef(w)
	}
	t.items--
	if len(n.refs) == 0 {
		t.removeNode(n)
	}
	t.modCount++
	t.drainLocked()
	t.verifyLocked()
	return true
}

// ChangeFlags moves item, bound to node n, to a node with the same interval
// and new flags.
func (t *Tree[T]) ChangeFlags(item *T, n *Node[T], flags Flags) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := weak.Make(item)
	if n == nil || !n.attached {
		if n = t.nodeOf(w); n == nil {
			return ErrUnknownItem
		}
	}
	if n.flags == flags {
		return nil
	}
	d := n.deltaUpToRoot()
	start, end := n.start+d, n.end+d
	if !n.removeRef(w) {
		return ErrUnknownItem
	}
	t.items--
	if len(n.refs) == 0 {
		t.removeNode(n)
	}
	m := t.findOrInsert(&Node[T]{start: start, end: end, flags: flags, extra: n.extra})
	t.bind(item, w, m)
	t.modCount++
	t.verifyLocked()
	return nil
}

// nodeOf searches the whole tree for the node referencing w.
func (t *Tree[T]) nodeOf(w weak.Pointer[T]) (found *Node[T]) {
	t.walk(t.root, func(n *Node[T]) bool {
		for _, r := range n.refs {
			if r == w {
				found = n
				return false
			}
		}
		return true
	})
	return
}

// walk visits the nodes of the subtree at n in order until visit returns false.
func (t *Tree[T]) walk(n *Node[T], visit func(*Node[T]) bool) bool {
	if n == nil {
		return true
	}
	return t.walk(n.left, visit) && visit(n) && t.walk(n.right, visit)
}

// Interval returns the current interval of node n. If n has been removed
// from the tree, ok is false.
func (t *Tree[T]) Interval(n *Node[T]) (start, end int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n == nil || !n.attached {
		return -1, -1, false
	}
	d := n.deltaUpToRoot()
	return n.start + d, n.end + d, true
}

// Extra returns the client data of node n.
func (t *Tree[T]) Extra(n *Node[T]) any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return n.extra
}

// --- Queries ---------------------------------------------------------------

// Entry is an item together with its interval at the time of a query.
type Entry[T any] struct {
	Item       *T
	Start, End int
	Flags      Flags
}

// Overlapping calls fn for every item whose interval overlaps or touches
// [start,end], in tree order, until fn returns false. Overlapping returns
// false if iteration has been stopped by fn.
//
// The items are collected under the tree's read lock; fn itself runs without
// it and may call back into the tree.
func (t *Tree[T]) Overlapping(start, end int, fn func(Entry[T]) bool) bool {
	t.mu.RLock()
	var entries []Entry[T]
	t.collectOverlapping(t.root, 0, start, end, &entries)
	t.mu.RUnlock()
	for _, e := range entries {
		if !fn(e) {
			return false
		}
	}
	return true
}

// Each calls fn for every item in tree order until fn returns false.
func (t *Tree[T]) Each(fn func(Entry[T]) bool) bool {
	t.mu.RLock()
	var entries []Entry[T]
	t.collectOverlapping(t.root, 0, 0, math.MaxInt, &entries)
	t.mu.RUnlock()
	for _, e := range entries {
		if !fn(e) {
			return false
		}
	}
	return true
}

// Entries returns the items overlapping or touching [start,end] in tree order.
func (t *Tree[T]) Entries(start, end int) []Entry[T] {
	var entries []Entry[T]
	t.Overlapping(start, end, func(e Entry[T]) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

func (t *Tree[T]) collectOverlapping(n *Node[T], acc int, start, end int, out *[]Entry[T]) {
	if n == nil {
		return
	}
	acc += n.delta
	if start > n.maxEnd+acc {
		return
	}
	t.collectOverlapping(n.left, acc, start, end, out)
	s, e := n.start+acc, n.end+acc
	if s > end {
		return
	}
	if e >= start {
		for _, w := range n.refs {
			if item := w.Value(); item != nil {
				*out = append(*out, Entry[T]{Item: item, Start: s, End: e, Flags: n.flags})
			}
		}
	}
	t.collectOverlapping(n.right, acc, start, end, out)
}

// --- Garbage ---------------------------------------------------------------

// Drain removes nodes whose items have all been garbage collected. Mutating
// operations drain the tree as well, but only after the runtime has reported
// collected items.
func (t *Tree[T]) Drain() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dead.Store(0)
	t.sweepLocked()
	t.verifyLocked()
}

func (t *Tree[T]) drainLocked() {
	if t.dead.Swap(0) == 0 {
		return
	}
	t.sweepLocked()
}

func (t *Tree[T]) sweepLocked() {
	var garbage []*Node[T]
	t.walk(t.root, func(n *Node[T]) bool {
		_, dropped := n.liveItems()
		t.items -= dropped
		if len(n.refs) == 0 {
			garbage = append(garbage, n)
		}
		return true
	})
	for _, n := range garbage {
		t.removeNode(n)
	}
	if len(garbage) > 0 {
		t.modCount++
		tracer().Debugf("intervals: drained %d orphaned nodes", len(garbage))
	}
}

func (t *Tree[T]) verifyLocked() {
	if !t.verify {
		return
	}
	if err := t.check(); err != nil {
		panic(err)
	}
}
