package intervals

// Recompute computes the interval of node n after a change. lead is one of
// the live items of n, start and end are the node's interval before the
// change. If ok is false, all items of n are invalidated.
//
// Recompute runs with the tree's lock held and must not call back into the
// tree. It may replace the node's client data with SetExtra.
type Recompute[T any] func(n *Node[T], lead *T, start, end int) (newStart, newEnd int, ok bool)

// Policy returns a Recompute function applying the standard boundary policy
// of ApplyChange for change c.
func Policy[T any](c Change) Recompute[T] {
	return func(n *Node[T], _ *T, start, end int) (int, int, bool) {
		return ApplyChange(c, start, end, n.flags)
	}
}

// Update adjusts the tree to change c. Intervals behind the change are
// shifted lazily, intervals in front of it are left alone. Nodes overlapping
// or touching the change are detached and recomputed one by one; if
// recompute reports an interval as unrepresentable, invalidate is called for
// every item of the node and the items are dropped from the tree.
func (t *Tree[T]) Update(c Change, recompute Recompute[T], invalidate func(item *T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drainLocked()
	if t.root == nil {
		return
	}
	t.modCount++
	var affected []*Node[T]
	t.collectAffected(t.root, c.Offset, c.Offset+c.OldLength, c.Delta(), &affected)
	if len(affected) > 0 {
		tracer().Debugf("intervals: %s affects %d nodes", c, len(affected))
	}
	// leaves were collected last and are cheapest to remove
	for i := len(affected) - 1; i >= 0; i-- {
		t.removeNode(affected[i])
	}
	for _, n := range affected {
		items, dropped := n.liveItems()
		t.items -= dropped
		if len(items) == 0 {
			continue
		}
		s, e, ok := recompute(n, items[0], n.start, n.end)
		if !ok || s < 0 || e < s {
			for _, item := range items {
				invalidate(item)
			}
			t.items -= len(n.refs)
			n.refs = nil
			continue
		}
		n.start, n.end = s, e
		t.reinsert(n)
	}
	t.verifyLocked()
}

// collectAffected shifts all subtrees of n located behind the edit window
// [start,end] by delta and collects nodes touching the window or holding no
// live items.
func (t *Tree[T]) collectAffected(n *Node[T], start, end, delta int, affected *[]*Node[T]) {
	if n == nil {
		return
	}
	n.pushDelta()
	live := n.hasLiveItem()
	if !live {
		*affected = append(*affected, n)
	}
	if start > n.maxEnd {
		return
	}
	if end < n.start {
		// n and its right subtree lie behind the window
		n.delta += delta
		if n.left != nil {
			n.left.delta -= delta
		}
		n.pushDelta()
		t.collectAffected(n.left, start, end, delta, affected)
		n.correctMax()
		return
	}
	if start <= n.end && live {
		*affected = append(*affected, n)
	}
	t.collectAffected(n.left, start, end, delta, affected)
	t.collectAffected(n.right, start, end, delta, affected)
	n.correctMax()
}

// Retarget moves every interval lying completely inside [start,end] by
// newBase-start. It is used for text moved from one location to another.
func (t *Tree[T]) Retarget(start, end, newBase int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drainLocked()
	var affected []*Node[T]
	t.collectContained(t.root, start, end, &affected)
	if len(affected) == 0 {
		return
	}
	t.modCount++
	tracer().Debugf("intervals: retarget %d nodes from [%d,%d] to %d", len(affected), start, end, newBase)
	for _, n := range affected {
		t.removeNode(n)
	}
	shift := newBase - start
	for _, n := range affected {
		n.start += shift
		n.end += shift
		t.reinsert(n)
	}
	t.verifyLocked()
}

func (t *Tree[T]) collectContained(n *Node[T], start, end int, affected *[]*Node[T]) {
	if n == nil {
		return
	}
	n.pushDelta()
	if start > n.maxEnd {
		return
	}
	t.collectContained(n.left, start, end, affected)
	if start <= n.start && n.end <= end {
		*affected = append(*affected, n)
	}
	if end < n.start {
		return
	}
	t.collectContained(n.right, start, end, affected)
}

// reinsert links the detached node n into the tree again. If a node with
// the same geometry exists, the items of n are moved over to it.
func (t *Tree[T]) reinsert(n *Node[T]) {
	items, dropped := n.liveItems()
	t.items -= dropped
	if len(items) == 0 {
		return
	}
	m := t.findOrInsert(n)
	if m == n {
		return
	}
	for i, item := range items {
		m.refs = append(m.refs, n.refs[i])
		if t.attach != nil {
			t.attach(item, m)
		}
	}
	n.refs = nil
}
