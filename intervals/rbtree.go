package intervals

// Red-black balancing. Every operation which re-links nodes first pushes
// pending deltas out of the nodes involved, so moving a subtree to a new
// parent never changes its effective coordinates.

func (t *Tree[T]) rotateLeft(x *Node[T]) {
	y := x.right
	x.pushDelta()
	y.pushDelta()
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	t.replaceChild(x, y)
	y.left = x
	x.parent = y
	x.correctMax()
	y.correctMax()
}

func (t *Tree[T]) rotateRight(x *Node[T]) {
	y := x.left
	x.pushDelta()
	y.pushDelta()
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	t.replaceChild(x, y)
	y.right = x
	x.parent = y
	x.correctMax()
	y.correctMax()
}

// replaceChild puts v at the place of u in u's parent.
func (t *Tree[T]) replaceChild(u, v *Node[T]) {
	if u.parent == nil {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

// pushDeltaFromRoot clears all pending deltas on the path from the root to n.
func (t *Tree[T]) pushDeltaFromRoot(n *Node[T]) {
	var path []*Node[T]
	for p := n; p != nil; p = p.parent {
		path = append(path, p)
	}
	for i := len(path) - 1; i >= 0; i-- {
		path[i].pushDelta()
	}
}

func (t *Tree[T]) correctMaxUp(n *Node[T]) {
	for ; n != nil; n = n.parent {
		n.correctMax()
	}
}

// findOrInsert links the detached node n into the tree. n's coordinates must
// be effective ones. If a node with the same geometry is present already, n
// is left alone and the existing node is returned.
func (t *Tree[T]) findOrInsert(n *Node[T]) *Node[T] {
	n.parent, n.left, n.right = nil, nil, nil
	n.delta = 0
	n.maxEnd = n.end
	n.red = true
	if t.root == nil {
		n.red = false
		n.attached = true
		t.root = n
		t.nodes++
		return n
	}
	cur := t.root
	for {
		cur.pushDelta()
		c := compare(n.start, n.end, n.flags, cur.start, cur.end, cur.flags)
		if c == 0 {
			return cur
		}
		if c < 0 {
			if cur.left == nil {
				cur.left = n
				break
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = n
				break
			}
			cur = cur.right
		}
	}
	n.parent = cur
	n.attached = true
	t.nodes++
	t.correctMaxUp(cur)
	t.insertFixup(n)
	return n
}

func (t *Tree[T]) insertFixup(z *Node[T]) {
	for z.parent != nil && z.parent.red {
		p := z.parent
		g := p.parent
		if p == g.left {
			if u := g.right; isRed(u) {
				p.red, u.red, g.red = false, false, true
				z = g
				continue
			}
			if z == p.right {
				z = p
				t.rotateLeft(z)
				p = z.parent
			}
			p.red, g.red = false, true
			t.rotateRight(g)
		} else {
			if u := g.left; isRed(u) {
				p.red, u.red, g.red = false, false, true
				z = g
				continue
			}
			if z == p.left {
				z = p
				t.rotateRight(z)
				p = z.parent
			}
			p.red, g.red = false, true
			t.rotateLeft(g)
		}
	}
	t.root.red = false
}

// removeNode unlinks z from the tree. Afterwards z is detached and carries
// its effective coordinates.
func (t *Tree[T]) removeNode(z *Node[T]) {
	assert(z.attached, "intervals: removing a detached node")
	t.pushDeltaFromRoot(z)
	var x, xParent *Node[T]
	wasRed := z.red
	if z.left == nil {
		x, xParent = z.right, z.parent
		t.replaceChild(z, z.right)
	} else if z.right == nil {
		x, xParent = z.left, z.parent
		t.replaceChild(z, z.left)
	} else {
		y := z.right // successor of z
		y.pushDelta()
		for y.left != nil {
			y = y.left
			y.pushDelta()
		}
		wasRed = y.red
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.replaceChild(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.replaceChild(z, y)
		y.left = z.left
		y.left.parent = y
		y.red = z.red
	}
	t.correctMaxUp(xParent)
	if !wasRed {
		t.deleteFixup(x, xParent)
	}
	z.parent, z.left, z.right = nil, nil, nil
	z.maxEnd = z.end
	z.attached = false
	t.nodes--
}

func (t *Tree[T]) deleteFixup(x, parent *Node[T]) {
	for x != t.root && !isRed(x) {
		if x == parent.left {
			w := parent.right
			if isRed(w) {
				w.red, parent.red = false, true
				t.rotateLeft(parent)
				w = parent.right
			}
			if !isRed(w.left) && !isRed(w.right) {
				w.red = true
				x, parent = parent, parent.parent
				continue
			}
			if !isRed(w.right) {
				w.left.red, w.red = false, true
				t.rotateRight(w)
				w = parent.right
			}
			w.red, parent.red = parent.red, false
			if w.right != nil {
				w.right.red = false
			}
			t.rotateLeft(parent)
			x, parent = t.root, nil
		} else {
			w := parent.left
			if isRed(w) {
				w.red, parent.red = false, true
				t.rotateRight(parent)
				w = parent.left
			}
			if !isRed(w.left) && !isRed(w.right) {
				w.red = true
				x, parent = parent, parent.parent
				continue
			}
			if !isRed(w.left) {
				w.right.red, w.red = false, true
				t.rotateLeft(w)
				w = parent.left
			}
			w.red, parent.red = parent.red, false
			if w.left != nil {
				w.left.red = false
			}
			t.rotateRight(parent)
			x, parent = t.root, nil
		}
	}
	if x != nil {
		x.red = false
	}
}
