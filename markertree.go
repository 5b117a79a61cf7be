package textdoc

import (
	"github.com/npillmayer/textdoc/intervals"
)

// markerTree holds the range markers of a document. It is registered as a
// listener of the document and updates its markers after every change.
type markerTree struct {
	doc        *Document
	tree       *intervals.Tree[RangeMarker]
	persistent bool
}

var _ PrioritizedListener = (*markerTree)(nil)
var _ MoveListener = (*markerTree)(nil)

func newMarkerTree(doc *Document, persistent bool) *markerTree {
	return &markerTree{
		doc: doc,
		tree: intervals.New(intervals.Config[RangeMarker]{
			Attach: func(m *RangeMarker, n *intervals.Node[RangeMarker]) { m.node.Store(n) },
			Verify: doc.conf.verifyTrees,
		}),
		persistent: persistent,
	}
}

func (mt *markerTree) add(m *RangeMarker, start, end int, flags intervals.Flags) error {
	var extra any
	if mt.persistent {
		lc, ok := linesColsOf(mt.doc, start, end)
		if !ok {
			return ErrIndexOutOfBounds
		}
		extra = &anchor{LinesCols: lc, start: start, end: end}
	}
	_, err := mt.tree.Add(m, start, end, flags, extra)
	return err
}

// Priority is part of interface PrioritizedListener.
func (mt *markerTree) Priority() int {
	return PriorityRangeMarker
}

// BeforeChange is part of interface Listener.
func (mt *markerTree) BeforeChange(*Event) error {
	return nil
}

// Changed is part of interface Listener.
func (mt *markerTree) Changed(e *Event) error {
	var recompute intervals.Recompute[RangeMarker]
	if mt.persistent {
		recompute = mt.translate(e)
	} else {
		recompute = intervals.Policy[RangeMarker](e.change())
	}
	mt.tree.Update(e.change(), recompute, (*RangeMarker).invalidate)
	return nil
}

// MoveTextHappened is part of interface MoveListener.
func (mt *markerTree) MoveTextHappened(_ *Document, start, end, newBase int) {
	mt.tree.Retarget(start, end, newBase)
}
