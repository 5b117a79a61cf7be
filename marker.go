package textdoc

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/npillmayer/textdoc/intervals"
)

// RangeMarker denotes a span of text of a document. The span follows
// modifications of the document. If a modification removes the span as a
// whole, the marker becomes invalid and reports offsets -1.
//
// Markers are released by Dispose, or by simply dropping all references to
// them.
type RangeMarker struct {
	doc   *Document
	tree  *markerTree
	node  atomic.Pointer[intervals.Node[RangeMarker]]
	valid atomic.Bool
	flags atomic.Uint32
	layer atomic.Int32
}

// CreateRangeMarker creates a range marker for the text between start and
// end.
func (d *Document) CreateRangeMarker(start, end int) (*RangeMarker, error) {
	return d.createMarker(d.markers, start, end)
}

// CreateRangeMarkerPersistent creates a range marker for the text between
// start and end. If survive is set, the marker tries to re-anchor by line and
// column if a modification replaces most of the document.
func (d *Document) CreateRangeMarkerPersistent(start, end int, survive bool) (*RangeMarker, error) {
	if survive {
		return d.createMarker(d.persistent, start, end)
	}
	return d.createMarker(d.markers, start, end)
}

func (d *Document) createMarker(tree *markerTree, start, end int) (*RangeMarker, error) {
	if err := checkRange(d.Text(), start, end); err != nil {
		return nil, err
	}
	m := &RangeMarker{doc: d, tree: tree}
	m.valid.Store(true)
	if err := tree.add(m, start, end, 0); err != nil {
		return nil, err
	}
	return m, nil
}

// MarkerCount returns the number of range markers registered with the
// document, including guarded blocks.
func (d *Document) MarkerCount() int {
	return d.markers.tree.Len() + d.persistent.tree.Len()
}

// ProcessRangeMarkers calls fn for every range marker of the document in
// order of start offsets, until fn returns false. It returns false if fn
// stopped the iteration.
func (d *Document) ProcessRangeMarkers(fn func(m *RangeMarker) bool) bool {
	return d.ProcessRangeMarkersOverlappingWith(0, d.Len(), fn)
}

// ProcessRangeMarkersOverlappingWith calls fn for every range marker
// overlapping or touching [start,end] in order of start offsets, until fn
// returns false. It returns false if fn stopped the iteration.
func (d *Document) ProcessRangeMarkersOverlappingWith(start, end int, fn func(m *RangeMarker) bool) bool {
	entries := d.markers.tree.Entries(start, end)
	entries = append(entries, d.persistent.tree.Entries(start, end)...)
	slices.SortStableFunc(entries, func(a, b intervals.Entry[RangeMarker]) int {
		return a.Start - b.Start
	})
	for _, e := range entries {
		if !fn(e.Item) {
			return false
		}
	}
	return true
}

// --- Marker ----------------------------------------------------------------

// Document returns the document the marker belongs to.
func (m *RangeMarker) Document() *Document {
	return m.doc
}

// IsValid reports whether the marker still denotes a span of text.
func (m *RangeMarker) IsValid() bool {
	return m.valid.Load()
}

// IsPersistent reports whether the marker re-anchors by line and column.
func (m *RangeMarker) IsPersistent() bool {
	return m.tree.persistent
}

// StartOffset returns the start of the marker, or -1 for invalid markers.
func (m *RangeMarker) StartOffset() int {
	start, _ := m.Range()
	return start
}

// EndOffset returns the end of the marker, or -1 for invalid markers.
func (m *RangeMarker) EndOffset() int {
	_, end := m.Range()
	return end
}

// Range returns start and end of the marker, or -1, -1 for invalid markers.
func (m *RangeMarker) Range() (start, end int) {
	for m.valid.Load() {
		n := m.node.Load()
		if start, end, ok := m.tree.tree.Interval(n); ok {
			return start, end
		}
		if m.node.Load() == n { // n has not been merged into another node
			break
		}
	}
	return -1, -1
}

// TextRange returns the text the marker denotes.
func (m *RangeMarker) TextRange() (string, error) {
	start, end := m.Range()
	if start < 0 {
		return "", fmt.Errorf("%w: invalid range marker", ErrIllegalArguments)
	}
	return m.doc.TextRange(start, end)
}

// LinesCols returns line and column of start and end of a valid marker.
func (m *RangeMarker) LinesCols() (LinesCols, bool) {
	start, end := m.Range()
	if start < 0 {
		return LinesCols{}, false
	}
	return linesColsOf(m.doc, start, end)
}

// Dispose invalidates the marker and removes it from its document. A
// disposed guarded block no longer guards its text.
func (m *RangeMarker) Dispose() {
	if !m.valid.Swap(false) {
		return
	}
	m.tree.tree.Remove(m, m.node.Load())
	m.node.Store(nil)
	m.doc.RemoveGuardedBlock(m)
}

func (m *RangeMarker) invalidate() {
	m.valid.Store(false)
	m.node.Store(nil)
}

// Flags returns the boundary flags of the marker.
func (m *RangeMarker) Flags() intervals.Flags {
	return intervals.Flags(m.flags.Load())
}

// IsGreedyToLeft reports whether text inserted at the start of the marker
// becomes part of it.
func (m *RangeMarker) IsGreedyToLeft() bool {
	return m.Flags()&intervals.GreedyToLeft != 0
}

// IsGreedyToRight reports whether text inserted at the end of the marker
// becomes part of it.
func (m *RangeMarker) IsGreedyToRight() bool {
	return m.Flags()&intervals.GreedyToRight != 0
}

// IsStickingToRight reports whether an empty marker moves behind text
// inserted at it.
func (m *RangeMarker) IsStickingToRight() bool {
	return m.Flags()&intervals.StickyToRight != 0
}

// SetGreedyToLeft controls whether text inserted at the start of the marker
// becomes part of it.
func (m *RangeMarker) SetGreedyToLeft(greedy bool) error {
	return m.setFlag(intervals.GreedyToLeft, greedy)
}

// SetGreedyToRight controls whether text inserted at the end of the marker
// becomes part of it.
func (m *RangeMarker) SetGreedyToRight(greedy bool) error {
	return m.setFlag(intervals.GreedyToRight, greedy)
}

// SetStickingToRight controls whether an empty marker moves behind text
// inserted at it.
func (m *RangeMarker) SetStickingToRight(sticky bool) error {
	return m.setFlag(intervals.StickyToRight, sticky)
}

func (m *RangeMarker) setFlag(f intervals.Flags, on bool) error {
	old := m.Flags()
	flags := old &^ f
	if on {
		flags |= f
	}
	if flags == old {
		return nil
	}
	m.flags.Store(uint32(flags))
	if !m.valid.Load() {
		return nil
	}
	return m.tree.tree.ChangeFlags(m, m.node.Load(), flags)
}

// Layer returns the layer of the marker, a priority for clients.
func (m *RangeMarker) Layer() int {
	return int(m.layer.Load())
}

// SetLayer sets the layer of the marker.
func (m *RangeMarker) SetLayer(layer int) {
	m.layer.Store(int32(layer))
}

func (m *RangeMarker) String() string {
	start, end := m.Range()
	if start < 0 {
		return "RangeMarker(invalid)"
	}
	if f := m.Flags(); f != 0 {
		return fmt.Sprintf("RangeMarker[%d,%d](%s)", start, end, f)
	}
	return fmt.Sprintf("RangeMarker[%d,%d]", start, end)
}
