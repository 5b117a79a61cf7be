package textdoc

import (
	"runtime"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestMarkerBoundaryFlags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textdoc")
	defer teardown()
	//
	for _, tc := range []struct {
		name        string
		start, end  int
		greedyLeft  bool
		greedyRight bool
		sticky      bool
		at          int
		s, e        int
	}{
		{"plain/insert at end", 2, 4, false, false, false, 4, 2, 4},
		{"greedy right/insert at end", 2, 4, false, true, false, 4, 2, 6},
		{"plain/insert at start", 2, 4, false, false, false, 2, 4, 6},
		{"greedy left/insert at start", 2, 4, true, false, false, 2, 2, 6},
		{"plain/insert inside", 2, 4, false, false, false, 3, 2, 6},
		{"plain point", 3, 3, false, false, false, 3, 3, 3},
		{"sticky point", 3, 3, false, false, true, 3, 5, 5},
		{"greedy point", 3, 3, false, true, false, 3, 3, 5},
		{"point in front", 3, 3, false, false, false, 1, 5, 5},
	} {
		doc := newDoc(t, "abcdef")
		m := newMarker(t, doc, tc.start, tc.end)
		m.SetGreedyToLeft(tc.greedyLeft)
		m.SetGreedyToRight(tc.greedyRight)
		m.SetStickingToRight(tc.sticky)
		if err := doc.InsertString(tc.at, "XY"); err != nil {
			t.Fatal(err)
		}
		if s, e := m.Range(); s != tc.s || e != tc.e {
			t.Errorf("%s: expected [%d,%d], have [%d,%d]", tc.name, tc.s, tc.e, s, e)
		}
	}
}

func TestMarkerDeletes(t *testing.T) {
	doc := newDoc(t, "0123456789")
	covered := newMarker(t, doc, 3, 5)
	prefix := newMarker(t, doc, 1, 4)
	suffix := newMarker(t, doc, 5, 8)
	point := newMarker(t, doc, 4, 4)
	edge := newMarker(t, doc, 2, 2)
	if err := doc.DeleteString(2, 6); err != nil {
		t.Fatal(err)
	}
	if covered.IsValid() || covered.StartOffset() != -1 {
		t.Errorf("marker inside deleted text should be invalid, is %s", covered)
	}
	if point.IsValid() {
		t.Errorf("point inside deleted text should be invalid, is %s", point)
	}
	expectMarker(t, prefix, 1, 2)
	expectMarker(t, suffix, 2, 4)
	expectMarker(t, edge, 2, 2)
	if _, err := covered.TextRange(); err == nil {
		t.Errorf("expected error for text of invalid marker")
	}
}

func TestNarrowedReplaceGrowsMarker(t *testing.T) {
	// replacing "cd" by "cdX" degenerates to an insert at the end of "bcd"
	doc := newDoc(t, "abcdef")
	tail := newMarker(t, doc, 1, 4)
	if err := doc.ReplaceString(2, 4, "cdX"); err != nil {
		t.Fatal(err)
	}
	expectText(t, doc, "abcdXef")
	expectMarker(t, tail, 1, 5)
	// replacing "ab" by "aXb" degenerates to an insert at the start of "bc"
	doc = newDoc(t, "abcdef")
	head := newMarker(t, doc, 1, 3)
	if err := doc.ReplaceString(0, 2, "aXb"); err != nil {
		t.Fatal(err)
	}
	expectText(t, doc, "aXbcdef")
	expectMarker(t, head, 1, 4)
	// plain inserts at the boundaries leave the markers alone
	doc = newDoc(t, "abcdef")
	tail = newMarker(t, doc, 1, 4)
	head = newMarker(t, doc, 4, 6)
	doc.InsertString(4, "X")
	expectMarker(t, tail, 1, 4)
	expectMarker(t, head, 5, 7)
}

func TestMarkerDispose(t *testing.T) {
	doc := newDoc(t, "abcdef")
	m1 := newMarker(t, doc, 1, 3)
	m2 := newMarker(t, doc, 1, 3)
	if doc.MarkerCount() != 2 {
		t.Fatalf("expected 2 markers, have %d", doc.MarkerCount())
	}
	m1.Dispose()
	m1.Dispose()
	if doc.MarkerCount() != 1 {
		t.Errorf("expected 1 marker after dispose, have %d", doc.MarkerCount())
	}
	if m1.IsValid() {
		t.Errorf("disposed marker should be invalid")
	}
	doc.InsertString(0, "X")
	expectMarker(t, m2, 2, 4)
}

func TestSharedNodeFlagChange(t *testing.T) {
	doc := newDoc(t, "abcdef")
	plain := newMarker(t, doc, 1, 3)
	greedy := newMarker(t, doc, 1, 3)
	if err := greedy.SetGreedyToRight(true); err != nil {
		t.Fatal(err)
	}
	if !greedy.IsGreedyToRight() || plain.IsGreedyToRight() {
		t.Fatalf("flags should be per marker")
	}
	doc.InsertString(3, "XX")
	expectMarker(t, plain, 1, 3)
	expectMarker(t, greedy, 1, 5)
	greedy.SetGreedyToRight(false)
	doc.InsertString(5, "YY")
	expectMarker(t, greedy, 1, 5)
	if s := greedy.String(); s != "RangeMarker[1,5]" {
		t.Errorf("unexpected string %q", s)
	}
}

func TestProcessMarkersInOrder(t *testing.T) {
	doc := newDoc(t, "0123456789")
	markers := []*RangeMarker{newMarker(t, doc, 6, 8), newMarker(t, doc, 0, 2)}
	p, err := doc.CreateRangeMarkerPersistent(3, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	markers = append(markers, p, newMarker(t, doc, 9, 10))
	var starts []int
	doc.ProcessRangeMarkersOverlappingWith(2, 7, func(m *RangeMarker) bool {
		starts = append(starts, m.StartOffset())
		return true
	})
	if len(starts) != 3 || starts[0] != 0 || starts[1] != 3 || starts[2] != 6 {
		t.Errorf("expected markers at 0, 3, 6, have %v", starts)
	}
	n := 0
	if doc.ProcessRangeMarkers(func(*RangeMarker) bool { n++; return n < 2 }) {
		t.Errorf("expected iteration to be stopped")
	}
	if n != 2 {
		t.Errorf("expected 2 calls, have %d", n)
	}
	runtime.KeepAlive(markers)
}

func TestMarkerLinesCols(t *testing.T) {
	doc := newDoc(t, "one\ntwo\nthree")
	m := newMarker(t, doc, 5, 10)
	lc, ok := m.LinesCols()
	if !ok || lc != (LinesCols{StartLine: 1, StartCol: 1, EndLine: 2, EndCol: 2}) {
		t.Errorf("unexpected lines/cols %s", lc)
	}
	m.SetLayer(3)
	if m.Layer() != 3 || m.Document() != doc || m.IsPersistent() {
		t.Errorf("marker attributes not retained")
	}
}
