package textdoc

import (
	"fmt"

	"github.com/npillmayer/textdoc/intervals"
)

// LinesCols holds line and byte column of start and end of a span of text.
type LinesCols struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

func (lc LinesCols) String() string {
	return fmt.Sprintf("(%d:%d)-(%d:%d)", lc.StartLine, lc.StartCol, lc.EndLine, lc.EndCol)
}

// anchor is the line/column snapshot of a node of persistent markers, taken
// for interval [start,end].
type anchor struct {
	LinesCols
	start, end int
}

// lineQuerier is the line query surface shared by documents and their
// frozen snapshots.
type lineQuerier interface {
	LineNumber(offset int) (int, error)
	LineStartOffset(line int) (int, error)
}

func linesColsOf(lq lineQuerier, start, end int) (LinesCols, bool) {
	sl, sc, ok := lineCol(lq, start)
	if !ok {
		return LinesCols{}, false
	}
	el, ec, ok := lineCol(lq, end)
	if !ok {
		return LinesCols{}, false
	}
	return LinesCols{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec}, true
}

func lineCol(lq lineQuerier, offset int) (line, col int, ok bool) {
	line, err := lq.LineNumber(offset)
	if err != nil {
		return 0, 0, false
	}
	start, err := lq.LineStartOffset(line)
	if err != nil {
		return 0, 0, false
	}
	return line, offset - start, true
}

// translate returns the recompute function for persistent markers. Nodes
// touched by an edit replacing most of the document are re-anchored by a
// line diff of the edit. If this fails, the boundary policy is applied.
func (mt *markerTree) translate(e *Event) intervals.Recompute[RangeMarker] {
	c := e.change()
	return func(n *intervals.Node[RangeMarker], _ *RangeMarker, start, end int) (int, int, bool) {
		if mt.shouldTranslateViaDiff(e, start, end) {
			if a, ok := anchorAt(n, e.Before(), start, end); ok {
				if s, en, lc, ok := translateViaDiff(e, a.LinesCols); ok {
					T().Debugf("textdoc: persistent marker %s re-anchored at [%d,%d]", a.LinesCols, s, en)
					n.SetExtra(&anchor{LinesCols: lc, start: s, end: en})
					return s, en, true
				}
			}
		}
		s, en, ok := intervals.ApplyChange(c, start, end, n.Flags())
		if !ok {
			return 0, 0, false
		}
		lc, ok := linesColsOf(mt.doc, s, en)
		if !ok {
			return 0, 0, false
		}
		n.SetExtra(&anchor{LinesCols: lc, start: s, end: en})
		return s, en, true
	}
}

// shouldTranslateViaDiff is true for edits replacing the whole text, or for
// edits touching [start,end] which replace a large part of the document.
func (mt *markerTree) shouldTranslateViaDiff(e *Event, start, end int) bool {
	if e.WholeTextReplaced {
		return true
	}
	if e.Offset >= end || e.Offset+e.OldLength() <= start {
		return false
	}
	return max(e.NewLength(), e.OldLength())*100 >= mt.doc.Len()*mt.doc.conf.diffThreshold
}

// anchorAt returns the line/column snapshot of node n for its interval
// [start,end] before the edit. Lines are taken from the snapshot before the
// edit if possible, as the snapshot stored at a node lazily shifted by
// earlier edits may be outdated.
func anchorAt(n *intervals.Node[RangeMarker], before *FrozenDocument, start, end int) (anchor, bool) {
	if before != nil {
		if lc, ok := linesColsOf(before, start, end); ok {
			return anchor{LinesCols: lc, start: start, end: end}, true
		}
	}
	if a, ok := n.Extra().(*anchor); ok && a.start == start && a.end == end {
		return *a, true
	}
	return anchor{}, false
}

// translateViaDiff maps the lines of lc through the line diff of e. It fails
// for lines inside changed blocks. Columns behind the end of a translated
// line are clamped to its end.
func translateViaDiff(e *Event, lc LinesCols) (start, end int, translated LinesCols, ok bool) {
	d := e.doc
	startLine, err := e.TranslateLineViaDiffStrict(lc.StartLine)
	if err != nil {
		T().Debugf("textdoc: no line diff: %v", err)
		return
	}
	start, startCol, ok := clampedOffsetAt(d, startLine, lc.StartCol)
	if !ok || start >= d.Len() {
		return 0, 0, LinesCols{}, false
	}
	endLine, err := e.TranslateLineViaDiffStrict(lc.EndLine)
	if err != nil {
		return 0, 0, LinesCols{}, false
	}
	end, endCol, ok := clampedOffsetAt(d, endLine, lc.EndCol)
	if !ok || end < start {
		return 0, 0, LinesCols{}, false
	}
	translated = LinesCols{StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol}
	return start, end, translated, true
}

// offsetAt returns the offset of column col of line, if the line is long
// enough and the column does not split a rune.
func offsetAt(d *Document, line, col int) (int, bool) {
	start, end, ok := lineBounds(d, line)
	if !ok || start+col > end || !isRuneBoundary(d.Text(), start+col) {
		return 0, false
	}
	return start + col, true
}

// clampedOffsetAt returns the offset of column col of line. Columns behind
// the end of the line are moved to the end of the line.
func clampedOffsetAt(d *Document, line, col int) (int, int, bool) {
	start, end, ok := lineBounds(d, line)
	if !ok {
		return 0, 0, false
	}
	if start+col > end {
		col = end - start
	}
	if !isRuneBoundary(d.Text(), start+col) {
		return 0, 0, false
	}
	return start + col, col, true
}

// lineBounds returns start and end of line, excluding its separator.
func lineBounds(d *Document, line int) (int, int, bool) {
	if line < 0 || line >= d.LineCount() {
		return 0, 0, false
	}
	start, err := d.LineStartOffset(line)
	if err != nil {
		return 0, 0, false
	}
	end, err := d.LineEndOffset(line)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}
