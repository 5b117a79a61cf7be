package intervals

import (
	"fmt"
	"strings"
)

// Flags control how the boundaries of an interval react to text inserted
// exactly at them.
type Flags uint8

const (
	// GreedyToLeft lets the start of an interval absorb text inserted at it.
	GreedyToLeft Flags = 1 << iota
	// GreedyToRight lets the end of an interval absorb text inserted at it.
	GreedyToRight
	// StickyToRight pushes an empty interval behind text inserted at it.
	StickyToRight
)

func (f Flags) String() string {
	var parts []string
	if f&GreedyToLeft != 0 {
		parts = append(parts, "greedy-left")
	}
	if f&GreedyToRight != 0 {
		parts = append(parts, "greedy-right")
	}
	if f&StickyToRight != 0 {
		parts = append(parts, "sticky-right")
	}
	return strings.Join(parts, ",")
}

// Change describes an edit of a text: OldLength bytes starting at Offset have
// been replaced by NewLength bytes.
//
// Edits are usually narrowed to the bytes which really changed. InitialOffset
// and InitialOldLength describe the edit window as requested before this
// narrowing; for edits which have not been narrowed they equal Offset and
// OldLength.
type Change struct {
	Offset           int
	OldLength        int
	NewLength        int
	InitialOffset    int
	InitialOldLength int
}

// Delta returns the difference in text length caused by the change.
func (c Change) Delta() int {
	return c.NewLength - c.OldLength
}

func (c Change) String() string {
	return fmt.Sprintf("change@%d(-%d,+%d)", c.Offset, c.OldLength, c.NewLength)
}

// ApplyChange computes the interval [start,end] after change c. It returns
// false if the interval cannot be represented after the change, i.e. if the
// change replaced it as a whole.
func ApplyChange(c Change, start, end int, f Flags) (int, int, bool) {
	if start == end {
		return applyToPoint(c, start, f)
	}
	offset, oldLen, newLen := c.Offset, c.OldLength, c.NewLength
	delta := c.Delta()
	if end < offset { // change behind the interval
		return start, end, true
	}
	if f&GreedyToRight == 0 && end == offset {
		// an insert at the end which is the rest of a narrowed replace
		// starting inside the interval
		if oldLen == 0 && c.InitialOffset < offset {
			return start, end + newLen, true
		}
		return start, end, true
	}
	if start > offset+oldLen { // change in front of the interval
		return start + delta, end + delta, true
	}
	if f&GreedyToLeft == 0 && start == offset+oldLen {
		// an insert at the start which is the rest of a narrowed replace
		// reaching into the interval
		if oldLen == 0 && c.InitialOffset+c.InitialOldLength > offset {
			return start, end + delta, true
		}
		return start + delta, end + delta, true
	}
	if start <= offset && end >= offset+oldLen { // change inside
		return start, end + delta, true
	}
	if start >= offset && start <= offset+oldLen && end > offset+oldLen { // prefix replaced
		return offset + newLen, end + delta, true
	}
	if end >= offset && end <= offset+oldLen && start < offset { // suffix replaced
		return start, offset, true
	}
	return 0, 0, false
}

func applyToPoint(c Change, pos int, f Flags) (int, int, bool) {
	offset, oldLen, newLen := c.Offset, c.OldLength, c.NewLength
	oldEnd := offset + oldLen
	if offset < pos && pos < oldEnd {
		return 0, 0, false
	}
	if offset == pos && oldLen == 0 {
		if f&StickyToRight != 0 {
			return offset + newLen, offset + newLen, true
		} else if f&GreedyToRight != 0 {
			return pos, pos + newLen, true
		}
	}
	if pos > oldEnd || (pos == oldEnd && oldLen > 0) {
		return pos + c.Delta(), pos + c.Delta(), true
	}
	return pos, pos, true
}
