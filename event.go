package textdoc

import (
	"fmt"

	"github.com/npillmayer/textdoc/intervals"
)

// Event describes a modification of a document: OldFragment at Offset has
// been replaced by NewFragment.
//
// Replacements are narrowed to the bytes which really change. The edit
// window as requested by the client is kept in InitialStartOffset and
// InitialOldLength.
type Event struct {
	Offset             int
	OldFragment        string
	NewFragment        string
	OldTimeStamp       int64 // stamp of the document before the modification
	WholeTextReplaced  bool
	InitialStartOffset int
	InitialOldLength   int

	doc        *Document
	before     *FrozenDocument
	moveOffset int
	diff       *lineDiff // computed on demand
}

func (d *Document) newEvent(offset int, oldFragment, newFragment string, whole bool,
	initialOffset, initialOldLength int) *Event {
	//
	e := &Event{
		Offset:             offset,
		OldFragment:        oldFragment,
		NewFragment:        newFragment,
		OldTimeStamp:       d.ModificationStamp(),
		WholeTextReplaced:  whole,
		InitialStartOffset: initialOffset,
		InitialOldLength:   initialOldLength,
		doc:                d,
		moveOffset:         offset,
	}
	return e
}

// Document returns the modified document.
func (e *Event) Document() *Document {
	return e.doc
}

// OldLength returns the length of the replaced text.
func (e *Event) OldLength() int {
	return len(e.OldFragment)
}

// NewLength returns the length of the inserted text.
func (e *Event) NewLength() int {
	return len(e.NewFragment)
}

// MoveOffset returns, for the insertion part of a text move, the offset of
// the source text after the insertion. For other events it equals Offset.
func (e *Event) MoveOffset() int {
	return e.moveOffset
}

// Before returns a snapshot of the document before the modification. It is
// nil for events which have been rejected before processing started.
func (e *Event) Before() *FrozenDocument {
	return e.before
}

// change converts the event to the edit description used by interval trees.
func (e *Event) change() intervals.Change {
	return intervals.Change{
		Offset:           e.Offset,
		OldLength:        e.OldLength(),
		NewLength:        e.NewLength(),
		InitialOffset:    e.InitialStartOffset,
		InitialOldLength: e.InitialOldLength,
	}
}

// TranslateLineViaDiff translates a line number of the document before the
// modification to the corresponding line after it. Lines inside a changed
// block are mapped to the respective line of the new block, if there is one.
func (e *Event) TranslateLineViaDiff(line int) (int, error) {
	diff, startLine, err := e.lineDiff()
	if err != nil || diff.empty() || line < startLine {
		return line, err
	}
	return diff.translateLoose(line-startLine) + startLine, nil
}

// TranslateLineViaDiffStrict translates a line number of the document before
// the modification to the corresponding line after it. Lines inside a changed
// block are translated to -1.
func (e *Event) TranslateLineViaDiffStrict(line int) (int, error) {
	diff, startLine, err := e.lineDiff()
	if err != nil || diff.empty() || line < startLine {
		return line, err
	}
	translated := diff.translate(line - startLine)
	if translated < 0 {
		return -1, nil
	}
	return translated + startLine, nil
}

// lineDiff returns the line diff of the fragments together with the line of
// the document the fragments start at.
func (e *Event) lineDiff() (*lineDiff, int, error) {
	if e.diff == nil {
		e.diff = diffLines(e.OldFragment, e.NewFragment, e.doc.conf.maxDiffLines)
	}
	if e.diff.err != nil {
		return nil, 0, e.diff.err
	}
	startLine, err := e.doc.LineNumber(e.Offset)
	if err != nil {
		return nil, 0, err
	}
	return e.diff, startLine, nil
}

func (e *Event) String() string {
	return fmt.Sprintf("Event{offset=%d, old=%q, new=%q}", e.Offset, shorten(e.OldFragment),
		shorten(e.NewFragment))
}
