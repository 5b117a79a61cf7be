package textdoc

import (
	"fmt"

	"github.com/npillmayer/textdoc/lineset"
)

// FrozenDocument is an immutable snapshot of a document: text, line index and
// modification stamp. Snapshots are created by Document.Freeze.
type FrozenDocument struct {
	text  string
	lines *lineset.LineSet
	stamp int64
}

// Text returns the text of the snapshot.
func (fd *FrozenDocument) Text() string {
	return fd.text
}

// TextRange returns the text between start and end.
func (fd *FrozenDocument) TextRange(start, end int) (string, error) {
	if err := checkRange(fd.text, start, end); err != nil {
		return "", err
	}
	return fd.text[start:end], nil
}

// Len returns the length of the snapshot in bytes.
func (fd *FrozenDocument) Len() int {
	return len(fd.text)
}

// ModificationStamp returns the modification stamp of the snapshot.
func (fd *FrozenDocument) ModificationStamp() int64 {
	return fd.stamp
}

// LineCount returns the number of lines of the snapshot.
func (fd *FrozenDocument) LineCount() int {
	return fd.lines.LineCount()
}

// LineNumber returns the line containing offset.
func (fd *FrozenDocument) LineNumber(offset int) (int, error) {
	line, err := fd.lines.LineIndex(offset)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, err)
	}
	return line, nil
}

// LineStartOffset returns the offset of the first byte of line.
func (fd *FrozenDocument) LineStartOffset(line int) (int, error) {
	return lineStart(fd.lines, line)
}

// LineEndOffset returns the offset of the end of line, excluding its line
// separator.
func (fd *FrozenDocument) LineEndOffset(line int) (int, error) {
	return lineEnd(fd.lines, line)
}

// LineSeparatorLength returns the length of the separator ending line.
func (fd *FrozenDocument) LineSeparatorLength(line int) (int, error) {
	n, err := fd.lines.SeparatorLength(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, err)
	}
	return n, nil
}

// IsLineModified reports whether line had been flagged as modified when the
// snapshot was taken.
func (fd *FrozenDocument) IsLineModified(line int) bool {
	return fd.lines.IsModified(line)
}

// ApplyEvent returns the snapshot resulting from applying modification e to
// fd. e has to describe a modification of a text equal to the snapshot's.
// The new snapshot carries stamp.
func (fd *FrozenDocument) ApplyEvent(e *Event, stamp int64) (*FrozenDocument, error) {
	end := e.Offset + e.OldLength()
	if err := checkRange(fd.text, e.Offset, end); err != nil {
		return nil, err
	}
	if fd.text[e.Offset:end] != e.OldFragment {
		return nil, fmt.Errorf("%w: %s does not apply to snapshot", ErrIllegalArguments, e)
	}
	lines, err := fd.lines.Update(fd.text, e.Offset, end, e.NewFragment, e.WholeTextReplaced)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalArguments, err)
	}
	return &FrozenDocument{
		text:  fd.text[:e.Offset] + e.NewFragment + fd.text[end:],
		lines: lines,
		stamp: stamp,
	}, nil
}

func (fd *FrozenDocument) String() string {
	return fmt.Sprintf("FrozenDocument{length=%d, stamp=%d}", len(fd.text), fd.stamp)
}
