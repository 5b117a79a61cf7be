package textdoc

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/npillmayer/textdoc/lineset"
)

// stampCounter is a process wide clock for modification stamps.
var stampCounter atomic.Int64

func nextStamp() int64 {
	return stampCounter.Add(1)
}

// Document is a mutable text with line index, listeners, range markers and
// guarded blocks. Create documents with New.
type Document struct {
	mu       sync.RWMutex // guards text, lines, stamp, sequence, frozen and guards
	text     string
	lines    *lineset.LineSet // nil until first used
	stamp    int64
	sequence int64
	frozen   *FrozenDocument

	conf       config
	listeners  listenerList
	markers    *markerTree // volatile markers
	persistent *markerTree // markers re-anchoring via line diff
	guards     []*RangeMarker
	readOnly   atomic.Bool
	bulk       atomic.Bool

	// edit state, owned by the single writer
	changeInProgress bool
	bulkToggling     bool
	guardChecks      int
	guardsSuppressed bool
	bufferSize       int
}

// New creates a document with initial content text.
func New(text string, opts ...Option) (*Document, error) {
	d := &Document{
		text:        text,
		stamp:       nextStamp(),
		conf:        defaultConfig(),
		guardChecks: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.checkSeparators(text); err != nil {
		return nil, err
	}
	d.markers = newMarkerTree(d, false)
	d.persistent = newMarkerTree(d, true)
	d.listeners.add(d.markers)
	d.listeners.add(d.persistent)
	T().Debugf("textdoc: new document of length %d", len(text))
	return d, nil
}

// --- Read access -----------------------------------------------------------

// Text returns the current text of the document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// TextRange returns the text between start and end.
func (d *Document) TextRange(start, end int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := checkRange(d.text, start, end); err != nil {
		return "", err
	}
	return d.text[start:end], nil
}

// Len returns the length of the document in bytes.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// ModificationStamp returns the stamp of the last modification. Stamps are
// taken from a process wide clock unless set explicitly.
func (d *Document) ModificationStamp() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stamp
}

// SetModificationStamp sets the modification stamp of the document.
func (d *Document) SetModificationStamp(stamp int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stamp = stamp
	d.frozen = nil
}

// ModificationSequence returns a counter incremented by every modification.
// It is incremented before listeners are told about the modification.
func (d *Document) ModificationSequence() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sequence
}

// IsWritable reports whether the document accepts modifications.
func (d *Document) IsWritable() bool {
	return !d.readOnly.Load()
}

// SetReadOnly makes the document read-only or writable again.
func (d *Document) SetReadOnly(readOnly bool) {
	if d.readOnly.Swap(readOnly) != readOnly {
		T().Infof("textdoc: document read-only = %v", readOnly)
	}
}

// Freeze returns an immutable snapshot of the document. The snapshot is
// cached until the next modification.
func (d *Document) Freeze() *FrozenDocument {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen == nil {
		d.frozen = &FrozenDocument{text: d.text, lines: d.lineSetLocked(), stamp: d.stamp}
	}
	return d.frozen
}

func (d *Document) String() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fmt.Sprintf("Document{length=%d, stamp=%d}", len(d.text), d.stamp)
}

// --- Lines -----------------------------------------------------------------

func (d *Document) lineSet() *lineset.LineSet {
	d.mu.RLock()
	ls := d.lines
	d.mu.RUnlock()
	if ls != nil {
		return ls
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lineSetLocked()
}

func (d *Document) lineSetLocked() *lineset.LineSet {
	if d.lines == nil {
		d.lines = lineset.New(d.text)
	}
	return d.lines
}

// LineCount returns the number of lines of the document. A document ending
// with a line separator has an empty last line. The empty document has one
// line.
func (d *Document) LineCount() int {
	return d.lineSet().LineCount()
}

// LineNumber returns the line containing offset.
func (d *Document) LineNumber(offset int) (int, error) {
	line, err := d.lineSet().LineIndex(offset)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, err)
	}
	return line, nil
}

// LineStartOffset returns the offset of the first byte of line.
func (d *Document) LineStartOffset(line int) (int, error) {
	return lineStart(d.lineSet(), line)
}

// LineEndOffset returns the offset of the end of line, excluding its line
// separator.
func (d *Document) LineEndOffset(line int) (int, error) {
	return lineEnd(d.lineSet(), line)
}

// LineSeparatorLength returns the length of the separator ending line.
func (d *Document) LineSeparatorLength(line int) (int, error) {
	n, err := d.lineSet().SeparatorLength(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, err)
	}
	return n, nil
}

// IsLineModified reports whether line has been modified since the
// modification flags were last cleared.
func (d *Document) IsLineModified(line int) bool {
	return d.lineSet().IsModified(line)
}

// ClearLineModificationFlags clears the modification flags of all lines.
func (d *Document) ClearLineModificationFlags() {
	d.updateLineSet(func(ls *lineset.LineSet) *lineset.LineSet {
		return ls.ClearModificationFlags()
	})
}

// ClearLineModificationFlagsRange clears the modification flags of lines
// startLine ≤ line < endLine.
func (d *Document) ClearLineModificationFlagsRange(startLine, endLine int) {
	d.updateLineSet(func(ls *lineset.LineSet) *lineset.LineSet {
		return ls.ClearModificationFlagsRange(startLine, endLine)
	})
}

// ClearLineModificationFlagsExcept clears the modification flags of all lines
// except the given ones.
func (d *Document) ClearLineModificationFlagsExcept(lines []int) {
	d.updateLineSet(func(ls *lineset.LineSet) *lineset.LineSet {
		return ls.ClearModificationFlagsExcept(lines)
	})
}

func (d *Document) updateLineSet(f func(*lineset.LineSet) *lineset.LineSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = f(d.lineSetLocked())
	d.frozen = nil
}

// lineStart and lineEnd implement line queries for documents and frozen
// documents.
func lineStart(ls *lineset.LineSet, line int) (int, error) {
	start, err := ls.LineStart(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, err)
	}
	return start, nil
}

func lineEnd(ls *lineset.LineSet, line int) (int, error) {
	if line == 0 && ls.Length() == 0 {
		return 0, nil
	}
	end, err := ls.LineEnd(line)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIndexOutOfBounds, err)
	}
	sep, _ := ls.SeparatorLength(line)
	return end - sep, nil
}

// --- Argument checks -------------------------------------------------------

// checkRange validates [start,end) against text. Both offsets have to be
// located at rune boundaries.
func checkRange(text string, start, end int) error {
	if start < 0 || end > len(text) {
		return fmt.Errorf("%w: [%d,%d) in text of length %d", ErrIndexOutOfBounds, start, end, len(text))
	}
	if start > end {
		return fmt.Errorf("%w: start %d > end %d", ErrIllegalArguments, start, end)
	}
	if !isRuneBoundary(text, start) || !isRuneBoundary(text, end) {
		return fmt.Errorf("%w: [%d,%d) splits a rune", ErrIllegalArguments, start, end)
	}
	return nil
}

func checkOffset(text string, offset int) error {
	return checkRange(text, offset, offset)
}

func isRuneBoundary(text string, offset int) bool {
	return offset == 0 || offset == len(text) || utf8.RuneStart(text[offset])
}

func (d *Document) checkSeparators(s string) error {
	if d.conf.acceptSlashR || strings.IndexByte(s, '\r') < 0 {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSeparators, shorten(s))
}

func (d *Document) checkWriteAccess() error {
	if d.conf.writeAccess == nil {
		return nil
	}
	if err := d.conf.writeAccess(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteAccess, err)
	}
	return nil
}

func (d *Document) checkWritable() error {
	if d.readOnly.Load() {
		return ErrReadOnly
	}
	return nil
}

// shorten abbreviates a text fragment for messages.
func shorten(s string) string {
	const n = 20
	if len(s) <= 2*n {
		return s
	}
	return s[:n] + "…" + s[len(s)-n:]
}
