package textdoc

import (
	"fmt"
)

// InsertString inserts s at offset.
func (d *Document) InsertString(offset int, s string) error {
	return d.insertString(offset, s, offset)
}

func (d *Document) insertString(offset int, s string, moveOffset int) error {
	text := d.Text()
	if err := checkOffset(text, offset); err != nil {
		return err
	}
	if err := d.checkModifiable(s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if err := d.checkGuards(offset, offset, "", s); err != nil {
		return err
	}
	e := d.newEvent(offset, "", s, false, offset, 0)
	e.moveOffset = moveOffset
	if err := d.updateText(e, text[:offset]+s+text[offset:], nextStamp()); err != nil {
		return err
	}
	return d.trimToSize()
}

// DeleteString deletes the text between start and end.
func (d *Document) DeleteString(start, end int) error {
	text := d.Text()
	if err := checkRange(text, start, end); err != nil {
		return err
	}
	if err := d.checkModifiable(""); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	old := text[start:end]
	if err := d.checkGuards(start, end, old, ""); err != nil {
		return err
	}
	e := d.newEvent(start, old, "", false, start, end-start)
	return d.updateText(e, text[:start]+text[end:], nextStamp())
}

// ReplaceString replaces the text between start and end by s. The edit is
// narrowed to the bytes which really change; replacing text by itself does
// nothing.
func (d *Document) ReplaceString(start, end int, s string) error {
	return d.replaceString(start, end, s, nextStamp(), false)
}

// ReplaceStringStamped replaces the text between start and end by s and sets
// the modification stamp of the document to stamp.
func (d *Document) ReplaceStringStamped(start, end int, s string, stamp int64) error {
	return d.replaceString(start, end, s, stamp, false)
}

// SetText replaces the whole text of the document and clears all line
// modification flags.
func (d *Document) SetText(s string) error {
	return d.ReplaceText(s, nextStamp())
}

// ReplaceText replaces the whole text of the document, sets the
// modification stamp to stamp and clears all line modification flags.
func (d *Document) ReplaceText(s string, stamp int64) error {
	if err := d.replaceString(0, d.Len(), s, stamp, true); err != nil {
		return err
	}
	d.ClearLineModificationFlags()
	return nil
}

func (d *Document) replaceString(start, end int, s string, stamp int64, whole bool) error {
	text := d.Text()
	if err := checkRange(text, start, end); err != nil {
		return err
	}
	if err := d.checkModifiable(s); err != nil {
		return err
	}
	initialStart, initialOldLength := start, end-start
	ns, ne := 0, len(s)
	for ns < ne && start < end && s[ns] == text[start] {
		ns++
		start++
	}
	for end > start && ne > ns && s[ne-1] == text[end-1] {
		ne--
		end--
	}
	// the bytes around the window are equal in text and s, so the window
	// may be widened to rune boundaries in both
	for !isRuneBoundary(text, start) {
		start--
		ns--
	}
	for !isRuneBoundary(text, end) {
		end++
		ne++
	}
	if start == end && ns == ne {
		return nil
	}
	if start == 0 && end == len(text) {
		whole = true
	}
	old, changed := text[start:end], s[ns:ne]
	if err := d.checkGuards(start, end, old, changed); err != nil {
		return err
	}
	e := d.newEvent(start, old, changed, whole, initialStart, initialOldLength)
	if err := d.updateText(e, text[:start]+changed+text[end:], stamp); err != nil {
		return err
	}
	return d.trimToSize()
}

// MoveText moves the text between srcStart and srcEnd to dst. Range markers
// located inside the moved text move along with it.
func (d *Document) MoveText(srcStart, srcEnd, dst int) error {
	text := d.Text()
	if err := checkRange(text, srcStart, srcEnd); err != nil {
		return err
	}
	if err := checkOffset(text, dst); err != nil {
		return err
	}
	if dst == srcStart || dst == srcEnd {
		return nil
	}
	if srcStart < dst && dst < srcEnd {
		return fmt.Errorf("%w: cannot move [%d,%d) to %d", ErrIllegalArguments, srcStart, srcEnd, dst)
	}
	shift := 0
	if dst < srcStart {
		shift = srcEnd - srcStart
	}
	if err := d.insertString(dst, text[srcStart:srcEnd], srcStart+shift); err != nil {
		return err
	}
	d.fireMoveText(srcStart+shift, srcEnd+shift, dst)
	return d.DeleteString(srcStart+shift, srcEnd+shift)
}

// SetCyclicBufferSize limits the length of the document to n bytes. The
// limit is enforced with the next insertion. 0 means no limit.
func (d *Document) SetCyclicBufferSize(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: buffer size %d", ErrIllegalArguments, n)
	}
	d.bufferSize = n
	return nil
}

// trimToSize deletes text from the start of a document exceeding its
// cyclic buffer size.
func (d *Document) trimToSize() error {
	text := d.Text()
	if d.bufferSize == 0 || len(text) <= d.bufferSize {
		return nil
	}
	excess := len(text) - d.bufferSize
	for !isRuneBoundary(text, excess) {
		excess++
	}
	T().Debugf("textdoc: trimming %d bytes to buffer size %d", excess, d.bufferSize)
	return d.DeleteString(0, excess)
}

func (d *Document) checkModifiable(s string) error {
	if err := d.checkWriteAccess(); err != nil {
		return err
	}
	if err := d.checkSeparators(s); err != nil {
		return err
	}
	return d.checkWritable()
}

// --- Pipeline --------------------------------------------------------------

// updateText runs the modification pipeline for event e, resulting in text.
func (d *Document) updateText(e *Event, text string, stamp int64) error {
	if d.changeInProgress {
		return fmt.Errorf("%w: %s", ErrNestedModification, e)
	}
	if d.conf.commandCheck != nil {
		if err := d.conf.commandCheck(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrOutsideCommand, e, err)
		}
	}
	d.changeInProgress = true
	defer func() { d.changeInProgress = false }()
	e.before = d.Freeze()
	var delayed delayedErrors
	d.fireBeforeChange(e, &delayed)
	d.install(e, text, stamp)
	T().Debugf("textdoc: %s", e)
	d.fireChanged(e, &delayed)
	return delayed.rethrow()
}

// install replaces the text, bumps the modification sequence, updates the
// line index and sets the stamp.
func (d *Document) install(e *Event, text string, stamp int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.text
	assert(len(prev)+e.NewLength()-e.OldLength() == len(text), "textdoc: length of new text does not match event")
	d.text = text
	d.sequence++
	lines, err := d.lineSetLocked().Update(prev, e.Offset, e.Offset+e.OldLength(), e.NewFragment,
		e.WholeTextReplaced)
	assert(err == nil, "textdoc: line index rejects event")
	assert(lines.Length() == len(text), "textdoc: line index out of sync")
	d.lines = lines
	d.frozen = nil
	d.stamp = stamp
}
