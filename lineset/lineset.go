package lineset

import (
	"fmt"
	"slices"
	"sort"
)

// Flag byte layout: the low two bits hold the separator length.
const (
	sepMask      byte = 0x03
	modifiedFlag byte = 0x04
)

// LineSet is an immutable table of line starts, separator lengths and
// modification flags for a text.
type LineSet struct {
	starts []int
	flags  []byte
	length int
}

// New creates the line set for text. No line is flagged as modified.
func New(text string) *LineSet {
	return build(text, false)
}

func build(text string, modified bool) *LineSet {
	starts, seps := scan(text)
	flags := make([]byte, len(seps))
	for i, s := range seps {
		flags[i] = s
		if modified {
			flags[i] |= modifiedFlag
		}
	}
	return &LineSet{starts: starts, flags: flags, length: len(text)}
}

// LineCount returns the number of lines, which is at least 1.
func (ls *LineSet) LineCount() int {
	return len(ls.starts)
}

// Length returns the length of the indexed text in bytes.
func (ls *LineSet) Length() int {
	return ls.length
}

// LineIndex returns the line containing offset. An offset equal to the text
// length belongs to the last line.
func (ls *LineSet) LineIndex(offset int) (int, error) {
	if offset < 0 || offset > ls.length {
		return 0, fmt.Errorf("%w: offset %d not in [0,%d]", ErrIndexOutOfBounds, offset, ls.length)
	}
	return ls.lineOf(offset), nil
}

func (ls *LineSet) lineOf(offset int) int {
	if ls.length == 0 {
		return 0
	}
	if offset == ls.length {
		return len(ls.starts) - 1
	}
	i := sort.Search(len(ls.starts), func(i int) bool {
		return ls.starts[i] > offset
	})
	return i - 1
}

func (ls *LineSet) checkLine(line int) error {
	if line < 0 || line >= len(ls.starts) {
		return fmt.Errorf("%w: line %d not in [0,%d)", ErrIndexOutOfBounds, line, len(ls.starts))
	}
	return nil
}

// LineStart returns the offset of the first byte of line.
func (ls *LineSet) LineStart(line int) (int, error) {
	if err := ls.checkLine(line); err != nil {
		return 0, err
	}
	return ls.starts[line], nil
}

// LineEnd returns the offset just behind line, including its separator.
func (ls *LineSet) LineEnd(line int) (int, error) {
	if err := ls.checkLine(line); err != nil {
		return 0, err
	}
	return ls.lineEnd(line), nil
}

func (ls *LineSet) lineEnd(line int) int {
	if line == len(ls.starts)-1 {
		return ls.length
	}
	return ls.starts[line+1]
}

// SeparatorLength returns the length of the separator ending line.
func (ls *LineSet) SeparatorLength(line int) (int, error) {
	if err := ls.checkLine(line); err != nil {
		return 0, err
	}
	return int(ls.flags[line] & sepMask), nil
}

// IsModified reports whether line is flagged as modified. Lines outside the
// set are never modified.
func (ls *LineSet) IsModified(line int) bool {
	if line < 0 || line >= len(ls.flags) {
		return false
	}
	return ls.flags[line]&modifiedFlag != 0
}

// isLastEmptyLine is true for the empty line following a trailing separator.
func (ls *LineSet) isLastEmptyLine(line int) bool {
	return line > 0 && line == len(ls.starts)-1 && ls.starts[line] == ls.length
}

// --- Updates ---------------------------------------------------------------

// Update derives the line set for the text resulting from replacing
// prev[start:end] with replacement. prev must be the text ls indexes.
// Lines touched by the edit are flagged as modified, unless wholeReplaced is
// set, in which case all flags are cleared.
func (ls *LineSet) Update(prev string, start, end int, replacement string, wholeReplaced bool) (*LineSet, error) {
	if len(prev) != ls.length {
		return nil, fmt.Errorf("%w: length %d, expected %d", ErrTextMismatch, len(prev), ls.length)
	}
	if start < 0 || end < start || end > ls.length {
		return nil, fmt.Errorf("%w: edit [%d,%d) in text of length %d", ErrIndexOutOfBounds,
			start, end, ls.length)
	}
	var result *LineSet
	if ls.length == 0 {
		result = build(replacement, !wholeReplaced)
	} else {
		ws, we := widen(prev, start, end, replacement)
		if ls.isSingleLineChange(ws, we, replacement) {
			result = ls.updateInsideOneLine(ls.lineOf(ws), len(replacement)-(end-start))
		} else {
			result = ls.genericUpdate(prev, ws, we, start, end, replacement)
		}
	}
	if wholeReplaced {
		result = result.ClearModificationFlags()
	}
	return result, nil
}

// widen extends the edit window [start,end) by one byte on either side if
// the edit would otherwise split or join a "\r\n" pair at the window border.
func widen(prev string, start, end int, replacement string) (int, int) {
	ws, we := start, end
	if start > 0 && prev[start-1] == '\r' {
		next := byte(0) // byte that will follow the '\r' after the edit
		if replacement != "" {
			next = replacement[0]
		} else if end < len(prev) {
			next = prev[end]
		}
		if next == '\n' || (start < len(prev) && prev[start] == '\n') {
			ws--
		}
	}
	if end < len(prev) && prev[end] == '\n' {
		last := byte(0) // byte that will precede the '\n' after the edit
		if replacement != "" {
			last = replacement[len(replacement)-1]
		} else if start > 0 {
			last = prev[start-1]
		}
		if last == '\r' || (end > 0 && prev[end-1] == '\r') {
			we++
		}
	}
	return ws, we
}

func (ls *LineSet) isSingleLineChange(start, end int, replacement string) bool {
	if start == 0 && end == ls.length && replacement == "" {
		return false
	}
	line := ls.lineOf(start)
	return line == ls.lineOf(end) && !hasLineBreak(replacement) && !ls.isLastEmptyLine(line)
}

func (ls *LineSet) updateInsideOneLine(line int, lengthDelta int) *LineSet {
	tracer().Debugf("lineset: fast update of line %d by %d", line, lengthDelta)
	starts := slices.Clone(ls.starts)
	for i := line + 1; i < len(starts); i++ {
		starts[i] += lengthDelta
	}
	flags := slices.Clone(ls.flags)
	flags[line] |= modifiedFlag
	return &LineSet{starts: starts, flags: flags, length: ls.length + lengthDelta}
}

// genericUpdate re-scans the complete lines touched by the widened window
// [ws,we) and splices the result into the unaffected lines.
func (ls *LineSet) genericUpdate(prev string, ws, we, start, end int, replacement string) *LineSet {
	startLine, endLine := ls.lineOf(ws), ls.lineOf(we)
	patchStart, patchEnd := ls.starts[startLine], ls.lineEnd(endLine)
	patch := build(prev[patchStart:start]+replacement+prev[end:patchEnd], true)
	pstarts, pflags := patch.starts, patch.flags
	if endLine < len(ls.starts)-1 {
		// endLine carries a separator, so the patch's empty last line is
		// the first line behind the patch
		pstarts, pflags = pstarts[:len(pstarts)-1], pflags[:len(pflags)-1]
	}
	shift := patch.length - (patchEnd - patchStart)
	tracer().Debugf("lineset: splice lines [%d,%d] with %d lines, shift %d",
		startLine, endLine, len(pstarts), shift)
	n := startLine + len(pstarts) + len(ls.starts) - endLine - 1
	starts := make([]int, 0, n)
	flags := make([]byte, 0, n)
	starts = append(starts, ls.starts[:startLine]...)
	flags = append(flags, ls.flags[:startLine]...)
	for i, s := range pstarts {
		starts = append(starts, s+patchStart)
		flags = append(flags, pflags[i])
	}
	for i := endLine + 1; i < len(ls.starts); i++ {
		starts = append(starts, ls.starts[i]+shift)
		flags = append(flags, ls.flags[i])
	}
	return &LineSet{starts: starts, flags: flags, length: ls.length + shift}
}

// --- Modification flags ----------------------------------------------------

// ClearModificationFlags returns a copy of ls with no line flagged as modified.
func (ls *LineSet) ClearModificationFlags() *LineSet {
	return ls.ClearModificationFlagsRange(0, len(ls.starts))
}

// ClearModificationFlagsRange returns a copy of ls with the flags of lines
// startLine ≤ line < endLine cleared. The range is clipped to the set.
func (ls *LineSet) ClearModificationFlagsRange(startLine, endLine int) *LineSet {
	startLine, endLine = max(startLine, 0), min(endLine, len(ls.starts))
	flags := slices.Clone(ls.flags)
	for i := startLine; i < endLine; i++ {
		flags[i] &^= modifiedFlag
	}
	return &LineSet{starts: ls.starts, flags: flags, length: ls.length}
}

// ClearModificationFlagsExcept clears all modification flags except the ones
// of the given lines, which stay modified if they have been before.
func (ls *LineSet) ClearModificationFlagsExcept(lines []int) *LineSet {
	var keep []int
	for _, l := range lines {
		if ls.IsModified(l) {
			keep = append(keep, l)
		}
	}
	return ls.ClearModificationFlags().SetModified(keep...)
}

// SetModified returns a copy of ls with the given lines flagged as modified.
// Lines outside the set are ignored.
func (ls *LineSet) SetModified(lines ...int) *LineSet {
	flags := slices.Clone(ls.flags)
	for _, l := range lines {
		if l >= 0 && l < len(flags) {
			flags[l] |= modifiedFlag
		}
	}
	return &LineSet{starts: ls.starts, flags: flags, length: ls.length}
}

// --- Invariants ------------------------------------------------------------

// Check validates ls against text: line starts and separators must be the
// ones of a fresh scan, offsets must be ascending.
func (ls *LineSet) Check(text string) error {
	if len(text) != ls.length {
		return fmt.Errorf("%w: length %d, expected %d", ErrTextMismatch, len(text), ls.length)
	}
	if len(ls.starts) != len(ls.flags) || len(ls.starts) == 0 || ls.starts[0] != 0 {
		return fmt.Errorf("%w: malformed line table", ErrTextMismatch)
	}
	for i := 1; i < len(ls.starts); i++ {
		if ls.starts[i] < ls.starts[i-1] {
			return fmt.Errorf("%w: line %d starts at %d before line %d at %d", ErrTextMismatch,
				i, ls.starts[i], i-1, ls.starts[i-1])
		}
	}
	fresh := New(text)
	if len(fresh.starts) != len(ls.starts) {
		return fmt.Errorf("%w: %d lines, expected %d", ErrTextMismatch, len(ls.starts), len(fresh.starts))
	}
	for i := range fresh.starts {
		if fresh.starts[i] != ls.starts[i] {
			return fmt.Errorf("%w: line %d starts at %d, expected %d", ErrTextMismatch,
				i, ls.starts[i], fresh.starts[i])
		}
		if fresh.flags[i]&sepMask != ls.flags[i]&sepMask {
			return fmt.Errorf("%w: line %d has separator length %d, expected %d", ErrTextMismatch,
				i, ls.flags[i]&sepMask, fresh.flags[i]&sepMask)
		}
	}
	return nil
}

func (ls *LineSet) String() string {
	return fmt.Sprintf("LineSet{lines=%d, length=%d}", len(ls.starts), ls.length)
}
