package textdoc

// bulkStripRanges is the number of stripped line ends above which trailing
// spaces are deleted in bulk mode.
const bulkStripRanges = 1000

// StripTrailingSpaces deletes spaces and tabs at the end of lines. If
// inChangedLinesOnly is set, only lines flagged as modified are stripped.
// keep holds caret offsets: a line with a caret behind the start of its
// trailing white space is left alone.
//
// StripTrailingSpaces returns true if some lines have been left alone for a
// caret and should be stripped later. Errors from the deletions, such as
// ErrReadOnly or a *GuardedRegionError, are returned as is.
func (d *Document) StripTrailingSpaces(inChangedLinesOnly bool, keep []int) (bool, error) {
	carets := make(map[int]int, len(keep))
	for _, offset := range keep {
		line, err := d.LineNumber(offset)
		if err != nil {
			continue
		}
		carets[line] = max(carets[line], offset)
	}
	text := d.Text()
	var targets [][2]int
	later := false
	for line := 0; line < d.LineCount(); line++ {
		if inChangedLinesOnly && !d.IsLineModified(line) {
			continue
		}
		start, err := d.LineStartOffset(line)
		if err != nil {
			return later, err
		}
		end, err := d.LineEndOffset(line)
		if err != nil {
			return later, err
		}
		ws := end
		for ws > start && (text[ws-1] == ' ' || text[ws-1] == '\t') {
			ws--
		}
		if ws == end {
			continue
		}
		if ws < carets[line] {
			later = true
			continue
		}
		targets = append(targets, [2]int{ws, end})
	}
	strip := func() error {
		for i := len(targets) - 1; i >= 0; i-- {
			if err := d.DeleteString(targets[i][0], targets[i][1]); err != nil {
				return err
			}
		}
		return nil
	}
	var err error
	if len(targets) > bulkStripRanges {
		err = d.ExecuteInBulk(strip)
	} else {
		err = strip()
	}
	return later, err
}
