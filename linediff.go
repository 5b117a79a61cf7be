package textdoc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// lineChange is a block of changed lines: deleted lines of the old text
// starting at line0 have been replaced by inserted lines of the new text
// starting at line1.
type lineChange struct {
	line0, deleted  int
	line1, inserted int
}

// lineDiff is the list of changed blocks between two texts, ordered by line.
type lineDiff struct {
	changes []lineChange
	err     error
}

// diffLines computes the line diff of two texts. Lines are terminated by
// "\n"; texts with lone "\r" separators are not supported.
func diffLines(before, after string, maxLines int) *lineDiff {
	if hasLoneCR(before) || hasLoneCR(after) {
		return &lineDiff{err: fmt.Errorf("%w: lone \\r separators", ErrNoLineDiff)}
	}
	if n := strings.Count(before, "\n") + strings.Count(after, "\n") + 2; n > maxLines {
		return &lineDiff{err: fmt.Errorf("%w: %d lines exceed limit %d", ErrNoLineDiff, n, maxLines)}
	}
	lines := make(map[string]rune)
	a, b := lineRunes(before, lines), lineRunes(after, lines)
	diffs := diffmatchpatch.New().DiffMainRunes(a, b, false)
	ld := &lineDiff{}
	var cur *lineChange
	flush := func() {
		if cur != nil {
			ld.changes = append(ld.changes, *cur)
			cur = nil
		}
	}
	l0, l1 := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			l0 += n
			l1 += n
		case diffmatchpatch.DiffDelete:
			if cur == nil {
				cur = &lineChange{line0: l0, line1: l1}
			}
			cur.deleted += n
			l0 += n
		case diffmatchpatch.DiffInsert:
			if cur == nil {
				cur = &lineChange{line0: l0, line1: l1}
			}
			cur.inserted += n
			l1 += n
		}
	}
	flush()
	return ld
}

// lineRunes maps every line of text to a rune identifying its content, so
// that a rune diff of two texts is a line diff. A final line without "\n"
// is a line of its own. The diff library's own line munging encodes lines
// as comma separated decimal indices and a character diff of those may cut
// an index in half.
func lineRunes(text string, lines map[string]rune) []rune {
	runes := make([]rune, 0, strings.Count(text, "\n")+1)
	for len(text) > 0 {
		n := strings.IndexByte(text, '\n') + 1
		if n == 0 {
			n = len(text)
		}
		r, ok := lines[text[:n]]
		if !ok {
			r = lineRune(len(lines))
			lines[text[:n]] = r
		}
		runes = append(runes, r)
		text = text[n:]
	}
	return runes
}

// lineRune is the i-th valid rune, skipping the surrogate range.
func lineRune(i int) rune {
	if r := rune(i + 1); r < 0xD800 {
		return r
	}
	return rune(i + 1 + 0x800)
}

func (ld *lineDiff) empty() bool {
	return len(ld.changes) == 0
}

// translate maps a line of the old text to the new text. Lines inside a
// changed block map to -1.
func (ld *lineDiff) translate(line int) int {
	result := line
	for _, c := range ld.changes {
		if line < c.line0 {
			break
		}
		if line < c.line0+c.deleted {
			return -1
		}
		result += c.inserted - c.deleted
	}
	return result
}

// translateLoose maps a line of the old text to the new text. Lines inside a
// changed block map to the line at the same position of the inserted block,
// or to its last line.
func (ld *lineDiff) translateLoose(line int) int {
	result := line
	for _, c := range ld.changes {
		if line < c.line0 {
			break
		}
		if line < c.line0+c.deleted {
			return c.line1 + min(c.inserted, line-c.line0)
		}
		result += c.inserted - c.deleted
	}
	return result
}

func hasLoneCR(s string) bool {
	for i := strings.IndexByte(s, '\r'); i >= 0; {
		if i+1 >= len(s) || s[i+1] != '\n' {
			return true
		}
		j := strings.IndexByte(s[i+1:], '\r')
		if j < 0 {
			break
		}
		i += j + 1
	}
	return false
}
