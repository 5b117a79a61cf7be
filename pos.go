package textdoc

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
)

// Pos is a position in a document given by line and byte column.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// OffsetToPos returns line and column of offset.
func (d *Document) OffsetToPos(offset int) (Pos, error) {
	if err := checkOffset(d.Text(), offset); err != nil {
		return Pos{}, err
	}
	line, col, ok := lineCol(d, offset)
	if !ok {
		return Pos{}, ErrIndexOutOfBounds
	}
	return Pos{Line: line, Col: col}, nil
}

// PosToOffset returns the offset of position p. The column has to be located
// inside the line, excluding its separator, and at a rune boundary.
func (d *Document) PosToOffset(p Pos) (int, error) {
	if p.Line < 0 || p.Line >= d.LineCount() || p.Col < 0 {
		return 0, fmt.Errorf("%w: position %s", ErrIndexOutOfBounds, p)
	}
	offset, ok := offsetAt(d, p.Line, p.Col)
	if !ok {
		return 0, fmt.Errorf("%w: position %s", ErrIllegalArguments, p)
	}
	return offset, nil
}

var setupGraphemes sync.Once

// maxGraphemeChunk limits the text handed to grapheme segmentation at once.
// The segmenter does not accept empty strings or strings of 64KiB and more.
const maxGraphemeChunk = 1 << 15

func graphemes(s string) grapheme.String {
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	return grapheme.StringFromString(s)
}

// graphemeChunk returns the length of the next chunk of text to segment. A
// chunk boundary is placed between two ASCII characters other than CR LF,
// which is always a grapheme boundary, or at a rune boundary if there is none.
func graphemeChunk(text string) int {
	if len(text) <= maxGraphemeChunk {
		return len(text)
	}
	for i := maxGraphemeChunk; i > maxGraphemeChunk/2; i-- {
		if text[i-1] < utf8.RuneSelf && text[i] < utf8.RuneSelf &&
			!(text[i-1] == '\r' && text[i] == '\n') {
			return i
		}
	}
	for i := maxGraphemeChunk; i > maxGraphemeChunk-utf8.UTFMax; i-- {
		if utf8.RuneStart(text[i]) {
			return i
		}
	}
	return maxGraphemeChunk
}

// VisualColumn returns the column offset is displayed at, counting grapheme
// widths in the width context of the document and expanding tabs to
// multiples of tabSize.
func (d *Document) VisualColumn(offset, tabSize int) (int, error) {
	p, err := d.OffsetToPos(offset)
	if err != nil {
		return 0, err
	}
	lineText, err := d.TextRange(offset-p.Col, offset)
	if err != nil {
		return 0, err
	}
	col := 0
	walkGraphemes(lineText, tabSize, d.conf.widthContext, func(_ int, _, next int) bool {
		col = next
		return true
	})
	return col, nil
}

// OffsetAtVisualColumn returns the offset of the grapheme of line displayed
// at visual column col. If col is located in the middle of a wide grapheme or
// a tab, the offset of this grapheme is returned. If the line is shorter than
// col, the end of the line is returned.
func (d *Document) OffsetAtVisualColumn(line, col, tabSize int) (int, error) {
	start, err := d.LineStartOffset(line)
	if err != nil {
		return 0, err
	}
	end, err := d.LineEndOffset(line)
	if err != nil {
		return 0, err
	}
	lineText, err := d.TextRange(start, end)
	if err != nil {
		return 0, err
	}
	offset := len(lineText)
	walkGraphemes(lineText, tabSize, d.conf.widthContext, func(pos int, _, next int) bool {
		if next > col {
			offset = pos
			return false
		}
		return true
	})
	return start + offset, nil
}

// walkGraphemes calls visit for every grapheme of text with its byte position
// and the visual columns before and after it, until visit returns false.
func walkGraphemes(text string, tabSize int, context *uax11.Context,
	visit func(pos int, col, next int) bool) {
	//
	pos, col := 0, 0
	for len(text) > 0 {
		n := graphemeChunk(text)
		for _, g := range splitGraphemes(text[:n]) {
			next := col
			if g == "\t" && tabSize > 0 {
				next = (col/tabSize + 1) * tabSize
			} else if utf8.ValidString(g) {
				next += uax11.StringWidth(graphemes(g), context)
			} else {
				next++
			}
			if !visit(pos, col, next) {
				return
			}
			pos += len(g)
			col = next
		}
		text = text[n:]
	}
}

// splitGraphemes splits a chunk of text into grapheme clusters. Text which is
// not valid UTF-8 is split into runes, with invalid bytes on their own.
func splitGraphemes(chunk string) []string {
	var gs []string
	if utf8.ValidString(chunk) {
		gstr := graphemes(chunk)
		for i := 0; i < gstr.Len(); i++ {
			if g := gstr.Nth(i); g != "" {
				gs = append(gs, g)
			}
		}
		return gs
	}
	for len(chunk) > 0 {
		_, size := utf8.DecodeRuneInString(chunk)
		gs = append(gs, chunk[:size])
		chunk = chunk[size:]
	}
	return gs
}
