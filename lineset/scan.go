package lineset

import "math/bits"

// Bitmap indexes byte-local properties inside a block of text.
//
// Bit i corresponds to byte offset i in block-local coordinates.
type Bitmap = uint64

// blockSize is the number of bytes covered by one block bitmap.
const blockSize = 64

// block carries separator bitmaps for up to blockSize bytes of text.
type block struct {
	newlines Bitmap // '\n'
	returns  Bitmap // '\r'
	n        int
}

func bit(i int) Bitmap {
	return Bitmap(1) << uint(i)
}

// newBlock indexes the separator bytes of text, which must not be longer
// than blockSize.
func newBlock(text string) block {
	assert(len(text) <= blockSize, "lineset: block text too large")
	b := block{n: len(text)}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			b.newlines |= bit(i)
		case '\r':
			b.returns |= bit(i)
		}
	}
	return b
}

// separators returns the bitmap of all separator bytes in the block.
func (b block) separators() Bitmap {
	return b.newlines | b.returns
}

// scan splits text into lines. It returns the start offset of every line and
// the length of the separator ending it. The last line never has a separator.
func scan(text string) (starts []int, seps []uint8) {
	starts = append(starts, 0)
	skip := -1 // offset of a '\n' already consumed as part of "\r\n"
	for base := 0; base < len(text); base += blockSize {
		end := min(base+blockSize, len(text))
		blk := newBlock(text[base:end])
		m := blk.separators()
		for m != 0 {
			i := bits.TrailingZeros64(m)
			m &= m - 1
			pos := base + i
			if pos == skip {
				continue
			}
			if blk.returns&bit(i) != 0 && pos+1 < len(text) && text[pos+1] == '\n' {
				seps = append(seps, 2)
				starts = append(starts, pos+2)
				skip = pos + 1
				continue
			}
			seps = append(seps, 1)
			starts = append(starts, pos+1)
		}
	}
	seps = append(seps, 0)
	return
}

// hasLineBreak reports whether s contains a separator byte.
func hasLineBreak(s string) bool {
	for base := 0; base < len(s); base += blockSize {
		if newBlock(s[base:min(base+blockSize, len(s))]).separators() != 0 {
			return true
		}
	}
	return false
}
