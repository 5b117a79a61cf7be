package textdoc

import "io"

// Reader returns a reader for the bytes of the current text. Later
// modifications of the document do not affect the reader.
func (d *Document) Reader() io.Reader {
	return d.Freeze().Reader()
}

// Reader returns a reader for the bytes of the snapshot.
func (fd *FrozenDocument) Reader() io.Reader {
	return &textReader{text: fd.text, end: len(fd.text)}
}

// RangeReader returns a reader for the bytes between start and end.
func (fd *FrozenDocument) RangeReader(start, end int) (io.Reader, error) {
	if err := checkRange(fd.text, start, end); err != nil {
		return nil, err
	}
	return &textReader{text: fd.text, cursor: start, end: end}, nil
}

type textReader struct {
	text   string
	cursor int
	end    int
}

func (tr *textReader) Read(p []byte) (n int, err error) {
	l := len(p)
	if tr.cursor+l > tr.end {
		l = tr.end - tr.cursor
		if l == 0 {
			return 0, io.EOF
		}
	}
	n = copy(p, tr.text[tr.cursor:tr.cursor+l])
	tr.cursor += n
	return n, nil
}
