package textfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/guiguan/caster"
	"github.com/npillmayer/textdoc"
)

// Some constants for fragment size defaults
const (
	twoKb     = 2048
	sixKb     = 6144
	tenKb     = 10240
	hundredKb = 102400
	oneMb     = 1048576
)

// ErrNotText is flagged for files which are not regular files or do not
// contain valid UTF-8.
var ErrNotText = errors.New("not a UTF-8 text file")

// Progress is published by LoadAsync for every fragment read.
type Progress struct {
	Path string
	Read int64 // bytes read so far
	Size int64 // size of the file
}

// Loaded is published by LoadAsync when loading has finished. Either
// Document or Err is set.
type Loaded struct {
	Path     string
	Document *textdoc.Document
	Err      error
}

// textFile represents an OS file which will be loaded as a document.
type textFile struct {
	path     string      // file name
	info     os.FileInfo // result from Stat(path)
	file     *os.File    // file handle
	fragSize int64       // number of bytes read at once
}

// Load reads a file, which must be a UTF-8 text file, and creates a document
// for it. opts are passed on to textdoc.New. Files containing "\r" separators
// are loaded regardless of textdoc.WithAcceptSlashR.
func Load(name string, opts ...textdoc.Option) (*textdoc.Document, error) {
	tf, err := openFile(name)
	if err != nil {
		return nil, err
	}
	defer tf.file.Close()
	text, err := tf.read(nil)
	if err != nil {
		return nil, err
	}
	return newDocument(tf, text, opts)
}

// LoadAsync opens a file synchronously and reads it in the background. The
// returned channel receives a Progress message for every fragment read and a
// final Loaded message. It is closed after the Loaded message or when ctx is
// canceled.
func LoadAsync(ctx context.Context, name string, opts ...textdoc.Option) (<-chan interface{}, error) {
	tf, err := openFile(name)
	if err != nil {
		return nil, err
	}
	cast := caster.New(ctx)
	messages, ok := cast.Sub(ctx, 16)
	if !ok {
		tf.file.Close()
		return nil, fmt.Errorf("cannot subscribe to loader of %s", name)
	}
	go func() {
		defer tf.file.Close()
		defer cast.Close()
		text, err := tf.read(func(read int64) bool {
			return cast.Pub(Progress{Path: tf.path, Read: read, Size: tf.info.Size()})
		})
		if err != nil {
			cast.Pub(Loaded{Path: tf.path, Err: err})
			return
		}
		doc, err := newDocument(tf, text, opts)
		cast.Pub(Loaded{Path: tf.path, Document: doc, Err: err})
	}()
	return messages, nil
}

// openFile opens an OS file and collects some useful information on it,
// checking for error conditions.
func openFile(name string) (*textFile, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotText, name)
	}
	file, err := os.Open(name) // just open for read access
	if err != nil {
		return nil, err
	}
	tf := &textFile{
		path:     name,
		info:     fi,
		file:     file,
		fragSize: fragmentSize(fi.Size()),
	}
	tracer().Debugf("textfile: opened %s, %d bytes, fragments of %d", name, fi.Size(), tf.fragSize)
	return tf, nil
}

func fragmentSize(size int64) int64 {
	switch {
	case size < 1024:
		return max(size, 1)
	case size < tenKb:
		return 256
	case size < hundredKb:
		return 512
	case size < oneMb:
		return twoKb
	}
	return sixKb
}

// read loads the content of the file fragment by fragment. progress is called
// after every fragment; if it returns false, reading stops with an error.
func (tf *textFile) read(progress func(read int64) bool) (string, error) {
	var sb strings.Builder
	sb.Grow(int(tf.info.Size()))
	buf := make([]byte, tf.fragSize)
	var pos int64
	for {
		cnt, err := tf.file.ReadAt(buf, pos)
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("error loading text fragment at %d: %w", pos, err)
		}
		sb.Write(buf[:cnt])
		pos += int64(cnt)
		if cnt > 0 && progress != nil && !progress(pos) {
			return "", fmt.Errorf("loading of %s canceled: %w", tf.path, context.Canceled)
		}
		if err == io.EOF {
			break
		}
	}
	if pos < tf.info.Size() {
		return "", fmt.Errorf("not all bytes loaded from %s: %d of %d", tf.path, pos, tf.info.Size())
	}
	text := sb.String()
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: %s contains invalid UTF-8", ErrNotText, tf.path)
	}
	return text, nil
}

func newDocument(tf *textFile, text string, opts []textdoc.Option) (*textdoc.Document, error) {
	if strings.IndexByte(text, '\r') >= 0 {
		opts = append(opts[:len(opts):len(opts)], textdoc.WithAcceptSlashR(true))
	}
	doc, err := textdoc.New(text, opts...)
	if err != nil {
		return nil, err
	}
	tracer().Infof("textfile: loaded %s with %d lines", tf.path, doc.LineCount())
	return doc, nil
}
