package textdoc

import (
	"errors"
	"io"
	"testing"
)

func TestApplyEventToSnapshot(t *testing.T) {
	doc := newDoc(t, "one\r\ntwo\nthree")
	var events []*Event
	doc.AddListener(ListenerFuncs{After: func(e *Event) error {
		events = append(events, e)
		return nil
	}})
	fd := doc.Freeze()
	if doc.Freeze() != fd {
		t.Errorf("snapshot of unmodified document should be cached")
	}
	doc.InsertString(4, "\n")
	doc.ReplaceString(6, 12, "2\n2")
	doc.DeleteString(0, 2)
	for _, e := range events {
		var err error
		if fd, err = fd.ApplyEvent(e, doc.ModificationStamp()); err != nil {
			t.Fatal(err)
		}
	}
	live := doc.Freeze()
	if fd.Text() != live.Text() || fd.LineCount() != live.LineCount() {
		t.Fatalf("snapshot %q differs from document %q", fd.Text(), live.Text())
	}
	for line := 0; line < fd.LineCount(); line++ {
		s0, _ := fd.LineStartOffset(line)
		e0, _ := fd.LineEndOffset(line)
		s1, _ := live.LineStartOffset(line)
		e1, _ := live.LineEndOffset(line)
		if s0 != s1 || e0 != e1 || fd.IsLineModified(line) != live.IsLineModified(line) {
			t.Errorf("line %d differs", line)
		}
	}
	if _, err := fd.ApplyEvent(events[2], 0); !errors.Is(err, ErrIllegalArguments) {
		t.Errorf("expected event not to apply, have %v", err)
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	doc := newDoc(t, "abc\ndef")
	fd := doc.Freeze()
	r := doc.Reader()
	doc.InsertString(0, "X")
	if fd.Text() != "abc\ndef" || fd.Len() != 7 {
		t.Errorf("snapshot has been modified")
	}
	b, err := io.ReadAll(r)
	if err != nil || string(b) != "abc\ndef" {
		t.Errorf("reader should return the old text, returns %q", b)
	}
	rr, err := fd.RangeReader(4, 7)
	if err != nil {
		t.Fatal(err)
	}
	if b, _ := io.ReadAll(rr); string(b) != "def" {
		t.Errorf("expected range reader to return 'def', returns %q", b)
	}
	if line, _ := fd.LineNumber(5); line != 1 {
		t.Errorf("expected offset 5 on line 1, is on %d", line)
	}
	if s, _ := fd.TextRange(0, 3); s != "abc" {
		t.Errorf("expected 'abc', have %q", s)
	}
}
