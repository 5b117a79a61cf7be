package textdoc

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/textdoc/intervals"
)

func newDoc(t *testing.T, text string, opts ...Option) *Document {
	t.Helper()
	doc, err := New(text, append([]Option{WithTreeVerification()}, opts...)...)
	if err != nil {
		t.Fatalf("cannot create document: %v", err)
	}
	return doc
}

func newMarker(t *testing.T, doc *Document, start, end int) *RangeMarker {
	t.Helper()
	m, err := doc.CreateRangeMarker(start, end)
	if err != nil {
		t.Fatalf("cannot create marker [%d,%d]: %v", start, end, err)
	}
	return m
}

func expectText(t *testing.T, doc *Document, text string) {
	t.Helper()
	if doc.Text() != text {
		t.Fatalf("expected text %q, have %q", text, doc.Text())
	}
}

func expectMarker(t *testing.T, m *RangeMarker, start, end int) {
	t.Helper()
	if s, e := m.Range(); s != start || e != end {
		t.Errorf("expected marker at [%d,%d], is at [%d,%d]", start, end, s, e)
	}
}

func TestMarkerFollowsInserts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textdoc")
	defer teardown()
	//
	doc := newDoc(t, "hello world")
	m := newMarker(t, doc, 0, 5)
	if err := doc.InsertString(5, " there"); err != nil {
		t.Fatal(err)
	}
	expectText(t, doc, "hello there world")
	expectMarker(t, m, 0, 5)
	if err := doc.InsertString(0, "Oh, "); err != nil {
		t.Fatal(err)
	}
	expectText(t, doc, "Oh, hello there world")
	expectMarker(t, m, 4, 9)
	if s, _ := m.TextRange(); s != "hello" {
		t.Errorf("expected marker to denote 'hello', denotes %q", s)
	}
}

func TestEditArguments(t *testing.T) {
	doc := newDoc(t, "häh")
	if err := doc.InsertString(5, "x"); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected index error for insert behind end, have %v", err)
	}
	if err := doc.DeleteString(2, 1); !errors.Is(err, ErrIllegalArguments) {
		t.Errorf("expected argument error for inverted range, have %v", err)
	}
	if err := doc.InsertString(2, "x"); !errors.Is(err, ErrIllegalArguments) {
		t.Errorf("expected argument error for offset inside a rune, have %v", err)
	}
	if err := doc.DeleteString(1, 1); err != nil {
		t.Errorf("empty delete should be a no-op, is %v", err)
	}
	if _, err := doc.CreateRangeMarker(-1, 2); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected index error for marker, have %v", err)
	}
	expectText(t, doc, "häh")
}

func TestReadOnly(t *testing.T) {
	doc := newDoc(t, "abc")
	doc.SetReadOnly(true)
	if err := doc.InsertString(1, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected read-only violation, have %v", err)
	}
	doc.SetReadOnly(false)
	if err := doc.InsertString(1, "x"); err != nil {
		t.Error(err)
	}
	expectText(t, doc, "axbc")
}

func TestWriteAccessAndSeparators(t *testing.T) {
	denied := errors.New("not on the writer goroutine")
	allow := true
	doc := newDoc(t, "abc", WithAcceptSlashR(false), WithWriteAccess(func() error {
		if allow {
			return nil
		}
		return denied
	}))
	if err := doc.InsertString(0, "x\r\n"); !errors.Is(err, ErrInvalidSeparators) {
		t.Errorf("expected separator error, have %v", err)
	}
	allow = false
	if err := doc.InsertString(0, "x"); !errors.Is(err, ErrWriteAccess) {
		t.Errorf("expected write access error, have %v", err)
	}
	if _, err := New("a\rb", WithAcceptSlashR(false)); !errors.Is(err, ErrInvalidSeparators) {
		t.Errorf("expected separator error for initial text, have %v", err)
	}
}

func TestCommandCheckRejectsEdits(t *testing.T) {
	inCommand := false
	doc := newDoc(t, "abc", WithCommandCheck(func() error {
		if inCommand {
			return nil
		}
		return errors.New("no command running")
	}))
	calls := 0
	doc.AddListener(ListenerFuncs{
		Before: func(*Event) error { calls++; return nil },
		After:  func(*Event) error { calls++; return nil },
	})
	m := newMarker(t, doc, 1, 2)
	seq := doc.ModificationSequence()
	if err := doc.InsertString(0, "x"); !errors.Is(err, ErrOutsideCommand) {
		t.Errorf("expected edit outside of command to be rejected, have %v", err)
	}
	if calls != 0 || doc.ModificationSequence() != seq {
		t.Errorf("rejected edit should not reach listeners, %d calls", calls)
	}
	expectText(t, doc, "abc")
	expectMarker(t, m, 1, 2)
	inCommand = true
	if err := doc.InsertString(0, "x"); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected 2 listener calls, have %d", calls)
	}
	expectMarker(t, m, 2, 3)
}

func TestReplaceIsNarrowed(t *testing.T) {
	doc := newDoc(t, "one\ntwo\nthree")
	var events []*Event
	doc.AddListener(ListenerFuncs{After: func(e *Event) error {
		events = append(events, e)
		return nil
	}})
	if err := doc.ReplaceString(0, doc.Len(), "one\ntwo!\nthree"); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, have %d", len(events))
	}
	e := events[0]
	if e.Offset != 7 || e.OldFragment != "" || e.NewFragment != "!" {
		t.Errorf("expected narrowed insert of '!' at 7, have %s", e)
	}
	if e.InitialStartOffset != 0 || e.InitialOldLength != 13 {
		t.Errorf("expected initial window [0,13), have [%d,%d)", e.InitialStartOffset,
			e.InitialStartOffset+e.InitialOldLength)
	}
	if e.WholeTextReplaced {
		t.Errorf("narrowed replace should not count as whole text replacement")
	}
	// narrowing must not split runes: "ä" and "ö" share their first byte
	if err := doc.ReplaceString(0, 3, "ö"); err != nil {
		t.Fatal(err)
	}
	doc.ReplaceString(0, 2, "ä")
	if e := events[len(events)-1]; e.OldFragment != "ö" || e.NewFragment != "ä" {
		t.Errorf("expected rune-aligned replace of ö by ä, have %s", e)
	}
}

func TestNoOpReplaceChangesNothing(t *testing.T) {
	doc := newDoc(t, "abc\ndef\n")
	m := newMarker(t, doc, 1, 6)
	doc.ClearLineModificationFlags()
	seq, stamp := doc.ModificationSequence(), doc.ModificationStamp()
	calls := 0
	doc.AddListener(ListenerFuncs{After: func(*Event) error { calls++; return nil }})
	if err := doc.ReplaceString(0, 8, "abc\ndef\n"); err != nil {
		t.Fatal(err)
	}
	if err := doc.ReplaceString(4, 5, "d"); err != nil {
		t.Fatal(err)
	}
	if calls != 0 || doc.ModificationSequence() != seq || doc.ModificationStamp() != stamp {
		t.Errorf("no-op replace should not count as modification")
	}
	for line := 0; line < doc.LineCount(); line++ {
		if doc.IsLineModified(line) {
			t.Errorf("line %d flagged as modified", line)
		}
	}
	expectMarker(t, m, 1, 6)
}

func TestLineQueries(t *testing.T) {
	doc := newDoc(t, "ab\r\ncd\re\n")
	if n := doc.LineCount(); n != 4 {
		t.Fatalf("expected 4 lines, have %d", n)
	}
	for _, c := range []struct{ line, start, end, sep int }{
		{0, 0, 2, 2}, {1, 4, 6, 1}, {2, 7, 8, 1}, {3, 9, 9, 0},
	} {
		start, _ := doc.LineStartOffset(c.line)
		end, _ := doc.LineEndOffset(c.line)
		sep, _ := doc.LineSeparatorLength(c.line)
		if start != c.start || end != c.end || sep != c.sep {
			t.Errorf("line %d: have [%d,%d)+%d, expected [%d,%d)+%d", c.line, start, end, sep,
				c.start, c.end, c.sep)
		}
	}
	if _, err := doc.LineStartOffset(4); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("expected index error for line 4, have %v", err)
	}
	empty := newDoc(t, "")
	if end, err := empty.LineEndOffset(0); err != nil || end != 0 {
		t.Errorf("empty document: line end %d, %v", end, err)
	}
	// splitting the last terminated line
	doc = newDoc(t, "a\nb\n")
	if err := doc.InsertString(3, "\n"); err != nil {
		t.Fatal(err)
	}
	if n := doc.LineCount(); n != 4 {
		t.Errorf("expected 4 lines, have %d", n)
	}
	for line, start := range []int{0, 2, 4, 5} {
		if s, _ := doc.LineStartOffset(line); s != start {
			t.Errorf("line %d starts at %d, expected %d", line, s, start)
		}
	}
}

func TestSetTextClearsLineFlags(t *testing.T) {
	doc := newDoc(t, "a\nb\nc")
	doc.InsertString(2, "x")
	if !doc.IsLineModified(1) {
		t.Fatalf("expected line 1 to be modified")
	}
	if err := doc.SetText("a\nxbb\nc\nd"); err != nil {
		t.Fatal(err)
	}
	for line := 0; line < doc.LineCount(); line++ {
		if doc.IsLineModified(line) {
			t.Errorf("line %d flagged as modified after SetText", line)
		}
	}
	if err := doc.ReplaceText("new", 4711); err != nil {
		t.Fatal(err)
	}
	if doc.ModificationStamp() != 4711 {
		t.Errorf("expected stamp 4711, have %d", doc.ModificationStamp())
	}
}

func TestClearFlagVariants(t *testing.T) {
	doc := newDoc(t, "a\nb\nc\nd")
	for _, o := range []int{0, 2, 4, 6} {
		doc.ReplaceString(o, o+1, "X")
	}
	doc.ClearLineModificationFlagsRange(1, 3)
	exp := []bool{true, false, false, true}
	for i, m := range exp {
		if doc.IsLineModified(i) != m {
			t.Errorf("line %d: modified = %v, expected %v", i, !m, m)
		}
	}
	doc.ClearLineModificationFlagsExcept([]int{3})
	if doc.IsLineModified(0) || !doc.IsLineModified(3) {
		t.Errorf("expected only line 3 to stay modified")
	}
}

func TestMoveText(t *testing.T) {
	doc := newDoc(t, "0123456789")
	inside := newMarker(t, doc, 2, 4)
	behind := newMarker(t, doc, 8, 9)
	var moves []int
	doc.AddListener(ListenerFuncs{After: func(e *Event) error {
		if e.NewLength() > 0 {
			moves = append(moves, e.MoveOffset())
		}
		return nil
	}})
	if err := doc.MoveText(1, 5, 8); err != nil {
		t.Fatal(err)
	}
	expectText(t, doc, "0567123489")
	expectMarker(t, inside, 5, 7)
	expectMarker(t, behind, 8, 9)
	if len(moves) != 1 || moves[0] != 1 {
		t.Errorf("expected move offset 1, have %v", moves)
	}
	// move to the front
	if err := doc.MoveText(4, 8, 0); err != nil {
		t.Fatal(err)
	}
	expectText(t, doc, "1234056789")
	expectMarker(t, inside, 1, 3)
	if err := doc.MoveText(2, 6, 6); err != nil {
		t.Errorf("move to the source range's own end should be a no-op, is %v", err)
	}
	expectText(t, doc, "1234056789")
	if err := doc.MoveText(2, 6, 4); !errors.Is(err, ErrIllegalArguments) {
		t.Errorf("expected error for move into source range, have %v", err)
	}
}

func TestCyclicBuffer(t *testing.T) {
	doc := newDoc(t, "", WithCyclicBufferSize(10))
	doc.InsertString(0, "abcdefgh")
	doc.InsertString(8, "ijklm")
	expectText(t, doc, "defghijklm")
	doc.SetCyclicBufferSize(0)
	doc.InsertString(10, "nop")
	if doc.Len() != 13 {
		t.Errorf("unlimited buffer should not be trimmed, length is %d", doc.Len())
	}
	if err := doc.SetCyclicBufferSize(-1); !errors.Is(err, ErrIllegalArguments) {
		t.Errorf("expected error for negative buffer size")
	}
}

func TestStampsAndSequence(t *testing.T) {
	doc := newDoc(t, "abc")
	seq, stamp := doc.ModificationSequence(), doc.ModificationStamp()
	var seen int64
	doc.AddListener(ListenerFuncs{After: func(e *Event) error {
		seen = doc.ModificationSequence()
		if e.OldTimeStamp != stamp {
			t.Errorf("event should carry the previous stamp %d, has %d", stamp, e.OldTimeStamp)
		}
		return nil
	}})
	doc.InsertString(3, "d")
	if seen != seq+1 {
		t.Errorf("listener should see the bumped sequence %d, saw %d", seq+1, seen)
	}
	if doc.ModificationStamp() <= stamp {
		t.Errorf("stamp should advance")
	}
	doc.SetModificationStamp(7)
	if doc.ModificationStamp() != 7 || doc.Freeze().ModificationStamp() != 7 {
		t.Errorf("explicit stamp not set")
	}
}

// Random edits have to produce the text of naive string splicing, a correct
// line index, and markers placed by the boundary policy.
func TestRandomEditsRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textdoc")
	defer teardown()
	//
	rnd := rand.New(rand.NewSource(7))
	alphabet := "ab \n\r\t"
	randomText := func(n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteByte(alphabet[rnd.Intn(len(alphabet))])
		}
		return sb.String()
	}
	model := randomText(200)
	doc := newDoc(t, model)
	type modelMarker struct {
		m          *RangeMarker
		start, end int
		flags      intervals.Flags
		valid      bool
	}
	var markers []*modelMarker
	for i := 0; i < 50; i++ {
		s := rnd.Intn(len(model) + 1)
		e := min(len(model), s+rnd.Intn(10))
		m := newMarker(t, doc, s, e)
		f := intervals.Flags(rnd.Intn(8))
		m.SetGreedyToLeft(f&intervals.GreedyToLeft != 0)
		m.SetGreedyToRight(f&intervals.GreedyToRight != 0)
		m.SetStickingToRight(f&intervals.StickyToRight != 0)
		markers = append(markers, &modelMarker{m: m, start: s, end: e, flags: f, valid: true})
	}
	doc.AddListener(ListenerFuncs{After: func(e *Event) error {
		for _, mm := range markers {
			if mm.valid {
				mm.start, mm.end, mm.valid = intervals.ApplyChange(e.change(), mm.start, mm.end, mm.flags)
			}
		}
		return nil
	}})
	for step := 0; step < 1000; step++ {
		start := rnd.Intn(len(model) + 1)
		end := min(len(model), start+rnd.Intn(8))
		s := randomText(rnd.Intn(6))
		var err error
		switch rnd.Intn(3) {
		case 0:
			err = doc.InsertString(start, s)
			model = model[:start] + s + model[start:]
		case 1:
			err = doc.DeleteString(start, end)
			model = model[:start] + model[end:]
		default:
			err = doc.ReplaceString(start, end, s)
			model = model[:start] + s + model[end:]
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if doc.Text() != model {
			t.Fatalf("step %d: text differs from model", step)
		}
		if err := doc.lineSet().Check(model); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		for _, mm := range markers {
			if mm.valid != mm.m.IsValid() {
				t.Fatalf("step %d: marker validity %v, expected %v", step, mm.m.IsValid(), mm.valid)
			}
			if s, e := mm.m.Range(); mm.valid && (s != mm.start || e != mm.end) {
				t.Fatalf("step %d: marker at [%d,%d], expected [%d,%d]", step, s, e, mm.start, mm.end)
			}
		}
	}
	checkLineInvariant(t, doc)
}

func checkLineInvariant(t *testing.T, doc *Document) {
	t.Helper()
	for o := 0; o <= doc.Len(); o++ {
		line, err := doc.LineNumber(o)
		if err != nil {
			t.Fatal(err)
		}
		start, _ := doc.LineStartOffset(line)
		end, _ := doc.LineEndOffset(line)
		sep, _ := doc.LineSeparatorLength(line)
		if o < start || o > end+sep {
			t.Fatalf("offset %d outside of its line %d at [%d,%d]+%d", o, line, start, end, sep)
		}
	}
}
