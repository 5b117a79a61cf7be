/*
Package textdoc implements a text document which keeps range markers in
place while the text is edited.

A Document holds an immutable text snapshot, replaced wholesale by every
edit, together with a LineSet (package lineset) indexing its lines. Edits run
through a fixed pipeline: arguments are validated, read-only and guarded
regions are enforced, listeners are notified before the change, the new text
is installed and the line index updated, and listeners are notified after the
change. Listeners are ordered by priority; errors returned or panics raised by
a listener are logged without interrupting the notification of the others.
A cancellation (ErrCanceled or context.Canceled) is remembered and returned
once all listeners have run.

Range markers denote spans of the text. They live in interval trees (package
intervals) which update them with every edit according to a boundary policy
controlled by the greedy and sticky flags of a marker. A marker whose span
cannot be represented after an edit becomes invalid for good. Persistent
markers remember line and column of their boundaries and try to re-anchor via
a line diff if an edit replaces most of the document. Guarded blocks are range
markers which veto edits touching them.

	doc, _ := textdoc.New("hello world")
	m, _ := doc.CreateRangeMarker(0, 5)
	doc.InsertString(0, "Oh, ")
	fmt.Println(m.StartOffset(), m.EndOffset()) // 4 9

Offsets are byte offsets into the UTF-8 text and have to be located on rune
boundaries. Columns are byte columns as well; visual columns, respecting tab
stops and East Asian widths, are available by VisualColumn.

Documents follow a single writer model: mutations have to be serialized by
clients. Read access to texts, lines and markers is safe from any goroutine.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package textdoc

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to a global core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
