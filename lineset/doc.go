/*
Package lineset implements an immutable index of line starts for a text.

A LineSet records, for every line of a text, the byte offset where the line
starts, the length of the line separator terminating it (0, 1 or 2 bytes) and
a flag telling whether the line has been modified since the flags were last
cleared. Recognized separators are "\n", "\r\n" and a lone "\r". A text ending
in a separator has an additional, empty last line; the empty text has exactly
one line.

LineSets are never changed in place. Update derives a new set for an edited
text, re-scanning only the lines touched by the edit whenever possible.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package lineset

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core-tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
