/*
Package intervals implements a red-black interval tree for spans of text
which have to follow edits of the text they refer to.

Every node of a Tree carries one interval [start,end] together with a set of
boundary flags, and the maximum end offset found in its subtree. Nodes are
ordered by start offset; ties are broken by the greedy-left flag (greedy
first), then by length, then by the greedy-right and sticky-right flags.
No two nodes share the same geometry: items registered with equal intervals
and flags are collected at a single node.

Edits are applied with Update. Subtrees located completely behind an edit are
not visited; instead, a pending shift (delta) is recorded at the subtree root
and pushed down lazily the next time the subtree is entered. Only intervals
overlapping or touching the edit are detached, re-computed with the boundary
policy of ApplyChange (or a client supplied variant of it) and inserted again.

A tree refers to its items by weak pointers. Items which are no longer
referenced by clients are dropped from the tree with the next mutation.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package intervals

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
