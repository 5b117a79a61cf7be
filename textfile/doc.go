/*
Package textfile loads UTF-8 text files as documents.

Files are read in fragments. Load reads synchronously, while LoadAsync reads
in the background and reports progress to a subscriber channel.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package textfile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'textdoc'
func tracer() tracing.Trace {
	return tracing.Select("textdoc")
}
