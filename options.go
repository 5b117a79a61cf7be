package textdoc

import (
	"github.com/guiguan/caster"
	"github.com/npillmayer/uax/uax11"
)

// Default values for document options.
const (
	DefaultDiffThreshold = 80    // percent of the document length
	DefaultMaxDiffLines  = 10000 // lines of both fragments together
)

// Option configures a Document.
type Option func(*Document)

// WithAcceptSlashR controls whether text containing "\r" is accepted.
// Documents accept "\r" by default; a document created with
// WithAcceptSlashR(false) only accepts "\n" as a line separator.
func WithAcceptSlashR(accept bool) Option {
	return func(d *Document) {
		d.conf.acceptSlashR = accept
	}
}

// WithCyclicBufferSize limits the length of the document to n bytes. Edits
// growing the document beyond n delete text from its start. 0 means no limit.
func WithCyclicBufferSize(n int) Option {
	return func(d *Document) {
		if n >= 0 {
			d.bufferSize = n
		}
	}
}

// WithWriteAccess sets a check called before every modification. If it
// returns an error, the modification is rejected with ErrWriteAccess.
func WithWriteAccess(check func() error) Option {
	return func(d *Document) {
		d.conf.writeAccess = check
	}
}

// WithCommandCheck sets a check called before listeners are notified of a
// modification. It tells if the modification happens inside a command. If the
// check fails, the modification is rejected with ErrOutsideCommand.
func WithCommandCheck(check func() error) Option {
	return func(d *Document) {
		d.conf.commandCheck = check
	}
}

// WithDiffThreshold sets the share (in percent of the document length) an
// edit has to replace for persistent markers to re-anchor via a line diff.
func WithDiffThreshold(percent int) Option {
	return func(d *Document) {
		if percent > 0 {
			d.conf.diffThreshold = percent
		}
	}
}

// WithMaxDiffLines limits the number of lines a line diff will be computed
// for. Persistent markers fall back to the boundary policy for larger edits.
func WithMaxDiffLines(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.conf.maxDiffLines = n
		}
	}
}

// WithoutGuardedBlockChecking creates a document which does not check guarded
// blocks until StartGuardedBlockChecking is called.
func WithoutGuardedBlockChecking() Option {
	return func(d *Document) {
		d.guardChecks = 0
	}
}

// WithTreeVerification lets the marker trees check their invariants after
// every mutation. Expensive, meant for tests.
func WithTreeVerification() Option {
	return func(d *Document) {
		d.conf.verifyTrees = true
	}
}

// WithPublisher sets a broadcaster on which the document publishes BulkUpdate
// messages.
func WithPublisher(c *caster.Caster) Option {
	return func(d *Document) {
		d.conf.publisher = c
	}
}

// WithWidthContext sets the context for determining the display width of
// East Asian characters in visual columns. The default is uax11.LatinContext.
func WithWidthContext(context *uax11.Context) Option {
	return func(d *Document) {
		if context != nil {
			d.conf.widthContext = context
		}
	}
}

type config struct {
	acceptSlashR  bool
	writeAccess   func() error
	commandCheck  func() error
	diffThreshold int
	maxDiffLines  int
	verifyTrees   bool
	publisher     *caster.Caster
	widthContext  *uax11.Context
}

func defaultConfig() config {
	return config{
		acceptSlashR:  true,
		diffThreshold: DefaultDiffThreshold,
		maxDiffLines:  DefaultMaxDiffLines,
		widthContext:  uax11.LatinContext,
	}
}
