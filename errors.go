package textdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/npillmayer/textdoc/intervals"
)

// DocumentError is an error type for the textdoc module.
type DocumentError string

func (e DocumentError) Error() string {
	return string(e)
}

// ErrIndexOutOfBounds is flagged whenever an offset or line is located outside
// the document.
const ErrIndexOutOfBounds = DocumentError("index out of bounds")

// ErrIllegalArguments is flagged whenever function parameters are invalid,
// e.g. for inverted ranges or offsets splitting a UTF-8 rune.
const ErrIllegalArguments = DocumentError("illegal arguments")

// ErrReadOnly is flagged for modifications of a read-only document.
const ErrReadOnly = DocumentError("document is read-only")

// ErrGuardedRegion is wrapped by GuardedRegionError.
const ErrGuardedRegion = DocumentError("modification of guarded region")

// ErrNestedModification is flagged if a document is modified while a
// modification is in progress, i.e. from within a listener.
const ErrNestedModification = DocumentError("nested document modification")

// ErrCanceled may be returned by listeners to cancel further processing of a
// modification by the caller. The modification itself is not rolled back.
const ErrCanceled = DocumentError("document modification canceled")

// ErrBulkReentry is flagged if bulk mode is toggled from a bulk listener.
const ErrBulkReentry = DocumentError("bulk mode status updated from bulk listener")

// ErrUnpairedGuardCheck is flagged if guarded block checking is stopped more
// often than started.
const ErrUnpairedGuardCheck = DocumentError("guarded block checking stopped without start")

// ErrInvalidSeparators is flagged for text containing "\r" if the document
// does not accept it.
const ErrInvalidSeparators = DocumentError("text contains \\r line separators")

// ErrWriteAccess is flagged if the write-access check of a document fails.
const ErrWriteAccess = DocumentError("write access denied")

// ErrOutsideCommand is flagged if the command check of a document fails for
// a modification.
const ErrOutsideCommand = DocumentError("modification outside of command")

// ErrNoLineDiff is flagged if a line diff cannot be computed for an event,
// e.g. because the fragments have too many lines.
const ErrNoLineDiff = DocumentError("line diff not available")

// GuardedRegionError is returned for edits touching a guarded block. It
// carries the rejected edit and the block.
type GuardedRegionError struct {
	Event *Event
	Block *RangeMarker
}

func (e *GuardedRegionError) Error() string {
	return fmt.Sprintf("%s: %s touches %s", ErrGuardedRegion, e.Event, e.Block)
}

func (e *GuardedRegionError) Unwrap() error {
	return ErrGuardedRegion
}

// IsCancellation reports whether err signals a cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// delayedErrors collects the outcome of listener calls. The first
// cancellation is kept; every other error is logged.
type delayedErrors struct {
	cancel error
}

func (d *delayedErrors) register(err error, where string) {
	if err == nil {
		return
	}
	if IsCancellation(err) {
		if d.cancel == nil {
			d.cancel = err
		}
		return
	}
	T().Errorf("textdoc: %s: %v", where, err)
}

func (d *delayedErrors) rethrow() error {
	return d.cancel
}

// recovered converts a value recovered from a listener panic to an error.
// Violations of tree invariants are not recoverable and panic again.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		if errors.Is(err, intervals.ErrInconsistent) {
			panic(err)
		}
		return fmt.Errorf("listener panicked: %w", err)
	}
	return fmt.Errorf("listener panicked: %v", r)
}
