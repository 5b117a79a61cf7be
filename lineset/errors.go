package lineset

import "errors"

var (
	// ErrIndexOutOfBounds signals an offset or line index outside the text.
	ErrIndexOutOfBounds = errors.New("lineset: index out of bounds")
	// ErrTextMismatch signals that a text does not belong to a line set.
	ErrTextMismatch = errors.New("lineset: text does not match line set")
)
