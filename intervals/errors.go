package intervals

import "errors"

var (
	// ErrInvalidInterval signals an interval with negative or inverted offsets.
	ErrInvalidInterval = errors.New("intervals: invalid interval")
	// ErrUnknownItem signals an item which is not registered at a node.
	ErrUnknownItem = errors.New("intervals: item not registered")
	// ErrInconsistent signals a violation of the tree invariants. Trees
	// configured with Verify panic with an error wrapping it.
	ErrInconsistent = errors.New("intervals: tree inconsistent")
)
