package query

import "errors"

// Sentinel errors returned or raised by the sequence engine.
var (
	// ErrNoCurrent is the panic value of [Enumerator.Current] when the cursor has
	// not produced an element yet, or has been exhausted or disposed.
	ErrNoCurrent = errors.New("query: enumerator has no current element")

	// ErrNoMatchingItems is returned by [FirstOrFail] when no element satisfies
	// the predicate.
	ErrNoMatchingItems = errors.New("query: no items match the given condition")
)
