package resource

import "errors"

// Sentinel errors returned by the resource package.
var (
	// ErrUnknownKind is returned by [ParseKind] for a name that matches no
	// well-known kind and is not of the form Kind.version.group.
	ErrUnknownKind = errors.New("resource: unknown kind")

	// ErrInvalidPath is returned by [Set] when a path walks through a value
	// that is neither a map nor a list, or indexes past the end of a list.
	ErrInvalidPath = errors.New("resource: invalid path")

	// ErrInvalidObject is returned by [Decode] for a document that is not a
	// resource object (missing apiVersion or kind).
	ErrInvalidObject = errors.New("resource: invalid object")
)
