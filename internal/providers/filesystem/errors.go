package filesystem

import "errors"

// Error taxonomy. Every error returned by this package wraps exactly one of
// these; match with errors.Is.
var (
	ErrForbidden           = errors.New("access outside the allowed area is forbidden")
	ErrNotFound            = errors.New("not found")
	ErrWrongKind           = errors.New("wrong kind of file system object")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	ErrToolUnavailable     = errors.New("drive enumeration unavailable")
)
