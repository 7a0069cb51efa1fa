package partpics

import "errors"

var (
	// ErrNotFound indicates the picture is not stored.
	ErrNotFound = errors.New("part picture not found")
	// ErrInvalidName is returned for unsafe names and non-image files.
	ErrInvalidName = errors.New("invalid part picture name")
)
