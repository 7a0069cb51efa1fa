package media

import "errors"

var (
	// ErrNotFound signals that the folder or file does not exist.
	ErrNotFound = errors.New("media not found")
	// ErrInvalidName is returned for folder or file names that are empty, reserved or escape the root.
	ErrInvalidName = errors.New("invalid media name")
)
