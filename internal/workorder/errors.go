package workorder

import (
	"errors"
	"fmt"

	"github.com/abduss/fieldservice/internal/media"
)

var (
	// ErrNotFound signals that the work order, its metadata or a media file is absent.
	ErrNotFound = errors.New("work order not found")
	// ErrInvalidInput covers malformed JSON, missing fields and unusable names.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCorruptMetadata reports a stored metadata document that is not JSON.
	ErrCorruptMetadata = errors.New("work order metadata is corrupt")
)

func translateMediaError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, media.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, media.ErrInvalidName):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
