package catalog

import "errors"

var (
	// ErrPartNotFound indicates the requested part does not exist.
	ErrPartNotFound = errors.New("part not found")
	// ErrTravelNotFound indicates the requested travel entry does not exist.
	ErrTravelNotFound = errors.New("travel entry not found")
	// ErrTravelExists is returned when a travel entry already covers the location.
	ErrTravelExists = errors.New("travel entry already exists for location")
	// ErrInvalidInput covers empty names and negative amounts.
	ErrInvalidInput = errors.New("invalid input")
)
