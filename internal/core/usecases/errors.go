package usecases

import "errors"

var (
	// ErrInvalidCoordinates is returned before any upstream call when the
	// request coordinates are missing, unparseable, or outside the service
	// area.
	ErrInvalidCoordinates = errors.New("coordinates outside service area")

	// ErrNoRoutesFound is returned only when even the fallback path could
	// not produce a single route.
	ErrNoRoutesFound = errors.New("no valid routes found")

	// ErrInvalidRating rejects feedback ratings outside the 1-5 scale.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrEmptyQuery rejects blank geocoding queries.
	ErrEmptyQuery = errors.New("query must not be empty")
)
