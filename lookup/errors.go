package lookup

import "errors"

var (
	// ErrServiceRequired is returned when a nil Service is wrapped.
	ErrServiceRequired = errors.New("lookup service required")

	// ErrTaggerRequired is returned when a nil tagger is supplied.
	ErrTaggerRequired = errors.New("genre tagger required")

	// ErrNotFound is returned by Enrich when the record is unknown upstream.
	ErrNotFound = errors.New("title not found")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
