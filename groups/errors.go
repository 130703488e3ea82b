package groups

import "errors"

var (
	// ErrNoLabels is returned when a Table is built without any labels.
	ErrNoLabels = errors.New("at least one group label required")

	// ErrEmptyLabel is returned when a label is the empty string.
	ErrEmptyLabel = errors.New("group label cannot be empty")
)
