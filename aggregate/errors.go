package aggregate

import "errors"

var (
	// ErrLookupRequired is returned when a lookup service is not provided.
	ErrLookupRequired = errors.New("lookup service required")

	// ErrCacheRequired is returned when a detail cache is not provided.
	ErrCacheRequired = errors.New("detail cache required")

	// ErrGroupsRequired is returned when a group table is not provided.
	ErrGroupsRequired = errors.New("group table required")

	// ErrSinkRequired is returned when Run is called without a sink.
	ErrSinkRequired = errors.New("sink required")
)
