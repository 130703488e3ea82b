package sink

import "github.com/poiesic/titlelens/core"

// Sink receives rows for one result scope.
// Calls for a given query are issued from a single goroutine, in order.
type Sink interface {
	// Clear drops every row currently held.
	Clear()

	// Append adds one row. It is not visible until the next FlushBatch.
	Append(row core.ResultRow)

	// FlushBatch publishes pending changes.
	FlushBatch()

	// Commit signals that the current query is complete.
	Commit()
}
