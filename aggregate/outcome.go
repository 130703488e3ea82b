package aggregate

import "github.com/poiesic/titlelens/core"

// Outcome summarizes a run.
type Outcome struct {
	Query string
	Mode  core.Mode

	// Skipped is true when the gate rejected the query. Nothing else is set.
	Skipped bool

	Records     int // hits returned by the lookup
	Processed   int // records that advanced the flush counter
	Dropped     int // records with no genres or failing validation
	Rows        int // rows appended, including the "no results" row
	Flushes     int // FlushBatch calls, including the reset flush
	CacheHits   int
	Enrichments int // Enrich calls made by this run
	Committed   bool
}
