// Package sink defines the incremental result surface that runs write to.
//
// A run issues its calls in a fixed order: Clear and FlushBatch to reset the
// surface, then Append calls interleaved with periodic FlushBatch calls, then
// a trailing FlushBatch and a Commit. Commit is distinct from FlushBatch. It
// tells the host that no more rows are coming for the current query, so any
// "in progress" indicator can be retired.
//
// Two implementations are provided. Recorder keeps an ordered log of every
// call and is used by tests and diagnostics. Writer renders the published
// rows, grouped by display group, to an io.Writer.
package sink
