// Package cache memoizes enrichment results by record identity.
//
// Detail lookups are expensive, and memoizing the lookup function by its
// arguments does not fit: the same title reappears inside different search
// results. The cache is therefore keyed by record ID alone and is
// append-only for the life of the process. Entries are never invalidated or
// evicted, and staleness is accepted in exchange for latency.
//
// Memory is safe for concurrent use. Keys are spread across shards by
// xxhash so that readers in different result scopes rarely contend.
package cache
