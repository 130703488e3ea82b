// Package mock provides a lookup.Service test double.
//
// MockService answers searches from a query -> titles table and enrichments
// from an id -> genres table, counting every call so tests can assert that
// memoized titles are not enriched twice.
package mock
