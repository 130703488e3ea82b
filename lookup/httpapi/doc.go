// Package httpapi exposes a lookup.Service over HTTP and consumes one.
//
// The wire format is JSON:
//
//	GET /search?q=batman        -> {"results":[{"id":"0372784","title":"Batman Begins"}]}
//	GET /titles/{id}/genres     -> {"id":"0372784","genres":["Action","Crime"]}
//	GET /healthz                -> {"status":"ok"}
//
// Server routes requests with chi. Client rate-limits requests, bounds each
// attempt with a timeout, and retries transient failures with exponential
// backoff. Non-2xx responses surface as *StatusError; 5xx and 429 are
// temporary and therefore retried.
package httpapi
