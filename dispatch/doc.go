// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dispatch turns host notifications into aggregator runs.
//
// A Session owns one scope per result surface (the entry search and the
// global search). Each scope has its own sink and a single-worker pool, so
// runs within a scope never interleave their sink calls. Every accepted query
// change starts a new generation and cancels the run of the previous one; a
// canceled run stops before touching the sink again.
//
// Scopes share the session's aggregator, and with it the detail cache.
//
// Basic usage:
//
//	session, err := dispatch.NewSession(agg)
//	defer session.Close()
//	session.Attach(dispatch.ScopeEntry, entrySink)
//	session.QueryChanged(dispatch.ScopeEntry, "batman")
//	session.SectionChanged(dispatch.ScopeEntry, 1) // re-runs "batman" grouped by genre
//	session.Wait()
package dispatch
