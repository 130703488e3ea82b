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

// Package aggregate runs a title query end to end and streams rows to a sink.
//
// An Aggregator owns the detail cache and the group table. Each Run:
//
//  1. drops queries the gate rejects, without touching the sink
//  2. clears the sink and publishes the empty state
//  3. searches the upstream lookup
//  4. emits a single "no results" row when nothing matched
//  5. walks the hits in upstream order, enriching them in genre mode
//     (through the cache) and appending one row per group
//  6. flushes every FlushEvery processed records, then once more at the end
//  7. commits, telling the host no more rows are coming
//
// The flush counter advances per record, not per row, and genre-less
// records do not advance it. A lookup or enrichment failure flushes what
// was produced, commits, and returns an error wrapping core.ErrLookupFailure
// or core.ErrEnrichmentFailure. A canceled context means the run was
// superseded. In that case Run returns the context error without further
// sink calls.
package aggregate
