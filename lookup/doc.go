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

// Package lookup defines the upstream title service and helpers around it.
//
// A Service answers two questions: which titles match a query (Search), and
// which genre labels a given title carries (Enrich). Search is cheap relative
// to Enrich; callers are expected to memoize Enrich results by record ID.
//
// Implementations live in sub-packages:
//
//   - lookup/catalog: a local title catalog backed by BadgerDB
//   - lookup/httpapi: a rate-limited HTTP client and the matching chi server
//   - lookup/mock: test doubles with call counting
//
// WithTagger wraps any Service so that titles the upstream knows no genres
// for are tagged by an ai.GenreTagger instead.
package lookup
