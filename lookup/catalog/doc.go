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

// Package catalog provides a local title catalog backed by BadgerDB.
//
// A Catalog implements lookup.Service: Search matches every non-stop word of
// the query against title words, with the final word treated as a prefix so
// partially typed queries still match. Results come back in insertion order.
// Enrich returns the genres stored with the title.
//
// Catalogs are populated from YAML seed files:
//
//	titles:
//	  - id: "0372784"
//	    title: Batman Begins
//	    genres: [Action, Adventure]
//
// Entries without an id receive a content-derived one.
//
// For tests, open an in-memory catalog:
//
//	cat, err := catalog.Open("", true)
//	defer cat.Close()
package catalog
