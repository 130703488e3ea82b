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

// Package gate decides whether a query is worth sending upstream and which
// aggregation mode a host section selects.
//
// Lookups are network-bound, and very short queries produce large, noisy
// result sets, so queries below a minimum length are rejected before any
// I/O happens. A rejected query is not an error: the caller leaves whatever
// is on screen untouched.
package gate
