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

// Package mock provides test doubles for the ai package.
//
// MockGenreTagger returns canned genres per title and counts calls, so tests
// can run without an external model:
//
//	tagger := mock.NewMockGenreTagger()
//	tagger.Genres["Alien (1979)"] = []string{"Sci-Fi", "Horror"}
//	genres, err := tagger.TagGenres(ctx, "Alien (1979)")
//	count := tagger.CallCount()
package mock
