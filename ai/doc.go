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

// Package ai provides LLM-backed genre tagging for titles the upstream
// lookup has no genre data for.
//
// The package is designed around a single interface:
//
//   - GenreTagger: assigns genre labels, drawn from a fixed label set, to a title
//
// # Implementation Packages
//
//   - ai/openai: implementation using OpenAI-compatible chat APIs via langchaingo
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return the GenreTagger interface. Mock
// constructors return concrete types so tests can inspect call counts and
// inject behavior.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithLabels(groups.DefaultGenres...))
//	tagger, err := openai.NewGenreTagger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	genres, err := tagger.TagGenres(ctx, "Batman Begins (2005)")
package ai
