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

// Package openai provides a GenreTagger backed by an OpenAI-compatible chat API.
//
// The tagger uses the langchaingo library and works against OpenAI or any
// compatible server (Ollama, LocalAI, vLLM). The model is asked for JSON and
// its answer is filtered to the configured label set, so a hallucinated genre
// never reaches the classifier.
//
// # Usage
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithModel("qwen2.5:3b"),
//	    ai.WithLabels(groups.DefaultGenres...),
//	)
//	tagger, err := openai.NewGenreTagger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	genres, err := tagger.TagGenres(ctx, "Alien (1979)")
package openai
