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

package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// ID identifies a title. IDs are opaque, stable per entity and never reused.
type ID string

// IDFromContent generates a deterministic ID from text content using BLAKE2b.
// Used for catalog entries that arrive without an upstream identifier.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// Mode selects which aggregation variant a run performs.
// Mode values double as section indices in the host's section list.
type Mode int

const (
	// ModeNameOnly lists titles without enrichment.
	ModeNameOnly Mode = iota
	// ModeGenreInfo enriches each title and groups it by genre.
	ModeGenreInfo
)

func (m Mode) String() string {
	switch m {
	case ModeNameOnly:
		return "name-only"
	case ModeGenreInfo:
		return "genre-info"
	default:
		return "unknown"
	}
}

// GroupID is the display bucket a row is appended to.
type GroupID uint32

// Record is a candidate title returned by a lookup.
type Record struct {
	Id    ID
	Title string // Long canonical title, e.g. "Batman Begins (2005)"
	// Categories holds genre labels. Only meaningful once Enriched is true.
	Categories []string
	// Enriched reports whether Categories came from a detail lookup.
	// A record fresh from a search is not enriched even if Categories is non-nil.
	Enriched bool
}

// ResultRow is one row handed to a sink.
type ResultRow struct {
	URI      string
	IconHint string
	Group    GroupID
	MimeType string
	Title    string
	Comment  string
}
