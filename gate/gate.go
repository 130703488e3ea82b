package gate

import (
	"unicode/utf8"

	"github.com/poiesic/titlelens/core"
)

// DefaultMinQueryLength is the shortest query that triggers a lookup.
const DefaultMinQueryLength = 4

// Gate filters queries by length and maps section indices onto modes.
type Gate struct {
	minLength int
	sections  []core.Mode
}

// Option configures a Gate.
type Option func(*Gate)

// WithMinLength overrides the minimum query length. Values below 1 are raised to 1.
func WithMinLength(n int) Option {
	return func(g *Gate) {
		if n < 1 {
			n = 1
		}
		g.minLength = n
	}
}

// WithSections replaces the section index -> mode table.
// The default table is [ModeNameOnly, ModeGenreInfo].
func WithSections(modes ...core.Mode) Option {
	return func(g *Gate) {
		g.sections = append([]core.Mode(nil), modes...)
	}
}

// New creates a Gate.
func New(opts ...Option) *Gate {
	g := &Gate{
		minLength: DefaultMinQueryLength,
		sections:  []core.Mode{core.ModeNameOnly, core.ModeGenreInfo},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow reports whether query should be run. An absent query is the empty string.
// Length is counted in characters, not bytes.
func (g *Gate) Allow(query string) bool {
	if query == "" {
		return false
	}
	return utf8.RuneCountInString(query) >= g.minLength
}

// MinLength returns the configured minimum query length.
func (g *Gate) MinLength() int {
	return g.minLength
}

// ResolveMode maps a host section index to a mode.
// Returns false for indices outside the section table.
func (g *Gate) ResolveMode(section int) (core.Mode, bool) {
	if section < 0 || section >= len(g.sections) {
		return 0, false
	}
	return g.sections[section], true
}
