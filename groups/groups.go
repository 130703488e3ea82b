package groups

import (
	"github.com/poiesic/titlelens/core"
)

// DefaultGenres is the genre list used when no configuration overrides it.
var DefaultGenres = []string{
	"Action", "Adventure", "Animation", "Biography", "Comedy", "Crime",
	"Documentary", "Drama", "Family", "Fantasy", "Film-Noir", "Game-Show",
	"History", "Horror", "Music", "Musical", "Mystery", "News", "Reality-TV",
	"Romance", "Sci-Fi", "Sport", "Talk-Show", "Thriller", "War", "Western",
}

// Renderer tells the sink how to draw a group.
type Renderer int

const (
	// RendererTile draws rows as horizontal tiles.
	RendererTile Renderer = iota
	// RendererEmptySearch draws the "nothing matched" placeholder.
	RendererEmptySearch
)

func (r Renderer) String() string {
	if r == RendererEmptySearch {
		return "empty-search"
	}
	return "tile"
}

// Declaration describes one group as the sink should display it.
type Declaration struct {
	ID       core.GroupID
	Name     string
	Renderer Renderer
	Icon     string
}

// Section describes one host section. Its index is the core.Mode it selects.
type Section struct {
	Mode core.Mode
	Name string
	Icon string
}

// Table is the immutable label -> group mapping.
type Table struct {
	labels []string
	index  map[string]core.GroupID
}

// New builds a Table from labels in display order.
// Duplicate labels keep their first position. Returns ErrNoLabels if labels is empty.
func New(labels ...string) (*Table, error) {
	t := &Table{
		labels: make([]string, 0, len(labels)),
		index:  make(map[string]core.GroupID, len(labels)),
	}
	for _, label := range labels {
		if label == "" {
			return nil, ErrEmptyLabel
		}
		if _, seen := t.index[label]; seen {
			continue
		}
		t.index[label] = core.GroupID(len(t.labels))
		t.labels = append(t.labels, label)
	}
	if len(t.labels) == 0 {
		return nil, ErrNoLabels
	}
	return t, nil
}

// Default returns a Table over DefaultGenres.
func Default() *Table {
	t, err := New(DefaultGenres...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty is the group for the "no results" row.
func (t *Table) Empty() core.GroupID {
	return core.GroupID(len(t.labels))
}

// NameOnly is the group for rows emitted in name-only mode.
func (t *Table) NameOnly() core.GroupID {
	return core.GroupID(len(t.labels) + 1)
}

// Other is the group for labels missing from the table.
func (t *Table) Other() core.GroupID {
	return core.GroupID(len(t.labels) + 2)
}

// Lookup returns the group for a single label.
func (t *Table) Lookup(label string) (core.GroupID, bool) {
	id, ok := t.index[label]
	return id, ok
}

// Classify returns one group per label, in input order. Unknown labels map to Other.
// Callers skip records with no categories rather than classifying them.
func (t *Table) Classify(categories []string) []core.GroupID {
	out := make([]core.GroupID, len(categories))
	for i, label := range categories {
		if id, ok := t.index[label]; ok {
			out[i] = id
		} else {
			out[i] = t.Other()
		}
	}
	return out
}

// Labels returns a copy of the label list in display order.
func (t *Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Name returns the display name of a group, or "" if the id is out of range.
func (t *Table) Name(id core.GroupID) string {
	decls := t.Declarations()
	if int(id) >= len(decls) {
		return ""
	}
	return decls[id].Name
}

// Declarations returns every group in display order: labels first, then the sentinels.
func (t *Table) Declarations() []Declaration {
	const icon = "sound"
	decls := make([]Declaration, 0, len(t.labels)+3)
	for i, label := range t.labels {
		decls = append(decls, Declaration{ID: core.GroupID(i), Name: label, Renderer: RendererTile, Icon: icon})
	}
	decls = append(decls,
		Declaration{ID: t.Empty(), Name: "No results found from IMDB", Renderer: RendererEmptySearch, Icon: icon},
		Declaration{ID: t.NameOnly(), Name: "Movie Names", Renderer: RendererTile, Icon: icon},
		Declaration{ID: t.Other(), Name: "Other", Renderer: RendererTile, Icon: icon},
	)
	return decls
}

// Sections returns the host sections in index order.
func Sections() []Section {
	return []Section{
		{Mode: core.ModeNameOnly, Name: "Movie Names", Icon: "video"},
		{Mode: core.ModeGenreInfo, Name: "Movie Genre", Icon: "video"},
	}
}
