package sink

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/poiesic/titlelens/core"
)

// GroupNamer resolves a group id to a display name. *groups.Table satisfies it.
type GroupNamer interface {
	Name(id core.GroupID) string
}

// Writer renders published rows to an io.Writer.
// Appended rows stay pending until FlushBatch; each flush prints the rows it
// published, grouped in group id order. Commit prints a completion line.
type Writer struct {
	mu        sync.Mutex
	out       io.Writer
	names     GroupNamer
	pending   []core.ResultRow
	published int
}

var _ Sink = (*Writer)(nil)

// NewWriter creates a Writer. names may be nil, in which case numeric group ids are printed.
func NewWriter(out io.Writer, names GroupNamer) *Writer {
	return &Writer{out: out, names: names}
}

func (w *Writer) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = w.pending[:0]
	w.published = 0
}

func (w *Writer) Append(row core.ResultRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, row)
}

func (w *Writer) FlushBatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return
	}

	batch := slices.Clone(w.pending)
	w.pending = w.pending[:0]
	slices.SortStableFunc(batch, func(a, b core.ResultRow) int {
		switch {
		case a.Group < b.Group:
			return -1
		case a.Group > b.Group:
			return 1
		}
		return 0
	})

	var current core.GroupID
	for i, row := range batch {
		if i == 0 || row.Group != current {
			current = row.Group
			fmt.Fprintf(w.out, "[%s]\n", w.groupName(row.Group))
		}
		if row.URI != "" {
			fmt.Fprintf(w.out, "  %s  <%s>\n", row.Title, row.URI)
		} else {
			fmt.Fprintf(w.out, "  %s  (%s)\n", row.Title, row.Comment)
		}
	}
	w.published += len(batch)
}

func (w *Writer) Commit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "-- %d rows --\n", w.published)
}

func (w *Writer) groupName(id core.GroupID) string {
	if w.names != nil {
		if name := w.names.Name(id); name != "" {
			return name
		}
	}
	return fmt.Sprintf("group %d", id)
}
