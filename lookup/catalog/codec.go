package catalog

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/titlelens/core"
)

// storedEntry is the on-disk form of an Entry.
type storedEntry struct {
	Seq    uint64
	Id     core.ID
	Title  string
	Genres []string
}

func entrySize(e *storedEntry) int {
	size := varint.Uint64.Size(e.Seq)
	size += ord.String.Size(string(e.Id))
	size += ord.String.Size(e.Title)
	size += varint.PositiveInt.Size(len(e.Genres))
	for _, g := range e.Genres {
		size += ord.String.Size(g)
	}
	return size
}

func marshalEntry(e *storedEntry) []byte {
	buf := make([]byte, entrySize(e))
	n := varint.Uint64.Marshal(e.Seq, buf)
	n += ord.String.Marshal(string(e.Id), buf[n:])
	n += ord.String.Marshal(e.Title, buf[n:])
	n += varint.PositiveInt.Marshal(len(e.Genres), buf[n:])
	for _, g := range e.Genres {
		n += ord.String.Marshal(g, buf[n:])
	}
	return buf
}

func unmarshalEntry(data []byte) (*storedEntry, error) {
	var (
		e   storedEntry
		n   int
		m   int
		err error
		id  string
	)
	if e.Seq, m, err = varint.Uint64.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: seq: %w", ErrCorruptEntry, err)
	}
	n += m
	if id, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrCorruptEntry, err)
	}
	e.Id = core.ID(id)
	n += m
	if e.Title, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: title: %w", ErrCorruptEntry, err)
	}
	n += m
	count, m, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: genre count: %w", ErrCorruptEntry, err)
	}
	n += m
	e.Genres = make([]string, count)
	for i := range e.Genres {
		if e.Genres[i], m, err = ord.String.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: genre %d: %w", ErrCorruptEntry, i, err)
		}
		n += m
	}
	return &e, nil
}
