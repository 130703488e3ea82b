package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/lookup"
)

const (
	// DefaultSearchLimit caps the number of records one Search returns.
	DefaultSearchLimit = 50

	// DefaultBatchSize is the number of entries Add writes per transaction.
	// Each entry costs two keys, well under badger's per-transaction limit.
	DefaultBatchSize = 1000
)

// Entry is one catalog title.
type Entry struct {
	Id     core.ID  `yaml:"id,omitempty" json:"id"`
	Title  string   `yaml:"title" json:"title"`
	Genres []string `yaml:"genres,omitempty" json:"genres"`
}

// Catalog is a BadgerDB-backed lookup.Service.
type Catalog struct {
	backend *backend
	seq     *badger.Sequence
	limit   int
	batch   int
	logger  *slog.Logger
}

var _ lookup.Service = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*Catalog) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithSearchLimit caps the number of records a Search returns.
func WithSearchLimit(limit int) Option {
	return func(c *Catalog) error {
		if limit < 1 {
			return fmt.Errorf("search limit must be at least 1, got %d", limit)
		}
		c.limit = limit
		return nil
	}
}

// WithBatchSize sets how many entries Add commits per transaction.
func WithBatchSize(n int) Option {
	return func(c *Catalog) error {
		if n < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", n)
		}
		c.batch = n
		return nil
	}
}

// Open opens the catalog stored in dir, creating it if needed.
// With inMemory set, dir is ignored and nothing touches disk.
func Open(dir string, inMemory bool, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		limit:  DefaultSearchLimit,
		batch:  DefaultBatchSize,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	b, err := openBackend(dir, inMemory, c.logger)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	seq, err := b.sequence(titleSeq)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("opening catalog sequence: %w", err)
	}
	c.backend = b
	c.seq = seq
	return c, nil
}

// Close releases the catalog.
func (c *Catalog) Close() error {
	if err := c.seq.Release(); err != nil {
		c.logger.Warn("error releasing catalog sequence", "err", err)
	}
	return c.backend.close()
}

// Add stores entries. Entries without an id get one derived from their title.
// Re-adding an existing id replaces its title and genres but keeps its position.
// Entries are committed in batches; if Add fails, earlier batches stay stored.
func (c *Catalog) Add(ctx context.Context, entries ...*Entry) error {
	for _, entry := range entries {
		if entry.Title == "" {
			return ErrEmptyTitle
		}
		if entry.Id == "" {
			entry.Id = core.IDFromContent(entry.Title)
		}
	}

	for batch := range slices.Chunk(entries, c.batch) {
		if err := c.addBatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) addBatch(ctx context.Context, entries []*Entry) error {
	return c.backend.withTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}

			key := makeTitleKey(entry.Id)
			existing, err := readEntry(tx, key)
			if err != nil {
				return err
			}

			var seq uint64
			if existing != nil {
				seq = existing.Seq
			} else {
				if seq, err = c.seq.Next(); err != nil {
					return err
				}
				if err := tx.Set(makeOrderKey(seq), []byte(entry.Id)); err != nil {
					return err
				}
			}

			stored := &storedEntry{
				Seq:    seq,
				Id:     entry.Id,
				Title:  entry.Title,
				Genres: slices.Clone(entry.Genres),
			}
			if err := tx.Set(key, marshalEntry(stored)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Get returns the entry for id, or lookup.ErrNotFound.
func (c *Catalog) Get(ctx context.Context, id core.ID) (*Entry, error) {
	var entry *Entry
	err := c.backend.withTx(func(tx *badger.Txn) error {
		stored, err := readEntry(tx, makeTitleKey(id))
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("%w: %s", lookup.ErrNotFound, id)
		}
		entry = stored.entry()
		return nil
	}, false)
	return entry, err
}

// Len returns the number of titles in the catalog.
func (c *Catalog) Len(ctx context.Context) (int, error) {
	count := 0
	err := c.backend.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(orderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Search returns titles matching query in insertion order, up to the search limit.
func (c *Catalog) Search(ctx context.Context, query string) ([]*core.Record, error) {
	words := queryWords(query)
	records := make([]*core.Record, 0)
	if len(words) == 0 {
		return records, nil
	}

	err := c.backend.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(orderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(records) < c.limit; iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				id = core.ID(val)
				return nil
			})
			if err != nil {
				return err
			}

			stored, err := readEntry(tx, makeTitleKey(id))
			if err != nil {
				return err
			}
			if stored == nil {
				c.logger.Warn("order index points at missing title", "id", id)
				continue
			}
			if matches(stored.Title, words) {
				records = append(records, &core.Record{Id: stored.Id, Title: stored.Title})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("catalog search", "query", query, "count", len(records))
	return records, nil
}

// Enrich returns the genres stored for record.
func (c *Catalog) Enrich(ctx context.Context, record *core.Record) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := c.Get(ctx, record.Id)
	if err != nil {
		return nil, err
	}
	return entry.Genres, nil
}

func readEntry(tx *badger.Txn, key []byte) (*storedEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var stored *storedEntry
	err = item.Value(func(val []byte) error {
		stored, err = unmarshalEntry(val)
		return err
	})
	return stored, err
}

func (s *storedEntry) entry() *Entry {
	return &Entry{Id: s.Id, Title: s.Title, Genres: s.Genres}
}
