package cache

import (
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/poiesic/titlelens/core"
)

const defaultShards = 16

// DetailCache maps a record ID to the categories discovered when it was enriched.
type DetailCache interface {
	// Get returns the cached categories for id. The slice may be empty for a
	// record that was enriched and had no categories.
	Get(id core.ID) ([]string, bool)

	// Put stores categories for id. A second Put for the same id replaces the first.
	Put(id core.ID, categories []string)

	// Len returns the number of cached records.
	Len() int
}

type shard struct {
	mu      sync.RWMutex
	entries map[core.ID][]string
}

// Memory is an unbounded in-memory DetailCache.
type Memory struct {
	shards []*shard
}

var _ DetailCache = (*Memory)(nil)

// Option configures a Memory cache.
type Option func(*Memory)

// WithShards sets the shard count. Values below 1 are raised to 1.
func WithShards(n int) Option {
	return func(m *Memory) {
		if n < 1 {
			n = 1
		}
		m.shards = makeShards(n)
	}
}

// NewMemory creates an empty cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{shards: makeShards(defaultShards)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seeded creates a cache pre-populated with entries.
func Seeded(entries map[core.ID][]string, opts ...Option) *Memory {
	m := NewMemory(opts...)
	for id, categories := range entries {
		m.Put(id, categories)
	}
	return m
}

func makeShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: make(map[core.ID][]string)}
	}
	return shards
}

func (m *Memory) shardFor(id core.ID) *shard {
	return m.shards[xxhash.Sum64String(string(id))%uint64(len(m.shards))]
}

func (m *Memory) Get(id core.ID) ([]string, bool) {
	s := m.shardFor(id)
	s.mu.RLock()
	categories, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return slices.Clone(categories), true
}

func (m *Memory) Put(id core.ID, categories []string) {
	stored := slices.Clone(categories)
	if stored == nil {
		stored = []string{}
	}
	s := m.shardFor(id)
	s.mu.Lock()
	s.entries[id] = stored
	s.mu.Unlock()
}

func (m *Memory) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}
