package mock

import (
	"context"
	"sync"

	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/lookup"
)

// Title is a canned search hit.
type Title struct {
	Id     core.ID
	Title  string
	Genres []string
}

// MockService is an in-memory lookup.Service.
type MockService struct {
	// SearchFunc overrides the canned search results when set.
	SearchFunc func(ctx context.Context, query string) ([]*core.Record, error)

	// EnrichFunc overrides the canned genres when set.
	EnrichFunc func(ctx context.Context, record *core.Record) ([]string, error)

	mu          sync.Mutex
	results     map[string][]Title
	genres      map[core.ID][]string
	searchCalls int
	enrichCalls map[core.ID]int
}

var _ lookup.Service = (*MockService)(nil)

func NewMockService() *MockService {
	return &MockService{
		results:     make(map[string][]Title),
		genres:      make(map[core.ID][]string),
		enrichCalls: make(map[core.ID]int),
	}
}

// AddResults registers the titles returned for query, in rank order.
// Each title's genres become the Enrich answer for its id.
func (m *MockService) AddResults(query string, titles ...Title) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[query] = append(m.results[query], titles...)
	for _, t := range titles {
		m.genres[t.Id] = append([]string(nil), t.Genres...)
	}
	return m
}

func (m *MockService) Search(ctx context.Context, query string) ([]*core.Record, error) {
	m.mu.Lock()
	m.searchCalls++
	fn := m.SearchFunc
	titles := m.results[query]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]*core.Record, len(titles))
	for i, t := range titles {
		records[i] = &core.Record{Id: t.Id, Title: t.Title}
	}
	return records, nil
}

func (m *MockService) Enrich(ctx context.Context, record *core.Record) ([]string, error) {
	m.mu.Lock()
	m.enrichCalls[record.Id]++
	fn := m.EnrichFunc
	genres := m.genres[record.Id]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, record)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), genres...), nil
}

// SearchCount returns the number of Search calls.
func (m *MockService) SearchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// EnrichCount returns the number of Enrich calls for id.
func (m *MockService) EnrichCount(id core.ID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enrichCalls[id]
}

// TotalEnrichCount returns the number of Enrich calls across all ids.
func (m *MockService) TotalEnrichCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.enrichCalls {
		total += n
	}
	return total
}

// Reset clears call counters and overrides, keeping canned data.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = 0
	m.enrichCalls = make(map[core.ID]int)
	m.SearchFunc = nil
	m.EnrichFunc = nil
}
