package mock

import (
	"context"
	"sync"

	"github.com/poiesic/titlelens/ai"
)

// MockGenreTagger is a GenreTagger with canned answers.
type MockGenreTagger struct {
	// Genres maps a title to the genres returned for it. Unknown titles get an empty slice.
	Genres map[string][]string

	// TagGenresFunc overrides Genres when set.
	TagGenresFunc func(ctx context.Context, title string) ([]string, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.GenreTagger = (*MockGenreTagger)(nil)

func NewMockGenreTagger() *MockGenreTagger {
	return &MockGenreTagger{Genres: make(map[string][]string)}
}

func (m *MockGenreTagger) TagGenres(ctx context.Context, title string) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.TagGenresFunc != nil {
		return m.TagGenresFunc(ctx, title)
	}
	genres, ok := m.Genres[title]
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), genres...), nil
}

func (m *MockGenreTagger) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func (m *MockGenreTagger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.TagGenresFunc = nil
}
