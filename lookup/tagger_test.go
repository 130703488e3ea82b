package lookup_test

import (
	"context"
	"errors"
	"testing"

	aimock "github.com/poiesic/titlelens/ai/mock"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/lookup"
	"github.com/poiesic/titlelens/lookup/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTagger(t *testing.T) {
	ctx := context.Background()

	svc := mock.NewMockService().AddResults("alien",
		mock.Title{Id: "0078748", Title: "Alien (1979)"},
		mock.Title{Id: "0090605", Title: "Aliens (1986)", Genres: []string{"Action"}},
	)
	tagger := aimock.NewMockGenreTagger()
	tagger.Genres["Alien (1979)"] = []string{"Horror", "Sci-Fi"}

	wrapped, err := lookup.WithTagger(svc, tagger, nil)
	require.NoError(t, err)

	t.Run("search passes through", func(t *testing.T) {
		records, err := wrapped.Search(ctx, "alien")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("tagger fills missing genres", func(t *testing.T) {
		genres, err := wrapped.Enrich(ctx, &core.Record{Id: "0078748", Title: "Alien (1979)"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Horror", "Sci-Fi"}, genres)
		assert.Equal(t, 1, tagger.CallCount())
	})

	t.Run("upstream genres win", func(t *testing.T) {
		tagger.Reset()
		genres, err := wrapped.Enrich(ctx, &core.Record{Id: "0090605", Title: "Aliens (1986)"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Action"}, genres)
		assert.Equal(t, 0, tagger.CallCount())
	})

	t.Run("tagger error keeps empty upstream answer", func(t *testing.T) {
		tagger.TagGenresFunc = func(context.Context, string) ([]string, error) {
			return nil, errors.New("model offline")
		}
		defer tagger.Reset()

		genres, err := wrapped.Enrich(ctx, &core.Record{Id: "0078748", Title: "Alien (1979)"})
		require.NoError(t, err)
		assert.Empty(t, genres)
	})

	t.Run("upstream error is returned without tagging", func(t *testing.T) {
		tagger.Reset()
		svc.EnrichFunc = func(context.Context, *core.Record) ([]string, error) {
			return nil, errors.New("upstream down")
		}
		defer func() { svc.EnrichFunc = nil }()

		_, err := wrapped.Enrich(ctx, &core.Record{Id: "0078748", Title: "Alien (1979)"})
		assert.EqualError(t, err, "upstream down")
		assert.Equal(t, 0, tagger.CallCount())
	})
}

func TestWithTagger_RequiredArgs(t *testing.T) {
	_, err := lookup.WithTagger(nil, aimock.NewMockGenreTagger(), nil)
	assert.ErrorIs(t, err, lookup.ErrServiceRequired)

	_, err = lookup.WithTagger(mock.NewMockService(), nil, nil)
	assert.ErrorIs(t, err, lookup.ErrTaggerRequired)
}
