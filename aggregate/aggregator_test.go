package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/poiesic/titlelens/cache"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/gate"
	"github.com/poiesic/titlelens/groups"
	"github.com/poiesic/titlelens/lookup/mock"
	"github.com/poiesic/titlelens/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T, svc *mock.MockService, opts ...Option) (*Aggregator, *cache.Memory) {
	t.Helper()
	detailCache := cache.NewMemory()
	agg, err := NewAggregator(svc, detailCache, groups.Default(), opts...)
	require.NoError(t, err)
	return agg, detailCache
}

func batmanService() *mock.MockService {
	return mock.NewMockService().AddResults("batman",
		mock.Title{Id: "0000001", Title: "Batman", Genres: []string{"Action"}},
		mock.Title{Id: "0000002", Title: "Batman Returns", Genres: []string{"Action", "Adventure"}},
		mock.Title{Id: "0000003", Title: "Batman Forever", Genres: nil},
		mock.Title{Id: "0000004", Title: "Batman & Robin", Genres: []string{"Action"}},
		mock.Title{Id: "0000005", Title: "Batman Begins", Genres: []string{"Action", "Adventure"}},
		mock.Title{Id: "0000006", Title: "Batman: The Movie", Genres: []string{}},
		mock.Title{Id: "0000007", Title: "Batman Beyond", Genres: []string{"Action"}},
	)
}

func TestNewAggregator(t *testing.T) {
	svc := mock.NewMockService()
	detailCache := cache.NewMemory()
	table := groups.Default()

	t.Run("valid configuration", func(t *testing.T) {
		agg, err := NewAggregator(svc, detailCache, table)
		require.NoError(t, err)
		assert.NotNil(t, agg)
		assert.Equal(t, table, agg.Groups())
		assert.Equal(t, gate.DefaultMinQueryLength, agg.Gate().MinLength())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		agg, err := NewAggregator(svc, detailCache, table, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, agg)
	})

	t.Run("with custom gate", func(t *testing.T) {
		agg, err := NewAggregator(svc, detailCache, table, WithGate(gate.New(gate.WithMinLength(2))))
		require.NoError(t, err)
		assert.Equal(t, 2, agg.Gate().MinLength())
	})

	t.Run("invalid flush interval", func(t *testing.T) {
		_, err := NewAggregator(svc, detailCache, table, WithFlushEvery(0))
		assert.Error(t, err)
	})

	t.Run("nil lookup", func(t *testing.T) {
		_, err := NewAggregator(nil, detailCache, table)
		assert.Equal(t, ErrLookupRequired, err)
	})

	t.Run("nil cache", func(t *testing.T) {
		_, err := NewAggregator(svc, nil, table)
		assert.Equal(t, ErrCacheRequired, err)
	})

	t.Run("nil groups", func(t *testing.T) {
		_, err := NewAggregator(svc, detailCache, nil)
		assert.Equal(t, ErrGroupsRequired, err)
	})

	t.Run("nil sink", func(t *testing.T) {
		agg, err := NewAggregator(svc, detailCache, table)
		require.NoError(t, err)
		_, err = agg.Run(context.Background(), "batman", core.ModeNameOnly, nil)
		assert.Equal(t, ErrSinkRequired, err)
	})
}

func TestRun_GateRejects(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc)

	for _, query := range []string{"", "b", "bat", "äöü"} {
		t.Run(query, func(t *testing.T) {
			rec := sink.NewRecorder()
			outcome, err := agg.Run(context.Background(), query, core.ModeGenreInfo, rec)
			require.NoError(t, err)
			assert.True(t, outcome.Skipped)
			assert.Empty(t, rec.Ops())
		})
	}
	assert.Zero(t, svc.SearchCount())
	assert.Zero(t, svc.TotalEnrichCount())
}

func TestRun_EmptyResults(t *testing.T) {
	svc := mock.NewMockService()
	agg, _ := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	outcome, err := agg.Run(context.Background(), "nothing here", core.ModeGenreInfo, rec)
	require.NoError(t, err)

	rows := rec.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, core.ResultRow{
		URI:      "",
		IconHint: DefaultIconHint,
		Group:    agg.Groups().Empty(),
		MimeType: DefaultMimeType,
		Title:    "Your search did not match anything.",
		Comment:  "No results found",
	}, rows[0])
	assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpAppend, sink.OpFlush, sink.OpCommit}, rec.Kinds())
	assert.Equal(t, 0, outcome.Records)
	assert.True(t, outcome.Committed)
	assert.Zero(t, svc.TotalEnrichCount())
}

func TestRun_NameOnly(t *testing.T) {
	svc := batmanService()
	agg, detailCache := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	outcome, err := agg.Run(context.Background(), "batman", core.ModeNameOnly, rec)
	require.NoError(t, err)

	rows := rec.Rows()
	require.Len(t, rows, 7)
	for _, row := range rows {
		assert.Equal(t, agg.Groups().NameOnly(), row.Group)
		assert.Equal(t, "video", row.IconHint)
		assert.Equal(t, "text/html", row.MimeType)
	}
	assert.Equal(t, "http://www.imdb.com/title/tt0000001", rows[0].URI)
	assert.Equal(t, "Batman", rows[0].Title)
	assert.Equal(t, "See details of 'Batman' in IMDB", rows[0].Comment)
	assert.Equal(t, "Batman Beyond", rows[6].Title)

	assert.Zero(t, svc.TotalEnrichCount())
	assert.Zero(t, detailCache.Len())
	assert.Equal(t, 7, outcome.Processed)
	assert.Equal(t, 7, outcome.Rows)
	// reset, boundary at 5, trailing
	assert.Equal(t, 3, rec.Count(sink.OpFlush))
	assert.Equal(t, 1, rec.Count(sink.OpCommit))
}

func TestRun_GenreInfoBatman(t *testing.T) {
	svc := batmanService()
	agg, detailCache := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	outcome, err := agg.Run(context.Background(), "batman", core.ModeGenreInfo, rec)
	require.NoError(t, err)

	table := agg.Groups()
	action, _ := table.Lookup("Action")
	adventure, _ := table.Lookup("Adventure")

	rows := rec.Rows()
	require.Len(t, rows, 7)

	var actionRows, adventureRows int
	for _, row := range rows {
		switch row.Group {
		case action:
			actionRows++
		case adventure:
			adventureRows++
		default:
			t.Fatalf("unexpected group %d", row.Group)
		}
	}
	assert.Equal(t, 5, actionRows)
	assert.Equal(t, 2, adventureRows)

	assert.Equal(t, []sink.OpKind{
		sink.OpClear, sink.OpFlush,
		sink.OpAppend,
		sink.OpAppend, sink.OpAppend,
		sink.OpAppend,
		sink.OpAppend, sink.OpAppend,
		// fifth classified record closes the first batch
		sink.OpAppend, sink.OpFlush,
		sink.OpFlush, sink.OpCommit,
	}, rec.Kinds())

	assert.Equal(t, 7, outcome.Records)
	assert.Equal(t, 5, outcome.Processed)
	assert.Equal(t, 2, outcome.Dropped)
	assert.Equal(t, 7, outcome.Rows)
	assert.Equal(t, 3, outcome.Flushes)
	assert.Equal(t, 7, outcome.Enrichments)
	assert.Zero(t, outcome.CacheHits)

	// Empty genre lists are cached too.
	assert.Equal(t, 7, detailCache.Len())
	cached, ok := detailCache.Get("0000003")
	require.True(t, ok)
	assert.Empty(t, cached)
}

func TestRun_MultiGenreRowsShareIdentity(t *testing.T) {
	svc := mock.NewMockService().AddResults("heat",
		mock.Title{Id: "0113277", Title: "Heat", Genres: []string{"Crime", "Drama", "Thriller", "Cyberpunk"}},
	)
	agg, _ := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	_, err := agg.Run(context.Background(), "heat", core.ModeGenreInfo, rec)
	require.NoError(t, err)

	rows := rec.Rows()
	require.Len(t, rows, 4)

	table := agg.Groups()
	crime, _ := table.Lookup("Crime")
	drama, _ := table.Lookup("Drama")
	thriller, _ := table.Lookup("Thriller")
	assert.Equal(t, []core.GroupID{crime, drama, thriller, table.Other()},
		[]core.GroupID{rows[0].Group, rows[1].Group, rows[2].Group, rows[3].Group})

	for _, row := range rows[1:] {
		assert.Equal(t, rows[0].URI, row.URI)
		assert.Equal(t, rows[0].Title, row.Title)
		assert.Equal(t, rows[0].Comment, row.Comment)
	}
}

func TestRun_EnrichOncePerID(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc)

	first := sink.NewRecorder()
	_, err := agg.Run(context.Background(), "batman", core.ModeGenreInfo, first)
	require.NoError(t, err)

	second := sink.NewRecorder()
	outcome, err := agg.Run(context.Background(), "batman", core.ModeGenreInfo, second)
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		id := core.ID("000000" + string(rune('0'+i)))
		assert.Equal(t, 1, svc.EnrichCount(id), "id %s", id)
	}
	assert.Equal(t, first.Ops(), second.Ops())
	assert.Equal(t, 7, outcome.CacheHits)
	assert.Zero(t, outcome.Enrichments)
}

func TestRun_PreSeededCache(t *testing.T) {
	svc := batmanService()
	seeded := cache.Seeded(map[core.ID][]string{
		"0000001": {"Comedy"},
	})
	agg, err := NewAggregator(svc, seeded, groups.Default())
	require.NoError(t, err)

	rec := sink.NewRecorder()
	_, err = agg.Run(context.Background(), "batman", core.ModeGenreInfo, rec)
	require.NoError(t, err)

	comedy, _ := agg.Groups().Lookup("Comedy")
	assert.Equal(t, comedy, rec.Rows()[0].Group)
	assert.Zero(t, svc.EnrichCount("0000001"))
}

func TestRun_UnknownModeIsNoop(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	outcome, err := agg.Run(context.Background(), "batman", core.Mode(7), rec)
	require.NoError(t, err)
	assert.Empty(t, rec.Rows())
	assert.Zero(t, outcome.Processed)
	assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpFlush, sink.OpCommit}, rec.Kinds())
}

func TestRun_CustomRowFormat(t *testing.T) {
	svc := mock.NewMockService().AddResults("alien",
		mock.Title{Id: "0078748", Title: "Alien", Genres: []string{"Horror"}},
	)
	agg, _ := newTestAggregator(t, svc,
		WithURIBase("https://example.test/t/"),
		WithIconHint("film"),
		WithMimeType("text/plain"),
		WithCommentFormat("Open %s"),
		WithLogger(slog.Default()),
	)
	rec := sink.NewRecorder()

	_, err := agg.Run(context.Background(), "alien", core.ModeNameOnly, rec)
	require.NoError(t, err)

	row := rec.Rows()[0]
	assert.Equal(t, "https://example.test/t/0078748", row.URI)
	assert.Equal(t, "film", row.IconHint)
	assert.Equal(t, "text/plain", row.MimeType)
	assert.Equal(t, "Open Alien", row.Comment)
}

func TestRun_FlushEvery(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc, WithFlushEvery(2))
	rec := sink.NewRecorder()

	outcome, err := agg.Run(context.Background(), "batman", core.ModeNameOnly, rec)
	require.NoError(t, err)
	// reset, after records 2, 4 and 6, trailing
	assert.Equal(t, 5, outcome.Flushes)
	assert.Equal(t, 5, rec.Count(sink.OpFlush))
}

func TestRun_SearchFailure(t *testing.T) {
	upstream := errors.New("connection refused")
	svc := mock.NewMockService()
	svc.SearchFunc = func(ctx context.Context, query string) ([]*core.Record, error) {
		return nil, upstream
	}
	agg, _ := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	outcome, err := agg.Run(context.Background(), "batman", core.ModeGenreInfo, rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrLookupFailure)
	assert.ErrorIs(t, err, upstream)
	assert.True(t, outcome.Committed)
	assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpFlush, sink.OpCommit}, rec.Kinds())
}

func TestRun_EnrichFailure(t *testing.T) {
	upstream := errors.New("rate limited")
	svc := batmanService()
	svc.EnrichFunc = func(ctx context.Context, record *core.Record) ([]string, error) {
		if record.Id == "0000002" {
			return nil, upstream
		}
		return []string{"Action"}, nil
	}
	agg, detailCache := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	_, err := agg.Run(context.Background(), "batman", core.ModeGenreInfo, rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEnrichmentFailure)
	assert.ErrorIs(t, err, upstream)

	// The first record's row was published before the failure.
	assert.Len(t, rec.Rows(), 1)
	assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpAppend, sink.OpFlush, sink.OpCommit}, rec.Kinds())

	_, ok := detailCache.Get("0000002")
	assert.False(t, ok, "failed enrichment must not be cached")
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Run(ctx, "batman", core.ModeGenreInfo, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Ops())
	assert.Zero(t, svc.SearchCount())
}

func TestRun_CanceledMidRun(t *testing.T) {
	svc := batmanService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.EnrichFunc = func(_ context.Context, record *core.Record) ([]string, error) {
		if record.Id == "0000002" {
			cancel()
			return nil, context.Canceled
		}
		return []string{"Action"}, nil
	}
	agg, _ := newTestAggregator(t, svc)
	rec := sink.NewRecorder()

	_, err := agg.Run(ctx, "batman", core.ModeGenreInfo, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, core.ErrEnrichmentFailure)

	// Nothing after the first record's row: no flush, no commit.
	assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpAppend}, rec.Kinds())
}

// cancelingSink cancels its run on the nth Append.
type cancelingSink struct {
	*sink.Recorder
	cancel  context.CancelFunc
	after   int
	appends int
}

func (s *cancelingSink) Append(row core.ResultRow) {
	s.Recorder.Append(row)
	s.appends++
	if s.appends == s.after {
		s.cancel()
	}
}

func TestRun_CanceledBySinkStopsWriting(t *testing.T) {
	t.Run("name only before the flush boundary", func(t *testing.T) {
		agg, _ := newTestAggregator(t, batmanService())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := &cancelingSink{Recorder: sink.NewRecorder(), cancel: cancel, after: 5}

		outcome, err := agg.Run(ctx, "batman", core.ModeNameOnly, out)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, outcome.Committed)
		assert.Equal(t, []sink.OpKind{
			sink.OpClear, sink.OpFlush,
			sink.OpAppend, sink.OpAppend, sink.OpAppend, sink.OpAppend, sink.OpAppend,
		}, out.Kinds())
	})

	t.Run("genre info between rows of one record", func(t *testing.T) {
		agg, _ := newTestAggregator(t, batmanService())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := &cancelingSink{Recorder: sink.NewRecorder(), cancel: cancel, after: 2}

		outcome, err := agg.Run(ctx, "batman", core.ModeGenreInfo, out)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, core.ErrEnrichmentFailure)
		assert.False(t, outcome.Committed)
		// "Batman Returns" has two genres; only the first row got out.
		assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpAppend, sink.OpAppend}, out.Kinds())
	})

	t.Run("empty result row", func(t *testing.T) {
		agg, _ := newTestAggregator(t, mock.NewMockService())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := &cancelingSink{Recorder: sink.NewRecorder(), cancel: cancel, after: 1}

		_, err := agg.Run(ctx, "nothing here", core.ModeNameOnly, out)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []sink.OpKind{sink.OpClear, sink.OpFlush, sink.OpAppend}, out.Kinds())
	})
}

func TestRun_BlankTitleStillEmitsRow(t *testing.T) {
	svc := mock.NewMockService().AddResults("heat",
		mock.Title{Id: "0113277", Title: "Heat", Genres: []string{"Crime"}},
		mock.Title{Id: "0000002", Title: "", Genres: []string{"Drama"}},
		mock.Title{Id: "", Title: "Heat Wave"},
	)
	agg, _ := newTestAggregator(t, svc)

	rec := sink.NewRecorder()
	outcome, err := agg.Run(context.Background(), "heat", core.ModeNameOnly, rec)
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Records)
	assert.Equal(t, 1, outcome.Dropped)
	require.Len(t, rec.Rows(), 2)
	assert.Equal(t, "", rec.Rows()[1].Title)
	assert.Equal(t, "http://www.imdb.com/title/tt0000002", rec.Rows()[1].URI)

	rec = sink.NewRecorder()
	_, err = agg.Run(context.Background(), "heat", core.ModeGenreInfo, rec)
	require.NoError(t, err)
	require.Len(t, rec.Rows(), 2)
	drama, _ := agg.Groups().Lookup("Drama")
	assert.Equal(t, drama, rec.Rows()[1].Group)
}

func TestRun_ConcurrentRunsShareEnrichment(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := sink.NewRecorder()
			_, err := agg.Run(context.Background(), "batman", core.ModeGenreInfo, rec)
			assert.NoError(t, err)
			assert.Len(t, rec.Rows(), 7)
		}()
	}
	wg.Wait()

	assert.Equal(t, 7, svc.TotalEnrichCount())
}

type countingMonitor struct {
	starts, lookups, hits, misses int
	skipped, emitted, flushed      int
	finished                       int
	last                           *Outcome
}

func (m *countingMonitor) Start(_ string, _ core.Mode)                  { m.starts++ }
func (m *countingMonitor) AfterLookup(_ []*core.Record)                 { m.lookups++ }
func (m *countingMonitor) CacheHit(_ *core.Record)                      { m.hits++ }
func (m *countingMonitor) CacheMiss(_ *core.Record)                     { m.misses++ }
func (m *countingMonitor) RecordSkipped(_ *core.Record)                 { m.skipped++ }
func (m *countingMonitor) RowsEmitted(_ *core.Record, _ []core.GroupID) { m.emitted++ }
func (m *countingMonitor) Flushed(_ int)                                { m.flushed++ }
func (m *countingMonitor) Finish(o *Outcome) {
	m.finished++
	m.last = o
}

func TestRunWithMonitor(t *testing.T) {
	svc := batmanService()
	agg, _ := newTestAggregator(t, svc)
	monitor := &countingMonitor{}

	outcome, err := agg.RunWithMonitor(context.Background(), "batman", core.ModeGenreInfo, sink.NewRecorder(), monitor)
	require.NoError(t, err)

	assert.Equal(t, 1, monitor.starts)
	assert.Equal(t, 1, monitor.lookups)
	assert.Equal(t, 0, monitor.hits)
	assert.Equal(t, 7, monitor.misses)
	assert.Equal(t, 2, monitor.skipped)
	assert.Equal(t, 5, monitor.emitted)
	assert.Equal(t, 1, monitor.flushed)
	assert.Equal(t, 1, monitor.finished)
	assert.Same(t, outcome, monitor.last)
}
