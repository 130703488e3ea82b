package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/titlelens/cache"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/gate"
	"github.com/poiesic/titlelens/groups"
	"github.com/poiesic/titlelens/lookup"
	"github.com/poiesic/titlelens/sink"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultFlushEvery is the number of processed records between flushes.
	DefaultFlushEvery = 5

	// DefaultURIBase is prefixed to a record ID to build its row URI.
	DefaultURIBase = "http://www.imdb.com/title/tt"

	// DefaultIconHint is the icon every row carries.
	DefaultIconHint = "video"

	// DefaultMimeType is the MIME type every row carries.
	DefaultMimeType = "text/html"

	// DefaultCommentFormat renders a row comment from the record title.
	DefaultCommentFormat = "See details of '%s' in IMDB"

	// EmptyTitle and EmptyComment fill the single row of a search with no hits.
	EmptyTitle   = "Your search did not match anything."
	EmptyComment = "No results found"
)

// Aggregator runs queries against a lookup service and streams rows to sinks.
// It is safe to run concurrently against different sinks; runs against one
// sink must be serialized by the caller.
type Aggregator struct {
	lookup        lookup.Service
	cache         cache.DetailCache
	table         *groups.Table
	gate          *gate.Gate
	flushEvery    int
	uriBase       string
	iconHint      string
	mimeType      string
	commentFormat string
	inflight      singleflight.Group
	logger        *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// WithGate replaces the default query gate.
func WithGate(g *gate.Gate) Option {
	return func(a *Aggregator) error {
		if g != nil {
			a.gate = g
		}
		return nil
	}
}

// WithFlushEvery sets how many processed records trigger a flush.
func WithFlushEvery(n int) Option {
	return func(a *Aggregator) error {
		if n < 1 {
			return fmt.Errorf("flush interval must be at least 1, got %d", n)
		}
		a.flushEvery = n
		return nil
	}
}

// WithURIBase sets the prefix joined with a record ID to form its URI.
func WithURIBase(base string) Option {
	return func(a *Aggregator) error {
		a.uriBase = base
		return nil
	}
}

// WithIconHint sets the icon hint carried by every row.
func WithIconHint(icon string) Option {
	return func(a *Aggregator) error {
		a.iconHint = icon
		return nil
	}
}

// WithMimeType sets the MIME type carried by every row.
func WithMimeType(mimeType string) Option {
	return func(a *Aggregator) error {
		a.mimeType = mimeType
		return nil
	}
}

// WithCommentFormat sets the fmt format used to build row comments. It receives the title.
func WithCommentFormat(format string) Option {
	return func(a *Aggregator) error {
		a.commentFormat = format
		return nil
	}
}

// NewAggregator creates an Aggregator. The cache is owned by the aggregator
// for its lifetime; pass a pre-seeded cache to start warm.
func NewAggregator(
	svc lookup.Service,
	detailCache cache.DetailCache,
	table *groups.Table,
	opts ...Option,
) (*Aggregator, error) {
	if svc == nil {
		return nil, ErrLookupRequired
	}
	if detailCache == nil {
		return nil, ErrCacheRequired
	}
	if table == nil {
		return nil, ErrGroupsRequired
	}

	a := &Aggregator{
		lookup:        svc,
		cache:         detailCache,
		table:         table,
		gate:          gate.New(),
		flushEvery:    DefaultFlushEvery,
		uriBase:       DefaultURIBase,
		iconHint:      DefaultIconHint,
		mimeType:      DefaultMimeType,
		commentFormat: DefaultCommentFormat,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Groups returns the group table rows are classified against.
func (a *Aggregator) Groups() *groups.Table {
	return a.table
}

// Gate returns the query gate.
func (a *Aggregator) Gate() *gate.Gate {
	return a.gate
}

// Run executes query in mode and streams rows to out.
func (a *Aggregator) Run(ctx context.Context, query string, mode core.Mode, out sink.Sink) (*Outcome, error) {
	return a.RunWithMonitor(ctx, query, mode, out, nil)
}

// RunWithMonitor executes query in mode, streaming rows to out and reporting
// each stage to monitor.
func (a *Aggregator) RunWithMonitor(ctx context.Context, query string, mode core.Mode, out sink.Sink, monitor Monitor) (*Outcome, error) {
	if out == nil {
		return nil, ErrSinkRequired
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	outcome := &Outcome{Query: query, Mode: mode}
	if !a.gate.Allow(query) {
		a.logger.Debug("not searching, query below minimum length", "query", query, "minLength", a.gate.MinLength())
		outcome.Skipped = true
		return outcome, nil
	}
	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	monitor.Start(query, mode)
	r := &run{Aggregator: a, ctx: ctx, out: out, monitor: monitor, outcome: outcome}

	out.Clear()
	if err := r.flush(); err != nil {
		return outcome, err
	}

	a.logger.Debug("searching", "query", query, "mode", mode)
	records, err := a.lookup.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		a.logger.Error("error searching for titles", "query", query, "err", err)
		if ferr := r.finish(); ferr != nil {
			return outcome, ferr
		}
		return outcome, fmt.Errorf("%w: search %q: %w", core.ErrLookupFailure, query, err)
	}
	outcome.Records = len(records)
	monitor.AfterLookup(records)

	if len(records) == 0 {
		err := r.append(core.ResultRow{
			URI:      "",
			IconHint: a.iconHint,
			Group:    a.table.Empty(),
			MimeType: a.mimeType,
			Title:    EmptyTitle,
			Comment:  EmptyComment,
		})
		if err != nil {
			return outcome, err
		}
		return outcome, r.finish()
	}

	a.logger.Debug("found titles", "query", query, "count", len(records))

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}

		counted, err := r.process(record, mode)
		if err != nil {
			if ctx.Err() != nil {
				return outcome, ctx.Err()
			}
			a.logger.Error("error enriching title", "id", record.Id, "title", record.Title, "err", err)
			if ferr := r.finish(); ferr != nil {
				return outcome, ferr
			}
			return outcome, fmt.Errorf("%w: %s: %w", core.ErrEnrichmentFailure, record.Id, err)
		}
		if !counted {
			continue
		}

		outcome.Processed++
		if outcome.Processed%a.flushEvery == 0 {
			if err := r.flush(); err != nil {
				return outcome, err
			}
			monitor.Flushed(outcome.Processed)
		}
	}

	return outcome, r.finish()
}

// run holds per-invocation state so the Aggregator itself stays shareable.
// Every sink call goes through it and is refused once ctx is done.
type run struct {
	*Aggregator
	ctx     context.Context
	out     sink.Sink
	monitor Monitor
	outcome *Outcome
}

func (r *run) flush() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.out.FlushBatch()
	r.outcome.Flushes++
	return nil
}

func (r *run) append(row core.ResultRow) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.out.Append(row)
	r.outcome.Rows++
	return nil
}

// finish publishes the remainder and signals completion.
func (r *run) finish() error {
	if err := r.flush(); err != nil {
		return err
	}
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.out.Commit()
	r.outcome.Committed = true
	r.monitor.Finish(r.outcome)
	return nil
}

// process emits the rows for one record. It reports whether the record
// advances the flush counter.
func (r *run) process(record *core.Record, mode core.Mode) (bool, error) {
	if err := core.ValidateRecord(record); err != nil {
		r.logger.Warn("ignoring invalid record from lookup", "err", err)
		r.outcome.Dropped++
		r.monitor.RecordSkipped(record)
		return false, nil
	}

	switch mode {
	case core.ModeNameOnly:
		group := r.table.NameOnly()
		if err := r.append(r.row(record, group)); err != nil {
			return false, err
		}
		r.monitor.RowsEmitted(record, []core.GroupID{group})
		return true, nil

	case core.ModeGenreInfo:
		categories, err := r.categories(record)
		if err != nil {
			return false, err
		}
		if err := r.ctx.Err(); err != nil {
			return false, err
		}
		if len(categories) == 0 {
			r.logger.Debug("ignoring title without genres", "id", record.Id, "title", record.Title)
			r.outcome.Dropped++
			r.monitor.RecordSkipped(record)
			return false, nil
		}

		assigned := r.table.Classify(categories)
		for _, group := range assigned {
			if err := r.append(r.row(record, group)); err != nil {
				return false, err
			}
		}
		r.monitor.RowsEmitted(record, assigned)
		return true, nil

	default:
		return false, nil
	}
}

// categories returns the record's genres from the cache, enriching on a miss.
// Concurrent misses for the same id share one Enrich call.
func (r *run) categories(record *core.Record) ([]string, error) {
	if cached, ok := r.cache.Get(record.Id); ok {
		r.logger.Debug("got details from cache", "id", record.Id, "title", record.Title)
		r.outcome.CacheHits++
		r.monitor.CacheHit(record)
		record.Categories, record.Enriched = cached, true
		return cached, nil
	}

	r.logger.Debug("details not in cache, enriching", "id", record.Id, "title", record.Title)
	r.monitor.CacheMiss(record)

	for {
		var enriched bool
		v, err, shared := r.inflight.Do(string(record.Id), func() (any, error) {
			if cached, ok := r.cache.Get(record.Id); ok {
				return cached, nil
			}
			enriched = true
			categories, err := r.lookup.Enrich(r.ctx, record)
			if err != nil {
				return nil, err
			}
			r.cache.Put(record.Id, categories)
			return categories, nil
		})
		if enriched {
			r.outcome.Enrichments++
		}
		if err != nil {
			// Another run led this call and was canceled; ours is still live, so try again.
			if shared && !enriched && errors.Is(err, context.Canceled) && r.ctx.Err() == nil {
				continue
			}
			return nil, err
		}

		categories, _ := v.([]string)
		record.Categories, record.Enriched = categories, true
		return categories, nil
	}
}

func (r *run) row(record *core.Record, group core.GroupID) core.ResultRow {
	return core.ResultRow{
		URI:      r.uriBase + string(record.Id),
		IconHint: r.iconHint,
		Group:    group,
		MimeType: r.mimeType,
		Title:    record.Title,
		Comment:  fmt.Sprintf(r.commentFormat, record.Title),
	}
}
