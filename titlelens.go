// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package titlelens

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/titlelens/aggregate"
	"github.com/poiesic/titlelens/ai"
	"github.com/poiesic/titlelens/ai/openai"
	"github.com/poiesic/titlelens/cache"
	"github.com/poiesic/titlelens/config"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/dispatch"
	"github.com/poiesic/titlelens/gate"
	"github.com/poiesic/titlelens/groups"
	"github.com/poiesic/titlelens/lookup"
	"github.com/poiesic/titlelens/lookup/catalog"
	"github.com/poiesic/titlelens/lookup/httpapi"
	"github.com/poiesic/titlelens/sink"
)

// ErrConfigRequired is returned when NewEngine is called without a config.
var ErrConfigRequired = errors.New("config required")

// Engine wires a configured lookup, the detail cache and the aggregator.
type Engine struct {
	config     *config.Config
	catalog    *catalog.Catalog
	service    lookup.Service
	cache      cache.DetailCache
	table      *groups.Table
	aggregator *aggregate.Aggregator
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger  *slog.Logger
	service lookup.Service
	tagger  ai.GenreTagger
	cache   cache.DetailCache
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithService bypasses the configured lookup and uses svc.
func WithService(svc lookup.Service) EngineOption {
	return func(o *engineOptions) {
		o.service = svc
	}
}

// WithTagger supplies the genre fallback instead of building one from config.
func WithTagger(tagger ai.GenreTagger) EngineOption {
	return func(o *engineOptions) {
		o.tagger = tagger
	}
}

// WithCache starts the engine with an existing, possibly pre-seeded, cache.
func WithCache(detailCache cache.DetailCache) EngineOption {
	return func(o *engineOptions) {
		o.cache = detailCache
	}
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	e := &Engine{
		config: cfg,
		logger: options.logger,
	}

	table, err := groups.New(cfg.Genres...)
	if err != nil {
		return nil, err
	}
	e.table = table

	svc := options.service
	if svc == nil {
		if svc, err = e.openService(); err != nil {
			return nil, err
		}
	}

	tagger := options.tagger
	if tagger == nil && cfg.Tagger.Enabled {
		tagger, err = openai.NewGenreTagger(ai.NewConfig(
			ai.WithHost(cfg.Tagger.Host),
			ai.WithModel(cfg.Tagger.Model),
			ai.WithToken(cfg.Tagger.Token),
			ai.WithLabels(cfg.Genres...),
		))
		if err != nil {
			e.Close()
			return nil, err
		}
	}
	if tagger != nil {
		if svc, err = lookup.WithTagger(svc, tagger, e.logger); err != nil {
			e.Close()
			return nil, err
		}
	}
	e.service = svc

	e.cache = options.cache
	if e.cache == nil {
		e.cache = cache.NewMemory()
	}

	e.aggregator, err = aggregate.NewAggregator(svc, e.cache, table,
		aggregate.WithLogger(e.logger),
		aggregate.WithGate(gate.New(
			gate.WithMinLength(cfg.MinQueryLength),
			gate.WithSections(sectionModes()...),
		)),
		aggregate.WithFlushEvery(cfg.FlushEvery),
		aggregate.WithURIBase(cfg.URIBase),
		aggregate.WithIconHint(cfg.IconHint),
		aggregate.WithMimeType(cfg.MimeType),
	)
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func sectionModes() []core.Mode {
	sections := groups.Sections()
	modes := make([]core.Mode, len(sections))
	for i, section := range sections {
		modes[i] = section.Mode
	}
	return modes
}

func (e *Engine) openService() (lookup.Service, error) {
	lc := e.config.Lookup
	switch lc.Kind {
	case config.LookupHTTP:
		return httpapi.NewClient(lc.Endpoint,
			httpapi.WithRateLimit(lc.RateLimitRPS),
			httpapi.WithRequestTimeout(lc.RequestTimeout),
			httpapi.WithRetries(lc.MaxRetries, lc.RetryDelay),
			httpapi.WithClientLogger(e.logger),
		)
	default:
		cat, err := catalog.Open(lc.CatalogPath, lc.InMemory, catalog.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		e.catalog = cat
		return cat, nil
	}
}

// Close releases the catalog, if one is open.
func (e *Engine) Close() error {
	if e.catalog == nil {
		return nil
	}
	err := e.catalog.Close()
	e.catalog = nil
	if err != nil {
		e.logger.Error("error closing catalog", "err", err)
	}
	return err
}

// Search runs one query against out.
func (e *Engine) Search(ctx context.Context, query string, mode core.Mode, out sink.Sink) (*aggregate.Outcome, error) {
	return e.aggregator.Run(ctx, query, mode, out)
}

// NewSession creates a dispatcher session over the engine's aggregator.
func (e *Engine) NewSession(opts ...dispatch.Option) (*dispatch.Session, error) {
	opts = append([]dispatch.Option{dispatch.WithLogger(e.logger)}, opts...)
	return dispatch.NewSession(e.aggregator, opts...)
}

// Aggregator returns the engine's aggregator.
func (e *Engine) Aggregator() *aggregate.Aggregator {
	return e.aggregator
}

// Catalog returns the local catalog, or nil when the lookup is remote or injected.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Service returns the lookup the aggregator uses, including any tagger fallback.
func (e *Engine) Service() lookup.Service {
	return e.service
}

// Groups returns the group table.
func (e *Engine) Groups() *groups.Table {
	return e.table
}

// Cache returns the detail cache.
func (e *Engine) Cache() cache.DetailCache {
	return e.cache
}
