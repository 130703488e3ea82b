package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/titlelens/aggregate"
	"github.com/poiesic/titlelens/core"
	"github.com/poiesic/titlelens/sink"
)

const releaseTimeout = 2 * time.Second

// Scope identifies an independent result surface.
type Scope int

const (
	// ScopeEntry is the search bound to the host's entry field.
	ScopeEntry Scope = iota
	// ScopeGlobal is the host-wide search.
	ScopeGlobal
)

func (s Scope) String() string {
	switch s {
	case ScopeEntry:
		return "entry"
	case ScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Completion reports the end of a run that was not superseded.
type Completion struct {
	Scope      Scope
	Generation uint64
	Outcome    *aggregate.Outcome
	Err        error
}

// Session serializes runs per scope and cancels superseded ones.
// The active mode belongs to the session: a section change on one scope is
// picked up by the other scope on its next query change.
type Session struct {
	agg        *aggregate.Aggregator
	scopes     map[Scope]*scope
	onComplete func(Completion)
	monitor    aggregate.Monitor
	logger     *slog.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	mode   core.Mode
	closed bool
}

type scope struct {
	id   Scope
	pool *ants.Pool

	mu         sync.Mutex
	out        sink.Sink
	query      string
	generation uint64
	cancel     context.CancelFunc
}

// Option configures a Session.
type Option func(*Session) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCompletion registers fn to be called after every query change that ends
// without being superseded. fn runs on the scope's worker, or on the caller
// of QueryChanged when the gate rejects the query.
func WithCompletion(fn func(Completion)) Option {
	return func(s *Session) error {
		s.onComplete = fn
		return nil
	}
}

// WithMonitor observes every run the session starts.
func WithMonitor(monitor aggregate.Monitor) Option {
	return func(s *Session) error {
		s.monitor = monitor
		return nil
	}
}

// NewSession creates a Session with the entry and global scopes.
func NewSession(agg *aggregate.Aggregator, opts ...Option) (*Session, error) {
	if agg == nil {
		return nil, ErrAggregatorRequired
	}

	s := &Session{
		agg:    agg,
		scopes: make(map[Scope]*scope, 2),
		logger: slog.Default(),
	}
	for _, id := range []Scope{ScopeEntry, ScopeGlobal} {
		pool, err := ants.NewPool(1)
		if err != nil {
			s.release()
			return nil, err
		}
		s.scopes[id] = &scope{id: id, pool: pool}
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.release()
			return nil, err
		}
	}
	return s, nil
}

// Attach binds out to the scope. Subsequent runs in that scope write to out.
func (s *Session) Attach(id Scope, out sink.Sink) error {
	sc, err := s.scope(id)
	if err != nil {
		return err
	}
	sc.mu.Lock()
	sc.out = out
	sc.mu.Unlock()
	return nil
}

// Query returns the scope's current query and the session's mode.
func (s *Session) Query(id Scope) (string, core.Mode, error) {
	sc, err := s.scope(id)
	if err != nil {
		return "", 0, err
	}
	sc.mu.Lock()
	query := sc.query
	sc.mu.Unlock()
	return query, s.activeMode(), nil
}

// QueryChanged records a new query for the scope and runs it in the session's
// current mode. Queries the gate rejects are remembered but neither run nor
// cancel the run in progress, so earlier rows stay visible. They still
// complete, with a skipped outcome.
func (s *Session) QueryChanged(id Scope, query string) error {
	sc, err := s.scope(id)
	if err != nil {
		return err
	}

	mode := s.activeMode()
	sc.mu.Lock()
	sc.query = query
	generation := sc.generation
	sc.mu.Unlock()

	if !s.agg.Gate().Allow(query) {
		s.logger.Debug("query gated", "scope", id, "query", query)
		if s.onComplete != nil {
			s.onComplete(Completion{
				Scope:      id,
				Generation: generation,
				Outcome:    &aggregate.Outcome{Query: query, Mode: mode, Skipped: true},
			})
		}
		return nil
	}
	return s.dispatch(sc, query, mode)
}

// SectionChanged switches the session's mode to the one mapped to section and
// re-runs the scope's current query, if it passes the gate.
func (s *Session) SectionChanged(id Scope, section int) error {
	sc, err := s.scope(id)
	if err != nil {
		return err
	}
	mode, ok := s.agg.Gate().ResolveMode(section)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSection, section)
	}
	if err := core.ValidateMode(mode); err != nil {
		return fmt.Errorf("%w: %d: %w", ErrUnknownSection, section, err)
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	sc.mu.Lock()
	query := sc.query
	sc.mu.Unlock()

	if !s.agg.Gate().Allow(query) {
		return nil
	}
	return s.dispatch(sc, query, mode)
}

// Wait blocks until every submitted run has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight runs, waits for them, and releases the workers.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	for _, sc := range s.scopes {
		sc.mu.Lock()
		sc.generation++
		if sc.cancel != nil {
			sc.cancel()
			sc.cancel = nil
		}
		sc.mu.Unlock()
	}
	s.wg.Wait()
	s.release()
	return nil
}

func (s *Session) release() {
	for _, sc := range s.scopes {
		if err := sc.pool.ReleaseTimeout(releaseTimeout); err != nil {
			s.logger.Warn("worker pool did not stop in time", "scope", sc.id, "err", err)
		}
	}
}

func (s *Session) activeMode() core.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) scope(id Scope) (*scope, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}
	sc, ok := s.scopes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, id)
	}
	return sc, nil
}

// dispatch starts a new generation for sc and submits its run.
func (s *Session) dispatch(sc *scope, query string, mode core.Mode) error {
	sc.mu.Lock()
	out := sc.out
	if out == nil {
		sc.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoSink, sc.id)
	}
	if sc.cancel != nil {
		sc.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	sc.generation++
	generation := sc.generation
	sc.cancel = cancel
	sc.mu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return ErrSessionClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()

	err := sc.pool.Submit(func() {
		defer s.wg.Done()
		defer cancel()
		s.execute(ctx, sc, generation, query, mode, out)
	})
	if err != nil {
		s.wg.Done()
		cancel()
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrSessionClosed
		}
		return err
	}
	return nil
}

func (s *Session) execute(ctx context.Context, sc *scope, generation uint64, query string, mode core.Mode, out sink.Sink) {
	if ctx.Err() != nil {
		return
	}

	s.logger.Debug("running query", "scope", sc.id, "generation", generation, "query", query, "mode", mode)
	outcome, err := s.agg.RunWithMonitor(ctx, query, mode, out, s.monitor)

	// Superseded runs stay silent.
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("run superseded", "scope", sc.id, "generation", generation)
		return
	}
	sc.mu.Lock()
	current := sc.generation == generation
	sc.mu.Unlock()
	if !current {
		return
	}

	if err != nil {
		s.logger.Error("run failed", "scope", sc.id, "query", query, "err", err)
	}
	if s.onComplete != nil && outcome != nil && !outcome.Skipped {
		s.onComplete(Completion{Scope: sc.id, Generation: generation, Outcome: outcome, Err: err})
	}
}
