// Package cache implements the client-side query cache: one entry per query
// key with a staleness window, shared in-flight fetches, and explicit
// invalidation after mutations.
package cache

import (
	"context"
	"sync"
	"time"

	corelogger "github.com/plugpoint/plugpoint/core/logger"
	coremetrics "github.com/plugpoint/plugpoint/core/metrics"
	"github.com/plugpoint/plugpoint/core/model"
)

// Key identifies one cached resource.
type Key string

// Query keys used by the client.
const (
	KeyStations  Key = "stations"
	KeySpotPrice Key = "spot-price"
	KeySessions  Key = "charging_sessions"
)

// Result is the outcome of a cache query. IsLoading is only reported by
// Peek while a fetch is in flight; Fetch blocks until the entry settles.
type Result[T any] struct {
	Data      T
	Err       error
	IsLoading bool
	UpdatedAt time.Time
}

// Store is the process-wide query cache. It is constructed once and passed
// explicitly to every component that reads or invalidates entries.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	log     corelogger.Logger
	sink    coremetrics.Sink
	now     func() time.Time
}

type entry struct {
	data      any
	err       error
	updatedAt time.Time
	stale     bool
	// gen counts issued fetches for this key. A flight whose gen no longer
	// matches has been superseded and its result is discarded.
	gen    uint64
	flight *flight
}

type flight struct {
	gen  uint64
	done chan struct{}
	data any
	err  error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log corelogger.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithSink sets the metrics sink receiving cache events.
func WithSink(sink coremetrics.Sink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[Key]*entry),
		sink:    coremetrics.NopSink{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) entryLocked(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Invalidate marks the entry as stale so the next Fetch re-runs its fetch
// function. An in-flight fetch issued before the invalidation is superseded:
// its late result is discarded instead of overwriting fresher state.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entryLocked(key)
	e.stale = true
	e.gen++
	e.flight = nil
}

// Fetch resolves the entry at key. A fresh cached value is returned without
// calling fn. Otherwise fn runs; concurrent callers for the same key attach
// to the one in-flight call instead of duplicating it. A caller whose
// context ends while waiting gets the context error, and the eventual
// response still settles the cache for everyone else.
func Fetch[T any](ctx context.Context, s *Store, key Key, staleTime time.Duration, fn func(context.Context) (T, error)) Result[T] {
	start := s.now()
	s.mu.Lock()
	e := s.entryLocked(key)

	if data, ok := e.data.(T); ok && !e.stale && s.now().Sub(e.updatedAt) < staleTime {
		res := Result[T]{Data: data, UpdatedAt: e.updatedAt}
		s.mu.Unlock()
		s.record(key, coremetrics.CacheHit, s.now().Sub(start))
		return res
	}

	if f := e.flight; f != nil && f.gen == e.gen {
		s.mu.Unlock()
		res := awaitFlight[T](ctx, f)
		s.record(key, coremetrics.CacheShared, s.now().Sub(start))
		return res
	}

	outcome := coremetrics.CacheMiss
	if e.stale || e.data != nil {
		outcome = coremetrics.CacheStale
	}
	e.gen++
	f := &flight{gen: e.gen, done: make(chan struct{})}
	e.flight = f
	s.mu.Unlock()

	data, err := fn(ctx)
	f.data, f.err = data, err
	close(f.done)

	s.mu.Lock()
	superseded := f.gen != e.gen
	if !superseded {
		if err == nil {
			e.data = data
			e.err = nil
			e.updatedAt = s.now()
			e.stale = false
		} else {
			e.err = err
		}
		if e.flight == f {
			e.flight = nil
		}
	}
	updatedAt := e.updatedAt
	s.mu.Unlock()

	if superseded {
		// A later request owns the entry now; drop this result silently.
		if s.log != nil {
			s.log.Debugf("discarding superseded response for key %q", key)
		}
	}
	if err != nil {
		outcome = coremetrics.CacheError
		if s.log != nil {
			s.log.Errorf("fetch %q failed (%s): %v", key, model.ErrorKind(err), err)
		}
	}
	s.record(key, outcome, s.now().Sub(start))
	return Result[T]{Data: data, Err: err, UpdatedAt: updatedAt}
}

func awaitFlight[T any](ctx context.Context, f *flight) Result[T] {
	select {
	case <-ctx.Done():
		var zero T
		return Result[T]{Data: zero, Err: ctx.Err(), IsLoading: true}
	case <-f.done:
	}
	data, _ := f.data.(T)
	return Result[T]{Data: data, Err: f.err}
}

// Peek reports the current entry state without triggering a fetch. IsLoading
// is true while a fetch for the key is in flight.
func Peek[T any](s *Store, key Key) Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Result[T]{}
	}
	data, _ := e.data.(T)
	return Result[T]{
		Data:      data,
		Err:       e.err,
		IsLoading: e.flight != nil && e.flight.gen == e.gen,
		UpdatedAt: e.updatedAt,
	}
}

func (s *Store) record(key Key, outcome string, latency time.Duration) {
	if s.sink == nil {
		return
	}
	ev := coremetrics.CacheEvent{Key: string(key), Outcome: outcome, Latency: latency, Time: s.now()}
	if err := s.sink.RecordCacheEvent(ev); err != nil && s.log != nil {
		s.log.Warnf("record cache event: %v", err)
	}
}
