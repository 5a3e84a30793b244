// Package engine is the façade that orchestrates the Fetcher, parser,
// HeadingBlock builder, Indexer, Storage, and diff/remap engine behind
// the five operations external callers use: Add, Update, Search, Get,
// Remove (spec §4.9).
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/blz-dev/blz/internal/config"
	"github.com/blz-dev/blz/internal/fetch"
	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/index"
	"github.com/blz-dev/blz/internal/search"
	"github.com/blz-dev/blz/internal/storage"
)

// sourceState is the in-memory bookkeeping the façade keeps per alias,
// on top of what's durably recorded in llms.json. callMu serializes
// same-process callers before either of them touches the flock: two
// goroutines racing to Update the same alias queue here instead of one
// burning a TryLock syscall attempt it was always going to lose.
type sourceState struct {
	url     string
	callMu  sync.Mutex
	lock    *storage.WriteLock
	breaker *ferr.CircuitBreaker
	healthy bool
}

// Engine wires the pipeline together and serializes writes per source
// while allowing unlimited concurrent reads and independent writes
// across different sources (spec §5).
type Engine struct {
	cfg      config.EngineConfig
	fetcher  *fetch.Fetcher
	indexer  *index.Indexer
	storage  *storage.Storage
	searcher *search.Searcher
	logger   *slog.Logger

	mu      sync.RWMutex
	sources map[string]*sourceState
}

// New builds an Engine rooted at cfg.RootDir. logger may be nil, in
// which case slog.Default() is used.
func New(cfg config.EngineConfig, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ix, err := index.New(cfg.RootDir, 64)
	if err != nil {
		return nil, ferr.Internal("failed to construct indexer", err)
	}
	st := storage.New(cfg.RootDir, ix)

	e := &Engine{
		cfg:     cfg,
		fetcher: fetch.New(nil),
		indexer: ix,
		storage: st,
		logger:  logger,
		sources: make(map[string]*sourceState),
	}
	e.searcher = search.NewWithThreshold(e, cfg.LowQualitySuggestionThreshold)
	return e, nil
}

// OpenReader implements search.ReaderSource by delegating to the
// Indexer, after checking the source is known and healthy.
func (e *Engine) OpenReader(alias string) (*index.Reader, error) {
	e.mu.RLock()
	st, ok := e.sources[alias]
	e.mu.RUnlock()
	if !ok || !st.healthy {
		return nil, ferr.NotFound("source " + alias)
	}
	return e.indexer.OpenReader(alias)
}

// OpenAliases implements search.ReaderSource: every currently healthy
// source, used as the default search scope.
func (e *Engine) OpenAliases() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.sources))
	for alias, st := range e.sources {
		if st.healthy {
			out = append(out, alias)
		}
	}
	return out
}

func (e *Engine) stateFor(alias string) *sourceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.sources[alias]
	if !ok {
		st = &sourceState{
			lock:    storage.NewWriteLock(e.storage.Layout(alias)),
			breaker: ferr.NewCircuitBreaker(alias),
		}
		e.sources[alias] = st
	}
	return st
}

// Healthy reports whether alias is registered and its index validated.
func (e *Engine) Healthy(alias string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st, ok := e.sources[alias]
	return ok && st.healthy
}

// checkCancelled is the bounded-checkpoint cancellation check threaded
// through every blocking stage (spec §5).
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ferr.Cancelled()
	default:
		return nil
	}
}
