package engine

import (
	"context"
	"time"

	"github.com/blz-dev/blz/internal/fetch"
	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/mdparse"
	"github.com/blz-dev/blz/internal/storage"
)

// Add registers a new source: fetch, parse, block, index, and commit
// its first version under alias (spec §4.9).
func (e *Engine) Add(ctx context.Context, alias, url string) error {
	if e.storage.Exists(alias) {
		return ferr.Conflict(alias)
	}

	st := e.stateFor(alias)
	st.callMu.Lock()
	defer st.callMu.Unlock()

	locked, err := st.lock.TryLock()
	if err != nil {
		return err
	}
	if !locked {
		return ferr.Conflict(alias)
	}
	defer st.lock.Unlock()

	st.url = url

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	result, err := e.fetcher.Fetch(ctx, url, fetch.Validators{}, e.cfg.Limits, st.breaker)
	if err != nil {
		e.logger.Warn("add: fetch failed", "alias", alias, "error", err)
		return err
	}
	if result == nil {
		return ferr.Internal("fetch returned no content for a new source", nil)
	}

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	text := string(result.Bytes)
	parsed := mdparse.Parse(text)

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	source := sourceMetaFrom(result.FinalURL, result.ETag, result.LastModified, result.SHA256, time.Now())
	pr := runPipeline(alias, text, parsed, e.cfg.Defaults, source)

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	if err := e.storage.WriteCurrent(alias, text, pr.meta, pr.docs); err != nil {
		return err
	}

	if err := e.storage.AppendJournal(alias, storage.JournalEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Alias:     alias,
		SHAAfter:  result.SHA256,
		ETagAfter: result.ETag,
		Summary:   "added",
	}); err != nil {
		return err
	}

	e.mu.Lock()
	st.healthy = true
	e.mu.Unlock()

	return nil
}
