package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/blz-dev/blz/internal/diffengine"
	"github.com/blz-dev/blz/internal/fetch"
	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/mdparse"
	"github.com/blz-dev/blz/internal/storage"
)

// Update re-fetches alias's source, short-circuiting on 304/unchanged
// digest, and otherwise commits the new version, archiving the prior
// one and computing its diff and anchor remap (spec §4.9).
func (e *Engine) Update(ctx context.Context, alias string) error {
	if !e.storage.Exists(alias) {
		return ferr.NotFound("source " + alias)
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

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	prevText, prevMeta, err := e.storage.ReadCurrent(alias)
	if err != nil {
		return err
	}

	url := prevMeta.Source.URL
	validators := fetch.Validators{ETag: prevMeta.Source.ETag, LastModified: prevMeta.Source.LastModified}

	result, err := e.fetcher.Fetch(ctx, url, validators, e.cfg.Limits, st.breaker)
	if err != nil {
		e.mu.Lock()
		st.healthy = false
		e.mu.Unlock()
		return err
	}

	now := time.Now()

	if result == nil {
		// NotModified: only the fetched_at timestamp changes.
		prevMeta.Source.FetchedAt = now.UTC().Format(time.RFC3339)
		if err := e.storage.WriteMetaOnly(alias, prevMeta); err != nil {
			return err
		}
		e.mu.Lock()
		st.healthy = true
		e.mu.Unlock()
		return nil
	}

	if result.SHA256 == prevMeta.Source.SHA256 {
		// Content identical under a changed validator: same treatment as
		// NotModified, but persist the new validator for the next round.
		prevMeta.Source.FetchedAt = now.UTC().Format(time.RFC3339)
		prevMeta.Source.ETag = result.ETag
		prevMeta.Source.LastModified = result.LastModified
		if err := e.storage.WriteMetaOnly(alias, prevMeta); err != nil {
			return err
		}
		e.mu.Lock()
		st.healthy = true
		e.mu.Unlock()
		return nil
	}

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	currText := string(result.Bytes)
	parsed := mdparse.Parse(currText)

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	source := sourceMetaFrom(result.FinalURL, result.ETag, result.LastModified, result.SHA256, now)
	pr := runPipeline(alias, currText, parsed, e.cfg.Defaults, source)

	if err := checkCancelled(ctx); err != nil {
		return err
	}

	diffResult, err := diffengine.Diff(prevText, currText, parsed.Headings)
	if err != nil {
		return err
	}

	remapResult := diffengine.RemapWithThreshold(toAnchorMap(prevMeta.Anchors), parsed.Headings, e.cfg.RenameThreshold)

	if err := e.storage.Archive(alias, now, diffResult.UnifiedDiff, e.cfg.Defaults.MaxArchives); err != nil {
		return err
	}

	if err := e.storage.WriteCurrent(alias, currText, pr.meta, pr.docs); err != nil {
		return err
	}

	changedSections := make([]string, len(diffResult.ChangedSections))
	for i, s := range diffResult.ChangedSections {
		changedSections[i] = s.Anchor
	}

	if err := e.storage.AppendJournal(alias, storage.JournalEntry{
		Timestamp:       now.UTC().Format(time.RFC3339),
		Alias:           alias,
		SHABefore:       prevMeta.Source.SHA256,
		SHAAfter:        result.SHA256,
		ETagBefore:      prevMeta.Source.ETag,
		ETagAfter:       result.ETag,
		UnifiedDiff:     e.storage.Layout(alias).ArchiveDiff(storage.ArchiveStamp(now)),
		ChangedSections: changedSections,
		Summary:         updateSummary(remapResult),
	}); err != nil {
		return err
	}

	e.mu.Lock()
	st.healthy = true
	e.mu.Unlock()

	return nil
}

func updateSummary(r diffengine.RemapResult) string {
	return "updated: " +
		strconv.Itoa(len(r.Moved)) + " moved, " +
		strconv.Itoa(len(r.Added)) + " added, " +
		strconv.Itoa(len(r.Removed)) + " removed"
}
