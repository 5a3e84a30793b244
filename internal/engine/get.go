package engine

import (
	"context"

	"github.com/blz-dev/blz/internal/lineindex"
	"github.com/blz-dev/blz/internal/storage"
)

// Get resolves line ranges against a source's current document,
// expanding each by context lines and merging overlaps (spec §4.9).
func (e *Engine) Get(ctx context.Context, alias string, ranges []lineindex.Range, contextLines int) ([]storage.ResolvedRange, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	return e.storage.GetLines(alias, ranges, contextLines)
}
