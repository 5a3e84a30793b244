package engine

import (
	"context"

	"github.com/blz-dev/blz/internal/search"
)

// Search runs req against every healthy source in scope, delegating to
// the shared Searcher (the Engine itself is its search.ReaderSource;
// see engine.go) (spec §4.9).
func (e *Engine) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	return e.searcher.Search(req)
}
