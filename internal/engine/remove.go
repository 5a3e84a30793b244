package engine

import (
	"context"

	"github.com/blz-dev/blz/internal/ferr"
)

// Remove deletes a source's entire on-disk tree and its index segment,
// and drops it from the façade's in-memory registry (spec §4.9).
func (e *Engine) Remove(ctx context.Context, alias string) error {
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

	if err := e.storage.Remove(alias); err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.sources, alias)
	e.mu.Unlock()

	return nil
}
