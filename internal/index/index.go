package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/google/uuid"

	"github.com/blz-dev/blz/internal/ferr"
)

// Handle identifies a promoted index segment.
type Handle struct {
	Alias string
	Dir   string
}

// Reader is a read-only handle onto a source's committed index. The
// underlying bleve.Index is memory-mapped; Close releases it back to
// the Indexer's cache rather than necessarily closing the OS handle.
type Reader struct {
	alias string
	idx   bleve.Index
	gen   uint64
	owner *Indexer
}

// Bleve exposes the underlying bleve.Index for query construction.
func (r *Reader) Bleve() bleve.Index { return r.idx }

// Alias is the source alias this reader was opened for.
func (r *Reader) Alias() string { return r.alias }

// Close returns the reader to the shared cache. It does not close the
// underlying index immediately; eviction closes it.
func (r *Reader) Close() error { return nil }

type cacheEntry struct {
	idx bleve.Index
	gen uint64
}

// Indexer manages per-source Bleve segments on disk: atomic
// rebuild-and-promote, and a bounded LRU of open readers so repeated
// searches don't reopen a memory-mapped segment each call.
type Indexer struct {
	rootDir string

	mu         sync.Mutex // serializes rebuild/promote per alias via aliasLocks
	aliasLocks map[string]*sync.Mutex

	cacheMu sync.Mutex
	cache   *lru.Cache[string, *cacheEntry]
	gens    map[string]uint64
}

// New creates an Indexer rooted at rootDir (normally <data_root>).
// readerCacheSize bounds how many open segments are held at once;
// evicted entries are closed.
func New(rootDir string, readerCacheSize int) (*Indexer, error) {
	ix := &Indexer{
		rootDir:    rootDir,
		aliasLocks: make(map[string]*sync.Mutex),
		gens:       make(map[string]uint64),
	}
	cache, err := lru.NewWithEvict(readerCacheSize, func(_ string, e *cacheEntry) {
		_ = e.idx.Close()
	})
	if err != nil {
		return nil, ferr.Internal("failed to construct reader cache", err)
	}
	ix.cache = cache
	return ix, nil
}

func (ix *Indexer) lockFor(alias string) *sync.Mutex {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	l, ok := ix.aliasLocks[alias]
	if !ok {
		l = &sync.Mutex{}
		ix.aliasLocks[alias] = l
	}
	return l
}

func (ix *Indexer) indexDir(alias string) string {
	return filepath.Join(ix.rootDir, alias, ".index")
}

func (ix *Indexer) currentDir(alias string) string {
	return filepath.Join(ix.indexDir(alias), "current")
}

// Rebuild indexes docs into a fresh segment and atomically promotes it
// to be the alias's current index. On any failure the previously
// committed segment, if any, is left untouched (spec §4.4).
func (ix *Indexer) Rebuild(alias string, docs []Document) (*Handle, error) {
	lock := ix.lockFor(alias)
	lock.Lock()
	defer lock.Unlock()

	m, err := buildIndexMapping()
	if err != nil {
		return nil, ferr.IndexErr("failed to build index mapping", err)
	}

	stagingDir := filepath.Join(ix.indexDir(alias), "staging-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Dir(stagingDir), 0o755); err != nil {
		return nil, ferr.StorageErr("failed to create index directory", err)
	}

	idx, err := bleve.New(stagingDir, m)
	if err != nil {
		return nil, ferr.IndexErr("failed to create index segment", err)
	}

	if err := indexBatch(idx, docs); err != nil {
		_ = idx.Close()
		_ = os.RemoveAll(stagingDir)
		return nil, ferr.IndexErr("failed to index blocks", err)
	}

	if err := idx.Close(); err != nil {
		_ = os.RemoveAll(stagingDir)
		return nil, ferr.IndexErr("failed to close staged segment", err)
	}

	if err := ix.promote(alias, stagingDir); err != nil {
		_ = os.RemoveAll(stagingDir)
		return nil, err
	}

	ix.invalidate(alias)
	return &Handle{Alias: alias, Dir: ix.currentDir(alias)}, nil
}

func indexBatch(idx bleve.Index, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := idx.NewBatch()
	for _, d := range docs {
		rec := map[string]interface{}{
			fieldContent:     d.Content,
			fieldHeadingPath: d.HeadingPath,
			fieldAlias:       d.Alias,
			fieldPath:        d.Path,
			fieldAnchor:      d.Anchor,
			fieldLineStart:   float64(d.LineStart),
			fieldLineEnd:     float64(d.LineEnd),
		}
		if err := batch.Index(d.ID, rec); err != nil {
			return err
		}
	}
	return idx.Batch(batch)
}

// promote swaps stagingDir in as the alias's current index directory.
// The previous current, if any, is moved aside and removed only after
// the swap succeeds, and is moved back if the second rename fails. The
// swap is two renames: a crash between them leaves no current directory
// (the previous index survives under its .retired-* name).
func (ix *Indexer) promote(alias, stagingDir string) error {
	current := ix.currentDir(alias)

	if _, err := os.Stat(current); err == nil {
		retired := current + ".retired-" + uuid.NewString()
		if err := os.Rename(current, retired); err != nil {
			return ferr.StorageErr("failed to retire previous index", err)
		}
		if err := os.Rename(stagingDir, current); err != nil {
			_ = os.Rename(retired, current) // best-effort rollback
			return ferr.StorageErr("failed to promote new index", err)
		}
		_ = os.RemoveAll(retired)
	} else {
		if err := os.Rename(stagingDir, current); err != nil {
			return ferr.StorageErr("failed to promote new index", err)
		}
	}

	if dir, err := os.Open(filepath.Dir(current)); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}
	return nil
}

// OpenReader returns a cached or freshly opened reader for alias's
// current committed index.
func (ix *Indexer) OpenReader(alias string) (*Reader, error) {
	ix.cacheMu.Lock()
	defer ix.cacheMu.Unlock()

	gen := ix.gens[alias]
	key := fmt.Sprintf("%s@%d", alias, gen)
	if e, ok := ix.cache.Get(key); ok {
		return &Reader{alias: alias, idx: e.idx, gen: gen, owner: ix}, nil
	}

	dir := ix.currentDir(alias)
	idx, err := bleve.Open(dir)
	if err != nil {
		return nil, ferr.IndexErr("failed to open index for "+alias, err)
	}
	ix.cache.Add(key, &cacheEntry{idx: idx, gen: gen})
	return &Reader{alias: alias, idx: idx, gen: gen, owner: ix}, nil
}

// invalidate bumps alias's generation so subsequent OpenReader calls
// skip the now-stale cached handle; the old entry is evicted lazily by
// the LRU (or explicitly here if still present).
func (ix *Indexer) invalidate(alias string) {
	ix.cacheMu.Lock()
	defer ix.cacheMu.Unlock()
	gen := ix.gens[alias]
	key := fmt.Sprintf("%s@%d", alias, gen)
	ix.cache.Remove(key)
	ix.gens[alias] = gen + 1
}

// Remove deletes alias's index directory entirely (used by the
// façade's Remove operation).
func (ix *Indexer) Remove(alias string) error {
	ix.invalidate(alias)
	if err := os.RemoveAll(ix.indexDir(alias)); err != nil {
		return ferr.StorageErr("failed to remove index directory", err)
	}
	return nil
}

// Validate reopens alias's current index to confirm it's readable. It
// only reports; it does not rebuild the index.
func (ix *Indexer) Validate(alias string) error {
	idx, err := bleve.Open(ix.currentDir(alias))
	if err != nil {
		return ferr.IndexErr("index validation failed for "+alias, err)
	}
	return idx.Close()
}
