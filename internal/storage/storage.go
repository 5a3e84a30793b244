package storage

import (
	"os"
	"time"

	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/index"
)

// Storage manages the on-disk layout for every source under a single
// data root. It does not itself decide what to write; the engine
// façade computes content and metadata and calls WriteCurrent under a
// held WriteLock.
type Storage struct {
	dataRoot string
	indexer  *index.Indexer
}

// New builds a Storage rooted at dataRoot, sharing ix for the index
// half of each write-current group commit.
func New(dataRoot string, ix *index.Indexer) *Storage {
	return &Storage{dataRoot: dataRoot, indexer: ix}
}

func (s *Storage) Layout(alias string) Layout {
	return NewLayout(s.dataRoot, alias)
}

// Create makes the per-source directory tree. A no-op if it already
// exists.
func (s *Storage) Create(alias string) error {
	layout := s.Layout(alias)
	for _, dir := range []string{layout.Root(), layout.ArchiveDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferr.StorageErr("failed to create "+dir, err)
		}
	}
	return nil
}

// Remove deletes a source's entire on-disk tree, including its index.
func (s *Storage) Remove(alias string) error {
	if s.indexer != nil {
		_ = s.indexer.Remove(alias)
	}
	if err := os.RemoveAll(s.Layout(alias).Root()); err != nil {
		return ferr.StorageErr("failed to remove source directory", err)
	}
	return nil
}

// ReadCurrent returns the committed text and metadata for alias.
func (s *Storage) ReadCurrent(alias string) (string, Meta, error) {
	layout := s.Layout(alias)
	text, err := readText(layout.CurrentText())
	if err != nil {
		return "", Meta{}, err
	}
	meta, err := readMeta(layout.CurrentMeta())
	if err != nil {
		return "", Meta{}, err
	}
	return text, meta, nil
}

// Exists reports whether alias has a committed current version.
func (s *Storage) Exists(alias string) bool {
	_, err := os.Stat(s.Layout(alias).CurrentText())
	return err == nil
}

// WriteCurrent commits text, meta, and the freshly rebuilt index
// segment docs as one group: llms.txt first, then llms.json, then the
// index promote. Each file write is independently atomic (rename); the
// group as a whole is protected by the caller's held WriteLock, so no
// other writer can observe a partial sequence. There is no cross-file
// WAL: a crash between steps can leave llms.txt, llms.json and the index
// out of step, and nothing reconciles them on the next open.
func (s *Storage) WriteCurrent(alias, text string, meta Meta, docs []index.Document) error {
	layout := s.Layout(alias)
	if err := s.Create(alias); err != nil {
		return err
	}

	if err := writeAtomic(layout.CurrentText(), []byte(text)); err != nil {
		return err
	}
	if err := writeMetaAtomic(layout.CurrentMeta(), meta); err != nil {
		return err
	}
	if s.indexer != nil {
		if _, err := s.indexer.Rebuild(alias, docs); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetaOnly rewrites llms.json without touching the document text
// or the index segment, for updates that only refresh fetch validators
// (a 304, or a digest-identical response under a new ETag).
func (s *Storage) WriteMetaOnly(alias string, meta Meta) error {
	return writeMetaAtomic(s.Layout(alias).CurrentMeta(), meta)
}

// Archive snapshots the current text/meta/diff into .archive/ and
// prunes beyond maxArchives.
func (s *Storage) Archive(alias string, at time.Time, unifiedDiff string, maxArchives int) error {
	return s.archive(s.Layout(alias), at, unifiedDiff, maxArchives)
}

// AppendJournal appends one entry to alias's diffs.log.jsonl.
func (s *Storage) AppendJournal(alias string, entry JournalEntry) error {
	return appendJournal(s.Layout(alias).JournalPath(), entry)
}
