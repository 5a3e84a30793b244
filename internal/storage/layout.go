// Package storage manages each source's on-disk layout: the current
// llms.txt/llms.json pair, its index directory, timestamped archives,
// and the append-only diff journal, all under a per-source write lock.
package storage

import (
	"path/filepath"
	"time"
)

// Layout resolves the fixed file paths for one source (spec §4.6).
type Layout struct {
	root string
}

// NewLayout builds a Layout rooted at dataRoot/<alias>.
func NewLayout(dataRoot, alias string) Layout {
	return Layout{root: filepath.Join(dataRoot, alias)}
}

func (l Layout) Root() string { return l.root }

func (l Layout) CurrentText() string { return filepath.Join(l.root, "llms.txt") }
func (l Layout) CurrentMeta() string { return filepath.Join(l.root, "llms.json") }
func (l Layout) IndexDir() string    { return filepath.Join(l.root, ".index") }
func (l Layout) ArchiveDir() string  { return filepath.Join(l.root, ".archive") }
func (l Layout) JournalPath() string { return filepath.Join(l.root, "diffs.log.jsonl") }
func (l Layout) SettingsPath() string {
	return filepath.Join(l.root, "settings.toml")
}
func (l Layout) LockPath() string { return filepath.Join(l.root, ".write.lock") }

// ArchiveStamp formats t as the ISO-8601 basic UTC timestamp archives
// are named with (spec §6): YYYYMMDDTHHMMSSZ.
func ArchiveStamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func (l Layout) ArchiveText(stamp string) string {
	return filepath.Join(l.ArchiveDir(), stamp+"-llms.txt")
}

func (l Layout) ArchiveMeta(stamp string) string {
	return filepath.Join(l.ArchiveDir(), stamp+"-llms.json")
}

func (l Layout) ArchiveDiff(stamp string) string {
	return filepath.Join(l.ArchiveDir(), stamp+".diff")
}
