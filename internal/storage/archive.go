package storage

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/blz-dev/blz/internal/ferr"
)

// archiveEntry describes one retained prior version, oldest first.
type archiveEntry struct {
	stamp    string
	textPath string
	metaPath string
	diffPath string
}

// archive copies the current text/meta pair plus the unified diff
// against the previous version into .archive/<stamp>-*, and prunes the
// oldest entries beyond maxArchives (FIFO retention, spec §4.6).
func (s *Storage) archive(layout Layout, at time.Time, unifiedDiff string, maxArchives int) error {
	stamp := ArchiveStamp(at)
	if err := os.MkdirAll(layout.ArchiveDir(), 0o755); err != nil {
		return ferr.StorageErr("failed to create archive directory", err)
	}

	text, err := readText(layout.CurrentText())
	if err != nil {
		return err
	}
	if err := writeAtomic(layout.ArchiveText(stamp), []byte(text)); err != nil {
		return err
	}

	metaBytes, err := os.ReadFile(layout.CurrentMeta())
	if err != nil {
		return ferr.StorageErr("failed to read metadata for archiving", err)
	}
	if err := writeAtomic(layout.ArchiveMeta(stamp), metaBytes); err != nil {
		return err
	}

	if unifiedDiff != "" {
		if err := writeAtomic(layout.ArchiveDiff(stamp), []byte(unifiedDiff)); err != nil {
			return err
		}
	}

	return s.pruneArchives(layout, maxArchives)
}

// pruneArchives removes the oldest archive entries beyond maxArchives.
func (s *Storage) pruneArchives(layout Layout, maxArchives int) error {
	if maxArchives <= 0 {
		return nil
	}
	entries, err := listArchives(layout)
	if err != nil {
		return err
	}
	if len(entries) <= maxArchives {
		return nil
	}
	toRemove := entries[:len(entries)-maxArchives]
	for _, e := range toRemove {
		_ = os.Remove(e.textPath)
		_ = os.Remove(e.metaPath)
		if e.diffPath != "" {
			_ = os.Remove(e.diffPath)
		}
	}
	return nil
}

// listArchives returns archive entries sorted oldest-first by stamp.
func listArchives(layout Layout) ([]archiveEntry, error) {
	dirEntries, err := os.ReadDir(layout.ArchiveDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, ferr.StorageErr("failed to list archive directory", err)
	}

	stamps := make(map[string]*archiveEntry)
	for _, de := range dirEntries {
		name := de.Name()
		switch {
		case len(name) > len("-llms.txt") && name[len(name)-len("-llms.txt"):] == "-llms.txt":
			stamp := name[:len(name)-len("-llms.txt")]
			e := getOrCreate(stamps, stamp)
			e.textPath = filepath.Join(layout.ArchiveDir(), name)
		case len(name) > len("-llms.json") && name[len(name)-len("-llms.json"):] == "-llms.json":
			stamp := name[:len(name)-len("-llms.json")]
			e := getOrCreate(stamps, stamp)
			e.metaPath = filepath.Join(layout.ArchiveDir(), name)
		case len(name) > len(".diff") && name[len(name)-len(".diff"):] == ".diff":
			stamp := name[:len(name)-len(".diff")]
			e := getOrCreate(stamps, stamp)
			e.diffPath = filepath.Join(layout.ArchiveDir(), name)
		}
	}

	out := make([]archiveEntry, 0, len(stamps))
	for _, e := range stamps {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].stamp < out[j].stamp })
	return out, nil
}

func getOrCreate(m map[string]*archiveEntry, stamp string) *archiveEntry {
	e, ok := m[stamp]
	if !ok {
		e = &archiveEntry{stamp: stamp}
		m[stamp] = e
	}
	return e
}
