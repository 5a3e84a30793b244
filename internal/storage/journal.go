package storage

import (
	"encoding/json"
	"os"

	"github.com/blz-dev/blz/internal/ferr"
)

// JournalEntry is one line of diffs.log.jsonl (spec §3/§6).
type JournalEntry struct {
	Timestamp       string   `json:"ts"`
	Alias           string   `json:"alias"`
	SHABefore       string   `json:"sha_before,omitempty"`
	SHAAfter        string   `json:"sha_after"`
	ETagBefore      string   `json:"etag_before,omitempty"`
	ETagAfter       string   `json:"etag_after,omitempty"`
	UnifiedDiff     string   `json:"unified_diff_path,omitempty"`
	ChangedSections []string `json:"changed_sections,omitempty"`
	Summary         string   `json:"summary"`
}

// appendJournal appends one LF-terminated JSON line (spec §6: the
// journal is append-only, never rewritten).
func appendJournal(path string, entry JournalEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return ferr.StorageErr("failed to marshal journal entry", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ferr.StorageErr("failed to open journal for append", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return ferr.StorageErr("failed to append journal entry", err)
	}
	return f.Sync()
}
