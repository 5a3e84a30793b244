package storage

import (
	"encoding/json"
	"os"

	"github.com/google/renameio"

	"github.com/blz-dev/blz/internal/ferr"
)

// writeAtomic replaces path's contents via a temp-file-then-rename, so
// readers never observe a partially written file.
func writeAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return ferr.StorageErr("failed to atomically write "+path, err)
	}
	return nil
}

func writeMetaAtomic(path string, m Meta) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return ferr.StorageErr("failed to marshal metadata", err)
	}
	data = append(data, '\n')
	return writeAtomic(path, data)
}

func readMeta(path string) (Meta, error) {
	var m Meta
	data, err := os.ReadFile(path)
	if err != nil {
		return m, ferr.StorageErr("failed to read metadata", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, ferr.StorageErr("failed to parse metadata", err)
	}
	return m, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", ferr.StorageErr("failed to read document text", err)
	}
	return string(data), nil
}
