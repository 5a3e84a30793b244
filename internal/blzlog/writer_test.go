package blzlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotatingWriter_RotatesPastMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blz.log")

	w, err := NewRotatingWriter(path, 0, 2) // maxSizeMB=0 -> any write rotates
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := w.Write([]byte("second\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected rotated file %s.1 to exist: %v", path, err)
	}
}

func TestRotatingWriter_PrunesBeyondMaxFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blz.log")

	w, err := NewRotatingWriter(path, 0, 1)
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer w.Close()

	for i := 0; i < 3; i++ {
		if _, err := w.Write([]byte("entry\n")); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	if _, err := os.Stat(path + ".2"); err == nil {
		t.Error("expected generation .2 to have been pruned beyond maxFiles=1")
	}
}

func TestRotatingWriter_ReopensExistingFileAtCurrentSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blz.log")

	w1, err := NewRotatingWriter(path, 10, 3)
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	if _, err := w1.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w1.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	w2, err := NewRotatingWriter(path, 10, 3)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer w2.Close()

	if w2.written != int64(len("hello\n")) {
		t.Errorf("expected written=%d, got %d", len("hello\n"), w2.written)
	}
}
