package blzlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()
	if dir == "" {
		t.Fatal("DefaultLogDir returned empty string")
	}
	if !strings.Contains(dir, ".blz") || !strings.Contains(dir, "logs") {
		t.Errorf("DefaultLogDir should contain .blz/logs, got: %s", dir)
	}
}

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	if filepath.Base(path) != "blz.log" {
		t.Errorf("DefaultLogPath should end with blz.log, got: %s", path)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected level info, got %s", cfg.Level)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 {
		t.Errorf("unexpected rotation defaults: %+v", cfg)
	}
	if cfg.WriteToStderr {
		t.Error("expected WriteToStderr false by default")
	}
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	if cfg.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Level)
	}
	if !cfg.WriteToStderr {
		t.Error("expected debug config to mirror to stderr")
	}
}

func TestSetup_WritesJSONLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	cfg := Config{Level: "debug", FilePath: logPath, MaxSizeMB: 1, MaxFiles: 3}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	logger.Info("source added", "alias", "react")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"source added"`) {
		t.Errorf("expected JSON log line with msg field, got: %s", data)
	}
	if !strings.Contains(string(data), `"alias":"react"`) {
		t.Errorf("expected alias attribute in log line, got: %s", data)
	}
}

func TestSetup_EmptyFilePathLogsToStderrOnly(t *testing.T) {
	logger, cleanup, err := Setup(Config{Level: "info"})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()
	if logger == nil {
		t.Fatal("Setup returned nil logger")
	}
}

func TestParseLevel(t *testing.T) {
	cfg := Config{Level: "warn", FilePath: filepath.Join(t.TempDir(), "warn.log")}
	logger, cleanup, err := Setup(cfg)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	if logger.Enabled(nil, -4) { // slog.LevelDebug
		t.Error("expected debug level disabled under warn config")
	}
}
