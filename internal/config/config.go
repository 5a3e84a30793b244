// Package config defines the pure data shapes the engine façade is
// configured with. It does not read files or environment variables --
// populating these structs from a config file or flags is the CLI's job.
package config

import "time"

// AllowedScheme is a URL scheme the Fetcher is permitted to dial.
type AllowedScheme string

const (
	SchemeHTTPS AllowedScheme = "https"
	SchemeHTTP  AllowedScheme = "http"
)

// Limits bounds a single fetch attempt.
type Limits struct {
	// MaxBytes caps the decompressed response body size; the Fetcher
	// aborts the stream once it's exceeded.
	MaxBytes int64

	// MaxDuration caps the wall-clock time of a single fetch, including
	// redirects and body read.
	MaxDuration time.Duration

	// AllowedSchemes restricts which URL schemes may be dialed.
	AllowedSchemes []AllowedScheme
}

// DefaultLimits returns the engine's standard fetch limits: 32MiB body
// cap, 30s duration cap, HTTPS only.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:       32 << 20,
		MaxDuration:    30 * time.Second,
		AllowedSchemes: []AllowedScheme{SchemeHTTPS},
	}
}

// Defaults holds the engine's structural defaults for parsing, splitting,
// and retention, each overridable per call.
type Defaults struct {
	// MaxHeadingBlockLines bounds a single HeadingBlock's line span
	// before the block builder splits it further.
	MaxHeadingBlockLines int

	// MaxArchives is the FIFO retention count for a source's archive
	// directory.
	MaxArchives int

	// RefreshHours is the suggested interval between Update calls; the
	// façade itself never schedules refreshes, it only exposes this for
	// an external scheduler (the CLI, a cron-style collaborator) to read.
	RefreshHours int
}

// DefaultDefaults returns the engine's standard structural defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		MaxHeadingBlockLines: 400,
		MaxArchives:          10,
		RefreshHours:         24,
	}
}

// EngineConfig is the complete configuration surface of the façade.
type EngineConfig struct {
	Limits   Limits
	Defaults Defaults

	// RootDir is the base directory under which each source's
	// per-alias subdirectory is laid out.
	RootDir string

	// LowQualitySuggestionThreshold is the top hit's score below which
	// the searcher attaches suggestions to a response (it also attaches
	// them when fewer than 3 results are found).
	LowQualitySuggestionThreshold float64

	// RenameThreshold is the Levenshtein-ratio cutoff, relative to the
	// longer heading path's rune length, under which the remap engine
	// classifies an anchor change as a rename rather than a
	// remove+add pair.
	RenameThreshold float64
}

// DefaultEngineConfig returns the engine's out-of-the-box configuration,
// rooted at rootDir.
func DefaultEngineConfig(rootDir string) EngineConfig {
	return EngineConfig{
		Limits:                        DefaultLimits(),
		Defaults:                      DefaultDefaults(),
		RootDir:                       rootDir,
		LowQualitySuggestionThreshold: 0.2,
		RenameThreshold:               0.2,
	}
}
