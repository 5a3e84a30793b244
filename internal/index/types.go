// Package index wraps Bleve into the blz Indexer contract: atomic
// rebuild-and-promote of a source's search segment, and bounded-size
// reader handles the searcher borrows from a shared cache.
package index

// Document is what gets indexed for one HeadingBlock.
type Document struct {
	ID          string // alias/anchor@L<line_start>, unique within a source
	Alias       string
	Path        string
	HeadingPath string
	Content     string
	Anchor      string
	LineStart   int
	LineEnd     int
}

// ScoringConfig mirrors the spec's BM25 parameters. It is carried for
// visibility and documentation parity only: nothing reads it at index
// or query time. The searcher applies the same 2.0/1.0 heading/content
// field boosts from its own constants.
type ScoringConfig struct {
	K1            float64
	B             float64
	HeadingWeight float64
	ContentWeight float64
}

// DefaultScoringConfig returns the spec's fixed BM25 parameters.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		K1:            1.2,
		B:             0.75,
		HeadingWeight: 2.0,
		ContentWeight: 1.0,
	}
}

const (
	fieldContent     = "content"
	fieldHeadingPath = "heading_path"
	fieldAlias       = "alias"
	fieldPath        = "path"
	fieldAnchor      = "anchor"
	fieldLineStart   = "line_start"
	fieldLineEnd     = "line_end"
)
