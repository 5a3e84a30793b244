// Package block slices a parsed heading forest into bounded HeadingBlocks,
// the unit the indexer stores and the searcher returns citations against.
package block

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/blz-dev/blz/internal/lineindex"
	"github.com/blz-dev/blz/internal/mdparse"
)

// HeadingBlock is a bounded, indexable slice of a single heading's text.
type HeadingBlock struct {
	Alias       string
	Path        string
	HeadingPath []string
	Anchor      string
	LineStart   int
	LineEnd     int
	Content     string
	Checksum    string
}

// Options configures block construction.
type Options struct {
	// MaxHeadingBlockLines bounds how many lines a single block may
	// span before it's split further. Zero uses the spec's default: 400.
	MaxHeadingBlockLines int
}

const defaultMaxHeadingBlockLines = 400

// Build slices every heading in headings into one or more HeadingBlocks,
// in document order. Headings whose span fits within
// opts.MaxHeadingBlockLines produce exactly one block; larger headings
// split at paragraph boundaries where possible, otherwise at the
// largest line boundary under the limit.
func Build(alias, path string, headings []mdparse.Heading, idx *lineindex.Index, opts Options) []HeadingBlock {
	maxLines := opts.MaxHeadingBlockLines
	if maxLines <= 0 {
		maxLines = defaultMaxHeadingBlockLines
	}

	var blocks []HeadingBlock
	for _, h := range headings {
		blocks = append(blocks, buildHeadingBlocks(alias, path, h, idx, maxLines)...)
	}
	return blocks
}

func buildHeadingBlocks(alias, path string, h mdparse.Heading, idx *lineindex.Index, maxLines int) []HeadingBlock {
	span := h.LineEnd - h.LineStart + 1
	if span <= maxLines {
		return []HeadingBlock{
			newBlock(alias, path, h, h.LineStart, h.LineEnd, idx),
		}
	}

	var blocks []HeadingBlock
	cursor := h.LineStart
	for cursor <= h.LineEnd {
		limit := cursor + maxLines - 1
		if limit > h.LineEnd {
			limit = h.LineEnd
		}

		splitAt := limit
		if limit < h.LineEnd {
			if p := lastBlankLine(idx, cursor, limit); p > cursor-1 {
				splitAt = p
			}
		}

		blocks = append(blocks, newBlock(alias, path, h, cursor, splitAt, idx))
		cursor = splitAt + 1
	}
	return blocks
}

// lastBlankLine returns the 1-based line number of the last blank line
// in [from, to], or from-1 if none is found (signaling "split at the
// hard boundary instead").
func lastBlankLine(idx *lineindex.Index, from, to int) int {
	best := from - 1
	for n := from; n <= to; n++ {
		if strings.TrimSpace(idx.Lines(n, n)) == "" {
			best = n
		}
	}
	return best
}

func newBlock(alias, path string, h mdparse.Heading, start, end int, idx *lineindex.Index) HeadingBlock {
	content := idx.Lines(start, end)
	sum := sha256.Sum256([]byte(content))
	return HeadingBlock{
		Alias:       alias,
		Path:        path,
		HeadingPath: h.Path,
		Anchor:      h.Anchor,
		LineStart:   start,
		LineEnd:     end,
		Content:     content,
		Checksum:    hex.EncodeToString(sum[:]),
	}
}
