package engine

import (
	"strconv"
	"time"

	"github.com/blz-dev/blz/internal/anchor"
	"github.com/blz-dev/blz/internal/block"
	"github.com/blz-dev/blz/internal/config"
	"github.com/blz-dev/blz/internal/index"
	"github.com/blz-dev/blz/internal/lineindex"
	"github.com/blz-dev/blz/internal/mdparse"
	"github.com/blz-dev/blz/internal/storage"
)

// pipelineResult is everything derived from one parse-and-index pass
// over a fetched document, shared by Add and Update.
type pipelineResult struct {
	meta storage.Meta
	docs []index.Document
}

// documentPath is the fixed filename every citation's "file" component
// resolves to within a source (spec §4.6: llms.txt at the source root).
const documentPath = "llms.txt"

// runPipeline takes text and its already-parsed headings, slices the
// text into HeadingBlocks, and assembles the llms.json metadata and index documents, in the
// same sequence for both Add and Update.
func runPipeline(alias, text string, parsed mdparse.Result, defaults config.Defaults, source storage.SourceMeta) pipelineResult {
	idx := lineindex.New(text)

	blocks := block.Build(alias, documentPath, parsed.Headings, idx, block.Options{
		MaxHeadingBlockLines: defaults.MaxHeadingBlockLines,
	})

	docs := make([]index.Document, len(blocks))
	for i, b := range blocks {
		docs[i] = index.Document{
			ID:          alias + "/" + b.Anchor + "@L" + strconv.Itoa(b.LineStart),
			Alias:       b.Alias,
			Path:        b.Path,
			HeadingPath: joinHeadingPath(b.HeadingPath),
			Content:     b.Content,
			Anchor:      b.Anchor,
			LineStart:   b.LineStart,
			LineEnd:     b.LineEnd,
		}
	}

	anchors := anchor.Build(headingLikes(parsed.Headings))
	anchorMeta := make(map[string]storage.AnchorMeta, len(anchors))
	for id, e := range anchors {
		anchorMeta[id] = storage.AnchorMeta{
			LineStart:   e.LineStart,
			LineEnd:     e.LineEnd,
			HeadingPath: e.HeadingPath,
		}
	}

	meta := storage.Meta{
		Alias:       alias,
		Source:      source,
		TOC:         buildTOC(parsed.Headings),
		LineIndex:   storage.LineIndexMeta{TotalLines: parsed.TotalLines},
		Diagnostics: buildDiagnostics(parsed.Diagnostics),
		Anchors:     anchorMeta,
	}

	return pipelineResult{meta: meta, docs: docs}
}

func headingLikes(headings []mdparse.Heading) []anchor.HeadingLike {
	out := make([]anchor.HeadingLike, len(headings))
	for i, h := range headings {
		out[i] = h
	}
	return out
}

func joinHeadingPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " > "
		}
		out += p
	}
	return out
}

func buildDiagnostics(diags []mdparse.Diagnostic) []storage.DiagnosticMeta {
	out := make([]storage.DiagnosticMeta, len(diags))
	for i, d := range diags {
		out[i] = storage.DiagnosticMeta{
			Severity: string(d.Severity),
			Message:  d.Message,
			Line:     d.Line,
		}
	}
	return out
}

// buildTOC nests headings into a tree by path depth. Headings arrive in
// document order from mdparse, so a depth-tracked stack of pointers
// builds the forest in one pass.
func buildTOC(headings []mdparse.Heading) []storage.TOCEntry {
	var roots []storage.TOCEntry
	stack := []*storage.TOCEntry{}

	for _, h := range headings {
		entry := storage.TOCEntry{Title: h.Title, Anchor: h.Anchor, Level: h.Level}

		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, entry)
			stack = append(stack, &roots[len(roots)-1])
			continue
		}

		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, entry)
		stack = append(stack, &parent.Children[len(parent.Children)-1])
	}

	return roots
}

// toAnchorMap converts the persisted llms.json anchor table back into
// the anchor.Map shape diffengine.Remap expects.
func toAnchorMap(anchors map[string]storage.AnchorMeta) anchor.Map {
	out := make(anchor.Map, len(anchors))
	for id, a := range anchors {
		out[id] = anchor.Entry{
			LineStart:   a.LineStart,
			LineEnd:     a.LineEnd,
			HeadingPath: a.HeadingPath,
		}
	}
	return out
}

func sourceMetaFrom(url, etag, lastModified, sha string, fetchedAt time.Time) storage.SourceMeta {
	return storage.SourceMeta{
		URL:          url,
		ETag:         etag,
		LastModified: lastModified,
		FetchedAt:    fetchedAt.UTC().Format(time.RFC3339),
		SHA256:       sha,
	}
}
