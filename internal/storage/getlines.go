package storage

import (
	"sort"

	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/lineindex"
)

// ResolvedRange is one merged, context-expanded line range with its
// rendered text.
type ResolvedRange struct {
	Start   int
	End     int
	Content string
}

// GetLines reads ranges from alias's current document, expands each by
// context lines (clamped to [1, total_lines]), merges overlapping or
// adjacent ranges, and returns the merged, content-filled result in
// ascending order (spec §4.6).
func (s *Storage) GetLines(alias string, ranges []lineindex.Range, context int) ([]ResolvedRange, error) {
	layout := NewLayout(s.dataRoot, alias)
	text, err := readText(layout.CurrentText())
	if err != nil {
		return nil, err
	}
	idx := lineindex.New(text)
	total := idx.LineCount()

	if len(ranges) == 0 {
		return nil, ferr.Validation(ferr.ErrCodeInvalidRange, "no ranges given", nil)
	}

	expanded := make([]lineindex.Range, len(ranges))
	for i, r := range ranges {
		start := r.Start - context
		end := r.End + context
		if start < 1 {
			start = 1
		}
		if end > total {
			end = total
		}
		if start > end {
			return nil, ferr.Validation(ferr.ErrCodeInvalidRange, "range resolves to an empty span", nil)
		}
		expanded[i] = lineindex.Range{Start: start, End: end}
	}

	merged := mergeRanges(expanded)

	out := make([]ResolvedRange, len(merged))
	for i, r := range merged {
		out[i] = ResolvedRange{Start: r.Start, End: r.End, Content: idx.Lines(r.Start, r.End)}
	}
	return out, nil
}

// mergeRanges sorts and coalesces overlapping or directly adjacent
// ranges into their minimal covering set.
func mergeRanges(ranges []lineindex.Range) []lineindex.Range {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]lineindex.Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []lineindex.Range{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
