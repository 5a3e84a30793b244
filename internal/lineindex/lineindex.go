// Package lineindex builds a byte-offset index over a text buffer so
// callers can slice exact 1-based inclusive line ranges without
// rescanning the buffer on every lookup -- the same offset bookkeeping
// the heading-block builder and diff engine both need, factored out
// once instead of reimplemented per caller.
package lineindex

import "strings"

// Index maps 1-based line numbers to byte offsets within a fixed buffer.
type Index struct {
	text    string
	offsets []int // offsets[i] is the byte offset where line i+1 starts
}

// New builds an Index over text. Lines are split on "\n"; a trailing
// newline does not produce a phantom final empty line, matching how
// line numbers are reported elsewhere in the pipeline.
func New(text string) *Index {
	offsets := make([]int, 0, strings.Count(text, "\n")+1)
	offsets = append(offsets, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			offsets = append(offsets, i+1)
		}
	}
	return &Index{text: text, offsets: offsets}
}

// LineCount returns the number of lines in the buffer.
func (idx *Index) LineCount() int {
	return len(idx.offsets)
}

// Offsets returns a copy of the line-start byte offsets, one per line.
func (idx *Index) Offsets() []int {
	out := make([]int, len(idx.offsets))
	copy(out, idx.offsets)
	return out
}

// ByteOffset returns the byte offset at which 1-based line n starts.
// Returns -1 if n is out of range.
func (idx *Index) ByteOffset(n int) int {
	if n < 1 || n > len(idx.offsets) {
		return -1
	}
	return idx.offsets[n-1]
}

// LineAt returns the 0-based index into offsets for the line containing
// byte offset b, via binary search.
func (idx *Index) lineAt(b int) int {
	lo, hi := 0, len(idx.offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.offsets[mid] <= b {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LineNumber returns the 1-based line number containing byte offset b.
func (idx *Index) LineNumber(b int) int {
	if b < 0 {
		b = 0
	}
	if b > len(idx.text) {
		b = len(idx.text)
	}
	return idx.lineAt(b) + 1
}

// Lines returns the text spanning 1-based inclusive line range
// [start, end]. Out-of-range bounds are clamped to the buffer's extent;
// an empty string is returned if start > end after clamping.
func (idx *Index) Lines(start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(idx.offsets) {
		end = len(idx.offsets)
	}
	if start > end {
		return ""
	}

	from := idx.offsets[start-1]
	var to int
	if end == len(idx.offsets) {
		to = len(idx.text)
	} else {
		to = idx.offsets[end] // include the newline ending line `end`
	}
	if to < from {
		to = from
	}
	return idx.text[from:to]
}

// Range describes a 1-based inclusive line span.
type Range struct {
	Start int
	End   int
}

// Len reports how many lines the range covers.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Overlaps reports whether r and o share at least one line.
func (r Range) Overlaps(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Merge returns the smallest Range covering both r and o. Callers
// should only merge ranges known to overlap or be adjacent; Merge does
// not itself check that.
func (r Range) Merge(o Range) Range {
	m := r
	if o.Start < m.Start {
		m.Start = o.Start
	}
	if o.End > m.End {
		m.End = o.End
	}
	return m
}
