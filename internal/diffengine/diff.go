// Package diffengine computes unified diffs between document versions,
// intersects changed line ranges with heading spans to produce
// changed_sections, and remaps anchors across a version transition.
package diffengine

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/mdparse"
)

// ChangedSection names one heading whose span overlaps a diff hunk.
type ChangedSection struct {
	HeadingPath string
	Anchor      string
	LineStart   int
	LineEnd     int
}

// DiffResult is the output of Diff.
type DiffResult struct {
	UnifiedDiff     string
	ChangedSections []ChangedSection
}

// Diff computes a line-level unified diff between prevText and
// currText, then intersects the changed line ranges in currText with
// currHeadings to report which sections changed (spec §4.7).
func Diff(prevText, currText string, currHeadings []mdparse.Heading) (DiffResult, error) {
	a := difflib.SplitLines(prevText)
	b := difflib.SplitLines(currText)

	unified := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "previous",
		ToFile:   "current",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(unified)
	if err != nil {
		return DiffResult{}, ferr.Internal("failed to render unified diff", err)
	}

	matcher := difflib.NewMatcher(a, b)
	changedRanges := changedLineRanges(matcher.GetOpCodes())
	sections := intersectHeadings(changedRanges, currHeadings)

	return DiffResult{UnifiedDiff: text, ChangedSections: sections}, nil
}

// changedLineRanges converts non-equal opcodes (difflib's B indices
// are 0-based, half-open) into 1-based inclusive line ranges.
func changedLineRanges(ops []difflib.OpCode) []lineRange {
	var out []lineRange
	for _, op := range ops {
		if op.Tag == 'e' {
			continue
		}
		if op.J2 <= op.J1 {
			continue // pure deletion: nothing added in currText to attribute
		}
		out = append(out, lineRange{start: op.J1 + 1, end: op.J2})
	}
	return out
}

type lineRange struct{ start, end int }

func (r lineRange) overlaps(start, end int) bool {
	return r.start <= end && start <= r.end
}

// intersectHeadings reports every heading whose [LineStart,LineEnd]
// span overlaps at least one changed range, in document order.
func intersectHeadings(changed []lineRange, headings []mdparse.Heading) []ChangedSection {
	var out []ChangedSection
	for _, h := range headings {
		for _, r := range changed {
			if r.overlaps(h.LineStart, h.LineEnd) {
				out = append(out, ChangedSection{
					HeadingPath: joinPath(h.Path),
					Anchor:      h.Anchor,
					LineStart:   h.LineStart,
					LineEnd:     h.LineEnd,
				})
				break
			}
		}
	}
	return out
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " > "
		}
		out += p
	}
	return out
}
