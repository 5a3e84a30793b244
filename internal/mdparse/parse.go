// Package mdparse turns llms.txt-style Markdown bytes into a heading
// forest with exact line/byte ranges, never failing on malformed input:
// it always returns a best-effort structure plus diagnostics.
package mdparse

import (
	"regexp"
	"strings"

	"github.com/blz-dev/blz/internal/anchor"
	"github.com/blz-dev/blz/internal/lineindex"
)

var atxPattern = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)

const maxHeadingLevel = 6

// Parse builds a Result from text. Given identical bytes it returns an
// identical Result: headings, line offsets, and diagnostics are all
// derived by a single deterministic forward scan.
func Parse(text string) Result {
	idx := lineindex.New(text)
	lines := splitLines(text)

	raw := scanHeadings(lines)
	unterminatedFence := raw.unterminatedFence

	headings := assignRangesAndAnchors(raw.headings, idx, len(lines))

	diags := make([]Diagnostic, 0, 4)
	diags = append(diags, levelJumpDiagnostics(headings)...)
	if !hasH1(headings) {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarn,
			Message:  "document has no top-level (H1) heading",
			Line:     1,
		})
	}
	if unterminatedFence {
		diags = append(diags, Diagnostic{
			Severity: SeverityWarn,
			Message:  "unterminated code fence at end of document",
			Line:     len(lines),
		})
	}

	return Result{
		Headings:    headings,
		LineOffsets: idx.Offsets(),
		TotalLines:  idx.LineCount(),
		Diagnostics: diags,
	}
}

// splitLines splits on "\n" without synthesizing a trailing empty line
// for a buffer that already ends in "\n", matching lineindex.Index's
// line count.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

type rawHeading struct {
	level     int
	title     string
	startLine int // 1-based
}

type scanResult struct {
	headings          []rawHeading
	unterminatedFence bool
}

// fenceState tracks whether the scanner is inside a fenced code block,
// per the spec's simple state machine over ``` and ~~~ runs.
type fenceState struct {
	active bool
	char   byte
	length int
}

func (f *fenceState) consume(line string) {
	trimmed := strings.TrimLeft(line, " \t")
	run, ch := leadingFenceRun(trimmed)

	if !f.active {
		if run >= 3 {
			f.active = true
			f.char = ch
			f.length = run
		}
		return
	}

	if run >= f.length && ch == f.char {
		f.active = false
	}
}

func leadingFenceRun(s string) (int, byte) {
	if s == "" {
		return 0, 0
	}
	ch := s[0]
	if ch != '`' && ch != '~' {
		return 0, 0
	}
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n, ch
}

func scanHeadings(lines []string) scanResult {
	var result scanResult
	var fence fenceState

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		wasInFence := fence.active
		fence.consume(line)

		if wasInFence {
			continue
		}

		if m := atxPattern.FindStringSubmatch(line); m != nil {
			result.headings = append(result.headings, rawHeading{
				level:     len(m[1]),
				title:     strings.TrimSpace(m[2]),
				startLine: i + 1,
			})
			continue
		}

		if level, ok := setextLevel(line, i, lines, wasInFence); ok {
			title := strings.TrimSpace(lines[i-1])
			result.headings = append(result.headings, rawHeading{
				level:     level,
				title:     title,
				startLine: i, // the heading's line is the underline's previous line
			})
		}
	}

	result.unterminatedFence = fence.active
	return result
}

// setextLevel reports whether lines[i] is a Setext underline for the
// non-blank, non-heading line immediately before it.
func setextLevel(line string, i int, lines []string, inFence bool) (int, bool) {
	if inFence || i == 0 {
		return 0, false
	}
	prev := lines[i-1]
	if strings.TrimSpace(prev) == "" {
		return 0, false
	}
	if atxPattern.MatchString(prev) {
		return 0, false
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0, false
	}
	switch {
	case strings.Count(trimmed, "=") == len(trimmed):
		return 1, true
	case len(trimmed) >= 2 && strings.Count(trimmed, "-") == len(trimmed):
		return 2, true
	default:
		return 0, false
	}
}

func hasH1(headings []Heading) bool {
	for _, h := range headings {
		if h.Level == 1 {
			return true
		}
	}
	return false
}

func levelJumpDiagnostics(headings []Heading) []Diagnostic {
	var diags []Diagnostic
	prevLevel := 0
	for _, h := range headings {
		if prevLevel > 0 && h.Level-prevLevel > 1 {
			diags = append(diags, Diagnostic{
				Severity: SeverityInfo,
				Message:  "heading level jumps from H" + levelDigit(prevLevel) + " to H" + levelDigit(h.Level),
				Line:     h.LineStart,
			})
		}
		prevLevel = h.Level
	}
	return diags
}

func levelDigit(level int) string {
	return string(rune('0' + level))
}

// assignRangesAndAnchors computes each heading's ancestor path,
// line_end, byte range, and final disambiguated anchor.
func assignRangesAndAnchors(raw []rawHeading, idx *lineindex.Index, totalLines int) []Heading {
	headings := make([]Heading, len(raw))
	var stack [maxHeadingLevel]string

	for i, r := range raw {
		stack[r.level-1] = r.title
		for lvl := r.level; lvl < maxHeadingLevel; lvl++ {
			stack[lvl] = ""
		}

		path := make([]string, 0, r.level)
		for lvl := 0; lvl < r.level; lvl++ {
			if stack[lvl] != "" {
				path = append(path, stack[lvl])
			}
		}

		headings[i] = Heading{
			Level:     r.level,
			Title:     r.title,
			Path:      path,
			LineStart: r.startLine,
		}
	}

	for i := range headings {
		end := totalLines
		for j := i + 1; j < len(headings); j++ {
			if headings[j].Level <= headings[i].Level {
				end = headings[j].LineStart - 1
				break
			}
		}
		headings[i].LineEnd = end
		headings[i].ByteStart = idx.ByteOffset(headings[i].LineStart)
		if end+1 <= totalLines {
			headings[i].ByteEnd = idx.ByteOffset(end+1) - 1
		} else {
			headings[i].ByteEnd = idx.ByteOffset(end) + len(idx.Lines(end, end))
		}
	}

	disambiguator := anchor.NewDisambiguator()
	for i := range headings {
		base := anchor.PathAnchor(headings[i].Path)
		headings[i].Anchor = disambiguator.Assign(base)
	}

	return headings
}
