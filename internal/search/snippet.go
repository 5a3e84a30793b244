package search

import (
	"strings"

	"github.com/blz-dev/blz/internal/lineindex"
)

// Snippet renders up to 3 lines of content (one before the first
// non-blank line, that line, one after) truncated to maxChars on a
// word boundary. blockLineStart is unused by the truncation itself but
// kept for callers that want absolute line numbers later; content is
// the full HeadingBlock text stored in the index.
func Snippet(content string, blockLineStart, maxChars int) string {
	if content == "" {
		return ""
	}
	idx := lineindex.New(content)
	total := idx.LineCount()

	matchLine := firstNonBlankLine(idx, total)
	start := matchLine - 1
	if start < 1 {
		start = 1
	}
	end := matchLine + 1
	if end > total {
		end = total
	}

	snippet := strings.TrimRight(idx.Lines(start, end), "\n")
	return truncate(snippet, maxChars)
}

func firstNonBlankLine(idx *lineindex.Index, total int) int {
	for n := 1; n <= total; n++ {
		if strings.TrimSpace(idx.Lines(n, n)) != "" {
			return n
		}
	}
	return 1
}

// truncate bounds s to maxChars, breaking on the last word boundary
// inside the limit rather than mid-word.
func truncate(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := maxChars
	for cut > 0 && !isWordBoundary(rune(s[cut])) {
		cut--
	}
	if cut == 0 {
		cut = maxChars
	}
	return strings.TrimRight(s[:cut], " \n\t") + "…"
}

func isWordBoundary(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
