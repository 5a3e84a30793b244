package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnippet_ReturnsAtMostThreeLines(t *testing.T) {
	content := "before line\nmatch line\nafter line\nextra line\n"
	snippet := Snippet(content, 1, 200)
	assert.LessOrEqual(t, strings.Count(snippet, "\n")+1, 3)
}

func TestSnippet_EmptyContentReturnsEmptyString(t *testing.T) {
	assert.Equal(t, "", Snippet("", 1, 200))
}

func TestSnippet_TruncatesOnWordBoundary(t *testing.T) {
	content := strings.Repeat("word ", 100)
	snippet := Snippet(content, 1, 50)
	assert.LessOrEqual(t, len(snippet), 53) // 50 + ellipsis (3-byte rune)
	assert.NotContains(t, snippet, "word…word")
}

func TestSnippet_SkipsLeadingBlankLines(t *testing.T) {
	content := "\n\nreal content here\nmore\n"
	snippet := Snippet(content, 1, 200)
	assert.Contains(t, snippet, "real content here")
}
