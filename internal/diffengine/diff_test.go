package diffengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blz-dev/blz/internal/mdparse"
)

func TestDiff_ReportsChangedHeadingSection(t *testing.T) {
	prev := "# Bun\n## Install\nold instructions\n## CLI\nflags here\n"
	curr := "# Bun\n## Install\nnew instructions\n## CLI\nflags here\n"

	result := mdparse.Parse(curr)
	diff, err := Diff(prev, curr, result.Headings)
	require.NoError(t, err)

	require.NotEmpty(t, diff.ChangedSections)
	assert.Contains(t, diff.UnifiedDiff, "-old instructions")
	assert.Contains(t, diff.UnifiedDiff, "+new instructions")

	found := false
	for _, s := range diff.ChangedSections {
		if s.Anchor == "bun-install" {
			found = true
		}
	}
	assert.True(t, found, "expected the Install section to be reported changed")
}

func TestDiff_NoChangesProducesNoSections(t *testing.T) {
	text := "# Bun\n## Install\nsame\n"
	result := mdparse.Parse(text)
	diff, err := Diff(text, text, result.Headings)
	require.NoError(t, err)
	assert.Empty(t, diff.ChangedSections)
}

func TestDiff_AdditionOnlyTouchesNewSection(t *testing.T) {
	prev := "# Bun\n## Install\ninstructions\n"
	curr := "# Bun\n## Install\ninstructions\n## New Section\nadded content\n"

	result := mdparse.Parse(curr)
	diff, err := Diff(prev, curr, result.Headings)
	require.NoError(t, err)

	for _, s := range diff.ChangedSections {
		assert.NotEqual(t, "bun-install", s.Anchor)
	}
}
