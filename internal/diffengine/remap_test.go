package diffengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blz-dev/blz/internal/anchor"
	"github.com/blz-dev/blz/internal/mdparse"
)

func TestRemap_UnchangedAnchorStaysMapped(t *testing.T) {
	prev := mdparse.Parse("# Bun\n## Install\ntext\n")
	curr := mdparse.Parse("# Bun\n## Install\ntext\nextra\n")

	prevAnchors := anchor.Build(toHeadingLike(prev.Headings))
	result := Remap(prevAnchors, curr.Headings)

	entry, ok := result.Map["bun-install"]
	require.True(t, ok)
	require.NotNil(t, entry)
	assert.Empty(t, result.Removed)
}

func TestRemap_RemovedHeadingReportsRemoval(t *testing.T) {
	prev := mdparse.Parse("# Bun\n## Install\ntext\n## Deprecated\nold\n")
	curr := mdparse.Parse("# Bun\n## Install\ntext\n")

	prevAnchors := anchor.Build(toHeadingLike(prev.Headings))
	result := Remap(prevAnchors, curr.Headings)

	assert.Contains(t, result.Removed, "bun-deprecated")
}

func TestRemap_AddedHeadingReportsAddition(t *testing.T) {
	prev := mdparse.Parse("# Bun\n## Install\ntext\n")
	curr := mdparse.Parse("# Bun\n## Install\ntext\n## Flags\nnew\n")

	prevAnchors := anchor.Build(toHeadingLike(prev.Headings))
	result := Remap(prevAnchors, curr.Headings)

	assert.Contains(t, result.Added, "bun-flags")
}

func TestRemap_RenamedHeadingIsTrackedAsMoved(t *testing.T) {
	prev := mdparse.Parse("# Bun\n## Installing\ntext\n")
	curr := mdparse.Parse("# Bun\n## Install\ntext\n")

	prevAnchors := anchor.Build(toHeadingLike(prev.Headings))
	result := Remap(prevAnchors, curr.Headings)

	require.Len(t, result.Moved, 1)
	assert.Equal(t, "bun-installing", result.Moved[0].OldAnchor)
	assert.Equal(t, "bun-install", result.Moved[0].NewAnchor)
	assert.Empty(t, result.Removed)
}

func TestRemap_UnrelatedRenameBeyondThresholdIsRemovedAndAdded(t *testing.T) {
	prev := mdparse.Parse("# Bun\n## Install\ntext\n")
	curr := mdparse.Parse("# Bun\n## Completely Different Topic\ntext\n")

	prevAnchors := anchor.Build(toHeadingLike(prev.Headings))
	result := Remap(prevAnchors, curr.Headings)

	assert.Contains(t, result.Removed, "bun-install")
	assert.Contains(t, result.Added, "bun-completely-different-topic")
}
