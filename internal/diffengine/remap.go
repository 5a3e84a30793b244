package diffengine

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/blz-dev/blz/internal/anchor"
	"github.com/blz-dev/blz/internal/mdparse"
)

// RemapResult is the outcome of reconciling a source's anchors across
// a version transition (spec §4.7/§4.8).
type RemapResult struct {
	Map     map[string]*anchor.Entry // anchor -> new range, nil if removed
	Moved   []MovedAnchor
	Added   []string
	Removed []string
}

// MovedAnchor records a renamed heading: the same logical section
// under a new anchor.
type MovedAnchor struct {
	OldAnchor string
	NewAnchor string
}

// RenameThreshold bounds how much of a heading path may differ (as a
// fraction of the longer path's rune length) before two headings are
// no longer treated as the same section renamed (Open Question
// decision, SPEC_FULL.md §9): 0.2.
const RenameThreshold = 0.2

// Remap reconciles prevAnchors (the previous committed AnchorMap)
// against currHeadings (the freshly parsed heading set), using the
// package default RenameThreshold. Every prior anchor resolves to
// exactly one of: still present (mapped to its current range), moved
// (renamed: a current heading at the same path depth whose path is
// within the edit-distance threshold), or removed. Document position is
// not compared when classifying a rename.
func Remap(prevAnchors anchor.Map, currHeadings []mdparse.Heading) RemapResult {
	return RemapWithThreshold(prevAnchors, currHeadings, RenameThreshold)
}

// RemapWithThreshold is Remap with the rename edit-distance threshold
// as an explicit parameter, letting a caller wire this through its own
// configuration surface (the engine passes EngineConfig.RenameThreshold).
func RemapWithThreshold(prevAnchors anchor.Map, currHeadings []mdparse.Heading, threshold float64) RemapResult {
	curr := anchor.Build(toHeadingLike(currHeadings))

	result := RemapResult{Map: make(map[string]*anchor.Entry)}

	matchedCurr := make(map[string]bool)

	for prevAnchorID, prevEntry := range prevAnchors {
		if currEntry, ok := curr[prevAnchorID]; ok {
			e := currEntry
			result.Map[prevAnchorID] = &e
			matchedCurr[prevAnchorID] = true
			continue
		}

		if newID, ok := findRename(prevAnchorID, prevEntry, currHeadings, matchedCurr, threshold); ok {
			e := curr[newID]
			result.Map[prevAnchorID] = &e
			result.Moved = append(result.Moved, MovedAnchor{OldAnchor: prevAnchorID, NewAnchor: newID})
			matchedCurr[newID] = true
			continue
		}

		result.Map[prevAnchorID] = nil
		result.Removed = append(result.Removed, prevAnchorID)
	}

	for id := range curr {
		if !matchedCurr[id] {
			if _, wasPrev := prevAnchors[id]; !wasPrev {
				result.Added = append(result.Added, id)
			}
		}
	}

	return result
}

// findRename looks for a heading in currHeadings at the same level
// whose heading path is within threshold edit distance of prevEntry's
// path, and that hasn't already been claimed by another prior anchor.
func findRename(prevAnchorID string, prevEntry anchor.Entry, currHeadings []mdparse.Heading, claimed map[string]bool, threshold float64) (string, bool) {
	prevPath := strings.Join(prevEntry.HeadingPath, " > ")
	prevLevel := len(prevEntry.HeadingPath)

	best := ""
	bestDist := -1
	for _, h := range currHeadings {
		if claimed[h.Anchor] || len(h.Path) != prevLevel {
			continue
		}
		currPath := strings.Join(h.Path, " > ")
		dist := levenshtein.ComputeDistance(prevPath, currPath)

		longer := len([]rune(prevPath))
		if l := len([]rune(currPath)); l > longer {
			longer = l
		}
		if longer == 0 {
			continue
		}
		if float64(dist)/float64(longer) > threshold {
			continue
		}
		if bestDist == -1 || dist < bestDist {
			best, bestDist = h.Anchor, dist
		}
	}
	if best == "" {
		return "", false
	}
	_ = prevAnchorID
	return best, true
}

func toHeadingLike(headings []mdparse.Heading) []anchor.HeadingLike {
	out := make([]anchor.HeadingLike, len(headings))
	for i, h := range headings {
		out[i] = h
	}
	return out
}
