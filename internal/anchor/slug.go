// Package anchor computes the stable per-heading identifiers ("anchors")
// used to make citations survive upstream edits, and the AnchorMap that
// resolves them to line ranges for a committed source version.
package anchor

import (
	"strconv"
	"strings"
)

// Slug lowercases s, collapses runs of spaces, tabs, newlines, hyphens
// and underscores to a single hyphen, drops every other rune that isn't
// ASCII alphanumeric, and trims leading and trailing hyphens.
func Slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r == ' ', r == '\t', r == '\n', r == '-', r == '_':
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		default:
			// dropped: punctuation, symbols, non-ASCII letters
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// PathAnchor computes the base anchor for a heading path, before
// collision disambiguation: each path segment is slugged, then segments
// are joined with "-".
func PathAnchor(path []string) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		if s := Slug(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

// Disambiguator assigns document-order-stable anchors, appending "-2",
// "-3", ... to any base anchor seen more than once.
type Disambiguator struct {
	counts map[string]int
}

// NewDisambiguator returns a ready-to-use Disambiguator.
func NewDisambiguator() *Disambiguator {
	return &Disambiguator{counts: make(map[string]int)}
}

// Assign returns the final anchor for base, disambiguating it against
// every prior call with the same base in this Disambiguator's lifetime.
func (d *Disambiguator) Assign(base string) string {
	d.counts[base]++
	n := d.counts[base]
	if n == 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
