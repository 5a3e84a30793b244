package mdparse

// Heading is one node of the forest a document's ATX/Setext headings
// form, in document order, with exact 1-based line and byte ranges.
type Heading struct {
	Level     int
	Title     string
	Path      []string
	LineStart int
	LineEnd   int
	ByteStart int
	ByteEnd   int
	Anchor    string
}

// AnchorValue implements anchor.HeadingLike.
func (h Heading) AnchorValue() string { return h.Anchor }

// HeadingRange implements anchor.HeadingLike.
func (h Heading) HeadingRange() (start, end int) { return h.LineStart, h.LineEnd }

// HeadingPathValue implements anchor.HeadingLike.
func (h Heading) HeadingPathValue() []string { return h.Path }

// Severity classifies a Diagnostic.
type Severity string

const (
	SeverityWarn Severity = "warn"
	SeverityInfo Severity = "info"
)

// Diagnostic is a best-effort note about the input that doesn't stop
// parsing: parse never fails on malformed Markdown.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
}

// Result is everything Parse derives from a document's bytes.
type Result struct {
	Headings    []Heading
	LineOffsets []int
	TotalLines  int
	Diagnostics []Diagnostic
}
