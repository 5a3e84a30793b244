package search

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	bsearch "github.com/blevesearch/bleve/v2/search"
	"golang.org/x/sync/errgroup"

	"github.com/blz-dev/blz/internal/ferr"
	"github.com/blz-dev/blz/internal/index"
)

// maxConcurrentSourceSearches bounds how many source indexes a single
// Search call queries at once.
const maxConcurrentSourceSearches = 8

// ReaderSource supplies an open index.Reader for a single alias; the
// engine façade implements this against its Indexer + reader cache.
type ReaderSource interface {
	OpenReader(alias string) (*index.Reader, error)
	OpenAliases() []string
}

// LowQualityThreshold is the score below which Search augments results
// with heading-path suggestions (spec §4.5, Open Question decision:
// 0.2).
const LowQualityThreshold = 0.2

// Searcher runs compiled queries across one or more source indexes and
// merges hits with a deterministic tie-break.
type Searcher struct {
	sources          ReaderSource
	suggestThreshold float64
}

// New builds a Searcher over the given reader source, using the
// default low-quality suggestion threshold (0.2).
func New(sources ReaderSource) *Searcher {
	return NewWithThreshold(sources, LowQualityThreshold)
}

// NewWithThreshold builds a Searcher whose suggestion fallback triggers
// below the given score threshold instead of the package default,
// letting a caller wire this through its own configuration surface
// (the engine passes EngineConfig.LowQualitySuggestionThreshold).
func NewWithThreshold(sources ReaderSource, threshold float64) *Searcher {
	return &Searcher{sources: sources, suggestThreshold: threshold}
}

// Search executes req and returns a paginated, ranked Response.
func (s *Searcher) Search(req Request) (*Response, error) {
	start := time.Now()

	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	bquery, err := Compile(req.Query, req.Filter.HeadingOnly)
	if err != nil {
		return nil, WrapInvalid(err)
	}

	aliases := req.Filter.Aliases
	if len(aliases) == 0 {
		aliases = s.sources.OpenAliases()
	}

	var (
		mu  sync.Mutex
		all []Hit
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentSourceSearches)

	for _, alias := range aliases {
		alias := alias
		g.Go(func() error {
			reader, err := s.sources.OpenReader(alias)
			if err != nil {
				return nil // source unhealthy/missing: excluded, not fatal (spec §7)
			}

			sr := bleve.NewSearchRequest(bquery)
			sr.Size = defaultPageLimit
			sr.Fields = []string{"content", "heading_path", "alias", "path", "anchor", "line_start", "line_end"}

			result, err := reader.Bleve().Search(sr)
			if err != nil {
				// one source's index error doesn't fail the whole search
				// (spec §7): it's just excluded from this round's results.
				return nil
			}

			hits := make([]Hit, 0, len(result.Hits))
			for _, hit := range result.Hits {
				hits = append(hits, toHit(alias, hit, req.MaxChars))
			}

			mu.Lock()
			all = append(all, hits...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // never non-nil: every branch above returns nil

	sort.SliceStable(all, func(i, j int) bool { return lessHit(all[i], all[j]) })

	resp := paginate(req, all)
	resp.Query = req.Query
	resp.SearchTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	resp.Sources = aliases

	if len(all) < 3 || (len(all) > 0 && all[0].Score < s.suggestThreshold) {
		resp.Suggestions = s.suggest(aliases, req.Query)
	}

	return resp, nil
}

func validateRequest(req *Request) error {
	if req.Page < 1 {
		return ferr.Validation(ferr.ErrCodeInvalidQuery, "page must be >= 1", nil)
	}
	if req.Limit < 1 || req.Limit > 1000 {
		return ferr.Validation(ferr.ErrCodeInvalidQuery, "limit must be between 1 and 1000", nil)
	}
	if req.MaxChars == 0 {
		req.MaxChars = defaultMaxChars
	}
	if req.MaxChars < minMaxChars || req.MaxChars > maxMaxChars {
		return ferr.Validation(ferr.ErrCodeInvalidQuery, "max_chars must be between 50 and 1000", nil)
	}
	return nil
}

func toHit(alias string, hit *bsearch.DocumentMatch, maxChars int) Hit {
	content, _ := hit.Fields["content"].(string)
	headingPath, _ := hit.Fields["heading_path"].(string)
	path, _ := hit.Fields["path"].(string)
	anchor, _ := hit.Fields["anchor"].(string)
	lineStart := intField(hit.Fields["line_start"])
	lineEnd := intField(hit.Fields["line_end"])

	return Hit{
		Alias:       alias,
		Path:        path,
		HeadingPath: headingPath,
		LineStart:   lineStart,
		LineEnd:     lineEnd,
		Anchor:      anchor,
		Snippet:     Snippet(content, lineStart, maxChars),
		Score:       hit.Score,
	}
}

func intField(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// lessHit implements the spec's deterministic ordering: score desc,
// then lexicographic by (alias, path, line_start, line_end, anchor).
func lessHit(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Alias != b.Alias {
		return a.Alias < b.Alias
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.LineStart != b.LineStart {
		return a.LineStart < b.LineStart
	}
	if a.LineEnd != b.LineEnd {
		return a.LineEnd < b.LineEnd
	}
	return a.Anchor < b.Anchor
}

func paginate(req Request, all []Hit) *Response {
	total := len(all)
	totalPages := (total + req.Limit - 1) / req.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	from := (req.Page - 1) * req.Limit
	var page []Hit
	if from < total {
		to := from + req.Limit
		if to > total {
			to = total
		}
		page = all[from:to]
	}

	return &Response{
		TotalResults: total,
		Page:         req.Page,
		TotalPages:   totalPages,
		Results:      page,
	}
}

// suggest returns up to 5 nearest headings by path-prefix match across
// the given aliases, used when the real result set is thin or
// low-scoring.
func (s *Searcher) suggest(aliases []string, rawQuery string) []Suggestion {
	fields := strings.Fields(rawQuery)
	if len(fields) == 0 {
		return nil
	}
	prefix := strings.ToLower(strings.TrimPrefix(fields[0], "+"))

	var out []Suggestion
	for _, alias := range aliases {
		reader, err := s.sources.OpenReader(alias)
		if err != nil {
			continue
		}
		q := bleve.NewMatchAllQuery()
		sr := bleve.NewSearchRequest(q)
		sr.Size = defaultPageLimit
		sr.Fields = []string{"heading_path", "anchor"}
		result, err := reader.Bleve().Search(sr)
		if err != nil {
			continue
		}
		for _, hit := range result.Hits {
			hp, _ := hit.Fields["heading_path"].(string)
			if strings.HasPrefix(strings.ToLower(hp), prefix) {
				anchor, _ := hit.Fields["anchor"].(string)
				out = append(out, Suggestion{Alias: alias, HeadingPath: hp, Anchor: anchor})
				if len(out) >= 5 {
					return out
				}
			}
		}
	}
	return out
}
