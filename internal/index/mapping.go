package index

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	proseTokenizerName = "blz_prose_tokenizer"
	proseAnalyzerName  = "blz_prose_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(proseTokenizerName, proseTokenizerConstructor)
}

// buildIndexMapping constructs the schema: two tokenized text fields,
// content and heading_path, both stored so the searcher can render
// snippets and breadcrumbs without a second read of llms.txt, plus
// unanalyzed stored fields for the citation metadata.
func buildIndexMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()

	if err := m.AddCustomAnalyzer(proseAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": proseTokenizerName,
		"token_filters": []string{
			lowercase.Name,
		},
	}); err != nil {
		return nil, err
	}
	m.DefaultAnalyzer = proseAnalyzerName

	doc := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = proseAnalyzerName
	contentField.Store = true
	contentField.IncludeTermVectors = true
	doc.AddFieldMappingsAt(fieldContent, contentField)

	headingField := bleve.NewTextFieldMapping()
	headingField.Analyzer = proseAnalyzerName
	headingField.Store = true
	headingField.IncludeTermVectors = true
	doc.AddFieldMappingsAt(fieldHeadingPath, headingField)

	keyword := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = "keyword"
		f.Store = true
		f.Index = false
		return f
	}
	doc.AddFieldMappingsAt(fieldAlias, keyword())
	doc.AddFieldMappingsAt(fieldPath, keyword())
	doc.AddFieldMappingsAt(fieldAnchor, keyword())

	numeric := func() *mapping.FieldMapping {
		f := bleve.NewNumericFieldMapping()
		f.Store = true
		f.Index = false
		return f
	}
	doc.AddFieldMappingsAt(fieldLineStart, numeric())
	doc.AddFieldMappingsAt(fieldLineEnd, numeric())

	m.DefaultMapping = doc
	return m, nil
}

// proseTokenizerConstructor builds a tokenizer that splits on
// whitespace/punctuation and additionally breaks camelCase/snake_case
// identifiers, so fenced code samples inside documentation are
// searchable by their component words too.
func proseTokenizerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
	return &proseTokenizer{}, nil
}

var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

type proseTokenizer struct{}

func (proseTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	var stream analysis.TokenStream
	pos := 1

	for _, loc := range wordRegex.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		for _, sub := range splitIdentifier(word) {
			if len(sub) == 0 {
				continue
			}
			stream = append(stream, &analysis.Token{
				Term:     []byte(sub),
				Start:    loc[0],
				End:      loc[1],
				Position: pos,
				Type:     analysis.AlphaNumeric,
			})
			pos++
		}
	}
	return stream
}

// splitIdentifier breaks snake_case and camelCase/PascalCase tokens
// into their component words; ordinary prose words pass through
// unchanged.
func splitIdentifier(word string) []string {
	if strings.Contains(word, "_") {
		var out []string
		for _, part := range strings.Split(word, "_") {
			out = append(out, splitCamel(part)...)
		}
		return out
	}
	return splitCamel(word)
}

func splitCamel(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	var cur []rune
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				out = append(out, string(cur))
				cur = nil
			}
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}
