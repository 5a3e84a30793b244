package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	"github.com/blz-dev/blz/internal/ferr"
)

type atomKind int

const (
	atomTerm atomKind = iota
	atomPhrase
)

type atom struct {
	kind     atomKind
	text     string
	required bool
}

type opKind int

const (
	opOr opKind = iota
	opAnd
)

type lexeme struct {
	isOp bool
	op   opKind
	atom atom
}

// ParseError reports a grammar error found after lexing. Position is the
// index of the offending token among the lexed terms and operators, not
// a character offset into the raw query string.
type ParseError struct {
	Message  string
	Position int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid query at position %d: %s", e.Position, e.Message)
}

// Compile turns the raw query grammar (space-separated terms OR by
// default, "quoted phrases", +required terms, explicit AND/OR with AND
// binding tighter) into a Bleve query restricted to the given fields.
func Compile(raw string, headingOnly bool) (bq.Query, error) {
	lexemes, err := lex(raw)
	if err != nil {
		return nil, err
	}
	if len(lexemes) == 0 {
		return nil, &ParseError{Message: "empty query", Position: 0}
	}

	var required []atom
	var optional []lexeme
	for _, lx := range lexemes {
		if !lx.isOp && lx.atom.required {
			required = append(required, lx.atom)
			continue
		}
		if lx.isOp && (len(optional) == 0 || optional[len(optional)-1].isOp) {
			// An operator left without a left-hand term by a pulled-out
			// required atom: drop it, or let it replace the one before it.
			if len(optional) > 0 {
				optional[len(optional)-1] = lx
			}
			continue
		}
		optional = append(optional, lx)
	}
	if len(optional) > 0 && optional[len(optional)-1].isOp {
		optional = optional[:len(optional)-1]
	}

	var clauses []bq.Query
	if len(optional) > 0 {
		q, err := parseOr(optional, headingOnly)
		if err != nil {
			return nil, err
		}
		if q != nil {
			clauses = append(clauses, q)
		}
	}

	if len(required) == 0 && len(clauses) == 1 {
		return clauses[0], nil
	}

	b := bleve.NewBooleanQuery()
	for _, a := range required {
		b.AddMust(atomQuery(a, headingOnly))
	}
	for _, c := range clauses {
		b.AddShould(c)
	}
	if len(required) > 0 {
		b.SetMinShould(0)
	}
	return b, nil
}

// parseOr consumes a sequence of atoms/operators at OR precedence: a
// run of atoms joined by AND binds into one conjunction before being
// ORed with its neighbors.
func parseOr(lexemes []lexeme, headingOnly bool) (bq.Query, error) {
	var groups []bq.Query
	i := 0
	for i < len(lexemes) {
		group, next, err := parseAnd(lexemes, i, headingOnly)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
		i = next
		if i < len(lexemes) && lexemes[i].isOp && lexemes[i].op == opOr {
			i++
		}
	}
	if len(groups) == 1 {
		return groups[0], nil
	}
	return bleve.NewDisjunctionQuery(groups...), nil
}

// parseAnd consumes atoms from position i joined by explicit AND
// operators, stopping at an OR operator or end of input.
func parseAnd(lexemes []lexeme, i int, headingOnly bool) (bq.Query, int, error) {
	if i >= len(lexemes) || lexemes[i].isOp {
		return nil, i, &ParseError{Message: "expected a term", Position: i}
	}
	var conj []bq.Query
	conj = append(conj, atomQuery(lexemes[i].atom, headingOnly))
	i++
	for i < len(lexemes) && lexemes[i].isOp && lexemes[i].op == opAnd {
		i++ // consume AND
		if i >= len(lexemes) || lexemes[i].isOp {
			return nil, i, &ParseError{Message: "expected a term after AND", Position: i}
		}
		conj = append(conj, atomQuery(lexemes[i].atom, headingOnly))
		i++
	}
	if len(conj) == 1 {
		return conj[0], i, nil
	}
	return bleve.NewConjunctionQuery(conj...), i, nil
}

func atomQuery(a atom, headingOnly bool) bq.Query {
	return fieldWeightedQuery(a.text, a.kind == atomPhrase, headingOnly)
}

func fieldWeightedQuery(text string, phrase, headingOnly bool) bq.Query {
	headingQ := leafQuery(text, phrase, fieldHeadingPathName)
	headingQ.SetBoost(headingFieldWeight)
	if headingOnly {
		return headingQ
	}

	contentQ := leafQuery(text, phrase, fieldContentName)
	contentQ.SetBoost(contentFieldWeight)

	return bleve.NewDisjunctionQuery(headingQ, contentQ)
}

type boostableQuery interface {
	bq.Query
	SetBoost(b float64)
}

func leafQuery(text string, phrase bool, field string) boostableQuery {
	if phrase {
		q := bleve.NewMatchPhraseQuery(text)
		q.SetField(field)
		return q
	}
	q := bleve.NewMatchQuery(text)
	q.SetField(field)
	return q
}

const (
	fieldContentName     = "content"
	fieldHeadingPathName = "heading_path"
	headingFieldWeight   = 2.0
	contentFieldWeight   = 1.0
)

// lex tokenizes raw into atoms and AND/OR operators, honoring quoted
// phrases and leading '+' for required terms.
func lex(raw string) ([]lexeme, error) {
	var out []lexeme
	runes := []rune(raw)
	n := len(runes)
	i := 0
	lastWasAtom := false

	for i < n {
		r := runes[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}

		required := false
		if r == '+' {
			required = true
			i++
			if i >= n {
				return nil, &ferrParseErr{pos: i}
			}
			r = runes[i]
		}

		if r == '"' {
			start := i + 1
			end := -1
			for j := start; j < n; j++ {
				if runes[j] == '"' {
					end = j
					break
				}
			}
			if end == -1 {
				return nil, &ferrParseErr{pos: start}
			}
			text := string(runes[start:end])
			if strings.TrimSpace(text) == "" {
				return nil, &ferrParseErr{pos: start}
			}
			if lastWasAtom {
				out = append(out, lexeme{isOp: true, op: opOr})
			}
			out = append(out, lexeme{atom: atom{kind: atomPhrase, text: text, required: required}})
			lastWasAtom = true
			i = end + 1
			continue
		}

		start := i
		for i < n && !unicode.IsSpace(runes[i]) {
			i++
		}
		word := string(runes[start:i])

		upper := strings.ToUpper(word)
		if !required && lastWasAtom && (upper == "AND" || upper == "OR") {
			op := opOr
			if upper == "AND" {
				op = opAnd
			}
			out = append(out, lexeme{isOp: true, op: op})
			lastWasAtom = false
			continue
		}

		if lastWasAtom {
			out = append(out, lexeme{isOp: true, op: opOr})
		}
		out = append(out, lexeme{atom: atom{kind: atomTerm, text: word, required: required}})
		lastWasAtom = true
	}

	if len(out) > 0 && out[len(out)-1].isOp {
		return nil, &ferrParseErr{pos: n}
	}

	return out, nil
}

type ferrParseErr struct{ pos int }

func (e *ferrParseErr) Error() string { return fmt.Sprintf("invalid query at position %d", e.pos) }

// WrapInvalid turns a parse error into the spec's query_invalid error
// kind, carrying the offending position.
func WrapInvalid(err error) error {
	if err == nil {
		return nil
	}
	pos := 0
	switch e := err.(type) {
	case *ParseError:
		pos = e.Position
	case *ferrParseErr:
		pos = e.pos
	}
	return ferr.Validation(ferr.ErrCodeInvalidQuery, err.Error(), nil).WithDetail("position", fmt.Sprintf("%d", pos))
}
