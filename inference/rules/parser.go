package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/rdfsail/triple"
	"github.com/cayleygraph/rdfsail/voc"
)

var (
	ErrEmptyQuery   = errors.New("rules: empty query")
	ErrNotConstruct = errors.New("rules: only CONSTRUCT queries are supported")
)

// SyntaxError reports a malformed query.
type SyntaxError struct {
	Msg  string
	Near string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return "rules: " + e.Msg
	}
	return fmt.Sprintf("rules: %s near %q", e.Msg, e.Near)
}

var (
	prefixRe    = regexp.MustCompile(`(?i)PREFIX\s+([A-Za-z][\w.-]*)?:\s*<([^>]*)>`)
	constructRe = regexp.MustCompile(`(?i)^\s*CONSTRUCT\s*\{`)
	whereRe     = regexp.MustCompile(`(?i)^\s*(WHERE)?\s*\{`)
	filterRe    = regexp.MustCompile(`(?i)\bFILTER\s*\(`)
	unionRe     = regexp.MustCompile(`(?i)^\s*UNION\s*\{`)
	varRe       = regexp.MustCompile(`^[?$]([A-Za-z_]\w*)$`)
	numberRe    = regexp.MustCompile(`^[+-]?\d+$`)
	filterOpRe  = regexp.MustCompile(`^\s*([^\s=!]+)\s*(!=|=)\s*(\S+)\s*$`)
)

// Term is a constant value or a variable of a pattern.
type Term struct {
	Var   string
	Value quad.Value
}

func (t Term) IsVar() bool { return t.Var != "" }

func (t Term) String() string {
	if t.IsVar() {
		return "?" + t.Var
	}
	return triple.FormatTerm(t.Value)
}

// Pattern is a triple pattern.
type Pattern struct {
	Subject, Predicate, Object Term
}

func (p Pattern) String() string {
	return p.Subject.String() + " " + p.Predicate.String() + " " + p.Object.String() + " ."
}

// Filter compares two terms for equality or inequality.
type Filter struct {
	Left, Right Term
	Negate      bool
}

// Group is a group graph pattern: a basic graph pattern, nested UNION
// alternatives joined with it, and filters applied to the whole group.
type Group struct {
	Patterns []Pattern
	Unions   [][]*Group
	Filters  []Filter
}

// Query is a parsed CONSTRUCT query.
type Query struct {
	Prefixes map[string]string
	Template []Pattern
	Where    *Group
}

// Parse parses a CONSTRUCT query. Supported syntax: PREFIX declarations,
// the "a" keyword, prefixed names, <iri> and literal terms, blank nodes in
// the template, the ";" and "," abbreviations, nested groups joined with
// UNION and FILTER with "=" or "!=".
func Parse(query string) (*Query, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	q := &Query{Prefixes: make(map[string]string)}
	for _, m := range prefixRe.FindAllStringSubmatch(query, -1) {
		q.Prefixes[m[1]] = m[2]
	}
	rest := prefixRe.ReplaceAllString(query, "")
	loc := constructRe.FindStringIndex(rest)
	if loc == nil {
		return nil, ErrNotConstruct
	}
	body, rest, err := braced(rest, loc[1]-1)
	if err != nil {
		return nil, err
	}
	if q.Template, err = q.parsePatterns(body, true); err != nil {
		return nil, err
	}
	loc = whereRe.FindStringIndex(rest)
	if loc == nil {
		return nil, &SyntaxError{Msg: "missing WHERE clause", Near: rest}
	}
	body, rest, err = braced(rest, loc[1]-1)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, &SyntaxError{Msg: "unexpected input after WHERE clause", Near: rest}
	}
	if q.Where, err = q.parseGroup(body); err != nil {
		return nil, err
	}
	return q, nil
}

// braced returns the content between the brace at open and its matching
// brace, and the text after it.
func braced(s string, open int) (string, string, error) {
	depth := 0
	inIRI, inLit := false, false
	for i := open; i < len(s); i++ {
		ch := s[i]
		switch {
		case inLit:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inLit = false
			}
		case inIRI:
			if ch == '>' {
				inIRI = false
			}
		case ch == '"':
			inLit = true
		case ch == '<' && i+1 < len(s) && s[i+1] != ' ' && s[i+1] != '=':
			inIRI = true
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return s[open+1 : i], s[i+1:], nil
			}
		}
	}
	return "", "", &SyntaxError{Msg: "unbalanced braces", Near: s[open:]}
}

func (q *Query) parseGroup(body string) (*Group, error) {
	g := &Group{}
	var plain strings.Builder
	for {
		i := strings.IndexAny(body, "{\"<Ff")
		if i < 0 {
			plain.WriteString(body)
			break
		}
		switch body[i] {
		case '"', '<':
			// skip over a literal or IRI so braces inside are ignored
			end := skipTerm(body, i)
			plain.WriteString(body[:end])
			body = body[end:]
			continue
		case 'F', 'f':
			if loc := filterRe.FindStringIndex(body[i:]); loc != nil && loc[0] == 0 && isWordStart(body, i) {
				plain.WriteString(body[:i])
				expr, rest, err := parens(body, i+loc[1]-1)
				if err != nil {
					return nil, err
				}
				f, err := q.parseFilter(expr)
				if err != nil {
					return nil, err
				}
				g.Filters = append(g.Filters, f)
				body = rest
				continue
			}
			plain.WriteString(body[:i+1])
			body = body[i+1:]
			continue
		}
		plain.WriteString(body[:i])
		var alts []*Group
		rest := body[i:]
		for {
			inner, after, err := braced(rest, 0)
			if err != nil {
				return nil, err
			}
			sub, err := q.parseGroup(inner)
			if err != nil {
				return nil, err
			}
			alts = append(alts, sub)
			loc := unionRe.FindStringIndex(after)
			if loc == nil {
				rest = after
				break
			}
			rest = after[loc[1]-1:]
		}
		g.Unions = append(g.Unions, alts)
		body = rest
	}
	var err error
	g.Patterns, err = q.parsePatterns(plain.String(), false)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func isWordStart(s string, i int) bool {
	if i == 0 {
		return true
	}
	c := s[i-1]
	return !(c == '_' || c == ':' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z')
}

func skipTerm(s string, i int) int {
	if s[i] == '<' {
		if j := strings.IndexByte(s[i:], '>'); j >= 0 && !strings.ContainsAny(s[i:i+j], " \t\n{}") {
			return i + j + 1
		}
		return i + 1
	}
	for j := i + 1; j < len(s); j++ {
		if s[j] == '\\' {
			j++
			continue
		}
		if s[j] == '"' {
			return j + 1
		}
	}
	return len(s)
}

func parens(s string, open int) (string, string, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i], s[i+1:], nil
			}
		case '"', '<':
			i = skipTerm(s, i) - 1
		}
	}
	return "", "", &SyntaxError{Msg: "unbalanced parentheses", Near: s[open:]}
}

func (q *Query) parseFilter(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	for strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	toks, err := tokenize(expr)
	if err != nil {
		return Filter{}, err
	}
	var m []string
	if len(toks) == 3 && (toks[1] == "=" || toks[1] == "!=") {
		m = []string{expr, toks[0], toks[1], toks[2]}
	} else if m = filterOpRe.FindStringSubmatch(expr); m == nil {
		return Filter{}, &SyntaxError{Msg: "unsupported FILTER expression", Near: expr}
	}
	l, err := q.parseTerm(m[1], false, false)
	if err != nil {
		return Filter{}, err
	}
	r, err := q.parseTerm(m[3], false, false)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Left: l, Right: r, Negate: m[2] == "!="}, nil
}

// tokenize splits a pattern block into terms and the punctuation ". ; ,".
func tokenize(s string) ([]string, error) {
	var (
		toks []string
		cur  strings.Builder
	)
	flush := func() {
		if cur.Len() != 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '<' && cur.Len() == 0:
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return nil, &SyntaxError{Msg: "unterminated IRI", Near: s[i:]}
			}
			cur.WriteString(s[i : i+end+1])
			i += end
		case ch == '"':
			j := skipTerm(s, i)
			if j > len(s) || s[j-1] != '"' || j == i+1 {
				return nil, &SyntaxError{Msg: "unterminated literal", Near: s[i:]}
			}
			cur.WriteString(s[i:j])
			i = j - 1
		case ch == '^' && strings.HasPrefix(s[i:], "^^<"):
			end := strings.IndexByte(s[i:], '>')
			if end < 0 {
				return nil, &SyntaxError{Msg: "unterminated datatype", Near: s[i:]}
			}
			cur.WriteString(s[i : i+end+1])
			i += end
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush()
		case ch == ';' || ch == ',':
			flush()
			toks = append(toks, string(ch))
		case ch == '.' && (i+1 == len(s) || strings.ContainsRune(" \t\n\r", rune(s[i+1]))):
			flush()
			toks = append(toks, ".")
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return toks, nil
}

func (q *Query) parsePatterns(s string, template bool) ([]Pattern, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	var (
		out  []Pattern
		subj Term
		pred Term
	)
	// state: 0 subject, 1 predicate, 2 object, 3 after object
	state := 0
	for _, tok := range toks {
		switch state {
		case 0:
			if tok == "." {
				continue
			}
			if subj, err = q.parseTerm(tok, template, false); err != nil {
				return nil, err
			}
			state = 1
		case 1:
			if pred, err = q.parseTerm(tok, template, true); err != nil {
				return nil, err
			}
			state = 2
		case 2:
			obj, err := q.parseTerm(tok, template, false)
			if err != nil {
				return nil, err
			}
			out = append(out, Pattern{Subject: subj, Predicate: pred, Object: obj})
			state = 3
		case 3:
			switch tok {
			case ".":
				state = 0
			case ";":
				state = 1
			case ",":
				state = 2
			default:
				return nil, &SyntaxError{Msg: "expected '.', ';' or ','", Near: tok}
			}
		}
	}
	if state == 1 || state == 2 {
		return nil, &SyntaxError{Msg: "incomplete triple pattern", Near: s}
	}
	return out, nil
}

func (q *Query) parseTerm(tok string, template, predicate bool) (Term, error) {
	switch {
	case tok == "a" && predicate:
		return Term{Value: voc.RDFType}, nil
	case tok == "." || tok == ";" || tok == ",":
		return Term{}, &SyntaxError{Msg: "unexpected punctuation", Near: tok}
	}
	if m := varRe.FindStringSubmatch(tok); m != nil {
		return Term{Var: m[1]}, nil
	}
	if strings.HasPrefix(tok, "_:") {
		if !template || predicate {
			return Term{}, &SyntaxError{Msg: "blank nodes are only allowed in the template", Near: tok}
		}
		return Term{Value: quad.BNode(tok[2:])}, nil
	}
	if strings.HasPrefix(tok, "<") || strings.HasPrefix(tok, "\"") {
		if i := strings.Index(tok, "^^"); strings.HasPrefix(tok, "\"") && i > 0 && !strings.HasPrefix(tok[i+2:], "<") {
			dt, err := q.expand(tok[i+2:])
			if err != nil {
				return Term{}, err
			}
			tok = tok[:i+2] + "<" + dt + ">"
		}
		v, err := triple.ParseTerm(tok)
		if err != nil {
			return Term{}, &SyntaxError{Msg: err.Error(), Near: tok}
		}
		return Term{Value: v}, nil
	}
	switch {
	case numberRe.MatchString(tok):
		v, err := triple.ParseTerm(`"` + strings.TrimPrefix(tok, "+") + `"^^<http://www.w3.org/2001/XMLSchema#integer>`)
		if err != nil {
			return Term{}, &SyntaxError{Msg: err.Error(), Near: tok}
		}
		return Term{Value: v}, nil
	case tok == "true" || tok == "false":
		return Term{Value: quad.Bool(tok == "true")}, nil
	}
	iri, err := q.expand(tok)
	if err != nil {
		return Term{}, err
	}
	return Term{Value: quad.IRI(iri)}, nil
}

func (q *Query) expand(name string) (string, error) {
	i := strings.IndexByte(name, ':')
	if i < 0 {
		return "", &SyntaxError{Msg: "unknown term", Near: name}
	}
	ns, ok := q.Prefixes[name[:i]]
	if !ok {
		if ns, ok := voc.Default().Lookup(name[:i]); ok {
			return ns + name[i+1:], nil
		}
		return "", &SyntaxError{Msg: fmt.Sprintf("undeclared prefix %q", name[:i]), Near: name}
	}
	return ns + name[i+1:], nil
}
