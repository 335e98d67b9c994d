// Package query parses textual event filters.
//
// A term is either "field=value" or "field!=value". Terms combine with '|'
// (or) and '&' (and), '|' binding tighter, so "a=x | b=y & c=z" reads as
// "(a=x | b=y) & c=z". Parentheses group, and a '~' or '!' prefix negates
// the term or group it precedes. Whitespace around operators and terms is
// ignored. Values can not contain any of "&|~()".
package query

import (
	"fmt"
	"strings"

	"github.com/kezhuw/traildb/internal/filter"
	"github.com/kezhuw/traildb/internal/item"
)

// Resolver maps names in a query to items.
type Resolver interface {
	// Field returns the index of the named field.
	Field(name string) (item.Field, error)

	// Item returns the item of value in field, and false if the lexicon of
	// field has no such value.
	Item(field item.Field, value string) (item.Item, bool)
}

const operators = "&|~()"

// Term is one parsed, unresolved term.
type Term struct {
	Field   string
	Value   string
	Negated bool
}

func (t Term) String() string {
	op := "="
	if t.Negated {
		op = "!="
	}
	return t.Field + op + t.Value
}

func parseTerm(s string) (Term, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return Term{}, fmt.Errorf("traildb: invalid query term %q", s)
	}
	var t Term
	name := s[:i]
	if strings.HasSuffix(name, "!") {
		t.Negated = true
		name = name[:len(name)-1]
	}
	t.Field = strings.TrimSpace(name)
	t.Value = strings.TrimSpace(s[i+1:])
	if t.Field == "" {
		return Term{}, fmt.Errorf("traildb: invalid query term %q", s)
	}
	return t, nil
}

// Parse parses q into a filter, resolving names through r. Values absent
// from a lexicon become items no event carries. An empty query yields a
// filter matching every event.
func Parse(q string, r Resolver) (*filter.Filter, error) {
	p := &parser{q: q, r: r}
	p.space()
	if p.eof() {
		return filter.New(), nil
	}
	f, err := p.and()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.q[p.pos])
	}
	return f, nil
}

type parser struct {
	q   string
	pos int
	r   Resolver
}

func (p *parser) eof() bool {
	return p.pos >= len(p.q)
}

func (p *parser) space() {
	for !p.eof() && (p.q[p.pos] == ' ' || p.q[p.pos] == '\t' || p.q[p.pos] == '\n') {
		p.pos++
	}
}

// accept consumes c, and any space following it, if it is next.
func (p *parser) accept(c byte) bool {
	if p.eof() || p.q[p.pos] != c {
		return false
	}
	p.pos++
	p.space()
	return true
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("traildb: invalid query at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) and() (*filter.Filter, error) {
	f, err := p.or()
	if err != nil {
		return nil, err
	}
	for p.accept('&') {
		g, err := p.or()
		if err != nil {
			return nil, err
		}
		f = filter.And(f, g)
	}
	return f, nil
}

func (p *parser) or() (*filter.Filter, error) {
	f, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept('|') {
		g, err := p.unary()
		if err != nil {
			return nil, err
		}
		f = filter.Or(f, g)
	}
	return f, nil
}

func (p *parser) unary() (*filter.Filter, error) {
	switch {
	case p.eof():
		return nil, p.errorf("missing term")
	case p.accept('~'), p.accept('!'):
		f, err := p.unary()
		if err != nil {
			return nil, err
		}
		return filter.Not(f), nil
	case p.accept('('):
		f, err := p.and()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, p.errorf("missing ')'")
		}
		return f, nil
	}
	start := p.pos
	for !p.eof() && !strings.ContainsRune(operators, rune(p.q[p.pos])) {
		p.pos++
	}
	t, err := parseTerm(p.q[start:p.pos])
	if err != nil {
		return nil, err
	}
	return p.resolve(t)
}

func (p *parser) resolve(t Term) (*filter.Filter, error) {
	field, err := p.r.Field(t.Field)
	if err != nil {
		return nil, fmt.Errorf("traildb: query term %q: %w", t, err)
	}
	if field == item.TimeField {
		return nil, fmt.Errorf("traildb: query term %q: time field can not be filtered", t)
	}
	it, ok := p.r.Item(field, t.Value)
	if !ok {
		it = item.Unknown(field)
	}
	return filter.Single(it, t.Negated), nil
}
