// Package filter implements event filters in conjunctive normal form.
//
// A filter is a conjunction of clauses, and a clause is a disjunction of
// terms. A term tests one field of an event against an item, optionally
// negated.
package filter

import (
	"strconv"
	"strings"

	"github.com/kezhuw/traildb/internal/item"
)

type Term struct {
	Item    item.Item
	Negated bool
}

func (t Term) match(values []item.Item) bool {
	field := t.Item.Field()
	v := item.Make(field, 0)
	if i := int(field) - 1; i >= 0 && i < len(values) {
		v = values[i]
	}
	return (v == t.Item) != t.Negated
}

type Filter struct {
	clauses [][]Term
}

// New creates a filter with one empty clause.
func New() *Filter {
	return &Filter{clauses: make([][]Term, 1)}
}

// AddTerm adds a term to the last clause.
func (f *Filter) AddTerm(it item.Item, negated bool) {
	last := len(f.clauses) - 1
	f.clauses[last] = append(f.clauses[last], Term{Item: it, Negated: negated})
}

// NewClause starts a new clause. Following terms go to it.
func (f *Filter) NewClause() {
	f.clauses = append(f.clauses, nil)
}

func (f *Filter) NumClauses() int {
	return len(f.clauses)
}

func (f *Filter) Clause(i int) []Term {
	return f.clauses[i]
}

// MaxField returns the largest field referenced by any term, and false if
// the filter has no terms.
func (f *Filter) MaxField() (item.Field, bool) {
	var max item.Field
	found := false
	for _, clause := range f.clauses {
		for _, t := range clause {
			if field := t.Item.Field(); !found || field > max {
				max = field
			}
			found = true
		}
	}
	return max, found
}

// ReferencesTime reports whether any term tests the timestamp field.
func (f *Filter) ReferencesTime() bool {
	for _, clause := range f.clauses {
		for _, t := range clause {
			if t.Item.Field() == item.TimeField {
				return true
			}
		}
	}
	return false
}

// Match evaluates the filter against values, which holds the current item
// of every non time field in field order. Empty clauses match.
func (f *Filter) Match(values []item.Item) bool {
	for _, clause := range f.clauses {
		if len(clause) == 0 {
			continue
		}
		matched := false
		for _, t := range clause {
			if t.match(values) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func (f *Filter) String() string {
	var b strings.Builder
	for i, clause := range f.clauses {
		if i != 0 {
			b.WriteString(" & ")
		}
		b.WriteByte('(')
		for j, t := range clause {
			if j != 0 {
				b.WriteString(" | ")
			}
			if t.Negated {
				b.WriteByte('!')
			}
			b.WriteString(strconv.FormatUint(uint64(t.Item.Field()), 10))
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(t.Item.Val()), 10))
		}
		b.WriteByte(')')
	}
	return b.String()
}
