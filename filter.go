package traildb

import (
	"github.com/kezhuw/traildb/internal/filter"
	"github.com/kezhuw/traildb/internal/query"
)

// Term tests one field of an event. It matches when the event carries Item,
// or, if Negated, when it does not.
type Term = filter.Term

// EventFilter is a conjunction of clauses, each a disjunction of terms.
// A filter with no terms matches every event. Filters are not safe for
// concurrent modification, and must not be modified after being set on a
// cursor.
type EventFilter struct {
	f *filter.Filter
}

// NewEventFilter creates a filter with one empty clause.
func NewEventFilter() *EventFilter {
	return &EventFilter{f: filter.New()}
}

// AddTerm adds a term to the current clause.
func (f *EventFilter) AddTerm(it Item, negated bool) {
	f.f.AddTerm(it, negated)
}

// NewClause starts a new clause.
func (f *EventFilter) NewClause() {
	f.f.NewClause()
}

func (f *EventFilter) NumClauses() int {
	return f.f.NumClauses()
}

func (f *EventFilter) Clause(i int) []Term {
	return f.f.Clause(i)
}

func (f *EventFilter) String() string {
	return f.f.String()
}

func (f *EventFilter) filter() *filter.Filter {
	if f == nil {
		return filter.New()
	}
	return f.f
}

// And returns a new filter matching events matched by both f and g. A nil
// filter matches every event.
func (f *EventFilter) And(g *EventFilter) *EventFilter {
	return &EventFilter{f: filter.And(f.filter(), g.filter())}
}

// Or returns a new filter matching events matched by f or g, kept in
// conjunctive normal form by distributing g's clauses over f's. The result
// can grow as the product of the clause counts.
func (f *EventFilter) Or(g *EventFilter) *EventFilter {
	return &EventFilter{f: filter.Or(f.filter(), g.filter())}
}

// Not returns a new filter matching events f does not match. A filter
// without terms has no negation in conjunctive normal form and is returned
// as a filter matching every event.
func (f *EventFilter) Not() *EventFilter {
	return &EventFilter{f: filter.Not(f.filter())}
}

// Where returns a filter matching events carrying every one of items.
func Where(items ...Item) *EventFilter {
	f := filter.New()
	for i, it := range items {
		if i != 0 {
			f.NewClause()
		}
		f.AddTerm(it, false)
	}
	return &EventFilter{f: f}
}

// WhereNot returns a filter matching events carrying none of items.
func WhereNot(items ...Item) *EventFilter {
	f := filter.New()
	for i, it := range items {
		if i != 0 {
			f.NewClause()
		}
		f.AddTerm(it, true)
	}
	return &EventFilter{f: f}
}

// OneOf returns a filter matching events carrying at least one of items.
func OneOf(items ...Item) *EventFilter {
	f := filter.New()
	for _, it := range items {
		f.AddTerm(it, false)
	}
	return &EventFilter{f: f}
}

// NoneOf returns a filter matching events carrying none of items. It is
// the negation of OneOf.
func NoneOf(items ...Item) *EventFilter {
	return OneOf(items...).Not()
}

// ParseFilter builds a filter from a textual query such as
// "page=home | page=cart & user!=alice" or "~(page=home & user=alice)",
// resolving names against db. '|' binds tighter than '&'; parentheses
// group and a '~' or '!' prefix negates.
func ParseFilter(db *DB, q string) (*EventFilter, error) {
	f, err := query.Parse(q, db)
	if err != nil {
		return nil, err
	}
	return &EventFilter{f: f}, nil
}
