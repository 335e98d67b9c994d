package filter

import "github.com/kezhuw/traildb/internal/item"

// Single returns a filter with the single term (it, negated).
func Single(it item.Item, negated bool) *Filter {
	f := New()
	f.AddTerm(it, negated)
	return f
}

// And returns a filter matching events matched by both f and g.
func And(f, g *Filter) *Filter {
	var clauses [][]Term
	for _, c := range f.clauses {
		clauses = appendClause(clauses, c)
	}
	for _, c := range g.clauses {
		clauses = appendClause(clauses, c)
	}
	return fromClauses(clauses)
}

// Or returns a filter matching events matched by f or g. Every clause of
// f is joined with every clause of g, keeping the result a conjunction of
// disjunctions.
func Or(f, g *Filter) *Filter {
	if f.matchesAll() || g.matchesAll() {
		return New()
	}
	var clauses [][]Term
	for _, c := range f.clauses {
		if len(c) == 0 {
			continue
		}
		for _, d := range g.clauses {
			if len(d) == 0 {
				continue
			}
			clauses = appendClause(clauses, union(c, d))
		}
	}
	return fromClauses(clauses)
}

// Not returns the negation of f by De Morgan's laws. A filter without
// terms is returned unchanged.
func Not(f *Filter) *Filter {
	var result *Filter
	for _, c := range f.clauses {
		if len(c) == 0 {
			continue
		}
		var negated [][]Term
		for _, t := range c {
			negated = appendClause(negated, []Term{{Item: t.Item, Negated: !t.Negated}})
		}
		nf := fromClauses(negated)
		if result == nil {
			result = nf
		} else {
			result = Or(result, nf)
		}
	}
	if result == nil {
		return New()
	}
	return result
}

func (f *Filter) matchesAll() bool {
	for _, c := range f.clauses {
		if len(c) != 0 {
			return false
		}
	}
	return true
}

func fromClauses(clauses [][]Term) *Filter {
	if len(clauses) == 0 {
		return New()
	}
	return &Filter{clauses: clauses}
}

func contains(c []Term, t Term) bool {
	for _, u := range c {
		if u == t {
			return true
		}
	}
	return false
}

func union(c, d []Term) []Term {
	u := make([]Term, 0, len(c)+len(d))
	for _, t := range c {
		if !contains(u, t) {
			u = append(u, t)
		}
	}
	for _, t := range d {
		if !contains(u, t) {
			u = append(u, t)
		}
	}
	return u
}

// tautology reports whether c holds both a term and its negation.
func tautology(c []Term) bool {
	for _, t := range c {
		if contains(c, Term{Item: t.Item, Negated: !t.Negated}) {
			return true
		}
	}
	return false
}

func sameTerms(c, d []Term) bool {
	for _, t := range c {
		if !contains(d, t) {
			return false
		}
	}
	for _, t := range d {
		if !contains(c, t) {
			return false
		}
	}
	return true
}

// appendClause appends a deduplicated copy of c, dropping clauses that
// every event matches and clauses already present.
func appendClause(clauses [][]Term, c []Term) [][]Term {
	if len(c) == 0 {
		return clauses
	}
	c = union(c, nil)
	if tautology(c) {
		return clauses
	}
	for _, d := range clauses {
		if sameTerms(c, d) {
			return clauses
		}
	}
	return append(clauses, c)
}
