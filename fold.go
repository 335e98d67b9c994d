package traildb

import "github.com/kezhuw/traildb/internal/util"

// FoldFunc is applied to every matching event of a fold. It returns the
// accumulator passed to the next call.
type FoldFunc[A any] func(db Database, trailID uint64, ev *Event, acc A) A

// Fold applies fn to every event of db matching filter, threading acc
// through the calls, and returns the final accumulator. Trails are visited
// in increasing id order, events in cursor order. Trails that fail to load
// are skipped.
func Fold[A any](db Database, filter *EventFilter, fn FoldFunc[A], acc A) (A, error) {
	return FoldWithOptions(db, filter, nil, fn, acc)
}

// FoldWithOptions is Fold with iterator options, which observe skipped
// trails.
func FoldWithOptions[A any](db Database, filter *EventFilter, opts *IteratorOptions, fn FoldFunc[A], acc A) (result A, err error) {
	it, err := NewTrailIterator(db, filter, opts)
	if err != nil {
		return acc, err
	}
	defer func() {
		err = util.FirstError(err, it.Release())
	}()
	for it.Next() {
		cursor, trailID := it.Cursor(), it.TrailID()
		for ev := cursor.Next(); ev != nil; ev = cursor.Next() {
			acc = fn(db, trailID, ev, acc)
		}
	}
	return acc, nil
}
