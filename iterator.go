package traildb

import (
	"github.com/kezhuw/traildb/internal/errors"
)

// TrailIterator visits, in increasing trail id order, the trails of a
// database that have at least one event matching its filter. It owns one
// cursor, which holds the current trail's events. TrailIterator is not
// safe for concurrent use.
//
// A newly created iterator is positioned before the first trail; call Next
// to advance. Release must be called exactly once when done.
type TrailIterator struct {
	numTrails uint64
	cursor    Cursor

	// marker is one past the highest trail id attempted so far.
	marker  uint64
	skipped uint64

	logger Logger
	onSkip func(trailID uint64, err error)
}

// NewTrailIterator creates an iterator over db. If filter is not nil, it is
// bound to the iterator's cursor for the iterator's whole lifetime.
//
// Failure to create the cursor is reported as a *TrailError of kind
// ErrCursorAlloc, failure to bind filter as one of kind ErrFilterBind. No
// resources are held on failure.
func NewTrailIterator(db Database, filter *EventFilter, opts *IteratorOptions) (*TrailIterator, error) {
	cursor, err := db.NewCursor()
	switch {
	case err != nil:
		return nil, &errors.TrailError{Kind: errors.ErrCursorAlloc, Err: err}
	case cursor == nil:
		return nil, &errors.TrailError{Kind: errors.ErrCursorAlloc, Err: errors.ErrNilCursor}
	}
	if filter != nil {
		if err := cursor.SetFilter(filter); err != nil {
			cursor.Release()
			return nil, &errors.TrailError{Kind: errors.ErrFilterBind, Err: err}
		}
	}
	return &TrailIterator{
		numTrails: db.NumTrails(),
		cursor:    cursor,
		logger:    opts.getLogger(),
		onSkip:    opts.getOnSkip(),
	}, nil
}

// Next moves to the next trail having a matching event and loads it into
// the cursor. It returns false once all trails have been attempted, and on
// every call after that. Trails that fail to load are skipped.
func (it *TrailIterator) Next() bool {
	if it.cursor == nil {
		return false
	}
	for it.marker < it.numTrails {
		trailID := it.marker
		err := it.cursor.GetTrail(trailID)
		it.marker++
		if err != nil {
			it.skip(trailID, err)
			continue
		}
		if it.cursor.Peek() {
			return true
		}
	}
	return false
}

func (it *TrailIterator) skip(trailID uint64, err error) {
	it.skipped++
	terr := &errors.TrailError{Kind: errors.ErrTrailLoad, TrailID: trailID, Err: err}
	it.logger.Warnf("skipping trail: %s", terr)
	if it.onSkip != nil {
		it.onSkip(trailID, terr)
	}
}

// TrailID returns the id of the current trail. The behaviour is undefined
// unless the last call to Next returned true.
func (it *TrailIterator) TrailID() uint64 {
	return it.marker - 1
}

// Cursor returns the iterator's cursor, loaded with the current trail.
// The cursor remains owned by the iterator: do not release it, set a filter
// on it, or load other trails through it.
func (it *TrailIterator) Cursor() Cursor {
	return it.cursor
}

// Skipped returns the number of trails skipped because they failed to load.
func (it *TrailIterator) Skipped() uint64 {
	return it.skipped
}

// Release releases the cursor. Further calls to Next return false, and
// further calls to Release do nothing.
func (it *TrailIterator) Release() error {
	cursor := it.cursor
	if cursor == nil {
		return nil
	}
	it.cursor = nil
	return cursor.Release()
}
