package traildb

import (
	"fmt"

	"github.com/kezhuw/traildb/internal/errors"
	"github.com/kezhuw/traildb/internal/filter"
	"github.com/kezhuw/traildb/internal/options"
	"github.com/kezhuw/traildb/internal/trail"
)

// Cursor produces the events of one loaded trail at a time. Cursors are
// not safe for concurrent use.
type Cursor interface {
	// SetFilter restricts produced events to those matching f. It must be
	// called at most once, before any trail is loaded.
	SetFilter(f *EventFilter) error

	// GetTrail loads trail trailID, replacing the loaded one.
	GetTrail(trailID uint64) error

	// Peek reports whether the loaded trail has another matching event,
	// without consuming it.
	Peek() bool

	// Next returns the next matching event of the loaded trail, or nil at
	// end of trail. The event is valid until the next call on the cursor.
	Next() *Event

	// Release releases resources held by the cursor. The behaviour is
	// undefined if any other method is called afterwards.
	Release() error
}

type cursor struct {
	db      *DB
	options *options.CursorOptions
	filter  *filter.Filter

	loaded   bool
	released bool
	peeked   bool
	trailID  uint64

	decoder trail.Decoder
	event   Event
}

var _ Cursor = (*cursor)(nil)

func newCursor(db *DB, opts *options.CursorOptions) *cursor {
	return &cursor{db: db, options: opts}
}

func (c *cursor) SetFilter(f *EventFilter) error {
	switch {
	case c.released:
		return ErrCursorReleased
	case c.filter != nil:
		return fmt.Errorf("%w: filter already set", errors.ErrFilterBind)
	case c.loaded:
		return fmt.Errorf("%w: trail already loaded", errors.ErrFilterBind)
	case f == nil:
		return nil
	}
	if f.f.ReferencesTime() {
		return fmt.Errorf("%w: time field can not be filtered", errors.ErrFilterBind)
	}
	if max, ok := f.f.MaxField(); ok && int(max) >= c.db.NumFields() {
		return fmt.Errorf("%w: %s: field %d", errors.ErrFilterBind, errors.ErrInvalidField, max)
	}
	c.filter = f.f
	return nil
}

func (c *cursor) GetTrail(trailID uint64) error {
	if c.released {
		return ErrCursorReleased
	}
	c.loaded = true
	c.peeked = false
	c.trailID = trailID
	numValues := c.db.NumFields() - 1
	data, offset, err := c.db.readTrail(trailID)
	if err != nil {
		c.decoder.Reset(nil, numValues, 0)
		return err
	}
	c.decoder.Reset(data, numValues, offset)
	return nil
}

func (c *cursor) match() bool {
	return c.filter == nil || c.filter.Match(c.decoder.State())
}

func (c *cursor) decode() bool {
	for c.decoder.Next() {
		if !c.match() {
			continue
		}
		c.event.Timestamp = c.decoder.Timestamp()
		if c.options.EdgeEncoded {
			c.event.Items = append(c.event.Items[:0], c.decoder.Changed()...)
		} else {
			c.event.Items = append(c.event.Items[:0], c.decoder.State()...)
		}
		return true
	}
	if err := c.decoder.Err(); err != nil {
		c.db.options.Logger.Errorf("trail %d: %s", c.trailID, err)
	}
	return false
}

func (c *cursor) Peek() bool {
	if !c.peeked && !c.released {
		c.peeked = c.decode()
	}
	return c.peeked
}

func (c *cursor) Next() *Event {
	if c.peeked {
		c.peeked = false
		return &c.event
	}
	if c.released || !c.decode() {
		return nil
	}
	return &c.event
}

func (c *cursor) Release() error {
	c.released = true
	c.peeked = false
	c.filter = nil
	c.decoder.Reset(nil, 0, 0)
	c.event.Items = nil
	return nil
}
