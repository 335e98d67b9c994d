package traildb_test

import (
	"errors"

	"github.com/kezhuw/traildb"
)

var (
	errLoad  = errors.New("stub: load failed")
	errAlloc = errors.New("stub: out of cursors")
	errBind  = errors.New("stub: filter rejected")

	errRelease = errors.New("stub: release failed")
)

// stubDB serves trails from memory and records cursor traffic.
type stubDB struct {
	trails [][]traildb.Event

	// match is applied to events once a filter is bound.
	match func(trailID uint64, ev traildb.Event) bool

	failLoad  map[uint64]bool
	failAlloc error
	failBind  error

	// failRelease is returned by every cursor Release.
	failRelease error

	allocated int
	released  int
	loads     []uint64
}

func newStubDB(counts ...int) *stubDB {
	db := &stubDB{trails: make([][]traildb.Event, len(counts))}
	for i, n := range counts {
		for j := 0; j < n; j++ {
			db.trails[i] = append(db.trails[i], traildb.Event{
				Timestamp: uint64(100*i + j),
				Items:     []traildb.Item{traildb.MakeItem(1, traildb.Val(j+1))},
			})
		}
	}
	return db
}

func (db *stubDB) NumTrails() uint64 {
	return uint64(len(db.trails))
}

func (db *stubDB) NewCursor() (traildb.Cursor, error) {
	if db.failAlloc != nil {
		return nil, db.failAlloc
	}
	db.allocated++
	return &stubCursor{db: db}, nil
}

type stubCursor struct {
	db       *stubDB
	filtered bool
	loaded   bool
	released bool

	trailID uint64
	events  []traildb.Event
	pos     int
	event   traildb.Event
}

func (c *stubCursor) SetFilter(f *traildb.EventFilter) error {
	if c.loaded {
		panic("stub: filter set after load")
	}
	if c.db.failBind != nil {
		return c.db.failBind
	}
	c.filtered = true
	return nil
}

func (c *stubCursor) GetTrail(trailID uint64) error {
	if c.released {
		panic("stub: load after release")
	}
	c.db.loads = append(c.db.loads, trailID)
	c.loaded = true
	c.trailID = trailID
	c.events = nil
	c.pos = 0
	if c.db.failLoad[trailID] {
		return errLoad
	}
	c.events = c.db.trails[trailID]
	return nil
}

func (c *stubCursor) skip() {
	for c.pos < len(c.events) {
		if !c.filtered || c.db.match == nil || c.db.match(c.trailID, c.events[c.pos]) {
			return
		}
		c.pos++
	}
}

func (c *stubCursor) Peek() bool {
	if !c.loaded {
		panic("stub: peek before load")
	}
	c.skip()
	return c.pos < len(c.events)
}

func (c *stubCursor) Next() *traildb.Event {
	if !c.loaded {
		panic("stub: next before load")
	}
	c.skip()
	if c.pos >= len(c.events) {
		return nil
	}
	c.event = c.events[c.pos]
	c.pos++
	return &c.event
}

func (c *stubCursor) Release() error {
	if c.released {
		panic("stub: double release")
	}
	c.released = true
	c.db.released++
	return c.db.failRelease
}

type visit struct {
	trailID   uint64
	timestamp uint64
}

func collectVisits(_ traildb.Database, trailID uint64, ev *traildb.Event, acc []visit) []visit {
	return append(acc, visit{trailID: trailID, timestamp: ev.Timestamp})
}
