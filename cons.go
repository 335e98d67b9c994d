package traildb

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/kezhuw/traildb/internal/errors"
	"github.com/kezhuw/traildb/internal/format"
	"github.com/kezhuw/traildb/internal/item"
	"github.com/kezhuw/traildb/internal/options"
	"github.com/kezhuw/traildb/internal/trail"
	"github.com/kezhuw/traildb/internal/util"
)

// Constructor builds a database file from events added in any order.
// Events are buffered in memory until Finalize. Constructor is not safe
// for concurrent use.
type Constructor struct {
	name    string
	options *options.Options
	done    bool

	fields   []string
	lexicons []map[string]item.Val
	values   [][]string

	trails    map[uuid.UUID]int
	uuids     []uuid.UUID
	events    [][]trail.RawEvent
	numEvents uint64
	minTs     uint64
	maxTs     uint64
}

// NewConstructor creates a constructor for a database with the given
// fields, to be written to file name. Field names must be unique, non
// empty and not "time".
func NewConstructor(name string, fields []string, opts *Options) (*Constructor, error) {
	if len(fields) >= item.MaxFields {
		return nil, fmt.Errorf("%w: too many fields", errors.ErrInvalidField)
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		switch {
		case f == "":
			return nil, fmt.Errorf("%w: empty field name", errors.ErrInvalidField)
		case f == item.TimeFieldName:
			return nil, fmt.Errorf("%w: %q is reserved", errors.ErrInvalidField, f)
		case seen[f]:
			return nil, fmt.Errorf("%w: duplicate field %q", errors.ErrInvalidField, f)
		}
		seen[f] = true
	}
	c := &Constructor{
		name:     name,
		options:  convertOptions(opts),
		fields:   append([]string{item.TimeFieldName}, fields...),
		lexicons: make([]map[string]item.Val, len(fields)),
		values:   make([][]string, len(fields)),
		trails:   make(map[uuid.UUID]int),
	}
	for i := range c.lexicons {
		c.lexicons[i] = make(map[string]item.Val)
	}
	return c, nil
}

// Fields returns the field names, starting with "time".
func (c *Constructor) Fields() []string {
	return util.DupStrings(c.fields)
}

// Add adds an event to trail id. values are given in field order; missing
// trailing values are empty.
func (c *Constructor) Add(id uuid.UUID, timestamp uint64, values []string) error {
	if c.done {
		return ErrFinalized
	}
	if len(values) > len(c.lexicons) {
		return fmt.Errorf("%w: %d values for %d fields", errors.ErrTooManyValues, len(values), len(c.lexicons))
	}
	vals := make([]item.Val, len(c.lexicons))
	for i, v := range values {
		vals[i] = c.intern(i, v)
	}
	c.add(id, trail.RawEvent{Timestamp: timestamp, Values: vals})
	return nil
}

func (c *Constructor) intern(i int, value string) item.Val {
	if value == "" {
		return 0
	}
	val, ok := c.lexicons[i][value]
	if !ok {
		c.values[i] = append(c.values[i], value)
		val = item.Val(len(c.values[i]))
		c.lexicons[i][value] = val
	}
	return val
}

func (c *Constructor) add(id uuid.UUID, ev trail.RawEvent) {
	i, ok := c.trails[id]
	if !ok {
		i = len(c.uuids)
		c.trails[id] = i
		c.uuids = append(c.uuids, id)
		c.events = append(c.events, nil)
	}
	c.events[i] = append(c.events[i], ev)
	if c.numEvents == 0 || ev.Timestamp < c.minTs {
		c.minTs = ev.Timestamp
	}
	if c.numEvents == 0 || ev.Timestamp > c.maxTs {
		c.maxTs = ev.Timestamp
	}
	c.numEvents++
}

// Append adds every event of db. db must have the same fields in the same
// order. A trail of db that can not be loaded fails Append with a
// *TrailError of kind ErrTrailLoad; events added before the failure are
// kept.
func (c *Constructor) Append(db *DB) error {
	if c.done {
		return ErrFinalized
	}
	fields := db.Fields()
	if len(fields) != len(c.fields) {
		return fmt.Errorf("%w: %d fields, want %d", errors.ErrFieldMismatch, len(fields)-1, len(c.fields)-1)
	}
	for i, name := range fields {
		if name != c.fields[i] {
			return fmt.Errorf("%w: field %d is %q, want %q", errors.ErrFieldMismatch, i, name, c.fields[i])
		}
	}
	type state struct {
		id  uuid.UUID
		err error
	}
	st := &state{}
	opts := &IteratorOptions{
		Logger: c.options.Logger,
		OnSkip: func(_ uint64, err error) {
			if st.err == nil {
				st.err = err
			}
		},
	}
	_, err := FoldWithOptions(db, nil, opts, func(_ Database, trailID uint64, ev *Event, st *state) *state {
		if st.err != nil {
			return st
		}
		if st.id, st.err = db.UUID(trailID); st.err != nil {
			return st
		}
		values := make([]string, len(ev.Items))
		for i, it := range ev.Items {
			if values[i], st.err = db.ItemValue(it); st.err != nil {
				return st
			}
		}
		st.err = c.Add(st.id, ev.Timestamp, values)
		return st
	}, st)
	return util.FirstError(err, st.err)
}

// Finalize writes the database file. Trails are ordered by uuid, and
// events of a trail by timestamp. The constructor can not be used
// afterwards.
func (c *Constructor) Finalize() (err error) {
	if c.done {
		return ErrFinalized
	}
	c.done = true
	defer c.reset()

	fs := c.options.FileSystem
	tmp := c.name + ".tmp"
	f, err := fs.Open(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			fs.Remove(tmp)
		}
	}()
	bw := bufio.NewWriter(f)
	if err = c.write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = fs.Rename(tmp, c.name); err != nil {
		return err
	}
	c.options.Logger.Infof("finalized %s: %d trails, %d events", c.name, len(c.uuids), c.numEvents)
	return nil
}

func (c *Constructor) write(bw *bufio.Writer) error {
	w := format.NewWriter(bw, c.options.Compression, c.options.BlockCompressionRatio, c.options.Logger)

	order := make([]int, len(c.uuids))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return bytes.Compare(c.uuids[order[i]][:], c.uuids[order[j]][:]) < 0
	})

	numValues := len(c.lexicons)
	index := make([]format.Handle, len(order))
	uuids := make([]byte, 0, 16*len(order))
	var payload []byte
	for i, t := range order {
		events := c.events[t]
		trail.Sort(events)
		payload = trail.Encode(payload[:0], events, numValues)
		h, err := w.WriteBlock(payload)
		if err != nil {
			return err
		}
		index[i] = h
		uuids = append(uuids, c.uuids[t][:]...)
	}

	meta := format.Meta{
		NumTrails:    uint64(len(order)),
		NumEvents:    c.numEvents,
		MinTimestamp: c.minTs,
		MaxTimestamp: c.maxTs,
		Fields:       c.fields,
		Lexicons:     make([]format.Handle, numValues),
	}
	var err error
	for i, values := range c.values {
		if meta.Lexicons[i], err = w.WriteBlock(format.MarshalLexicon(values)); err != nil {
			return err
		}
	}
	if meta.UUIDs, err = w.WriteBlock(uuids); err != nil {
		return err
	}
	if meta.Index, err = w.WriteBlock(format.MarshalIndex(index)); err != nil {
		return err
	}
	metaHandle, err := w.WriteBlock(meta.Marshal())
	if err != nil {
		return err
	}
	return w.Finish(format.Footer{MetaHandle: metaHandle})
}

func (c *Constructor) reset() {
	c.lexicons = nil
	c.values = nil
	c.trails = nil
	c.uuids = nil
	c.events = nil
}

// Close discards an unfinalized constructor.
func (c *Constructor) Close() error {
	if !c.done {
		c.done = true
		c.reset()
	}
	return nil
}
