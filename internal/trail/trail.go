// Package trail encodes the events of one trail into a block payload.
//
// Events are stored in timestamp order. Each event is a uvarint timestamp
// delta, a uvarint item count, and that many uvarint items. Only items whose
// value differs from the previous event of the trail are stored; the state
// before the first event has every field empty.
package trail

import (
	"encoding/binary"
	"sort"

	"github.com/kezhuw/traildb/internal/errors"
	"github.com/kezhuw/traildb/internal/item"
)

// RawEvent holds one value per non time field.
type RawEvent struct {
	Timestamp uint64
	Values    []item.Val
}

// Sort orders events by timestamp, keeping insertion order for equal ones.
func Sort(events []RawEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}

// Encode appends the encoding of sorted events to dst.
func Encode(dst []byte, events []RawEvent, numValues int) []byte {
	prev := make([]item.Val, numValues)
	changed := make([]item.Item, 0, numValues)
	var ts uint64
	for _, ev := range events {
		changed = changed[:0]
		for i := 0; i < numValues; i++ {
			var v item.Val
			if i < len(ev.Values) {
				v = ev.Values[i]
			}
			if v != prev[i] {
				changed = append(changed, item.Make(item.Field(i+1), v))
				prev[i] = v
			}
		}
		dst = binary.AppendUvarint(dst, ev.Timestamp-ts)
		dst = binary.AppendUvarint(dst, uint64(len(changed)))
		for _, it := range changed {
			dst = binary.AppendUvarint(dst, uint64(it))
		}
		ts = ev.Timestamp
	}
	return dst
}

// Decoder walks an encoded trail, reconstructing full field state.
type Decoder struct {
	data    []byte
	off     int
	base    int64
	err     error
	ts      uint64
	state   []item.Item
	changed []item.Item
}

// Reset prepares d to decode data. base is the file offset of data, used in
// corruption reports.
func (d *Decoder) Reset(data []byte, numValues int, base int64) {
	d.data = data
	d.off = 0
	d.base = base
	d.err = nil
	d.ts = 0
	if cap(d.state) < numValues {
		d.state = make([]item.Item, numValues)
	}
	d.state = d.state[:numValues]
	for i := range d.state {
		d.state[i] = item.Make(item.Field(i+1), 0)
	}
	d.changed = d.changed[:0]
}

func (d *Decoder) corrupt(msg string) bool {
	d.err = errors.NewCorruption("trail", d.base+int64(d.off), msg)
	d.data = nil
	d.off = 0
	return false
}

func (d *Decoder) uvarint() (uint64, bool) {
	v, n := binary.Uvarint(d.data[d.off:])
	if n <= 0 {
		return 0, d.corrupt("invalid varint")
	}
	d.off += n
	return v, true
}

// Next decodes one event. It returns false at end of trail or on corruption,
// which is reported by Err.
func (d *Decoder) Next() bool {
	if d.off >= len(d.data) {
		return false
	}
	delta, ok := d.uvarint()
	if !ok {
		return false
	}
	n, ok := d.uvarint()
	if !ok {
		return false
	}
	if n > uint64(len(d.state)) {
		return d.corrupt("too many items")
	}
	d.changed = d.changed[:0]
	for i := uint64(0); i < n; i++ {
		v, ok := d.uvarint()
		if !ok {
			return false
		}
		it := item.Item(v)
		field := int(it.Field())
		if field == 0 || field > len(d.state) {
			return d.corrupt("item field out of range")
		}
		d.state[field-1] = it
		d.changed = append(d.changed, it)
	}
	d.ts += delta
	return true
}

func (d *Decoder) Timestamp() uint64 {
	return d.ts
}

// State returns the current item of every non time field.
func (d *Decoder) State() []item.Item {
	return d.state
}

// Changed returns the items stored for the current event.
func (d *Decoder) Changed() []item.Item {
	return d.changed
}

func (d *Decoder) Err() error {
	return d.err
}
