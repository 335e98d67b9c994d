package format

import (
	"encoding/binary"

	"github.com/kezhuw/traildb/internal/item"
	"github.com/kezhuw/traildb/internal/util"
)

// Meta describes a database file. Fields[0] is always the time field and
// Lexicons[i] belongs to Fields[i+1].
type Meta struct {
	NumTrails    uint64
	NumEvents    uint64
	MinTimestamp uint64
	MaxTimestamp uint64
	Fields       []string
	Lexicons     []Handle
	UUIDs        Handle
	Index        Handle
}

func (m *Meta) Marshal() []byte {
	buf := binary.AppendUvarint(nil, m.NumTrails)
	buf = binary.AppendUvarint(buf, m.NumEvents)
	buf = binary.AppendUvarint(buf, m.MinTimestamp)
	buf = binary.AppendUvarint(buf, m.MaxTimestamp)
	buf = binary.AppendUvarint(buf, uint64(len(m.Fields)))
	for i, name := range m.Fields {
		buf = binary.AppendUvarint(buf, uint64(len(name)))
		buf = append(buf, name...)
		if i != 0 {
			buf = AppendHandle(buf, m.Lexicons[i-1])
		}
	}
	buf = AppendHandle(buf, m.UUIDs)
	return AppendHandle(buf, m.Index)
}

func (m *Meta) Unmarshal(buf []byte) (err error) {
	defer util.CatchError(&err)
	d := decoder{buf: buf, category: "meta block"}
	m.NumTrails = d.uvarint()
	m.NumEvents = d.uvarint()
	m.MinTimestamp = d.uvarint()
	m.MaxTimestamp = d.uvarint()
	n := d.uvarint()
	if n == 0 || n > item.MaxFields {
		d.corrupt("invalid number of fields")
	}
	m.Fields = make([]string, n)
	m.Lexicons = make([]Handle, n-1)
	for i := range m.Fields {
		m.Fields[i] = string(d.bytes())
		if i != 0 {
			m.Lexicons[i-1] = d.handle()
		}
	}
	if m.Fields[0] != item.TimeFieldName {
		d.corrupt("missing time field")
	}
	m.UUIDs = d.handle()
	m.Index = d.handle()
	d.done()
	return nil
}

// MarshalIndex encodes trail block handles in trail id order.
func MarshalIndex(handles []Handle) []byte {
	buf := make([]byte, 0, len(handles)*4)
	for _, h := range handles {
		buf = AppendHandle(buf, h)
	}
	return buf
}

func UnmarshalIndex(buf []byte, n uint64) (handles []Handle, err error) {
	defer util.CatchError(&err)
	d := decoder{buf: buf, category: "trail index"}
	if n > uint64(len(buf)) {
		d.corrupt("too many trails")
	}
	handles = make([]Handle, n)
	for i := range handles {
		handles[i] = d.handle()
	}
	d.done()
	return handles, nil
}

// MarshalLexicon encodes the values of one field. values[0] has index 1.
func MarshalLexicon(values []string) []byte {
	buf := binary.AppendUvarint(nil, uint64(len(values)))
	for _, v := range values {
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
	}
	return buf
}

// UnmarshalLexicon decodes a lexicon. The returned values alias buf.
func UnmarshalLexicon(buf []byte) (values [][]byte, err error) {
	defer util.CatchError(&err)
	d := decoder{buf: buf, category: "lexicon"}
	n := d.uvarint()
	if n > uint64(len(buf)) {
		d.corrupt("too many values")
	}
	values = make([][]byte, n)
	for i := range values {
		values[i] = d.bytes()
	}
	d.done()
	return values, nil
}
