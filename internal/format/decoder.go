package format

import (
	"encoding/binary"

	"github.com/kezhuw/traildb/internal/errors"
)

// decoder reads varint encoded blocks. Malformed input panics with a
// corruption error, recovered by util.CatchError in exported functions.
type decoder struct {
	buf      []byte
	off      int
	category string
}

func (d *decoder) corrupt(msg string) {
	panic(errors.NewCorruption(d.category, int64(d.off), msg))
}

func (d *decoder) uvarint() uint64 {
	v, n := binary.Uvarint(d.buf[d.off:])
	if n <= 0 {
		d.corrupt("invalid varint")
	}
	d.off += n
	return v
}

func (d *decoder) bytes() []byte {
	n := d.uvarint()
	if n > uint64(len(d.buf)-d.off) {
		d.corrupt("length out of range")
	}
	b := d.buf[d.off : d.off+int(n) : d.off+int(n)]
	d.off += int(n)
	return b
}

func (d *decoder) handle() Handle {
	h, n := DecodeHandle(d.buf[d.off:])
	if n <= 0 {
		d.corrupt("invalid block handle")
	}
	d.off += n
	return h
}

func (d *decoder) done() {
	if d.off != len(d.buf) {
		d.corrupt("trailing bytes")
	}
}
