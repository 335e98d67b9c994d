package format

import "encoding/binary"

const MaxHandleEncodedLength = 2 * binary.MaxVarintLen64

// Handle locates a block payload in a database file. Length excludes the
// block trailer.
type Handle struct {
	Offset uint64
	Length uint64
}

func EncodeHandle(dst []byte, h Handle) int {
	i := binary.PutUvarint(dst, h.Offset)
	i += binary.PutUvarint(dst[i:], h.Length)
	return i
}

func AppendHandle(dst []byte, h Handle) []byte {
	dst = binary.AppendUvarint(dst, h.Offset)
	return binary.AppendUvarint(dst, h.Length)
}

func DecodeHandle(buf []byte) (Handle, int) {
	offset, i := binary.Uvarint(buf)
	if i <= 0 {
		return Handle{}, i
	}
	length, j := binary.Uvarint(buf[i:])
	if j <= 0 {
		return Handle{}, j
	}
	return Handle{Offset: offset, Length: length}, i + j
}
