package format

import (
	"encoding/binary"
	"errors"
)

const (
	FooterLength = footerLength
	footerLength = MaxHandleEncodedLength + 8

	magicNumber = 0x54524c4442303031
)

var ErrMagicNumberWrong = errors.New("traildb: corrupt file: wrong magic number")

type Footer struct {
	MetaHandle Handle
}

var footerZeroBytes [footerLength]byte

func (f *Footer) Encode(buf []byte) int {
	i := EncodeHandle(buf, f.MetaHandle)
	if n := MaxHandleEncodedLength - i; n != 0 {
		copy(buf[i:], footerZeroBytes[:n])
		i = MaxHandleEncodedLength
	}
	binary.LittleEndian.PutUint64(buf[i:], magicNumber)
	return i + 8
}

func (f *Footer) Unmarshal(buf []byte) error {
	if len(buf) < footerLength {
		panic("buf length for footer is wrong")
	}
	magic := binary.LittleEndian.Uint64(buf[footerLength-8:])
	if magic != magicNumber {
		return ErrMagicNumberWrong
	}
	var n int
	f.MetaHandle, n = DecodeHandle(buf[:footerLength-8])
	if n <= 0 {
		return ErrMagicNumberWrong
	}
	return nil
}
