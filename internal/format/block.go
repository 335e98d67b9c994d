package format

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/kezhuw/traildb/internal/compress"
	"github.com/kezhuw/traildb/internal/crc"
	"github.com/kezhuw/traildb/internal/errors"
)

// BlockTrailerSize is one compression type byte plus a masked crc32 of
// payload and type byte.
const BlockTrailerSize = 5

// CheckHandle returns a corruption error unless the block located by h,
// trailer included, lies within the first size bytes of a file.
func CheckHandle(category string, h Handle, size int64) error {
	if size < 0 {
		size = 0
	}
	end := uint64(size)
	if h.Offset > end || end-h.Offset < BlockTrailerSize || h.Length > end-h.Offset-BlockTrailerSize {
		return errors.NewCorruption(category, int64(h.Offset&math.MaxInt64), "block handle out of file bounds")
	}
	return nil
}

// ReadBlock reads and decompresses the block located by h in a file of
// size bytes.
func ReadBlock(r io.ReaderAt, size int64, category string, h Handle, verifyChecksums bool) ([]byte, error) {
	if err := CheckHandle(category, h, size); err != nil {
		return nil, err
	}
	n := h.Length + BlockTrailerSize
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, int64(h.Offset)); err != nil {
		if err == io.EOF {
			return nil, errors.NewCorruption(category, int64(h.Offset), "truncated block")
		}
		return nil, err
	}
	if verifyChecksums {
		actualChecksum := crc.New(buf[:n-4]).Value()
		expectedChecksum := binary.LittleEndian.Uint32(buf[n-4:])
		if actualChecksum != expectedChecksum {
			return nil, errors.NewCorruption(category, int64(h.Offset), "checksum mismatch")
		}
	}
	compression := compress.Type(buf[h.Length])
	if compression != compress.NoCompression {
		decoded, err := compress.Decode(compression, nil, buf[:h.Length])
		if err != nil {
			return nil, &errors.CorruptionError{Err: err, Offset: int64(h.Offset), Category: category}
		}
		return decoded, nil
	}
	return buf[:h.Length:h.Length], nil
}
