package format

import (
	"encoding/binary"
	"io"

	"github.com/kezhuw/traildb/internal/compress"
	"github.com/kezhuw/traildb/internal/crc"
	"github.com/kezhuw/traildb/internal/logger"
)

// Writer appends blocks to a database file.
type Writer struct {
	w           io.Writer
	compression compress.Type
	ratio       float64
	logger      logger.Logger

	err    error
	offset int64

	scratch       [footerLength]byte
	compressedBuf []byte
}

func NewWriter(w io.Writer, compression compress.Type, ratio float64, l logger.Logger) *Writer {
	if l == nil {
		l = logger.Discard
	}
	return &Writer{w: w, compression: compression, ratio: ratio, logger: l}
}

func (w *Writer) Offset() int64 {
	return w.offset
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) acceptCompression(rawSize, compressedSize int) bool {
	return compressedSize != 0 && float64(rawSize)/float64(compressedSize) > w.ratio
}

// WriteBlock writes payload compressed with the configured compression,
// falling back to no compression when it does not pay off.
func (w *Writer) WriteBlock(payload []byte) (Handle, error) {
	compression := w.compression
	if compression != compress.NoCompression && len(payload) != 0 {
		compressed, err := compress.Encode(compression, w.compressedBuf[:cap(w.compressedBuf)], payload)
		switch {
		case err == nil && w.acceptCompression(len(payload), len(compressed)):
			w.compressedBuf = compressed[:0]
			return w.WriteRawBlock(compressed, compression)
		case err != nil:
			w.logger.Warnf("compression %s failed, block written raw: %s", compression, err)
		}
	}
	return w.WriteRawBlock(payload, compress.NoCompression)
}

func (w *Writer) WriteRawBlock(payload []byte, compression compress.Type) (Handle, error) {
	if w.err != nil {
		return Handle{}, w.err
	}
	trailer := w.scratch[:BlockTrailerSize]
	trailer[0] = byte(compression)
	checksum := crc.Update(crc.New(payload), trailer[:1])
	binary.LittleEndian.PutUint32(trailer[1:], checksum.Value())
	handle := Handle{Offset: uint64(w.offset), Length: uint64(len(payload))}
	if err := w.write(payload); err != nil {
		return Handle{}, err
	}
	if err := w.write(trailer); err != nil {
		return Handle{}, err
	}
	return handle, nil
}

// Finish writes the footer pointing at the meta block.
func (w *Writer) Finish(footer Footer) error {
	if w.err != nil {
		return w.err
	}
	i := footer.Encode(w.scratch[:])
	return w.write(w.scratch[:i])
}

func (w *Writer) write(b []byte) error {
	n, err := w.w.Write(b)
	w.offset += int64(n)
	if err != nil {
		w.err = err
	}
	return err
}
