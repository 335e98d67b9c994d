// Package crc computes masked CRC-32 checksums of block contents using
// Castagnoli's polynomial.
package crc

import (
	"hash/crc32"
	"strconv"
)

var table = crc32.MakeTable(crc32.Castagnoli)

const maskDelta = 0xa282ead8

// CRC is a CRC-32 checksum computed using Castagnoli's polynomial.
type CRC struct {
	checksum uint32
}

// New computes checksum using given bytes.
func New(b []byte) CRC {
	return CRC{crc32.Checksum(b, table)}
}

// Update updates checksum using given bytes.
func Update(c CRC, b []byte) CRC {
	return CRC{crc32.Update(c.checksum, table, b)}
}

// Value returns a masked checksum value.
func (c CRC) Value() uint32 {
	return (c.checksum>>15 | c.checksum<<17) + maskDelta
}

// Unmask recovers the raw checksum from a masked value.
func Unmask(masked uint32) uint32 {
	rot := masked - maskDelta
	return rot>>17 | rot<<15
}

// String implements fmt.Stringer.
func (c CRC) String() string {
	return strconv.FormatUint(uint64(c.Value()), 10)
}
