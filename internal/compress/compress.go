package compress

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

type Type int

const (
	NoCompression     Type = 0
	SnappyCompression Type = 1
)

var (
	ErrNoCompression          = errors.New("traildb: no compression")
	ErrUnsupportedCompression = errors.New("traildb: unsupported compression")
)

func (t Type) String() string {
	switch t {
	case NoCompression:
		return "none"
	case SnappyCompression:
		return "snappy"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses compression names as printed by Type.String.
func ParseType(name string) (Type, error) {
	switch name {
	case "none":
		return NoCompression, nil
	case "snappy":
		return SnappyCompression, nil
	}
	return NoCompression, ErrUnsupportedCompression
}

func Decode(typ Type, dst, src []byte) ([]byte, error) {
	switch typ {
	case NoCompression:
		return nil, ErrNoCompression
	case SnappyCompression:
		return snappy.Decode(dst, src)
	default:
		return nil, ErrUnsupportedCompression
	}
}

func Encode(typ Type, dst, src []byte) ([]byte, error) {
	switch typ {
	case NoCompression:
		return nil, ErrNoCompression
	case SnappyCompression:
		return snappy.Encode(dst, src), nil
	default:
		return nil, ErrUnsupportedCompression
	}
}
