package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("traildb: not found")
	ErrTrailNotFound  = errors.New("traildb: trail not found")
	ErrCursorAlloc    = errors.New("traildb: cursor allocation failed")
	ErrFilterBind     = errors.New("traildb: filter bind failed")
	ErrTrailLoad      = errors.New("traildb: trail load failed")
	ErrTooManyValues  = errors.New("traildb: too many values")
	ErrFieldMismatch  = errors.New("traildb: field mismatch")
	ErrInvalidField   = errors.New("traildb: invalid field")
	ErrFinalized      = errors.New("traildb: constructor finalized")
	ErrCursorReleased = errors.New("traildb: cursor released")
	ErrDBClosed       = errors.New("traildb: db closed")
	ErrNilCursor      = errors.New("traildb: database returned nil cursor")
)

type CorruptionError struct {
	Err      error
	Offset   int64
	Category string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("traildb: corrupt %s at %d: %s", e.Category, e.Offset, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

func NewCorruption(category string, offset int64, err string) error {
	return &CorruptionError{Err: errors.New(err), Offset: offset, Category: category}
}

func IsCorrupt(err error) bool {
	if err == nil {
		return false
	}
	var corrupt *CorruptionError
	if errors.As(err, &corrupt) {
		return true
	}
	return strings.HasPrefix(err.Error(), "traildb: corrupt ")
}

// TrailError reports a failure of kind Kind while traversing trail TrailID.
// Both Kind and Err are reachable through errors.Is.
type TrailError struct {
	Kind    error
	TrailID uint64
	Err     error
}

func (e *TrailError) Error() string {
	if e.Kind == ErrTrailLoad {
		return fmt.Sprintf("%s: trail %d: %s", e.Kind, e.TrailID, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *TrailError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
