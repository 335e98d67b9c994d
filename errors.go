package traildb

import "github.com/kezhuw/traildb/internal/errors"

var (
	ErrNotFound       = errors.ErrNotFound // uuid, field or value not found
	ErrTrailNotFound  = errors.ErrTrailNotFound
	ErrCursorAlloc    = errors.ErrCursorAlloc
	ErrFilterBind     = errors.ErrFilterBind
	ErrTrailLoad      = errors.ErrTrailLoad
	ErrTooManyValues  = errors.ErrTooManyValues
	ErrFieldMismatch  = errors.ErrFieldMismatch
	ErrInvalidField   = errors.ErrInvalidField
	ErrFinalized      = errors.ErrFinalized
	ErrCursorReleased = errors.ErrCursorReleased
	ErrDBClosed       = errors.ErrDBClosed
)

// CorruptionError reports malformed data in a database file.
type CorruptionError = errors.CorruptionError

// TrailError reports a traversal failure. Kind is one of ErrCursorAlloc,
// ErrFilterBind or ErrTrailLoad; errors.Is matches both Kind and the cause.
type TrailError = errors.TrailError

// IsCorrupt returns a boolean indicating whether the error is a corruption error.
func IsCorrupt(err error) bool {
	return errors.IsCorrupt(err)
}
