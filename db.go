package traildb

import (
	"bytes"
	"io"
	"os"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kezhuw/traildb/internal/errors"
	"github.com/kezhuw/traildb/internal/file"
	"github.com/kezhuw/traildb/internal/format"
	"github.com/kezhuw/traildb/internal/item"
	"github.com/kezhuw/traildb/internal/options"
)

// Database is what trail iteration needs from a store: a trail count that
// is stable for the store's lifetime, and cursors over its trails.
type Database interface {
	NumTrails() uint64

	// NewCursor creates a cursor owned by the caller, who must Release it.
	NewCursor() (Cursor, error)
}

// DB represents an opened, immutable trail database. It is safe for
// concurrent use by multiple cursors.
type DB struct {
	f       file.ReadCloser
	size    int64
	name    string
	options *options.Options
	closed  atomic.Bool

	meta     format.Meta
	index    []format.Handle
	uuids    []byte
	lexicons [][][]byte
	values   []map[string]item.Val
	fields   map[string]item.Field
}

var _ Database = (*DB)(nil)

// Open opens the database stored in file name.
func Open(name string, opts *Options) (db *DB, err error) {
	iopts := convertOptions(opts)
	fs := iopts.FileSystem
	size, err := fs.Size(name)
	if err != nil {
		return nil, err
	}
	f, err := fs.Open(name, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()
	db = &DB{f: f, size: size, name: name, options: iopts}
	if err := db.load(); err != nil {
		return nil, err
	}
	iopts.Logger.Debugf("opened %s: %d trails, %d events, %d fields", name, db.meta.NumTrails, db.meta.NumEvents, len(db.meta.Fields))
	return db, nil
}

func (db *DB) load() error {
	size := db.size
	if size < format.FooterLength {
		return errors.NewCorruption("file", 0, "file too short")
	}
	var scratch [format.FooterLength]byte
	if _, err := db.f.ReadAt(scratch[:], size-format.FooterLength); err != nil && err != io.EOF {
		return err
	}
	var footer format.Footer
	if err := footer.Unmarshal(scratch[:]); err != nil {
		return err
	}
	buf, err := format.ReadBlock(db.f, db.size, "meta block", footer.MetaHandle, true)
	if err != nil {
		return err
	}
	if err := db.meta.Unmarshal(buf); err != nil {
		return err
	}
	verify := db.options.VerifyChecksums
	if buf, err = format.ReadBlock(db.f, db.size, "trail index", db.meta.Index, verify); err != nil {
		return err
	}
	if db.index, err = format.UnmarshalIndex(buf, db.meta.NumTrails); err != nil {
		return err
	}
	if db.uuids, err = format.ReadBlock(db.f, db.size, "uuids", db.meta.UUIDs, verify); err != nil {
		return err
	}
	if uint64(len(db.uuids)) != 16*db.meta.NumTrails {
		return errors.NewCorruption("uuids", int64(db.meta.UUIDs.Offset), "wrong length")
	}
	db.fields = make(map[string]item.Field, len(db.meta.Fields))
	for i, name := range db.meta.Fields {
		db.fields[name] = item.Field(i)
	}
	db.lexicons = make([][][]byte, len(db.meta.Lexicons))
	db.values = make([]map[string]item.Val, len(db.meta.Lexicons))
	for i, h := range db.meta.Lexicons {
		if buf, err = format.ReadBlock(db.f, db.size, "lexicon", h, verify); err != nil {
			return err
		}
		if db.lexicons[i], err = format.UnmarshalLexicon(buf); err != nil {
			return err
		}
		values := make(map[string]item.Val, len(db.lexicons[i]))
		for j, v := range db.lexicons[i] {
			values[string(v)] = item.Val(j + 1)
		}
		db.values[i] = values
	}
	return nil
}

// Close closes the database file. Cursors created from db must not be used
// afterwards.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return ErrDBClosed
	}
	return db.f.Close()
}

func (db *DB) Name() string {
	return db.name
}

func (db *DB) NumTrails() uint64 {
	return db.meta.NumTrails
}

func (db *DB) NumEvents() uint64 {
	return db.meta.NumEvents
}

// NumFields returns the number of fields including the time field.
func (db *DB) NumFields() int {
	return len(db.meta.Fields)
}

func (db *DB) MinTimestamp() uint64 {
	return db.meta.MinTimestamp
}

func (db *DB) MaxTimestamp() uint64 {
	return db.meta.MaxTimestamp
}

// Fields returns the field names, starting with "time".
func (db *DB) Fields() []string {
	fields := make([]string, len(db.meta.Fields))
	copy(fields, db.meta.Fields)
	return fields
}

func (db *DB) FieldName(field Field) (string, error) {
	if int(field) >= len(db.meta.Fields) {
		return "", ErrInvalidField
	}
	return db.meta.Fields[field], nil
}

// Field returns the index of the named field.
func (db *DB) Field(name string) (Field, error) {
	field, ok := db.fields[name]
	if !ok {
		return 0, ErrInvalidField
	}
	return field, nil
}

// LexiconSize returns the number of distinct values of field, counting the
// empty value.
func (db *DB) LexiconSize(field Field) (uint64, error) {
	if field == item.TimeField || int(field) >= len(db.meta.Fields) {
		return 0, ErrInvalidField
	}
	return uint64(len(db.lexicons[field-1])) + 1, nil
}

// Item returns the item of value in field. The empty string maps to the
// empty value of every field.
func (db *DB) Item(field Field, value string) (Item, bool) {
	if field == item.TimeField || int(field) >= len(db.meta.Fields) {
		return 0, false
	}
	if value == "" {
		return item.Make(field, 0), true
	}
	val, ok := db.values[field-1][value]
	if !ok {
		return 0, false
	}
	return item.Make(field, val), true
}

// ItemValue returns the string value of it.
func (db *DB) ItemValue(it Item) (string, error) {
	field, val := it.Field(), it.Val()
	if field == item.TimeField || int(field) >= len(db.meta.Fields) {
		return "", ErrInvalidField
	}
	if val == 0 {
		return "", nil
	}
	lexicon := db.lexicons[field-1]
	if val > item.Val(len(lexicon)) {
		return "", ErrNotFound
	}
	return string(lexicon[val-1]), nil
}

// UUID returns the uuid of trail trailID.
func (db *DB) UUID(trailID uint64) (uuid.UUID, error) {
	var id uuid.UUID
	if trailID >= db.meta.NumTrails {
		return id, ErrTrailNotFound
	}
	copy(id[:], db.uuids[16*trailID:])
	return id, nil
}

// TrailID returns the trail id of uuid id. Trails are ordered by uuid.
func (db *DB) TrailID(id uuid.UUID) (uint64, error) {
	n := int(db.meta.NumTrails)
	i := sort.Search(n, func(i int) bool {
		return bytes.Compare(db.uuids[16*i:16*i+16], id[:]) >= 0
	})
	if i == n || !bytes.Equal(db.uuids[16*i:16*i+16], id[:]) {
		return 0, ErrNotFound
	}
	return uint64(i), nil
}

// NewCursor creates a cursor producing full events.
func (db *DB) NewCursor() (Cursor, error) {
	return db.NewCursorWithOptions(nil)
}

// NewCursorWithOptions creates a cursor configured by opts.
func (db *DB) NewCursorWithOptions(opts *CursorOptions) (Cursor, error) {
	if db.closed.Load() {
		return nil, ErrDBClosed
	}
	return newCursor(db, convertCursorOptions(opts)), nil
}

func (db *DB) readTrail(trailID uint64) ([]byte, int64, error) {
	if db.closed.Load() {
		return nil, 0, ErrDBClosed
	}
	if trailID >= db.meta.NumTrails {
		return nil, 0, ErrTrailNotFound
	}
	h := db.index[trailID]
	data, err := format.ReadBlock(db.f, db.size, "trail", h, db.options.VerifyChecksums)
	if err != nil {
		return nil, 0, err
	}
	return data, int64(h.Offset), nil
}
