package traildb_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/kezhuw/traildb"
	"github.com/stretchr/testify/require"
)

func TestConstructorRejectsFields(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.tdb")
	for _, fields := range [][]string{
		{"page", ""},
		{"time"},
		{"page", "user", "page"},
	} {
		_, err := traildb.NewConstructor(name, fields, nil)
		require.True(t, errors.Is(err, traildb.ErrInvalidField), "fields=%q", fields)
	}
}

func TestConstructorLifecycle(t *testing.T) {
	name := filepath.Join(t.TempDir(), "life.tdb")
	cons, err := traildb.NewConstructor(name, []string{"a"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"time", "a"}, cons.Fields())

	err = cons.Add(uuid.New(), 1, []string{"x", "y"})
	require.True(t, errors.Is(err, traildb.ErrTooManyValues))

	require.NoError(t, cons.Add(uuid.New(), 1, []string{"x"}))
	require.NoError(t, cons.Finalize())
	require.Equal(t, traildb.ErrFinalized, cons.Finalize())
	require.Equal(t, traildb.ErrFinalized, cons.Add(uuid.New(), 2, nil))
	require.NoError(t, cons.Close())

	_, err = os.Stat(name + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestEmptyDatabase(t *testing.T) {
	name := filepath.Join(t.TempDir(), "empty.tdb")
	cons, err := traildb.NewConstructor(name, nil, nil)
	require.NoError(t, err)
	require.NoError(t, cons.Finalize())

	db, err := traildb.Open(name, nil)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, uint64(0), db.NumTrails())
	require.Equal(t, 1, db.NumFields())

	got, err := traildb.Fold(db, nil, func(_ traildb.Database, _ uint64, _ *traildb.Event, acc int) int {
		return acc + 1
	}, 7)
	require.NoError(t, err)
	require.Equal(t, 7, got)
}

func TestOpenRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short.tdb")
	require.NoError(t, os.WriteFile(short, []byte("tdb"), 0644))
	_, err := traildb.Open(short, nil)
	require.True(t, traildb.IsCorrupt(err), "got %v", err)

	garbage := filepath.Join(dir, "garbage.tdb")
	require.NoError(t, os.WriteFile(garbage, make([]byte, 4096), 0644))
	_, err = traildb.Open(garbage, nil)
	require.True(t, traildb.IsCorrupt(err), "got %v", err)

	_, err = traildb.Open(filepath.Join(dir, "missing.tdb"), nil)
	require.True(t, os.IsNotExist(err))
}

func TestCorruptTrailIsSkipped(t *testing.T) {
	name := filepath.Join(t.TempDir(), "corrupt.tdb")
	opts := &traildb.Options{Compression: traildb.NoCompression, VerifyChecksums: true}
	require.NoError(t, buildDB(name, opts, fixtureEvents))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	// Trail 0 is the first block of the file.
	data[0] ^= 0xff
	require.NoError(t, os.WriteFile(name, data, 0644))

	db, err := traildb.Open(name, opts)
	require.NoError(t, err)
	defer db.Close()

	var skipErrs []error
	iopts := &traildb.IteratorOptions{OnSkip: func(trailID uint64, err error) {
		require.Equal(t, uint64(0), trailID)
		skipErrs = append(skipErrs, err)
	}}
	got, err := traildb.FoldWithOptions(db, nil, iopts, func(_ traildb.Database, trailID uint64, ev *traildb.Event, acc []string) []string {
		return append(acc, dumpEvent(db, trailID, ev))
	}, []string(nil))
	require.NoError(t, err)
	require.Equal(t, fixtureDump[1:], got)
	require.Len(t, skipErrs, 1)
	require.True(t, errors.Is(skipErrs[0], traildb.ErrTrailLoad))
	require.True(t, traildb.IsCorrupt(skipErrs[0]))
}

func TestAppendFailsOnUnreadableTrail(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "corrupt.tdb")
	opts := &traildb.Options{Compression: traildb.NoCompression, VerifyChecksums: true}
	require.NoError(t, buildDB(name, opts, fixtureEvents))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	// Trail 0 is the first block of the file.
	copy(data, []byte{0xff, 0xff, 0xff})
	require.NoError(t, os.WriteFile(name, data, 0644))

	db, err := traildb.Open(name, opts)
	require.NoError(t, err)
	defer db.Close()

	cons, err := traildb.NewConstructor(filepath.Join(dir, "copy.tdb"), []string{"page", "user"}, nil)
	require.NoError(t, err)
	defer cons.Close()
	err = cons.Append(db)
	require.True(t, errors.Is(err, traildb.ErrTrailLoad), "got %v", err)
	require.True(t, traildb.IsCorrupt(err), "got %v", err)

	var terr *traildb.TrailError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, uint64(0), terr.TrailID)
}

func TestClosedDB(t *testing.T) {
	name := filepath.Join(t.TempDir(), "closed.tdb")
	require.NoError(t, buildDB(name, nil, fixtureEvents))
	db, err := traildb.Open(name, nil)
	require.NoError(t, err)

	cursor, err := db.NewCursor()
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Equal(t, traildb.ErrDBClosed, db.Close())
	require.Equal(t, traildb.ErrDBClosed, cursor.GetTrail(0))
	require.NoError(t, cursor.Release())

	_, err = db.NewCursor()
	require.Equal(t, traildb.ErrDBClosed, err)
	_, err = traildb.Fold(db, nil, collectVisits, []visit(nil))
	require.True(t, errors.Is(err, traildb.ErrCursorAlloc))
	require.True(t, errors.Is(err, traildb.ErrDBClosed))
}
