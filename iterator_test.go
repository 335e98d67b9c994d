package traildb_test

import (
	"errors"
	"testing"

	"github.com/kezhuw/traildb"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func trailIDs(visits []visit) []uint64 {
	var ids []uint64
	for _, v := range visits {
		if n := len(ids); n == 0 || ids[n-1] != v.trailID {
			ids = append(ids, v.trailID)
		}
	}
	return ids
}

type TrailIteratorTestSuite struct {
	suite.Suite
}

func (suite *TrailIteratorTestSuite) TestVisitsEveryTrailInOrder() {
	require := suite.Require()
	for n := 0; n <= 9; n++ {
		counts := make([]int, n)
		for i := range counts {
			counts[i] = 1 + i%3
		}
		db := newStubDB(counts...)
		visits, err := traildb.Fold(db, nil, collectVisits, []visit(nil))
		require.NoError(err)
		want := make([]uint64, n)
		for i := range want {
			want[i] = uint64(i)
		}
		if n == 0 {
			want = nil
		}
		require.Equal(want, trailIDs(visits), "n=%d", n)
		require.Equal(want, db.loads, "n=%d", n)
	}
}

func (suite *TrailIteratorTestSuite) TestEmptyDatabase() {
	require := suite.Require()
	db := newStubDB()
	got, err := traildb.Fold(db, nil, func(_ traildb.Database, _ uint64, _ *traildb.Event, acc int) int {
		return acc + 1
	}, 42)
	require.NoError(err)
	require.Equal(42, got)
	require.Empty(db.loads)
	require.Equal(1, db.allocated)
	require.Equal(1, db.released)
}

func (suite *TrailIteratorTestSuite) TestFilterMatchingNothingAttemptsEveryTrail() {
	require := suite.Require()
	db := newStubDB(3, 1, 4, 1, 5)
	db.match = func(uint64, traildb.Event) bool { return false }
	visits, err := traildb.Fold(db, traildb.NewEventFilter(), collectVisits, []visit(nil))
	require.NoError(err)
	require.Nil(visits)
	require.Equal([]uint64{0, 1, 2, 3, 4}, db.loads)
}

func (suite *TrailIteratorTestSuite) TestFilterMatchingEverythingEqualsUnfiltered() {
	require := suite.Require()
	db := newStubDB(2, 0, 3, 1)
	unfiltered, err := traildb.Fold(db, nil, collectVisits, []visit(nil))
	require.NoError(err)

	db.match = func(uint64, traildb.Event) bool { return true }
	filtered, err := traildb.Fold(db, traildb.NewEventFilter(), collectVisits, []visit(nil))
	require.NoError(err)
	require.Equal(unfiltered, filtered)
	require.Len(filtered, 6)
}

func (suite *TrailIteratorTestSuite) TestPartialFilterSkipsTrailsWithoutMatch() {
	require := suite.Require()
	db := newStubDB(2, 2, 2)
	db.match = func(trailID uint64, ev traildb.Event) bool {
		return trailID != 1 && ev.Timestamp%2 == 1
	}
	visits, err := traildb.Fold(db, traildb.NewEventFilter(), collectVisits, []visit(nil))
	require.NoError(err)
	require.Equal([]visit{{trailID: 0, timestamp: 1}, {trailID: 2, timestamp: 201}}, visits)
}

func (suite *TrailIteratorTestSuite) TestReleaseBalancesAllocation() {
	require := suite.Require()
	db := newStubDB(1, 2, 3)
	_, err := traildb.Fold(db, nil, collectVisits, []visit(nil))
	require.NoError(err)
	require.Equal(db.allocated, db.released)

	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	require.True(it.Next())
	require.NoError(it.Release())
	require.NoError(it.Release())
	require.False(it.Next())
	require.Equal(2, db.allocated)
	require.Equal(2, db.released)
}

func (suite *TrailIteratorTestSuite) TestLoadFailureSkipsTrail() {
	require := suite.Require()
	db := newStubDB(1, 1, 1, 1, 1)
	db.failLoad = map[uint64]bool{2: true}

	var skipped []uint64
	var skipErr error
	opts := &traildb.IteratorOptions{OnSkip: func(trailID uint64, err error) {
		skipped = append(skipped, trailID)
		skipErr = err
	}}
	visits, err := traildb.FoldWithOptions(db, nil, opts, collectVisits, []visit(nil))
	require.NoError(err)
	require.Equal([]uint64{0, 1, 3, 4}, trailIDs(visits))
	require.Equal([]uint64{0, 1, 2, 3, 4}, db.loads)
	require.Equal([]uint64{2}, skipped)
	require.True(errors.Is(skipErr, traildb.ErrTrailLoad))
	require.True(errors.Is(skipErr, errLoad))

	var terr *traildb.TrailError
	require.True(errors.As(skipErr, &terr))
	require.Equal(uint64(2), terr.TrailID)
}

func (suite *TrailIteratorTestSuite) TestSkippedCount() {
	require := suite.Require()
	db := newStubDB(1, 1, 1)
	db.failLoad = map[uint64]bool{0: true, 2: true}
	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	defer it.Release()
	require.True(it.Next())
	require.Equal(uint64(1), it.TrailID())
	require.False(it.Next())
	require.Equal(uint64(2), it.Skipped())
}

func (suite *TrailIteratorTestSuite) TestCursorAllocationFailure() {
	require := suite.Require()
	db := newStubDB(1, 2)
	db.failAlloc = errAlloc

	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.Nil(it)
	require.True(errors.Is(err, traildb.ErrCursorAlloc))
	require.True(errors.Is(err, errAlloc))

	got, err := traildb.Fold(db, nil, collectVisits, []visit{{trailID: 9}})
	require.True(errors.Is(err, traildb.ErrCursorAlloc))
	require.Equal([]visit{{trailID: 9}}, got)
	require.Equal(0, db.allocated)
	require.Equal(0, db.released)
	require.Empty(db.loads)
}

func (suite *TrailIteratorTestSuite) TestFilterBindFailureReleasesCursor() {
	require := suite.Require()
	db := newStubDB(1)
	db.failBind = errBind

	it, err := traildb.NewTrailIterator(db, traildb.NewEventFilter(), nil)
	require.Nil(it)
	require.True(errors.Is(err, traildb.ErrFilterBind))
	require.True(errors.Is(err, errBind))
	require.Equal(1, db.allocated)
	require.Equal(1, db.released)
	require.Empty(db.loads)
}

func (suite *TrailIteratorTestSuite) TestNilFilterIsNotBound() {
	require := suite.Require()
	db := newStubDB(1)
	db.failBind = errBind
	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	require.NoError(it.Release())
}

func (suite *TrailIteratorTestSuite) TestExhaustedStaysExhausted() {
	require := suite.Require()
	db := newStubDB(1, 0)
	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	defer it.Release()
	require.True(it.Next())
	require.Equal(uint64(0), it.TrailID())
	require.False(it.Next())
	require.False(it.Next())
	require.False(it.Next())
	require.Equal([]uint64{0, 1}, db.loads)
}

func (suite *TrailIteratorTestSuite) TestPositionedCursorKeepsFirstEvent() {
	require := suite.Require()
	db := newStubDB(0, 3)
	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	defer it.Release()
	require.True(it.Next())
	require.Equal(uint64(1), it.TrailID())
	var timestamps []uint64
	for ev := it.Cursor().Next(); ev != nil; ev = it.Cursor().Next() {
		timestamps = append(timestamps, ev.Timestamp)
	}
	require.Equal([]uint64{100, 101, 102}, timestamps)
}

func (suite *TrailIteratorTestSuite) TestPartiallyDrainedTrailIsLeftBehind() {
	require := suite.Require()
	db := newStubDB(3, 2)
	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	defer it.Release()
	require.True(it.Next())
	require.NotNil(it.Cursor().Next())
	require.True(it.Next())
	require.Equal(uint64(1), it.TrailID())
	require.Equal(uint64(100), it.Cursor().Next().Timestamp)
}

func (suite *TrailIteratorTestSuite) TestFoldReleasesOnPanic() {
	require := suite.Require()
	db := newStubDB(1, 1)
	require.PanicsWithValue("boom", func() {
		traildb.Fold(db, nil, func(traildb.Database, uint64, *traildb.Event, int) int {
			panic("boom")
		}, 0)
	})
	require.Equal(1, db.allocated)
	require.Equal(1, db.released)
}

func (suite *TrailIteratorTestSuite) TestFoldReturnsReleaseError() {
	require := suite.Require()
	db := newStubDB(2, 1)
	db.failRelease = errRelease
	visits, err := traildb.Fold(db, nil, collectVisits, []visit(nil))
	require.ErrorIs(err, errRelease)
	require.Equal([]visit{{0, 0}, {0, 1}, {1, 100}}, visits)
	require.Equal(1, db.released)
}

func (suite *TrailIteratorTestSuite) TestFoldKeepsCreationErrorOverRelease() {
	require := suite.Require()
	db := newStubDB(1)
	db.failBind = errBind
	db.failRelease = errRelease
	acc, err := traildb.Fold(db, traildb.NewEventFilter(), func(traildb.Database, uint64, *traildb.Event, int) int {
		return -1
	}, 5)
	require.ErrorIs(err, errBind)
	require.False(errors.Is(err, errRelease))
	require.Equal(5, acc)
	require.Equal(1, db.released)
}

func (suite *TrailIteratorTestSuite) TestReleaseErrorReportedOnce() {
	require := suite.Require()
	db := newStubDB(1)
	db.failRelease = errRelease
	it, err := traildb.NewTrailIterator(db, nil, nil)
	require.NoError(err)
	require.ErrorIs(it.Release(), errRelease)
	require.NoError(it.Release())
	require.False(it.Next())
}

func (suite *TrailIteratorTestSuite) TestEventCountsPerTrail() {
	require := suite.Require()
	type counts struct {
		perTrail map[uint64]int
		total    int
	}
	db := newStubDB(2, 0, 3, 1)
	got, err := traildb.Fold(db, nil, func(_ traildb.Database, trailID uint64, _ *traildb.Event, acc *counts) *counts {
		acc.perTrail[trailID]++
		acc.total++
		return acc
	}, &counts{perTrail: make(map[uint64]int)})
	require.NoError(err)
	require.Equal(map[uint64]int{0: 2, 2: 3, 3: 1}, got.perTrail)
	require.Equal(0, got.perTrail[1])
	require.Equal(6, got.total)
	require.Equal([]uint64{0, 1, 2, 3}, db.loads)
}

func TestTrailIterator(t *testing.T) {
	suite.Run(t, new(TrailIteratorTestSuite))
}

func TestFoldPassesDatabase(t *testing.T) {
	db := newStubDB(1)
	got, err := traildb.Fold(db, nil, func(d traildb.Database, _ uint64, _ *traildb.Event, acc traildb.Database) traildb.Database {
		return d
	}, traildb.Database(nil))
	require.NoError(t, err)
	require.Same(t, db, got)
}
