package trail_test

import (
	"testing"

	"github.com/kezhuw/traildb/internal/errors"
	"github.com/kezhuw/traildb/internal/item"
	"github.com/kezhuw/traildb/internal/trail"
	"github.com/stretchr/testify/require"
)

func TestSortIsStable(t *testing.T) {
	events := []trail.RawEvent{
		{Timestamp: 9, Values: []item.Val{1}},
		{Timestamp: 3, Values: []item.Val{2}},
		{Timestamp: 9, Values: []item.Val{3}},
		{Timestamp: 1, Values: []item.Val{4}},
	}
	trail.Sort(events)
	var got []item.Val
	for _, ev := range events {
		got = append(got, ev.Values[0])
	}
	require.Equal(t, []item.Val{4, 2, 1, 3}, got)
}

func TestEncodeDecode(t *testing.T) {
	events := []trail.RawEvent{
		{Timestamp: 100, Values: []item.Val{1, 0}},
		{Timestamp: 100, Values: []item.Val{1, 2}},
		{Timestamp: 250, Values: []item.Val{3}},
		{Timestamp: 251, Values: []item.Val{3, 0}},
	}
	data := trail.Encode(nil, events, 2)

	var d trail.Decoder
	d.Reset(data, 2, 0)
	wantChanged := [][]item.Item{
		{item.Make(1, 1)},
		{item.Make(2, 2)},
		{item.Make(1, 3), item.Make(2, 0)},
		{},
	}
	for i, ev := range events {
		require.True(t, d.Next(), "event %d", i)
		require.Equal(t, ev.Timestamp, d.Timestamp())
		want := []item.Item{item.Make(1, 0), item.Make(2, 0)}
		for j, v := range ev.Values {
			want[j] = item.Make(item.Field(j+1), v)
		}
		require.Equal(t, want, d.State())
		require.ElementsMatch(t, wantChanged[i], d.Changed())
	}
	require.False(t, d.Next())
	require.NoError(t, d.Err())
}

func TestDecoderResetClearsState(t *testing.T) {
	data := trail.Encode(nil, []trail.RawEvent{{Timestamp: 1, Values: []item.Val{7}}}, 1)
	var d trail.Decoder
	d.Reset(data, 1, 0)
	require.True(t, d.Next())
	d.Reset(trail.Encode(nil, []trail.RawEvent{{Timestamp: 2}}, 1), 1, 0)
	require.True(t, d.Next())
	require.Equal(t, uint64(2), d.Timestamp())
	require.Equal(t, []item.Item{item.Make(1, 0)}, d.State())
	require.Empty(t, d.Changed())
}

func TestDecoderCorruption(t *testing.T) {
	data := trail.Encode(nil, []trail.RawEvent{{Timestamp: 1, Values: []item.Val{7, 8}}}, 2)

	var d trail.Decoder
	d.Reset(data[:len(data)-1], 2, 64)
	require.False(t, d.Next())
	require.True(t, errors.IsCorrupt(d.Err()))

	d.Reset(data, 1, 0)
	require.False(t, d.Next())
	require.True(t, errors.IsCorrupt(d.Err()))
	require.False(t, d.Next())
}
