package traildb

import "github.com/kezhuw/traildb/internal/item"

// Field is the index of a field. Field 0 is the implicit "time" field.
type Field = item.Field

// Val is the index of a value in a field's lexicon. Val 0 is the empty value.
type Val = item.Val

// Item packs a field and a value.
type Item = item.Item

// TimeFieldName is the name of field 0.
const TimeFieldName = item.TimeFieldName

// MakeItem packs field and val into an Item.
func MakeItem(field Field, val Val) Item {
	return item.Make(field, val)
}

// Event is a decoded event of a trail. Items has one item per non time
// field in field order, or, for edge encoded cursors, only the items that
// changed since the previous event of the trail.
//
// Events returned by a cursor are only valid until the next call on it.
type Event struct {
	Timestamp uint64
	Items     []Item
}
