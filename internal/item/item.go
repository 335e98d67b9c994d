// Package item packs a field index and a lexicon value index into one
// 64-bit item.
package item

// Field is the index of a field. Field 0 is the event timestamp.
type Field uint32

// Val is the index of a value in a field's lexicon. Val 0 is the empty value.
type Val uint64

// Item is a (field, value) pair packed as val<<FieldBits | field.
type Item uint64

const (
	FieldBits = 16

	MaxFields = 1<<FieldBits - 1
	MaxVal    = 1<<(64-FieldBits) - 1
)

// TimeField is the implicit first field of every database.
const TimeField Field = 0

// TimeFieldName is the reserved name of TimeField.
const TimeFieldName = "time"

func Make(field Field, val Val) Item {
	return Item(uint64(val)<<FieldBits | uint64(field))
}

func (it Item) Field() Field {
	return Field(it & MaxFields)
}

func (it Item) Val() Val {
	return Val(it >> FieldBits)
}

// Unknown returns an item of field that no event carries.
func Unknown(field Field) Item {
	return Make(field, MaxVal)
}
