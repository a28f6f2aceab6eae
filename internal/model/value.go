package model

import (
	"fmt"
	"math"
	"strconv"
)

// TypeTag identifies how a property is laid out in record content.
type TypeTag int

const (
	Int32   TypeTag = iota // 4 bytes, signed
	Int16S                 // 2 bytes, signed
	Int16U                 // 2 bytes, unsigned
	Float32                // 4 bytes, IEEE-754
	Text16                 // 16 byte fixed text
	Text32                 // 32 byte fixed text
	Byte1                  // 1 byte, unsigned
	Color                  // 3 bytes
)

// Width returns the number of bytes a value of this type occupies.
func (t TypeTag) Width() int {
	switch t {
	case Int32, Float32:
		return 4
	case Int16S, Int16U:
		return 2
	case Text16:
		return 16
	case Text32:
		return 32
	case Byte1:
		return 1
	case Color:
		return 3
	default:
		return 0
	}
}

func (t TypeTag) String() string {
	switch t {
	case Int32:
		return "int32"
	case Int16S:
		return "int16s"
	case Int16U:
		return "int16u"
	case Float32:
		return "float"
	case Text16:
		return "str16"
	case Text32:
		return "str32"
	case Byte1:
		return "byte"
	case Color:
		return "color"
	default:
		return "TypeTag(" + strconv.Itoa(int(t)) + ")"
	}
}

// Triple is a 3-component color as stored in the file. Embedded palette
// entries and palette color properties are Y, Cb, Cr.
type Triple [3]byte

// Value is a decoded property value. Exactly one payload is meaningful,
// selected by Type.
type Value struct {
	tag  TypeTag
	num  int64
	flt  float32
	text string
	col  Triple
}

func Int32Value(v int32) Value   { return Value{tag: Int32, num: int64(v)} }
func Int16SValue(v int16) Value  { return Value{tag: Int16S, num: int64(v)} }
func Int16UValue(v uint16) Value { return Value{tag: Int16U, num: int64(v)} }
func Float32Value(v float32) Value {
	return Value{tag: Float32, flt: v}
}
func ByteValue(v byte) Value    { return Value{tag: Byte1, num: int64(v)} }
func ColorValue(c Triple) Value { return Value{tag: Color, col: c} }

// TextValue creates a text value of the given width (Text16 or Text32).
func TextValue(tag TypeTag, s string) Value {
	return Value{tag: tag, text: s}
}

// Type returns the type tag of the value.
func (v Value) Type() TypeTag { return v.tag }

// Int returns the integer payload of Int32, Int16S, Int16U and Byte1 values.
func (v Value) Int() (int64, bool) {
	switch v.tag {
	case Int32, Int16S, Int16U, Byte1:
		return v.num, true
	}
	return 0, false
}

// Float returns the payload of a Float32 value.
func (v Value) Float() (float32, bool) {
	if v.tag != Float32 {
		return 0, false
	}
	return v.flt, true
}

// Number returns any numeric payload as float64.
func (v Value) Number() (float64, bool) {
	if f, ok := v.Float(); ok {
		return float64(f), true
	}
	if n, ok := v.Int(); ok {
		return float64(n), true
	}
	return 0, false
}

// Text returns the payload of a text value.
func (v Value) Text() (string, bool) {
	if v.tag != Text16 && v.tag != Text32 {
		return "", false
	}
	return v.text, true
}

// Triple returns the payload of a Color value.
func (v Value) Triple() (Triple, bool) {
	if v.tag != Color {
		return Triple{}, false
	}
	return v.col, true
}

// String formats the value the way property sheets print it.
func (v Value) String() string {
	switch v.tag {
	case Float32:
		if math.IsNaN(float64(v.flt)) || math.IsInf(float64(v.flt), 0) {
			return fmt.Sprint(v.flt)
		}
		return strconv.FormatFloat(float64(v.flt), 'g', -1, 32)
	case Text16, Text32:
		return v.text
	case Color:
		return fmt.Sprintf("%d,%d,%d", v.col[0], v.col[1], v.col[2])
	default:
		return strconv.FormatInt(v.num, 10)
	}
}
