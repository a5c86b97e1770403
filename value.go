// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ulox

import (
	"math"
	"strconv"
)

// ValueType is the tag of a Value.
type ValueType uint8

// List of value types.
const (
	ValNil ValueType = iota
	ValBool
	ValNumber
)

var valueTypeNames = [...]string{
	ValNil:    "nil",
	ValBool:   "bool",
	ValNumber: "number",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// Value is a tagged union of nil, bool and float64. Values are copied, never
// shared.
type Value struct {
	typ ValueType
	b   bool
	num float64
}

var (
	// Nil is the nil Value. It is also the zero Value.
	Nil = Value{}
	// True is the true Value.
	True = Value{typ: ValBool, b: true}
	// False is the false Value.
	False = Value{typ: ValBool}
)

// Bool returns a boolean Value.
func Bool(v bool) Value {
	if v {
		return True
	}
	return False
}

// Number returns a numeric Value.
func Number(v float64) Value {
	return Value{typ: ValNumber, num: v}
}

// Type returns the tag of the value.
func (v Value) Type() ValueType { return v.typ }

// TypeName returns the name of the value's type.
func (v Value) TypeName() string { return v.typ.String() }

// IsNil returns true if v is nil.
func (v Value) IsNil() bool { return v.typ == ValNil }

// IsBool returns true if v is a boolean.
func (v Value) IsBool() bool { return v.typ == ValBool }

// IsNumber returns true if v is a number.
func (v Value) IsNumber() bool { return v.typ == ValNumber }

// AsBool returns the boolean payload. It is false for other types.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload. It is 0 for other types.
func (v Value) AsNumber() float64 { return v.num }

// Equal reports whether v and other have the same type and payload. Numbers
// compare with IEEE-754 semantics, so NaN is not equal to itself.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case ValBool:
		return v.b == other.b
	case ValNumber:
		return v.num == other.num
	}
	return true
}

func (v Value) String() string {
	switch v.typ {
	case ValBool:
		return strconv.FormatBool(v.b)
	case ValNumber:
		return formatNumber(v.num)
	}
	return "nil"
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
