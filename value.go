// FILE: lixenwraith/motherboard/value.go
package motherboard

import (
	"strconv"
)

// Kind identifies the host-native representation carried by a Value.
type Kind uint8

const (
	// KindNil is the zero Value, reported by the host for properties that have
	// no value yet (e.g. the previous value in an initial batch)
	KindNil Kind = iota
	// KindNumber is a 64-bit float, the host representation of every numeric property
	KindNumber
	// KindBoolean is a boolean property
	KindBoolean
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the host-native value of a property. It is a small comparable value
// type so that diffs can be copied and compared without allocation.
type Value struct {
	kind Kind
	num  float64
}

// Nil is the empty host value.
var Nil = Value{}

// MakeNumber wraps a float64 into a host value.
func MakeNumber(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// MakeBoolean wraps a bool into a host value.
func MakeBoolean(b bool) Value {
	if b {
		return Value{kind: KindBoolean, num: 1}
	}
	return Value{kind: KindBoolean}
}

// Kind returns the representation of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether this is the empty host value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// Number returns the numeric payload. Booleans read as 0 or 1 and Nil reads as 0,
// so the conversion is total.
func (v Value) Number() float64 { return v.num }

// Bool returns the boolean payload. Numbers read as true when non-zero.
func (v Value) Bool() bool { return v.num != 0 }

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool())
	default:
		return "nil"
	}
}
