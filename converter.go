// FILE: lixenwraith/motherboard/converter.go
package motherboard

import (
	"math"
)

// Converter maps between the host-native Value and the cached type T. A nil
// FromHost makes the property write-only, a nil ToHost makes it read-only; at
// least one direction must be present.
type Converter[T any] struct {
	FromHost func(Value) T
	ToHost   func(T) Value
}

// Readable reports whether values can be read from the host.
func (c Converter[T]) Readable() bool { return c.FromHost != nil }

// Writable reports whether values can be pushed to the host.
func (c Converter[T]) Writable() bool { return c.ToHost != nil }

// ReadOnly strips the write direction.
func ReadOnly[T any](c Converter[T]) Converter[T] {
	c.ToHost = nil
	return c
}

// WriteOnly strips the read direction.
func WriteOnly[T any](c Converter[T]) Converter[T] {
	c.FromHost = nil
	return c
}

// Builtin converters for the host's primitive property types.
var (
	Bool = Converter[bool]{
		FromHost: Value.Bool,
		ToHost:   MakeBoolean,
	}
	Float64 = Converter[float64]{
		FromHost: Value.Number,
		ToHost:   MakeNumber,
	}
	Float32 = Converter[float32]{
		FromHost: func(v Value) float32 { return float32(v.Number()) },
		ToHost:   func(f float32) Value { return MakeNumber(float64(f)) },
	}
	Int32 = Converter[int32]{
		FromHost: func(v Value) int32 { return int32(v.Number()) },
		ToHost:   func(i int32) Value { return MakeNumber(float64(i)) },
	}
	// Note reads a 0..1 CV number as a MIDI note 0..127.
	Note = Converter[int32]{
		FromHost: func(v Value) int32 { return NoteFromCV(v.Number()) },
		ToHost:   func(n int32) Value { return MakeNumber(float64(n) / 127) },
	}
	// Gate reads a 0..1 CV number as a velocity 0..127.
	Gate = Converter[int32]{
		FromHost: func(v Value) int32 { return GateFromCV(v.Number()) },
		ToHost:   func(n int32) Value { return MakeNumber(float64(n) / 127) },
	}
	// VolumeCube maps a 0..1 fader (unity at 0.7) to a cubic gain.
	VolumeCube = Converter[float32]{
		FromHost: volumeCubeFromHost,
		ToHost:   volumeCubeToHost,
	}
)

// Enum converts host numbers to an integer-backed enumeration.
func Enum[E ~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32]() Converter[E] {
	return Converter[E]{
		FromHost: func(v Value) E { return E(int64(v.Number())) },
		ToHost:   func(e E) Value { return MakeNumber(float64(e)) },
	}
}

// NoteFromCV converts a 0..1 CV reading to a note number, rounding up readings
// that land just below a semitone.
func NoteFromCV(v float64) int32 {
	return int32(Clamp(v*127+0.1, 0, 127))
}

// GateFromCV converts a 0..1 CV reading to a gate velocity.
func GateFromCV(v float64) int32 {
	return int32(Clamp(v*127, 0, 127))
}

// VolumeUnity is the cubic gain reported for the fader's unity position.
const VolumeUnity float32 = 1.0

func volumeCubeFromHost(v Value) float32 {
	vol := float32(v.Number())
	if math.Abs(float64(vol-0.7)) < 1e-5 {
		return VolumeUnity
	}
	corrected := vol / 0.7
	return corrected * corrected * corrected
}

func volumeCubeToHost(gain float32) Value {
	return MakeNumber(math.Cbrt(float64(gain)) * 0.7)
}
