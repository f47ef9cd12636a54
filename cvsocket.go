// FILE: lixenwraith/motherboard/cvsocket.go
package motherboard

import (
	"fmt"
)

// Host-defined object roots and property names of CV sockets.
const (
	CVInputsPath  = "/cv_inputs"
	CVOutputsPath = "/cv_outputs"

	CVConnectedProperty = "connected"
	CVValueProperty     = "value"
)

// CVSource is the pull-model reader consumed by CVOverride. It is polled once
// per block after the registry pass.
type CVSource[U any] interface {
	IsConnected() bool
	Value() U
}

// cvSocket is the common part of input and output sockets: the socket object
// and its "connected" property.
type cvSocket struct {
	object    Object
	connected *Property[bool]
}

func newCVSocket(h Host, objectPath string) (cvSocket, error) {
	object, err := ResolveObject(h, objectPath)
	if err != nil {
		return cvSocket{}, err
	}
	connected, err := NewObjectProperty(h, object, CVConnectedProperty, ReadOnly(Bool))
	if err != nil {
		return cvSocket{}, err
	}
	return cvSocket{object: object, connected: connected}, nil
}

// Object returns the resolved socket object.
func (s *cvSocket) Object() Object { return s.object }

// IsConnected reports whether a cable is plugged in.
func (s *cvSocket) IsConnected() bool { return s.connected.Value() }

// Connected exposes the "connected" property.
func (s *cvSocket) Connected() *Property[bool] { return s.connected }

// CVInSocket reads a CV input: "/cv_inputs/<name>/connected" and ".../value".
type CVInSocket[T comparable] struct {
	cvSocket
	value *Property[T]
}

// NewCVInSocket resolves the CV input named name, reading its value with conv.
func NewCVInSocket[T comparable](h Host, name string, conv Converter[T]) (*CVInSocket[T], error) {
	s, err := newCVSocket(h, CVInputsPath+"/"+name)
	if err != nil {
		return nil, err
	}
	value, err := NewObjectProperty(h, s.object, CVValueProperty, ReadOnly(conv))
	if err != nil {
		return nil, err
	}
	return &CVInSocket[T]{cvSocket: s, value: value}, nil
}

// MustCVInSocket is like NewCVInSocket but panics on error.
func MustCVInSocket[T comparable](h Host, name string, conv Converter[T]) *CVInSocket[T] {
	s, err := NewCVInSocket(h, name, conv)
	if err != nil {
		panic(fmt.Sprintf("cv input construction failed: %v", err))
	}
	return s
}

// Value returns the current CV reading.
func (s *CVInSocket[T]) Value() T { return s.value.Value() }

// ValueProperty exposes the "value" property.
func (s *CVInSocket[T]) ValueProperty() *Property[T] { return s.value }

// IsSameValue compares connection state and reading with other.
func (s *CVInSocket[T]) IsSameValue(other *CVInSocket[T]) bool {
	return s.IsConnected() == other.IsConnected() && s.Value() == other.Value()
}

// IsNotSameValue is the negation of IsSameValue.
func (s *CVInSocket[T]) IsNotSameValue(other *CVInSocket[T]) bool {
	return !s.IsSameValue(other)
}

// IsNewlyConnected reports a connection since the previous snapshot.
func (s *CVInSocket[T]) IsNewlyConnected(previous *CVInSocket[T]) bool {
	return !previous.IsConnected() && s.IsConnected()
}

// Snapshot returns an uninitialized "previous state" socket, filled by CopyFrom.
func (s *CVInSocket[T]) Snapshot() *CVInSocket[T] {
	return &CVInSocket[T]{
		cvSocket: cvSocket{object: s.object, connected: s.connected.Snapshot()},
		value:    s.value.Snapshot(),
	}
}

// CopyFrom copies connection state and reading of src into this snapshot.
func (s *CVInSocket[T]) CopyFrom(src *CVInSocket[T]) {
	s.connected.CopyFrom(src.connected)
	s.value.CopyFrom(src.value)
}

// RegisterForUpdate subscribes both properties to host diffs and to init.
func (s *CVInSocket[T]) RegisterForUpdate(r *Registry) error {
	if err := s.connected.Register(r); err != nil {
		return err
	}
	return s.value.Register(r)
}

// CVOutSocket writes a CV output: "/cv_outputs/<name>/connected" is read,
// ".../value" is written by the device.
type CVOutSocket[T comparable] struct {
	cvSocket
	value *Property[T]
}

// NewCVOutSocket resolves the CV output named name, writing its value with conv.
func NewCVOutSocket[T comparable](h Host, name string, conv Converter[T]) (*CVOutSocket[T], error) {
	s, err := newCVSocket(h, CVOutputsPath+"/"+name)
	if err != nil {
		return nil, err
	}
	value, err := NewObjectProperty(h, s.object, CVValueProperty, conv)
	if err != nil {
		return nil, err
	}
	return &CVOutSocket[T]{cvSocket: s, value: value}, nil
}

// MustCVOutSocket is like NewCVOutSocket but panics on error.
func MustCVOutSocket[T comparable](h Host, name string, conv Converter[T]) *CVOutSocket[T] {
	s, err := NewCVOutSocket(h, name, conv)
	if err != nil {
		panic(fmt.Sprintf("cv output construction failed: %v", err))
	}
	return s
}

// RegisterForUpdate subscribes "connected" to host diffs and init. The output
// value is initialized separately, either by RegisterValueForInit or by
// InitMotherboard.
func (s *CVOutSocket[T]) RegisterForUpdate(r *Registry) error {
	return s.connected.Register(r)
}

// RegisterValueForInit adds "value" to the init sequence, so that it starts
// from the host value (or pushes its default when write-only). It is never
// routed host diffs.
func (s *CVOutSocket[T]) RegisterValueForInit(r *Registry) {
	s.value.RegisterForInit(r)
}

// InitMotherboard sets and pushes the initial output value. It replaces
// RegisterValueForInit when the device defines the initial output.
func (s *CVOutSocket[T]) InitMotherboard(v T) { s.value.InitMotherboard(v) }

// StoreOnUpdate writes v to the host when it changed.
func (s *CVOutSocket[T]) StoreOnUpdate(v T) bool { return s.value.StoreOnUpdate(v) }

// ValueProperty exposes the "value" property.
func (s *CVOutSocket[T]) ValueProperty() *Property[T] { return s.value }

// UnipolarCV maps a bipolar -1..1 reading to 0..1.
func UnipolarCV(v float64) float64 {
	return Clamp(v/2.0+0.5, MinCVValue, MaxCVValue)
}

// BipolarCV maps a unipolar 0..1 reading to -1..1.
func BipolarCV(v float64) float64 {
	return Clamp(v*2.0-1.0, MinCVValue, MaxCVValue)
}
