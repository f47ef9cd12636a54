// FILE: lixenwraith/motherboard/onoffbypass.go
package motherboard

import (
	"fmt"
)

// OnOffBypassPath is the builtin on/off/bypass switch every device carries.
const OnOffBypassPath = "/custom_properties/builtin_onoffbypass"

// OnOffBypassState is the host value of the builtin switch.
type OnOffBypassState int32

const (
	StateOff OnOffBypassState = iota
	StateOn
	StateBypassed
)

// String returns the lowercase name of the state.
func (s OnOffBypassState) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateOn:
		return "on"
	case StateBypassed:
		return "bypassed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// OnOffBypass is the read-only property for the builtin switch.
type OnOffBypass struct {
	*Property[OnOffBypassState]
}

// NewOnOffBypass resolves the builtin switch.
func NewOnOffBypass(h Host) (*OnOffBypass, error) {
	p, err := NewProperty(h, OnOffBypassPath, ReadOnly(Enum[OnOffBypassState]()))
	if err != nil {
		return nil, err
	}
	return &OnOffBypass{Property: p}, nil
}

// MustOnOffBypass is like NewOnOffBypass but panics on error.
func MustOnOffBypass(h Host) *OnOffBypass {
	o, err := NewOnOffBypass(h)
	if err != nil {
		panic(fmt.Sprintf("on/off/bypass construction failed: %v", err))
	}
	return o
}

// IsOn reports the on state.
func (o *OnOffBypass) IsOn() bool { return o.Value() == StateOn }

// IsOff reports the off state.
func (o *OnOffBypass) IsOff() bool { return o.Value() == StateOff }

// IsBypassed reports the bypassed state.
func (o *OnOffBypass) IsBypassed() bool { return o.Value() == StateBypassed }
