// FILE: lixenwraith/motherboard/cvsocket_test.go
package motherboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCVInSocket tests reading a CV input through the registry
func TestCVInSocket(t *testing.T) {
	h := newFakeHost()
	connAddr := h.define("/cv_inputs/pitch/connected", 1, MakeBoolean(false))
	valueAddr := h.define("/cv_inputs/pitch/value", 2, MakeNumber(0))
	r := NewRegistry()

	pitch, err := NewCVInSocket(h, "pitch", Note)
	require.NoError(t, err)
	require.NoError(t, pitch.RegisterForUpdate(r))
	assert.Equal(t, 2, r.Len())
	r.InitProperties()

	previous := pitch.Snapshot()
	previous.CopyFrom(pitch)
	assert.False(t, pitch.IsConnected())
	assert.True(t, pitch.IsSameValue(previous))

	r.OnUpdate([]Diff{
		h.diff(connAddr, MakeBoolean(true)),
		h.diff(valueAddr, MakeNumber(0.5)),
	})
	assert.True(t, pitch.IsConnected())
	assert.Equal(t, int32(63), pitch.Value())
	assert.True(t, pitch.IsNewlyConnected(previous))
	assert.True(t, pitch.IsNotSameValue(previous))

	previous.CopyFrom(pitch)
	assert.False(t, pitch.IsNewlyConnected(previous))
	assert.Equal(t, "/cv_inputs/pitch", pitch.Object().Path)

	_, err = NewCVInSocket(h, "missing", Float64)
	assert.ErrorIs(t, err, ErrUnknownObject)
}

// TestCVOutSocket tests writing a CV output
func TestCVOutSocket(t *testing.T) {
	h := newFakeHost()
	connAddr := h.define("/cv_outputs/env/connected", 1, MakeBoolean(true))
	valueAddr := h.define("/cv_outputs/env/value", 2, MakeNumber(0.3))
	r := NewRegistry()

	out := MustCVOutSocket(h, "env", Float64)
	require.NoError(t, out.RegisterForUpdate(r))
	out.RegisterValueForInit(r)
	// only "connected" is routed, "value" is init only
	assert.Equal(t, 1, r.Len())
	_, routed := r.Lookup(valueAddr)
	assert.False(t, routed)

	r.InitProperties()
	assert.True(t, out.IsConnected())
	assert.Equal(t, 0.3, out.ValueProperty().Value())

	assert.False(t, out.StoreOnUpdate(0.3))
	assert.True(t, out.StoreOnUpdate(0.6))
	assert.Equal(t, 1, h.stores[valueAddr])
	assert.Equal(t, MakeNumber(0.6), h.values[valueAddr])

	r.OnUpdate([]Diff{h.diff(connAddr, MakeBoolean(false))})
	assert.False(t, out.IsConnected())

	t.Run("InitMotherboard", func(t *testing.T) {
		h := newFakeHost()
		h.define("/cv_outputs/lfo/connected", 1, MakeBoolean(false))
		addr := h.define("/cv_outputs/lfo/value", 2, Nil)
		r := NewRegistry()
		out := MustCVOutSocket(h, "lfo", Float64)
		require.NoError(t, out.RegisterForUpdate(r))
		r.InitProperties()

		out.InitMotherboard(0.5)
		assert.Equal(t, MakeNumber(0.5), h.values[addr])
		assert.False(t, out.IsConnected())
		assert.False(t, out.StoreOnUpdate(0.5))
		assert.True(t, out.StoreOnUpdate(0.25))
		assert.Equal(t, 2, h.stores[addr])
	})
}

// TestOnOffBypass tests the builtin switch
func TestOnOffBypass(t *testing.T) {
	h := newFakeHost()
	addr := h.define(OnOffBypassPath, 1, MakeNumber(float64(StateOn)))
	r := NewRegistry()
	sw := MustOnOffBypass(h)
	require.NoError(t, sw.Register(r))
	r.InitProperties()

	assert.True(t, sw.IsOn())
	assert.False(t, sw.IsOff())

	r.OnUpdate([]Diff{h.diff(addr, MakeNumber(float64(StateBypassed)))})
	assert.True(t, sw.IsBypassed())
	assert.Equal(t, "bypassed", sw.Value().String())

	r.OnUpdate([]Diff{h.diff(addr, MakeNumber(float64(StateOff)))})
	assert.True(t, sw.IsOff())
}
