// FILE: lixenwraith/motherboard/property_test.go
package motherboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPropertyConstruction tests resolution and converter validation
func TestPropertyConstruction(t *testing.T) {
	h := newFakeHost()
	addr := h.define("/custom_properties/gain", 4, MakeNumber(0.5))

	t.Run("ByPath", func(t *testing.T) {
		p, err := NewProperty(h, "/custom_properties/gain", Float64)
		require.NoError(t, err)
		assert.Equal(t, addr, p.Address())
		if ChecksEnabled {
			assert.Equal(t, "/custom_properties/gain", p.Path())
		}
	})

	t.Run("ByObject", func(t *testing.T) {
		obj := MustResolveObject(h, "/custom_properties")
		p, err := NewObjectProperty(h, obj, "gain", Float64)
		require.NoError(t, err)
		assert.Equal(t, addr, p.Address())
	})

	t.Run("NoConverter", func(t *testing.T) {
		_, err := NewProperty(h, "/custom_properties/gain", Converter[float64]{})
		assert.ErrorIs(t, err, ErrNoConverter)
	})

	t.Run("UnknownPath", func(t *testing.T) {
		_, err := NewProperty(h, "/custom_properties/missing", Float64)
		assert.ErrorIs(t, err, ErrUnknownProperty)
		assert.Panics(t, func() { MustProperty(h, "/custom_properties/missing", Float64) })
	})
}

// TestPropertyInit tests initial synchronization with the host
func TestPropertyInit(t *testing.T) {
	t.Run("ReadableLoads", func(t *testing.T) {
		h := newFakeHost()
		addr := h.define("/custom_properties/gain", 1, MakeNumber(0.25))
		p := MustProperty(h, "/custom_properties/gain", Float64)

		p.Init()
		assert.Equal(t, 0.25, p.Value())
		assert.Zero(t, h.stores[addr])
	})

	t.Run("WriteOnlyPushesDefault", func(t *testing.T) {
		h := newFakeHost()
		addr := h.define("/custom_properties/level", 1, MakeNumber(0.9))
		p := MustProperty(h, "/custom_properties/level", WriteOnly(Float64))

		p.Init()
		assert.Equal(t, 1, h.stores[addr])
		assert.Equal(t, MakeNumber(0), h.values[addr])
	})

	t.Run("InitMotherboard", func(t *testing.T) {
		h := newFakeHost()
		addr := h.define("/cv_outputs/out/value", 2, Nil)
		p := MustProperty(h, "/cv_outputs/out/value", Float64)

		p.InitMotherboard(0.75)
		assert.Equal(t, 0.75, p.Value())
		assert.Equal(t, 1, h.stores[addr])
		assert.Equal(t, MakeNumber(0.75), h.values[addr])
	})
}

// TestPropertyUpdate tests applying host diffs
func TestPropertyUpdate(t *testing.T) {
	t.Run("IdempotentDispatch", func(t *testing.T) {
		h := newFakeHost()
		addr := h.define("/custom_properties/gain", 1, MakeNumber(0.2))
		p := MustProperty(h, "/custom_properties/gain", Float64)
		p.Init()

		d := h.diff(addr, MakeNumber(0.6))
		assert.True(t, p.Update(d))
		assert.False(t, p.Update(d))
		assert.Equal(t, 0.6, p.Value())
	})

	t.Run("SecondKey", func(t *testing.T) {
		h := newFakeHost()
		addr := h.define("/custom_properties/gain", 1, MakeNumber(0.2))
		alias := h.define("/custom_properties/gain_alias", 2, MakeNumber(0.2))
		p := MustProperty(h, "/custom_properties/gain", Float64)

		r := NewRegistry()
		require.NoError(t, p.Register(r))
		require.NoError(t, p.RegisterForUpdate(r, alias.Tag))
		assert.Equal(t, 2, r.Len())
		r.InitProperties()

		assert.True(t, r.OnUpdate([]Diff{h.diff(alias, MakeNumber(0.4))}))
		assert.Equal(t, 0.4, p.Value())
		assert.True(t, r.OnUpdate([]Diff{h.diff(addr, MakeNumber(0.6))}))
		assert.Equal(t, 0.6, p.Value())
		assert.False(t, r.OnUpdate([]Diff{h.diff(alias, MakeNumber(0.6))}))
	})

	t.Run("Listener", func(t *testing.T) {
		h := newFakeHost()
		addr := h.define("/custom_properties/mode", 1, MakeNumber(1))
		p := MustProperty(h, "/custom_properties/mode", Int32)
		p.Init()

		var calls [][2]int32
		p.SetUpdateListener(UpdateListenerFunc[int32](func(previous, current int32) {
			calls = append(calls, [2]int32{previous, current})
		}))

		p.Update(h.diff(addr, MakeNumber(2)))
		p.Update(h.diff(addr, MakeNumber(2)))
		assert.Equal(t, [][2]int32{{1, 2}, {2, 2}}, calls)

		p.SetUpdateListener(nil)
		p.Update(h.diff(addr, MakeNumber(3)))
		assert.Len(t, calls, 2)
	})
}

// TestStoreOnUpdate tests change-only write back
func TestStoreOnUpdate(t *testing.T) {
	h := newFakeHost()
	addr := h.define("/custom_properties/level", 1, MakeNumber(0.4))
	p := MustProperty(h, "/custom_properties/level", Float64)
	p.Init()

	t.Run("SameValueNoWrite", func(t *testing.T) {
		assert.False(t, p.StoreOnUpdate(0.4))
		assert.Zero(t, h.stores[addr])
	})

	t.Run("ChangedValueOneWrite", func(t *testing.T) {
		assert.True(t, p.StoreOnUpdate(0.8))
		assert.Equal(t, 1, h.stores[addr])
		assert.Equal(t, MakeNumber(0.8), h.values[addr])
		assert.Equal(t, 0.8, p.Value())
	})

	t.Run("RepeatedValueNoWrite", func(t *testing.T) {
		for range 10 {
			assert.False(t, p.StoreOnUpdate(0.8))
		}
		assert.Equal(t, 1, h.stores[addr])
	})
}

// TestChangeDetection tests the equality helpers and snapshots
func TestChangeDetection(t *testing.T) {
	h := newFakeHost()
	addr := h.define("/custom_properties/gain", 1, MakeNumber(0.1))
	p := MustProperty(h, "/custom_properties/gain", Float64)
	p.Init()

	t.Run("UpdatePreviousValueOnChange", func(t *testing.T) {
		previous := 0.0
		assert.True(t, UpdatePreviousValueOnChange(0.5, &previous))
		assert.Equal(t, 0.5, previous)
		assert.False(t, UpdatePreviousValueOnChange(0.5, &previous))
	})

	t.Run("UpdatePreviousOnChange", func(t *testing.T) {
		previous := 0.0
		assert.True(t, p.UpdatePreviousOnChange(&previous))
		assert.Equal(t, 0.1, previous)
		assert.False(t, p.UpdatePreviousOnChange(&previous))
	})

	t.Run("Snapshot", func(t *testing.T) {
		previous := p.Snapshot()
		assert.Equal(t, p.Address(), previous.Address())

		previous.CopyFrom(p)
		assert.True(t, p.IsSameValue(previous))

		p.Update(h.diff(addr, MakeNumber(0.3)))
		assert.True(t, p.IsNotSameValue(previous))
		assert.Equal(t, 0.1, previous.Value())

		previous.CopyFrom(p)
		assert.True(t, p.IsSameValue(previous))
		assert.Zero(t, h.stores[addr])
	})
}
