// FILE: lixenwraith/motherboard/address_test.go
package motherboard

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParsePropertyPath tests splitting and validation of property paths
func TestParsePropertyPath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		objectPath string
		property   string
		err        error
	}{
		{"Simple", "/custom_properties/gain", "/custom_properties", "gain", nil},
		{"Nested", "/cv_outputs/cv_out_1/connected", "/cv_outputs/cv_out_1", "connected", nil},
		{"Dash", "/custom_properties/dry-wet", "/custom_properties", "dry-wet", nil},
		{"NoLeadingSlash", "custom_properties/gain", "", "", ErrInvalidPath},
		{"NoObject", "/gain", "", "", ErrInvalidPath},
		{"EmptyProperty", "/custom_properties/", "", "", ErrInvalidPath},
		{"EmptySegment", "/cv_inputs//value", "", "", ErrInvalidPath},
		{"InvalidCharacter", "/custom_properties/gain!", "", "", ErrInvalidPath},
		{"TooLong", "/custom_properties/" + strings.Repeat("x", MaxPropertyPathLen), "", "", ErrPathTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objectPath, property, err := ParsePropertyPath(tt.path)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.objectPath, objectPath)
			assert.Equal(t, tt.property, property)
			assert.Equal(t, tt.path, JoinPropertyPath(objectPath, property))
		})
	}
}

// TestAddressOrder tests the owner-major, tag-minor ordering
func TestAddressOrder(t *testing.T) {
	addrs := []Address{
		{Object: 2, Tag: 1},
		{Object: 1, Tag: 7},
		{Object: 1, Tag: 3},
		{Object: 3, Tag: 0},
	}
	slices.SortFunc(addrs, Address.Compare)

	assert.Equal(t, []Address{
		{Object: 1, Tag: 3},
		{Object: 1, Tag: 7},
		{Object: 2, Tag: 1},
		{Object: 3, Tag: 0},
	}, addrs)

	a := Address{Object: 1, Tag: 3}
	assert.Zero(t, a.Compare(Address{Object: 1, Tag: 3}))
	assert.True(t, a.Less(Address{Object: 1, Tag: 4}))
	assert.False(t, a.Less(Address{Object: 0, Tag: 99}))
	assert.Equal(t, "@1/3", a.String())
}

// TestResolution tests resolving paths through a host
func TestResolution(t *testing.T) {
	h := newFakeHost()
	gain := h.define("/custom_properties/gain", 3, MakeNumber(0.5))

	t.Run("ResolveAddress", func(t *testing.T) {
		addr, err := ResolveAddress(h, "/custom_properties/gain")
		require.NoError(t, err)
		assert.Equal(t, gain, addr)
	})

	t.Run("ResolveObject", func(t *testing.T) {
		obj, err := ResolveObject(h, "/custom_properties")
		require.NoError(t, err)
		assert.Equal(t, "/custom_properties", obj.Path)
		assert.True(t, obj.IsSameObject(gain))
		assert.False(t, obj.IsSameObject(Address{Object: gain.Object + 1}))
	})

	t.Run("UnknownObject", func(t *testing.T) {
		_, err := ResolveAddress(h, "/cv_inputs/gain")
		assert.ErrorIs(t, err, ErrUnknownObject)
	})

	t.Run("UnknownProperty", func(t *testing.T) {
		_, err := ResolveAddress(h, "/custom_properties/volume")
		assert.ErrorIs(t, err, ErrUnknownProperty)
	})

	t.Run("MustResolveObjectPanics", func(t *testing.T) {
		assert.Panics(t, func() { MustResolveObject(h, "/missing") })
	})
}
