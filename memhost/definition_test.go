// FILE: lixenwraith/motherboard/memhost/definition_test.go
package memhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/motherboard"
)

const testDefinition = `
[custom_properties]
gain = 0.7
builtin_onoffbypass = { tag = 1, default = 1 }
mode = { kind = "number" }

[cv_inputs.gain_cv]
connected = false
value = 0.0

[cv_outputs.gain_out]
connected = false
value = 0.0

[note_states]
`

func TestParseDefinition(t *testing.T) {
	t.Run("TOML", func(t *testing.T) {
		def, err := ParseDefinition([]byte(testDefinition), FormatTOML)
		require.NoError(t, err)

		paths := make([]string, len(def.Objects))
		for i, obj := range def.Objects {
			paths[i] = obj.Path
		}
		assert.Equal(t, []string{"/custom_properties", "/cv_inputs/gain_cv", "/cv_outputs/gain_out", "/note_states"}, paths)
		assert.Equal(t, 7, def.PropertyCount())

		custom, ok := def.Object("/custom_properties")
		require.True(t, ok)
		require.Len(t, custom.Properties, 3)
		assert.Equal(t, PropertyDef{Name: "builtin_onoffbypass", Tag: 1, Kind: motherboard.KindNumber, Default: motherboard.MakeNumber(1)}, custom.Properties[0])
		assert.Equal(t, PropertyDef{Name: "gain", Tag: 2, Kind: motherboard.KindNumber, Default: motherboard.MakeNumber(0.7)}, custom.Properties[1])
		assert.Equal(t, PropertyDef{Name: "mode", Tag: 3, Kind: motherboard.KindNumber, Default: motherboard.MakeNumber(0)}, custom.Properties[2])

		cv, ok := def.Object("/cv_inputs/gain_cv")
		require.True(t, ok)
		assert.Equal(t, motherboard.KindBoolean, cv.Properties[0].Kind)
		assert.Equal(t, "connected", cv.Properties[0].Name)

		notes, ok := def.Object("/note_states")
		require.True(t, ok)
		assert.Empty(t, notes.Properties)

		_, ok = def.Object("/cv_inputs")
		assert.False(t, ok, "intermediate tables are not objects")
	})

	t.Run("JSON", func(t *testing.T) {
		data := `{
			"custom_properties": {
				"gain": 0.7,
				"builtin_onoffbypass": {"tag": 1, "default": 1},
				"mode": {"kind": "number"}
			},
			"cv_inputs": {"gain_cv": {"connected": false, "value": 0.0}},
			"cv_outputs": {"gain_out": {"connected": false, "value": 0.0}},
			"note_states": {}
		}`
		fromJSON, err := ParseDefinition([]byte(data), FormatAuto)
		require.NoError(t, err)
		fromTOML, err := ParseDefinition([]byte(testDefinition), FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, fromTOML, fromJSON)
	})

	t.Run("YAML", func(t *testing.T) {
		data := `
custom_properties:
  gain: 0.7
  builtin_onoffbypass: {tag: 1, default: 1}
  mode: {kind: number}
cv_inputs:
  gain_cv: {connected: false, value: 0.0}
cv_outputs:
  gain_out: {connected: false, value: 0.0}
note_states: {}
`
		fromYAML, err := ParseDefinition([]byte(data), FormatYAML)
		require.NoError(t, err)
		fromTOML, err := ParseDefinition([]byte(testDefinition), FormatTOML)
		require.NoError(t, err)
		assert.Equal(t, fromTOML, fromYAML)
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name string
			data string
			err  error
		}{
			{"TopLevelScalar", "gain = 1.0\n", ErrInvalidDefinition},
			{"DuplicateTag", "[o]\na = { tag = 2, default = 1 }\nb = { tag = 2, default = 2 }\n", ErrDuplicateTag},
			{"UnknownKind", "[o]\na = { kind = \"string\" }\n", ErrInvalidDefinition},
			{"KindMismatch", "[o]\na = { kind = \"boolean\", default = 3 }\n", ErrInvalidDefinition},
			{"UnsupportedValue", "[o]\na = \"text\"\n", ErrInvalidDefinition},
			{"InvalidName", "[o]\n\"bad name\" = 1\n", motherboard.ErrInvalidPath},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParseDefinition([]byte(tt.data), FormatTOML)
				assert.ErrorIs(t, err, tt.err)
			})
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := parseData([]byte("x"), "ini")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}

func TestLoadDefinition(t *testing.T) {
	dir := t.TempDir()

	t.Run("Extension", func(t *testing.T) {
		path := filepath.Join(dir, "device.toml")
		require.NoError(t, os.WriteFile(path, []byte(testDefinition), 0644))
		def, err := LoadDefinition(path)
		require.NoError(t, err)
		assert.Len(t, def.Objects, 4)
	})

	t.Run("ContentDetection", func(t *testing.T) {
		path := filepath.Join(dir, "device.def")
		require.NoError(t, os.WriteFile(path, []byte(testDefinition), 0644))
		def, err := LoadDefinition(path)
		require.NoError(t, err)
		assert.Len(t, def.Objects, 4)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadDefinition(filepath.Join(dir, "missing.toml"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("TooLarge", func(t *testing.T) {
		path := filepath.Join(dir, "large.toml")
		require.NoError(t, os.WriteFile(path, make([]byte, MaxFileSize+1), 0644))
		_, err := LoadDefinition(path)
		assert.ErrorContains(t, err, "exceeds maximum size")
	})
}

func TestDefinitionValidate(t *testing.T) {
	def := &Definition{Objects: []ObjectDef{
		{Path: "/o", Properties: []PropertyDef{
			{Name: "a", Tag: 1, Kind: motherboard.KindNumber},
			{Name: "b", Tag: 1, Kind: motherboard.KindNumber},
		}},
	}}
	assert.ErrorIs(t, def.Validate(), ErrDuplicateTag)

	def.Objects[0].Properties[1].Tag = 2
	assert.NoError(t, def.Validate())

	def.Objects = append(def.Objects, ObjectDef{Path: "/o"})
	assert.ErrorIs(t, def.Validate(), ErrInvalidDefinition)
}

func TestUnsortedDefinition(t *testing.T) {
	def := &Definition{Objects: []ObjectDef{
		{Path: "/note_states"},
		{Path: "/custom_properties", Properties: []PropertyDef{
			{Name: "gain", Tag: 1, Kind: motherboard.KindNumber, Default: motherboard.MakeNumber(0.7)},
		}},
	}}
	h, err := NewBuilder().WithDefinition(def).Build()
	require.NoError(t, err)

	obj, ok := h.Definition().Object("/custom_properties")
	require.True(t, ok)
	assert.Equal(t, "gain", obj.Properties[0].Name)

	ref, err := h.ObjectRef("/custom_properties")
	require.NoError(t, err)
	assert.Equal(t, motherboard.ObjectRef(1), ref, "refs follow path order")
	assert.Equal(t, "/note_states", def.Objects[0].Path, "caller's definition is left as is")
}
