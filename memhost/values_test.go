// FILE: lixenwraith/motherboard/memhost/values_test.go
package memhost

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/motherboard"
)

func TestParseValues(t *testing.T) {
	data := `
[custom_properties]
gain = 0.5

[cv_inputs.gain_cv]
connected = true
value = 0.8
`
	values, err := ParseValues([]byte(data), FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, Values{
		"/custom_properties/gain":      motherboard.MakeNumber(0.5),
		"/cv_inputs/gain_cv/connected": motherboard.MakeBoolean(true),
		"/cv_inputs/gain_cv/value":     motherboard.MakeNumber(0.8),
	}, values)
	assert.Equal(t, []string{
		"/custom_properties/gain",
		"/cv_inputs/gain_cv/connected",
		"/cv_inputs/gain_cv/value",
	}, values.Paths())

	_, err = ParseValues([]byte("[o]\na = [1, 2]\n"), FormatTOML)
	assert.ErrorContains(t, err, "/o/a")
}

func TestApplyValues(t *testing.T) {
	h := newTestHost(t)

	changed, err := h.ApplyValues(Values{
		"/custom_properties/gain":      motherboard.MakeNumber(0.7), // unchanged
		"/cv_inputs/gain_cv/connected": motherboard.MakeBoolean(true),
		"/note_states/60":              motherboard.MakeNumber(100),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/cv_inputs/gain_cv/connected", "/note_states/60"}, changed)
	assert.Len(t, h.Flush(), 2)

	changed, err = h.ApplyValues(Values{
		"/custom_properties/missing": motherboard.MakeNumber(1),
		"/custom_properties/mode":    motherboard.MakeNumber(2),
	})
	assert.ErrorIs(t, err, motherboard.ErrUnknownProperty)
	assert.Equal(t, []string{"/custom_properties/mode"}, changed, "valid paths are applied")
}

func TestBuilder(t *testing.T) {
	dir := t.TempDir()
	defPath := filepath.Join(dir, "device.toml")
	require.NoError(t, os.WriteFile(defPath, []byte(testDefinition), 0644))

	t.Run("DefinitionFile", func(t *testing.T) {
		h, err := NewBuilder().WithDefinitionFile(defPath).Build()
		require.NoError(t, err)
		assert.Equal(t, 7, h.Definition().PropertyCount())
	})

	t.Run("ValuesFile", func(t *testing.T) {
		valuesPath := filepath.Join(dir, "values.toml")
		require.NoError(t, os.WriteFile(valuesPath, []byte("[custom_properties]\ngain = 0.25\n"), 0644))

		h, err := NewBuilder().WithDefinitionFile(defPath).WithValuesFile(valuesPath).Build()
		require.NoError(t, err)
		diffs := h.Flush()
		require.Len(t, diffs, 1)
		assert.Equal(t, motherboard.MakeNumber(0.25), diffs[0].Current)
	})

	t.Run("MissingValuesFileIsIgnored", func(t *testing.T) {
		_, err := NewBuilder().WithDefinitionFile(defPath).WithValuesFile(filepath.Join(dir, "none.toml")).Build()
		assert.NoError(t, err)
	})

	t.Run("NoDefinition", func(t *testing.T) {
		_, err := NewBuilder().Build()
		assert.ErrorIs(t, err, ErrInvalidDefinition)
		assert.Panics(t, func() { NewBuilder().MustBuild() })
	})

	t.Run("BadFormat", func(t *testing.T) {
		_, err := NewBuilder().WithDefinitionFile(defPath).WithFormat("ini").Build()
		assert.ErrorContains(t, err, "unsupported format")
	})

	t.Run("Validators", func(t *testing.T) {
		_, err := NewBuilder().
			WithDefinitionFile(defPath).
			WithValidator(RequirePaths(motherboard.OnOffBypassPath, "/cv_inputs/gain_cv/value")).
			Build()
		assert.NoError(t, err)

		_, err = NewBuilder().
			WithDefinitionFile(defPath).
			WithValidator(RequirePaths("/cv_inputs/pitch_cv/value")).
			Build()
		assert.ErrorIs(t, err, motherboard.ErrUnknownObject)
	})
}

func TestDiscoverDefinition(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "none"))

	opts := DefaultDiscoveryOptions("mbsim")
	opts.UseCurrentDir = false
	assert.Empty(t, DiscoverDefinition(opts))

	t.Run("XDG", func(t *testing.T) {
		xdgDir := filepath.Join(dir, "xdg", "mbsim")
		require.NoError(t, os.MkdirAll(xdgDir, 0755))
		path := filepath.Join(xdgDir, "mbsim.yaml")
		require.NoError(t, os.WriteFile(path, []byte("custom_properties:\n  gain: 0.7\n"), 0644))
		assert.Equal(t, path, DiscoverDefinition(opts))

		h, err := NewBuilder().WithDiscoveredDefinition(opts).Build()
		require.NoError(t, err)
		assert.Equal(t, 1, h.Definition().PropertyCount())
	})

	t.Run("CustomPathFirst", func(t *testing.T) {
		custom := filepath.Join(dir, "custom")
		require.NoError(t, os.MkdirAll(custom, 0755))
		path := filepath.Join(custom, "mbsim.toml")
		require.NoError(t, os.WriteFile(path, []byte(testDefinition), 0644))

		withPath := opts
		withPath.Paths = []string{custom}
		assert.Equal(t, path, DiscoverDefinition(withPath))
	})

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("MBSIM_DEFINITION", "/explicit/device.toml")
		assert.Equal(t, "/explicit/device.toml", DiscoverDefinition(opts))
	})
}
