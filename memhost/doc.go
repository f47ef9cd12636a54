// File: lixenwraith/motherboard/memhost/doc.go

// Package memhost provides an in-memory motherboard.Host built from a
// definition file, for tests, simulations and examples.
//
// Definitions declare objects as nested tables and properties as scalars or
// {tag, kind, default} tables, in TOML, JSON or YAML:
//
//	[custom_properties]
//	gain = 0.7
//	builtin_onoffbypass = { tag = 1, default = 1 }
//
//	[cv_inputs.gain_cv]
//	connected = false
//	value = 0.0
//
//	[note_states]
//
// Host-side changes are staged with Set, SetNote, ApplyValues, Stage or a file
// Watch, and delivered one batch per Flush:
//
//	h := memhost.MustQuick(definition)
//	_ = h.Set("/custom_properties/gain", motherboard.MakeNumber(0.5))
//	device.RenderBatch(h.Flush())
//
// Stores made by the device are counted per address so tests can assert that
// unchanged values are never written back.
package memhost
