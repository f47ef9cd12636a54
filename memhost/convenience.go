// File: lixenwraith/motherboard/memhost/convenience.go
package memhost

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/motherboard"
)

// Quick builds a host from definition data in a single call, format detected
// from the content.
func Quick(definition string) (*Host, error) {
	def, err := ParseDefinition([]byte(definition), FormatAuto)
	if err != nil {
		return nil, err
	}
	return NewBuilder().WithDefinition(def).Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(definition string) *Host {
	h, err := Quick(definition)
	if err != nil {
		panic(fmt.Sprintf("host initialization failed: %v", err))
	}
	return h
}

// Dump writes the current host values to w as nested TOML tables.
func (h *Host) Dump(w io.Writer) error {
	nested := make(map[string]any)
	for path, v := range h.Snapshot() {
		setNestedValue(nested, path, hostValue(v))
	}
	encoder := toml.NewEncoder(w)
	if err := encoder.Encode(nested); err != nil {
		return fmt.Errorf("failed to encode host values to TOML: %w", err)
	}
	return nil
}

// Debug returns a formatted listing of every property with its address, kind
// and current value.
func (h *Host) Debug() string {
	snapshot := h.Snapshot()

	var b strings.Builder
	b.WriteString("Host Debug Info:\n")
	for _, obj := range h.def.Objects {
		ref, _ := h.ObjectRef(obj.Path)
		b.WriteString(fmt.Sprintf("  %s @%d\n", obj.Path, ref))
		for _, p := range obj.Properties {
			path := motherboard.JoinPropertyPath(obj.Path, p.Name)
			b.WriteString(fmt.Sprintf("    %s/%d %s = %s\n", p.Name, p.Tag, p.Kind, snapshot[path]))
		}
	}
	return b.String()
}
