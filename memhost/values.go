// File: lixenwraith/motherboard/memhost/values.go
package memhost

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lixenwraith/motherboard"
)

// Values maps full property paths to host values.
type Values map[string]motherboard.Value

// LoadValues reads a values file: nested tables whose slash-joined keys are
// property paths, scalars being the values.
//
//	[custom_properties]
//	gain = 0.5
//
//	[cv_inputs.gain_cv]
//	connected = true
//	value = 0.8
func LoadValues(path string) (Values, error) {
	nested, err := readFile(path, FormatAuto)
	if err != nil {
		return nil, err
	}
	return valuesFromMap(nested)
}

// ParseValues decodes a values document from data.
func ParseValues(data []byte, format string) (Values, error) {
	nested, err := parseData(data, format)
	if err != nil {
		return nil, err
	}
	return valuesFromMap(nested)
}

func valuesFromMap(nested map[string]any) (Values, error) {
	flat := flattenMap(nested, "")
	values := make(Values, len(flat))
	var errs []error
	for path, raw := range flat {
		v, err := toValue(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		values[path] = v
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}

// Paths returns the value paths in sorted order.
func (v Values) Paths() []string {
	paths := make([]string, 0, len(v))
	for p := range v {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// ApplyValues stages every value that differs from the host's current value
// and returns the staged paths, sorted. Unknown paths are reported together.
func (h *Host) ApplyValues(values Values) ([]string, error) {
	var changed []string
	var errs []error
	for _, path := range values.Paths() {
		current, err := h.Value(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if current == values[path] {
			continue
		}
		if err := h.Set(path, values[path]); err != nil {
			errs = append(errs, err)
			continue
		}
		changed = append(changed, path)
	}
	return changed, errors.Join(errs...)
}

// flattenMap converts a nested map to a flat map keyed by slash paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	for key, value := range nested {
		newPath := prefix + "/" + key
		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(nestedMap, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}
	return flat
}

// setNestedValue sets a value in a nested map using a slash path, creating
// intermediate maps. A non-map segment in the way is replaced.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	current := nested
	for _, segment := range segments[:len(segments)-1] {
		next, isMap := current[segment].(map[string]any)
		if !isMap {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// hostValue converts a host value back to a plain Go value for encoding.
func hostValue(v motherboard.Value) any {
	switch v.Kind() {
	case motherboard.KindBoolean:
		return v.Bool()
	case motherboard.KindNumber:
		return v.Number()
	default:
		return nil
	}
}
