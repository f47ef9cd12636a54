// FILE: lixenwraith/motherboard/memhost/definition.go
package memhost

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/lixenwraith/motherboard"
)

var (
	// ErrInvalidDefinition is returned when a definition cannot describe a host.
	ErrInvalidDefinition = errors.New("invalid host definition")
	// ErrDuplicateTag is returned when two properties of one object share a tag.
	ErrDuplicateTag = errors.New("duplicate property tag")
)

// PropertyDef declares one host property.
type PropertyDef struct {
	Name    string
	Tag     motherboard.Tag
	Kind    motherboard.Kind
	Default motherboard.Value
}

// ObjectDef declares one host object and its properties, sorted by tag.
type ObjectDef struct {
	Path       string
	Properties []PropertyDef
}

// Definition is the full host model: every object with its properties, sorted
// by object path. Object refs are assigned in this order starting at 1.
type Definition struct {
	Objects []ObjectDef
}

// propertySpec is the table form of a property declaration:
//
//	mode = { tag = 7, kind = "number", default = 2 }
type propertySpec struct {
	Tag     *int32            `mapstructure:"tag"`
	Kind    motherboard.Kind  `mapstructure:"kind"`
	Default motherboard.Value `mapstructure:"default"`
}

var specKeys = []string{"tag", "kind", "default"}

// ParseDefinition decodes a definition from data. Nested tables are objects
// (their slash-joined keys form the object path), scalars are properties with
// that default value, and tables made of tag/kind/default keys are properties
// declared in full. Untagged properties get the lowest free tags in name order.
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
func ParseDefinition(data []byte, format string) (*Definition, error) {
	nested, err := parseData(data, format)
	if err != nil {
		return nil, err
	}
	return buildDefinition(nested)
}

// LoadDefinition reads and decodes a definition file.
func LoadDefinition(path string) (*Definition, error) {
	return LoadDefinitionWithFormat(path, FormatAuto)
}

// LoadDefinitionWithFormat is LoadDefinition with an explicit format.
func LoadDefinitionWithFormat(path, format string) (*Definition, error) {
	nested, err := readFile(path, format)
	if err != nil {
		return nil, err
	}
	def, err := buildDefinition(nested)
	if err != nil {
		return nil, fmt.Errorf("file '%s': %w", path, err)
	}
	return def, nil
}

type pendingProperty struct {
	name string
	spec propertySpec
}

func buildDefinition(nested map[string]any) (*Definition, error) {
	objects := make(map[string][]pendingProperty)
	var errs []error

	var walk func(objectPath string, data map[string]any)
	walk = func(objectPath string, data map[string]any) {
		// Intermediate tables are only objects when they hold properties; an
		// empty table declares an object without any.
		if objectPath != "" && len(data) == 0 {
			objects[objectPath] = nil
		}
		for key, value := range data {
			childPath := objectPath + "/" + key
			sub, isMap := value.(map[string]any)
			if isMap && !isPropertySpec(sub) {
				walk(childPath, sub)
				continue
			}
			if objectPath == "" {
				errs = append(errs, fmt.Errorf("%w: property %q has no object", ErrInvalidDefinition, key))
				continue
			}
			spec, err := decodeSpec(value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, childPath, err))
				continue
			}
			objects[objectPath] = append(objects[objectPath], pendingProperty{name: key, spec: spec})
		}
	}
	walk("", nested)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	def := &Definition{Objects: make([]ObjectDef, 0, len(objects))}
	for objectPath, pending := range objects {
		obj, err := buildObject(objectPath, pending)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		def.Objects = append(def.Objects, obj)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	slices.SortFunc(def.Objects, compareObjects)
	return def, nil
}

func compareObjects(a, b ObjectDef) int { return strings.Compare(a.Path, b.Path) }

// sorted returns d with Objects in path order, copying d when it is not.
func (d *Definition) sorted() *Definition {
	if slices.IsSortedFunc(d.Objects, compareObjects) {
		return d
	}
	objects := slices.Clone(d.Objects)
	slices.SortFunc(objects, compareObjects)
	return &Definition{Objects: objects}
}

func buildObject(objectPath string, pending []pendingProperty) (ObjectDef, error) {
	slices.SortFunc(pending, func(a, b pendingProperty) int { return strings.Compare(a.name, b.name) })

	used := make(map[motherboard.Tag]string, len(pending))
	obj := ObjectDef{Path: objectPath, Properties: make([]PropertyDef, 0, len(pending))}

	for _, p := range pending {
		if _, _, err := motherboard.ParsePropertyPath(objectPath + "/" + p.name); err != nil {
			return ObjectDef{}, err
		}
		if p.spec.Tag == nil {
			continue
		}
		tag := motherboard.Tag(*p.spec.Tag)
		if other, dup := used[tag]; dup {
			return ObjectDef{}, fmt.Errorf("%w: %s/%s and %s/%s both use tag %d",
				ErrDuplicateTag, objectPath, other, objectPath, p.name, tag)
		}
		used[tag] = p.name
		obj.Properties = append(obj.Properties, newPropertyDef(p, tag))
	}

	next := motherboard.Tag(1)
	for _, p := range pending {
		if p.spec.Tag != nil {
			continue
		}
		for used[next] != "" {
			next++
		}
		used[next] = p.name
		obj.Properties = append(obj.Properties, newPropertyDef(p, next))
	}

	slices.SortFunc(obj.Properties, func(a, b PropertyDef) int { return int(a.Tag) - int(b.Tag) })
	return obj, nil
}

func newPropertyDef(p pendingProperty, tag motherboard.Tag) PropertyDef {
	kind := p.spec.Kind
	if kind == motherboard.KindNil {
		kind = p.spec.Default.Kind()
	}
	def := p.spec.Default
	if def.IsNil() {
		switch kind {
		case motherboard.KindBoolean:
			def = motherboard.MakeBoolean(false)
		case motherboard.KindNumber:
			def = motherboard.MakeNumber(0)
		}
	}
	return PropertyDef{Name: p.name, Tag: tag, Kind: kind, Default: def}
}

// isPropertySpec reports whether a table only holds tag/kind/default keys.
func isPropertySpec(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !slices.Contains(specKeys, k) {
			return false
		}
	}
	return true
}

// decodeSpec decodes a scalar or a spec table into a propertySpec.
func decodeSpec(value any) (propertySpec, error) {
	var spec propertySpec
	if _, isMap := value.(map[string]any); !isMap {
		v, err := toValue(value)
		if err != nil {
			return spec, err
		}
		spec.Default = v
		return spec, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToKindHookFunc(),
			anyToValueHookFunc(),
		),
	})
	if err != nil {
		return spec, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return spec, err
	}
	if spec.Kind != motherboard.KindNil && !spec.Default.IsNil() && spec.Kind != spec.Default.Kind() {
		return spec, fmt.Errorf("default %s does not match kind %s", spec.Default, spec.Kind)
	}
	if spec.Kind == motherboard.KindNil && spec.Default.IsNil() {
		return spec, errors.New("property needs a kind or a default")
	}
	return spec, nil
}

var (
	kindType  = reflect.TypeOf(motherboard.Kind(0))
	valueType = reflect.TypeOf(motherboard.Value{})
)

// stringToKindHookFunc handles motherboard.Kind conversion from "number"/"boolean"
func stringToKindHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		s, ok := data.(string)
		if f.Kind() != reflect.String || t != kindType || !ok {
			return data, nil
		}
		return parseKind(s)
	}
}

// anyToValueHookFunc handles motherboard.Value conversion from decoded scalars
func anyToValueHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != valueType || f == valueType {
			return data, nil
		}
		return toValue(data)
	}
}

func parseKind(s string) (motherboard.Kind, error) {
	switch strings.ToLower(s) {
	case "number", "float", "int":
		return motherboard.KindNumber, nil
	case "boolean", "bool":
		return motherboard.KindBoolean, nil
	case "nil", "":
		return motherboard.KindNil, nil
	default:
		return motherboard.KindNil, fmt.Errorf("unknown property kind %q", s)
	}
}

// toValue converts a value produced by the TOML, JSON or YAML decoders.
func toValue(data any) (motherboard.Value, error) {
	switch v := data.(type) {
	case nil:
		return motherboard.Nil, nil
	case motherboard.Value:
		return v, nil
	case bool:
		return motherboard.MakeBoolean(v), nil
	case int:
		return motherboard.MakeNumber(float64(v)), nil
	case int64:
		return motherboard.MakeNumber(float64(v)), nil
	case uint64:
		return motherboard.MakeNumber(float64(v)), nil
	case float32:
		return motherboard.MakeNumber(float64(v)), nil
	case float64:
		return motherboard.MakeNumber(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return motherboard.Nil, fmt.Errorf("invalid number %q: %w", v, err)
		}
		return motherboard.MakeNumber(f), nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return motherboard.MakeBoolean(b), nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return motherboard.MakeNumber(f), nil
		}
		return motherboard.Nil, fmt.Errorf("unsupported value %q", v)
	default:
		return motherboard.Nil, fmt.Errorf("unsupported value type %T", data)
	}
}

// Validate checks object paths, property names and tag uniqueness.
func (d *Definition) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(d.Objects))
	for _, obj := range d.Objects {
		if seen[obj.Path] {
			errs = append(errs, fmt.Errorf("%w: duplicate object %s", ErrInvalidDefinition, obj.Path))
		}
		seen[obj.Path] = true

		tags := make(map[motherboard.Tag]bool, len(obj.Properties))
		names := make(map[string]bool, len(obj.Properties))
		for _, p := range obj.Properties {
			if _, _, err := motherboard.ParsePropertyPath(obj.Path + "/" + p.Name); err != nil {
				errs = append(errs, err)
			}
			if tags[p.Tag] {
				errs = append(errs, fmt.Errorf("%w: %s tag %d", ErrDuplicateTag, obj.Path, p.Tag))
			}
			if names[p.Name] {
				errs = append(errs, fmt.Errorf("%w: duplicate property %s/%s", ErrInvalidDefinition, obj.Path, p.Name))
			}
			tags[p.Tag] = true
			names[p.Name] = true
		}
	}
	return errors.Join(errs...)
}

// Object returns the object declared at objectPath.
func (d *Definition) Object(objectPath string) (ObjectDef, bool) {
	i, found := slices.BinarySearchFunc(d.Objects, objectPath, func(o ObjectDef, p string) int {
		return strings.Compare(o.Path, p)
	})
	if !found {
		return ObjectDef{}, false
	}
	return d.Objects[i], true
}

// PropertyCount returns the number of declared properties.
func (d *Definition) PropertyCount() int {
	n := 0
	for _, obj := range d.Objects {
		n += len(obj.Properties)
	}
	return n
}
