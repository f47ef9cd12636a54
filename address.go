// FILE: lixenwraith/motherboard/address.go
package motherboard

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// MaxPropertyPathLen bounds a full property path such as
// "/custom_properties/gain" (object path + "/" + property name).
const MaxPropertyPathLen = 64

// ObjectRef is the host's opaque identifier of a motherboard object.
type ObjectRef int32

// Tag is the host's small integer identifier of a property within its object.
type Tag int32

// Address identifies one host property. It is the registry key: equal when both
// fields match, ordered owner-major then tag-minor.
type Address struct {
	Object ObjectRef
	Tag    Tag
}

// Compare returns -1, 0 or +1 following the owner-major, tag-minor order.
func (a Address) Compare(b Address) int {
	if c := cmp.Compare(a.Object, b.Object); c != 0 {
		return c
	}
	return cmp.Compare(a.Tag, b.Tag)
}

// Less reports whether a sorts before b.
func (a Address) Less(b Address) bool {
	return a.Compare(b) < 0
}

// String renders the address as "@object/tag".
func (a Address) String() string {
	return "@" + strconv.Itoa(int(a.Object)) + "/" + strconv.Itoa(int(a.Tag))
}

// Object is a resolved motherboard object together with the path it was resolved from.
type Object struct {
	Ref  ObjectRef
	Path string
}

// IsSameObject reports whether the address belongs to this object.
func (o Object) IsSameObject(addr Address) bool {
	return o.Ref == addr.Object
}

// ResolveObject resolves an object path (e.g. "/cv_inputs/gain_cv") through the host.
// Intended for device construction, never for the render path.
func ResolveObject(r Resolver, objectPath string) (Object, error) {
	if err := validateObjectPath(objectPath); err != nil {
		return Object{}, err
	}
	ref, err := r.ObjectRef(objectPath)
	if err != nil {
		return Object{}, fmt.Errorf("failed to resolve object %q: %w", objectPath, err)
	}
	return Object{Ref: ref, Path: objectPath}, nil
}

// MustResolveObject is like ResolveObject but panics on error.
func MustResolveObject(r Resolver, objectPath string) Object {
	o, err := ResolveObject(r, objectPath)
	if err != nil {
		panic(fmt.Sprintf("object resolution failed: %v", err))
	}
	return o
}

// ResolveProperty resolves a property name within an already resolved object.
func ResolveProperty(r Resolver, object Object, name string) (Address, error) {
	if !isValidPathSegment(name) {
		return Address{}, fmt.Errorf("%w: property name %q", ErrInvalidPath, name)
	}
	if len(object.Path)+1+len(name) > MaxPropertyPathLen {
		return Address{}, fmt.Errorf("%w: %s/%s", ErrPathTooLong, object.Path, name)
	}
	tag, err := r.PropertyTag(object.Ref, name)
	if err != nil {
		return Address{}, fmt.Errorf("failed to resolve property %q of %q: %w", name, object.Path, err)
	}
	return Address{Object: object.Ref, Tag: tag}, nil
}

// ResolveAddress resolves a full property path (e.g. "/custom_properties/gain").
func ResolveAddress(r Resolver, path string) (Address, error) {
	objectPath, name, err := ParsePropertyPath(path)
	if err != nil {
		return Address{}, err
	}
	object, err := ResolveObject(r, objectPath)
	if err != nil {
		return Address{}, err
	}
	return ResolveProperty(r, object, name)
}

// ParsePropertyPath splits a full property path at its last slash into the
// object path and the property name. "/cv_outputs/cv_out_1/connected" yields
// ("/cv_outputs/cv_out_1", "connected").
func ParsePropertyPath(path string) (objectPath, name string, err error) {
	if len(path) > MaxPropertyPathLen {
		return "", "", fmt.Errorf("%w: %q has %d bytes, limit is %d", ErrPathTooLong, path, len(path), MaxPropertyPathLen)
	}
	lastSlash := strings.LastIndexByte(path, '/')
	if lastSlash <= 0 {
		return "", "", fmt.Errorf("%w: %q has no object part", ErrInvalidPath, path)
	}
	objectPath, name = path[:lastSlash], path[lastSlash+1:]
	if err := validateObjectPath(objectPath); err != nil {
		return "", "", err
	}
	if !isValidPathSegment(name) {
		return "", "", fmt.Errorf("%w: invalid property name %q in %q", ErrInvalidPath, name, path)
	}
	return objectPath, name, nil
}

// JoinPropertyPath is the inverse of ParsePropertyPath.
func JoinPropertyPath(objectPath, name string) string {
	return objectPath + "/" + name
}

// validateObjectPath checks the leading slash, the length bound and every segment.
func validateObjectPath(objectPath string) error {
	if len(objectPath) > MaxPropertyPathLen {
		return fmt.Errorf("%w: object path %q", ErrPathTooLong, objectPath)
	}
	if !strings.HasPrefix(objectPath, "/") {
		return fmt.Errorf("%w: object path %q must start with '/'", ErrInvalidPath, objectPath)
	}
	for _, segment := range strings.Split(objectPath[1:], "/") {
		if !isValidPathSegment(segment) {
			return fmt.Errorf("%w: invalid segment %q in %q", ErrInvalidPath, segment, objectPath)
		}
	}
	return nil
}

// isValidPathSegment accepts ASCII letters, digits, underscores and dashes.
func isValidPathSegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
