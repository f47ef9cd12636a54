// FILE: lixenwraith/motherboard/host_test.go
package motherboard

import (
	"fmt"
	"testing"
)

// fakeHost is a map-backed Host that counts writes. Objects get refs in
// creation order starting at 1; property tags are assigned per object.
type fakeHost struct {
	objects map[string]ObjectRef
	tags    map[ObjectRef]map[string]Tag
	values  map[Address]Value
	stores  map[Address]int
	loads   int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		objects: make(map[string]ObjectRef),
		tags:    make(map[ObjectRef]map[string]Tag),
		values:  make(map[Address]Value),
		stores:  make(map[Address]int),
	}
}

// define adds a property at path with the given tag and initial value.
func (h *fakeHost) define(path string, tag Tag, v Value) Address {
	objectPath, name, err := ParsePropertyPath(path)
	if err != nil {
		panic(err)
	}
	ref, ok := h.objects[objectPath]
	if !ok {
		ref = ObjectRef(len(h.objects) + 1)
		h.objects[objectPath] = ref
		h.tags[ref] = make(map[string]Tag)
	}
	h.tags[ref][name] = tag
	addr := Address{Object: ref, Tag: tag}
	h.values[addr] = v
	return addr
}

// defineObject adds an object without properties.
func (h *fakeHost) defineObject(objectPath string) ObjectRef {
	if ref, ok := h.objects[objectPath]; ok {
		return ref
	}
	ref := ObjectRef(len(h.objects) + 1)
	h.objects[objectPath] = ref
	h.tags[ref] = make(map[string]Tag)
	return ref
}

func (h *fakeHost) ObjectRef(objectPath string) (ObjectRef, error) {
	ref, ok := h.objects[objectPath]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownObject, objectPath)
	}
	return ref, nil
}

func (h *fakeHost) PropertyTag(object ObjectRef, name string) (Tag, error) {
	tag, ok := h.tags[object][name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return tag, nil
}

func (h *fakeHost) Load(addr Address) Value {
	h.loads++
	return h.values[addr]
}

func (h *fakeHost) Store(addr Address, v Value) {
	h.stores[addr]++
	h.values[addr] = v
}

// diff builds a host diff for addr moving to v and applies it to the host.
func (h *fakeHost) diff(addr Address, v Value) Diff {
	d := Diff{Address: addr, Previous: h.values[addr], Current: v}
	h.values[addr] = v
	return d
}

// requireFault runs fn and returns the *Fault it panicked with.
func requireFault(t *testing.T, fn func()) (fault *Fault) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected fault, got none")
		}
		f, ok := r.(*Fault)
		if !ok {
			t.Fatalf("expected *Fault, got %T: %v", r, r)
		}
		fault = f
	}()
	fn()
	return nil
}
