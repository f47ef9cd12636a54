// FILE: lixenwraith/motherboard/property.go
package motherboard

import (
	"fmt"
)

// UpdateListener is notified after a host diff was applied to a property.
// It is only invoked from Update, never from Init or StoreOnUpdate.
type UpdateListener[T any] interface {
	OnPropertyUpdated(previous, current T)
}

// UpdateListenerFunc adapts a plain function to UpdateListener.
type UpdateListenerFunc[T any] func(previous, current T)

// OnPropertyUpdated implements UpdateListener.
func (f UpdateListenerFunc[T]) OnPropertyUpdated(previous, current T) { f(previous, current) }

// Property is the per-instance cache of one host property of type T.
// T must be comparable: change detection uses exact equality.
type Property[T comparable] struct {
	dbg      tracker
	addr     Address
	value    T
	conv     Converter[T]
	storage  Storage
	listener UpdateListener[T]
}

// NewProperty resolves path (e.g. "/custom_properties/gain") and builds the
// property cache. Resolution goes through the host once; the result is reused
// for the lifetime of the device.
func NewProperty[T comparable](h Host, path string, conv Converter[T]) (*Property[T], error) {
	if !conv.Readable() && !conv.Writable() {
		return nil, fmt.Errorf("%w: %s", ErrNoConverter, path)
	}
	addr, err := ResolveAddress(h, path)
	if err != nil {
		return nil, err
	}
	return newProperty(h, addr, path, conv), nil
}

// NewObjectProperty builds a property named name within an already resolved object.
func NewObjectProperty[T comparable](h Host, object Object, name string, conv Converter[T]) (*Property[T], error) {
	path := JoinPropertyPath(object.Path, name)
	if !conv.Readable() && !conv.Writable() {
		return nil, fmt.Errorf("%w: %s", ErrNoConverter, path)
	}
	addr, err := ResolveProperty(h, object, name)
	if err != nil {
		return nil, err
	}
	return newProperty(h, addr, path, conv), nil
}

// MustProperty is like NewProperty but panics on error.
func MustProperty[T comparable](h Host, path string, conv Converter[T]) *Property[T] {
	p, err := NewProperty(h, path, conv)
	if err != nil {
		panic(fmt.Sprintf("property construction failed: %v", err))
	}
	return p
}

// MustObjectProperty is like NewObjectProperty but panics on error.
func MustObjectProperty[T comparable](h Host, object Object, name string, conv Converter[T]) *Property[T] {
	p, err := NewObjectProperty(h, object, name, conv)
	if err != nil {
		panic(fmt.Sprintf("property construction failed: %v", err))
	}
	return p
}

func newProperty[T comparable](s Storage, addr Address, path string, conv Converter[T]) *Property[T] {
	return &Property[T]{
		dbg:     newTracker(path),
		addr:    addr,
		conv:    conv,
		storage: s,
	}
}

// Address returns the host address of the property.
func (p *Property[T]) Address() Address { return p.addr }

// Path returns the path the property was resolved from. Release builds do not
// retain paths and return "".
func (p *Property[T]) Path() string { return p.dbg.Path() }

// SetUpdateListener installs l (nil removes it).
func (p *Property[T]) SetUpdateListener(l UpdateListener[T]) {
	p.listener = l
}

// Init synchronizes the cache with the host: readable properties load the host
// value, write-only properties push their in-memory default. Exactly once.
func (p *Property[T]) Init() {
	p.dbg.onInit("Init", p.addr)
	if p.conv.FromHost != nil {
		p.value = p.conv.FromHost(p.storage.Load(p.addr))
		return
	}
	if p.conv.ToHost != nil {
		p.storage.Store(p.addr, p.conv.ToHost(p.value))
	}
}

// InitMotherboard sets v and pushes it to the host. It replaces Init for
// properties whose initial value is device-defined.
func (p *Property[T]) InitMotherboard(v T) {
	p.dbg.onInit("InitMotherboard", p.addr)
	p.dbg.check(p.conv.ToHost != nil, "InitMotherboard", p.addr, "property is read-only")
	p.value = v
	if p.conv.ToHost != nil {
		p.storage.Store(p.addr, p.conv.ToHost(v))
	}
}

// Update applies a host diff routed to this property and reports whether the
// cached value changed. The diff may carry any tag of p's object the property
// was registered under.
func (p *Property[T]) Update(d Diff) bool {
	p.dbg.check(d.Address.Object == p.addr.Object, "Update", d.Address, "mismatch object")
	p.dbg.check(p.conv.FromHost != nil, "Update", p.addr, "property is write-only")
	p.dbg.onUpdate(p.addr)
	if p.conv.FromHost == nil {
		return false
	}

	previous := p.value
	p.value = p.conv.FromHost(d.Current)

	if p.listener != nil {
		p.listener.OnPropertyUpdated(previous, p.value)
	}
	return previous != p.value
}

// Value returns the cached value.
func (p *Property[T]) Value() T {
	p.dbg.onRead(p.addr)
	return p.value
}

// StoreOnUpdate stores v and writes it to the host only when it differs from the
// cached value. It reports whether a write happened.
func (p *Property[T]) StoreOnUpdate(v T) bool {
	p.dbg.onStore(p.addr)
	p.dbg.check(p.conv.ToHost != nil, "StoreOnUpdate", p.addr, "property is read-only")
	if p.conv.ToHost == nil || p.storage == nil || p.value == v {
		return false
	}
	p.value = v
	p.storage.Store(p.addr, p.conv.ToHost(v))
	return true
}

// IsSameValue compares the cached values of p and other.
func (p *Property[T]) IsSameValue(other *Property[T]) bool {
	return p.Value() == other.Value()
}

// IsNotSameValue is the negation of IsSameValue.
func (p *Property[T]) IsNotSameValue(other *Property[T]) bool {
	return p.Value() != other.Value()
}

// UpdatePreviousOnChange copies the cached value into *previous when they differ.
func (p *Property[T]) UpdatePreviousOnChange(previous *T) bool {
	return UpdatePreviousValueOnChange(p.Value(), previous)
}

// UpdatePreviousValueOnChange assigns v to *previous when they differ and
// reports whether it did.
func UpdatePreviousValueOnChange[T comparable](v T, previous *T) bool {
	if v != *previous {
		*previous = v
		return true
	}
	return false
}

// Snapshot returns an uninitialized "previous state" property for the same
// address. It is filled with CopyFrom and never written back to the host.
func (p *Property[T]) Snapshot() *Property[T] {
	return &Property[T]{
		dbg:  newTracker(p.dbg.Path()),
		addr: p.addr,
		conv: p.conv,
	}
}

// CopyFrom copies the cached value of a host-synced src into this snapshot.
func (p *Property[T]) CopyFrom(src *Property[T]) {
	p.dbg.check(src.addr == p.addr, "CopyFrom", src.addr, "mismatch object")
	p.dbg.onCopy(p.addr, &src.dbg)
	p.value = src.value
}

// RegisterForUpdate routes diffs for (p's object, tag) to p.
func (p *Property[T]) RegisterForUpdate(r *Registry, tag Tag) error {
	return r.RegisterForUpdate(p, Address{Object: p.addr.Object, Tag: tag})
}

// RegisterForInit appends p to the registry's init sequence.
func (p *Property[T]) RegisterForInit(r *Registry) {
	r.RegisterForInit(p)
}

// Register is the common case: updates for p's own address plus init.
func (p *Property[T]) Register(r *Registry) error {
	if err := p.RegisterForUpdate(r, p.addr.Tag); err != nil {
		return err
	}
	p.RegisterForInit(r)
	return nil
}

// String renders the property for diagnostics.
func (p *Property[T]) String() string {
	return p.dbg.Path() + p.addr.String()
}
