// FILE: lixenwraith/motherboard/host.go
package motherboard

// Diff is one host-reported change of a property during the current block.
type Diff struct {
	Address  Address
	Previous Value
	Current  Value
}

// Resolver turns human-readable paths into host identifiers. Resolution only
// happens while the device is being constructed.
type Resolver interface {
	// ObjectRef resolves an object path such as "/custom_properties".
	ObjectRef(objectPath string) (ObjectRef, error)
	// PropertyTag resolves a property name within an object.
	PropertyTag(object ObjectRef, name string) (Tag, error)
}

// Storage reads and writes host property values. Both operations are assumed
// constant time and allocation-free.
type Storage interface {
	Load(addr Address) Value
	Store(addr Address, value Value)
}

// Host is the device-model collaborator: resolution plus storage.
type Host interface {
	Resolver
	Storage
}

// Device is implemented by anything the plugin glue drives once per block.
type Device interface {
	RenderBatch(diffs []Diff)
}
