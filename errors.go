// FILE: lixenwraith/motherboard/errors.go
package motherboard

import (
	"errors"
	"strings"
)

// Setup-time errors. They are returned while a device is being wired; none of
// them can occur on the render path.
var (
	ErrInvalidPath           = errors.New("invalid property path")
	ErrPathTooLong           = errors.New("property path too long")
	ErrUnknownObject         = errors.New("unknown object")
	ErrUnknownProperty       = errors.New("unknown property")
	ErrNoConverter           = errors.New("converter has neither direction")
	ErrDuplicateRegistration = errors.New("address already registered for update")
	ErrRegistrySealed        = errors.New("registry is sealed once rendering started")
)

// Fault describes a wiring bug detected by the development-build assertions:
// reading before init, double init, update delivered to the wrong address,
// reading a write-only or writing a read-only property. Faults are raised with
// panic and carry no recovery path.
type Fault struct {
	Op      string  // operation that detected the fault, e.g. "Update"
	Path    string  // property path, when known
	Address Address // property address
	Reason  string
}

// Error implements error.
func (f *Fault) Error() string {
	var b strings.Builder
	b.WriteString("FAILURE: ")
	b.WriteString(f.Op)
	b.WriteString("() -> ")
	b.WriteString(f.Reason)
	b.WriteString(" ")
	if f.Path != "" {
		b.WriteString(f.Path)
	}
	b.WriteString(f.Address.String())
	return b.String()
}
