// FILE: lixenwraith/motherboard/assert_release.go

//go:build release

package motherboard

// ChecksEnabled reports whether the wiring assertions are compiled in.
const ChecksEnabled = false

// tracker is zero-size in release builds; every check is a no-op.
type tracker struct{}

func newTracker(string) tracker { return tracker{} }

func (*tracker) Path() string                         { return "" }
func (*tracker) check(bool, string, Address, string) {}
func (*tracker) onInit(string, Address)              {}
func (*tracker) onUpdate(Address)                    {}
func (*tracker) onRead(Address)                      {}
func (*tracker) onStore(Address)                     {}
func (*tracker) onCopy(Address, *tracker)            {}

func mustHold(bool, string, string, Address, string) {}
