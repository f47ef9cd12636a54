// FILE: lixenwraith/motherboard/assert_debug.go

//go:build !release

package motherboard

// ChecksEnabled reports whether the wiring assertions are compiled in. Build
// with -tags release to strip them from the render path.
const ChecksEnabled = true

// syncState tracks whether a cached value has been reconciled with the host.
type syncState uint8

const (
	stateUninitialized syncState = iota
	stateSyncedWithHost
	stateSyncedWithLocalCopy
)

func (s syncState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateSyncedWithHost:
		return "synced-with-host"
	case stateSyncedWithLocalCopy:
		return "synced-with-local-copy"
	default:
		return "invalid"
	}
}

// tracker is the development-build state machine carried by every Property.
type tracker struct {
	state syncState
	path  string
}

func newTracker(path string) tracker {
	return tracker{path: path}
}

func (t *tracker) Path() string { return t.path }

func (t *tracker) fail(op string, addr Address, reason string) {
	panic(&Fault{Op: op, Path: t.path, Address: addr, Reason: reason})
}

// check raises a fault unless cond holds.
func (t *tracker) check(cond bool, op string, addr Address, reason string) {
	if !cond {
		t.fail(op, addr, reason)
	}
}

// onInit: Uninitialized -> SyncedWithHost, exactly once.
func (t *tracker) onInit(op string, addr Address) {
	if t.state != stateUninitialized {
		t.fail(op, addr, "property initialized multiple times")
	}
	t.state = stateSyncedWithHost
}

// onUpdate: SyncedWithHost -> SyncedWithHost. Diffs before Init and diffs
// into snapshots are faults.
func (t *tracker) onUpdate(addr Address) {
	switch t.state {
	case stateUninitialized:
		t.fail("Update", addr, "update of uninitialized property")
	case stateSyncedWithLocalCopy:
		t.fail("Update", addr, "snapshot received a host diff")
	}
}

func (t *tracker) onRead(addr Address) {
	if t.state == stateUninitialized {
		t.fail("Value", addr, "accessing uninitialized property")
	}
}

func (t *tracker) onStore(addr Address) {
	if t.state != stateSyncedWithHost {
		t.fail("StoreOnUpdate", addr, "should be in sync with host, is "+t.state.String())
	}
}

// onCopy: dst becomes a local snapshot of a host-synced src.
func (t *tracker) onCopy(addr Address, src *tracker) {
	if t.state == stateSyncedWithHost {
		t.fail("CopyFrom", addr, "destination is host-synced, not a snapshot")
	}
	if src.state != stateSyncedWithHost {
		t.fail("CopyFrom", addr, "source is "+src.state.String())
	}
	t.state = stateSyncedWithLocalCopy
}

// mustHold raises a fault outside of any property, e.g. from the registry.
func mustHold(cond bool, op string, path string, addr Address, reason string) {
	if !cond {
		panic(&Fault{Op: op, Path: path, Address: addr, Reason: reason})
	}
}
