// FILE: lixenwraith/motherboard/registry.go
package motherboard

import (
	"fmt"
	"iter"
	"slices"

	"github.com/go-logr/logr"
)

// Observer is the capability the registry dispatches to: apply one host diff
// and one-time initialization.
type Observer interface {
	Update(d Diff) bool
	Init()
}

// pather is implemented by observers that can name themselves in diagnostics.
type pather interface {
	Path() string
}

type entry struct {
	key Address
	obs Observer
}

// RegistryOptions tunes a Registry.
type RegistryOptions struct {
	// Logger receives registration events at LevelDebug and per-diff dispatch
	// at LevelTrace. Defaults to logr.Discard().
	Logger logr.Logger
	// Capacity preallocates the update table for the expected number of keys.
	Capacity int
}

// Registry maps host addresses to the single observer consuming them and owns
// the one-time init sequence. It is populated during device construction and
// structurally frozen once the first batch is dispatched.
type Registry struct {
	entries   []entry // sorted by key, unique
	initOrder []Observer

	notes    Object
	hasNotes bool

	sealed bool
	trace  bool
	logger logr.Logger
}

// NewRegistry creates an empty registry with logging disabled.
func NewRegistry() *Registry {
	return NewRegistryWithOptions(RegistryOptions{})
}

// NewRegistryWithOptions creates an empty registry.
func NewRegistryWithOptions(opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Registry{
		entries: make([]entry, 0, opts.Capacity),
		logger:  logger.WithName("registry"),
		trace:   logger.V(LevelTrace).Enabled(),
	}
}

func compareEntry(e entry, key Address) int {
	return e.key.Compare(key)
}

func describe(obs Observer) string {
	if p, ok := obs.(pather); ok && p.Path() != "" {
		return p.Path()
	}
	return fmt.Sprintf("%T", obs)
}

// RegisterForUpdate routes diffs for key to obs. Each key has exactly one
// observer; the same observer may be registered under several keys.
func (r *Registry) RegisterForUpdate(obs Observer, key Address) error {
	if r.sealed {
		return fmt.Errorf("%w: %s", ErrRegistrySealed, key)
	}
	i, found := slices.BinarySearchFunc(r.entries, key, compareEntry)
	if found {
		return fmt.Errorf("%w: %s%s already consumed by %s",
			ErrDuplicateRegistration, describe(obs), key, describe(r.entries[i].obs))
	}
	r.entries = slices.Insert(r.entries, i, entry{key: key, obs: obs})
	r.logger.V(LevelDebug).Info("registered for update", "path", describe(obs), "key", key.String())
	return nil
}

// MustRegisterForUpdate is like RegisterForUpdate but panics on error.
func (r *Registry) MustRegisterForUpdate(obs Observer, key Address) {
	if err := r.RegisterForUpdate(obs, key); err != nil {
		panic(fmt.Sprintf("registration failed: %v", err))
	}
}

// RegisterForInit appends obs to the init sequence. Order is preserved.
func (r *Registry) RegisterForInit(obs Observer) {
	mustHold(!r.sealed, "RegisterForInit", describe(obs), Address{}, "registry is sealed")
	r.initOrder = append(r.initOrder, obs)
	r.logger.V(LevelDebug).Info("registered for init", "path", describe(obs), "position", len(r.initOrder)-1)
}

// RegisterNoteStates records the reserved note object. Diffs for it skip the
// generic table and are delivered by OnNotesUpdate only.
func (r *Registry) RegisterNoteStates(n NoteStates) {
	r.notes = n.Object
	r.hasNotes = true
	r.logger.V(LevelDebug).Info("registered note states", "path", n.Path, "object", int32(n.Ref))
}

// InitProperties calls Init on every registered observer in registration order.
func (r *Registry) InitProperties() {
	r.logger.V(LevelDebug).Info("initializing properties", "count", len(r.initOrder))
	for _, obs := range r.initOrder {
		obs.Init()
	}
}

// OnUpdate dispatches one block's diffs in delivery order and reports whether
// any consumed value changed. Diffs without a consumer are ignored. The first
// call seals the registry.
func (r *Registry) OnUpdate(diffs []Diff) bool {
	r.sealed = true
	changed := false
	for i := range diffs {
		d := &diffs[i]
		if r.hasNotes && r.notes.IsSameObject(d.Address) {
			continue
		}
		j, found := slices.BinarySearchFunc(r.entries, d.Address, compareEntry)
		if found {
			changed = r.entries[j].obs.Update(*d) || changed
		}
		if r.trace {
			r.traceDiff(d, j, found)
		}
	}
	return changed
}

func (r *Registry) traceDiff(d *Diff, j int, found bool) {
	path := "/notFound"
	if found {
		path = describe(r.entries[j].obs)
	}
	r.logger.V(LevelTrace).Info("onUpdate", "path", path, "key", d.Address.String(),
		"previous", d.Previous.String(), "current", d.Current.String())
}

// OnNotesUpdate forwards every note-object diff to l and OR-accumulates the
// results.
func (r *Registry) OnNotesUpdate(diffs []Diff, l NoteListener) bool {
	mustHold(r.hasNotes, "OnNotesUpdate", "/note_states", Address{}, "note states not registered")
	mustHold(l != nil, "OnNotesUpdate", "/note_states", Address{}, "nil note listener")
	if !r.hasNotes || l == nil {
		return false
	}
	changed := false
	for i := range diffs {
		if r.notes.IsSameObject(diffs[i].Address) {
			changed = l.OnNoteReceived(diffs[i]) || changed
		}
	}
	return changed
}

// Len returns the number of keys routed by OnUpdate.
func (r *Registry) Len() int { return len(r.entries) }

// Lookup returns the observer registered for key.
func (r *Registry) Lookup(key Address) (Observer, bool) {
	i, found := slices.BinarySearchFunc(r.entries, key, compareEntry)
	if !found {
		return nil, false
	}
	return r.entries[i].obs, true
}

// All iterates the update table in key order.
func (r *Registry) All() iter.Seq2[Address, Observer] {
	return func(yield func(Address, Observer) bool) {
		for _, e := range r.entries {
			if !yield(e.key, e.obs) {
				return
			}
		}
	}
}

// Sealed reports whether dispatch has started.
func (r *Registry) Sealed() bool { return r.sealed }
