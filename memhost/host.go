// FILE: lixenwraith/motherboard/memhost/host.go
package memhost

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/go-logr/logr"

	"github.com/lixenwraith/motherboard"
)

var (
	// ErrKindMismatch is returned when a staged value does not match the declared kind.
	ErrKindMismatch = errors.New("value kind does not match property")
	// ErrOutOfRange is returned for note numbers or velocities outside 0..127.
	ErrOutOfRange = errors.New("value out of range")
)

// Host is an in-memory motherboard.Host built from a Definition. Host-side
// changes are staged with Set and delivered as one diff batch by Flush, the way
// a real host reports them at the start of each block. Values written by the
// device through Store are visible to Load and Snapshot but never produce diffs.
//
// Set may be called from any goroutine. Flush, Load and Store are meant for the
// render goroutine; all operations are serialized by one mutex.
type Host struct {
	mu sync.Mutex

	def     *Definition
	objects map[string]motherboard.ObjectRef
	refs    map[motherboard.ObjectRef]string
	tags    map[motherboard.ObjectRef]map[string]motherboard.Tag
	paths   map[motherboard.Address]string
	kinds   map[motherboard.Address]motherboard.Kind
	order   []motherboard.Address // every declared property, sorted
	values  map[motherboard.Address]motherboard.Value
	notes   motherboard.ObjectRef // 0 when the definition has no note states

	pending      map[motherboard.Address]motherboard.Value
	pendingOrder []motherboard.Address
	batch        []motherboard.Diff

	initialBatch bool
	flushed      bool

	loads  int
	stores map[motherboard.Address]int

	logger logr.Logger
}

// NewHost builds a host from def. It is usually created through Builder or Quick.
func NewHost(def *Definition, logger logr.Logger) (*Host, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	def = def.sorted()
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	h := &Host{
		def:     def,
		objects: make(map[string]motherboard.ObjectRef, len(def.Objects)),
		refs:    make(map[motherboard.ObjectRef]string, len(def.Objects)),
		tags:    make(map[motherboard.ObjectRef]map[string]motherboard.Tag, len(def.Objects)),
		paths:   make(map[motherboard.Address]string),
		kinds:   make(map[motherboard.Address]motherboard.Kind),
		values:  make(map[motherboard.Address]motherboard.Value),
		pending: make(map[motherboard.Address]motherboard.Value),
		stores:  make(map[motherboard.Address]int),
		logger:  logger.WithName("memhost"),
	}

	for i, obj := range def.Objects {
		ref := motherboard.ObjectRef(i + 1)
		h.objects[obj.Path] = ref
		h.refs[ref] = obj.Path
		tags := make(map[string]motherboard.Tag, len(obj.Properties))
		for _, p := range obj.Properties {
			addr := motherboard.Address{Object: ref, Tag: p.Tag}
			tags[p.Name] = p.Tag
			h.paths[addr] = motherboard.JoinPropertyPath(obj.Path, p.Name)
			h.kinds[addr] = p.Kind
			h.values[addr] = p.Default
			h.order = append(h.order, addr)
		}
		h.tags[ref] = tags
		if obj.Path == motherboard.NoteStatesPath {
			h.notes = ref
		}
	}
	slices.SortFunc(h.order, motherboard.Address.Compare)
	h.batch = make([]motherboard.Diff, 0, len(h.order))

	h.logger.V(motherboard.LevelDebug).Info("host created",
		"objects", len(def.Objects), "properties", len(h.order), "notes", h.notes != 0)
	return h, nil
}

// ObjectRef implements motherboard.Resolver.
func (h *Host) ObjectRef(objectPath string) (motherboard.ObjectRef, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ref, ok := h.objects[objectPath]
	if !ok {
		return 0, fmt.Errorf("%w: %s", motherboard.ErrUnknownObject, objectPath)
	}
	return ref, nil
}

// PropertyTag implements motherboard.Resolver. Note-state properties are named
// by their note number ("0".."127").
func (h *Host) PropertyTag(object motherboard.ObjectRef, name string) (motherboard.Tag, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if object == h.notes && h.notes != 0 {
		n, err := strconv.Atoi(name)
		if err != nil || n < 0 || n >= motherboard.NoteCount {
			return 0, fmt.Errorf("%w: note %q", motherboard.ErrUnknownProperty, name)
		}
		return motherboard.Tag(n), nil
	}
	tags, ok := h.tags[object]
	if !ok {
		return 0, fmt.Errorf("%w: object @%d", motherboard.ErrUnknownObject, object)
	}
	tag, ok := tags[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", motherboard.ErrUnknownProperty, h.refs[object], name)
	}
	return tag, nil
}

// Load implements motherboard.Storage.
func (h *Host) Load(addr motherboard.Address) motherboard.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads++
	return h.values[addr]
}

// Store implements motherboard.Storage.
func (h *Host) Store(addr motherboard.Address, v motherboard.Value) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stores[addr]++
	h.values[addr] = v
}

// Set stages a host-side change of the property at path for the next Flush.
func (h *Host) Set(path string, v motherboard.Value) error {
	addr, err := h.Resolve(path)
	if err != nil {
		return err
	}
	return h.SetAddress(addr, v)
}

// SetAddress stages a host-side change for addr. Several changes to one address
// before a Flush coalesce, the last one wins.
func (h *Host) SetAddress(addr motherboard.Address, v motherboard.Value) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	kind, declared := h.kinds[addr]
	if !declared && !h.isNote(addr) {
		return fmt.Errorf("%w: %s", motherboard.ErrUnknownProperty, addr)
	}
	if declared && !v.IsNil() && v.Kind() != kind {
		return fmt.Errorf("%w: %s is %s, got %s", ErrKindMismatch, h.paths[addr], kind, v.Kind())
	}
	h.stage(addr, v)
	return nil
}

// SetNote stages a note-on (velocity > 0) or note-off for the next Flush.
func (h *Host) SetNote(note, velocity int) error {
	if h.notes == 0 {
		return fmt.Errorf("%w: %s", motherboard.ErrUnknownObject, motherboard.NoteStatesPath)
	}
	if note < 0 || note >= motherboard.NoteCount || velocity < 0 || velocity > 127 {
		return fmt.Errorf("%w: note %d velocity %d", ErrOutOfRange, note, velocity)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stage(motherboard.Address{Object: h.notes, Tag: motherboard.Tag(note)}, motherboard.MakeNumber(float64(velocity)))
	return nil
}

func (h *Host) stage(addr motherboard.Address, v motherboard.Value) {
	if _, staged := h.pending[addr]; !staged {
		h.pendingOrder = append(h.pendingOrder, addr)
	}
	h.pending[addr] = v
}

func (h *Host) isNote(addr motherboard.Address) bool {
	return h.notes != 0 && addr.Object == h.notes && addr.Tag >= 0 && int(addr.Tag) < motherboard.NoteCount
}

// Flush applies the staged changes and returns them as one diff batch, in
// staging order. Changes that leave a property at its current value produce no
// diff. With WithInitialBatch the first Flush also reports every property.
// The returned slice is reused by the next Flush.
func (h *Host) Flush() []motherboard.Diff {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.batch = h.batch[:0]
	if h.initialBatch && !h.flushed {
		for _, addr := range h.order {
			if _, staged := h.pending[addr]; staged {
				continue
			}
			h.batch = append(h.batch, motherboard.Diff{Address: addr, Current: h.values[addr]})
		}
	}
	h.flushed = true

	for _, addr := range h.pendingOrder {
		v := h.pending[addr]
		previous := h.values[addr]
		delete(h.pending, addr)
		if previous == v && !h.isNote(addr) {
			continue
		}
		h.values[addr] = v
		h.batch = append(h.batch, motherboard.Diff{Address: addr, Previous: previous, Current: v})
	}
	h.pendingOrder = h.pendingOrder[:0]

	if len(h.batch) > 0 {
		h.logger.V(motherboard.LevelTrace).Info("flush", "diffs", len(h.batch))
	}
	return h.batch
}

// Pending returns the number of staged changes.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pendingOrder)
}

// Resolve resolves a full property path. Note states resolve "/note_states/<n>".
func (h *Host) Resolve(path string) (motherboard.Address, error) {
	return motherboard.ResolveAddress(h, path)
}

// Value returns the current host value at path.
func (h *Host) Value(path string) (motherboard.Value, error) {
	addr, err := h.Resolve(path)
	if err != nil {
		return motherboard.Nil, err
	}
	return h.Load(addr), nil
}

// PathOf returns the path of a declared property.
func (h *Host) PathOf(addr motherboard.Address) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if path, ok := h.paths[addr]; ok {
		return path, true
	}
	if h.isNote(addr) {
		return motherboard.JoinPropertyPath(motherboard.NoteStatesPath, strconv.Itoa(int(addr.Tag))), true
	}
	return "", false
}

// Paths returns every declared property path in address order.
func (h *Host) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	paths := make([]string, len(h.order))
	for i, addr := range h.order {
		paths[i] = h.paths[addr]
	}
	return paths
}

// Snapshot copies the current values of every declared property, keyed by path.
func (h *Host) Snapshot() map[string]motherboard.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	snapshot := make(map[string]motherboard.Value, len(h.order))
	for _, addr := range h.order {
		snapshot[h.paths[addr]] = h.values[addr]
	}
	return snapshot
}

// Definition returns the definition the host was built from.
func (h *Host) Definition() *Definition { return h.def }

// Loads returns the number of Load calls.
func (h *Host) Loads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loads
}

// Stores returns the number of Store calls for addr.
func (h *Host) Stores(addr motherboard.Address) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stores[addr]
}

// TotalStores returns the number of Store calls for all addresses.
func (h *Host) TotalStores() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.stores {
		n += c
	}
	return n
}
