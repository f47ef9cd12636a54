// FILE: lixenwraith/motherboard/notes.go
package motherboard

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// NoteStatesPath is the object the host reports note on/off events under.
const NoteStatesPath = "/note_states"

// NoteCount is the number of note tags of the note-states object.
const NoteCount = 128

// NoteStates is the reserved note object. Its properties are tagged with the
// note number, their value being the velocity.
type NoteStates struct {
	Object
}

// NewNoteStates resolves the note-states object.
func NewNoteStates(r Resolver) (NoteStates, error) {
	o, err := ResolveObject(r, NoteStatesPath)
	if err != nil {
		return NoteStates{}, err
	}
	return NoteStates{Object: o}, nil
}

// MustNoteStates is like NewNoteStates but panics on error.
func MustNoteStates(r Resolver) NoteStates {
	n, err := NewNoteStates(r)
	if err != nil {
		panic(fmt.Sprintf("note states resolution failed: %v", err))
	}
	return n
}

// NoteListener receives note-object diffs during OnNotesUpdate.
type NoteListener interface {
	OnNoteReceived(d Diff) bool
}

// NoteListenerFunc adapts a plain function to NoteListener.
type NoteListenerFunc func(d Diff) bool

// OnNoteReceived implements NoteListener.
func (f NoteListenerFunc) OnNoteReceived(d Diff) bool { return f(d) }

// NoteEvent is a decoded note-object diff. A zero velocity is a note off.
type NoteEvent struct {
	Note     uint8
	Velocity uint8
}

// NoteEventFromDiff decodes d: the tag is the note, the current value the velocity.
func NoteEventFromDiff(d Diff) NoteEvent {
	return NoteEvent{
		Note:     uint8(Clamp(int32(d.Address.Tag), 0, NoteCount-1)),
		Velocity: uint8(Clamp(d.Current.Number(), 0, 127)),
	}
}

// IsNoteOn reports whether the event starts a note.
func (e NoteEvent) IsNoteOn() bool { return e.Velocity > 0 }

// Message encodes the event as a MIDI channel message.
func (e NoteEvent) Message(channel uint8) midi.Message {
	if e.IsNoteOn() {
		return midi.NoteOn(channel, e.Note, e.Velocity)
	}
	return midi.NoteOff(channel, e.Note)
}

// String renders the event for diagnostics.
func (e NoteEvent) String() string {
	if e.IsNoteOn() {
		return fmt.Sprintf("note-on %d velocity %d", e.Note, e.Velocity)
	}
	return fmt.Sprintf("note-off %d", e.Note)
}

// NoteQueue is a fixed-capacity ring buffer of note events filled during
// OnNotesUpdate and drained by the renderer. When full the oldest event is
// overwritten. It never allocates after construction.
type NoteQueue struct {
	events []NoteEvent
	head   int
	size   int
	lost   int
}

// NewNoteQueue allocates a queue holding up to capacity events.
func NewNoteQueue(capacity int) *NoteQueue {
	if capacity <= 0 {
		capacity = NoteCount
	}
	return &NoteQueue{events: make([]NoteEvent, capacity)}
}

// OnNoteReceived implements NoteListener.
func (q *NoteQueue) OnNoteReceived(d Diff) bool {
	q.Push(NoteEventFromDiff(d))
	return true
}

// Push appends e, dropping the oldest event when full.
func (q *NoteQueue) Push(e NoteEvent) {
	capacity := len(q.events)
	if q.size == capacity {
		q.events[q.head] = e
		q.head = (q.head + 1) % capacity
		q.lost++
		return
	}
	q.events[(q.head+q.size)%capacity] = e
	q.size++
}

// Pop removes and returns the oldest event.
func (q *NoteQueue) Pop() (NoteEvent, bool) {
	if q.size == 0 {
		return NoteEvent{}, false
	}
	e := q.events[q.head]
	q.head = (q.head + 1) % len(q.events)
	q.size--
	return e, true
}

// Len returns the number of queued events.
func (q *NoteQueue) Len() int { return q.size }

// Cap returns the queue capacity.
func (q *NoteQueue) Cap() int { return len(q.events) }

// Lost returns how many events were overwritten since the last Clear.
func (q *NoteQueue) Lost() int { return q.lost }

// Clear empties the queue.
func (q *NoteQueue) Clear() {
	q.head, q.size, q.lost = 0, 0, 0
}
