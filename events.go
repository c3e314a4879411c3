package sculpt

import (
	"github.com/akmonengine/sculpt/action"
	"github.com/akmonengine/sculpt/scene"
)

const (
	SELECTION_CHANGED EventType = iota
	GRAB_STARTED
	GRAB_ENDED
	ACTION_RECORDED
	UNDO_APPLIED
	REDO_APPLIED
	MODE_CHANGED
	OBJECT_DELETED
	OBJECT_COPIED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

type SelectionChangedEvent struct {
	Previous []scene.ObjectID
	Current  []scene.ObjectID
}

func (e SelectionChangedEvent) Type() EventType { return SELECTION_CHANGED }

type GrabStartedEvent struct {
	Objects []scene.ObjectID
}

func (e GrabStartedEvent) Type() EventType { return GRAB_STARTED }

type GrabEndedEvent struct {
	Committed bool
	Action    action.ID
}

func (e GrabEndedEvent) Type() EventType { return GRAB_ENDED }

type ActionRecordedEvent struct {
	Action action.ID
	Kind   action.Kind
}

func (e ActionRecordedEvent) Type() EventType { return ACTION_RECORDED }

type UndoAppliedEvent struct {
	Action action.ID
	Kind   action.Kind
}

func (e UndoAppliedEvent) Type() EventType { return UNDO_APPLIED }

type RedoAppliedEvent struct {
	Action action.ID
	Kind   action.Kind
}

func (e RedoAppliedEvent) Type() EventType { return REDO_APPLIED }

type ModeChangedEvent struct {
	Previous Mode
	Current  Mode
}

func (e ModeChangedEvent) Type() EventType { return MODE_CHANGED }

type ObjectDeletedEvent struct {
	Object scene.ObjectID
}

func (e ObjectDeletedEvent) Type() EventType { return OBJECT_DELETED }

type ObjectCopiedEvent struct {
	Original scene.ObjectID
	Created  scene.ObjectID
}

func (e ObjectCopiedEvent) Type() EventType { return OBJECT_COPIED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emit buffers an event until the next flush
func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
