package window

import "fmt"

// EventType identifies the kind of platform event.
type EventType int

const (
	EventUnknown EventType = iota
	// EventClosed is a close request (window button, OS shortcut).
	EventClosed
	EventResized
	EventKeyPressed
	EventFocusGained
	EventFocusLost
)

func (t EventType) String() string {
	switch t {
	case EventClosed:
		return "closed"
	case EventResized:
		return "resized"
	case EventKeyPressed:
		return "key_pressed"
	case EventFocusGained:
		return "focus_gained"
	case EventFocusLost:
		return "focus_lost"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Event is a single platform event. Width and Height are set for EventResized, Key for
// EventKeyPressed (backend key code).
type Event struct {
	Type   EventType
	Width  int
	Height int
	Key    int32
}

// Closed returns a close request event.
func Closed() Event {
	return Event{Type: EventClosed}
}
