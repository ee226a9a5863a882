package revue

// EventKind names an environment event source a host can provide.
type EventKind string

// Environment event kinds recognized by the subscription manager.
const (
	EventResize     EventKind = "resize"
	EventKeyDown    EventKind = "keydown"
	EventKeyUp      EventKind = "keyup"
	EventMouseMove  EventKind = "mousemove"
	EventVisibility EventKind = "visibilitychange"
	EventOnline     EventKind = "online"
)

// EventPayload carries the data of one environment event. Which fields are
// meaningful depends on the EventKind that delivered it.
type EventPayload struct {
	Width   int
	Height  int
	X       int
	Y       int
	Key     string
	Visible bool
	Online  bool
}

// EventBridge connects the runtime to the host environment's event sources.
// The concrete source (a UI toolkit, a terminal, a browser shim) is an
// external collaborator; the runtime only requires that handler is invoked
// with a payload whenever the named event occurs. Handlers may be invoked
// on any goroutine - the subscription manager marshals them onto the owner
// turn before dispatching.
//
// Subscribe returns an unsubscribe function that must be safe to call once.
type EventBridge interface {
	Subscribe(kind EventKind, handler func(EventPayload)) (unsubscribe func())
}
