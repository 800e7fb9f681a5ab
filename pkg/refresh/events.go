package refresh

// EventType names the transition that produced an event.
type EventType string

const (
	EventLoading EventType = "loading"
	EventUpdated EventType = "updated"
	EventFailed  EventType = "failed"
	EventStopped EventType = "stopped"
)

// Event carries a copy of the state committed by one transition.
type Event struct {
	Type  EventType `json:"type"`
	State State     `json:"state"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
