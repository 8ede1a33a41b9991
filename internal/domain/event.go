package domain

// EventKind identifies what happened to a record in a change notification.
type EventKind string

// Change notification kinds emitted after successful mutations.
// Reads never emit events.
const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
)
