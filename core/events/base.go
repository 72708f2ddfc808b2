package events

import "time"

// Kind is the dotted event name a handler switches on, e.g.
// "narration.segment" or "call.resolved".
type Kind string

// Event is the common surface of every engine emission. Concrete
// events embed Base and add their payload fields.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and emission time shared by all events.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps an event with its kind and the current time.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
