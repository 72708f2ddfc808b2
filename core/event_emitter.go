package composer

import "github.com/kivria40/foxdot-composer/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}
