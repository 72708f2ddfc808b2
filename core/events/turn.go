package events

const (
	// KindTurnStarted identifies the start of processing a user message.
	KindTurnStarted Kind = "turn.started"
	// KindTurnConsolidated identifies a context window consolidation.
	KindTurnConsolidated Kind = "turn.consolidated"
	// KindTurnDone identifies successful turn completion.
	KindTurnDone Kind = "turn.done"
	// KindTurnError identifies turn abortion.
	KindTurnError Kind = "turn.error"
)

// TurnStarted marks the start of a turn.
type TurnStarted struct {
	Base
	ID      string
	Message string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(id, message string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), ID: id, Message: message}
}

// TurnConsolidated marks a completed context consolidation.
type TurnConsolidated struct {
	Base
	DroppedTurns int
}

// NewTurnConsolidated creates a turn consolidated event.
func NewTurnConsolidated(droppedTurns int) TurnConsolidated {
	return TurnConsolidated{Base: NewBase(KindTurnConsolidated), DroppedTurns: droppedTurns}
}

// TurnDone marks successful completion of a turn. Exactly one of
// TurnDone or TurnError is emitted per processed message.
type TurnDone struct {
	Base
	ID        string
	Response  string
	Reasoning string
	Calls     []CallResolved
}

// NewTurnDone creates a turn done event.
func NewTurnDone(id, response, reasoning string, calls []CallResolved) TurnDone {
	return TurnDone{Base: NewBase(KindTurnDone), ID: id, Response: response, Reasoning: reasoning, Calls: calls}
}

// TurnError marks an aborted turn. Nothing is recorded for the turn.
type TurnError struct {
	Base
	ID    string
	Error string
}

// NewTurnError creates a turn error event.
func NewTurnError(id, errText string) TurnError {
	return TurnError{Base: NewBase(KindTurnError), ID: id, Error: errText}
}
