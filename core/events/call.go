package events

const (
	// KindCallStarted identifies call resolution start.
	KindCallStarted Kind = "call.started"
	// KindCallRequested identifies a call's name and arguments being known.
	KindCallRequested Kind = "call.requested"
	// KindCallResolved identifies call resolution completion, successful
	// or not; failures are carried in the payload, not as a separate kind.
	KindCallResolved Kind = "call.resolved"
	// KindCallEnded identifies the end of a call's pipeline.
	KindCallEnded Kind = "call.ended"
)

// CallStarted marks the start of resolving a model-requested call.
// The stream is blocked until the matching CallEnded.
type CallStarted struct {
	Base
	ID   string
	Name string
}

// NewCallStarted creates a call started event.
func NewCallStarted(id, name string) CallStarted {
	return CallStarted{Base: NewBase(KindCallStarted), ID: id, Name: name}
}

// CallRequested carries the call's name and raw arguments.
type CallRequested struct {
	Base
	ID        string
	Name      string
	Arguments string
}

// NewCallRequested creates a call requested event.
func NewCallRequested(id, name, arguments string) CallRequested {
	return CallRequested{Base: NewBase(KindCallRequested), ID: id, Name: name, Arguments: arguments}
}

// CallResolved carries the full outcome of a resolved call.
type CallResolved struct {
	Base
	ID        string
	Name      string
	Arguments string
	Status    string
	Code      string
	Output    string
	Error     string
	Players   []string
}

// NewCallResolved creates a call resolved event.
func NewCallResolved(id, name, arguments, status, code, output, errText string, players []string) CallResolved {
	return CallResolved{
		Base:      NewBase(KindCallResolved),
		ID:        id,
		Name:      name,
		Arguments: arguments,
		Status:    status,
		Code:      code,
		Output:    output,
		Error:     errText,
		Players:   players,
	}
}

// CallEnded marks the end of a call's pipeline; stream consumption
// resumes after it.
type CallEnded struct {
	Base
	ID   string
	Name string
}

// NewCallEnded creates a call ended event.
func NewCallEnded(id, name string) CallEnded {
	return CallEnded{Base: NewBase(KindCallEnded), ID: id, Name: name}
}
