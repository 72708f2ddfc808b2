package events

const (
	// KindReasoningStarted identifies the first reasoning delta of a pass.
	KindReasoningStarted Kind = "reasoning.started"
	// KindReasoningSegment identifies a streamed reasoning delta.
	KindReasoningSegment Kind = "reasoning.segment"
	// KindReasoningEnded identifies the end of a reasoning span.
	KindReasoningEnded Kind = "reasoning.ended"
)

// ReasoningStarted marks the stream entering reasoning.
type ReasoningStarted struct{ Base }

// NewReasoningStarted creates a reasoning started event.
func NewReasoningStarted() ReasoningStarted {
	return ReasoningStarted{Base: NewBase(KindReasoningStarted)}
}

// ReasoningSegment carries a streamed reasoning delta.
type ReasoningSegment struct {
	Base
	Segment string
}

// NewReasoningSegment creates a reasoning segment event.
func NewReasoningSegment(segment string) ReasoningSegment {
	return ReasoningSegment{Base: NewBase(KindReasoningSegment), Segment: segment}
}

// ReasoningEnded carries the full accumulated reasoning once the stream
// transitions to narration or to a call.
type ReasoningEnded struct {
	Base
	Reasoning string
}

// NewReasoningEnded creates a reasoning ended event.
func NewReasoningEnded(reasoning string) ReasoningEnded {
	return ReasoningEnded{Base: NewBase(KindReasoningEnded), Reasoning: reasoning}
}
