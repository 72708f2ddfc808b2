package events

const (
	// KindNarrationStarted identifies the first narration delta of a turn.
	KindNarrationStarted Kind = "narration.started"
	// KindNarrationSegment identifies streamed narration text.
	KindNarrationSegment Kind = "narration.segment"
	// KindNarrationEnded identifies the end of a narration span.
	KindNarrationEnded Kind = "narration.ended"
)

// NarrationStarted marks the stream entering user-facing narration.
type NarrationStarted struct{ Base }

// NewNarrationStarted creates a narration started event.
func NewNarrationStarted() NarrationStarted {
	return NarrationStarted{Base: NewBase(KindNarrationStarted)}
}

// NarrationSegment carries a streamed user-facing narration delta.
type NarrationSegment struct {
	Base
	Segment string
}

// NewNarrationSegment creates a narration segment event.
func NewNarrationSegment(segment string) NarrationSegment {
	return NarrationSegment{Base: NewBase(KindNarrationSegment), Segment: segment}
}

// NarrationEnded marks the end of streamed narration for a pass.
type NarrationEnded struct{ Base }

// NewNarrationEnded creates a narration ended event.
func NewNarrationEnded() NarrationEnded {
	return NarrationEnded{Base: NewBase(KindNarrationEnded)}
}
