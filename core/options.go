package composer

import (
	"context"

	"github.com/kivria40/foxdot-composer/core/conversations"
	"github.com/kivria40/foxdot-composer/core/events"
	"github.com/kivria40/foxdot-composer/core/llms"
	"github.com/kivria40/foxdot-composer/core/sandbox"
	"github.com/kivria40/foxdot-composer/core/session"
)

// StreamingLLM is the minimum a model backend must provide: a streamed
// generation whose chunks interleave reasoning, narration and calls.
type StreamingLLM interface {
	PromptWithStream(ctx context.Context, prompt *string, opts ...llms.PromptOption) llms.Stream
}

// Summarizer is implemented by backends that can produce structured
// consolidation summaries.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Prompter is implemented by backends with a plain non-streamed
// completion. Consolidation falls back to it when the structured
// summary path fails; backends with neither skip consolidation.
type Prompter interface {
	Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error)
}

type engineOptions struct {
	session              *session.Session
	contextManager       *conversations.Manager
	sandbox              sandbox.Executor
	autoExecute          *bool
	maxContinuationDepth int
	emit                 eventEmitter
}

type Option func(*engineOptions)

// WithSession starts the engine on an existing session, e.g. one
// restored from a snapshot.
func WithSession(s *session.Session) Option {
	return func(o *engineOptions) {
		o.session = s
	}
}

// WithContextManager swaps the conversation context manager, e.g. to
// tune the consolidation ceiling or the size estimator.
func WithContextManager(m *conversations.Manager) Option {
	return func(o *engineOptions) {
		o.contextManager = m
	}
}

// WithSandbox attaches the execution sandbox. Without one the engine
// only generates code.
func WithSandbox(executor sandbox.Executor) Option {
	return func(o *engineOptions) {
		o.sandbox = executor
	}
}

// WithAutoExecute overrides whether resolved calls execute their code.
// Defaults to true when a sandbox is attached.
func WithAutoExecute(autoExecute bool) Option {
	return func(o *engineOptions) {
		o.autoExecute = &autoExecute
	}
}

// WithMaxContinuationDepth bounds how many call and continuation
// cycles one turn may run (default 8).
func WithMaxContinuationDepth(depth int) Option {
	return func(o *engineOptions) {
		o.maxContinuationDepth = depth
	}
}

// WithEventHandler registers the callback that receives engine events.
func WithEventHandler(handler func(events.Event)) Option {
	return func(o *engineOptions) {
		o.emit = handler
	}
}
