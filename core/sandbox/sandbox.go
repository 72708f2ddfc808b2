// Package sandbox executes generated FoxDot code against a live
// runtime. The runtime lives in a separate process; this package only
// speaks to it over its bridge protocol.
package sandbox

import "context"

// Result is the outcome of executing one piece of code.
type Result struct {
	Success bool     `json:"success"`
	Output  string   `json:"output,omitempty"`
	Error   string   `json:"error,omitempty"`
	Players []string `json:"players,omitempty"`
}

// Executor runs code against the runtime. Implementations impose no
// timeout of their own; cancellation comes from ctx.
type Executor interface {
	Execute(ctx context.Context, code string, description string) (*Result, error)
	Close(ctx context.Context) error
}
