package composer

import "errors"

// ErrContinuationDepthExceeded ends a turn whose call and continuation
// cycle never converges within the configured depth.
var ErrContinuationDepthExceeded = errors.New("continuation depth exceeded")
