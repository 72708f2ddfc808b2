// Package events defines the typed events the engine emits while
// processing a turn: streamed reasoning and narration, call lifecycle,
// and turn completion or failure.
package events
