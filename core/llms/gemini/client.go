// Package gemini backs the model abstraction with the Google Gemini
// API. Thought parts map to reasoning chunks, text parts to content
// chunks and function-call parts to atomic tool-call chunks.
package gemini

import (
	"context"
	"fmt"

	"github.com/kivria40/foxdot-composer/internal/utils"
	"google.golang.org/genai"
)

// Client is a Gemini-backed model client.
type Client struct {
	client *genai.Client
	model  string

	includeThoughts bool
	thinkingBudget  *int32
}

type ClientOption func(*Client)

// WithThoughts toggles thought summaries in streamed responses.
// They are on by default.
func WithThoughts(include bool) ClientOption {
	return func(c *Client) {
		c.includeThoughts = include
	}
}

// WithThinkingBudget caps thinking tokens; without it the model
// decides dynamically.
func WithThinkingBudget(tokens int32) ClientOption {
	return func(c *Client) {
		c.thinkingBudget = utils.Ptr(tokens)
	}
}

// New creates a client. A missing API key or model is a configuration
// error surfaced before any turn starts.
func New(ctx context.Context, apiKey string, model string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	c := &Client{client: client, model: model, includeThoughts: true}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) thinkingConfig() *genai.ThinkingConfig {
	if !c.includeThoughts && c.thinkingBudget == nil {
		return nil
	}
	return &genai.ThinkingConfig{
		IncludeThoughts: c.includeThoughts,
		ThinkingBudget:  c.thinkingBudget,
	}
}
