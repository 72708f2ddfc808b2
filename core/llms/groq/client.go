// Package groq talks to the Groq OpenAI-compatible chat completions
// API over raw HTTP, with server-sent events for streaming.
package groq

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/kivria40/foxdot-composer/core/llms"
)

const (
	url = "https://api.groq.com/openai/v1/chat/completions"

	endMessage  = "[DONE]"
	chunkPrefix = "data:"
)

// Client is a Groq-backed model client.
type Client struct {
	apiKey string
	model  string
}

// New creates a client. A missing API key or model is a configuration
// error surfaced before any turn starts.
func New(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("groq: model is required")
	}
	return &Client{apiKey: apiKey, model: model}, nil
}

// Tool is the wire form of a tool declaration.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  llms.Parameters `json:"parameters"`
}

func toTools(tools []llms.Tool) []Tool {
	if len(tools) == 0 {
		return nil
	}
	var converted []Tool
	copier.Copy(&converted, tools)
	for i := range converted {
		converted[i].Type = "function"
	}
	return converted
}
