package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/kivria40/foxdot-composer/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// Prompt issues a single non-streamed generation.
func (c *Client) Prompt(ctx context.Context, prompt string, opts ...llms.PromptOption) (*llms.Response, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	config := &genai.GenerateContentConfig{
		Tools: toGenaiTools(options.Tools),
	}
	if options.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: options.Instructions}},
		}
	}

	response, err := c.client.Models.GenerateContent(ctx, c.model, toContents(options.Turns, &prompt), config)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			span.SetAttributes(attribute.String("response.error_reason", apiErr.Reason()))
		}
		err = fmt.Errorf("error generating content: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		err := fmt.Errorf("response carried no candidates")
		span.RecordError(err)
		return nil, err
	}

	result := llms.Response{}
	for _, part := range response.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			result.ToolCalls = append(result.ToolCalls, toToolCall(part.FunctionCall))
			continue
		}
		if part.Thought {
			continue
		}
		result.Content += part.Text
	}
	return &result, nil
}

type conversationSummary struct {
	Summary string `json:"summary"`
}

// Summarize produces a consolidation summary constrained to a JSON
// response schema.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	ctx, span := tracer.Start(ctx, "summarize conversation")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {
					Type:        genai.TypeString,
					Description: "Concise summary of the conversation so far",
				},
			},
			Required: []string{"summary"},
		},
	}

	response, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: transcript}}},
	}, config)
	if err != nil {
		err = fmt.Errorf("summarizing conversation: %w", err)
		span.RecordError(err)
		return "", err
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		err := fmt.Errorf("summary response carried no candidates")
		span.RecordError(err)
		return "", err
	}

	var text string
	for _, part := range response.Candidates[0].Content.Parts {
		text += part.Text
	}
	var summary conversationSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		err = fmt.Errorf("decoding summary: %w", err)
		span.RecordError(err)
		return "", err
	}
	return summary.Summary, nil
}
