package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/kivria40/foxdot-composer/core/llms"
	"github.com/kivria40/foxdot-composer/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// PromptWithStream prepares a streamed generation. The request is not
// sent until the stream's Chunks iterator is consumed.
func (c *Client) PromptWithStream(_ context.Context, prompt *string, opts ...llms.PromptOption) llms.Stream {
	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	config := &genai.GenerateContentConfig{
		Tools:          toGenaiTools(options.Tools),
		ThinkingConfig: c.thinkingConfig(),
	}
	if options.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: options.Instructions}},
		}
	}

	return &Stream{
		client:   c.client,
		model:    c.model,
		contents: toContents(options.Turns, prompt),
		config:   config,
	}
}

type Stream struct {
	client   *genai.Client
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt llm stream")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.model))

		var toolCallNames []string
		defer func() {
			span.SetAttributes(attribute.StringSlice("response.tool_calls", toolCallNames))
		}()

		for response, err := range s.client.Models.GenerateContentStream(ctx, s.model, s.contents, s.config) {
			if err != nil {
				var apiErr *apierror.APIError
				if errors.As(err, &apiErr) {
					span.SetAttributes(attribute.String("response.error_reason", apiErr.Reason()))
				}
				err = fmt.Errorf("error streaming generation: %w", err)
				span.RecordError(err)
				yield(nil, err)
				return
			}
			if len(response.Candidates) == 0 {
				continue
			}
			candidate := response.Candidates[0]

			var finishReason *string
			if candidate.FinishReason != "" {
				finishReason = utils.Ptr(string(candidate.FinishReason))
				span.SetAttributes(attribute.String("response.finish_reason", string(candidate.FinishReason)))
			}

			if candidate.Content != nil {
				for _, part := range candidate.Content.Parts {
					if part.FunctionCall != nil {
						toolCall := toToolCall(part.FunctionCall)
						toolCallNames = append(toolCallNames, toolCall.Name)
						if !yield(StreamToolCallChunk{
							finishReason: finishReason,
							toolCall:     toolCall,
						}, nil) {
							return
						}
						continue
					}
					if part.Text == "" {
						continue
					}
					if part.Thought {
						if !yield(StreamReasoningChunk{
							finishReason: finishReason,
							reasoning:    part.Text,
						}, nil) {
							return
						}
						continue
					}
					if !yield(StreamContentChunk{
						finishReason: finishReason,
						content:      part.Text,
					}, nil) {
						return
					}
				}
			}

			if response.UsageMetadata != nil {
				usage := response.UsageMetadata
				span.SetAttributes(attribute.Int("usage.input", int(usage.PromptTokenCount)))
				span.SetAttributes(attribute.Int("usage.output", int(usage.CandidatesTokenCount)))
				span.SetAttributes(attribute.Int("usage.total", int(usage.TotalTokenCount)))

				var outputTokensDetails *llms.OutputTokensDetails
				if usage.ThoughtsTokenCount > 0 {
					span.SetAttributes(attribute.Int("usage.reasoning", int(usage.ThoughtsTokenCount)))
					outputTokensDetails = utils.Ptr(llms.OutputTokensDetails{
						ReasoningTokens: int(usage.ThoughtsTokenCount),
					})
				}

				if finishReason != nil {
					if !yield(StreamUsageChunk{
						finishReason: finishReason,
						usage: llms.Usage{
							InputTokens:         int(usage.PromptTokenCount),
							OutputTokens:        int(usage.CandidatesTokenCount),
							OutputTokensDetails: outputTokensDetails,
							TotalTokens:         int(usage.TotalTokenCount),
						},
					}, nil) {
						return
					}
				}
			}
		}
	}
}

type StreamReasoningChunk struct {
	finishReason *string
	reasoning    string
}

func (s StreamReasoningChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamReasoningChunk) Reasoning() string {
	return s.reasoning
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

type StreamToolCallChunk struct {
	finishReason *string
	toolCall     llms.ToolCall
}

func (s StreamToolCallChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamToolCallChunk) ToolCall() llms.ToolCall {
	return s.toolCall
}

type StreamUsageChunk struct {
	finishReason *string
	usage        llms.Usage
}

func (s StreamUsageChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamUsageChunk) Usage() llms.Usage {
	return s.usage
}
