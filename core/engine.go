package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kivria40/foxdot-composer/core/conversations"
	"github.com/kivria40/foxdot-composer/core/events"
	"github.com/kivria40/foxdot-composer/core/foxdot"
	"github.com/kivria40/foxdot-composer/core/llms"
	"github.com/kivria40/foxdot-composer/core/sandbox"
	"github.com/kivria40/foxdot-composer/core/session"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const persona = `You are a live-coding music companion driving a FoxDot runtime.
You translate what the user asks for into structured calls against the
session: layers, tempo, scale and root. Narrate what you are doing in
short, musical language. Prefer the dedicated calls over execute_code;
reach for execute_code only when no other call expresses the idea.
Build gradually, layer by layer, and keep the session coherent.`

// Engine turns user messages into streamed reasoning, narration and
// resolved calls against a single music session. It is single-threaded:
// one message is processed at a time and calls block the stream until
// resolved.
type Engine struct {
	mu sync.Mutex

	llm            StreamingLLM
	session        *session.Session
	contextManager *conversations.Manager
	sandbox        sandbox.Executor

	autoExecute          bool
	maxContinuationDepth int

	catalog []callHandler
	emit    eventEmitter
}

// TurnResult is the accumulated outcome of one processed message.
type TurnResult struct {
	ID        string
	Response  string
	Reasoning string
	Calls     []conversations.CallRecord
}

// New creates an engine around a streaming model backend.
func New(llm StreamingLLM, opts ...Option) (*Engine, error) {
	if llm == nil {
		return nil, fmt.Errorf("streaming llm is required")
	}

	options := engineOptions{
		maxContinuationDepth: 8,
		emit:                 noopEventEmitter,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.session == nil {
		options.session = session.New()
	}
	if options.contextManager == nil {
		options.contextManager = conversations.NewManager()
	}
	if options.maxContinuationDepth <= 0 {
		return nil, fmt.Errorf("max continuation depth must be positive")
	}

	autoExecute := options.sandbox != nil
	if options.autoExecute != nil {
		autoExecute = *options.autoExecute
	}

	return &Engine{
		llm:                  llm,
		session:              options.session,
		contextManager:       options.contextManager,
		sandbox:              options.sandbox,
		autoExecute:          autoExecute,
		maxContinuationDepth: options.maxContinuationDepth,
		catalog:              buildCatalog(),
		emit:                 options.emit,
	}, nil
}

// Session exposes the engine's music session, e.g. for snapshots.
func (e *Engine) Session() *session.Session {
	return e.session
}

// StopAll silences the whole session outside a conversational turn,
// e.g. from a panic key in a frontend.
func (e *Engine) StopAll(ctx context.Context) conversations.CallResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return resolveStopAll(ctx, e, "")
}

// Close releases the sandbox connection, if any.
func (e *Engine) Close(ctx context.Context) error {
	if e.sandbox == nil {
		return nil
	}
	return e.sandbox.Close(ctx)
}

// turnState accumulates one turn's output across continuation passes.
type turnState struct {
	reasoning strings.Builder
	response  strings.Builder

	reasoningStarted bool
	reasoningOpen    bool
	narrationStarted bool

	// flushed marks how much of response earlier passes already carried
	// in their buffered agent turns.
	flushed int

	calls    []conversations.CallRecord
	resolved []events.CallResolved
}

// ProcessMessage runs one full turn: consolidate if needed, stream the
// model, resolve calls as they appear and continue until a pass ends
// without calls. Exactly one of a done or error event is emitted.
func (e *Engine) ProcessMessage(ctx context.Context, message string) (*TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := tracer.Start(ctx, "process message")
	defer span.End()

	turnID := uuid.NewString()
	span.SetAttributes(attribute.String("turn.id", turnID))
	e.emit(events.NewTurnStarted(turnID, message))

	e.consolidate(ctx)

	state := &turnState{}
	buffer := []llms.Turn{{Role: llms.TurnRoleUser, Content: message}}
	if err := e.streamTurn(ctx, state, buffer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.emit(events.NewTurnError(turnID, err.Error()))
		return nil, err
	}

	if state.reasoningOpen {
		e.emit(events.NewReasoningEnded(state.reasoning.String()))
		state.reasoningOpen = false
	}
	if state.narrationStarted {
		e.emit(events.NewNarrationEnded())
	}

	e.recordTurn(message, state)
	result := &TurnResult{
		ID:        turnID,
		Response:  state.response.String(),
		Reasoning: state.reasoning.String(),
		Calls:     state.calls,
	}
	e.emit(events.NewTurnDone(turnID, result.Response, result.Reasoning, state.resolved))
	return result, nil
}

// streamTurn runs streamed passes until one finishes without calls,
// appending an agent turn with the pass's calls and narration before
// each continuation pass.
func (e *Engine) streamTurn(ctx context.Context, state *turnState, buffer []llms.Turn) error {
	tools := make([]llms.Tool, 0, len(e.catalog))
	for _, handler := range e.catalog {
		tools = append(tools, handler.tool)
	}
	instructions := e.renderInstructions()

	for depth := 0; ; depth++ {
		if depth > e.maxContinuationDepth {
			return fmt.Errorf("%w after %d passes", ErrContinuationDepthExceeded, depth)
		}

		passCalls, err := e.streamPass(ctx, state, instructions, buffer, tools)
		if err != nil {
			return err
		}
		if len(passCalls) == 0 {
			return nil
		}

		narration := state.response.String()[state.flushed:]
		state.flushed = state.response.Len()
		buffer = append(buffer, llms.Turn{
			Role:      llms.TurnRoleAgent,
			Content:   narration,
			ToolCalls: passCalls,
		})
	}
}

// streamPass consumes one model stream, classifying each delta and
// resolving calls synchronously at the point they appear.
func (e *Engine) streamPass(ctx context.Context, state *turnState, instructions string, buffer []llms.Turn, tools []llms.Tool) ([]llms.ToolCall, error) {
	ctx, span := tracer.Start(ctx, "stream pass")
	defer span.End()

	stream := e.llm.PromptWithStream(ctx, nil,
		llms.WithInstructions(instructions),
		llms.WithTurns(buffer...),
		llms.WithTools(tools...),
	)

	var passCalls []llms.ToolCall
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			err = fmt.Errorf("streaming model response: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		switch chunk := chunk.(type) {
		case llms.StreamReasoningChunk:
			if !state.reasoningStarted {
				state.reasoningStarted = true
				e.emit(events.NewReasoningStarted())
			}
			state.reasoningOpen = true
			state.reasoning.WriteString(chunk.Reasoning())
			e.emit(events.NewReasoningSegment(chunk.Reasoning()))

		case llms.StreamContentChunk:
			e.closeReasoning(state)
			if !state.narrationStarted {
				state.narrationStarted = true
				e.emit(events.NewNarrationStarted())
			}
			state.response.WriteString(chunk.Content())
			e.emit(events.NewNarrationSegment(chunk.Content()))

		case llms.StreamToolCallChunk:
			e.closeReasoning(state)
			call := e.resolveCall(ctx, state, chunk.ToolCall())
			passCalls = append(passCalls, call)
		}
	}

	span.SetAttributes(attribute.Int("calls.count", len(passCalls)))
	return passCalls, nil
}

func (e *Engine) closeReasoning(state *turnState) {
	if !state.reasoningOpen {
		return
	}
	state.reasoningOpen = false
	e.emit(events.NewReasoningEnded(state.reasoning.String()))
}

// resolveCall blocks the stream while the catalog handler runs, then
// records the outcome for both the continuation pass and the turn.
func (e *Engine) resolveCall(ctx context.Context, state *turnState, toolCall llms.ToolCall) llms.ToolCall {
	ctx, span := tracer.Start(ctx, "resolve call")
	defer span.End()
	span.SetAttributes(attribute.String("call.name", toolCall.Name))

	if toolCall.ID == "" {
		toolCall.ID = uuid.NewString()
	}
	e.emit(events.NewCallStarted(toolCall.ID, toolCall.Name))
	e.emit(events.NewCallRequested(toolCall.ID, toolCall.Name, toolCall.Arguments))

	result := e.dispatch(ctx, toolCall.Name, toolCall.Arguments)
	if result.Status == conversations.StatusError {
		span.SetStatus(codes.Error, result.Error)
	}
	span.SetAttributes(attribute.String("call.status", string(result.Status)))

	resolved := events.NewCallResolved(toolCall.ID, toolCall.Name, toolCall.Arguments,
		string(result.Status), result.Code, result.Output, result.Error, result.Players)
	e.emit(resolved)
	e.emit(events.NewCallEnded(toolCall.ID, toolCall.Name))

	state.calls = append(state.calls, conversations.CallRecord{
		Name:      toolCall.Name,
		Arguments: toolCall.Arguments,
		Result:    result,
	})
	state.resolved = append(state.resolved, resolved)

	response, err := json.Marshal(result)
	if err != nil {
		response = []byte(fmt.Sprintf(`{"status":"error","error":%q}`, err.Error()))
	}
	toolCall.Response = string(response)
	return toolCall
}

func (e *Engine) dispatch(ctx context.Context, name, arguments string) conversations.CallResult {
	for i := range e.catalog {
		if e.catalog[i].tool.Function.Name == name {
			return e.catalog[i].resolve(ctx, e, arguments)
		}
	}
	return errorResult(fmt.Errorf("unknown call: %s", name))
}

// executeCode runs generated code through the sandbox when execution
// is enabled, otherwise reports the code as generated only.
func (e *Engine) executeCode(ctx context.Context, code, description string, players []string) conversations.CallResult {
	if !e.autoExecute || e.sandbox == nil {
		return conversations.CallResult{
			Status:  conversations.StatusCodeGenerated,
			Code:    code,
			Players: players,
		}
	}

	result, err := e.sandbox.Execute(ctx, code, description)
	if err != nil {
		return conversations.CallResult{
			Status:  conversations.StatusError,
			Code:    code,
			Error:   err.Error(),
			Players: players,
		}
	}

	e.session.RecordExecution(code, result.Success, result.Output)

	players = mergePlayers(players, result.Players)
	if !result.Success {
		return conversations.CallResult{
			Status:  conversations.StatusError,
			Code:    code,
			Output:  result.Output,
			Error:   result.Error,
			Players: players,
		}
	}
	return conversations.CallResult{
		Status:  conversations.StatusSuccess,
		Code:    code,
		Output:  result.Output,
		Players: players,
	}
}

func mergePlayers(mutated, reported []string) []string {
	merged := append([]string(nil), mutated...)
	for _, player := range reported {
		known := false
		for _, existing := range merged {
			if existing == player {
				known = true
				break
			}
		}
		if !known {
			merged = append(merged, player)
		}
	}
	return merged
}

// consolidate compacts the conversation context once it crosses the
// pressure threshold. Failures leave the context untouched; the turn
// proceeds with the unconsolidated window.
func (e *Engine) consolidate(ctx context.Context) {
	if !e.contextManager.NeedsConsolidation() {
		return
	}
	request := e.contextManager.BuildConsolidationRequest()
	if request == "" {
		return
	}

	ctx, span := tracer.Start(ctx, "consolidate context")
	defer span.End()

	summary, err := e.summarize(ctx, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "context consolidation failed", "error", err)
		return
	}

	dropped := e.contextManager.ApplyConsolidation(summary)
	span.SetAttributes(attribute.Int("turns.dropped", dropped))
	if dropped > 0 {
		e.emit(events.NewTurnConsolidated(dropped))
	}
}

// summarize asks the backend for a consolidation summary, preferring
// the structured Summarize path and falling back to a plain completion
// when it fails. Backends with neither capability skip consolidation.
func (e *Engine) summarize(ctx context.Context, request string) (string, error) {
	summarizer, canSummarize := e.llm.(Summarizer)
	prompter, canPrompt := e.llm.(Prompter)
	if !canSummarize && !canPrompt {
		return "", nil
	}

	var summarizeErr error
	if canSummarize {
		summary, err := summarizer.Summarize(ctx, request)
		if err == nil {
			return summary, nil
		}
		summarizeErr = err
		if !canPrompt {
			return "", err
		}
		logger.WarnContext(ctx, "structured summary failed, falling back to plain completion", "error", err)
	}

	response, err := prompter.Prompt(ctx, request)
	if err != nil {
		if summarizeErr != nil {
			return "", fmt.Errorf("summarize: %w (fallback: %w)", summarizeErr, err)
		}
		return "", err
	}
	return response.Content, nil
}

// recordTurn commits a completed turn to the context manager and the
// session's chat history. Aborted turns never reach here.
func (e *Engine) recordTurn(message string, state *turnState) {
	e.contextManager.RecordTurn(conversations.Turn{
		Role:    conversations.RoleUser,
		Content: message,
	})
	e.contextManager.RecordTurn(conversations.Turn{
		Role:      conversations.RoleAgent,
		Content:   state.response.String(),
		Reasoning: state.reasoning.String(),
		Calls:     state.calls,
	})

	e.session.AddChatMessage("user", message, "", nil)
	var code []string
	var players []string
	for _, call := range state.calls {
		if call.Result.Code != "" {
			code = append(code, call.Result.Code)
		}
		players = mergePlayers(players, call.Result.Players)
	}
	e.session.AddChatMessage("assistant", state.response.String(), strings.Join(code, "\n"), players)
}

func (e *Engine) renderInstructions() string {
	sections := []string{
		persona,
		foxdot.Reference(),
		e.session.Describe(),
	}
	if window := e.contextManager.RenderContext(); window != "" {
		sections = append(sections, window)
	}
	return strings.Join(sections, "\n\n")
}
