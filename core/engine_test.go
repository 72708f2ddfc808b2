package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kivria40/foxdot-composer/core/conversations"
	"github.com/kivria40/foxdot-composer/core/events"
	"github.com/kivria40/foxdot-composer/core/llms"
	"github.com/kivria40/foxdot-composer/core/sandbox"
	"github.com/kivria40/foxdot-composer/core/session"
)

type fakeReasoningChunk struct{ text string }

func (c fakeReasoningChunk) FinishReason() *string { return nil }
func (c fakeReasoningChunk) Reasoning() string     { return c.text }

type fakeContentChunk struct{ text string }

func (c fakeContentChunk) FinishReason() *string { return nil }
func (c fakeContentChunk) Content() string       { return c.text }

type fakeToolCallChunk struct{ call llms.ToolCall }

func (c fakeToolCallChunk) FinishReason() *string { return nil }
func (c fakeToolCallChunk) ToolCall() llms.ToolCall {
	return c.call
}

type fakeRoleChunk struct{ role string }

func (c fakeRoleChunk) FinishReason() *string { return nil }
func (c fakeRoleChunk) Role() string          { return c.role }

type fakeStream struct {
	chunks []llms.StreamChunk
	err    error
}

func (s fakeStream) Chunks(context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for _, chunk := range s.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

// fakeLLM replays scripted stream passes and captures each request's
// prompt options for assertions.
type fakeLLM struct {
	passes   []fakeStream
	requests []llms.PromptOptions
}

func (f *fakeLLM) PromptWithStream(_ context.Context, _ *string, opts ...llms.PromptOption) llms.Stream {
	options := llms.PromptOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	f.requests = append(f.requests, options)

	if len(f.passes) == 0 {
		return fakeStream{}
	}
	next := f.passes[0]
	f.passes = f.passes[1:]
	return next
}

type fakeSummarizingLLM struct {
	fakeLLM
	summary string
}

func (f *fakeSummarizingLLM) Summarize(context.Context, string) (string, error) {
	return f.summary, nil
}

// fakeFallbackLLM fails structured summaries but answers plain prompts.
type fakeFallbackLLM struct {
	fakeLLM
	summary string
}

func (f *fakeFallbackLLM) Summarize(context.Context, string) (string, error) {
	return "", errors.New("schema validation failed")
}

func (f *fakeFallbackLLM) Prompt(context.Context, string, ...llms.PromptOption) (*llms.Response, error) {
	return &llms.Response{Content: f.summary}, nil
}

type fakeExecutor struct {
	result   sandbox.Result
	err      error
	executed []string
}

func (f *fakeExecutor) Execute(_ context.Context, code, _ string) (*sandbox.Result, error) {
	f.executed = append(f.executed, code)
	if f.err != nil {
		return nil, f.err
	}
	result := f.result
	return &result, nil
}

func (f *fakeExecutor) Close(context.Context) error { return nil }

func collectEvents(captured *[]events.Event) Option {
	return WithEventHandler(func(event events.Event) {
		*captured = append(*captured, event)
	})
}

func eventKinds(captured []events.Event) []events.Kind {
	kinds := make([]events.Kind, 0, len(captured))
	for _, event := range captured {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func countKind(captured []events.Event, kind events.Kind) int {
	count := 0
	for _, event := range captured {
		if event.Kind() == kind {
			count++
		}
	}
	return count
}

func TestProcessMessageNarrationOnly(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeContentChunk{"Hello "},
			fakeContentChunk{"there."},
		}},
	}}

	var captured []events.Event
	manager := conversations.NewManager()
	engine, err := New(llm, WithContextManager(manager), collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}
	if result.Response != "Hello there." {
		t.Fatalf("expected accumulated narration, got %q", result.Response)
	}
	if len(result.Calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(result.Calls))
	}

	want := []events.Kind{
		events.KindTurnStarted,
		events.KindNarrationStarted,
		events.KindNarrationSegment,
		events.KindNarrationSegment,
		events.KindNarrationEnded,
		events.KindTurnDone,
	}
	got := eventKinds(captured)
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}

	if manager.Len() != 2 {
		t.Fatalf("expected user and agent turns recorded, got %d", manager.Len())
	}
}

func TestProcessMessageIgnoresRoleChunks(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeRoleChunk{"assistant"},
			fakeContentChunk{"Hello."},
		}},
	}}

	var captured []events.Event
	engine, err := New(llm, collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}
	if result.Response != "Hello." {
		t.Fatalf("expected role chunks to carry no narration, got %q", result.Response)
	}
	if countKind(captured, events.KindNarrationSegment) != 1 {
		t.Fatalf("expected one narration segment, got %v", eventKinds(captured))
	}
}

func TestProcessMessageResolvesCallsAndContinues(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeReasoningChunk{"tempo first"},
			fakeToolCallChunk{llms.ToolCall{ID: "call-1", Name: "set_tempo", Arguments: `{"bpm": 128}`}},
		}},
		{chunks: []llms.StreamChunk{
			fakeContentChunk{"Tempo set to 128."},
		}},
	}}

	var captured []events.Event
	engine, err := New(llm, collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "make it faster")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}

	if engine.Session().Tempo() != 128 {
		t.Fatalf("expected tempo 128, got %d", engine.Session().Tempo())
	}
	if len(result.Calls) != 1 {
		t.Fatalf("expected one call, got %d", len(result.Calls))
	}
	call := result.Calls[0]
	if call.Name != "set_tempo" {
		t.Fatalf("expected set_tempo call, got %q", call.Name)
	}
	if call.Result.Status != conversations.StatusCodeGenerated {
		t.Fatalf("expected code_generated without a sandbox, got %q", call.Result.Status)
	}
	if call.Result.Code != "Clock.bpm = 128" {
		t.Fatalf("unexpected generated code %q", call.Result.Code)
	}
	if result.Response != "Tempo set to 128." {
		t.Fatalf("unexpected response %q", result.Response)
	}
	if result.Reasoning != "tempo first" {
		t.Fatalf("unexpected reasoning %q", result.Reasoning)
	}

	if len(llm.requests) != 2 {
		t.Fatalf("expected two stream passes, got %d", len(llm.requests))
	}
	continuation := llm.requests[1].Turns
	last := continuation[len(continuation)-1]
	if last.Role != llms.TurnRoleAgent || len(last.ToolCalls) != 1 {
		t.Fatalf("expected buffered agent turn with the resolved call, got %+v", last)
	}
	if !strings.Contains(last.ToolCalls[0].Response, "code_generated") {
		t.Fatalf("expected resolved call response in continuation buffer, got %q", last.ToolCalls[0].Response)
	}

	want := []events.Kind{
		events.KindTurnStarted,
		events.KindReasoningStarted,
		events.KindReasoningSegment,
		events.KindReasoningEnded,
		events.KindCallStarted,
		events.KindCallRequested,
		events.KindCallResolved,
		events.KindCallEnded,
		events.KindNarrationStarted,
		events.KindNarrationSegment,
		events.KindNarrationEnded,
		events.KindTurnDone,
	}
	got := eventKinds(captured)
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

func TestUnknownCallRecordedAsError(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{ID: "call-1", Name: "teleport", Arguments: `{}`}},
		}},
		{chunks: []llms.StreamChunk{
			fakeContentChunk{"That one I cannot do."},
		}},
	}}

	var captured []events.Event
	engine, err := New(llm, collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "teleport the drums")
	if err != nil {
		t.Fatalf("unknown calls must not abort the turn: %v", err)
	}

	if len(result.Calls) != 1 || result.Calls[0].Result.Status != conversations.StatusError {
		t.Fatalf("expected one error call record, got %+v", result.Calls)
	}
	if !strings.Contains(result.Calls[0].Result.Error, "unknown call") {
		t.Fatalf("expected unknown call error, got %q", result.Calls[0].Result.Error)
	}
	if len(engine.Session().Layers()) != 0 {
		t.Fatalf("unknown call must not mutate the session")
	}
	if countKind(captured, events.KindTurnDone) != 1 || countKind(captured, events.KindTurnError) != 0 {
		t.Fatalf("expected exactly one done event, got %v", eventKinds(captured))
	}
}

func TestStreamErrorAbortsTurn(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{
			chunks: []llms.StreamChunk{fakeReasoningChunk{"thinking about drums"}},
			err:    fmt.Errorf("connection reset"),
		},
	}}

	var captured []events.Event
	manager := conversations.NewManager()
	engine, err := New(llm, WithContextManager(manager), collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if _, err := engine.ProcessMessage(context.Background(), "add drums"); err == nil {
		t.Fatalf("expected stream error to abort the turn")
	}

	if manager.Len() != 0 {
		t.Fatalf("aborted turns must not be recorded, got %d turns", manager.Len())
	}
	if countKind(captured, events.KindTurnError) != 1 || countKind(captured, events.KindTurnDone) != 0 {
		t.Fatalf("expected exactly one error event, got %v", eventKinds(captured))
	}
}

func TestContinuationDepthIsBounded(t *testing.T) {
	endless := fakeStream{chunks: []llms.StreamChunk{
		fakeToolCallChunk{llms.ToolCall{Name: "get_session_state"}},
	}}
	llm := &fakeLLM{passes: []fakeStream{endless, endless, endless, endless, endless}}

	manager := conversations.NewManager()
	engine, err := New(llm, WithContextManager(manager), WithMaxContinuationDepth(2))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	_, err = engine.ProcessMessage(context.Background(), "loop forever")
	if !errors.Is(err, ErrContinuationDepthExceeded) {
		t.Fatalf("expected continuation depth error, got %v", err)
	}
	if manager.Len() != 0 {
		t.Fatalf("aborted turns must not be recorded, got %d turns", manager.Len())
	}
}

func TestPlaySynthExecutesThroughSandbox(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{
				Name:      "play_synth",
				Arguments: `{"player": "p1", "synth": "pluck", "notes": "[0, 2, 4]", "description": "gentle arp"}`,
			}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"A gentle arp on p1."}}},
	}}
	executor := &fakeExecutor{result: sandbox.Result{Success: true, Output: "ok", Players: []string{"p1"}}}

	engine, err := New(llm, WithSandbox(executor))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "play something gentle")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}

	call := result.Calls[0]
	if call.Result.Status != conversations.StatusSuccess {
		t.Fatalf("expected success, got %q (%s)", call.Result.Status, call.Result.Error)
	}
	wantCode := "p1 >> pluck([0, 2, 4], dur=1, amp=0.7, oct=5)"
	if call.Result.Code != wantCode {
		t.Fatalf("expected code %q, got %q", wantCode, call.Result.Code)
	}
	if len(executor.executed) != 1 || executor.executed[0] != wantCode {
		t.Fatalf("expected code to reach the sandbox, got %v", executor.executed)
	}

	layer, ok := engine.Session().Layer("p1")
	if !ok {
		t.Fatalf("expected layer p1 in the session")
	}
	if layer.Synth != "pluck" || layer.Description != "gentle arp" {
		t.Fatalf("unexpected layer %+v", layer)
	}
	if len(engine.Session().Executions()) != 1 {
		t.Fatalf("expected one recorded execution")
	}
}

func TestAutoExecuteOffGeneratesOnly(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{Name: "set_tempo", Arguments: `{"bpm": 90}`}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"Slowed down."}}},
	}}
	executor := &fakeExecutor{result: sandbox.Result{Success: true}}

	engine, err := New(llm, WithSandbox(executor), WithAutoExecute(false))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "slow it down")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}
	if result.Calls[0].Result.Status != conversations.StatusCodeGenerated {
		t.Fatalf("expected code_generated with auto-execute off, got %q", result.Calls[0].Result.Status)
	}
	if len(executor.executed) != 0 {
		t.Fatalf("expected no sandbox executions, got %v", executor.executed)
	}
	if engine.Session().Tempo() != 90 {
		t.Fatalf("tempo should still be tracked, got %d", engine.Session().Tempo())
	}
}

func TestModifyLayerUnknownPlayerDoesNotMutate(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{Name: "modify_layer", Arguments: `{"player": "p7", "amp": 0.2}`}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"Nothing to modify."}}},
	}}

	engine, err := New(llm)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "quieter on p7")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}
	if result.Calls[0].Result.Status != conversations.StatusError {
		t.Fatalf("expected error for unknown player, got %q", result.Calls[0].Result.Status)
	}
	if len(engine.Session().Layers()) != 0 {
		t.Fatalf("failed modify must not create layers")
	}
}

func TestStopAllClearsSessionAndReportsPlayers(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{Name: "stop_all"}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"Silence."}}},
	}}

	s := session.New()
	s.UpsertLayer(session.Layer{Player: "d1", Synth: "play"})
	s.UpsertLayer(session.Layer{Player: "b1", Synth: "bass"})
	s.UpsertLayer(session.Layer{Player: "p1", Synth: "pluck"})

	engine, err := New(llm, WithSession(s))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "stop everything")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}
	if result.Calls[0].Result.Code != "Clock.clear()" {
		t.Fatalf("unexpected stop code %q", result.Calls[0].Result.Code)
	}
	players := result.Calls[0].Result.Players
	if len(players) != 3 || players[0] != "p1" || players[1] != "d1" || players[2] != "b1" {
		t.Fatalf("expected players reported in namespace order [p1 d1 b1], got %v", players)
	}
	if len(engine.Session().Layers()) != 0 {
		t.Fatalf("expected an empty session after stop_all")
	}
}

func TestExecuteCodeReportsTouchedPlayers(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{
				Name:      "execute_code",
				Arguments: `{"code": "p1 >> pluck([0])\nd2.stop()", "description": "custom"}`,
			}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"Ran it."}}},
	}}

	engine, err := New(llm)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	result, err := engine.ProcessMessage(context.Background(), "run my code")
	if err != nil {
		t.Fatalf("failed to process message: %v", err)
	}
	call := result.Calls[0]
	if call.Result.Status != conversations.StatusCodeGenerated {
		t.Fatalf("expected code_generated, got %q", call.Result.Status)
	}
	if len(call.Result.Players) != 2 || call.Result.Players[0] != "p1" || call.Result.Players[1] != "d2" {
		t.Fatalf("expected players [p1 d2], got %v", call.Result.Players)
	}
	if len(engine.Session().Layers()) != 0 {
		t.Fatalf("execute_code must not mutate layers")
	}
}

func TestSessionEvolvesAcrossTurns(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{Name: "set_tempo", Arguments: `{"bpm": 140}`}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"140 bpm."}}},
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{
				Name:      "play_drums",
				Arguments: `{"player": "d1", "pattern": "x-o-", "description": "beat"}`,
			}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"A beat on d1."}}},
		{chunks: []llms.StreamChunk{
			fakeToolCallChunk{llms.ToolCall{Name: "stop_all"}},
		}},
		{chunks: []llms.StreamChunk{fakeContentChunk{"All quiet."}}},
	}}

	engine, err := New(llm)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	s := engine.Session()

	if _, err := engine.ProcessMessage(context.Background(), "set tempo to 140"); err != nil {
		t.Fatalf("tempo turn failed: %v", err)
	}
	if s.Tempo() != 140 {
		t.Fatalf("expected tempo 140, got %d", s.Tempo())
	}

	if _, err := engine.ProcessMessage(context.Background(), "add a beat"); err != nil {
		t.Fatalf("drum turn failed: %v", err)
	}
	layer, ok := s.Layer("d1")
	if !ok || layer.State != session.StateActive {
		t.Fatalf("expected an active d1 layer, got %+v", layer)
	}
	if layer.Code != `d1 >> play("x-o-", dur=0.5, amp=0.8)` {
		t.Fatalf("unexpected drum code %q", layer.Code)
	}

	result, err := engine.ProcessMessage(context.Background(), "stop everything")
	if err != nil {
		t.Fatalf("stop turn failed: %v", err)
	}
	if len(s.Layers()) != 0 {
		t.Fatalf("expected no layers after stop_all")
	}
	if result.Calls[0].Result.Code != "Clock.clear()" {
		t.Fatalf("unexpected clear code %q", result.Calls[0].Result.Code)
	}
}

func TestConsolidationRunsBeforeTheTurn(t *testing.T) {
	llm := &fakeSummarizingLLM{
		fakeLLM: fakeLLM{passes: []fakeStream{
			{chunks: []llms.StreamChunk{fakeContentChunk{"Continuing."}}},
		}},
		summary: "we built a slow ambient groove",
	}

	manager := conversations.NewManager(
		conversations.WithMaxSize(100),
		conversations.WithThreshold(0.5),
		conversations.WithKeepRecent(2),
		conversations.WithEstimator(func(string) int { return 10 }),
	)
	for i := 0; i < 8; i++ {
		manager.RecordTurn(conversations.Turn{Role: conversations.RoleUser, Content: "older message"})
	}

	var captured []events.Event
	engine, err := New(llm, WithContextManager(manager), collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if _, err := engine.ProcessMessage(context.Background(), "keep going"); err != nil {
		t.Fatalf("failed to process message: %v", err)
	}

	if countKind(captured, events.KindTurnConsolidated) != 1 {
		t.Fatalf("expected one consolidation event, got %v", eventKinds(captured))
	}
	if manager.Summary() != "we built a slow ambient groove" {
		t.Fatalf("unexpected summary %q", manager.Summary())
	}
	if got := eventKinds(captured)[1]; got != events.KindTurnConsolidated {
		t.Fatalf("consolidation must precede streaming, got %v", eventKinds(captured))
	}
}

func TestConsolidationFallsBackToPlainPrompt(t *testing.T) {
	llm := &fakeFallbackLLM{
		fakeLLM: fakeLLM{passes: []fakeStream{
			{chunks: []llms.StreamChunk{fakeContentChunk{"Continuing."}}},
		}},
		summary: "a minimal techno sketch so far",
	}

	manager := conversations.NewManager(
		conversations.WithMaxSize(100),
		conversations.WithThreshold(0.5),
		conversations.WithKeepRecent(2),
		conversations.WithEstimator(func(string) int { return 10 }),
	)
	for i := 0; i < 8; i++ {
		manager.RecordTurn(conversations.Turn{Role: conversations.RoleUser, Content: "older message"})
	}

	var captured []events.Event
	engine, err := New(llm, WithContextManager(manager), collectEvents(&captured))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if _, err := engine.ProcessMessage(context.Background(), "keep going"); err != nil {
		t.Fatalf("failed to process message: %v", err)
	}

	if countKind(captured, events.KindTurnConsolidated) != 1 {
		t.Fatalf("expected one consolidation event, got %v", eventKinds(captured))
	}
	if manager.Summary() != "a minimal techno sketch so far" {
		t.Fatalf("expected the plain completion to supply the summary, got %q", manager.Summary())
	}
}

func TestInstructionsCarrySessionAndContext(t *testing.T) {
	llm := &fakeLLM{passes: []fakeStream{
		{chunks: []llms.StreamChunk{fakeContentChunk{"Noted."}}},
	}}

	s := session.New()
	s.SetTempo(140)
	manager := conversations.NewManager()
	manager.RecordTurn(conversations.Turn{Role: conversations.RoleUser, Content: "earlier message about techno"})

	engine, err := New(llm, WithSession(s), WithContextManager(manager))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	if _, err := engine.ProcessMessage(context.Background(), "more of that"); err != nil {
		t.Fatalf("failed to process message: %v", err)
	}

	instructions := llm.requests[0].Instructions
	for _, fragment := range []string{"140", "Current Music Session State", "earlier message about techno"} {
		if !strings.Contains(instructions, fragment) {
			t.Fatalf("expected instructions to contain %q", fragment)
		}
	}
	if len(llm.requests[0].Tools) != 10 {
		t.Fatalf("expected the full call catalog, got %d tools", len(llm.requests[0].Tools))
	}
}
