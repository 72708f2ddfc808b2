package conversations

import (
	"fmt"
	"strings"
	"testing"
)

func TestRecordTurnAccumulatesSize(t *testing.T) {
	m := NewManager(WithEstimator(func(text string) int { return len(text) }))

	m.RecordTurn(Turn{Role: RoleUser, Content: "four"})
	m.RecordTurn(Turn{Role: RoleAgent, Content: "12345678"})

	if m.Size() != 12 {
		t.Fatalf("expected running size 12, got %d", m.Size())
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 turns, got %d", m.Len())
	}
}

func TestNeedsConsolidationThreshold(t *testing.T) {
	m := NewManager(
		WithMaxSize(100),
		WithThreshold(0.7),
		WithEstimator(func(text string) int { return len(text) }),
	)

	m.RecordTurn(Turn{Role: RoleUser, Content: strings.Repeat("a", 70)})
	if m.NeedsConsolidation() {
		t.Fatalf("expected no consolidation at exactly the threshold")
	}

	m.RecordTurn(Turn{Role: RoleUser, Content: "b"})
	if !m.NeedsConsolidation() {
		t.Fatalf("expected consolidation above the threshold")
	}
}

func TestBuildConsolidationRequestNeedsMoreThanKeptTurns(t *testing.T) {
	m := NewManager(WithKeepRecent(5))
	for i := 0; i < 5; i++ {
		m.RecordTurn(Turn{Role: RoleUser, Content: fmt.Sprintf("message %d", i)})
	}
	if request := m.BuildConsolidationRequest(); request != "" {
		t.Fatalf("expected empty request with only %d turns, got %q", m.Len(), request)
	}

	m.RecordTurn(Turn{Role: RoleUser, Content: "message 5"})
	request := m.BuildConsolidationRequest()
	if !strings.Contains(request, "message 0") {
		t.Fatalf("expected request to include the oldest turn, got %q", request)
	}
	if strings.Contains(request, "message 5") {
		t.Fatalf("expected request to exclude the most recent turns, got %q", request)
	}
}

func TestApplyConsolidation(t *testing.T) {
	m := NewManager(
		WithMaxSize(200),
		WithThreshold(0.5),
		WithKeepRecent(5),
		WithEstimator(func(text string) int { return len(text) }),
	)
	for i := 0; i < 12; i++ {
		m.RecordTurn(Turn{Role: RoleUser, Content: strings.Repeat("x", 10)})
	}
	if !m.NeedsConsolidation() {
		t.Fatalf("expected consolidation to be needed before applying")
	}

	dropped := m.ApplyConsolidation("short summary")
	if dropped != 7 {
		t.Fatalf("expected 7 turns dropped, got %d", dropped)
	}
	if m.Len() != 5 {
		t.Fatalf("expected 5 turns kept, got %d", m.Len())
	}
	if expected := 5*10 + len("short summary"); m.Size() != expected {
		t.Fatalf("expected recomputed size %d, got %d", expected, m.Size())
	}
	if m.NeedsConsolidation() {
		t.Fatalf("expected consolidation pressure to reset after applying")
	}
}

func TestApplyConsolidationReplacesSummary(t *testing.T) {
	m := NewManager(WithKeepRecent(1))
	for i := 0; i < 4; i++ {
		m.RecordTurn(Turn{Role: RoleUser, Content: "turn"})
	}

	m.ApplyConsolidation("first summary")
	m.RecordTurn(Turn{Role: RoleUser, Content: "turn"})
	m.ApplyConsolidation("second summary")

	if m.Summary() != "second summary" {
		t.Fatalf("expected latest summary to replace prior one, got %q", m.Summary())
	}
}

func TestEmptySummaryIsNoOp(t *testing.T) {
	m := NewManager(WithKeepRecent(2))
	for i := 0; i < 6; i++ {
		m.RecordTurn(Turn{Role: RoleUser, Content: "turn"})
	}
	m.ApplyConsolidation("kept summary")
	sizeBefore := m.Size()
	lenBefore := m.Len()

	if dropped := m.ApplyConsolidation(""); dropped != 0 {
		t.Fatalf("expected no turns dropped on empty summary, got %d", dropped)
	}
	if m.Summary() != "kept summary" {
		t.Fatalf("expected prior summary to survive, got %q", m.Summary())
	}
	if m.Size() != sizeBefore || m.Len() != lenBefore {
		t.Fatalf("expected state unchanged on empty summary")
	}
}

func TestRenderContextListsCallsAndSummary(t *testing.T) {
	m := NewManager(WithKeepRecent(5))
	m.RecordTurn(Turn{Role: RoleUser, Content: "give me a beat"})
	m.RecordTurn(Turn{
		Role:    RoleAgent,
		Content: "laying down a house beat",
		Calls: []CallRecord{
			{Name: "play_drums", Arguments: `{"player": "d1"}`, Result: CallResult{Status: StatusSuccess}},
			{Name: "set_tempo", Arguments: `{"bpm": 124}`, Result: CallResult{Status: StatusSuccess}},
		},
	})

	rendered := m.RenderContext()
	if !strings.Contains(rendered, "user: give me a beat") {
		t.Errorf("expected user line, got %q", rendered)
	}
	if !strings.Contains(rendered, "[calls: play_drums, set_tempo]") {
		t.Errorf("expected call names listed, got %q", rendered)
	}

	// The summary shows up ahead of the turns once consolidation ran.
	for i := 0; i < 6; i++ {
		m.RecordTurn(Turn{Role: RoleUser, Content: "more"})
	}
	m.ApplyConsolidation("earlier: user asked for a beat")
	rendered = m.RenderContext()
	if !strings.Contains(rendered, "## Conversation Summary") {
		t.Errorf("expected summary section, got %q", rendered)
	}
	if strings.Index(rendered, "Summary") > strings.Index(rendered, "Recent Turns") {
		t.Errorf("expected summary before recent turns, got %q", rendered)
	}
}
