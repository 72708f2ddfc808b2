// Package conversations tracks the turn log of one conversation,
// estimates its size and bounds growth by consolidating older turns
// into a single rolling summary.
package conversations

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CallStatus is the outcome class of one resolved call.
type CallStatus string

const (
	StatusSuccess CallStatus = "success"
	StatusError   CallStatus = "error"
	// StatusCodeGenerated marks calls whose code was built but not
	// executed because automatic execution is off.
	StatusCodeGenerated CallStatus = "code_generated"
)

// CallResult is the merged outcome of building, mutating and (when
// enabled) executing one call.
type CallResult struct {
	Status  CallStatus `json:"status"`
	Code    string     `json:"code,omitempty"`
	Output  string     `json:"output,omitempty"`
	Error   string     `json:"error,omitempty"`
	Players []string   `json:"players,omitempty"`
}

// CallRecord pairs a call the model issued with its result. Produced
// exactly once per resolved call.
type CallRecord struct {
	Name      string     `json:"name"`
	Arguments string     `json:"arguments"`
	Result    CallResult `json:"result"`
}

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one recorded conversation turn. Immutable once recorded,
// except for being dropped during consolidation.
type Turn struct {
	ID        string
	Role      Role
	Content   string
	Reasoning string
	Calls     []CallRecord
	Size      int
	Timestamp time.Time
}

// Estimator approximates the size of a piece of text. The default is
// character-count based and deliberately approximate; it must never be
// treated as an authoritative token count.
type Estimator func(text string) int

func defaultEstimator(text string) int {
	return len(text) / 4
}

const summarizationInstruction = "Summarize the following conversation between a user and a live-coding music agent. " +
	"Keep every musical decision that still matters: active layers, tempo, scale, root, and what the user asked for. " +
	"Be concise; the summary replaces the transcript."

// Manager owns the turn log and the rolling summary for exactly one
// conversation.
type Manager struct {
	turns       []Turn
	summary     string
	summarySize int
	total       int

	maxSize    int
	threshold  float64
	keepRecent int
	estimate   Estimator
}

type Option func(*Manager)

// WithMaxSize sets the soft size ceiling (default 100000).
func WithMaxSize(maxSize int) Option {
	return func(m *Manager) {
		m.maxSize = maxSize
	}
}

// WithThreshold sets the fraction of the ceiling at which consolidation
// triggers (default 0.7).
func WithThreshold(threshold float64) Option {
	return func(m *Manager) {
		m.threshold = threshold
	}
}

// WithKeepRecent sets how many recent turns are always kept verbatim
// (default 5).
func WithKeepRecent(keepRecent int) Option {
	return func(m *Manager) {
		m.keepRecent = keepRecent
	}
}

// WithEstimator swaps the size estimator, e.g. for exact token counts.
func WithEstimator(estimate Estimator) Option {
	return func(m *Manager) {
		m.estimate = estimate
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		maxSize:    100_000,
		threshold:  0.7,
		keepRecent: 5,
		estimate:   defaultEstimator,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordTurn appends a turn and adds its size estimate to the running
// total. Missing id, timestamp and size are filled in. Cannot fail.
func (m *Manager) RecordTurn(turn Turn) Turn {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	if turn.Size == 0 {
		turn.Size = m.estimateTurn(turn)
	}
	m.turns = append(m.turns, turn)
	m.total += turn.Size
	return turn
}

func (m *Manager) estimateTurn(turn Turn) int {
	size := m.estimate(turn.Content) + m.estimate(turn.Reasoning)
	for _, call := range turn.Calls {
		size += m.estimate(call.Arguments) + m.estimate(call.Result.Output)
	}
	return size
}

// NeedsConsolidation reports whether the running total exceeds the
// configured fraction of the ceiling.
func (m *Manager) NeedsConsolidation() bool {
	return float64(m.total) > float64(m.maxSize)*m.threshold
}

// BuildConsolidationRequest renders all turns older than the last
// keepRecent into a transcript wrapped in the summarization
// instruction. Empty when there is nothing to consolidate.
func (m *Manager) BuildConsolidationRequest() string {
	if len(m.turns) <= m.keepRecent {
		return ""
	}

	var b strings.Builder
	b.WriteString(summarizationInstruction)
	b.WriteString("\n\n")
	if m.summary != "" {
		b.WriteString("Previous summary:\n")
		b.WriteString(m.summary)
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript:\n")
	for _, turn := range m.turns[:len(m.turns)-m.keepRecent] {
		b.WriteString(renderTurn(turn))
		b.WriteString("\n")
	}
	return b.String()
}

// ApplyConsolidation installs a new rolling summary, drops all but the
// last keepRecent turns and recomputes the running total. Prior
// summaries are replaced, never chained. An empty summary is a no-op:
// the prior summary and all turns are retained rather than silently
// losing history. Returns how many turns were dropped.
func (m *Manager) ApplyConsolidation(summary string) int {
	if summary == "" {
		return 0
	}

	dropped := 0
	if len(m.turns) > m.keepRecent {
		dropped = len(m.turns) - m.keepRecent
		kept := make([]Turn, m.keepRecent)
		copy(kept, m.turns[dropped:])
		m.turns = kept
	}

	m.summary = summary
	m.summarySize = m.estimate(summary)
	m.total = m.summarySize
	for _, turn := range m.turns {
		m.total += turn.Size
	}
	return dropped
}

// RenderContext renders the rolling summary followed by the last
// keepRecent turns as role-labeled lines for prompt injection.
func (m *Manager) RenderContext() string {
	var b strings.Builder
	if m.summary != "" {
		b.WriteString("## Conversation Summary\n")
		b.WriteString(m.summary)
		b.WriteString("\n\n")
	}

	recent := m.turns
	if len(recent) > m.keepRecent {
		recent = recent[len(recent)-m.keepRecent:]
	}
	if len(recent) > 0 {
		b.WriteString("## Recent Turns\n")
		for _, turn := range recent {
			b.WriteString(renderTurn(turn))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Len returns the number of retained turns.
func (m *Manager) Len() int {
	return len(m.turns)
}

// Size returns the current running size estimate.
func (m *Manager) Size() int {
	return m.total
}

// Summary returns the current rolling summary, if any.
func (m *Manager) Summary() string {
	return m.summary
}

// Turns returns a copy of the retained turns.
func (m *Manager) Turns() []Turn {
	turns := make([]Turn, len(m.turns))
	copy(turns, m.turns)
	return turns
}

func renderTurn(turn Turn) string {
	line := fmt.Sprintf("%s: %s", turn.Role, turn.Content)
	if len(turn.Calls) > 0 {
		names := make([]string, len(turn.Calls))
		for i, call := range turn.Calls {
			names[i] = call.Name
		}
		line += fmt.Sprintf(" [calls: %s]", strings.Join(names, ", "))
	}
	return line
}
