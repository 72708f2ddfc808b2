// Package session holds the mutable state of one live-coding session:
// global music parameters, named layers keyed by player, chat history
// and the record of executed code. Pure data, no I/O besides snapshots.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a layer.
type State string

const (
	StateActive  State = "active"
	StateStopped State = "stopped"
)

// Role partitions the fixed player namespace.
type Role string

const (
	RoleMelodic Role = "melodic"
	RoleDrums   Role = "drums"
	RoleBass    Role = "bass"
	RolePad     Role = "pad"
)

// playerNamespace is the closed set of player names, in allocation order.
var playerNamespace = map[Role][]string{
	RoleMelodic: {"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"},
	RoleDrums:   {"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9"},
	RoleBass:    {"b1", "b2", "b3", "b4"},
	RolePad:     {"pad1", "pad2", "pad3"},
}

// PlayerNames returns the allocation-ordered player names for a role.
// Unknown roles fall back to the melodic namespace.
func PlayerNames(role Role) []string {
	names, ok := playerNamespace[role]
	if !ok {
		names = playerNamespace[RoleMelodic]
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Layer is one named, independently controllable musical part.
type Layer struct {
	Player      string         `json:"player"`
	Synth       string         `json:"synth"`
	Code        string         `json:"code"`
	Description string         `json:"description"`
	State       State          `json:"state"`
	CreatedAt   time.Time      `json:"created_at"`
	ModifiedAt  time.Time      `json:"modified_at"`
	Notes       string         `json:"notes,omitempty"`
	Pattern     string         `json:"pattern,omitempty"`
	Dur         string         `json:"dur,omitempty"`
	Amp         float64        `json:"amp,omitempty"`
	Oct         int            `json:"oct,omitempty"`
	Effects     map[string]any `json:"effects,omitempty"`
}

// ChatMessage is one entry in the session's conversation history.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Code      string    `json:"code,omitempty"`
	Players   []string  `json:"players,omitempty"`
}

// CodeExecution records one piece of code sent to the runtime.
type CodeExecution struct {
	Timestamp time.Time `json:"timestamp"`
	Code      string    `json:"code"`
	Success   bool      `json:"success"`
	Output    string    `json:"output,omitempty"`
}

// Session is owned by exactly one engine instance; the lock only guards
// against front ends reading state while a turn is in flight.
type Session struct {
	mu sync.RWMutex

	id        string
	createdAt time.Time

	tempo int
	scale string
	root  string

	layers     map[string]Layer
	chat       []ChatMessage
	executions []CodeExecution
}

// New creates an empty session with default music parameters
// (120 bpm, major scale, root C).
func New() *Session {
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		tempo:     120,
		scale:     "major",
		root:      "C",
		layers:    map[string]Layer{},
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) Tempo() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tempo
}

func (s *Session) Scale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

func (s *Session) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Session) SetTempo(bpm int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tempo = bpm
}

func (s *Session) SetScale(scale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scale = scale
}

func (s *Session) SetRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}

// UpsertLayer inserts or replaces the layer for layer.Player. On
// replace the original creation timestamp is preserved. The stored
// layer is returned with its timestamps and state filled in.
func (s *Session) UpsertLayer(layer Layer) Layer {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	layer.State = StateActive
	layer.CreatedAt = now
	layer.ModifiedAt = now
	layer.Effects = cloneEffects(layer.Effects)
	if existing, ok := s.layers[layer.Player]; ok {
		layer.CreatedAt = existing.CreatedAt
	}
	s.layers[layer.Player] = layer
	return layer
}

// RemoveLayer stops and evicts the named layer. It is idempotent and
// reports whether anything was removed.
func (s *Session) RemoveLayer(player string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	layer, ok := s.layers[player]
	if !ok {
		return false
	}
	layer.State = StateStopped
	delete(s.layers, player)
	return true
}

// ClearAll evicts every layer.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = map[string]Layer{}
}

// Layer returns the named layer, if present. The returned layer is
// detached from session state; mutating it has no effect.
func (s *Session) Layer(player string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layer, ok := s.layers[player]
	layer.Effects = cloneEffects(layer.Effects)
	return layer, ok
}

// Layers returns a copy of the active layer map, detached from session
// state.
func (s *Session) Layers() map[string]Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	layers := make(map[string]Layer, len(s.layers))
	for name, layer := range s.layers {
		layer.Effects = cloneEffects(layer.Effects)
		layers[name] = layer
	}
	return layers
}

// ActivePlayers lists the names of active layers in namespace
// declaration order.
func (s *Session) ActivePlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderedPlayers()
}

func cloneEffects(effects map[string]any) map[string]any {
	cloned := make(map[string]any, len(effects))
	for name, value := range effects {
		cloned[name] = value
	}
	return cloned
}

// NextAvailablePlayer scans the role's namespace in allocation order
// and returns the first free name. When every name is taken it returns
// the first name of the role, recycling the oldest slot.
func (s *Session) NextAvailablePlayer(role Role) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, ok := playerNamespace[role]
	if !ok {
		names = playerNamespace[RoleMelodic]
	}
	for _, name := range names {
		if _, taken := s.layers[name]; !taken {
			return name
		}
	}
	return names[0]
}

// AddChatMessage appends a message to the session's chat history.
func (s *Session) AddChatMessage(role, content, code string, players []string) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Code:      code,
		Players:   players,
	}
	s.chat = append(s.chat, message)
	return message
}

// ChatMessages returns a copy of the chat history.
func (s *Session) ChatMessages() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]ChatMessage, len(s.chat))
	copy(messages, s.chat)
	return messages
}

// RecordExecution appends a code-execution record.
func (s *Session) RecordExecution(code string, success bool, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions = append(s.executions, CodeExecution{
		Timestamp: time.Now(),
		Code:      code,
		Success:   success,
		Output:    output,
	})
}

// Executions returns a copy of the code-execution history.
func (s *Session) Executions() []CodeExecution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	executions := make([]CodeExecution, len(s.executions))
	copy(executions, s.executions)
	return executions
}

// Describe renders the current state as prompt-ready text: global
// parameters, active layers and the tail of the chat history.
func (s *Session) Describe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString("## Current Music Session State\n\n")
	fmt.Fprintf(&b, "**Tempo:** %d BPM\n", s.tempo)
	fmt.Fprintf(&b, "**Scale:** %s\n", s.scale)
	fmt.Fprintf(&b, "**Root:** %s\n\n", s.root)

	if len(s.layers) == 0 {
		b.WriteString("### No active layers - silence\n")
	} else {
		b.WriteString("### Active Layers (Currently Playing):\n")
		for _, name := range s.orderedPlayers() {
			layer := s.layers[name]
			fmt.Fprintf(&b, "- **%s** (%s): %s", name, layer.Synth, layer.Description)
			if layer.Notes != "" {
				fmt.Fprintf(&b, " | Notes: %s", layer.Notes)
			}
			if layer.Pattern != "" {
				fmt.Fprintf(&b, " | Pattern: %q", layer.Pattern)
			}
			if layer.Amp != 0 {
				fmt.Fprintf(&b, " | Amp: %v", layer.Amp)
			}
			b.WriteString("\n")
		}
	}

	if len(s.chat) > 0 {
		b.WriteString("\n### Recent Conversation:\n")
		recent := s.chat
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		for _, msg := range recent {
			content := msg.Content
			if len(content) > 100 {
				content = content[:100] + "..."
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", msg.Role, content)
		}
	}

	return b.String()
}

// FullCode renders a complete FoxDot program reproducing the current
// state: globals first, then every active layer.
func (s *Session) FullCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "# FoxDot Session: %s\n\n", s.id)
	fmt.Fprintf(&b, "Clock.bpm = %d\n", s.tempo)
	fmt.Fprintf(&b, "Scale.default = Scale.%s\n", s.scale)
	fmt.Fprintf(&b, "Root.default = %q\n\n", s.root)

	for _, name := range s.orderedPlayers() {
		layer := s.layers[name]
		if layer.Description != "" {
			fmt.Fprintf(&b, "# %s\n", layer.Description)
		}
		b.WriteString(layer.Code)
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// orderedPlayers lists active players in namespace declaration order.
// Callers must hold at least a read lock.
func (s *Session) orderedPlayers() []string {
	var names []string
	for _, role := range []Role{RoleMelodic, RoleDrums, RoleBass, RolePad} {
		for _, name := range playerNamespace[role] {
			if _, ok := s.layers[name]; ok {
				names = append(names, name)
			}
		}
	}
	return names
}
