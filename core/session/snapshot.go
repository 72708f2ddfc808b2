package session

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Snapshot is the flat persisted form of a session, sufficient to
// reconstruct its state and histories.
type Snapshot struct {
	ID         string           `json:"session_id"`
	CreatedAt  time.Time        `json:"created_at"`
	Tempo      int              `json:"tempo"`
	Scale      string           `json:"scale"`
	Root       string           `json:"root"`
	Layers     map[string]Layer `json:"layers"`
	Chat       []ChatMessage    `json:"chat_history,omitempty"`
	Executions []CodeExecution  `json:"code_history,omitempty"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layers := make(map[string]Layer, len(s.layers))
	for name, layer := range s.layers {
		layers[name] = layer
	}
	chat := make([]ChatMessage, len(s.chat))
	copy(chat, s.chat)
	executions := make([]CodeExecution, len(s.executions))
	copy(executions, s.executions)

	return Snapshot{
		ID:         s.id,
		CreatedAt:  s.createdAt,
		Tempo:      s.tempo,
		Scale:      s.scale,
		Root:       s.root,
		Layers:     layers,
		Chat:       chat,
		Executions: executions,
	}
}

// Save writes the session snapshot to path as JSON.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// FromSnapshot reconstructs a session from a snapshot.
func FromSnapshot(snapshot Snapshot) *Session {
	s := New()
	if snapshot.ID != "" {
		s.id = snapshot.ID
	}
	if !snapshot.CreatedAt.IsZero() {
		s.createdAt = snapshot.CreatedAt
	}
	if snapshot.Tempo != 0 {
		s.tempo = snapshot.Tempo
	}
	if snapshot.Scale != "" {
		s.scale = snapshot.Scale
	}
	if snapshot.Root != "" {
		s.root = snapshot.Root
	}
	for name, layer := range snapshot.Layers {
		s.layers[name] = layer
	}
	s.chat = append(s.chat, snapshot.Chat...)
	s.executions = append(s.executions, snapshot.Executions...)
	return s
}

// Restore replaces the session's state with the snapshot's, in place.
// Existing layers not present in the snapshot are dropped.
func (s *Session) Restore(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.ID != "" {
		s.id = snapshot.ID
	}
	if !snapshot.CreatedAt.IsZero() {
		s.createdAt = snapshot.CreatedAt
	}
	if snapshot.Tempo != 0 {
		s.tempo = snapshot.Tempo
	}
	if snapshot.Scale != "" {
		s.scale = snapshot.Scale
	}
	if snapshot.Root != "" {
		s.root = snapshot.Root
	}
	s.layers = make(map[string]Layer, len(snapshot.Layers))
	for name, layer := range snapshot.Layers {
		s.layers[name] = layer
	}
	s.chat = append([]ChatMessage(nil), snapshot.Chat...)
	s.executions = append([]CodeExecution(nil), snapshot.Executions...)
}

// ReadSnapshot reads a snapshot from path without building a session.
func ReadSnapshot(path string) (Snapshot, error) {
	var snapshot Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("unmarshalling session: %w", err)
	}
	return snapshot, nil
}

// Load reads a session snapshot from path.
func Load(path string) (*Session, error) {
	snapshot, err := ReadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return FromSnapshot(snapshot), nil
}
