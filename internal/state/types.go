// Package state captures and restores the layout of all tmux sessions,
// including which windows were running tracked Claude sessions.
//
// Windows are identified across save/restore cycles by (name, path, ordinal)
// rather than by window index: indices renumber when windows are created or
// destroyed, while the ordinal (the zero-based occurrence of a (name, path)
// pair within a session, in ascending index order) is stable.
package state

import (
	"encoding/json"
	"fmt"
)

// Window is one tab within a session.
type Window struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Ordinal int    `json:"ordinal"`
}

// Session is a named, ordered list of windows.
type Session struct {
	Name    string   `json:"name"`
	Windows []Window `json:"windows"`
}

// ClaudeBinding records that the window identified by
// (session, window_name, path, ordinal) was running the Claude session uuid.
type ClaudeBinding struct {
	Session    string `json:"session"`
	WindowName string `json:"window_name"`
	Path       string `json:"path"`
	Ordinal    int    `json:"ordinal"`
	UUID       string `json:"uuid"`
}

// State is a full snapshot of the tmux server at capture time.
type State struct {
	CreatedAt          string          `json:"created_at"`
	Sessions           []Session       `json:"sessions"`
	CurrentSession     *string         `json:"current_session"`
	CurrentWindowIndex *int            `json:"current_window_index"`
	Claude             []ClaudeBinding `json:"claude"`
}

// Encode renders the state as indented JSON.
func (s *State) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a snapshot document.
func Decode(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}
