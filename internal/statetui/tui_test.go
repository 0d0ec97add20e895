package statetui

import (
	"context"
	"errors"
	"testing"

	"dot/internal/state"
)

type fakeSwitcher struct {
	targets []string
	err     error
}

func (f *fakeSwitcher) SwitchClient(ctx context.Context, target string) error {
	if f.err != nil {
		return f.err
	}
	f.targets = append(f.targets, target)
	return nil
}

func testState() *state.State {
	return &state.State{
		CreatedAt: "2026-08-26T10:00:00Z",
		Sessions: []state.Session{
			{Name: "main", Windows: []state.Window{
				{Index: 1, Name: "editor", Path: "/repo", Ordinal: 0},
				{Index: 2, Name: "editor", Path: "/repo", Ordinal: 1},
			}},
			{Name: "work", Windows: []state.Window{
				{Index: 0, Name: "sh", Path: "/home", Ordinal: 0},
			}},
		},
		Claude: []state.ClaudeBinding{
			{Session: "main", WindowName: "editor", Path: "/repo", Ordinal: 1, UUID: "uuid-x"},
		},
	}
}

func newTestModel(sw Switcher) model {
	return New(testState(), sw).(model)
}

func TestRebuildMarksClaudeWindows(t *testing.T) {
	m := newTestModel(&fakeSwitcher{})

	// Two session headers plus three windows.
	if len(m.items) != 5 {
		t.Fatalf("items = %d, want 5", len(m.items))
	}
	var marked []int
	for i, it := range m.items {
		if it.claude {
			marked = append(marked, i)
		}
	}
	// Only the second editor window carries a binding.
	if len(marked) != 1 || m.items[marked[0]].window.Ordinal != 1 {
		t.Fatalf("claude-marked items: %v", marked)
	}
}

func TestRebuildFiltersSessions(t *testing.T) {
	m := newTestModel(&fakeSwitcher{})
	m.filter.SetValue("wo")
	m.rebuild()

	if len(m.items) != 2 {
		t.Fatalf("items = %d, want 2 (header plus one window)", len(m.items))
	}
	if m.items[0].session != "work" {
		t.Errorf("filtered session = %q, want %q", m.items[0].session, "work")
	}
}

func TestSwitchToSelection(t *testing.T) {
	sw := &fakeSwitcher{}
	m := newTestModel(sw)

	// Cursor on the session header targets the whole session.
	m.cursor = 0
	m.switchToSelection()
	// Cursor on a window targets session:index.
	m.cursor = 2
	m.switchToSelection()

	if len(sw.targets) != 2 || sw.targets[0] != "main" || sw.targets[1] != "main:2" {
		t.Fatalf("targets: %#v", sw.targets)
	}
}

func TestSwitchFailureIsNonFatal(t *testing.T) {
	m := newTestModel(&fakeSwitcher{err: errors.New("no current client")})
	m.cursor = 1
	status := m.switchToSelection()
	if status == "" {
		t.Fatal("expected a status message on switch failure")
	}
}
