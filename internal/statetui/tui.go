// Package statetui is a small interactive browser over a saved tmux state
// snapshot. It never mutates the snapshot; the only side effect is
// switching the attached tmux client to the selected session.
package statetui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dot/internal/state"
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sessionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	claudeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Switcher moves the attached tmux client's focus.
type Switcher interface {
	SwitchClient(ctx context.Context, target string) error
}

type itemKind int

const (
	itemSession itemKind = iota
	itemWindow
)

// item is one visible row: a session header or a window beneath it.
type item struct {
	kind    itemKind
	session string
	window  state.Window
	claude  bool
}

type model struct {
	st       *state.State
	switcher Switcher

	items     []item
	cursor    int
	filtering bool
	filter    textinput.Model
	status    string
}

// New builds the browser model for a snapshot.
func New(st *state.State, switcher Switcher) tea.Model {
	ti := textinput.New()
	ti.Placeholder = "session filter"
	ti.Prompt = "/"
	ti.CharLimit = 64

	m := model{st: st, switcher: switcher, filter: ti}
	m.rebuild()
	return m
}

// rebuild recomputes the visible rows from the snapshot and the filter.
func (m *model) rebuild() {
	bound := make(map[string]bool, len(m.st.Claude))
	for _, b := range m.st.Claude {
		bound[fmt.Sprintf("%s\x00%s\x00%s\x00%d", b.Session, b.WindowName, b.Path, b.Ordinal)] = true
	}

	needle := strings.ToLower(m.filter.Value())
	m.items = m.items[:0]
	for _, sess := range m.st.Sessions {
		if needle != "" && !strings.Contains(strings.ToLower(sess.Name), needle) {
			continue
		}
		m.items = append(m.items, item{kind: itemSession, session: sess.Name})
		for _, w := range sess.Windows {
			m.items = append(m.items, item{
				kind:    itemWindow,
				session: sess.Name,
				window:  w,
				claude:  bound[fmt.Sprintf("%s\x00%s\x00%s\x00%d", sess.Name, w.Name, w.Path, w.Ordinal)],
			})
		}
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filter.Blur()
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.rebuild()
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "/":
		m.filtering = true
		m.filter.Focus()
	case "enter":
		m.status = m.switchToSelection()
	}
	return m, nil
}

// switchToSelection focuses the tmux client on the row under the cursor.
// Failures (no attached client, session gone) are shown, never fatal.
func (m *model) switchToSelection() string {
	if m.cursor >= len(m.items) {
		return ""
	}
	sel := m.items[m.cursor]
	target := sel.session
	if sel.kind == itemWindow {
		target = fmt.Sprintf("%s:%d", sel.session, sel.window.Index)
	}
	if err := m.switcher.SwitchClient(context.Background(), target); err != nil {
		return errorStyle.Render(fmt.Sprintf("switch to %s failed: %v", target, err))
	}
	return dimStyle.Render("switched to " + target)
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("tmux state (saved %s)", m.st.CreatedAt)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(dimStyle.Render("no sessions match"))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		var line string
		switch it.kind {
		case itemSession:
			line = sessionStyle.Render(it.session)
		case itemWindow:
			marker := "  "
			if it.claude {
				marker = claudeStyle.Render("* ")
			}
			line = fmt.Sprintf("  %s%d: %s  %s", marker, it.window.Index, it.window.Name,
				dimStyle.Render(it.window.Path))
		}
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(dimStyle.Render("enter: switch  /: filter  q: quit   * claude session"))
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}
	return b.String()
}
