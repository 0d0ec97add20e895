package state

import (
	"context"
	"errors"
	"sort"
	"time"

	"dot/internal/claudemap"
	"dot/internal/tmux"
)

// ErrNoSessions is returned by Engine.Save when the tmux server has
// nothing to snapshot.
var ErrNoSessions = errors.New("no tmux sessions running")

// Mux is the slice of the tmux client the engines depend on.
type Mux interface {
	ListSessions(ctx context.Context) []string
	ListWindowsAll(ctx context.Context) ([]tmux.Window, error)
	CurrentSessionAndWindow(ctx context.Context) (*string, *int)
	ListPanesAll(ctx context.Context) ([]string, error)
	PaneContext(ctx context.Context, paneID string) (tmux.PaneContext, error)
	HasSession(ctx context.Context, name string) bool
	NewSession(ctx context.Context, name, windowName, windowPath string) (string, error)
	NewWindow(ctx context.Context, session, name, path string) (string, error)
	RenameWindow(ctx context.Context, target, name string) error
	SendKeys(ctx context.Context, target, text string) error
	WindowIDs(ctx context.Context, session string) (map[int]string, error)
	SwitchClient(ctx context.Context, target string) error
	AttachSession(ctx context.Context, target string) error
}

// Engine binds the tmux transport, the claude map, and the snapshot file
// into the save and load operations.
type Engine struct {
	Mux   Mux
	Map   *claudemap.Store
	Store *FileStore

	// ClaudeCommand is the assistant binary used in resume invocations.
	// Empty means "claude".
	ClaudeCommand string
}

// SaveSummary reports what a save run captured.
type SaveSummary struct {
	Path         string
	Sessions     int
	Windows      int
	Bindings     int
	StaleRemoved int
}

// Save snapshots the full layout, resolves claude bindings to window
// identities, writes the snapshot atomically, and garbage-collects the
// claude map.
func (e *Engine) Save(ctx context.Context) (*SaveSummary, error) {
	sessions := e.Mux.ListSessions(ctx)
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	all, err := e.Mux.ListWindowsAll(ctx)
	if err != nil {
		return nil, err
	}

	// Group windows per session in ascending index order and assign each
	// one its ordinal within the (name, path) pair.
	bySession := make(map[string][]Window, len(sessions))
	for _, s := range sessions {
		bySession[s] = []Window{}
	}
	grouped := make(map[string][]tmux.Window)
	for _, w := range all {
		grouped[w.Session] = append(grouped[w.Session], w)
	}
	for s, ws := range grouped {
		sort.Slice(ws, func(i, j int) bool { return ws[i].Index < ws[j].Index })
		counts := make(map[[2]string]int)
		for _, w := range ws {
			key := [2]string{w.Name, w.Path}
			bySession[s] = append(bySession[s], Window{
				Index:   w.Index,
				Name:    w.Name,
				Path:    w.Path,
				Ordinal: counts[key],
			})
			counts[key]++
		}
	}

	curSession, curWindow := e.Mux.CurrentSessionAndWindow(ctx)

	// Resolve bindings before writing anything: a broken map file must
	// abort the save with the previous snapshot intact.
	bindings, err := e.resolveBindings(ctx, bySession)
	if err != nil {
		return nil, err
	}

	st := &State{
		CreatedAt:          time.Now().Format(time.RFC3339),
		Sessions:           make([]Session, 0, len(sessions)),
		CurrentSession:     curSession,
		CurrentWindowIndex: curWindow,
		Claude:             bindings,
	}
	windowCount := 0
	for _, s := range sessions {
		st.Sessions = append(st.Sessions, Session{Name: s, Windows: bySession[s]})
		windowCount += len(bySession[s])
	}

	if err := e.Store.Save(st); err != nil {
		return nil, err
	}

	removed, err := e.Map.CleanStale(ctx, e.Mux)
	if err != nil {
		return nil, err
	}

	return &SaveSummary{
		Path:         e.Store.Path(),
		Sessions:     len(st.Sessions),
		Windows:      windowCount,
		Bindings:     len(bindings),
		StaleRemoved: removed,
	}, nil
}

// resolveBindings converts raw claude-map entries, keyed by pane id, into
// bindings keyed by window identity. Entries whose pane is gone or reports
// incomplete fields are dropped; a failure to read the map file itself is
// fatal.
func (e *Engine) resolveBindings(ctx context.Context, bySession map[string][]Window) ([]ClaudeBinding, error) {
	entries, err := e.Map.Read()
	if err != nil {
		return nil, err
	}

	var bindings []ClaudeBinding
	for _, entry := range entries {
		pc, err := e.Mux.PaneContext(ctx, entry.PaneID)
		if err != nil {
			continue
		}

		// The pane's session wins over the recorded one: the session may
		// have been renamed or the pane moved since the entry was written.
		ordinal := 0
		for _, w := range bySession[pc.Session] {
			if w.Index >= pc.WindowIndex {
				break
			}
			if w.Name == pc.WindowName && w.Path == pc.Path {
				ordinal++
			}
		}
		bindings = append(bindings, ClaudeBinding{
			Session:    pc.Session,
			WindowName: pc.WindowName,
			Path:       pc.Path,
			Ordinal:    ordinal,
			UUID:       entry.UUID,
		})
	}
	return bindings, nil
}
