package state

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// LoadSummary reports what a load run reconstructed.
type LoadSummary struct {
	SessionsCreated int
	WindowsCreated  int
	Resumed         int
	FocusRestored   bool
}

// bindingKey addresses a window by semantic identity.
type bindingKey struct {
	session string
	name    string
	path    string
	ordinal int
}

// Load reads the snapshot, recreates every recorded session and window,
// resumes claude sessions in the windows their bindings point at, and
// finally tries to restore the focus recorded at save time.
func (e *Engine) Load(ctx context.Context) (*LoadSummary, error) {
	st, err := e.Store.Load()
	if err != nil {
		return nil, err
	}

	// Duplicate identities keep the last binding, matching save order.
	claude := make(map[bindingKey]string, len(st.Claude))
	for _, b := range st.Claude {
		claude[bindingKey{b.Session, b.WindowName, b.Path, b.Ordinal}] = b.UUID
	}

	summary := &LoadSummary{}
	for _, sess := range st.Sessions {
		if len(sess.Windows) == 0 {
			continue
		}
		windows := make([]Window, len(sess.Windows))
		copy(windows, sess.Windows)
		sort.Slice(windows, func(i, j int) bool { return windows[i].Index < windows[j].Index })
		first := windows[0]

		// The first recorded window maps onto the session's lowest existing
		// window: created fresh for a new session, renamed and cd'ed for an
		// existing one so stale name/path are reconciled rather than
		// duplicated.
		var firstID string
		if !e.Mux.HasSession(ctx, sess.Name) {
			id, err := e.Mux.NewSession(ctx, sess.Name, first.Name, first.Path)
			if err != nil {
				return nil, fmt.Errorf("create session %q: %w", sess.Name, err)
			}
			firstID = id
			summary.SessionsCreated++
		} else {
			firstID = e.reconcileFirstWindow(ctx, sess.Name, first)
		}

		occurrence := make(map[[2]string]int)
		for i, w := range windows {
			var target string
			if i == 0 {
				target = firstID
			} else {
				id, err := e.Mux.NewWindow(ctx, sess.Name, w.Name, w.Path)
				if err != nil {
					return nil, fmt.Errorf("create window %q in %q: %w", w.Name, sess.Name, err)
				}
				target = id
				summary.WindowsCreated++
			}

			key := [2]string{w.Name, w.Path}
			occ := occurrence[key]
			occurrence[key]++

			uuid, ok := claude[bindingKey{sess.Name, w.Name, w.Path, occ}]
			if !ok || target == "" {
				continue
			}
			if err := e.Mux.SendKeys(ctx, target, e.resumeCommand(uuid)); err != nil {
				return nil, fmt.Errorf("resume claude in %q: %w", target, err)
			}
			summary.Resumed++
		}
	}

	summary.FocusRestored = e.restoreFocus(ctx, st)
	return summary, nil
}

// reconcileFirstWindow forces the lowest-index window of an existing
// session to carry the recorded name and path. Failures are non-fatal;
// an empty id means the first window's binding cannot be resumed.
func (e *Engine) reconcileFirstWindow(ctx context.Context, session string, first Window) string {
	ids, err := e.Mux.WindowIDs(ctx, session)
	if err != nil || len(ids) == 0 {
		return ""
	}
	lowest := -1
	for idx := range ids {
		if lowest < 0 || idx < lowest {
			lowest = idx
		}
	}
	target := fmt.Sprintf("%s:%d", session, lowest)
	if err := e.Mux.RenameWindow(ctx, target, first.Name); err != nil {
		return ids[lowest]
	}
	_ = e.Mux.SendKeys(ctx, target, "cd "+shellQuote(first.Path))
	return ids[lowest]
}

// restoreFocus switches the attached client to the session and window that
// were focused at save time, falling back to attach-session when no client
// is attached. Always non-fatal.
func (e *Engine) restoreFocus(ctx context.Context, st *State) bool {
	if st.CurrentSession == nil || st.CurrentWindowIndex == nil {
		return false
	}
	target := fmt.Sprintf("%s:%d", *st.CurrentSession, *st.CurrentWindowIndex)
	if err := e.Mux.SwitchClient(ctx, target); err == nil {
		return true
	}
	return e.Mux.AttachSession(ctx, target) == nil
}

func (e *Engine) resumeCommand(uuid string) string {
	claude := e.ClaudeCommand
	if claude == "" {
		claude = "claude"
	}
	return claude + " --resume " + shellQuote(uuid)
}

// shellQuote single-quotes s for the shell unless it is already safe.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$&|;<>()*?[]#~%{}`!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
