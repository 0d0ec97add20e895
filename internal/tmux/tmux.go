// Package tmux is the transport layer for the tmux binary.
//
// Every method is a single synchronous subprocess invocation. Parsing is
// deliberately forgiving: malformed rows are skipped and best-effort lookups
// degrade to empty results, so that callers can keep working with whatever
// well-formed data the server produced.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const fieldSep = "\t"

// Window is one row of a global window listing.
type Window struct {
	Session string
	Index   int
	Name    string
	Path    string
}

// PaneContext describes the window a pane currently lives in.
type PaneContext struct {
	Session     string
	WindowName  string
	Path        string
	WindowIndex int
}

// Client issues tmux subcommands.
type Client struct {
	bin string
}

// NewClient returns a Client using the given tmux binary.
// An empty bin falls back to "tmux" on $PATH.
func NewClient(bin string) *Client {
	if strings.TrimSpace(bin) == "" {
		bin = "tmux"
	}
	return &Client{bin: bin}
}

// run executes a tmux command and returns its stdout.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("tmux %s: %w: %s", args[0], err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return string(out), nil
}

// ok runs a tmux command and reports whether it exited zero.
func (c *Client) ok(ctx context.Context, args ...string) bool {
	return exec.CommandContext(ctx, c.bin, args...).Run() == nil
}

// ListSessions returns all session names. A failure (typically no server
// running) degrades to an empty list, never an error.
func (c *Client) ListSessions(ctx context.Context) []string {
	out, err := c.run(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		return nil
	}
	return splitLines(out)
}

// ListWindowsAll returns one row per window across every session.
// Rows with the wrong field count or a non-numeric index are skipped.
func (c *Client) ListWindowsAll(ctx context.Context) ([]Window, error) {
	format := strings.Join([]string{
		"#{session_name}", "#{window_index}", "#{window_name}", "#{pane_current_path}",
	}, fieldSep)
	out, err := c.run(ctx, "list-windows", "-a", "-F", format)
	if err != nil {
		return nil, err
	}

	var windows []Window
	for _, line := range splitLines(out) {
		parts := strings.Split(line, fieldSep)
		if len(parts) != 4 {
			continue
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		windows = append(windows, Window{
			Session: parts[0],
			Index:   idx,
			Name:    parts[2],
			Path:    parts[3],
		})
	}
	return windows, nil
}

// CurrentSessionAndWindow returns the focused session name and window index.
// Best-effort: any failure or parse problem yields (nil, nil).
func (c *Client) CurrentSessionAndWindow(ctx context.Context) (*string, *int) {
	out, err := c.run(ctx, "display-message", "-p", "#{session_name}"+fieldSep+"#{window_index}")
	if err != nil {
		return nil, nil
	}
	parts := strings.SplitN(strings.TrimSpace(out), fieldSep, 2)
	if len(parts) != 2 || parts[0] == "" {
		return nil, nil
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, nil
	}
	return &parts[0], &idx
}

// ListPanesAll returns every live pane as "session:pane-id".
func (c *Client) ListPanesAll(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "list-panes", "-a", "-F", "#{session_name}:#{pane_id}")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// PaneContext resolves a pane id to its owning window. An error is returned
// for dead panes and for panes reporting incomplete fields; callers treat
// either as "skip this pane".
func (c *Client) PaneContext(ctx context.Context, paneID string) (PaneContext, error) {
	format := strings.Join([]string{
		"#{session_name}", "#{window_name}", "#{pane_current_path}", "#{window_index}",
	}, fieldSep)
	out, err := c.run(ctx, "display-message", "-p", "-t", paneID, format)
	if err != nil {
		return PaneContext{}, err
	}
	parts := strings.Split(strings.TrimSpace(out), fieldSep)
	if len(parts) != 4 {
		return PaneContext{}, fmt.Errorf("pane %s: unexpected context %q", paneID, strings.TrimSpace(out))
	}
	for _, p := range parts {
		if p == "" {
			return PaneContext{}, fmt.Errorf("pane %s: incomplete context", paneID)
		}
	}
	idx, err := strconv.Atoi(parts[3])
	if err != nil {
		return PaneContext{}, fmt.Errorf("pane %s: window index %q: %w", paneID, parts[3], err)
	}
	return PaneContext{
		Session:     parts[0],
		WindowName:  parts[1],
		Path:        parts[2],
		WindowIndex: idx,
	}, nil
}

// CurrentPane returns the session name, window name, and pane id of the
// pane this process is running in.
func (c *Client) CurrentPane(ctx context.Context) (session, window, paneID string, err error) {
	format := "#{session_name}" + fieldSep + "#{window_name}" + fieldSep + "#{pane_id}"
	out, err := c.run(ctx, "display-message", "-p", format)
	if err != nil {
		return "", "", "", err
	}
	parts := strings.Split(strings.TrimSpace(out), fieldSep)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("unexpected pane info %q", strings.TrimSpace(out))
	}
	return parts[0], parts[1], parts[2], nil
}

// HasSession reports whether a session with the given name exists.
func (c *Client) HasSession(ctx context.Context, name string) bool {
	return c.ok(ctx, "has-session", "-t", name)
}

// NewSession creates a detached session whose first window carries the
// given name and working directory, and returns the first window's id.
func (c *Client) NewSession(ctx context.Context, name, windowName, windowPath string) (string, error) {
	out, err := c.run(ctx, "new-session", "-d", "-s", name, "-n", windowName, "-c", windowPath,
		"-P", "-F", "#{window_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// NewWindow appends a window to the session and returns its id.
func (c *Client) NewWindow(ctx context.Context, session, name, path string) (string, error) {
	out, err := c.run(ctx, "new-window", "-t", session, "-n", name, "-c", path,
		"-P", "-F", "#{window_id}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RenameWindow renames the window addressed by target.
func (c *Client) RenameWindow(ctx context.Context, target, name string) error {
	_, err := c.run(ctx, "rename-window", "-t", target, name)
	return err
}

// SendKeys types text literally into the target pane or window and
// follows it with Enter.
func (c *Client) SendKeys(ctx context.Context, target, text string) error {
	if _, err := c.run(ctx, "send-keys", "-t", target, "-l", text); err != nil {
		return err
	}
	_, err := c.run(ctx, "send-keys", "-t", target, "Enter")
	return err
}

// WindowIDs maps window index to window id for one session.
func (c *Client) WindowIDs(ctx context.Context, session string) (map[int]string, error) {
	out, err := c.run(ctx, "list-windows", "-t", session, "-F", "#{window_index}"+fieldSep+"#{window_id}")
	if err != nil {
		return nil, err
	}
	ids := make(map[int]string)
	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, fieldSep, 2)
		if len(parts) != 2 {
			continue
		}
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		ids[idx] = strings.TrimSpace(parts[1])
	}
	return ids, nil
}

// SwitchClient moves the attached client's focus to target.
func (c *Client) SwitchClient(ctx context.Context, target string) error {
	_, err := c.run(ctx, "switch-client", "-t", target)
	return err
}

// AttachSession attaches to the target session. Used as the fallback when
// SwitchClient fails because no client is attached.
func (c *Client) AttachSession(ctx context.Context, target string) error {
	_, err := c.run(ctx, "attach-session", "-t", target)
	return err
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
