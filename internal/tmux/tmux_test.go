package tmux

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// writeFakeTmux writes a shell script that stands in for the tmux binary.
// The body can dispatch on "$1" (the subcommand).
func writeFakeTmux(t *testing.T, body string) *Client {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tmux")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake tmux: %v", err)
	}
	return NewClient(path)
}

func TestListSessions(t *testing.T) {
	c := writeFakeTmux(t, `printf 'main\nwork\n\n'`)
	got := c.ListSessions(context.Background())
	if len(got) != 2 || got[0] != "main" || got[1] != "work" {
		t.Fatalf("unexpected sessions: %#v", got)
	}
}

func TestListSessionsNoServer(t *testing.T) {
	c := writeFakeTmux(t, `echo 'no server running' >&2; exit 1`)
	if got := c.ListSessions(context.Background()); got != nil {
		t.Fatalf("expected nil on failure, got %#v", got)
	}
}

func TestListWindowsAllSkipsMalformed(t *testing.T) {
	c := writeFakeTmux(t, `cat <<'EOF'
main	1	editor	/repo
main	notanumber	shell	/tmp
main	2	editor
too	few
main	3	logs	/var/log
EOF`)
	got, err := c.ListWindowsAll(context.Background())
	if err != nil {
		t.Fatalf("ListWindowsAll: %v", err)
	}
	want := []Window{
		{Session: "main", Index: 1, Name: "editor", Path: "/repo"},
		{Session: "main", Index: 3, Name: "logs", Path: "/var/log"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d: %#v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCurrentSessionAndWindow(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSess string
		wantIdx  int
		wantNil  bool
	}{
		{
			name:     "well formed",
			body:     `printf 'main\t2\n'`,
			wantSess: "main",
			wantIdx:  2,
		},
		{
			name:    "command fails",
			body:    `exit 1`,
			wantNil: true,
		},
		{
			name:    "non-numeric index",
			body:    `printf 'main\tlots\n'`,
			wantNil: true,
		},
		{
			name:    "missing field",
			body:    `printf 'main\n'`,
			wantNil: true,
		},
		{
			name:    "empty session",
			body:    `printf '\t2\n'`,
			wantNil: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := writeFakeTmux(t, tt.body)
			sess, idx := c.CurrentSessionAndWindow(context.Background())
			if tt.wantNil {
				if sess != nil || idx != nil {
					t.Fatalf("expected (nil, nil), got (%v, %v)", sess, idx)
				}
				return
			}
			if sess == nil || idx == nil {
				t.Fatalf("expected values, got (%v, %v)", sess, idx)
			}
			if *sess != tt.wantSess || *idx != tt.wantIdx {
				t.Fatalf("got (%q, %d), want (%q, %d)", *sess, *idx, tt.wantSess, tt.wantIdx)
			}
		})
	}
}

func TestPaneContext(t *testing.T) {
	c := writeFakeTmux(t, `printf 'main\teditor\t/repo\t2\n'`)
	pc, err := c.PaneContext(context.Background(), "%5")
	if err != nil {
		t.Fatalf("PaneContext: %v", err)
	}
	want := PaneContext{Session: "main", WindowName: "editor", Path: "/repo", WindowIndex: 2}
	if pc != want {
		t.Fatalf("got %+v, want %+v", pc, want)
	}
}

func TestPaneContextIncomplete(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "dead pane", body: `echo "can't find pane" >&2; exit 1`},
		{name: "empty field", body: `printf 'main\t\t/repo\t2\n'`},
		{name: "wrong field count", body: `printf 'main\teditor\n'`},
		{name: "non-numeric index", body: `printf 'main\teditor\t/repo\tzwei\n'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := writeFakeTmux(t, tt.body)
			if _, err := c.PaneContext(context.Background(), "%5"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWindowIDs(t *testing.T) {
	c := writeFakeTmux(t, `cat <<'EOF'
0	@3
2	@7
bad	@9
EOF`)
	ids, err := c.WindowIDs(context.Background(), "main")
	if err != nil {
		t.Fatalf("WindowIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "@3" || ids[2] != "@7" {
		t.Fatalf("unexpected ids: %#v", ids)
	}
}

func TestSendKeysSendsLiteralThenEnter(t *testing.T) {
	dir := t.TempDir()
	log := filepath.Join(dir, "calls")
	c := writeFakeTmux(t, `echo "$@" >> `+log)
	if err := c.SendKeys(context.Background(), "@3", "cd /repo"); err != nil {
		t.Fatalf("SendKeys: %v", err)
	}
	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("read call log: %v", err)
	}
	want := "send-keys -t @3 -l cd /repo\nsend-keys -t @3 Enter\n"
	if string(data) != want {
		t.Fatalf("calls:\n%s\nwant:\n%s", data, want)
	}
}

func TestNewSessionReturnsWindowID(t *testing.T) {
	c := writeFakeTmux(t, `printf '@12\n'`)
	id, err := c.NewSession(context.Background(), "main", "editor", "/repo")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if id != "@12" {
		t.Fatalf("got id %q, want @12", id)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("  one \n\n two\n\t\nthree  \n")
	if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
		t.Fatalf("unexpected lines: %#v", got)
	}
}
