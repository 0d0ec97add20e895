package claudemap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "claude-map"))
}

func writeMap(t *testing.T, s *Store, content []byte) {
	t.Helper()
	if err := os.WriteFile(s.Path(), content, 0o644); err != nil {
		t.Fatalf("write map file: %v", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %#v", entries)
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Entry
	}{
		{
			name:    "well formed",
			content: "main:%1:uuid-a\nwork:%2:uuid-b\n",
			want: []Entry{
				{Session: "main", PaneID: "%1", UUID: "uuid-a"},
				{Session: "work", PaneID: "%2", UUID: "uuid-b"},
			},
		},
		{
			name:    "session name containing colons",
			content: "my:odd:session:%3:uuid-c\n",
			want: []Entry{
				{Session: "my:odd:session", PaneID: "%3", UUID: "uuid-c"},
			},
		},
		{
			name:    "comments and blank lines",
			content: "# a comment\n\nmain:%1:uuid-a\n   \n# another\n",
			want: []Entry{
				{Session: "main", PaneID: "%1", UUID: "uuid-a"},
			},
		},
		{
			name:    "malformed lines skipped",
			content: "onlyonefield\ntwo:fields\nmain:%1:uuid-a\n::\n:%2:uuid\n",
			want: []Entry{
				{Session: "main", PaneID: "%1", UUID: "uuid-a"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeMap(t, s, []byte(tt.content))
			got, err := s.Read()
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %#v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadBinaryCorruption(t *testing.T) {
	s := newTestStore(t)
	writeMap(t, s, []byte{0xff, 0xfe, 'm', 'a', 'i', 'n', ':', '%', '1', ':', 'u'})
	entries, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if entries != nil {
		t.Fatalf("corrupt file must yield no entries, got %#v", entries)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	if err := s.Upsert("main", "%1", "uuid-a"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert("main", "%1", "uuid-b"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	entries, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %#v", entries)
	}
	if entries[0].UUID != "uuid-b" {
		t.Fatalf("expected uuid-b, got %q", entries[0].UUID)
	}
}

func TestUpsertPreservesOtherEntries(t *testing.T) {
	s := newTestStore(t)
	writeMap(t, s, []byte("work:%2:uuid-b\n"))
	if err := s.Upsert("main", "%1", "uuid-a"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	entries, err := s.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %#v", entries)
	}
	if entries[0].Session != "work" || entries[1].Session != "main" {
		t.Fatalf("unexpected order: %#v", entries)
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	s := newTestStore(t)
	if err := s.Write([]Entry{{Session: "main", PaneID: "%1", UUID: "u"}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "main:%1:u\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

// fakePanes is a canned PaneLister.
type fakePanes struct {
	panes []string
	err   error
}

func (f fakePanes) ListPanesAll(ctx context.Context) ([]string, error) {
	return f.panes, f.err
}

func TestCleanStale(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		panes       fakePanes
		wantRemoved int
		wantKept    int
	}{
		{
			name:        "removes exactly the dead panes",
			content:     "main:%1:uuid-a\nmain:%2:uuid-b\nwork:%3:uuid-c\n",
			panes:       fakePanes{panes: []string{"main:%1", "work:%3"}},
			wantRemoved: 1,
			wantKept:    2,
		},
		{
			name:        "no-op when all live",
			content:     "main:%1:uuid-a\nwork:%3:uuid-c\n",
			panes:       fakePanes{panes: []string{"main:%1", "work:%3"}},
			wantRemoved: 0,
			wantKept:    2,
		},
		{
			name:        "server unreachable removes everything",
			content:     "main:%1:uuid-a\nwork:%3:uuid-c\n",
			panes:       fakePanes{err: errors.New("no server running")},
			wantRemoved: 2,
			wantKept:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeMap(t, s, []byte(tt.content))
			removed, err := s.CleanStale(context.Background(), tt.panes)
			if err != nil {
				t.Fatalf("CleanStale: %v", err)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
			entries, err := s.Read()
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if len(entries) != tt.wantKept {
				t.Errorf("kept = %d, want %d: %#v", len(entries), tt.wantKept, entries)
			}
		})
	}
}
