// Package claudemap persists which tmux pane is running which tracked
// Claude session.
//
// The map is a flat text file, one "session:pane-id:uuid" record per line.
// Session names may themselves contain colons, so lines are split from the
// right. The file is always rewritten whole, via a sibling temp file and an
// atomic rename.
package claudemap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Entry is one pane-to-session record.
type Entry struct {
	Session string
	PaneID  string
	UUID    string
}

// PaneLister supplies the set of live panes for garbage collection.
type PaneLister interface {
	ListPanesAll(ctx context.Context) ([]string, error)
}

// Store reads and rewrites the map file at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// Read parses the map file. A missing file yields no entries. Blank lines,
// comment lines, and lines that do not split into three non-empty fields
// are skipped. A file that is not valid UTF-8 is treated as corrupt and
// yields no entries at all.
func (s *Store) Read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read claude map: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, nil
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, ok := parseLine(line)
		if !ok {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Write replaces the map file with the given entries. The data is written
// to a sibling temp file first and renamed into place, so readers never
// observe a partial file.
func (s *Store) Write(entries []Entry) error {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Session)
		b.WriteByte(':')
		b.WriteString(e.PaneID)
		b.WriteByte(':')
		b.WriteString(e.UUID)
		b.WriteByte('\n')
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write claude map: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace claude map: %w", err)
	}
	return nil
}

// Upsert claims a pane: any existing record for (session, paneID) is
// dropped and the new record appended.
func (s *Store) Upsert(session, paneID, uuid string) error {
	entries, err := s.Read()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Session == session && e.PaneID == paneID {
			continue
		}
		kept = append(kept, e)
	}
	kept = append(kept, Entry{Session: session, PaneID: paneID, UUID: uuid})
	return s.Write(kept)
}

// CleanStale drops every entry whose pane no longer exists and reports how
// many were removed. When the tmux server is unreachable the live set is
// empty, so every entry is stale.
func (s *Store) CleanStale(ctx context.Context, panes PaneLister) (int, error) {
	entries, err := s.Read()
	if err != nil {
		return 0, err
	}

	live := make(map[string]bool)
	if all, err := panes.ListPanesAll(ctx); err == nil {
		for _, p := range all {
			live[p] = true
		}
	}

	var kept []Entry
	removed := 0
	for _, e := range entries {
		if live[e.Session+":"+e.PaneID] {
			kept = append(kept, e)
		} else {
			removed++
		}
	}
	if err := s.Write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// parseLine splits "session:paneID:uuid" from the right, preserving colons
// inside the session name.
func parseLine(line string) (Entry, bool) {
	last := strings.LastIndexByte(line, ':')
	if last < 0 {
		return Entry{}, false
	}
	mid := strings.LastIndexByte(line[:last], ':')
	if mid < 0 {
		return Entry{}, false
	}
	e := Entry{
		Session: line[:mid],
		PaneID:  line[mid+1 : last],
		UUID:    line[last+1:],
	}
	if e.Session == "" || e.PaneID == "" || e.UUID == "" {
		return Entry{}, false
	}
	return e, true
}
