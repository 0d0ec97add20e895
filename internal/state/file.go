package state

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoSnapshot is returned by FileStore.Load when no snapshot has been
// saved yet.
var ErrNoSnapshot = errors.New("no saved state")

// FileStore persists one State document at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot location.
func (f *FileStore) Path() string {
	return f.path
}

// Save writes the state to a sibling temp file and renames it over the
// snapshot path, so a concurrent reader never sees a partial document.
func (f *FileStore) Save(s *State) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot. A missing file yields ErrNoSnapshot.
func (f *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoSnapshot, f.path)
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	return Decode(data)
}
