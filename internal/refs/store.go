package refs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists reference tables as one JSON file per session under
// a state directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(session string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, session)
	return filepath.Join(s.dir, "refs-"+safe+".json")
}

// Save writes the full table for session, replacing any previous file.
func (s *FileStore) Save(session string, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal refs: %w", err)
	}
	return os.WriteFile(s.path(session), data, 0o644)
}

// Load reads the persisted table for session. A missing file returns
// (nil, nil): no table has ever been saved.
func (s *FileStore) Load(session string) ([]Entry, error) {
	data, err := os.ReadFile(s.path(session))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load refs: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal refs: %w", err)
	}
	return entries, nil
}

// Delete removes the persisted table for session.
func (s *FileStore) Delete(session string) error {
	err := os.Remove(s.path(session))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
