package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"interviewd/internal/interview"
)

const snapshotFile = "sessions.json"

// Store persists the session snapshot as a single JSON file. Writes go
// through a temp file and rename, so a crash mid-write leaves the previous
// snapshot intact.
type Store struct {
	basePath string
	mu       sync.Mutex
}

var _ interview.SnapshotStore = (*Store)(nil)

// NewStore creates a JSON snapshot store rooted at basePath
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save writes the snapshot to disk
func (s *Store) Save(snapshot *interview.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.basePath, snapshotFile+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snapshot); err != nil {
		tmp.Close()
		return fmt.Errorf("encode json: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.basePath, snapshotFile)); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot from disk. A missing file is an empty snapshot,
// not an error; first runs start clean.
func (s *Store) Load() (*interview.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(filepath.Join(s.basePath, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &interview.Snapshot{}, nil
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	var snapshot interview.Snapshot
	if err := json.NewDecoder(file).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &snapshot, nil
}
