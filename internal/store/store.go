// Package store persists the accumulated profile directory to disk.
//
// Persistence is snapshot-based: every save serializes the complete
// directory and fully overwrites the output file. The file is therefore
// always a consistent snapshot, never a partial append, and an
// interrupted run keeps whatever the last completed save wrote.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/profilescan/profilescan/internal/model"
)

// SnapshotFileName is the name of the profile snapshot file inside the
// output directory.
const SnapshotFileName = "profiles.json"

// Snapshot writes profile directory snapshots to a fixed file path.
//
// Design decision: Save takes the directory by value on every call
// rather than holding a reference, so the store has no opinion about
// when the directory changes. It is safe to call Save repeatedly;
// saving twice with no intervening appends produces identical bytes.
type Snapshot struct {
	// path is the full path of the snapshot file.
	path string
}

// NewSnapshot creates a snapshot store rooted at outputDir, creating
// the directory if needed.
func NewSnapshot(outputDir string) (*Snapshot, error) {
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Snapshot{
		path: filepath.Join(outputDir, SnapshotFileName),
	}, nil
}

// Path returns the snapshot file path.
func (s *Snapshot) Path() string {
	return s.path
}

// Save serializes the directory as pretty-printed JSON and overwrites
// the snapshot file. The shape is {"profiles": [...]} with two-space
// indentation and a trailing newline.
func (s *Snapshot) Save(directory *model.Directory) error {
	data, err := json.MarshalIndent(directory, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize directory: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Load reads an existing snapshot file back into a Directory.
// A missing file returns an empty directory, not an error, so callers
// can inspect output locations without special-casing first runs.
func (s *Snapshot) Load() (*model.Directory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewDirectory(), nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var directory model.Directory
	if err := json.Unmarshal(data, &directory); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if directory.Profiles == nil {
		directory.Profiles = make([]model.Profile, 0)
	}

	return &directory, nil
}
