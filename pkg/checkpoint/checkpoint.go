// Package checkpoint implements the Checkpoint store (spec §4.7 C8): a
// single well-known JSON file recording the in-progress step of a
// save/compaction operation, written crash-atomically via temp+rename
// so a reader never observes a half-written record.
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
)

// Status is the checkpoint record's advisory completion state.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Record is the sole checkpoint payload. It is purely advisory:
// callers may choose to skip any table whose last recorded status was
// StatusCompleted, but nothing enforces that.
type Record struct {
	Task   string `json:"task"`
	Step   string `json:"step"`
	Table  string `json:"table,omitempty"`
	Status Status `json:"status"`
}

// Store reads and writes the checkpoint file at Path.
type Store struct {
	Path string
}

// New returns a Store pointed at the given well-known path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Write crash-atomically persists record: it writes to a temp file in
// the same directory, then renames over Path. Rename is atomic on the
// same filesystem, so a crash mid-write never leaves a torn checkpoint.
func (s *Store) Write(record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "marshal checkpoint record")
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "create checkpoint temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write checkpoint temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "sync checkpoint temp file")
	}
	if err := tmp.Close(); err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "close checkpoint temp file")
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "rename checkpoint into place")
	}
	return nil
}

// Read returns the latest record, or (Record{}, false) if no
// checkpoint file exists.
func (s *Store) Read() (Record, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "read checkpoint file")
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, false, grizzlyerr.Wrap(grizzlyerr.InvalidFileFormat, err, "unmarshal checkpoint record")
	}
	return record, true, nil
}

// Clear removes the checkpoint file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "remove checkpoint file")
	}
	return nil
}
