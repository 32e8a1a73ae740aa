package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/malbeclabs/grizzly/pkg/delta"
	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
	"github.com/malbeclabs/grizzly/pkg/snapshot"
	"github.com/malbeclabs/grizzly/pkg/table"
)

const (
	snapshotFileName   = "snapshot.griz"
	checkpointFileName = "checkpoint.json"
)

// SaveIncrementalState persists every table under dir: a first call
// writes a full Snapshot, later calls append a Delta against the
// existing snapshot, compacting automatically once the delta chain
// crosses delta.CompactionThreshold (spec §4.9).
func (db *Database) SaveIncrementalState(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "create state directory")
	}

	db.mu.RLock()
	tables := make([]*table.Table, 0, len(db.tables))
	for _, t := range db.tables {
		tables = append(tables, t)
	}
	db.mu.RUnlock()

	snapshotPath := filepath.Join(dir, snapshotFileName)
	ckptPath := filepath.Join(dir, checkpointFileName)

	if _, err := os.Stat(snapshotPath); errors.Is(err, os.ErrNotExist) {
		return snapshot.Save(tables, snapshotPath, ckptPath)
	} else if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "stat existing snapshot")
	}

	deltaPath := filepath.Join(dir, fmt.Sprintf("delta-%s.grzd", uuid.NewString()))
	return delta.SaveIncremental(tables, snapshotPath, deltaPath)
}

// LoadIncrementalState reads dir's snapshot, replays every delta
// recorded in its manifest in order, and registers the resulting
// tables into db, replacing any existing table of the same name.
func (db *Database) LoadIncrementalState(dir string) error {
	snapshotPath := filepath.Join(dir, snapshotFileName)

	tables, err := snapshot.Load(snapshotPath)
	if err != nil {
		return err
	}

	manifest, err := snapshot.LoadManifest(snapshotPath)
	if err != nil {
		return err
	}
	for _, d := range manifest.Deltas {
		if err := delta.ApplyIncremental(tables, snapshotPath, d.Path); err != nil {
			return err
		}
	}

	db.mu.Lock()
	for _, t := range tables {
		db.tables[t.Name] = t
	}
	db.mu.Unlock()
	return nil
}
