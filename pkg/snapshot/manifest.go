package snapshot

import (
	"encoding/json"
	"os"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
)

// SnapshotType distinguishes a full snapshot from one with an
// incremental delta chain layered on top.
type SnapshotType string

const (
	SnapshotTypeFull        SnapshotType = "full"
	SnapshotTypeIncremental SnapshotType = "incremental"
)

// DeltaRef is one entry in the manifest's delta chain.
type DeltaRef struct {
	Path      string `json:"delta_path"`
	Timestamp int64  `json:"timestamp"`
}

// Manifest is the UTF-8 JSON document at {snapshot}.lakehouse/manifest.json.
// It is the linearization point: readers either observe the previous
// manifest or the new one, never a torn state, because it is written
// last in both Save and the delta/compaction flows.
type Manifest struct {
	SnapshotType SnapshotType     `json:"snapshot_type"`
	TableCounts  map[string]int   `json:"table_counts"`
	Deltas       []DeltaRef       `json:"deltas"`
}

// ManifestPath returns the manifest path for a given snapshot path.
func ManifestPath(snapshotPath string) string {
	return lakehouseDir(snapshotPath) + "/manifest.json"
}

// WriteManifest crash-atomically writes m as the manifest for
// snapshotPath (temp file + rename), the linearization point readers
// observe.
func WriteManifest(snapshotPath string, m Manifest) error {
	return writeManifest(snapshotPath, m)
}

func writeManifest(snapshotPath string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "marshal manifest")
	}
	path := ManifestPath(snapshotPath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write manifest temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "rename manifest into place")
	}
	return nil
}

// LoadManifest reads the manifest for snapshotPath.
func LoadManifest(snapshotPath string) (Manifest, error) {
	data, err := os.ReadFile(ManifestPath(snapshotPath))
	if err != nil {
		return Manifest{}, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "read manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, grizzlyerr.Wrap(grizzlyerr.InvalidFileFormat, err, "unmarshal manifest")
	}
	return m, nil
}
