package snapshot

import (
	"encoding/json"
	"os"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
)

func lakehouseDir(snapshotPath string) string {
	return snapshotPath + ".lakehouse"
}

// writeLakehouseDir creates {path}.lakehouse/{metadata,data,unstructured}
// and a per-table JSON metadata file summarizing codec choice, sizes,
// and compression ratios (spec §4.8 step 5).
func writeLakehouseDir(snapshotPath string, tableMetas []TableMetadata) error {
	dir := lakehouseDir(snapshotPath)
	for _, sub := range []string{"metadata", "data", "unstructured"} {
		if err := os.MkdirAll(dir+"/"+sub, 0o755); err != nil {
			return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "create lakehouse directory")
		}
	}
	for _, meta := range tableMetas {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "marshal table metadata")
		}
		if err := os.WriteFile(dir+"/metadata/"+meta.Name+".json", data, 0o644); err != nil {
			return grizzlyerr.Wrap(grizzlyerr.InternalError, err, "write table metadata")
		}
	}
	return nil
}

// ReadTableMetadata loads the per-table JSON metadata written alongside snapshotPath.
func ReadTableMetadata(snapshotPath, tableName string) (TableMetadata, error) {
	data, err := os.ReadFile(lakehouseDir(snapshotPath) + "/metadata/" + tableName + ".json")
	if err != nil {
		return TableMetadata{}, grizzlyerr.Wrap(grizzlyerr.InternalError, err, "read table metadata")
	}
	var meta TableMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return TableMetadata{}, grizzlyerr.Wrap(grizzlyerr.InvalidFileFormat, err, "unmarshal table metadata")
	}
	return meta, nil
}
