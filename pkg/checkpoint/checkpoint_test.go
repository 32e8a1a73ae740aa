package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrizzly_Checkpoint_ReadMissingReturnsNoRecord(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "checkpoint.json"))
	_, ok, err := s.Read()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGrizzly_Checkpoint_WriteThenReadRoundtrips(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "checkpoint.json"))
	record := Record{Task: "save", Step: "writeTable", Table: "events", Status: StatusInProgress}
	require.NoError(t, s.Write(record))

	got, ok, err := s.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record, got)
}

func TestGrizzly_Checkpoint_WriteOverwritesPreviousRecord(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, s.Write(Record{Task: "save", Step: "writeTable", Table: "a", Status: StatusInProgress}))
	require.NoError(t, s.Write(Record{Task: "save", Step: "writeTable", Table: "a", Status: StatusCompleted}))

	got, ok, err := s.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StatusCompleted, got.Status)
}

func TestGrizzly_Checkpoint_ClearRemovesFile(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, s.Write(Record{Task: "save", Step: "writeTable", Status: StatusInProgress}))
	require.NoError(t, s.Clear())

	_, ok, err := s.Read()
	require.NoError(t, err)
	require.False(t, ok)
}
