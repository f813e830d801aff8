package iocache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("list_annotation_count", "prj", time.Now(), nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordAnnotationCount(1, "prj", schema.AnnotationCount{}))
	assert.NoError(t, store.EndRun(1, time.Now(), 10))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_SQLite(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun("list_annotation_count", "prj1", start, map[string]any{"group-by": "task_id"})
	require.NoError(t, err)
	assert.Positive(t, runID)

	counts := []schema.AnnotationCount{
		{TaskID: "t1", Label: "car", Count: 3},
		{TaskID: "t1", Label: "car", Attribute: "color", Value: "red", Count: 2},
	}
	for _, c := range counts {
		require.NoError(t, store.RecordAnnotationCount(runID, "prj1", c))
	}
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), len(counts)))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "list_annotation_count", run.Command)
	assert.Equal(t, "prj1", run.ProjectID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalRows)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"group-by":"task_id"}`, *run.ConfigParams)

	records, err := store.GetAllAnnotationCounts()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.AnnotationCountRecord{
		RunID: runID, ProjectID: "prj1", TaskID: "t1", Label: "car", Attribute: "color", Value: "red", Count: 2,
	}, records[1])

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 2, status.TotalCountRows)
	assert.Equal(t, int64(1), status.TableSizes[statisticsRunsTable])

	var buf bytes.Buffer
	PrintHistoryStatus(&buf, status)
	assert.Contains(t, buf.String(), "Total Runs: 1")
	assert.Contains(t, buf.String(), "annofab_annotation_counts: 2 rows")
}

func TestHistoryStore_EndUnknownRun(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(42, time.Now(), 0))
}
