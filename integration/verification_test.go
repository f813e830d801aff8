//go:build integration

// Package integration contains integration tests for annofabcli.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestListLabelAgainstFakeServer lists labels from a fake AnnoFab and checks
// that the second run is served by the SQLite response cache.
func TestListLabelAgainstFakeServer(t *testing.T) {
	srv, hits := newFakeAnnofab(t)
	cacheDB := filepath.Join(t.TempDir(), "cache.db")
	env := map[string]string{
		"ANNOFAB_ENDPOINT_URL":     srv.URL,
		"ANNOFAB_CACHE_DB_CONNECT": cacheDB,
	}

	for range 2 {
		out, _, err := runCommand(t, env, "annotation_specs", "list_label", "-p", testProject, "-f", "json")
		require.NoError(t, err)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
		require.Len(t, rows, 2)
		assert.Equal(t, "lbl-car", rows[0]["label_id"])
		assert.Equal(t, "bike", rows[1]["label_name_en"])
	}
	assert.Equal(t, 1, *hits, "second run should hit the response cache")
}

// TestUnknownProjectFails checks that API errors surface as a non-zero exit.
func TestUnknownProjectFails(t *testing.T) {
	srv, _ := newFakeAnnofab(t)
	env := map[string]string{
		"ANNOFAB_ENDPOINT_URL":  srv.URL,
		"ANNOFAB_CACHE_BACKEND": "none",
	}
	_, stderr, err := runCommand(t, env, "annotation_specs", "list_label", "-p", "missing")
	require.Error(t, err)
	assert.Contains(t, stderr, "404")
}

// TestAnnotationCountWithSQLiteHistory counts a local archive and checks the
// run lands in the SQLite history store.
func TestAnnotationCountWithSQLiteHistory(t *testing.T) {
	archive := writeAnnotationZip(t)
	historyDB := filepath.Join(t.TempDir(), "history.db")
	env := map[string]string{
		"ANNOFAB_CACHE_BACKEND":      "none",
		"ANNOFAB_HISTORY_BACKEND":    "sqlite",
		"ANNOFAB_HISTORY_DB_CONNECT": historyDB,
	}

	out, _, err := runCommand(t, env, "statistics", "list_annotation_count", "-p", testProject,
		"--annotation", archive, "-f", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows), out)
	counts := make(map[string]float64)
	for _, r := range rows {
		counts[r["task_id"].(string)+"/"+r["label"].(string)] = r["count"].(float64)
	}
	assert.Equal(t, map[string]float64{"t1/car": 1, "t1/bike": 1, "t2/car": 1}, counts)

	out, _, err = runCommand(t, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "History Backend: sqlite")
	assert.Contains(t, out, "Total Runs: 1")
}
