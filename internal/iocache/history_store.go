package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
)

// Table names for statistics history.
const (
	statisticsRunsTable   = "annofab_statistics_runs"
	annotationCountsTable = "annofab_annotation_counts"
)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{statisticsRunsTable, getCreateRunsQuery(backend)},
		{annotationCountsTable, getCreateCountsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for annofab_statistics_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(statisticsRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				command VARCHAR(100) NOT NULL,
				project_id VARCHAR(100) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				command TEXT NOT NULL,
				project_id TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				command TEXT NOT NULL,
				project_id TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_rows INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateCountsQuery returns the CREATE TABLE query for annofab_annotation_counts.
func getCreateCountsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(annotationCountsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				count_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id BIGINT NOT NULL,
				project_id VARCHAR(100) NOT NULL,
				task_id VARCHAR(255) NOT NULL,
				input_data_id VARCHAR(255) NOT NULL,
				label VARCHAR(255) NOT NULL,
				attribute VARCHAR(255) NOT NULL,
				attribute_value VARCHAR(1024) NOT NULL,
				annotation_count INT NOT NULL
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				count_id BIGSERIAL PRIMARY KEY,
				run_id BIGINT NOT NULL,
				project_id TEXT NOT NULL,
				task_id TEXT NOT NULL,
				input_data_id TEXT NOT NULL,
				label TEXT NOT NULL,
				attribute TEXT NOT NULL,
				attribute_value TEXT NOT NULL,
				annotation_count INT NOT NULL
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				count_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id INTEGER NOT NULL,
				project_id TEXT NOT NULL,
				task_id TEXT NOT NULL,
				input_data_id TEXT NOT NULL,
				label TEXT NOT NULL,
				attribute TEXT NOT NULL,
				attribute_value TEXT NOT NULL,
				annotation_count INTEGER NOT NULL
			);
		`, quoted)
	}
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun creates a new statistics run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(command, projectID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(statisticsRunsTable, hs.backend)
	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (command, project_id, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quoted)
		err = hs.db.QueryRow(query, command, projectID, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (command, project_id, start_time, config_params) VALUES (?, ?, ?, ?)`, quoted)
		var result sql.Result
		result, err = hs.db.Exec(query, command, projectID, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert statistics run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	if hs.disabled() {
		return nil
	}

	quoted := quoteTableName(statisticsRunsTable, hs.backend)
	start := timeScanner{backend: hs.backend}
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quoted), hs.backend)
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	durationMs := endTime.Sub(*startTime).Milliseconds()
	update := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rows = ? WHERE run_id = ?`, quoted), hs.backend)
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalRows, runID); err != nil {
		return fmt.Errorf("failed to update statistics run: %w", err)
	}
	return nil
}

// RecordAnnotationCount stores one aggregated annotation count.
func (hs *HistoryStoreImpl) RecordAnnotationCount(runID int64, projectID string, count schema.AnnotationCount) error {
	if hs.disabled() {
		return nil
	}

	query := rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, project_id, task_id, input_data_id, label, attribute, attribute_value, annotation_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(annotationCountsTable, hs.backend)), hs.backend)
	_, err := hs.db.Exec(query, runID, projectID, count.TaskID, count.InputDataID,
		count.Label, count.Attribute, count.Value, count.Count)
	if err != nil {
		return fmt.Errorf("failed to insert annotation count: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	runs := quoteTableName(statisticsRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: hs.backend}
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: hs.backend}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	for _, table := range []string{statisticsRunsTable, annotationCountsTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalCountRows = int(status.TableSizes[annotationCountsTable])

	return status, nil
}

// GetAllRuns retrieves all statistics runs from the store.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.StatisticsRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, command, project_id, start_time, end_time, run_duration_ms, total_rows, config_params
		FROM %s ORDER BY run_id`, quoteTableName(statisticsRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StatisticsRunRecord
	for rows.Next() {
		var record schema.StatisticsRunRecord
		start := timeScanner{backend: hs.backend}
		end := timeScanner{backend: hs.backend}
		if err := rows.Scan(&record.RunID, &record.Command, &record.ProjectID, start.dest(), end.dest(),
			&record.RunDurationMs, &record.TotalRows, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan statistics run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics runs: %w", err)
	}
	return results, nil
}

// GetAllAnnotationCounts retrieves all annotation counts from the store.
func (hs *HistoryStoreImpl) GetAllAnnotationCounts() ([]schema.AnnotationCountRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, project_id, task_id, input_data_id, label, attribute, attribute_value, annotation_count
		FROM %s ORDER BY run_id, count_id`, quoteTableName(annotationCountsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotation counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnnotationCountRecord
	for rows.Next() {
		var r schema.AnnotationCountRecord
		if err := rows.Scan(&r.RunID, &r.ProjectID, &r.TaskID, &r.InputDataID, &r.Label, &r.Attribute, &r.Value, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan annotation count: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annotation counts: %w", err)
	}
	return results, nil
}
