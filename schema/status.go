package schema

import "time"

// CacheStatus represents the status of the response cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the statistics history store.
type HistoryStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      int64            `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalCountRows int              `json:"total_count_rows"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// StatisticsRunRecord represents a row from the annofab_statistics_runs table.
type StatisticsRunRecord struct {
	RunID         int64
	Command       string
	ProjectID     string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRows     int32
	ConfigParams  *string
}

// AnnotationCountRecord represents a row from the annofab_annotation_counts table.
type AnnotationCountRecord struct {
	RunID       int64
	ProjectID   string
	TaskID      string
	InputDataID string
	Label       string
	Attribute   string
	Value       string
	Count       int32
}
