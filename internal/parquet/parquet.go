// Package parquet exports annofabcli statistics history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/annofabcli/schema"
	"github.com/parquet-go/parquet-go"
)

// StatisticsRun is one statistics command run.
// This struct maps to the annofab_statistics_runs database table.
type StatisticsRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Command is the CLI command that produced the run
	Command string `parquet:"command,snappy,dict"`

	// ProjectID is the AnnoFab project the run looked at
	ProjectID string `parquet:"project_id,snappy,dict"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is empty for runs that never finished
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRows int32 `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded command parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// AnnotationCount is one aggregated annotation count of a run.
// This struct maps to the annofab_annotation_counts database table.
type AnnotationCount struct {
	RunID       int64  `parquet:"run_id,snappy"`
	ProjectID   string `parquet:"project_id,snappy,dict"`
	TaskID      string `parquet:"task_id,snappy"`
	InputDataID string `parquet:"input_data_id,snappy"`
	Label       string `parquet:"label,snappy,dict"`
	Attribute   string `parquet:"attribute,snappy,dict"`
	Value       string `parquet:"attribute_value,snappy,dict"`
	Count       int32  `parquet:"annotation_count,snappy"`
}

// writeRows writes rows to outputPath with a schema inferred from T.
func writeRows[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return file.Close()
}

// WriteStatisticsRunsParquet writes statistics runs to a Parquet file.
func WriteStatisticsRunsParquet(data []StatisticsRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteAnnotationCountsParquet writes annotation counts to a Parquet file.
func WriteAnnotationCountsParquet(data []AnnotationCount, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertStatisticsRunRecords converts store records for Parquet export.
func ConvertStatisticsRunRecords(records []schema.StatisticsRunRecord) []StatisticsRun {
	result := make([]StatisticsRun, len(records))
	for i, r := range records {
		result[i] = StatisticsRun{
			RunID:         r.RunID,
			Command:       r.Command,
			ProjectID:     r.ProjectID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			TotalRows:     r.TotalRows,
			ConfigParams:  r.ConfigParams,
		}
	}
	return result
}

// ConvertAnnotationCountRecords converts store records for Parquet export.
func ConvertAnnotationCountRecords(records []schema.AnnotationCountRecord) []AnnotationCount {
	result := make([]AnnotationCount, len(records))
	for i, r := range records {
		result[i] = AnnotationCount(r)
	}
	return result
}
