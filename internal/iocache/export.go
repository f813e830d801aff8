package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/parquet"
)

// ExportHistory writes the statistics history to <outputFile>.runs.parquet
// and <outputFile>.annotation_counts.parquet.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured; set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no statistics history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve statistics runs: %w", err)
	}
	counts, err := store.GetAllAnnotationCounts()
	if err != nil {
		return fmt.Errorf("failed to retrieve annotation counts: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteStatisticsRunsParquet(parquet.ConvertStatisticsRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write statistics runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d statistics runs to: %s\n", len(runs), runsFile)

	countsFile := outputFile + ".annotation_counts.parquet"
	if err := parquet.WriteAnnotationCountsParquet(parquet.ConvertAnnotationCountRecords(counts), countsFile); err != nil {
		return fmt.Errorf("failed to write annotation counts: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d annotation count rows to: %s\n", len(counts), countsFile)
	return nil
}
