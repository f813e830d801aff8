package core

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/outwriter"
	"github.com/huangsam/annofabcli/schema"
)

// Command names recorded in the history store.
const (
	annotationCountCommand = "statistics list_annotation_count"
)

// phaseOrder sorts phases in workflow order.
var phaseOrder = map[schema.TaskPhase]int{
	schema.AnnotationPhase: 0,
	schema.InspectionPhase: 1,
	schema.AcceptancePhase: 2,
}

// annotationCountColumns returns the columns for the grouping and count type.
func annotationCountColumns(groupBy schema.CountGroupBy, countType schema.CountType) []outwriter.Column[schema.AnnotationCount] {
	columns := []outwriter.Column[schema.AnnotationCount]{
		{Header: "task_id", Value: func(r schema.AnnotationCount) string { return r.TaskID }},
	}
	if groupBy == schema.GroupByInputData {
		columns = append(columns, outwriter.Column[schema.AnnotationCount]{
			Header: "input_data_id", Value: func(r schema.AnnotationCount) string { return r.InputDataID },
		})
	}
	columns = append(columns, outwriter.Column[schema.AnnotationCount]{
		Header: "label", Value: func(r schema.AnnotationCount) string { return r.Label },
	})
	if countType == schema.CountByAttribute {
		columns = append(columns,
			outwriter.Column[schema.AnnotationCount]{Header: "attribute", Value: func(r schema.AnnotationCount) string { return r.Attribute }},
			outwriter.Column[schema.AnnotationCount]{Header: "value", Value: func(r schema.AnnotationCount) string { return r.Value }, Wide: true},
		)
	}
	return append(columns, outwriter.Column[schema.AnnotationCount]{
		Header: "count", Value: func(r schema.AnnotationCount) string { return strconv.Itoa(r.Count) }, Right: true,
	})
}

var taskCountColumns = []outwriter.Column[schema.TaskCountRow]{
	{Header: "phase", Value: func(r schema.TaskCountRow) string { return string(r.Phase) }},
	{Header: "phase_stage", Value: func(r schema.TaskCountRow) string { return strconv.Itoa(r.PhaseStage) }, Right: true},
	{
		Header:  "status",
		Value:   func(r schema.TaskCountRow) string { return string(r.Status) },
		Display: func(r schema.TaskCountRow) string { return contract.GetStatusLabel(r.Status) },
	},
	{Header: "step", Value: func(r schema.TaskCountRow) string { return string(r.Step) }},
	{Header: "count", Value: func(r schema.TaskCountRow) string { return strconv.Itoa(r.Count) }, Right: true},
}

// ExecuteStatisticsAnnotationCount counts the annotations of the SimpleAnnotation
// archive per task (or input data) and label (or attribute value). The archive
// is downloaded unless --input names a local zip or directory. Counts are
// recorded in the history store when one is configured.
func ExecuteStatisticsAnnotationCount(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, mgr contract.CacheManager) error {
	source := cfg.InputPath
	if source == "" {
		dir, err := os.MkdirTemp("", "annofabcli-")
		if err != nil {
			return err
		}
		defer func() { _ = os.RemoveAll(dir) }()

		source = filepath.Join(dir, "simple-annotation.zip")
		if err := downloadSimpleAnnotation(ctx, cfg, client, source); err != nil {
			return err
		}
	}

	c := newCounter(cfg.CountType)
	err := readSimpleAnnotations(source, func(f simpleAnnotationFile) error {
		sa := f.Annotation
		if len(cfg.TaskIDs) > 0 && !slices.Contains(cfg.TaskIDs, sa.TaskID) {
			return nil
		}
		inputDataID := ""
		if cfg.GroupBy == schema.GroupByInputData {
			inputDataID = sa.InputDataID
		}
		for _, d := range sa.Details {
			c.add(sa.TaskID, inputDataID, d.Label, d.Attributes)
		}
		return nil
	})
	if err != nil {
		return err
	}
	rows := c.rows()

	recordAnnotationCounts(ctx, cfg, mgr, rows)
	return outwriter.WriteRecords(cfg, rows, annotationCountColumns(cfg.GroupBy, cfg.CountType))
}

// downloadSimpleAnnotation saves the project's SimpleAnnotation zip to dest.
func downloadSimpleAnnotation(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, dest string) error {
	url, err := client.GetSimpleAnnotationArchiveURL(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get the annotation archive url: %w", err)
	}
	contract.LogInfo("Downloading the annotation archive of %s", cfg.ProjectID)
	if err := client.DownloadFile(ctx, url, dest); err != nil {
		return fmt.Errorf("failed to download the annotation archive: %w", err)
	}
	return nil
}

// recordAnnotationCounts stores a statistics run. Failures are warnings.
func recordAnnotationCounts(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, rows []schema.AnnotationCount) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	params := map[string]any{
		"group_by":   string(cfg.GroupBy),
		"type":       string(cfg.CountType),
		"input":      cfg.InputPath,
		"task_count": len(cfg.TaskIDs),
	}
	runID, err := store.BeginRun(annotationCountCommand, cfg.ProjectID, time.Now(), params)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	ctx = withRunID(ctx, runID)

	for _, r := range rows {
		recordAnnotationCount(ctx, cfg, store, r)
	}
	if err := store.EndRun(runID, time.Now(), len(rows)); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

func recordAnnotationCount(ctx context.Context, cfg *contract.Config, store contract.HistoryStore, r schema.AnnotationCount) {
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	if err := store.RecordAnnotationCount(runID, cfg.ProjectID, r); err != nil {
		contract.LogWarn(fmt.Sprintf("History tracking failed for task %s label %s", r.TaskID, r.Label), err)
	}
}

// ExecuteSummarizeTaskCount prints the number of tasks per phase, status and step.
func ExecuteSummarizeTaskCount(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	tasks, err := client.GetAllTasks(ctx, cfg.ProjectID, schema.TaskQueryForAPI{})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	return outwriter.WriteRecords(cfg, summarizeTasks(tasks), taskCountColumns)
}

// summarizeTasks groups tasks by phase, phase stage, status and step.
func summarizeTasks(tasks []schema.Task) []schema.TaskCountRow {
	counts := make(map[schema.TaskCountRow]int)
	for _, t := range tasks {
		key := schema.TaskCountRow{Phase: t.Phase, PhaseStage: t.PhaseStage, Status: t.Status, Step: schema.StepOf(t)}
		counts[key]++
	}
	rows := make([]schema.TaskCountRow, 0, len(counts))
	for k, n := range counts {
		k.Count = n
		rows = append(rows, k)
	}
	slices.SortFunc(rows, func(a, b schema.TaskCountRow) int {
		return cmp.Or(
			cmp.Compare(phaseOrder[a.Phase], phaseOrder[b.Phase]),
			cmp.Compare(a.PhaseStage, b.PhaseStage),
			cmp.Compare(a.Status, b.Status),
			cmp.Compare(slices.Index(schema.TaskSteps, a.Step), slices.Index(schema.TaskSteps, b.Step)),
		)
	})
	return rows
}
