package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/outwriter"
	"github.com/huangsam/annofabcli/internal/specs"
	"github.com/huangsam/annofabcli/schema"
)

// SimpleAnnotationFormatVersion is written into dumped SimpleAnnotation files.
const SimpleAnnotationFormatVersion = "1.2.0"

// annotationRow is one row of annotation list.
type annotationRow struct {
	TaskID          string         `json:"task_id" yaml:"task_id"`
	InputDataID     string         `json:"input_data_id" yaml:"input_data_id"`
	AnnotationID    string         `json:"annotation_id" yaml:"annotation_id"`
	Label           string         `json:"label" yaml:"label"`
	Attributes      map[string]any `json:"attributes" yaml:"attributes"`
	UpdatedDatetime string         `json:"updated_datetime" yaml:"updated_datetime"`
}

var annotationColumns = []outwriter.Column[annotationRow]{
	{Header: "task_id", Value: func(r annotationRow) string { return r.TaskID }},
	{Header: "input_data_id", Value: func(r annotationRow) string { return r.InputDataID }},
	{Header: "annotation_id", Value: func(r annotationRow) string { return r.AnnotationID }},
	{Header: "label", Value: func(r annotationRow) string { return r.Label }},
	{Header: "attributes", Value: func(r annotationRow) string { return formatAttributes(r.Attributes) }, Wide: true},
	{Header: "updated_datetime", Value: func(r annotationRow) string { return r.UpdatedDatetime }},
}

// labelCountRow is one row of annotation list_count.
type labelCountRow struct {
	Label     string `json:"label" yaml:"label"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
	Count     int    `json:"count" yaml:"count"`
}

// ExecuteListAnnotation prints the annotations matching --annotation-query,
// within --task-id when given.
func ExecuteListAnnotation(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, list, err := listAnnotations(ctx, cfg, client)
	if err != nil {
		return err
	}
	rows := make([]annotationRow, 0, len(list))
	for _, s := range list {
		rows = append(rows, annotationRow{
			TaskID:          s.TaskID,
			InputDataID:     s.InputDataID,
			AnnotationID:    s.Detail.AnnotationID,
			Label:           labelDisplayName(a, s.Detail.LabelID),
			Attributes:      specs.ToSimpleAttributes(a, s.Detail.AdditionalDataList),
			UpdatedDatetime: s.UpdatedDatetime,
		})
	}
	return outwriter.WriteRecords(cfg, rows, annotationColumns)
}

// ExecuteCountAnnotations prints the number of matching annotations per label,
// or per label attribute value with --type attribute.
func ExecuteCountAnnotations(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, list, err := listAnnotations(ctx, cfg, client)
	if err != nil {
		return err
	}
	c := newCounter(cfg.CountType)
	for _, s := range list {
		c.add("", "", labelDisplayName(a, s.Detail.LabelID), specs.ToSimpleAttributes(a, s.Detail.AdditionalDataList))
	}

	var rows []labelCountRow
	for _, r := range c.rows() {
		rows = append(rows, labelCountRow{Label: r.Label, Attribute: r.Attribute, Value: r.Value, Count: r.Count})
	}
	columns := []outwriter.Column[labelCountRow]{
		{Header: "label", Value: func(r labelCountRow) string { return r.Label }},
	}
	if cfg.CountType == schema.CountByAttribute {
		columns = append(columns,
			outwriter.Column[labelCountRow]{Header: "attribute", Value: func(r labelCountRow) string { return r.Attribute }},
			outwriter.Column[labelCountRow]{Header: "value", Value: func(r labelCountRow) string { return r.Value }, Wide: true},
		)
	}
	columns = append(columns, outwriter.Column[labelCountRow]{
		Header: "count", Value: func(r labelCountRow) string { return strconv.Itoa(r.Count) }, Right: true,
	})
	return outwriter.WriteRecords(cfg, rows, columns)
}

// listAnnotations runs the annotation list API once, or once per --task-id.
func listAnnotations(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient) (*specs.Accessor, []schema.SingleAnnotation, error) {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return nil, nil, err
	}
	query, err := annotationQuery(cfg, a)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.TaskIDs) == 0 {
		list, err := client.GetAllAnnotationList(ctx, cfg.ProjectID, query)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list annotations: %w", err)
		}
		return a, list, nil
	}

	var all []schema.SingleAnnotation
	for _, taskID := range cfg.TaskIDs {
		q := query
		q.TaskID = taskID
		q.ExactMatchTaskID = true
		list, err := client.GetAllAnnotationList(ctx, cfg.ProjectID, q)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to list annotations of task %s", taskID), err)
			continue
		}
		all = append(all, list...)
	}
	return a, all, nil
}

// ExecuteDeleteAnnotation removes the annotations matching --annotation-query
// from the target tasks. Protected annotations are kept unless --force.
func ExecuteDeleteAnnotation(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}
	query, err := annotationQuery(cfg, a)
	if err != nil {
		return err
	}
	taskIDs, err := targetTaskIDs(ctx, cfg, client)
	if err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		contract.LogInfo("No task to process")
		return nil
	}
	if !cfg.DryRun && !confirm(cfg, fmt.Sprintf("Delete annotations matching %s in %d tasks?", specs.FromAPIQuery(a, query), len(taskIDs))) {
		contract.LogInfo("Aborted")
		return nil
	}

	var deleted atomic.Int64
	failed := runPool(ctx, cfg, "Deleting annotations", taskIDs, func(id string) string { return id }, func(ctx context.Context, taskID string) error {
		n, err := deleteTaskAnnotations(ctx, cfg, client, taskID, query)
		deleted.Add(int64(n))
		return err
	})
	contract.LogInfo("Deleted %d annotations in %d tasks (%d failed)", deleted.Load(), len(taskIDs)-failed, failed)
	return nil
}

// deleteTaskAnnotations deletes the matching details of every input data of a task.
func deleteTaskAnnotations(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, taskID string, query schema.AnnotationQueryForAPI) (int, error) {
	task, err := client.GetTask(ctx, cfg.ProjectID, taskID)
	if err != nil {
		return 0, err
	}
	if !isEditable(cfg, task) {
		return 0, fmt.Errorf("task status is %s", task.Status)
	}

	deleted := 0
	for _, inputDataID := range task.InputDataIDList {
		ann, err := client.GetEditorAnnotation(ctx, cfg.ProjectID, taskID, inputDataID)
		if err != nil {
			return deleted, err
		}
		kept := slices.DeleteFunc(slices.Clone(ann.Details), func(d schema.AnnotationDetail) bool {
			return query.Match(d) && (!d.IsProtected || cfg.Force)
		})
		n := len(ann.Details) - len(kept)
		if n == 0 {
			continue
		}
		if !cfg.DryRun {
			ann.Details = kept
			if err := client.PutAnnotation(ctx, cfg.ProjectID, taskID, inputDataID, *ann); err != nil {
				return deleted, err
			}
		}
		deleted += n
	}
	return deleted, nil
}

// ExecuteChangeAttributes sets the --attributes values on every annotation
// matching --annotation-query.
func ExecuteChangeAttributes(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	if cfg.Attributes == "" {
		return errors.New("--attributes is required")
	}
	a, list, err := listAnnotations(ctx, cfg, client)
	if err != nil {
		return err
	}
	query, err := annotationQuery(cfg, a)
	if err != nil {
		return err
	}
	var label *schema.Label
	if query.LabelID != "" {
		if label, err = a.LabelByID(query.LabelID); err != nil {
			return err
		}
	}
	attrs, err := decodeAttributes(cfg.Attributes)
	if err != nil {
		return err
	}
	values, err := specs.ConvertSimpleAttributes(a, label, attrs, true)
	if err != nil {
		return err
	}

	items := changeAttributeItems(ctx, cfg, client, list, values)
	if len(items) == 0 {
		contract.LogInfo("No annotation to change")
		return nil
	}
	if cfg.DryRun {
		contract.LogInfo("Dry run: %d annotations would change", len(items))
		return nil
	}
	if !confirm(cfg, fmt.Sprintf("Change attributes of %d annotations?", len(items))) {
		contract.LogInfo("Aborted")
		return nil
	}
	if err := client.BatchUpdateAnnotations(ctx, cfg.ProjectID, items); err != nil {
		return err
	}
	contract.LogInfo("Changed attributes of %d annotations", len(items))
	return nil
}

// changeAttributeItems builds the batch put items for annotations of editable tasks.
func changeAttributeItems(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, list []schema.SingleAnnotation, values []schema.AdditionalData) []schema.BatchAnnotationRequestItem {
	editable := make(map[string]bool)
	var items []schema.BatchAnnotationRequestItem
	for _, s := range list {
		ok, seen := editable[s.TaskID]
		if !seen {
			task, err := client.GetTask(ctx, cfg.ProjectID, s.TaskID)
			switch {
			case err != nil:
				contract.LogWarn(fmt.Sprintf("Skipping task %s", s.TaskID), err)
			case !isEditable(cfg, task):
				contract.LogWarn(fmt.Sprintf("Skipping task %s", s.TaskID), fmt.Errorf("task status is %s", task.Status))
			default:
				ok = true
			}
			editable[s.TaskID] = ok
		}
		if !ok {
			continue
		}
		items = append(items, schema.BatchAnnotationRequestItem{
			ProjectID:          s.ProjectID,
			TaskID:             s.TaskID,
			InputDataID:        s.InputDataID,
			UpdatedDatetime:    s.UpdatedDatetime,
			AnnotationID:       s.Detail.AnnotationID,
			LabelID:            s.Detail.LabelID,
			AdditionalDataList: mergeAdditionalData(s.Detail.AdditionalDataList, values),
			Type:               schema.BatchPut,
		})
	}
	return items
}

// mergeAdditionalData overwrites the values of current with those of changes.
func mergeAdditionalData(current, changes []schema.AdditionalData) []schema.AdditionalData {
	byID := make(map[string]schema.AdditionalData, len(current)+len(changes))
	order := make([]string, 0, len(current)+len(changes))
	for _, list := range [][]schema.AdditionalData{current, changes} {
		for _, d := range list {
			if _, ok := byID[d.AdditionalDataDefinitionID]; !ok {
				order = append(order, d.AdditionalDataDefinitionID)
			}
			byID[d.AdditionalDataDefinitionID] = d
		}
	}
	out := make([]schema.AdditionalData, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

// ExecuteImportAnnotation puts SimpleAnnotation files from a directory or zip.
func ExecuteImportAnnotation(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	if cfg.InputPath == "" {
		return errors.New("--input is required")
	}
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}

	byTask := make(map[string][]schema.SimpleAnnotation)
	err = readSimpleAnnotations(cfg.InputPath, func(f simpleAnnotationFile) error {
		taskID := f.Annotation.TaskID
		if len(cfg.TaskIDs) > 0 && !slices.Contains(cfg.TaskIDs, taskID) {
			return nil
		}
		byTask[taskID] = append(byTask[taskID], f.Annotation)
		return nil
	})
	if err != nil {
		return err
	}
	taskIDs := slices.Sorted(maps.Keys(byTask))
	if len(taskIDs) == 0 {
		contract.LogInfo("No annotation file found in %s", cfg.InputPath)
		return nil
	}

	var imported atomic.Int64
	failed := runPool(ctx, cfg, "Importing annotations", taskIDs, func(id string) string { return id }, func(ctx context.Context, taskID string) error {
		n, err := importTaskAnnotations(ctx, cfg, client, a, taskID, byTask[taskID])
		imported.Add(int64(n))
		return err
	})
	contract.LogInfo("Imported annotations of %d input data in %d tasks (%d failed)", imported.Load(), len(taskIDs)-failed, failed)
	return nil
}

// importTaskAnnotations puts the annotations of one task and returns the
// number of input data written.
func importTaskAnnotations(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, a *specs.Accessor, taskID string, files []schema.SimpleAnnotation) (int, error) {
	task, err := client.GetTask(ctx, cfg.ProjectID, taskID)
	if err != nil {
		return 0, err
	}
	if !isEditable(cfg, task) {
		return 0, fmt.Errorf("task status is %s", task.Status)
	}

	written := 0
	for _, sa := range files {
		if !slices.Contains(task.InputDataIDList, sa.InputDataID) {
			contract.LogWarn(fmt.Sprintf("Skipping %s/%s", taskID, sa.InputDataID), errors.New("input data is not part of the task"))
			continue
		}
		existing, err := client.GetEditorAnnotation(ctx, cfg.ProjectID, taskID, sa.InputDataID)
		if err != nil {
			return written, err
		}
		if len(existing.Details) > 0 && !cfg.Overwrite {
			contract.LogInfo("Skipping %s/%s: annotations exist, use --overwrite to replace them", taskID, sa.InputDataID)
			continue
		}
		details, err := toAnnotationDetails(cfg, a, sa.Details)
		if err != nil {
			return written, fmt.Errorf("input data %s: %w", sa.InputDataID, err)
		}
		if len(details) == 0 {
			continue
		}
		if !cfg.DryRun {
			ann := schema.Annotation{
				ProjectID:       cfg.ProjectID,
				TaskID:          taskID,
				InputDataID:     sa.InputDataID,
				Details:         details,
				UpdatedDatetime: existing.UpdatedDatetime,
			}
			if err := client.PutAnnotation(ctx, cfg.ProjectID, taskID, sa.InputDataID, ann); err != nil {
				return written, err
			}
		}
		written++
	}
	return written, nil
}

// toAnnotationDetails converts SimpleAnnotation details, addressed by English
// names, into API details. Details whose data lives in outer files are skipped.
func toAnnotationDetails(cfg *contract.Config, a *specs.Accessor, in []schema.SimpleAnnotationDetail) ([]schema.AnnotationDetail, error) {
	out := make([]schema.AnnotationDetail, 0, len(in))
	for _, d := range in {
		switch d.DataType() {
		case "Segmentation", "SegmentationV2":
			contract.LogWarn(fmt.Sprintf("Skipping annotation %s", d.AnnotationID), errors.New("segmentation data cannot be imported"))
			continue
		}
		label, err := a.Label(d.Label)
		if err != nil {
			if cfg.Strict {
				return nil, err
			}
			contract.LogWarn("Skipping annotation", err)
			continue
		}
		values, err := specs.ConvertSimpleAttributes(a, label, d.Attributes, cfg.Strict)
		if err != nil {
			return nil, err
		}
		id := d.AnnotationID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, schema.AnnotationDetail{
			AnnotationID:       id,
			LabelID:            label.LabelID,
			DataHoldingType:    schema.InnerHolding,
			Data:               d.Data,
			AdditionalDataList: values,
		})
	}
	return out, nil
}

// ExecuteDumpAnnotation writes the annotations of each input data to
// {output-dir}/{task_id}/{input_data_id}.json, as SimpleAnnotation with --simple.
func ExecuteDumpAnnotation(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	if cfg.OutputDir == "" {
		return errors.New("--output-dir is required")
	}
	var a *specs.Accessor
	if cfg.Simple {
		var err error
		if a, err = loadAccessor(ctx, cfg, client); err != nil {
			return err
		}
	}
	taskIDs, err := targetTaskIDs(ctx, cfg, client)
	if err != nil {
		return err
	}

	var written atomic.Int64
	failed := runPool(ctx, cfg, "Dumping annotations", taskIDs, func(id string) string { return id }, func(ctx context.Context, taskID string) error {
		n, err := dumpTaskAnnotations(ctx, cfg, client, a, taskID)
		written.Add(int64(n))
		return err
	})
	contract.LogInfo("Wrote %d files to %s (%d tasks failed)", written.Load(), cfg.OutputDir, failed)
	return nil
}

func dumpTaskAnnotations(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, a *specs.Accessor, taskID string) (int, error) {
	task, err := client.GetTask(ctx, cfg.ProjectID, taskID)
	if err != nil {
		return 0, err
	}
	written := 0
	for _, inputDataID := range task.InputDataIDList {
		ann, err := client.GetEditorAnnotation(ctx, cfg.ProjectID, taskID, inputDataID)
		if err != nil {
			return written, err
		}
		var doc any = ann
		if a != nil {
			doc = toSimpleAnnotation(a, task, ann)
		}
		dest := filepath.Join(cfg.OutputDir, taskID, inputDataID+".json")
		if err := outwriter.WriteJSONFile(dest, doc); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// toSimpleAnnotation renders editor annotations with English names.
func toSimpleAnnotation(a *specs.Accessor, task *schema.Task, ann *schema.Annotation) schema.SimpleAnnotation {
	out := schema.SimpleAnnotation{
		AnnotationFormatVersion: SimpleAnnotationFormatVersion,
		ProjectID:               task.ProjectID,
		TaskID:                  task.TaskID,
		TaskPhase:               task.Phase,
		TaskPhaseStage:          task.PhaseStage,
		TaskStatus:              task.Status,
		InputDataID:             ann.InputDataID,
		Details:                 make([]schema.SimpleAnnotationDetail, 0, len(ann.Details)),
		UpdatedDatetime:         ann.UpdatedDatetime,
	}
	for _, d := range ann.Details {
		out.Details = append(out.Details, schema.SimpleAnnotationDetail{
			Label:        labelDisplayName(a, d.LabelID),
			AnnotationID: d.AnnotationID,
			Data:         d.Data,
			Attributes:   specs.ToSimpleAttributes(a, d.AdditionalDataList),
		})
	}
	return out
}

// decodeAttributes parses the --attributes JSON object keeping number literals.
func decodeAttributes(text string) (map[string]any, error) {
	var attrs map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("invalid --attributes: %w", err)
	}
	if len(attrs) == 0 {
		return nil, errors.New("--attributes must name at least one attribute")
	}
	return attrs, nil
}

// labelDisplayName returns the English label name, or the id when unknown.
func labelDisplayName(a *specs.Accessor, labelID string) string {
	if name := a.LabelName(labelID); name != "" {
		return name
	}
	return labelID
}

// formatAttributes renders attributes as compact JSON with sorted keys.
func formatAttributes(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Sprint(attrs)
	}
	return string(b)
}
