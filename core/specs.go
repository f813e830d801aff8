package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/outwriter"
	"github.com/huangsam/annofabcli/internal/specs"
	"github.com/huangsam/annofabcli/schema"
)

// labelRow is one row of annotation_specs list_label.
type labelRow struct {
	LabelID        string `json:"label_id" yaml:"label_id"`
	NameEN         string `json:"label_name_en" yaml:"label_name_en"`
	NameJA         string `json:"label_name_ja" yaml:"label_name_ja"`
	AnnotationType string `json:"annotation_type" yaml:"annotation_type"`
	Color          string `json:"color" yaml:"color"`
	AttributeCount int    `json:"attribute_count" yaml:"attribute_count"`
}

var labelColumns = []outwriter.Column[labelRow]{
	{Header: "label_id", Value: func(r labelRow) string { return r.LabelID }},
	{Header: "label_name_en", Value: func(r labelRow) string { return r.NameEN }, Wide: true},
	{Header: "label_name_ja", Value: func(r labelRow) string { return r.NameJA }, Wide: true},
	{Header: "annotation_type", Value: func(r labelRow) string { return r.AnnotationType }},
	{Header: "color", Value: func(r labelRow) string { return r.Color }},
	{Header: "attribute_count", Value: func(r labelRow) string { return strconv.Itoa(r.AttributeCount) }, Right: true},
}

// attributeRow is one row of annotation_specs list_attribute.
type attributeRow struct {
	AttributeID string   `json:"additional_data_definition_id" yaml:"additional_data_definition_id"`
	NameEN      string   `json:"name_en" yaml:"name_en"`
	NameJA      string   `json:"name_ja" yaml:"name_ja"`
	Type        string   `json:"type" yaml:"type"`
	ChoiceCount int      `json:"choice_count" yaml:"choice_count"`
	Default     string   `json:"default" yaml:"default"`
	ReadOnly    bool     `json:"read_only" yaml:"read_only"`
	Labels      []string `json:"labels" yaml:"labels"`
}

var attributeColumns = []outwriter.Column[attributeRow]{
	{Header: "attribute_id", Value: func(r attributeRow) string { return r.AttributeID }},
	{Header: "name_en", Value: func(r attributeRow) string { return r.NameEN }, Wide: true},
	{Header: "name_ja", Value: func(r attributeRow) string { return r.NameJA }, Wide: true},
	{Header: "type", Value: func(r attributeRow) string { return r.Type }},
	{Header: "choice_count", Value: func(r attributeRow) string { return strconv.Itoa(r.ChoiceCount) }, Right: true},
	{Header: "default", Value: func(r attributeRow) string { return r.Default }},
	{Header: "read_only", Value: func(r attributeRow) string { return strconv.FormatBool(r.ReadOnly) }},
	{Header: "labels", Value: func(r attributeRow) string { return strings.Join(r.Labels, ",") }, Wide: true},
}

// choiceRow is one row of annotation_specs list_choice.
type choiceRow struct {
	AttributeID   string `json:"additional_data_definition_id" yaml:"additional_data_definition_id"`
	AttributeName string `json:"attribute_name_en" yaml:"attribute_name_en"`
	ChoiceID      string `json:"choice_id" yaml:"choice_id"`
	NameEN        string `json:"choice_name_en" yaml:"choice_name_en"`
	NameJA        string `json:"choice_name_ja" yaml:"choice_name_ja"`
	IsDefault     bool   `json:"is_default" yaml:"is_default"`
}

var choiceColumns = []outwriter.Column[choiceRow]{
	{Header: "attribute_id", Value: func(r choiceRow) string { return r.AttributeID }},
	{Header: "attribute_name_en", Value: func(r choiceRow) string { return r.AttributeName }, Wide: true},
	{Header: "choice_id", Value: func(r choiceRow) string { return r.ChoiceID }},
	{Header: "choice_name_en", Value: func(r choiceRow) string { return r.NameEN }, Wide: true},
	{Header: "choice_name_ja", Value: func(r choiceRow) string { return r.NameJA }, Wide: true},
	{Header: "is_default", Value: func(r choiceRow) string { return strconv.FormatBool(r.IsDefault) }},
}

// historyRow is one row of annotation_specs list_history.
type historyRow struct {
	HistoryID       string `json:"history_id" yaml:"history_id"`
	UpdatedDatetime string `json:"updated_datetime" yaml:"updated_datetime"`
	AccountID       string `json:"account_id" yaml:"account_id"`
	Comment         string `json:"comment" yaml:"comment"`
}

var historyColumns = []outwriter.Column[historyRow]{
	{Header: "history_id", Value: func(r historyRow) string { return r.HistoryID }},
	{Header: "updated_datetime", Value: func(r historyRow) string { return r.UpdatedDatetime }},
	{Header: "account_id", Value: func(r historyRow) string { return r.AccountID }},
	{Header: "comment", Value: func(r historyRow) string { return r.Comment }, Wide: true},
}

var idChangeColumns = []outwriter.Column[specs.IDChange]{
	{Header: "scope", Value: func(c specs.IDChange) string { return c.Scope }},
	{Header: "old_id", Value: func(c specs.IDChange) string { return c.OldID }},
	{Header: "new_id", Value: func(c specs.IDChange) string { return c.NewID }},
}

// ExecuteListLabel prints the labels of the annotation specs.
func ExecuteListLabel(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}
	rows := make([]labelRow, 0, len(a.Labels()))
	for _, l := range a.Labels() {
		rows = append(rows, labelRow{
			LabelID:        l.LabelID,
			NameEN:         l.LabelName.English(),
			NameJA:         l.LabelName.Message(schema.LangJA),
			AnnotationType: string(l.AnnotationType),
			Color:          fmt.Sprintf("#%02x%02x%02x", l.Color.Red, l.Color.Green, l.Color.Blue),
			AttributeCount: len(l.AdditionalDataDefinitions),
		})
	}
	return outwriter.WriteRecords(cfg, rows, labelColumns)
}

// ExecuteListAttribute prints the attributes of the annotation specs, restricted
// to the attributes of --label when given.
func ExecuteListAttribute(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}
	wanted, err := labelAttributeFilter(a, cfg.Labels)
	if err != nil {
		return err
	}

	var rows []attributeRow
	for _, d := range a.Attributes() {
		if wanted != nil {
			if _, ok := wanted[d.AdditionalDataDefinitionID]; !ok {
				continue
			}
		}
		var labels []string
		for _, l := range a.LabelsOfAttribute(d.AdditionalDataDefinitionID) {
			labels = append(labels, a.LabelName(l.LabelID))
		}
		rows = append(rows, attributeRow{
			AttributeID: d.AdditionalDataDefinitionID,
			NameEN:      d.Name.English(),
			NameJA:      d.Name.Message(schema.LangJA),
			Type:        string(d.Type),
			ChoiceCount: len(d.Choices),
			Default:     formatDefault(a, &d),
			ReadOnly:    d.ReadOnly,
			Labels:      labels,
		})
	}
	return outwriter.WriteRecords(cfg, rows, attributeColumns)
}

// ExecuteListChoice prints the choices of choice and select attributes, restricted
// to --attribute when given.
func ExecuteListChoice(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}
	defs := a.Attributes()
	if len(cfg.AttrNames) > 0 {
		defs = nil
		for _, name := range cfg.AttrNames {
			d, err := a.Attribute(name, nil)
			if err != nil {
				return err
			}
			defs = append(defs, *d)
		}
	}

	var rows []choiceRow
	for _, d := range defs {
		for _, c := range d.Choices {
			rows = append(rows, choiceRow{
				AttributeID:   d.AdditionalDataDefinitionID,
				AttributeName: d.Name.English(),
				ChoiceID:      c.ChoiceID,
				NameEN:        c.Name.English(),
				NameJA:        c.Name.Message(schema.LangJA),
				IsDefault:     c.IsDefault,
			})
		}
	}
	return outwriter.WriteRecords(cfg, rows, choiceColumns)
}

// ExecuteListRestriction prints the restrictions as English sentences.
func ExecuteListRestriction(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}
	restrictions, err := specs.FilterRestrictions(a, a.Specs().Restrictions, cfg.AttrNames, cfg.Labels)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		lines = append(lines, specs.FormatRestriction(a, r, cfg.ShowType))
	}
	return outwriter.WriteLines(cfg, lines)
}

// ExecuteListHistory prints the change history of the annotation specs.
func ExecuteListHistory(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	histories, err := client.GetAnnotationSpecsHistories(ctx, cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get annotation specs histories: %w", err)
	}
	rows := make([]historyRow, 0, len(histories))
	for _, h := range histories {
		row := historyRow{HistoryID: h.HistoryID, UpdatedDatetime: h.UpdatedDatetime}
		if h.AccountID != nil {
			row.AccountID = *h.AccountID
		}
		if h.Comment != nil {
			row.Comment = *h.Comment
		}
		rows = append(rows, row)
	}
	return outwriter.WriteRecords(cfg, rows, historyColumns)
}

// ExecuteExportSpecs prints the whole annotation specs document, in the V1
// layout when --format-version 1 is given.
func ExecuteExportSpecs(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	a, err := loadAccessor(ctx, cfg, client)
	if err != nil {
		return err
	}
	if cfg.FormatVersion != 1 {
		return outwriter.WriteValue(cfg, a.Specs())
	}
	v1, err := specs.ToSpecsV1(a.Specs())
	if err != nil {
		return err
	}
	return outwriter.WriteValue(cfg, v1)
}

// ExecuteChangeLabelID replaces label ids with English label names.
func ExecuteChangeLabelID(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	return changeIDs(ctx, cfg, client, "label", cfg.Labels, specs.ReplaceLabelID)
}

// ExecuteChangeAttributeID replaces attribute ids with English attribute names.
func ExecuteChangeAttributeID(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	return changeIDs(ctx, cfg, client, "attribute", cfg.AttrNames, specs.ReplaceAttributeID)
}

// ExecuteChangeChoiceID replaces choice ids with English choice names.
func ExecuteChangeChoiceID(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, _ contract.CacheManager) error {
	return changeIDs(ctx, cfg, client, "choice", cfg.AttrNames, specs.ReplaceChoiceID)
}

// changeIDs applies one of the id replacements to the latest specs and puts
// them back after confirmation.
func changeIDs(ctx context.Context, cfg *contract.Config, client contract.AnnofabClient, kind string, targets []string,
	replace func(*schema.AnnotationSpecs, []string) *specs.ReplaceResult,
) error {
	s, err := client.GetAnnotationSpecs(ctx, cfg.ProjectID, "")
	if err != nil {
		return fmt.Errorf("failed to get annotation specs of %s: %w", cfg.ProjectID, err)
	}

	result := replace(s, targets)
	for _, sk := range result.Skipped {
		contract.LogWarn(fmt.Sprintf("Skipping %s %q (%s)", kind, sk.ID, sk.Name), fmt.Errorf("%s", sk.Reason))
	}
	if len(result.Changes) == 0 {
		contract.LogInfo("No %s id needs to change", kind)
		return nil
	}
	if err := outwriter.WriteRecords(cfg, result.Changes, idChangeColumns); err != nil {
		return err
	}
	if cfg.DryRun {
		contract.LogInfo("Dry run: %d %s ids would change", len(result.Changes), kind)
		return nil
	}
	if !confirm(cfg, fmt.Sprintf("Change %d %s ids of project %s?", len(result.Changes), kind, cfg.ProjectID)) {
		contract.LogInfo("Aborted")
		return nil
	}

	if _, err := client.PutAnnotationSpecs(ctx, cfg.ProjectID, s.ToRequest(cfg.Comment)); err != nil {
		return fmt.Errorf("failed to put annotation specs: %w", err)
	}
	contract.LogInfo("Changed %d %s ids", len(result.Changes), kind)
	return nil
}

// labelAttributeFilter returns the attribute ids used by the given labels, or
// nil when no label is given.
func labelAttributeFilter(a *specs.Accessor, labels []string) (map[string]struct{}, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	wanted := make(map[string]struct{})
	for _, name := range labels {
		l, err := a.Label(name)
		if err != nil {
			return nil, err
		}
		for _, id := range l.AdditionalDataDefinitions {
			wanted[id] = struct{}{}
		}
	}
	return wanted, nil
}

// formatDefault renders the default value of an attribute, naming choices.
func formatDefault(a *specs.Accessor, d *schema.AdditionalDataDefinition) string {
	if d.Default == nil {
		return ""
	}
	if id, ok := d.Default.(string); ok && d.Type.IsChoiceType() {
		if name := a.ChoiceName(d.AdditionalDataDefinitionID, id); name != "" {
			return name
		}
	}
	return fmt.Sprint(d.Default)
}
