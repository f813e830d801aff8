package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/internal/specs"
	"github.com/huangsam/annofabcli/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.AnnofabClient
}

// labelSummary is one label in the list_labels result.
type labelSummary struct {
	LabelID        string `json:"label_id"`
	NameEN         string `json:"label_name_en"`
	NameJA         string `json:"label_name_ja,omitempty"`
	AnnotationType string `json:"annotation_type"`
	Attributes     int    `json:"attribute_count"`
}

// attributeSummary is one attribute in the list_attributes result.
type attributeSummary struct {
	AttributeID string   `json:"additional_data_definition_id"`
	NameEN      string   `json:"name_en"`
	Type        string   `json:"type"`
	Choices     []string `json:"choices,omitempty"`
}

// accessor loads the annotation specs of the requested project.
func (h *toolHandler) accessor(ctx context.Context, request mcp.CallToolRequest) (*specs.Accessor, error) {
	projectID := request.GetString("project_id", h.baseCfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("project_id is required")
	}
	s, err := h.client.GetAnnotationSpecs(ctx, projectID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation specs of %s: %w", projectID, err)
	}
	return specs.NewAccessor(s), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleListLabels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.accessor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]labelSummary, 0, len(a.Labels()))
	for _, l := range a.Labels() {
		out = append(out, labelSummary{
			LabelID:        l.LabelID,
			NameEN:         l.LabelName.English(),
			NameJA:         l.LabelName.Message(schema.LangJA),
			AnnotationType: string(l.AnnotationType),
			Attributes:     len(l.AdditionalDataDefinitions),
		})
	}
	return jsonResult(out), nil
}

func (h *toolHandler) handleListAttributes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.accessor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defs := a.Attributes()
	if name := request.GetString("label", ""); name != "" {
		label, err := a.Label(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid label: %v", err)), nil
		}
		defs = defs[:0:0]
		for _, id := range label.AdditionalDataDefinitions {
			if d, err := a.AttributeByID(id); err == nil {
				defs = append(defs, *d)
			}
		}
	}

	out := make([]attributeSummary, 0, len(defs))
	for _, d := range defs {
		s := attributeSummary{
			AttributeID: d.AdditionalDataDefinitionID,
			NameEN:      d.Name.English(),
			Type:        string(d.Type),
		}
		for _, c := range d.Choices {
			s.Choices = append(s.Choices, c.Name.English())
		}
		out = append(out, s)
	}
	return jsonResult(out), nil
}

func (h *toolHandler) handleConvertAnnotationQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("query", "")
	if text == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	q, err := specs.ParseAnnotationQuery(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := h.accessor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	apiQuery, err := q.ToAPIQuery(a)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conversion failed: %v", err)), nil
	}
	return jsonResult(apiQuery), nil
}

func (h *toolHandler) handleListRestrictions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := h.accessor(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	showType := request.GetBool("show_type", false)
	lines := make([]string, 0, len(a.Specs().Restrictions))
	for _, r := range a.Specs().Restrictions {
		lines = append(lines, specs.FormatRestriction(a, r, showType))
	}
	return jsonResult(lines), nil
}
