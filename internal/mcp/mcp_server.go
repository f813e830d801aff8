// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the annofabcli MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.AnnofabClient) *server.MCPServer {
	s := server.NewMCPServer(
		"AnnoFab Annotation Specs Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
	}

	// --- 1. Tool: list_labels ---
	s.AddTool(mcp.NewTool("list_labels",
		mcp.WithDescription("List the labels of an AnnoFab project's annotation specs with their ids, names and annotation types."),
		mcp.WithString("project_id", mcp.Description("AnnoFab project id (defaults to the configured project).")),
	), h.handleListLabels)

	// --- 2. Tool: list_attributes ---
	s.AddTool(mcp.NewTool("list_attributes",
		mcp.WithDescription("List the attributes of the annotation specs, optionally only those of one label."),
		mcp.WithString("project_id", mcp.Description("AnnoFab project id (defaults to the configured project).")),
		mcp.WithString("label", mcp.Description("English label name or label id.")),
	), h.handleListAttributes)

	// --- 3. Tool: convert_annotation_query ---
	s.AddTool(mcp.NewTool("convert_annotation_query",
		mcp.WithDescription("Convert an annotation query written with English names into the id-based query of the AnnoFab API."),
		mcp.WithString("project_id", mcp.Description("AnnoFab project id (defaults to the configured project).")),
		mcp.WithString("query", mcp.Description(`Query JSON, e.g. {"label": "car", "attributes": {"occluded": true}}.`), mcp.Required()),
	), h.handleConvertAnnotationQuery)

	// --- 4. Tool: list_restrictions ---
	s.AddTool(mcp.NewTool("list_restrictions",
		mcp.WithDescription("Describe the attribute restrictions of the annotation specs as English sentences."),
		mcp.WithString("project_id", mcp.Description("AnnoFab project id (defaults to the configured project).")),
		mcp.WithBoolean("show_type", mcp.Description("Prefix each sentence with the attribute type.")),
	), h.handleListRestrictions)

	return s
}

// StartMCPServer starts the annofabcli MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.AnnofabClient) error {
	s := NewMCPServer(baseCfg, client)
	return server.ServeStdio(s)
}
