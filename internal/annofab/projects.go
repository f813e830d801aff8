package annofab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/huangsam/annofabcli/schema"
)

// GetProject returns the project resource.
func (c *Client) GetProject(ctx context.Context, projectID string) (*schema.Project, error) {
	var p schema.Project
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectMembers returns every member of the project, including those who left.
func (c *Client) GetProjectMembers(ctx context.Context, projectID string) ([]schema.ProjectMember, error) {
	var out struct {
		List []schema.ProjectMember `json:"list"`
	}
	q := url.Values{"include_inactive_member": {"true"}}
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "members"), q, nil, &out); err != nil {
		return nil, err
	}
	return out.List, nil
}

// GetAllInputDataList returns every input data of the project.
func (c *Client) GetAllInputDataList(ctx context.Context, projectID string) ([]schema.InputData, error) {
	list, err := getAll[schema.InputData](ctx, c, projectPath(projectID, "inputs"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list input data: %w", err)
	}
	return list, nil
}
