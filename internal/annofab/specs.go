package annofab

import (
	"context"
	"net/http"
	"net/url"

	"github.com/huangsam/annofabcli/schema"
)

// SpecsAPIVersion selects the V3 layout with top level additionals.
const SpecsAPIVersion = "3"

// GetAnnotationSpecs returns the latest specs, or the specs of historyID when it is not empty.
func (c *Client) GetAnnotationSpecs(ctx context.Context, projectID string, historyID string) (*schema.AnnotationSpecs, error) {
	q := url.Values{"v": {SpecsAPIVersion}}
	if historyID != "" {
		q.Set("history_id", historyID)
	}
	var s schema.AnnotationSpecs
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "annotation-specs"), q, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// PutAnnotationSpecs replaces the specs of the project.
func (c *Client) PutAnnotationSpecs(ctx context.Context, projectID string, req schema.AnnotationSpecsRequest) (*schema.AnnotationSpecs, error) {
	q := url.Values{"v": {SpecsAPIVersion}}
	var s schema.AnnotationSpecs
	if err := c.doJSON(ctx, http.MethodPut, projectPath(projectID, "annotation-specs"), q, req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAnnotationSpecsHistories returns the change history of the specs.
func (c *Client) GetAnnotationSpecsHistories(ctx context.Context, projectID string) ([]schema.AnnotationSpecsHistory, error) {
	var out []schema.AnnotationSpecsHistory
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "annotation-specs-histories"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
