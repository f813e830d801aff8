package annofab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/huangsam/annofabcli/schema"
)

// BatchChunkSize is the number of items sent per batch update request.
const BatchChunkSize = 100

// GetAllAnnotationList returns every annotation matching the query.
func (c *Client) GetAllAnnotationList(ctx context.Context, projectID string, query schema.AnnotationQueryForAPI) ([]schema.SingleAnnotation, error) {
	b, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotation query: %w", err)
	}
	q := url.Values{"query": {string(b)}}
	return getAll[schema.SingleAnnotation](ctx, c, projectPath(projectID, "annotations"), q)
}

// GetEditorAnnotation returns the annotations of one input data of a task.
func (c *Client) GetEditorAnnotation(ctx context.Context, projectID, taskID, inputDataID string) (*schema.Annotation, error) {
	var a schema.Annotation
	path := projectPath(projectID, "tasks", taskID, "inputs", inputDataID, "annotation")
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// PutAnnotation replaces the annotations of one input data of a task.
func (c *Client) PutAnnotation(ctx context.Context, projectID, taskID, inputDataID string, annotation schema.Annotation) error {
	path := projectPath(projectID, "tasks", taskID, "inputs", inputDataID, "annotation")
	return c.doJSON(ctx, http.MethodPut, path, nil, annotation, nil)
}

// BatchUpdateAnnotations applies put/delete items in chunks of BatchChunkSize.
func (c *Client) BatchUpdateAnnotations(ctx context.Context, projectID string, items []schema.BatchAnnotationRequestItem) error {
	path := projectPath(projectID, "annotations")
	for start := 0; start < len(items); start += BatchChunkSize {
		end := min(start+BatchChunkSize, len(items))
		if err := c.doJSON(ctx, http.MethodPatch, path, nil, items[start:end], nil); err != nil {
			return fmt.Errorf("batch update of items %d-%d failed: %w", start, end-1, err)
		}
	}
	return nil
}
