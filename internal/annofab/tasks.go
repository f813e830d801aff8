package annofab

import (
	"context"
	"net/http"
	"net/url"

	"github.com/huangsam/annofabcli/schema"
)

// taskQueryValues converts a task query into list parameters.
func taskQueryValues(q schema.TaskQueryForAPI) url.Values {
	v := url.Values{}
	if q.TaskID != "" {
		v.Set("task_id", q.TaskID)
	}
	if q.Phase != "" {
		v.Set("phase", string(q.Phase))
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.AccountID != "" {
		v.Set("account_id", q.AccountID)
	}
	if q.NoUser {
		v.Set("no_user", "true")
	}
	return v
}

// GetAllTasks returns every task matching the query.
func (c *Client) GetAllTasks(ctx context.Context, projectID string, query schema.TaskQueryForAPI) ([]schema.Task, error) {
	return getAll[schema.Task](ctx, c, projectPath(projectID, "tasks"), taskQueryValues(query))
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, projectID string, taskID string) (*schema.Task, error) {
	var t schema.Task
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "tasks", taskID), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// OperateTask changes the status or operator of a task.
func (c *Client) OperateTask(ctx context.Context, projectID string, taskID string, req schema.OperateTaskRequest) (*schema.Task, error) {
	var t schema.Task
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "tasks", taskID, "operate"), nil, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
