package annofab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/huangsam/annofabcli/schema"
)

// ErrNoJob means there is no job of the requested type to wait for.
var ErrNoJob = errors.New("no job found")

// GetProjectJobs returns the most recent jobs of the project, newest first.
func (c *Client) GetProjectJobs(ctx context.Context, projectID string, jobType schema.JobType) ([]schema.ProjectJob, error) {
	q := url.Values{"limit": {strconv.Itoa(PageLimit)}}
	if jobType != "" {
		q.Set("type", string(jobType))
	}
	var r schema.ListResponse[schema.ProjectJob]
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "jobs"), q, nil, &r); err != nil {
		return nil, err
	}
	return r.List, nil
}

// WaitForJob polls the latest job of a type until it leaves the progress state,
// checking at most maxTries times.
func (c *Client) WaitForJob(ctx context.Context, projectID string, jobType schema.JobType, interval time.Duration, maxTries int) (schema.JobStatus, error) {
	for try := 1; try <= maxTries; try++ {
		jobs, err := c.GetProjectJobs(ctx, projectID, jobType)
		if err != nil {
			return "", err
		}
		if len(jobs) == 0 {
			return "", fmt.Errorf("job type %s: %w", jobType, ErrNoJob)
		}
		if status := jobs[0].JobStatus; status != schema.JobProgress {
			return status, nil
		}
		if try == maxTries {
			break
		}
		select {
		case <-ctx.Done():
			return schema.JobProgress, ctx.Err()
		case <-time.After(interval):
		}
	}
	return schema.JobProgress, fmt.Errorf("job type %s is still in progress after %d checks", jobType, maxTries)
}

// PostAnnotationArchiveUpdate starts the job regenerating the annotation archive.
func (c *Client) PostAnnotationArchiveUpdate(ctx context.Context, projectID string) (*schema.ProjectJob, error) {
	var out struct {
		Job schema.ProjectJob `json:"job"`
	}
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "annotation-archive", "update"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Job, nil
}

// GetSimpleAnnotationArchiveURL returns the signed URL the archive endpoint redirects to.
func (c *Client) GetSimpleAnnotationArchiveURL(ctx context.Context, projectID string) (string, error) {
	rawURL := c.apiURL(projectPath(projectID, "annotation-archive"), nil)
	resp, err := c.send(ctx, http.MethodGet, rawURL, nil, requestOptions{authed: true, noRedirect: true})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("GET %s: HTTP %d without Location header", rawURL, resp.StatusCode)
	}
	return loc, nil
}

// DownloadFile writes the content at a signed url to dest.
func (c *Client) DownloadFile(ctx context.Context, rawURL string, dest string) error {
	resp, err := c.send(ctx, http.MethodGet, rawURL, nil, requestOptions{download: true})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return f.Close()
}
