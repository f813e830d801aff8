// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/annofabcli/schema"
)

// AnnofabClient defines the AnnoFab Web API operations used by the CLI.
// This allows the command logic to be tested without a live AnnoFab endpoint.
type AnnofabClient interface {
	// --- Project ---

	// GetProject returns the project resource.
	GetProject(ctx context.Context, projectID string) (*schema.Project, error)

	// GetProjectMembers returns every member of the project.
	GetProjectMembers(ctx context.Context, projectID string) ([]schema.ProjectMember, error)

	// --- Annotation specs ---

	// GetAnnotationSpecs returns the latest specs, or the specs of historyID when it is not empty.
	GetAnnotationSpecs(ctx context.Context, projectID string, historyID string) (*schema.AnnotationSpecs, error)

	// PutAnnotationSpecs replaces the specs of the project.
	PutAnnotationSpecs(ctx context.Context, projectID string, req schema.AnnotationSpecsRequest) (*schema.AnnotationSpecs, error)

	// GetAnnotationSpecsHistories returns the change history of the specs, newest first.
	GetAnnotationSpecsHistories(ctx context.Context, projectID string) ([]schema.AnnotationSpecsHistory, error)

	// --- Tasks ---

	// GetAllTasks returns every task matching the query.
	GetAllTasks(ctx context.Context, projectID string, query schema.TaskQueryForAPI) ([]schema.Task, error)

	// GetTask returns one task.
	GetTask(ctx context.Context, projectID string, taskID string) (*schema.Task, error)

	// OperateTask changes the status or operator of a task.
	OperateTask(ctx context.Context, projectID string, taskID string, req schema.OperateTaskRequest) (*schema.Task, error)

	// --- Annotations ---

	// GetAllAnnotationList returns every annotation matching the query.
	GetAllAnnotationList(ctx context.Context, projectID string, query schema.AnnotationQueryForAPI) ([]schema.SingleAnnotation, error)

	// GetEditorAnnotation returns the annotations of one input data of a task.
	GetEditorAnnotation(ctx context.Context, projectID, taskID, inputDataID string) (*schema.Annotation, error)

	// PutAnnotation replaces the annotations of one input data of a task.
	PutAnnotation(ctx context.Context, projectID, taskID, inputDataID string, annotation schema.Annotation) error

	// BatchUpdateAnnotations applies put/delete items in chunks.
	BatchUpdateAnnotations(ctx context.Context, projectID string, items []schema.BatchAnnotationRequestItem) error

	// --- Input data ---

	// GetAllInputDataList returns every input data of the project.
	GetAllInputDataList(ctx context.Context, projectID string) ([]schema.InputData, error)

	// --- Jobs / archives ---

	// GetProjectJobs returns the jobs of the project, filtered by type when not empty.
	GetProjectJobs(ctx context.Context, projectID string, jobType schema.JobType) ([]schema.ProjectJob, error)

	// WaitForJob polls the latest job of a type until it leaves the progress state.
	WaitForJob(ctx context.Context, projectID string, jobType schema.JobType, interval time.Duration, maxTries int) (schema.JobStatus, error)

	// PostAnnotationArchiveUpdate starts the job regenerating the annotation archive.
	PostAnnotationArchiveUpdate(ctx context.Context, projectID string) (*schema.ProjectJob, error)

	// GetSimpleAnnotationArchiveURL returns the signed URL of the SimpleAnnotation zip.
	GetSimpleAnnotationArchiveURL(ctx context.Context, projectID string) (string, error)

	// DownloadFile writes the content at url to dest.
	DownloadFile(ctx context.Context, url string, dest string) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResponseStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking statistics runs and their counts.
type HistoryStore interface {
	// BeginRun creates a new statistics run and returns its unique ID
	BeginRun(command, projectID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRows int) error

	// RecordAnnotationCount stores one aggregated annotation count
	RecordAnnotationCount(runID int64, projectID string, count schema.AnnotationCount) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.StatisticsRunRecord, error)

	// GetAllAnnotationCounts returns every recorded count ordered by run
	GetAllAnnotationCounts() ([]schema.AnnotationCountRecord, error)

	// Close closes the underlying connection
	Close() error
}
