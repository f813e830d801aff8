package contract

import (
	"context"
	"time"

	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/mock"
)

// MockAnnofabClient is a mock type for the AnnofabClient type.
type MockAnnofabClient struct {
	mock.Mock
}

var _ AnnofabClient = &MockAnnofabClient{} // Compile-time check

// GetProject implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetProject(ctx context.Context, projectID string) (*schema.Project, error) {
	ret := m.Called(ctx, projectID)
	p, _ := ret.Get(0).(*schema.Project)
	return p, ret.Error(1)
}

// GetProjectMembers implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetProjectMembers(ctx context.Context, projectID string) ([]schema.ProjectMember, error) {
	ret := m.Called(ctx, projectID)
	members, _ := ret.Get(0).([]schema.ProjectMember)
	return members, ret.Error(1)
}

// GetAnnotationSpecs implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetAnnotationSpecs(ctx context.Context, projectID string, historyID string) (*schema.AnnotationSpecs, error) {
	ret := m.Called(ctx, projectID, historyID)
	specs, _ := ret.Get(0).(*schema.AnnotationSpecs)
	return specs, ret.Error(1)
}

// PutAnnotationSpecs implements the AnnofabClient interface.
func (m *MockAnnofabClient) PutAnnotationSpecs(ctx context.Context, projectID string, req schema.AnnotationSpecsRequest) (*schema.AnnotationSpecs, error) {
	ret := m.Called(ctx, projectID, req)
	specs, _ := ret.Get(0).(*schema.AnnotationSpecs)
	return specs, ret.Error(1)
}

// GetAnnotationSpecsHistories implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetAnnotationSpecsHistories(ctx context.Context, projectID string) ([]schema.AnnotationSpecsHistory, error) {
	ret := m.Called(ctx, projectID)
	histories, _ := ret.Get(0).([]schema.AnnotationSpecsHistory)
	return histories, ret.Error(1)
}

// GetAllTasks implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetAllTasks(ctx context.Context, projectID string, query schema.TaskQueryForAPI) ([]schema.Task, error) {
	ret := m.Called(ctx, projectID, query)
	tasks, _ := ret.Get(0).([]schema.Task)
	return tasks, ret.Error(1)
}

// GetTask implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetTask(ctx context.Context, projectID string, taskID string) (*schema.Task, error) {
	ret := m.Called(ctx, projectID, taskID)
	task, _ := ret.Get(0).(*schema.Task)
	return task, ret.Error(1)
}

// OperateTask implements the AnnofabClient interface.
func (m *MockAnnofabClient) OperateTask(ctx context.Context, projectID string, taskID string, req schema.OperateTaskRequest) (*schema.Task, error) {
	ret := m.Called(ctx, projectID, taskID, req)
	task, _ := ret.Get(0).(*schema.Task)
	return task, ret.Error(1)
}

// GetAllAnnotationList implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetAllAnnotationList(ctx context.Context, projectID string, query schema.AnnotationQueryForAPI) ([]schema.SingleAnnotation, error) {
	ret := m.Called(ctx, projectID, query)
	list, _ := ret.Get(0).([]schema.SingleAnnotation)
	return list, ret.Error(1)
}

// GetEditorAnnotation implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetEditorAnnotation(ctx context.Context, projectID, taskID, inputDataID string) (*schema.Annotation, error) {
	ret := m.Called(ctx, projectID, taskID, inputDataID)
	a, _ := ret.Get(0).(*schema.Annotation)
	return a, ret.Error(1)
}

// PutAnnotation implements the AnnofabClient interface.
func (m *MockAnnofabClient) PutAnnotation(ctx context.Context, projectID, taskID, inputDataID string, annotation schema.Annotation) error {
	ret := m.Called(ctx, projectID, taskID, inputDataID, annotation)
	return ret.Error(0)
}

// BatchUpdateAnnotations implements the AnnofabClient interface.
func (m *MockAnnofabClient) BatchUpdateAnnotations(ctx context.Context, projectID string, items []schema.BatchAnnotationRequestItem) error {
	ret := m.Called(ctx, projectID, items)
	return ret.Error(0)
}

// GetAllInputDataList implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetAllInputDataList(ctx context.Context, projectID string) ([]schema.InputData, error) {
	ret := m.Called(ctx, projectID)
	list, _ := ret.Get(0).([]schema.InputData)
	return list, ret.Error(1)
}

// GetProjectJobs implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetProjectJobs(ctx context.Context, projectID string, jobType schema.JobType) ([]schema.ProjectJob, error) {
	ret := m.Called(ctx, projectID, jobType)
	jobs, _ := ret.Get(0).([]schema.ProjectJob)
	return jobs, ret.Error(1)
}

// WaitForJob implements the AnnofabClient interface.
func (m *MockAnnofabClient) WaitForJob(ctx context.Context, projectID string, jobType schema.JobType, interval time.Duration, maxTries int) (schema.JobStatus, error) {
	ret := m.Called(ctx, projectID, jobType, interval, maxTries)
	status, _ := ret.Get(0).(schema.JobStatus)
	return status, ret.Error(1)
}

// PostAnnotationArchiveUpdate implements the AnnofabClient interface.
func (m *MockAnnofabClient) PostAnnotationArchiveUpdate(ctx context.Context, projectID string) (*schema.ProjectJob, error) {
	ret := m.Called(ctx, projectID)
	job, _ := ret.Get(0).(*schema.ProjectJob)
	return job, ret.Error(1)
}

// GetSimpleAnnotationArchiveURL implements the AnnofabClient interface.
func (m *MockAnnofabClient) GetSimpleAnnotationArchiveURL(ctx context.Context, projectID string) (string, error) {
	ret := m.Called(ctx, projectID)
	return ret.String(0), ret.Error(1)
}

// DownloadFile implements the AnnofabClient interface.
func (m *MockAnnofabClient) DownloadFile(ctx context.Context, url string, dest string) error {
	ret := m.Called(ctx, url, dest)
	return ret.Error(0)
}
