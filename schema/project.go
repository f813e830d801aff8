package schema

import "time"

// Project is a subset of the project resource.
type Project struct {
	ProjectID       string `json:"project_id"`
	OrganizationID  string `json:"organization_id"`
	Title           string `json:"title"`
	Overview        string `json:"overview"`
	ProjectStatus   string `json:"project_status"`
	InputDataType   string `json:"input_data_type"`
	UpdatedDatetime string `json:"updated_datetime"`
}

// ProjectMember is a member of a project.
type ProjectMember struct {
	ProjectID     string `json:"project_id" yaml:"project_id"`
	AccountID     string `json:"account_id" yaml:"account_id"`
	UserID        string `json:"user_id" yaml:"user_id"`
	Username      string `json:"username" yaml:"username"`
	MemberStatus  string `json:"member_status" yaml:"member_status"`
	MemberRole    string `json:"member_role" yaml:"member_role"`
	UpdatedAt     string `json:"updated_datetime" yaml:"updated_datetime"`
	SamplingRatio *int   `json:"sampling_inspection_rate,omitempty" yaml:"sampling_inspection_rate,omitempty"`
}

// TaskHistoryShort is a per-phase summary of who worked on a task.
type TaskHistoryShort struct {
	AccountID  string    `json:"account_id" yaml:"account_id"`
	Phase      TaskPhase `json:"phase" yaml:"phase"`
	PhaseStage int       `json:"phase_stage" yaml:"phase_stage"`
	Worked     bool      `json:"worked" yaml:"worked"`
}

// Task is the unit of work.
type Task struct {
	ProjectID                      string             `json:"project_id" yaml:"project_id"`
	TaskID                         string             `json:"task_id" yaml:"task_id"`
	Phase                          TaskPhase          `json:"phase" yaml:"phase"`
	PhaseStage                     int                `json:"phase_stage" yaml:"phase_stage"`
	Status                         TaskStatus         `json:"status" yaml:"status"`
	AccountID                      *string            `json:"account_id" yaml:"account_id"`
	InputDataIDList                []string           `json:"input_data_id_list" yaml:"input_data_id_list"`
	HistoriesByPhase               []TaskHistoryShort `json:"histories_by_phase" yaml:"histories_by_phase"`
	WorkTimeSpan                   int64              `json:"work_time_span" yaml:"work_time_span"`
	NumberOfRejections             int                `json:"number_of_rejections" yaml:"number_of_rejections"`
	NumberOfRejectionsByInspection int                `json:"number_of_rejections_by_inspection" yaml:"number_of_rejections_by_inspection"`
	NumberOfRejectionsByAcceptance int                `json:"number_of_rejections_by_acceptance" yaml:"number_of_rejections_by_acceptance"`
	StartedDatetime                *string            `json:"started_datetime" yaml:"started_datetime"`
	UpdatedDatetime                string             `json:"updated_datetime" yaml:"updated_datetime"`
	Metadata                       map[string]any     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// WorktimeHour returns the accumulated work time in hours.
func (t Task) WorktimeHour() float64 {
	return (time.Duration(t.WorkTimeSpan) * time.Millisecond).Hours()
}

// Worked reports whether anyone has ever worked on the task.
func (t Task) Worked() bool {
	for _, h := range t.HistoriesByPhase {
		if h.Worked {
			return true
		}
	}
	return false
}

// OperateTaskRequest changes a task's status and operator.
type OperateTaskRequest struct {
	Status              TaskStatus `json:"status"`
	LastUpdatedDatetime string     `json:"last_updated_datetime"`
	AccountID           *string    `json:"account_id"`
}

// TaskQueryForAPI holds the query parameters of the task list API.
type TaskQueryForAPI struct {
	TaskID    string
	Phase     TaskPhase
	Status    TaskStatus
	AccountID string
	NoUser    bool
}

// InputData is an input data item of a project.
type InputData struct {
	InputDataID     string         `json:"input_data_id" yaml:"input_data_id"`
	ProjectID       string         `json:"project_id" yaml:"project_id"`
	InputDataName   string         `json:"input_data_name" yaml:"input_data_name"`
	InputDataPath   string         `json:"input_data_path" yaml:"input_data_path"`
	UpdatedDatetime string         `json:"updated_datetime" yaml:"updated_datetime"`
	Metadata        map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ProjectJob is a background job of a project.
type ProjectJob struct {
	ProjectID       string    `json:"project_id" yaml:"project_id"`
	JobType         JobType   `json:"job_type" yaml:"job_type"`
	JobID           string    `json:"job_id" yaml:"job_id"`
	JobStatus       JobStatus `json:"job_status" yaml:"job_status"`
	JobExecution    any       `json:"job_execution,omitempty" yaml:"job_execution,omitempty"`
	JobDetail       any       `json:"job_detail,omitempty" yaml:"job_detail,omitempty"`
	CreatedDatetime string    `json:"created_datetime" yaml:"created_datetime"`
	UpdatedDatetime string    `json:"updated_datetime" yaml:"updated_datetime"`
}

// ListResponse is the envelope of every paginated list API.
type ListResponse[T any] struct {
	List       []T  `json:"list"`
	PageNo     int  `json:"page_no"`
	TotalCount int  `json:"total_count"`
	OverLimit  bool `json:"over_limit"`
}
