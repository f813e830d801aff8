package schema

// CountGroupBy is the unit annotation counts are aggregated by.
type CountGroupBy string

// CountType selects what is counted per group.
type CountType string

// Grouping units.
const (
	GroupByTask      CountGroupBy = "task_id"
	GroupByInputData CountGroupBy = "input_data_id"
)

// Count types.
const (
	CountByLabel     CountType = "label"
	CountByAttribute CountType = "attribute"
)

// TaskStep is a coarse progress step derived from a task's phase, status and history.
type TaskStep string

// Task steps, in display order.
const (
	StepNeverWorkedAssignable TaskStep = "never_worked.assignable"
	StepWorkedNotRejected     TaskStep = "worked.not_rejected"
	StepWorkedRejected        TaskStep = "worked.rejected"
	StepOnHold                TaskStep = "on_hold"
	StepComplete              TaskStep = "complete"
)

// TaskSteps lists steps in display order.
var TaskSteps = []TaskStep{
	StepNeverWorkedAssignable,
	StepWorkedNotRejected,
	StepWorkedRejected,
	StepOnHold,
	StepComplete,
}

// ValidCountGroupBys lists the valid grouping units.
var ValidCountGroupBys = map[CountGroupBy]struct{}{
	GroupByTask:      {},
	GroupByInputData: {},
}

// ValidCountTypes lists the valid count types.
var ValidCountTypes = map[CountType]struct{}{
	CountByLabel:     {},
	CountByAttribute: {},
}

// AnnotationCount is one aggregated row of annotation counts.
type AnnotationCount struct {
	TaskID      string `json:"task_id" yaml:"task_id"`
	InputDataID string `json:"input_data_id,omitempty" yaml:"input_data_id,omitempty"`
	Label       string `json:"label" yaml:"label"`
	Attribute   string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Value       string `json:"value,omitempty" yaml:"value,omitempty"`
	Count       int    `json:"count" yaml:"count"`
}

// TaskCountRow is one row of the task count summary.
type TaskCountRow struct {
	Phase      TaskPhase  `json:"phase" yaml:"phase"`
	PhaseStage int        `json:"phase_stage" yaml:"phase_stage"`
	Status     TaskStatus `json:"status" yaml:"status"`
	Step       TaskStep   `json:"step" yaml:"step"`
	Count      int        `json:"count" yaml:"count"`
}

// StepOf derives the task step for t.
func StepOf(t Task) TaskStep {
	switch t.Status {
	case CompleteStatus:
		return StepComplete
	case OnHoldStatus:
		return StepOnHold
	}
	if !t.Worked() {
		return StepNeverWorkedAssignable
	}
	if t.NumberOfRejections > 0 || t.Status == RejectedStatus {
		return StepWorkedRejected
	}
	return StepWorkedNotRejected
}
