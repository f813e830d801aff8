package schema

// Custom string types for type safety.
type (
	// OutputFormat represents the format of the output.
	OutputFormat string

	// DatabaseBackend represents the database backend for local stores.
	DatabaseBackend string

	// TaskPhase represents the phase of a task.
	TaskPhase string

	// TaskStatus represents the status of a task.
	TaskStatus string

	// AnnotationType represents the shape of annotations a label produces.
	AnnotationType string

	// AdditionalDataType represents the value type of an attribute.
	AdditionalDataType string

	// ConditionType is the discriminator of a restriction condition.
	ConditionType string

	// DataHoldingType tells whether annotation data lives inline or in an outer file.
	DataHoldingType string

	// JobType represents the kind of background job.
	JobType string

	// JobStatus represents the state of a background job.
	JobStatus string

	// Lang is a locale code used in internationalization messages.
	Lang string
)

// All output formats supported.
const (
	TextOut       OutputFormat = "text" // default
	CSVOut        OutputFormat = "csv"
	JSONOut       OutputFormat = "json"
	PrettyJSONOut OutputFormat = "pretty_json"
	YAMLOut       OutputFormat = "yaml"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Task phases.
const (
	AnnotationPhase TaskPhase = "annotation"
	InspectionPhase TaskPhase = "inspection"
	AcceptancePhase TaskPhase = "acceptance"
)

// Task statuses.
const (
	NotStartedStatus TaskStatus = "not_started"
	WorkingStatus    TaskStatus = "working"
	BreakStatus      TaskStatus = "break"
	OnHoldStatus     TaskStatus = "on_hold"
	CompleteStatus   TaskStatus = "complete"
	RejectedStatus   TaskStatus = "rejected"
	CancelledStatus  TaskStatus = "cancelled"
)

// Annotation types.
const (
	BoundingBoxType    AnnotationType = "bounding_box"
	SegmentationType   AnnotationType = "segmentation"
	SegmentationV2Type AnnotationType = "segmentation_v2"
	PolygonType        AnnotationType = "polygon"
	PolylineType       AnnotationType = "polyline"
	PointType          AnnotationType = "point"
	ClassificationType AnnotationType = "classification"
	RangeType          AnnotationType = "range"
	CustomType         AnnotationType = "custom"
)

// Attribute value types.
const (
	FlagAttr     AdditionalDataType = "flag"
	IntegerAttr  AdditionalDataType = "integer"
	CommentAttr  AdditionalDataType = "comment"
	TextAttr     AdditionalDataType = "text"
	ChoiceAttr   AdditionalDataType = "choice"
	SelectAttr   AdditionalDataType = "select"
	TrackingAttr AdditionalDataType = "tracking"
	LinkAttr     AdditionalDataType = "link"
)

// Restriction condition types.
const (
	CanInputCondition   ConditionType = "CanInput"
	EqualsCondition     ConditionType = "Equals"
	NotEqualsCondition  ConditionType = "NotEquals"
	MatchesCondition    ConditionType = "Matches"
	NotMatchesCondition ConditionType = "NotMatches"
	HasLabelCondition   ConditionType = "HasLabel"
	ImplyCondition      ConditionType = "Imply"
)

// Data holding types.
const (
	InnerHolding DataHoldingType = "inner"
	OuterHolding DataHoldingType = "outer"
)

// Job types used by the CLI.
const (
	GenAnnotationJob    JobType = "gen-annotation"
	GenTasksListJob     JobType = "gen-tasks-list"
	CopyProjectJob      JobType = "copy-project"
	GenInputsListJob    JobType = "gen-inputs-list"
	InvokeHookJob       JobType = "invoke-hook"
	MoveProjectJob      JobType = "move-project"
	GenTasksJob         JobType = "gen-tasks"
	DeleteProjectJob    JobType = "delete-project"
	GenTaskHistoriesJob JobType = "gen-task-histories"
)

// Job statuses.
const (
	JobProgress  JobStatus = "progress"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Languages found in internationalization messages.
const (
	LangEN Lang = "en-US"
	LangJA Lang = "ja-JP"
	LangVI Lang = "vi-VN"
)

// ValidOutputFormats lists all valid output formats.
var ValidOutputFormats = map[OutputFormat]struct{}{
	TextOut:       {},
	CSVOut:        {},
	JSONOut:       {},
	PrettyJSONOut: {},
	YAMLOut:       {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidTaskPhases lists all task phases.
var ValidTaskPhases = map[TaskPhase]struct{}{
	AnnotationPhase: {},
	InspectionPhase: {},
	AcceptancePhase: {},
}

// ValidTaskStatuses lists all task statuses.
var ValidTaskStatuses = map[TaskStatus]struct{}{
	NotStartedStatus: {},
	WorkingStatus:    {},
	BreakStatus:      {},
	OnHoldStatus:     {},
	CompleteStatus:   {},
	RejectedStatus:   {},
	CancelledStatus:  {},
}

// IsChoiceType reports whether values of this attribute type are choice ids.
func (t AdditionalDataType) IsChoiceType() bool {
	return t == ChoiceAttr || t == SelectAttr
}

// IsStringType reports whether values of this attribute type are free strings.
func (t AdditionalDataType) IsStringType() bool {
	switch t {
	case CommentAttr, TextAttr, TrackingAttr, LinkAttr:
		return true
	default:
		return false
	}
}
