package schema

import "encoding/json"

// AdditionalData is an attribute value of an annotation. Exactly one of the
// value fields is meaningful for a given attribute type. The same shape is
// used in annotation list queries.
type AdditionalData struct {
	AdditionalDataDefinitionID string  `json:"additional_data_definition_id" yaml:"additional_data_definition_id"`
	Flag                       *bool   `json:"flag,omitempty" yaml:"flag,omitempty"`
	Integer                    *int    `json:"integer,omitempty" yaml:"integer,omitempty"`
	Comment                    *string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Choice                     *string `json:"choice,omitempty" yaml:"choice,omitempty"`
}

// Equal reports whether two values refer to the same attribute with the same value.
func (a AdditionalData) Equal(b AdditionalData) bool {
	if a.AdditionalDataDefinitionID != b.AdditionalDataDefinitionID {
		return false
	}
	return eqPtr(a.Flag, b.Flag) && eqPtr(a.Integer, b.Integer) && eqPtr(a.Comment, b.Comment) && eqPtr(a.Choice, b.Choice)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// AnnotationDetail is one annotation of an input data.
type AnnotationDetail struct {
	AnnotationID       string           `json:"annotation_id" yaml:"annotation_id"`
	AccountID          string           `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	LabelID            string           `json:"label_id" yaml:"label_id"`
	IsProtected        bool             `json:"is_protected" yaml:"is_protected"`
	DataHoldingType    DataHoldingType  `json:"data_holding_type" yaml:"data_holding_type"`
	Data               json.RawMessage  `json:"data,omitempty" yaml:"-"`
	Etag               *string          `json:"etag,omitempty" yaml:"etag,omitempty"`
	URL                *string          `json:"url,omitempty" yaml:"url,omitempty"`
	Path               *string          `json:"path,omitempty" yaml:"path,omitempty"`
	AdditionalDataList []AdditionalData `json:"additional_data_list" yaml:"additional_data_list"`
	CreatedDatetime    string           `json:"created_datetime,omitempty" yaml:"created_datetime,omitempty"`
	UpdatedDatetime    string           `json:"updated_datetime,omitempty" yaml:"updated_datetime,omitempty"`
}

// Annotation holds every annotation of one input data of one task.
type Annotation struct {
	ProjectID       string             `json:"project_id"`
	TaskID          string             `json:"task_id"`
	InputDataID     string             `json:"input_data_id"`
	Details         []AnnotationDetail `json:"details"`
	UpdatedDatetime *string            `json:"updated_datetime"`
}

// SingleAnnotation is an item of the annotation list API.
type SingleAnnotation struct {
	ProjectID       string           `json:"project_id" yaml:"project_id"`
	TaskID          string           `json:"task_id" yaml:"task_id"`
	InputDataID     string           `json:"input_data_id" yaml:"input_data_id"`
	Detail          AnnotationDetail `json:"detail" yaml:"detail"`
	UpdatedDatetime string           `json:"updated_datetime" yaml:"updated_datetime"`
}

// AnnotationQueryForAPI is the query accepted by the annotation list API.
type AnnotationQueryForAPI struct {
	TaskID                 string           `json:"task_id,omitempty"`
	ExactMatchTaskID       bool             `json:"exact_match_task_id,omitempty"`
	InputDataID            string           `json:"input_data_id,omitempty"`
	ExactMatchInputDataID  bool             `json:"exact_match_input_data_id,omitempty"`
	LabelID                string           `json:"label_id,omitempty"`
	Attributes             []AdditionalData `json:"attributes,omitempty"`
	UpdatedFrom            string           `json:"updated_from,omitempty"`
	UpdatedTo              string           `json:"updated_to,omitempty"`
}

// Match reports whether a detail satisfies the label and attribute part of the query.
func (q AnnotationQueryForAPI) Match(d AnnotationDetail) bool {
	if q.LabelID != "" && q.LabelID != d.LabelID {
		return false
	}
	for _, want := range q.Attributes {
		found := false
		for _, got := range d.AdditionalDataList {
			if got.Equal(want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Batch operation kinds.
const (
	BatchPut    = "Put"
	BatchDelete = "Delete"
)

// BatchAnnotationRequestItem is one item of the batch annotation update API.
type BatchAnnotationRequestItem struct {
	ProjectID          string           `json:"project_id"`
	TaskID             string           `json:"task_id"`
	InputDataID        string           `json:"input_data_id"`
	UpdatedDatetime    string           `json:"updated_datetime"`
	AnnotationID       string           `json:"annotation_id"`
	LabelID            string           `json:"label_id"`
	AdditionalDataList []AdditionalData `json:"additional_data_list,omitempty"`
	Type               string           `json:"_type"`
}

// SimpleAnnotation is the human-readable export of one input data's annotations.
type SimpleAnnotation struct {
	AnnotationFormatVersion string                   `json:"annotation_format_version"`
	ProjectID               string                   `json:"project_id"`
	TaskID                  string                   `json:"task_id"`
	TaskPhase               TaskPhase                `json:"task_phase"`
	TaskPhaseStage          int                      `json:"task_phase_stage"`
	TaskStatus              TaskStatus               `json:"task_status"`
	InputDataID             string                   `json:"input_data_id"`
	InputDataName           string                   `json:"input_data_name"`
	Details                 []SimpleAnnotationDetail `json:"details"`
	UpdatedDatetime         *string                  `json:"updated_datetime"`
}

// SimpleAnnotationDetail is a detail addressed by English names.
type SimpleAnnotationDetail struct {
	Label        string          `json:"label"`
	AnnotationID string          `json:"annotation_id,omitempty"`
	Data         json.RawMessage `json:"data"`
	Attributes   map[string]any  `json:"attributes"`
}

// DataType returns the "_type" of the detail data, or "" if absent.
func (d SimpleAnnotationDetail) DataType() string {
	var head struct {
		Type string `json:"_type"`
	}
	if err := json.Unmarshal(d.Data, &head); err != nil {
		return ""
	}
	return head.Type
}
