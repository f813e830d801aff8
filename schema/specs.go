// Package schema has the AnnoFab wire models and shared constants for all parts of annofabcli.
package schema

import "encoding/json"

// InternationalizationMessage is a localized display name.
type InternationalizationMessage struct {
	Messages    []MessageEntry `json:"messages" yaml:"messages"`
	DefaultLang Lang           `json:"default_lang" yaml:"default_lang"`
}

// MessageEntry is one localized string.
type MessageEntry struct {
	Lang    Lang   `json:"lang" yaml:"lang"`
	Message string `json:"message" yaml:"message"`
}

// Message returns the message for lang, or "" if none exists.
func (m InternationalizationMessage) Message(lang Lang) string {
	for _, e := range m.Messages {
		if e.Lang == lang {
			return e.Message
		}
	}
	return ""
}

// English returns the en-US message.
func (m InternationalizationMessage) English() string {
	return m.Message(LangEN)
}

// NewMessage builds a message with English and Japanese entries, English as default.
func NewMessage(en, ja string) InternationalizationMessage {
	msgs := []MessageEntry{{Lang: LangEN, Message: en}}
	if ja != "" {
		msgs = append(msgs, MessageEntry{Lang: LangJA, Message: ja})
	}
	return InternationalizationMessage{Messages: msgs, DefaultLang: LangEN}
}

// Keybind is a keyboard shortcut.
type Keybind struct {
	Code  string `json:"code" yaml:"code"`
	Shift bool   `json:"shift" yaml:"shift"`
	Ctrl  bool   `json:"ctrl" yaml:"ctrl"`
	Alt   bool   `json:"alt" yaml:"alt"`
}

// Color is an RGB label color.
type Color struct {
	Red   int `json:"red" yaml:"red"`
	Green int `json:"green" yaml:"green"`
	Blue  int `json:"blue" yaml:"blue"`
}

// Choice is one option of a choice/select attribute.
type Choice struct {
	ChoiceID  string                      `json:"choice_id" yaml:"choice_id"`
	Name      InternationalizationMessage `json:"name" yaml:"name"`
	IsDefault bool                        `json:"is_default" yaml:"is_default"`
	Keybind   []Keybind                   `json:"keybind" yaml:"keybind"`
}

// AdditionalDataDefinition is an attribute definition.
type AdditionalDataDefinition struct {
	AdditionalDataDefinitionID string                      `json:"additional_data_definition_id" yaml:"additional_data_definition_id"`
	ReadOnly                   bool                        `json:"read_only" yaml:"read_only"`
	Name                       InternationalizationMessage `json:"name" yaml:"name"`
	Default                    any                         `json:"default,omitempty" yaml:"default,omitempty"`
	Keybind                    []Keybind                   `json:"keybind" yaml:"keybind"`
	Type                       AdditionalDataType          `json:"type" yaml:"type"`
	Choices                    []Choice                    `json:"choices" yaml:"choices"`
	Regex                      *string                     `json:"regex,omitempty" yaml:"regex,omitempty"`
	LabelIDs                   []string                    `json:"label_ids,omitempty" yaml:"label_ids,omitempty"`
	Required                   *bool                       `json:"required,omitempty" yaml:"required,omitempty"`
	Metadata                   map[string]string           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Label is a V2/V3 label. AdditionalDataDefinitions holds attribute ids.
type Label struct {
	LabelID                   string                      `json:"label_id" yaml:"label_id"`
	LabelName                 InternationalizationMessage `json:"label_name" yaml:"label_name"`
	Keybind                   []Keybind                   `json:"keybind" yaml:"keybind"`
	AnnotationType            AnnotationType              `json:"annotation_type" yaml:"annotation_type"`
	BoundingBoxMetadata       json.RawMessage             `json:"bounding_box_metadata,omitempty" yaml:"-"`
	SegmentationMetadata      json.RawMessage             `json:"segmentation_metadata,omitempty" yaml:"-"`
	AdditionalDataDefinitions []string                    `json:"additional_data_definitions" yaml:"additional_data_definitions"`
	Color                     Color                       `json:"color" yaml:"color"`
	AnnotationEditorFeature   json.RawMessage             `json:"annotation_editor_feature,omitempty" yaml:"-"`
	AllowOutOfImageBounds     *bool                       `json:"allow_out_of_image_bounds,omitempty" yaml:"allow_out_of_image_bounds,omitempty"`
	Metadata                  map[string]string           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	FieldValues               json.RawMessage             `json:"field_values,omitempty" yaml:"-"`
}

// LabelV1 is a V1 label embedding its attribute definitions.
type LabelV1 struct {
	LabelID                   string                      `json:"label_id" yaml:"label_id"`
	LabelName                 InternationalizationMessage `json:"label_name" yaml:"label_name"`
	Keybind                   []Keybind                   `json:"keybind" yaml:"keybind"`
	AnnotationType            AnnotationType              `json:"annotation_type" yaml:"annotation_type"`
	BoundingBoxMetadata       json.RawMessage             `json:"bounding_box_metadata,omitempty" yaml:"-"`
	SegmentationMetadata      json.RawMessage             `json:"segmentation_metadata,omitempty" yaml:"-"`
	AdditionalDataDefinitions []AdditionalDataDefinition  `json:"additional_data_definitions" yaml:"additional_data_definitions"`
	Color                     Color                       `json:"color" yaml:"color"`
	AnnotationEditorFeature   json.RawMessage             `json:"annotation_editor_feature,omitempty" yaml:"-"`
	AllowOutOfImageBounds     *bool                       `json:"allow_out_of_image_bounds,omitempty" yaml:"allow_out_of_image_bounds,omitempty"`
	Metadata                  map[string]string           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	FieldValues               json.RawMessage             `json:"field_values,omitempty" yaml:"-"`
}

// RestrictionCondition is the tagged union of restriction conditions.
// Which fields are set depends on Type.
type RestrictionCondition struct {
	Type      ConditionType         `json:"_type" yaml:"_type"`
	Enable    *bool                 `json:"enable,omitempty" yaml:"enable,omitempty"`       // CanInput
	Value     *string               `json:"value,omitempty" yaml:"value,omitempty"`         // Equals, NotEquals, Matches, NotMatches
	Labels    []string              `json:"labels,omitempty" yaml:"labels,omitempty"`       // HasLabel
	Premise   *RestrictionPremise   `json:"premise,omitempty" yaml:"premise,omitempty"`     // Imply
	Condition *RestrictionCondition `json:"condition,omitempty" yaml:"condition,omitempty"` // Imply
}

// RestrictionPremise is the "if" part of an Imply condition.
type RestrictionPremise struct {
	AdditionalDataDefinitionID string               `json:"additional_data_definition_id" yaml:"additional_data_definition_id"`
	Condition                  RestrictionCondition `json:"condition" yaml:"condition"`
}

// Restriction constrains the value of one attribute.
type Restriction struct {
	AdditionalDataDefinitionID string               `json:"additional_data_definition_id" yaml:"additional_data_definition_id"`
	Condition                  RestrictionCondition `json:"condition" yaml:"condition"`
}

// AnnotationSpecs is the V2/V3 annotation specs document.
type AnnotationSpecs struct {
	ProjectID         string                     `json:"project_id" yaml:"project_id"`
	Labels            []Label                    `json:"labels" yaml:"labels"`
	Additionals       []AdditionalDataDefinition `json:"additionals" yaml:"additionals"`
	Restrictions      []Restriction              `json:"restrictions" yaml:"restrictions"`
	InspectionPhrases json.RawMessage            `json:"inspection_phrases,omitempty" yaml:"-"`
	FormatVersion     string                     `json:"format_version" yaml:"format_version"`
	HistoryID         string                     `json:"history_id" yaml:"history_id"`
	UpdatedDatetime   string                     `json:"updated_datetime,omitempty" yaml:"updated_datetime,omitempty"`
	Option            json.RawMessage            `json:"option,omitempty" yaml:"-"`
	AutoMarking       bool                       `json:"auto_marking" yaml:"auto_marking"`
	Metadata          map[string]string          `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// AnnotationSpecsV1 is the V1 document where labels embed their attributes.
type AnnotationSpecsV1 struct {
	ProjectID         string            `json:"project_id" yaml:"project_id"`
	Labels            []LabelV1         `json:"labels" yaml:"labels"`
	Restrictions      []Restriction     `json:"restrictions" yaml:"restrictions"`
	InspectionPhrases json.RawMessage   `json:"inspection_phrases,omitempty" yaml:"-"`
	FormatVersion     string            `json:"format_version" yaml:"format_version"`
	HistoryID         string            `json:"history_id" yaml:"history_id"`
	UpdatedDatetime   string            `json:"updated_datetime,omitempty" yaml:"updated_datetime,omitempty"`
	Option            json.RawMessage   `json:"option,omitempty" yaml:"-"`
	AutoMarking       bool              `json:"auto_marking" yaml:"auto_marking"`
	Metadata          map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// AnnotationSpecsRequest is the body of PUT annotation-specs.
type AnnotationSpecsRequest struct {
	Labels              []Label                    `json:"labels"`
	Additionals         []AdditionalDataDefinition `json:"additionals"`
	Restrictions        []Restriction              `json:"restrictions"`
	InspectionPhrases   json.RawMessage            `json:"inspection_phrases,omitempty"`
	Comment             string                     `json:"comment"`
	AutoMarking         bool                       `json:"auto_marking"`
	FormatVersion       string                     `json:"format_version,omitempty"`
	LastUpdatedDatetime string                     `json:"last_updated_datetime,omitempty"`
	Option              json.RawMessage            `json:"option,omitempty"`
	Metadata            map[string]string          `json:"metadata,omitempty"`
}

// ToRequest converts fetched specs to a PUT body.
func (s *AnnotationSpecs) ToRequest(comment string) AnnotationSpecsRequest {
	return AnnotationSpecsRequest{
		Labels:              s.Labels,
		Additionals:         s.Additionals,
		Restrictions:        s.Restrictions,
		InspectionPhrases:   s.InspectionPhrases,
		Comment:             comment,
		AutoMarking:         s.AutoMarking,
		FormatVersion:       s.FormatVersion,
		LastUpdatedDatetime: s.UpdatedDatetime,
		Option:              s.Option,
		Metadata:            s.Metadata,
	}
}

// AnnotationSpecsHistory is one entry of the specs change history.
type AnnotationSpecsHistory struct {
	HistoryID       string  `json:"history_id"`
	ProjectID       string  `json:"project_id"`
	UpdatedDatetime string  `json:"updated_datetime"`
	URL             string  `json:"url"`
	AccountID       *string `json:"account_id"`
	Comment         *string `json:"comment"`
}
