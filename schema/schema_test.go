package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternationalizationMessage(t *testing.T) {
	m := NewMessage("car", "車")
	assert.Equal(t, "car", m.English())
	assert.Equal(t, "車", m.Message(LangJA))
	assert.Equal(t, "", m.Message(LangVI))
	assert.Equal(t, LangEN, m.DefaultLang)

	assert.Len(t, NewMessage("car", "").Messages, 1)
}

func TestRestrictionConditionJSON(t *testing.T) {
	raw := `{
		"additional_data_definition_id": "a1",
		"condition": {
			"_type": "Imply",
			"premise": {"additional_data_definition_id": "a2", "condition": {"_type": "Equals", "value": "c1"}},
			"condition": {"_type": "CanInput", "enable": false}
		}
	}`
	var r Restriction
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, ImplyCondition, r.Condition.Type)
	require.NotNil(t, r.Condition.Premise)
	assert.Equal(t, "a2", r.Condition.Premise.AdditionalDataDefinitionID)
	assert.Equal(t, "c1", *r.Condition.Premise.Condition.Value)
	require.NotNil(t, r.Condition.Condition)
	assert.False(t, *r.Condition.Condition.Enable)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestAdditionalDataEqual(t *testing.T) {
	yes, no := true, false
	c1, c2 := "c1", "c2"

	assert.True(t, AdditionalData{AdditionalDataDefinitionID: "a", Flag: &yes}.Equal(AdditionalData{AdditionalDataDefinitionID: "a", Flag: &yes}))
	assert.False(t, AdditionalData{AdditionalDataDefinitionID: "a", Flag: &yes}.Equal(AdditionalData{AdditionalDataDefinitionID: "a", Flag: &no}))
	assert.False(t, AdditionalData{AdditionalDataDefinitionID: "a", Choice: &c1}.Equal(AdditionalData{AdditionalDataDefinitionID: "a", Choice: &c2}))
	assert.False(t, AdditionalData{AdditionalDataDefinitionID: "a", Choice: &c1}.Equal(AdditionalData{AdditionalDataDefinitionID: "b", Choice: &c1}))
	assert.False(t, AdditionalData{AdditionalDataDefinitionID: "a", Choice: &c1}.Equal(AdditionalData{AdditionalDataDefinitionID: "a"}))
}

func TestSimpleAnnotationDetailDataType(t *testing.T) {
	d := SimpleAnnotationDetail{Data: json.RawMessage(`{"_type":"BoundingBox","left_top":{"x":0,"y":0}}`)}
	assert.Equal(t, "BoundingBox", d.DataType())
	assert.Equal(t, "", SimpleAnnotationDetail{}.DataType())
}

func TestStepOf(t *testing.T) {
	worked := []TaskHistoryShort{{AccountID: "u1", Phase: AnnotationPhase, Worked: true}}

	tests := []struct {
		name string
		task Task
		want TaskStep
	}{
		{"complete", Task{Status: CompleteStatus, HistoriesByPhase: worked}, StepComplete},
		{"on hold", Task{Status: OnHoldStatus}, StepOnHold},
		{"never worked", Task{Status: NotStartedStatus}, StepNeverWorkedAssignable},
		{"worked", Task{Status: BreakStatus, HistoriesByPhase: worked}, StepWorkedNotRejected},
		{"rejected", Task{Status: NotStartedStatus, HistoriesByPhase: worked, NumberOfRejections: 1}, StepWorkedRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepOf(tt.task))
		})
	}
}

func TestTaskWorktimeHour(t *testing.T) {
	assert.InDelta(t, 1.5, Task{WorkTimeSpan: 90 * 60 * 1000}.WorktimeHour(), 1e-9)
}

func TestAnnotationSpecsToRequest(t *testing.T) {
	s := AnnotationSpecs{
		Labels:          []Label{{LabelID: "l"}},
		UpdatedDatetime: "2024-01-01T00:00:00+09:00",
		AutoMarking:     true,
	}
	req := s.ToRequest("rename ids")
	assert.Equal(t, "rename ids", req.Comment)
	assert.Equal(t, s.UpdatedDatetime, req.LastUpdatedDatetime)
	assert.True(t, req.AutoMarking)
	assert.Equal(t, s.Labels, req.Labels)
}

func TestAttributeTypeKinds(t *testing.T) {
	assert.True(t, ChoiceAttr.IsChoiceType())
	assert.True(t, SelectAttr.IsChoiceType())
	assert.False(t, CommentAttr.IsChoiceType())
	assert.True(t, LinkAttr.IsStringType())
	assert.False(t, IntegerAttr.IsStringType())
}
