package specs

import (
	"testing"

	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRestriction(t *testing.T) {
	s := sampleSpecs()
	a := NewAccessor(s)

	want := []string{
		"'note' matches '^[a-z]+$'",
		"'color' equals 'red'",
		"'count' is not empty IF 'color' equals 'blue'",
		"'occluded' can not input",
		"'note' has label 'car', 'bike'",
	}
	for i, r := range s.Restrictions {
		assert.Equal(t, want[i], FormatRestriction(a, r, false))
	}

	assert.Equal(t, "(choice) 'color' equals 'red'", FormatRestriction(a, s.Restrictions[1], true))
}

func TestFormatRestriction_Conditions(t *testing.T) {
	a := NewAccessor(sampleSpecs())

	tests := []struct {
		name   string
		attrID string
		cond   schema.RestrictionCondition
		want   string
	}{
		{"can input", "attr-note", schema.RestrictionCondition{Type: schema.CanInputCondition, Enable: ptr(true)}, "'note' can input"},
		{"is empty", "attr-note", schema.RestrictionCondition{Type: schema.EqualsCondition, Value: ptr("")}, "'note' is empty"},
		{"does not equal", "attr-note", schema.RestrictionCondition{Type: schema.NotEqualsCondition, Value: ptr("x")}, "'note' does not equal 'x'"},
		{"does not match", "attr-note", schema.RestrictionCondition{Type: schema.NotMatchesCondition, Value: ptr("[0-9]")}, "'note' does not match '[0-9]'"},
		{"unknown choice id", "attr-color", schema.RestrictionCondition{Type: schema.EqualsCondition, Value: ptr("c9")}, "'color' equals 'c9'"},
		{"unknown attribute", "gone", schema.RestrictionCondition{Type: schema.EqualsCondition, Value: ptr("v")}, "'gone' equals 'v'"},
		{"unknown condition", "attr-note", schema.RestrictionCondition{Type: "Between"}, `'note' has unknown condition "Between"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := schema.Restriction{AdditionalDataDefinitionID: tt.attrID, Condition: tt.cond}
			assert.Equal(t, tt.want, FormatRestriction(a, r, false))
		})
	}

	r := schema.Restriction{AdditionalDataDefinitionID: "gone", Condition: schema.RestrictionCondition{Type: schema.CanInputCondition}}
	assert.Equal(t, "(unknown) 'gone' can input", FormatRestriction(a, r, true))
}

func TestFilterRestrictions(t *testing.T) {
	s := sampleSpecs()
	a := NewAccessor(s)

	all, err := FilterRestrictions(a, s.Restrictions, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	byAttr, err := FilterRestrictions(a, s.Restrictions, []string{"color"}, nil)
	require.NoError(t, err)
	require.Len(t, byAttr, 1)
	assert.Equal(t, "attr-color", byAttr[0].AdditionalDataDefinitionID)

	byLabel, err := FilterRestrictions(a, s.Restrictions, nil, []string{"bike"})
	require.NoError(t, err)
	require.Len(t, byLabel, 2)
	assert.Equal(t, "attr-note", byLabel[0].AdditionalDataDefinitionID)
	assert.Equal(t, "attr-occluded", byLabel[1].AdditionalDataDefinitionID)
	assert.Len(t, s.Restrictions, 5)

	_, err = FilterRestrictions(a, s.Restrictions, []string{"note"}, nil)
	assert.ErrorIs(t, err, ErrAmbiguous)
}
