package specs

import (
	"testing"

	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAPIQuery(t *testing.T) {
	a := NewAccessor(sampleSpecs())

	q, err := ParseAnnotationQuery(`{"label":"car","attributes":{"occluded":true,"color":"blue","count":"3"}}`)
	require.NoError(t, err)

	got, err := q.ToAPIQuery(a)
	require.NoError(t, err)

	assert.Equal(t, schema.AnnotationQueryForAPI{
		LabelID: "lbl-car",
		Attributes: []schema.AdditionalData{
			{AdditionalDataDefinitionID: "attr-color", Choice: ptr("c2")},
			{AdditionalDataDefinitionID: "attr-count", Integer: ptr(3)},
			{AdditionalDataDefinitionID: "attr-occluded", Flag: ptr(true)},
		},
	}, got)
}

func TestToAPIQuery_Cases(t *testing.T) {
	a := NewAccessor(sampleSpecs())

	tests := []struct {
		name      string
		query     string
		wantLabel string
		wantAttrs []schema.AdditionalData
		wantErr   error
	}{
		{name: "empty query", query: `{}`},
		{name: "label id", query: `{"label_id":"lbl-bike"}`, wantLabel: "lbl-bike"},
		{name: "label id must be an id", query: `{"label_id":"bike"}`, wantErr: ErrNotFound},
		{name: "label id wins over label", query: `{"label":"car","label_id":"lbl-bike"}`, wantLabel: "lbl-bike"},
		{name: "unknown label", query: `{"label":"truck"}`, wantErr: ErrNotFound},
		{name: "ambiguous label", query: `{"label":"person"}`, wantErr: ErrAmbiguous},
		{
			name:      "integer number",
			query:     `{"attributes":{"count":7}}`,
			wantAttrs: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-count", Integer: ptr(7)}},
		},
		{
			name:      "whole number with decimal point",
			query:     `{"attributes":{"count":2.0}}`,
			wantAttrs: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-count", Integer: ptr(2)}},
		},
		{
			name:      "whole number with exponent",
			query:     `{"attributes":{"count":1e2}}`,
			wantAttrs: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-count", Integer: ptr(100)}},
		},
		{name: "integer out of range", query: `{"attributes":{"count":1e300}}`, wantErr: ErrInvalidValue},
		{name: "fractional integer", query: `{"attributes":{"count":7.5}}`, wantErr: ErrInvalidValue},
		{name: "same attribute by name and id", query: `{"attributes":{"count":1,"attr-count":2}}`, wantErr: ErrAmbiguous},
		{name: "non numeric integer", query: `{"attributes":{"count":"many"}}`, wantErr: ErrInvalidValue},
		{name: "flag as string", query: `{"attributes":{"occluded":"true"}}`, wantErr: ErrInvalidValue},
		{name: "null value", query: `{"attributes":{"occluded":null}}`, wantErr: ErrInvalidValue},
		{
			name:      "choice by id",
			query:     `{"attributes":{"color":"c1"}}`,
			wantAttrs: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-color", Choice: ptr("c1")}},
		},
		{name: "unknown choice", query: `{"attributes":{"color":"green"}}`, wantErr: ErrNotFound},
		{name: "ambiguous attribute without label", query: `{"attributes":{"note":"x"}}`, wantErr: ErrAmbiguous},
		{
			name:      "attribute scoped by label",
			query:     `{"label":"bike","attributes":{"note":"x"}}`,
			wantLabel: "lbl-bike",
			wantAttrs: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-note", Comment: ptr("x")}},
		},
		{name: "attribute not in label", query: `{"label":"bike","attributes":{"count":1}}`, wantErr: ErrNotFound},
		{
			name:      "empty comment",
			query:     `{"attributes":{"attr-note":""}}`,
			wantAttrs: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-note", Comment: ptr("")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseAnnotationQuery(tt.query)
			require.NoError(t, err)

			got, err := q.ToAPIQuery(a)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, got.LabelID)
			assert.Equal(t, tt.wantAttrs, got.Attributes)
		})
	}
}

func TestParseAnnotationQuery_Invalid(t *testing.T) {
	_, err := ParseAnnotationQuery(`{"labels":"car"}`)
	assert.Error(t, err)

	_, err = ParseAnnotationQuery(`[1,2]`)
	assert.Error(t, err)
}

func TestFromAPIQuery(t *testing.T) {
	a := NewAccessor(sampleSpecs())
	q := schema.AnnotationQueryForAPI{
		LabelID: "lbl-car",
		Attributes: []schema.AdditionalData{
			{AdditionalDataDefinitionID: "attr-color", Choice: ptr("c2")},
			{AdditionalDataDefinitionID: "attr-count", Integer: ptr(3)},
			{AdditionalDataDefinitionID: "unknown-attr", Flag: ptr(false)},
		},
	}

	got := FromAPIQuery(a, q)
	assert.Equal(t, "car", got.Label)
	assert.Equal(t, map[string]any{"color": "blue", "count": 3, "unknown-attr": false}, got.Attributes)
	assert.JSONEq(t, `{"label":"car","attributes":{"color":"blue","count":3,"unknown-attr":false}}`, got.String())
}

func TestAnnotationQueryMatch(t *testing.T) {
	a := NewAccessor(sampleSpecs())
	q, err := ParseAnnotationQuery(`{"label":"car","attributes":{"color":"red"}}`)
	require.NoError(t, err)
	apiQuery, err := q.ToAPIQuery(a)
	require.NoError(t, err)

	match := schema.AnnotationDetail{
		LabelID: "lbl-car",
		AdditionalDataList: []schema.AdditionalData{
			{AdditionalDataDefinitionID: "attr-occluded", Flag: ptr(true)},
			{AdditionalDataDefinitionID: "attr-color", Choice: ptr("c1")},
		},
	}
	otherChoice := schema.AnnotationDetail{
		LabelID:            "lbl-car",
		AdditionalDataList: []schema.AdditionalData{{AdditionalDataDefinitionID: "attr-color", Choice: ptr("c2")}},
	}
	otherLabel := schema.AnnotationDetail{
		LabelID:            "lbl-bike",
		AdditionalDataList: match.AdditionalDataList,
	}

	assert.True(t, apiQuery.Match(match))
	assert.False(t, apiQuery.Match(otherChoice))
	assert.False(t, apiQuery.Match(otherLabel))
	assert.True(t, schema.AnnotationQueryForAPI{}.Match(otherLabel))
}
