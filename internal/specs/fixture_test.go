package specs

import "github.com/huangsam/annofabcli/schema"

func ptr[T any](v T) *T { return &v }

// sampleSpecs returns a small specs document used across the package tests.
func sampleSpecs() *schema.AnnotationSpecs {
	return &schema.AnnotationSpecs{
		ProjectID: "prj1",
		Labels: []schema.Label{
			{
				LabelID:                   "lbl-car",
				LabelName:                 schema.NewMessage("car", "車"),
				AnnotationType:            schema.BoundingBoxType,
				AdditionalDataDefinitions: []string{"attr-occluded", "attr-color", "attr-count"},
			},
			{
				LabelID:                   "lbl-bike",
				LabelName:                 schema.NewMessage("bike", "自転車"),
				AnnotationType:            schema.PolygonType,
				AdditionalDataDefinitions: []string{"attr-occluded", "attr-note"},
			},
			{LabelID: "lbl-dup1", LabelName: schema.NewMessage("person", ""), AnnotationType: schema.PointType, AdditionalDataDefinitions: []string{}},
			{LabelID: "lbl-dup2", LabelName: schema.NewMessage("person", ""), AnnotationType: schema.PointType, AdditionalDataDefinitions: []string{}},
		},
		Additionals: []schema.AdditionalDataDefinition{
			{AdditionalDataDefinitionID: "attr-occluded", Name: schema.NewMessage("occluded", "隠れ"), Type: schema.FlagAttr},
			{
				AdditionalDataDefinitionID: "attr-color",
				Name:                       schema.NewMessage("color", "色"),
				Type:                       schema.ChoiceAttr,
				Default:                    "c1",
				Choices: []schema.Choice{
					{ChoiceID: "c1", Name: schema.NewMessage("red", "赤"), IsDefault: true},
					{ChoiceID: "c2", Name: schema.NewMessage("blue", "青")},
				},
			},
			{AdditionalDataDefinitionID: "attr-count", Name: schema.NewMessage("count", ""), Type: schema.IntegerAttr},
			{AdditionalDataDefinitionID: "attr-note", Name: schema.NewMessage("note", ""), Type: schema.CommentAttr},
			{AdditionalDataDefinitionID: "attr-note2", Name: schema.NewMessage("note", ""), Type: schema.TextAttr},
		},
		Restrictions: []schema.Restriction{
			{
				AdditionalDataDefinitionID: "attr-note",
				Condition:                  schema.RestrictionCondition{Type: schema.MatchesCondition, Value: ptr("^[a-z]+$")},
			},
			{
				AdditionalDataDefinitionID: "attr-color",
				Condition:                  schema.RestrictionCondition{Type: schema.EqualsCondition, Value: ptr("c1")},
			},
			{
				AdditionalDataDefinitionID: "attr-count",
				Condition: schema.RestrictionCondition{
					Type: schema.ImplyCondition,
					Premise: &schema.RestrictionPremise{
						AdditionalDataDefinitionID: "attr-color",
						Condition:                  schema.RestrictionCondition{Type: schema.EqualsCondition, Value: ptr("c2")},
					},
					Condition: &schema.RestrictionCondition{Type: schema.NotEqualsCondition, Value: ptr("")},
				},
			},
			{
				AdditionalDataDefinitionID: "attr-occluded",
				Condition:                  schema.RestrictionCondition{Type: schema.CanInputCondition, Enable: ptr(false)},
			},
			{
				AdditionalDataDefinitionID: "attr-note2",
				Condition:                  schema.RestrictionCondition{Type: schema.HasLabelCondition, Labels: []string{"lbl-car", "lbl-bike"}},
			},
		},
		FormatVersion: "3.0.0",
		HistoryID:     "hist1",
	}
}
