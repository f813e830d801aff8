package specs

import (
	"fmt"

	"github.com/huangsam/annofabcli/schema"
)

// ConvertLabelsV2ToV1 embeds the full attribute definitions into each label,
// keeping the order of the label's id list.
func ConvertLabelsV2ToV1(labels []schema.Label, additionals []schema.AdditionalDataDefinition) ([]schema.LabelV1, error) {
	byID := make(map[string]schema.AdditionalDataDefinition, len(additionals))
	for _, d := range additionals {
		byID[d.AdditionalDataDefinitionID] = d
	}

	out := make([]schema.LabelV1, 0, len(labels))
	for _, l := range labels {
		defs := make([]schema.AdditionalDataDefinition, 0, len(l.AdditionalDataDefinitions))
		for _, id := range l.AdditionalDataDefinitions {
			d, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("label %q (label_id=%s) references additional_data_definition_id %q: %w",
					l.LabelName.English(), l.LabelID, id, ErrNotFound)
			}
			defs = append(defs, d)
		}
		out = append(out, schema.LabelV1{
			LabelID:                   l.LabelID,
			LabelName:                 l.LabelName,
			Keybind:                   l.Keybind,
			AnnotationType:            l.AnnotationType,
			BoundingBoxMetadata:       l.BoundingBoxMetadata,
			SegmentationMetadata:      l.SegmentationMetadata,
			AdditionalDataDefinitions: defs,
			Color:                     l.Color,
			AnnotationEditorFeature:   l.AnnotationEditorFeature,
			AllowOutOfImageBounds:     l.AllowOutOfImageBounds,
			Metadata:                  l.Metadata,
			FieldValues:               l.FieldValues,
		})
	}
	return out, nil
}

// ConvertLabelsV1ToV2 splits embedded definitions back out. Definitions are
// collected by id in first-seen order; the first occurrence wins.
func ConvertLabelsV1ToV2(labels []schema.LabelV1) ([]schema.Label, []schema.AdditionalDataDefinition) {
	seen := make(map[string]struct{})
	var additionals []schema.AdditionalDataDefinition
	out := make([]schema.Label, 0, len(labels))

	for _, l := range labels {
		ids := make([]string, 0, len(l.AdditionalDataDefinitions))
		for _, d := range l.AdditionalDataDefinitions {
			ids = append(ids, d.AdditionalDataDefinitionID)
			if _, ok := seen[d.AdditionalDataDefinitionID]; ok {
				continue
			}
			seen[d.AdditionalDataDefinitionID] = struct{}{}
			additionals = append(additionals, d)
		}
		out = append(out, schema.Label{
			LabelID:                   l.LabelID,
			LabelName:                 l.LabelName,
			Keybind:                   l.Keybind,
			AnnotationType:            l.AnnotationType,
			BoundingBoxMetadata:       l.BoundingBoxMetadata,
			SegmentationMetadata:      l.SegmentationMetadata,
			AdditionalDataDefinitions: ids,
			Color:                     l.Color,
			AnnotationEditorFeature:   l.AnnotationEditorFeature,
			AllowOutOfImageBounds:     l.AllowOutOfImageBounds,
			Metadata:                  l.Metadata,
			FieldValues:               l.FieldValues,
		})
	}
	return out, additionals
}

// ToSpecsV1 converts a whole V2/V3 document to the V1 layout.
func ToSpecsV1(s *schema.AnnotationSpecs) (*schema.AnnotationSpecsV1, error) {
	labels, err := ConvertLabelsV2ToV1(s.Labels, s.Additionals)
	if err != nil {
		return nil, err
	}
	return &schema.AnnotationSpecsV1{
		ProjectID:         s.ProjectID,
		Labels:            labels,
		Restrictions:      s.Restrictions,
		InspectionPhrases: s.InspectionPhrases,
		FormatVersion:     s.FormatVersion,
		HistoryID:         s.HistoryID,
		UpdatedDatetime:   s.UpdatedDatetime,
		Option:            s.Option,
		AutoMarking:       s.AutoMarking,
		Metadata:          s.Metadata,
	}, nil
}
