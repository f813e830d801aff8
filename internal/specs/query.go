package specs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/annofabcli/schema"
)

// AnnotationQueryForCLI is the annotation query users write: label and
// attributes are addressed by English name or id.
type AnnotationQueryForCLI struct {
	Label      string         `json:"label,omitempty"`
	LabelID    string         `json:"label_id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ParseAnnotationQuery decodes a CLI query. Numbers keep their literal form
// so that integer attributes can reject fractions.
func ParseAnnotationQuery(text string) (AnnotationQueryForCLI, error) {
	var q AnnotationQueryForCLI
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		return q, fmt.Errorf("invalid annotation query: %w", err)
	}
	return q, nil
}

// ToAPIQuery resolves every name of the query into ids.
func (q AnnotationQueryForCLI) ToAPIQuery(a *Accessor) (schema.AnnotationQueryForAPI, error) {
	var out schema.AnnotationQueryForAPI

	var label *schema.Label
	var err error
	switch {
	case q.LabelID != "":
		label, err = a.LabelByID(q.LabelID)
	case q.Label != "":
		label, err = a.Label(q.Label)
	}
	if err != nil {
		return out, err
	}
	if label != nil {
		out.LabelID = label.LabelID
	}

	seen := make(map[string]string, len(q.Attributes))
	for key, value := range q.Attributes {
		def, err := a.Attribute(key, label)
		if err != nil {
			return out, err
		}
		if other, ok := seen[def.AdditionalDataDefinitionID]; ok {
			return out, fmt.Errorf("attributes %q and %q name the same attribute: %w", other, key, ErrAmbiguous)
		}
		seen[def.AdditionalDataDefinitionID] = key
		d, err := a.ToAdditionalData(def, value)
		if err != nil {
			return out, err
		}
		out.Attributes = append(out.Attributes, d)
	}
	slices.SortFunc(out.Attributes, func(x, y schema.AdditionalData) int {
		return strings.Compare(x.AdditionalDataDefinitionID, y.AdditionalDataDefinitionID)
	})
	return out, nil
}

// FromAPIQuery renders an API query with English names for display.
func FromAPIQuery(a *Accessor, q schema.AnnotationQueryForAPI) AnnotationQueryForCLI {
	var out AnnotationQueryForCLI
	if q.LabelID != "" {
		out.Label = displayName(a.LabelName(q.LabelID), q.LabelID)
	}
	if len(q.Attributes) > 0 {
		out.Attributes = ToSimpleAttributes(a, q.Attributes)
	}
	return out
}

// String renders the query as compact JSON.
func (q AnnotationQueryForCLI) String() string {
	b, _ := json.Marshal(q)
	return string(b)
}
