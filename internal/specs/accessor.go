// Package specs resolves human readable label, attribute and choice names
// against a project's annotation specs and rewrites the ids they reference.
package specs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/annofabcli/schema"
)

// Resolution errors. Callers check them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrAmbiguous    = errors.New("ambiguous name")
	ErrInvalidValue = errors.New("invalid value")
)

// Accessor looks up labels, attributes and choices by id or English name.
type Accessor struct {
	specs     *schema.AnnotationSpecs
	labelByID map[string]int
	attrByID  map[string]int
}

// NewAccessor indexes the specs. A nil specs behaves like empty specs.
func NewAccessor(s *schema.AnnotationSpecs) *Accessor {
	if s == nil {
		s = &schema.AnnotationSpecs{}
	}
	a := &Accessor{
		specs:     s,
		labelByID: make(map[string]int, len(s.Labels)),
		attrByID:  make(map[string]int, len(s.Additionals)),
	}
	for i, l := range s.Labels {
		a.labelByID[l.LabelID] = i
	}
	for i, d := range s.Additionals {
		a.attrByID[d.AdditionalDataDefinitionID] = i
	}
	return a
}

// Specs returns the indexed specs.
func (a *Accessor) Specs() *schema.AnnotationSpecs {
	return a.specs
}

// Labels returns every label in specs order.
func (a *Accessor) Labels() []schema.Label {
	return a.specs.Labels
}

// Attributes returns every attribute in specs order.
func (a *Accessor) Attributes() []schema.AdditionalDataDefinition {
	return a.specs.Additionals
}

// LabelByID returns the label with exactly this id.
func (a *Accessor) LabelByID(id string) (*schema.Label, error) {
	i, ok := a.labelByID[id]
	if !ok {
		return nil, fmt.Errorf("label_id %q: %w", id, ErrNotFound)
	}
	return &a.specs.Labels[i], nil
}

// AttributeByID returns the attribute with exactly this id.
func (a *Accessor) AttributeByID(id string) (*schema.AdditionalDataDefinition, error) {
	i, ok := a.attrByID[id]
	if !ok {
		return nil, fmt.Errorf("additional_data_definition_id %q: %w", id, ErrNotFound)
	}
	return &a.specs.Additionals[i], nil
}

// Label resolves a label by id, then by English name.
func (a *Accessor) Label(nameOrID string) (*schema.Label, error) {
	if l, err := a.LabelByID(nameOrID); err == nil {
		return l, nil
	}
	i, err := resolveByName("label", nameOrID, a.specs.Labels, func(l schema.Label) string {
		return l.LabelName.English()
	})
	if err != nil {
		return nil, err
	}
	return &a.specs.Labels[i], nil
}

// Attribute resolves an attribute by id, then by English name. When label is
// not nil only the attributes the label references are candidates.
func (a *Accessor) Attribute(nameOrID string, label *schema.Label) (*schema.AdditionalDataDefinition, error) {
	candidates := a.attributeIndexes(label)

	for _, i := range candidates {
		if a.specs.Additionals[i].AdditionalDataDefinitionID == nameOrID {
			return &a.specs.Additionals[i], nil
		}
	}

	scope := "attribute"
	if label != nil {
		scope = fmt.Sprintf("attribute of label %q", label.LabelName.English())
	}
	var matched []int
	for _, i := range candidates {
		if a.specs.Additionals[i].Name.English() == nameOrID {
			matched = append(matched, i)
		}
	}
	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("%s %q: %w", scope, nameOrID, ErrNotFound)
	case 1:
		return &a.specs.Additionals[matched[0]], nil
	default:
		return nil, fmt.Errorf("%s %q matches %d attributes: %w", scope, nameOrID, len(matched), ErrAmbiguous)
	}
}

// Choice resolves a choice of attr by choice id, then by English name.
func (a *Accessor) Choice(attr *schema.AdditionalDataDefinition, nameOrID string) (*schema.Choice, error) {
	for i := range attr.Choices {
		if attr.Choices[i].ChoiceID == nameOrID {
			return &attr.Choices[i], nil
		}
	}
	scope := fmt.Sprintf("choice of attribute %q", attr.Name.English())
	i, err := resolveByName(scope, nameOrID, attr.Choices, func(c schema.Choice) string {
		return c.Name.English()
	})
	if err != nil {
		return nil, err
	}
	return &attr.Choices[i], nil
}

// LabelName returns the English name of a label id, or "" when unknown.
func (a *Accessor) LabelName(id string) string {
	if l, err := a.LabelByID(id); err == nil {
		return l.LabelName.English()
	}
	return ""
}

// AttributeName returns the English name of an attribute id, or "" when unknown.
func (a *Accessor) AttributeName(id string) string {
	if d, err := a.AttributeByID(id); err == nil {
		return d.Name.English()
	}
	return ""
}

// ChoiceName returns the English name of a choice, or "" when unknown.
func (a *Accessor) ChoiceName(attrID, choiceID string) string {
	d, err := a.AttributeByID(attrID)
	if err != nil {
		return ""
	}
	for _, c := range d.Choices {
		if c.ChoiceID == choiceID {
			return c.Name.English()
		}
	}
	return ""
}

// LabelsOfAttribute lists the labels referencing an attribute, in specs order.
func (a *Accessor) LabelsOfAttribute(attrID string) []schema.Label {
	var out []schema.Label
	for _, l := range a.specs.Labels {
		if slices.Contains(l.AdditionalDataDefinitions, attrID) {
			out = append(out, l)
		}
	}
	return out
}

// displayName returns the English name, falling back to the id.
func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func (a *Accessor) attributeIndexes(label *schema.Label) []int {
	if label == nil {
		idx := make([]int, len(a.specs.Additionals))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	idx := make([]int, 0, len(label.AdditionalDataDefinitions))
	for _, id := range label.AdditionalDataDefinitions {
		if i, ok := a.attrByID[id]; ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// resolveByName returns the index of the single item whose English name is name.
func resolveByName[T any](kind, name string, items []T, english func(T) string) (int, error) {
	found := -1
	count := 0
	for i, item := range items {
		if english(item) == name {
			if found < 0 {
				found = i
			}
			count++
		}
	}
	switch count {
	case 0:
		return -1, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	case 1:
		return found, nil
	default:
		return -1, fmt.Errorf("%s %q matches %d items: %w", kind, name, count, ErrAmbiguous)
	}
}
