package specs

import (
	"fmt"
	"regexp"

	"github.com/huangsam/annofabcli/schema"
)

// validIDPattern is the set of characters AnnoFab accepts in ids.
var validIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// Skip reasons.
const (
	ReasonNoEnglishName = "English name is empty"
	ReasonInvalidID     = "English name is not a valid id"
	ReasonAmbiguous     = "English name is shared with another item"
	ReasonCollision     = "new id is already used by another item"
	ReasonUnresolved    = "target could not be resolved"
)

// IDChange is one applied id replacement. Scope is the attribute id for
// choices and empty otherwise.
type IDChange struct {
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
	OldID string `json:"old_id" yaml:"old_id"`
	NewID string `json:"new_id" yaml:"new_id"`
}

// SkippedID is an item left unchanged, with the reason.
type SkippedID struct {
	Scope  string `json:"scope,omitempty" yaml:"scope,omitempty"`
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// ReplaceResult reports what a Replace*ID call did.
type ReplaceResult struct {
	Changes []IDChange
	Skipped []SkippedID
}

// Map returns old id -> new id. Choice changes are keyed by old id alone,
// so use Changes when several attributes are involved.
func (r *ReplaceResult) Map() map[string]string {
	m := make(map[string]string, len(r.Changes))
	for _, c := range r.Changes {
		m[c.OldID] = c.NewID
	}
	return m
}

// idItem is the view of a label, attribute or choice the planner needs.
type idItem struct {
	id   string
	name string
}

// planRenames decides the new id of each candidate. all holds every item of
// the scope, candidates the indexes into all that should be renamed.
func planRenames(scope string, all []idItem, candidates []int) (map[string]string, []IDChange, []SkippedID) {
	nameCount := make(map[string]int, len(all))
	used := make(map[string]struct{}, len(all))
	for _, it := range all {
		if it.name != "" {
			nameCount[it.name]++
		}
		used[it.id] = struct{}{}
	}

	mapping := make(map[string]string)
	var changes []IDChange
	var skipped []SkippedID
	skip := func(it idItem, reason string) {
		skipped = append(skipped, SkippedID{Scope: scope, ID: it.id, Name: it.name, Reason: reason})
	}

	for _, i := range candidates {
		it := all[i]
		switch {
		case it.name == "":
			skip(it, ReasonNoEnglishName)
			continue
		case it.name == it.id:
			continue
		case !validIDPattern.MatchString(it.name):
			skip(it, ReasonInvalidID)
			continue
		case nameCount[it.name] > 1:
			skip(it, ReasonAmbiguous)
			continue
		}
		if _, taken := used[it.name]; taken {
			skip(it, ReasonCollision)
			continue
		}
		delete(used, it.id)
		used[it.name] = struct{}{}
		mapping[it.id] = it.name
		changes = append(changes, IDChange{Scope: scope, OldID: it.id, NewID: it.name})
	}
	return mapping, changes, skipped
}

// selectTargets maps target names or ids to indexes. Empty targets select everything.
func selectTargets(targets []string, count int, resolve func(string) (int, error)) ([]int, []SkippedID) {
	if len(targets) == 0 {
		idx := make([]int, count)
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	var idx []int
	var skipped []SkippedID
	seen := make(map[int]struct{})
	for _, t := range targets {
		i, err := resolve(t)
		if err != nil {
			skipped = append(skipped, SkippedID{ID: t, Name: t, Reason: fmt.Sprintf("%s: %v", ReasonUnresolved, err)})
			continue
		}
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		idx = append(idx, i)
	}
	return idx, skipped
}

// ReplaceLabelID sets label_id to the English label name for each target label
// (all labels when targets is empty) and rewrites every reference to it.
func ReplaceLabelID(s *schema.AnnotationSpecs, targets []string) *ReplaceResult {
	a := NewAccessor(s)
	all := make([]idItem, len(s.Labels))
	for i, l := range s.Labels {
		all[i] = idItem{id: l.LabelID, name: l.LabelName.English()}
	}
	candidates, unresolved := selectTargets(targets, len(all), func(t string) (int, error) {
		l, err := a.Label(t)
		if err != nil {
			return -1, err
		}
		return a.labelByID[l.LabelID], nil
	})

	mapping, changes, skipped := planRenames("", all, candidates)
	for i := range s.Labels {
		if n, ok := mapping[s.Labels[i].LabelID]; ok {
			s.Labels[i].LabelID = n
		}
	}
	for i := range s.Additionals {
		renameAll(s.Additionals[i].LabelIDs, mapping)
	}
	for i := range s.Restrictions {
		rewriteLabels(&s.Restrictions[i].Condition, mapping)
	}
	return &ReplaceResult{Changes: changes, Skipped: append(unresolved, skipped...)}
}

// ReplaceAttributeID sets additional_data_definition_id to the English
// attribute name for each target attribute and rewrites every reference to it.
func ReplaceAttributeID(s *schema.AnnotationSpecs, targets []string) *ReplaceResult {
	a := NewAccessor(s)
	all := make([]idItem, len(s.Additionals))
	for i, d := range s.Additionals {
		all[i] = idItem{id: d.AdditionalDataDefinitionID, name: d.Name.English()}
	}
	candidates, unresolved := selectTargets(targets, len(all), func(t string) (int, error) {
		d, err := a.Attribute(t, nil)
		if err != nil {
			return -1, err
		}
		return a.attrByID[d.AdditionalDataDefinitionID], nil
	})

	mapping, changes, skipped := planRenames("", all, candidates)
	for i := range s.Additionals {
		if n, ok := mapping[s.Additionals[i].AdditionalDataDefinitionID]; ok {
			s.Additionals[i].AdditionalDataDefinitionID = n
		}
	}
	for i := range s.Labels {
		renameAll(s.Labels[i].AdditionalDataDefinitions, mapping)
	}
	for i := range s.Restrictions {
		r := &s.Restrictions[i]
		if n, ok := mapping[r.AdditionalDataDefinitionID]; ok {
			r.AdditionalDataDefinitionID = n
		}
		rewritePremiseAttributes(&r.Condition, mapping)
	}
	return &ReplaceResult{Changes: changes, Skipped: append(unresolved, skipped...)}
}

// ReplaceChoiceID sets choice_id to the English choice name within each
// target attribute (all choice and select attributes when targets is empty)
// and rewrites restriction values and defaults pointing to the old ids.
func ReplaceChoiceID(s *schema.AnnotationSpecs, targets []string) *ReplaceResult {
	a := NewAccessor(s)
	candidates, unresolved := selectTargets(targets, len(s.Additionals), func(t string) (int, error) {
		d, err := a.Attribute(t, nil)
		if err != nil {
			return -1, err
		}
		return a.attrByID[d.AdditionalDataDefinitionID], nil
	})

	result := &ReplaceResult{Skipped: unresolved}
	for _, ai := range candidates {
		def := &s.Additionals[ai]
		if !def.Type.IsChoiceType() {
			continue
		}
		all := make([]idItem, len(def.Choices))
		for i, c := range def.Choices {
			all[i] = idItem{id: c.ChoiceID, name: c.Name.English()}
		}
		everyChoice := make([]int, len(all))
		for i := range everyChoice {
			everyChoice[i] = i
		}

		attrID := def.AdditionalDataDefinitionID
		mapping, changes, skipped := planRenames(attrID, all, everyChoice)
		result.Changes = append(result.Changes, changes...)
		result.Skipped = append(result.Skipped, skipped...)
		if len(mapping) == 0 {
			continue
		}

		for i := range def.Choices {
			if n, ok := mapping[def.Choices[i].ChoiceID]; ok {
				def.Choices[i].ChoiceID = n
			}
		}
		if old, ok := def.Default.(string); ok {
			if n, ok := mapping[old]; ok {
				def.Default = n
			}
		}
		for i := range s.Restrictions {
			r := &s.Restrictions[i]
			rewriteChoiceValues(&r.Condition, r.AdditionalDataDefinitionID, attrID, mapping)
		}
	}
	return result
}

func renameAll(ids []string, mapping map[string]string) {
	for i, id := range ids {
		if n, ok := mapping[id]; ok {
			ids[i] = n
		}
	}
}

// rewriteLabels renames HasLabel label ids anywhere in the condition tree.
func rewriteLabels(c *schema.RestrictionCondition, mapping map[string]string) {
	if c == nil {
		return
	}
	if c.Type == schema.HasLabelCondition {
		renameAll(c.Labels, mapping)
	}
	if c.Premise != nil {
		rewriteLabels(&c.Premise.Condition, mapping)
	}
	rewriteLabels(c.Condition, mapping)
}

// rewritePremiseAttributes renames the attribute ids of Imply premises.
func rewritePremiseAttributes(c *schema.RestrictionCondition, mapping map[string]string) {
	if c == nil {
		return
	}
	if c.Premise != nil {
		if n, ok := mapping[c.Premise.AdditionalDataDefinitionID]; ok {
			c.Premise.AdditionalDataDefinitionID = n
		}
		rewritePremiseAttributes(&c.Premise.Condition, mapping)
	}
	rewritePremiseAttributes(c.Condition, mapping)
}

// rewriteChoiceValues renames Equals/NotEquals values of conditions that
// apply to attrID. condAttrID is the attribute the condition c applies to.
func rewriteChoiceValues(c *schema.RestrictionCondition, condAttrID, attrID string, mapping map[string]string) {
	if c == nil {
		return
	}
	switch c.Type {
	case schema.EqualsCondition, schema.NotEqualsCondition:
		if condAttrID == attrID && c.Value != nil {
			if n, ok := mapping[*c.Value]; ok {
				c.Value = &n
			}
		}
	case schema.ImplyCondition:
		if c.Premise != nil {
			rewriteChoiceValues(&c.Premise.Condition, c.Premise.AdditionalDataDefinitionID, attrID, mapping)
		}
		rewriteChoiceValues(c.Condition, condAttrID, attrID, mapping)
	}
}
