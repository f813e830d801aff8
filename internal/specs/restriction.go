package specs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/annofabcli/schema"
)

// FormatRestriction renders a restriction as an English sentence, prefixed
// with the attribute type in parentheses when showType is set.
func FormatRestriction(a *Accessor, r schema.Restriction, showType bool) string {
	text := formatCondition(a, r.AdditionalDataDefinitionID, r.Condition)
	if !showType {
		return text
	}
	typ := "unknown"
	if d, err := a.AttributeByID(r.AdditionalDataDefinitionID); err == nil {
		typ = string(d.Type)
	}
	return fmt.Sprintf("(%s) %s", typ, text)
}

func formatCondition(a *Accessor, attrID string, c schema.RestrictionCondition) string {
	subject := quote(displayName(a.AttributeName(attrID), attrID))
	value := ""
	if c.Value != nil {
		value = *c.Value
	}

	switch c.Type {
	case schema.CanInputCondition:
		if c.Enable != nil && !*c.Enable {
			return subject + " can not input"
		}
		return subject + " can input"
	case schema.EqualsCondition:
		if value == "" {
			return subject + " is empty"
		}
		return subject + " equals " + quote(a.valueText(attrID, value))
	case schema.NotEqualsCondition:
		if value == "" {
			return subject + " is not empty"
		}
		return subject + " does not equal " + quote(a.valueText(attrID, value))
	case schema.MatchesCondition:
		return subject + " matches " + quote(value)
	case schema.NotMatchesCondition:
		return subject + " does not match " + quote(value)
	case schema.HasLabelCondition:
		names := make([]string, len(c.Labels))
		for i, id := range c.Labels {
			names[i] = quote(displayName(a.LabelName(id), id))
		}
		return subject + " has label " + strings.Join(names, ", ")
	case schema.ImplyCondition:
		var then, premise string
		if c.Condition != nil {
			then = formatCondition(a, attrID, *c.Condition)
		}
		if c.Premise != nil {
			premise = formatCondition(a, c.Premise.AdditionalDataDefinitionID, c.Premise.Condition)
		}
		return then + " IF " + premise
	default:
		return fmt.Sprintf("%s has unknown condition %q", subject, c.Type)
	}
}

// valueText shows a choice id as its English name for choice attributes.
func (a *Accessor) valueText(attrID, value string) string {
	d, err := a.AttributeByID(attrID)
	if err != nil || !d.Type.IsChoiceType() {
		return value
	}
	return displayName(a.ChoiceName(attrID, value), value)
}

func quote(s string) string {
	return "'" + s + "'"
}

// FilterRestrictions keeps restrictions on the given attributes, or on
// attributes used by the given labels. Both filters empty keeps everything.
func FilterRestrictions(a *Accessor, restrictions []schema.Restriction, attrTargets, labelTargets []string) ([]schema.Restriction, error) {
	if len(attrTargets) == 0 && len(labelTargets) == 0 {
		return restrictions, nil
	}
	wanted := make(map[string]struct{})
	for _, t := range attrTargets {
		d, err := a.Attribute(t, nil)
		if err != nil {
			return nil, err
		}
		wanted[d.AdditionalDataDefinitionID] = struct{}{}
	}
	for _, t := range labelTargets {
		l, err := a.Label(t)
		if err != nil {
			return nil, err
		}
		for _, id := range l.AdditionalDataDefinitions {
			wanted[id] = struct{}{}
		}
	}
	return slices.DeleteFunc(slices.Clone(restrictions), func(r schema.Restriction) bool {
		_, ok := wanted[r.AdditionalDataDefinitionID]
		return !ok
	}), nil
}
