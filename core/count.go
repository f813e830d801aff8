package core

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/huangsam/annofabcli/schema"
)

// counter aggregates annotation counts per group and label, and per
// attribute value when counting attributes.
type counter struct {
	countType schema.CountType
	counts    map[schema.AnnotationCount]int
}

func newCounter(countType schema.CountType) *counter {
	return &counter{countType: countType, counts: make(map[schema.AnnotationCount]int)}
}

// add counts one annotation detail. attrs are keyed by attribute name.
func (c *counter) add(taskID, inputDataID, label string, attrs map[string]any) {
	key := schema.AnnotationCount{TaskID: taskID, InputDataID: inputDataID, Label: label}
	if c.countType != schema.CountByAttribute {
		c.counts[key]++
		return
	}
	for name, value := range attrs {
		if value == nil {
			continue
		}
		k := key
		k.Attribute = name
		k.Value = fmt.Sprint(value)
		c.counts[k]++
	}
}

// rows returns the counts in a stable order.
func (c *counter) rows() []schema.AnnotationCount {
	out := make([]schema.AnnotationCount, 0, len(c.counts))
	for _, k := range slices.Collect(maps.Keys(c.counts)) {
		k.Count = c.counts[k]
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b schema.AnnotationCount) int {
		return cmp.Or(
			cmp.Compare(a.TaskID, b.TaskID),
			cmp.Compare(a.InputDataID, b.InputDataID),
			cmp.Compare(a.Label, b.Label),
			cmp.Compare(a.Attribute, b.Attribute),
			cmp.Compare(a.Value, b.Value),
		)
	})
	return out
}
