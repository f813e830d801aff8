package specs

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
)

// ToAdditionalData converts a CLI value into the API representation for def.
// The accepted Go types are those produced by encoding/json, with or without UseNumber.
func (a *Accessor) ToAdditionalData(def *schema.AdditionalDataDefinition, value any) (schema.AdditionalData, error) {
	out := schema.AdditionalData{AdditionalDataDefinitionID: def.AdditionalDataDefinitionID}
	name := displayName(def.Name.English(), def.AdditionalDataDefinitionID)
	if value == nil {
		return out, fmt.Errorf("attribute %q: null is not allowed: %w", name, ErrInvalidValue)
	}

	switch {
	case def.Type == schema.FlagAttr:
		b, ok := value.(bool)
		if !ok {
			return out, fmt.Errorf("attribute %q is a flag, got %v: %w", name, value, ErrInvalidValue)
		}
		out.Flag = &b
	case def.Type == schema.IntegerAttr:
		n, err := toInteger(value)
		if err != nil {
			return out, fmt.Errorf("attribute %q is an integer, got %v: %w", name, value, err)
		}
		out.Integer = &n
	case def.Type.IsChoiceType():
		s, ok := value.(string)
		if !ok {
			return out, fmt.Errorf("attribute %q is a %s, got %v: %w", name, def.Type, value, ErrInvalidValue)
		}
		c, err := a.Choice(def, s)
		if err != nil {
			return out, err
		}
		out.Choice = &c.ChoiceID
	case def.Type.IsStringType():
		s, ok := value.(string)
		if !ok {
			return out, fmt.Errorf("attribute %q is a %s, got %v: %w", name, def.Type, value, ErrInvalidValue)
		}
		out.Comment = &s
	default:
		return out, fmt.Errorf("attribute %q has unsupported type %q: %w", name, def.Type, ErrInvalidValue)
	}
	return out, nil
}

// FromAdditionalData renders an API value back to its CLI form: bool, int,
// string, or the choice's English name (its id when the choice is unknown).
func (a *Accessor) FromAdditionalData(d schema.AdditionalData) any {
	switch {
	case d.Flag != nil:
		return *d.Flag
	case d.Integer != nil:
		return *d.Integer
	case d.Choice != nil:
		return displayName(a.ChoiceName(d.AdditionalDataDefinitionID, *d.Choice), *d.Choice)
	case d.Comment != nil:
		return *d.Comment
	default:
		return nil
	}
}

// ConvertSimpleAttributes converts the English-name attribute map of a
// SimpleAnnotation detail into additional data of label. Null values mean
// "unset" and are dropped. Unknown attributes fail when strict is set and
// are skipped with a warning otherwise.
func ConvertSimpleAttributes(a *Accessor, label *schema.Label, attrs map[string]any, strict bool) ([]schema.AdditionalData, error) {
	out := make([]schema.AdditionalData, 0, len(attrs))
	for _, key := range slices.Sorted(maps.Keys(attrs)) {
		value := attrs[key]
		if value == nil {
			continue
		}
		def, err := a.Attribute(key, label)
		if err != nil {
			if strict {
				return nil, err
			}
			contract.LogWarn("Skipping attribute", err)
			continue
		}
		d, err := a.ToAdditionalData(def, value)
		if err != nil {
			if strict {
				return nil, err
			}
			contract.LogWarn("Skipping attribute", err)
			continue
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(x, y schema.AdditionalData) int {
		return strings.Compare(x.AdditionalDataDefinitionID, y.AdditionalDataDefinitionID)
	})
	return out, nil
}

// ToSimpleAttributes is the inverse of ConvertSimpleAttributes. Keys are
// English names, or ids when an attribute has no English name or shares it
// with another attribute in list.
func ToSimpleAttributes(a *Accessor, list []schema.AdditionalData) map[string]any {
	keys := make([]string, len(list))
	owners := make(map[string]map[string]struct{}, len(list))
	for i, d := range list {
		id := d.AdditionalDataDefinitionID
		keys[i] = displayName(a.AttributeName(id), id)
		if owners[keys[i]] == nil {
			owners[keys[i]] = make(map[string]struct{})
		}
		owners[keys[i]][id] = struct{}{}
	}

	out := make(map[string]any, len(list))
	for i, d := range list {
		key := keys[i]
		if len(owners[key]) > 1 {
			key = d.AdditionalDataDefinitionID
		}
		out[key] = a.FromAdditionalData(d)
	}
	return out
}

// toInteger accepts whole JSON numbers and numeric strings.
func toInteger(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return wholeFloat(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, ErrInvalidValue
		}
		return wholeFloat(f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, ErrInvalidValue
		}
		return n, nil
	default:
		return 0, ErrInvalidValue
	}
}

// wholeFloat accepts floats such as 2.0 or 1e2 that hold an int exactly.
func wholeFloat(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, ErrInvalidValue
	}
	if v < float64(math.MinInt) || v >= float64(math.MaxInt) {
		return 0, ErrInvalidValue
	}
	return int(v), nil
}
