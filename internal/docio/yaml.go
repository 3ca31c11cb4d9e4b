package docio

import (
	"fmt"
	"math"

	"github.com/goccy/go-yaml"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

func decodeYAML(data []byte) (jsontree.Value, error) {
	var raw any
	if err := yaml.UnmarshalWithOptions(data, &raw, yaml.UseOrderedMap()); err != nil {
		return jsontree.Value{}, fmt.Errorf("parse yaml: %w", err)
	}
	return jsontree.FromAny(raw)
}

func encodeYAML(v jsontree.Value) ([]byte, error) {
	out, err := yaml.Marshal(toYAML(v))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

// toYAML converts v into the shapes goccy/go-yaml encodes in order.
// Integral numbers become int64 so they print without a fraction.
func toYAML(v jsontree.Value) any {
	switch v.Kind {
	case jsontree.BoolKind:
		return v.Bool
	case jsontree.NumberKind:
		if v.Number == math.Trunc(v.Number) && math.Abs(v.Number) < 1<<53 {
			return int64(v.Number)
		}
		return v.Number
	case jsontree.StringKind:
		return v.Str
	case jsontree.ObjectKind:
		ms := make(yaml.MapSlice, 0, len(v.Fields))
		for _, f := range v.Fields {
			ms = append(ms, yaml.MapItem{Key: f.Key, Value: toYAML(f.Value)})
		}
		return ms
	case jsontree.ArrayKind:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = toYAML(item)
		}
		return items
	}
	return nil
}
