package validation

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateTimeLayouts are the timestamp shapes recognised as date-time strings.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
}

// InferSchema derives a minimal schema describing v.
//
// Objects list every member as required. Arrays describe their items from
// the first element only, so a heterogeneous array gets the schema of its
// first element; an empty array gets an empty items schema. Strings are
// tagged with a date-time, email or uri format when they look like one.
func InferSchema(v jsontree.Value) jsontree.Value {
	switch v.Kind {
	case jsontree.ObjectKind:
		props := make([]jsontree.Field, 0, len(v.Fields))
		required := make([]jsontree.Value, 0, len(v.Fields))
		for _, f := range v.Fields {
			props = append(props, jsontree.Field{Key: f.Key, Value: InferSchema(f.Value)})
			required = append(required, jsontree.FromString(f.Key))
		}
		return jsontree.FromFields(
			typeField("object"),
			jsontree.Field{Key: "properties", Value: jsontree.FromFields(props...)},
			jsontree.Field{Key: "required", Value: jsontree.FromItems(required...)},
		)
	case jsontree.ArrayKind:
		items := jsontree.FromFields()
		if len(v.Items) > 0 {
			items = InferSchema(v.Items[0])
		}
		return jsontree.FromFields(
			typeField("array"),
			jsontree.Field{Key: "items", Value: items},
		)
	case jsontree.StringKind:
		if format := detectFormat(v.Str); format != "" {
			return jsontree.FromFields(
				typeField("string"),
				jsontree.Field{Key: "format", Value: jsontree.FromString(format)},
			)
		}
		return jsontree.FromFields(typeField("string"))
	default:
		return jsontree.FromFields(typeField(v.Kind.String()))
	}
}

func typeField(name string) jsontree.Field {
	return jsontree.Field{Key: "type", Value: jsontree.FromString(name)}
}

func detectFormat(s string) string {
	switch {
	case isDateTime(s):
		return "date-time"
	case emailPattern.MatchString(s):
		return "email"
	case isURI(s):
		return "uri"
	default:
		return ""
	}
}

func isDateTime(s string) bool {
	if !strings.Contains(s, "T") {
		return false
	}
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isURI(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return u.Host != "" || u.Opaque != "" || u.Path != ""
}
