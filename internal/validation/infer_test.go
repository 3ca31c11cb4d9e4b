package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

func TestInferSchema(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"null", `null`, `{"type":"null"}`},
		{"boolean", `true`, `{"type":"boolean"}`},
		{"number", `1.5`, `{"type":"number"}`},
		{"plain string", `"hello"`, `{"type":"string"}`},
		{"date-time", `"2024-01-15T10:30:00Z"`, `{"type":"string","format":"date-time"}`},
		{"local date-time", `"2024-01-15T10:30:00"`, `{"type":"string","format":"date-time"}`},
		{"date only", `"2024-01-15"`, `{"type":"string"}`},
		{"email", `"ada@example.com"`, `{"type":"string","format":"email"}`},
		{"uri", `"https://example.com/x"`, `{"type":"string","format":"uri"}`},
		{"empty array", `[]`, `{"type":"array","items":{}}`},
		{"empty object", `{}`, `{"type":"object","properties":{},"required":[]}`},
		{
			"object",
			`{"name":"Ada","tags":["x"]}`,
			`{"type":"object","properties":{"name":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}}},"required":["name","tags"]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferSchema(parse(t, tt.doc))
			if diff := cmp.Diff(parse(t, tt.want), got); diff != "" {
				t.Errorf("InferSchema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInferSchemaUsesFirstArrayElement(t *testing.T) {
	got := InferSchema(parse(t, `[1,"two",{"three":3}]`))
	want := parse(t, `{"type":"array","items":{"type":"number"}}`)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("InferSchema mismatch (-want +got):\n%s", diff)
	}

	// The first element decides, so later elements can fail the result.
	errs, err := Validate(parse(t, `[1,"two"]`), got)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(errs) != 1 || !errs[0].Path.Equal(jsontree.ParsePath(1)) {
		t.Errorf("errors: got %v, want one at [1]", errs)
	}
}

func TestInferredSchemaAcceptsSource(t *testing.T) {
	doc := parse(t, `{"user":{"email":"a@b.co","joined":"2023-05-01T08:00:00+02:00","site":"http://a.io"},"ids":[1,2]}`)
	errs, err := Validate(doc, InferSchema(doc))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(errs) != 0 {
		t.Errorf("inferred schema rejected its source: %v", errs)
	}
}
