package docio

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiff(t *testing.T) {
	a := mustParseJSON(t, `{"a":1,"b":2}`)
	b := mustParseJSON(t, `{"a":1,"b":3}`)
	got, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	want := []Line{
		{LineEqual, "{"},
		{LineEqual, `  "a": 1,`},
		{LineDelete, `  "b": 2`},
		{LineInsert, `  "b": 3`},
		{LineEqual, "}"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
	if !Changed(got) {
		t.Error("Changed: got false")
	}
}

func TestDiffIdentical(t *testing.T) {
	v := mustParseJSON(t, `{"a":[1,2]}`)
	lines, err := Diff(v, v.Clone())
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if Changed(lines) {
		t.Errorf("Changed on identical documents: %v", lines)
	}
}

func TestFormatDiff(t *testing.T) {
	lines := DiffText("x\ny\n", "x\nz\n")
	var buf bytes.Buffer
	if err := FormatDiff(&buf, lines, nil); err != nil {
		t.Fatalf("FormatDiff: %v", err)
	}
	if got, want := buf.String(), "  x\n- y\n+ z\n"; got != want {
		t.Errorf("FormatDiff: got %q, want %q", got, want)
	}

	buf.Reset()
	mark := func(op LineOp, s string) string {
		if op == LineEqual {
			return s
		}
		return "[" + s + "]"
	}
	if err := FormatDiff(&buf, lines, mark); err != nil {
		t.Fatalf("FormatDiff: %v", err)
	}
	if got, want := buf.String(), "  x\n[- y]\n[+ z]\n"; got != want {
		t.Errorf("FormatDiff colorized: got %q, want %q", got, want)
	}
}
