package docio

import (
	"fmt"
	"io"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

// LineOp marks how a diff line relates the two inputs.
type LineOp int

const (
	LineEqual LineOp = iota
	LineDelete
	LineInsert
)

func (op LineOp) prefix() string {
	switch op {
	case LineDelete:
		return "-"
	case LineInsert:
		return "+"
	}
	return " "
}

// Line is one line of a diff without its trailing newline.
type Line struct {
	Op   LineOp
	Text string
}

func (l Line) String() string {
	return l.Op.prefix() + " " + l.Text
}

// Diff compares the indented JSON renderings of a and b line by line.
func Diff(a, b jsontree.Value) ([]Line, error) {
	left, err := jsontree.MarshalIndent(a)
	if err != nil {
		return nil, err
	}
	right, err := jsontree.MarshalIndent(b)
	if err != nil {
		return nil, err
	}
	return DiffText(string(left), string(right)), nil
}

// DiffText compares two texts line by line.
func DiffText(a, b string) []Line {
	dmp := diffpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var out []Line
	for _, d := range diffs {
		op := LineEqual
		switch d.Type {
		case diffpatch.DiffDelete:
			op = LineDelete
		case diffpatch.DiffInsert:
			op = LineInsert
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			out = append(out, Line{Op: op, Text: line})
		}
	}
	return out
}

// Changed reports whether any line differs.
func Changed(lines []Line) bool {
	for _, l := range lines {
		if l.Op != LineEqual {
			return true
		}
	}
	return false
}

// FormatDiff writes lines to w. colorize, when non-nil, styles each line.
func FormatDiff(w io.Writer, lines []Line, colorize func(LineOp, string) string) error {
	for _, l := range lines {
		s := l.String()
		if colorize != nil {
			s = colorize(l.Op, s)
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}
