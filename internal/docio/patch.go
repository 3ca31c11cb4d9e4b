package docio

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/nibzard/jsonedit/internal/config"
	"github.com/nibzard/jsonedit/internal/editor"
	"github.com/nibzard/jsonedit/internal/jsontree"
)

var (
	// ErrInvalidPatch is returned for patches that are malformed before any
	// operation runs.
	ErrInvalidPatch = errors.New("invalid patch")
	// ErrTestFailed is returned when a test operation does not match.
	ErrTestFailed = errors.New("test operation failed")
)

// PatchOp is one decoded RFC 6902 operation. Path and From are JSON
// Pointers.
type PatchOp struct {
	Op       string
	Path     string
	From     string
	Value    jsontree.Value
	HasValue bool
}

func (op PatchOp) String() string {
	if op.From != "" {
		return fmt.Sprintf("%s %s -> %s", op.Op, op.From, op.Path)
	}
	return fmt.Sprintf("%s %s", op.Op, op.Path)
}

// DecodePatch parses a JSON patch document.
func DecodePatch(data []byte) ([]PatchOp, error) {
	patch, err := jsonpatch.DecodePatch(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	ops := make([]PatchOp, 0, len(patch))
	for i, raw := range patch {
		op := PatchOp{Op: raw.Kind()}
		switch op.Op {
		case "add", "remove", "replace", "move", "copy", "test":
		default:
			return nil, fmt.Errorf("%w: op %d: unsupported operation %q", ErrInvalidPatch, i, op.Op)
		}
		if err := rawString(raw, "path", &op.Path); err != nil {
			return nil, fmt.Errorf("%w: op %d: %v", ErrInvalidPatch, i, err)
		}
		if op.Op == "move" || op.Op == "copy" {
			if err := rawString(raw, "from", &op.From); err != nil {
				return nil, fmt.Errorf("%w: op %d: %v", ErrInvalidPatch, i, err)
			}
		}
		if v, ok := raw["value"]; ok && v != nil {
			val, err := jsontree.ParseJSON(*v)
			if err != nil {
				return nil, fmt.Errorf("%w: op %d: %v", ErrInvalidPatch, i, err)
			}
			op.Value, op.HasValue = val, true
		}
		switch op.Op {
		case "add", "replace", "test":
			if !op.HasValue {
				return nil, fmt.Errorf("%w: op %d: %s requires a value", ErrInvalidPatch, i, op.Op)
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func rawString(op jsonpatch.Operation, field string, dst *string) error {
	raw, ok := op[field]
	if !ok || raw == nil {
		return fmt.Errorf("missing %q", field)
	}
	if err := json.Unmarshal(*raw, dst); err != nil {
		return fmt.Errorf("%q: %w", field, err)
	}
	return nil
}

// ApplyPatch applies ops to the document loaded in c. The patch is first
// run against a scratch copy; if any operation fails c is left untouched.
// Otherwise every operation becomes its own controller intent, so each one
// is validated and recorded in history per the controller's options.
func ApplyPatch(c *editor.Controller, ops []PatchOp) error {
	st := c.State()
	if st.Root == nil {
		return editor.ErrNotInitialized
	}
	if !c.Options().Editable {
		return editor.ErrReadOnly
	}

	scratch, err := editor.New(config.Editor{
		ValidationMode: config.ValidateDisabled,
		CollapseDepth:  -1,
		HistoryLimit:   1,
		Editable:       true,
	})
	if err != nil {
		return err
	}
	defer scratch.Close()
	if err := scratch.Initialize(st.Value); err != nil {
		return err
	}
	for i, op := range ops {
		if err := applyOp(scratch, op); err != nil {
			return fmt.Errorf("patch op %d (%s): %w", i, op, err)
		}
	}

	for i, op := range ops {
		if err := applyOp(c, op); err != nil {
			return fmt.Errorf("patch op %d (%s): %w", i, op, err)
		}
	}
	return nil
}

func applyOp(c *editor.Controller, op PatchOp) error {
	doc := c.State().Value
	switch op.Op {
	case "add":
		return add(c, doc, jsontree.ResolvePointer(doc, op.Path), op.Value)
	case "remove":
		return intent(c, c.RemoveNode(jsontree.ResolvePointer(doc, op.Path)))
	case "replace":
		path := jsontree.ResolvePointer(doc, op.Path)
		if _, ok := jsontree.GetValue(doc, path); !ok {
			return fmt.Errorf("replace %s: %w", path, jsontree.ErrNotFound)
		}
		return intent(c, c.UpdateValue(path, op.Value))
	case "test":
		path := jsontree.ResolvePointer(doc, op.Path)
		got, ok := jsontree.GetValue(doc, path)
		if !ok {
			return fmt.Errorf("test %s: %w", path, jsontree.ErrNotFound)
		}
		if !got.Equal(op.Value) {
			return fmt.Errorf("%w: %s is %s", ErrTestFailed, path, jsontree.FormatValue(got))
		}
		return nil
	case "move", "copy":
		from := jsontree.ResolvePointer(doc, op.From)
		v, ok := jsontree.GetValue(doc, from)
		if !ok {
			return fmt.Errorf("%s from %s: %w", op.Op, from, jsontree.ErrNotFound)
		}
		if op.Op == "move" {
			if op.From == op.Path {
				return nil
			}
			if isProperPrefix(op.From, op.Path) {
				return fmt.Errorf("%w: cannot move %s into itself", ErrInvalidPatch, op.From)
			}
			if err := intent(c, c.RemoveNode(from)); err != nil {
				return err
			}
			doc = c.State().Value
		}
		return add(c, doc, jsontree.ResolvePointer(doc, op.Path), v)
	}
	return fmt.Errorf("%w: unsupported operation %q", ErrInvalidPatch, op.Op)
}

// add inserts v at path. Object members are added or replaced; array
// elements are spliced in, with "-" appending.
func add(c *editor.Controller, doc jsontree.Value, path jsontree.Path, v jsontree.Value) error {
	last, ok := path.Last()
	if !ok {
		return intent(c, c.UpdateValue(path, v))
	}
	parentPath := path.Parent()
	parent, ok := jsontree.GetValue(doc, parentPath)
	if !ok {
		return fmt.Errorf("add %s: %w", path, jsontree.ErrNotFound)
	}
	switch parent.Kind {
	case jsontree.ObjectKind:
		return intent(c, c.AddProperty(parentPath, last.Key, v))
	case jsontree.ArrayKind:
		idx := len(parent.Items)
		switch {
		case last.IsIndex:
			idx = last.Index
		case last.Key != "-":
			return fmt.Errorf("add %s: %w: bad array index %q", path, ErrInvalidPatch, last.Key)
		}
		if idx > len(parent.Items) {
			return fmt.Errorf("add %s: %w: index out of range", path, jsontree.ErrNotFound)
		}
		items := slices.Insert(slices.Clone(parent.Items), idx, v)
		return intent(c, c.UpdateValue(parentPath, jsontree.FromItems(items...)))
	}
	return fmt.Errorf("add %s: %w", path, jsontree.ErrNotAnObject)
}

func intent(c *editor.Controller, ok bool) error {
	if ok {
		return nil
	}
	return c.LastError()
}

func isProperPrefix(prefix, ptr string) bool {
	return len(ptr) > len(prefix) && ptr[:len(prefix)] == prefix && ptr[len(prefix)] == '/'
}
