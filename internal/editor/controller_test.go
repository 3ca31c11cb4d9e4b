package editor

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/nibzard/jsonedit/internal/config"
	"github.com/nibzard/jsonedit/internal/jsontree"
	"github.com/nibzard/jsonedit/internal/validation"
)

func parse(t *testing.T, s string) jsontree.Value {
	t.Helper()
	v, err := jsontree.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON(%s): %v", s, err)
	}
	return v
}

func newController(t *testing.T, opts config.Editor, doc string, options ...Option) *Controller {
	t.Helper()
	c, err := New(opts, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Initialize(parse(t, doc)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func assertDoc(t *testing.T, c *Controller, want string) {
	t.Helper()
	if diff := cmp.Diff(parse(t, want), c.State().Value); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestEndToEndScenario(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"a":1,"b":[1,2]}`)

	if !c.UpdateValue(jsontree.ParsePath("b", 1), jsontree.FromInt(5)) {
		t.Fatalf("UpdateValue: %v", c.LastError())
	}
	assertDoc(t, c, `{"a":1,"b":[1,5]}`)

	if !c.RemoveNode(jsontree.ParsePath("a")) {
		t.Fatalf("RemoveNode: %v", c.LastError())
	}
	assertDoc(t, c, `{"b":[1,5]}`)

	if !c.Undo() {
		t.Fatal("first Undo failed")
	}
	assertDoc(t, c, `{"a":1,"b":[1,5]}`)

	if !c.Undo() {
		t.Fatal("second Undo failed")
	}
	assertDoc(t, c, `{"a":1,"b":[1,2]}`)

	if c.Undo() {
		t.Error("Undo past the initial document succeeded")
	}
	if !c.Redo() {
		t.Fatal("Redo failed")
	}
	assertDoc(t, c, `{"a":1,"b":[1,5]}`)
}

func TestRedoDiscardedAfterNewEdit(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"n":0}`)
	c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(1))
	c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(2))

	if !c.Undo() {
		t.Fatal("Undo failed")
	}
	if !c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(7)) {
		t.Fatal("UpdateValue failed")
	}
	if c.Redo() {
		t.Error("Redo succeeded after a new edit")
	}
	if c.CanRedo() || c.State().CanRedo {
		t.Error("CanRedo true after a new edit")
	}
	assertDoc(t, c, `{"n":7}`)
}

func TestHistoryBoundThroughController(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"n":0}`)
	for i := 1; i <= 60; i++ {
		if !c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(i)) {
			t.Fatalf("edit %d failed: %v", i, c.LastError())
		}
	}
	if got := c.HistoryLen(); got > 50 {
		t.Errorf("HistoryLen: got %d, want at most 50", got)
	}
	for i := 0; i < 50; i++ {
		c.Undo()
	}
	if c.Undo() {
		t.Error("Undo after exhausting history succeeded")
	}
	assertDoc(t, c, `{"n":11}`)
}

func TestFailedEditsLeaveStateUntouched(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"a":{"b":1},"list":[1]}`)
	before := c.State()
	historyBefore := c.HistoryLen()

	tests := []struct {
		name string
		run  func() bool
		want error
	}{
		{"update missing", func() bool { return c.UpdateValue(jsontree.ParsePath("zz"), jsontree.Null()) }, jsontree.ErrNotFound},
		{"add to array", func() bool { return c.AddProperty(jsontree.ParsePath("list"), "k", jsontree.Null()) }, jsontree.ErrNotAnObject},
		{"add to missing", func() bool { return c.AddProperty(jsontree.ParsePath("nope"), "k", jsontree.Null()) }, jsontree.ErrNotFound},
		{"remove root", func() bool { return c.RemoveNode(nil) }, jsontree.ErrRootRemoval},
		{"remove missing index", func() bool { return c.RemoveNode(jsontree.ParsePath("list", 3)) }, jsontree.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.run() {
				t.Fatal("intent succeeded")
			}
			if err := c.LastError(); !errors.Is(err, tt.want) {
				t.Errorf("LastError: got %v, want %v", err, tt.want)
			}
			after := c.State()
			if after.Root != before.Root || after.Revision != before.Revision {
				t.Error("state was republished after a failed intent")
			}
			if c.HistoryLen() != historyBefore {
				t.Errorf("HistoryLen: got %d, want %d", c.HistoryLen(), historyBefore)
			}
			if c.HasUnsavedChanges() {
				t.Error("failed intent was tracked as a change")
			}
		})
	}

	if !c.UpdateValue(jsontree.ParsePath("a", "b"), jsontree.FromInt(2)) {
		t.Fatal("UpdateValue failed")
	}
	if err := c.LastError(); err != nil {
		t.Errorf("LastError after success: got %v, want nil", err)
	}
}

func TestReadOnlyController(t *testing.T) {
	opts := config.DefaultEditor()
	opts.Editable = false
	c := newController(t, opts, `{"a":1}`)

	if c.UpdateValue(jsontree.ParsePath("a"), jsontree.FromInt(2)) {
		t.Fatal("edit succeeded on a read-only controller")
	}
	if !errors.Is(c.LastError(), ErrReadOnly) {
		t.Errorf("LastError: got %v, want ErrReadOnly", c.LastError())
	}
	if c.State().Root.IsEditable {
		t.Error("nodes are marked editable")
	}
	assertDoc(t, c, `{"a":1}`)
}

func TestIntentsBeforeInitialize(t *testing.T) {
	c, err := New(config.DefaultEditor())
	if err != nil {
		t.Fatal(err)
	}
	if c.RemoveNode(jsontree.ParsePath("a")) {
		t.Error("RemoveNode succeeded without a document")
	}
	if !errors.Is(c.LastError(), ErrNotInitialized) {
		t.Errorf("LastError: got %v, want ErrNotInitialized", c.LastError())
	}
	if c.Undo() || c.Redo() {
		t.Error("Undo/Redo succeeded without a document")
	}
	if errs := c.ValidateNow(); errs == nil || len(errs) != 0 {
		t.Errorf("ValidateNow: got %v, want empty", errs)
	}
}

func TestInitializeFailureKeepsDocument(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"a":1}`)
	// The element shares the outer slice, so the array contains itself.
	loop := jsontree.Value{Kind: jsontree.ArrayKind, Items: make([]jsontree.Value, 1)}
	loop.Items[0] = loop

	if err := c.Initialize(loop); !errors.Is(err, jsontree.ErrSerialization) {
		t.Fatalf("Initialize: got %v, want ErrSerialization", err)
	}
	assertDoc(t, c, `{"a":1}`)
	if c.LastError() == nil {
		t.Error("LastError not retained")
	}
}

const ageSchema = `{"type":"object","properties":{"age":{"type":"integer"}},"required":["age"]}`

func TestValidationOnChange(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"name":"x"}`, WithSchema(parse(t, ageSchema)))

	errs := c.State().Errors
	if len(errs) != 1 || len(errs[0].Path) != 0 || errs[0].Keyword != "required" {
		t.Fatalf("initial errors: got %v, want one required error at root", errs)
	}

	if !c.AddProperty(nil, "age", jsontree.FromInt(3)) {
		t.Fatalf("AddProperty: %v", c.LastError())
	}
	if c.State().HasErrors() {
		t.Errorf("errors after fix: %v", c.State().Errors)
	}

	c.UpdateValue(jsontree.ParsePath("age"), jsontree.FromString("old"))
	errs = c.State().Errors
	if len(errs) != 1 || !errs[0].Path.Equal(jsontree.ParsePath("age")) {
		t.Errorf("errors after bad update: got %v", errs)
	}
}

func TestValidationModes(t *testing.T) {
	t.Run("onDemand waits for ValidateNow", func(t *testing.T) {
		opts := config.DefaultEditor()
		opts.ValidationMode = config.ValidateOnDemand
		c := newController(t, opts, `{}`, WithSchema(parse(t, ageSchema)))
		if c.State().HasErrors() {
			t.Fatal("validated without being asked")
		}
		if errs := c.ValidateNow(); len(errs) != 1 {
			t.Fatalf("ValidateNow: got %v, want one error", errs)
		}
		if len(c.State().Errors) != 1 {
			t.Error("ValidateNow result not published")
		}
	})

	t.Run("disabled never validates", func(t *testing.T) {
		opts := config.DefaultEditor()
		opts.ValidationMode = config.ValidateDisabled
		c := newController(t, opts, `{}`, WithSchema(parse(t, ageSchema)))
		if errs := c.ValidateNow(); errs == nil || len(errs) != 0 {
			t.Errorf("ValidateNow: got %v, want empty", errs)
		}
	})

	t.Run("no schema", func(t *testing.T) {
		c := newController(t, config.DefaultEditor(), `{}`)
		if errs := c.ValidateNow(); errs == nil || len(errs) != 0 {
			t.Errorf("ValidateNow: got %v, want empty", errs)
		}
	})
}

func TestSetSchema(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{}`)

	bad := parse(t, `{"type":"invalid-type"}`)
	if err := c.SetSchema(&bad); !errors.Is(err, validation.ErrSchema) {
		t.Fatalf("SetSchema: got %v, want ErrSchema", err)
	}
	if !errors.Is(c.LastError(), validation.ErrSchema) {
		t.Errorf("LastError: got %v", c.LastError())
	}

	schema := parse(t, ageSchema)
	if err := c.SetSchema(&schema); err != nil {
		t.Fatalf("SetSchema: %v", err)
	}
	if len(c.State().Errors) != 1 {
		t.Errorf("errors after SetSchema: got %v", c.State().Errors)
	}
	if err := c.SetSchema(nil); err != nil {
		t.Fatalf("SetSchema(nil): %v", err)
	}
	if c.State().HasErrors() {
		t.Error("errors kept after clearing schema")
	}

	if _, err := New(config.DefaultEditor(), WithSchema(bad)); !errors.Is(err, validation.ErrSchema) {
		t.Errorf("New with bad schema: got %v, want ErrSchema", err)
	}
}

func TestAutoSaveOff(t *testing.T) {
	opts := config.DefaultEditor()
	opts.AutoSave = false
	c := newController(t, opts, `{"n":0}`)
	c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(1))
	if c.HistoryLen() != 0 || c.CanUndo() {
		t.Fatalf("history written with auto-save off: len %d", c.HistoryLen())
	}

	c.RecordSnapshot(c.State().Value)
	c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(2))
	c.RecordSnapshot(c.State().Value)
	if !c.Undo() {
		t.Fatal("Undo after manual snapshots failed")
	}
	assertDoc(t, c, `{"n":1}`)
}

func TestPendingChanges(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"a":1,"b":[1,2]}`)
	c.UpdateValue(jsontree.ParsePath("a"), jsontree.FromInt(2))
	c.AddProperty(nil, "c", jsontree.FromBool(true))
	c.UpdateValue(jsontree.ParsePath("a"), jsontree.FromInt(3))
	c.RemoveNode(jsontree.ParsePath("b", 0))

	got := c.PendingChanges()
	if len(got) != 3 {
		t.Fatalf("PendingChanges: got %d, want 3: %v", len(got), got)
	}
	if got[0].Type != ChangeAdd || !got[0].Path.Equal(jsontree.ParsePath("c")) || got[0].OldValue != nil {
		t.Errorf("change 0: got %+v", got[0])
	}
	if got[1].Type != ChangeUpdate || !got[1].Path.Equal(jsontree.ParsePath("a")) {
		t.Errorf("change 1: got %+v", got[1])
	}
	if !got[1].OldValue.Equal(jsontree.FromInt(2)) || !got[1].NewValue.Equal(jsontree.FromInt(3)) {
		t.Errorf("superseding change values: old %v new %v", got[1].OldValue, got[1].NewValue)
	}
	if got[2].Type != ChangeDelete || got[2].NewValue != nil || !got[2].OldValue.Equal(jsontree.FromInt(1)) {
		t.Errorf("change 2: got %+v", got[2])
	}

	if !c.Undo() {
		t.Fatal("Undo failed")
	}
	if len(c.PendingChanges()) != 3 {
		t.Error("Undo altered pending changes")
	}
	c.ClearChanges()
	if c.HasUnsavedChanges() {
		t.Error("HasUnsavedChanges after ClearChanges")
	}
}

func TestCollapseAndExpand(t *testing.T) {
	opts := config.DefaultEditor()
	opts.CollapseDepth = 1
	c := newController(t, opts, `{"a":{"b":{"c":1}}}`)

	root := c.State().Root
	if root.IsCollapsed {
		t.Error("root collapsed with depth 1")
	}
	if n, _ := c.Find(jsontree.ParsePath("a")); !n.IsCollapsed {
		t.Error("depth-1 node not collapsed")
	}

	c.ExpandAll()
	c.State().Root.Walk(func(n *jsontree.Node) bool {
		if n.IsCollapsed {
			t.Errorf("node %s collapsed after ExpandAll", n.Path)
		}
		return true
	})

	c.CollapseAll()
	c.State().Root.Walk(func(n *jsontree.Node) bool {
		if !n.IsCollapsed {
			t.Errorf("node %s expanded after CollapseAll", n.Path)
		}
		return true
	})
	if root.IsCollapsed || !root.Children[0].IsCollapsed {
		t.Error("earlier root changed by ExpandAll or CollapseAll")
	}
}

func TestLargeDocumentsLoadLazily(t *testing.T) {
	opts := config.DefaultEditor()
	opts.MaxNodes = 3
	opts.LazyDepth = 1
	c := newController(t, opts, `{"a":{"b":[1,2]}}`)
	n, err := c.Find(jsontree.ParsePath("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if !n.IsLazyLoaded {
		t.Error("deep container not lazy in a large document")
	}

	opts.MaxNodes = 100
	small := newController(t, opts, `{"a":{"b":[1,2]}}`)
	if n, _ := small.Find(jsontree.ParsePath("a", "b")); n.IsLazyLoaded {
		t.Error("small document marked lazy")
	}
}

func TestStateSnapshotsAreStable(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"a":[1,2,3]}`)
	old := c.State()
	oldJSON, _ := old.Value.MarshalJSON()

	c.RemoveNode(jsontree.ParsePath("a", 0))
	c.AddProperty(nil, "b", jsontree.Null())

	if got, _ := jsontree.Serialize(old.Root).MarshalJSON(); string(got) != string(oldJSON) {
		t.Errorf("old tree changed: got %s, want %s", got, oldJSON)
	}
	if n, err := jsontree.Find(old.Root, jsontree.ParsePath("a", 2)); err != nil || !n.Value.Equal(jsontree.FromInt(3)) {
		t.Errorf("old tree lookup: got %v, %v", n, err)
	}
	if c.State().Revision <= old.Revision {
		t.Error("revision did not advance")
	}
}

func TestSubscribe(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"n":0}`)
	var seen []uint64
	cancel := c.Subscribe(func(s State) {
		seen = append(seen, s.Revision)
	})

	c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(1))
	c.UpdateValue(jsontree.ParsePath("missing"), jsontree.FromInt(1))
	c.Undo()
	cancel()
	c.Redo()

	if len(seen) != 2 || seen[0] >= seen[1] {
		t.Errorf("notifications: got %v, want two increasing revisions", seen)
	}
}

func TestConcurrentReadersSeeCommittedStates(t *testing.T) {
	c := newController(t, config.DefaultEditor(), `{"n":0}`)
	done := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				s := c.State()
				if !jsontree.Serialize(s.Root).Equal(s.Value) {
					t.Error("published root and value disagree")
					return
				}
			}
		}()
	}
	for i := 1; i <= 200; i++ {
		c.UpdateValue(jsontree.ParsePath("n"), jsontree.FromInt(i))
	}
	close(done)
	wg.Wait()
	assertDoc(t, c, `{"n":200}`)
}

func TestCloseClearsState(t *testing.T) {
	c, err := New(config.DefaultEditor())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Initialize(parse(t, `{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	c.Close()
	if c.State().Root != nil {
		t.Error("State still holds a tree after Close")
	}
	if c.UpdateValue(jsontree.ParsePath("a"), jsontree.Null()) || !errors.Is(c.LastError(), ErrClosed) {
		t.Errorf("edit after Close: LastError %v", c.LastError())
	}
	if err := c.Initialize(parse(t, `{}`)); !errors.Is(err, ErrClosed) {
		t.Errorf("Initialize after Close: got %v", err)
	}
	c.Close()
}

func TestEditsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
	c := newController(t, config.DefaultEditor(), `{"a":1}`, WithLogger(logger))

	c.UpdateValue(jsontree.ParsePath("a"), jsontree.FromInt(2))
	c.RemoveNode(jsontree.ParsePath("zz"))

	out := buf.String()
	for _, want := range []string{"op=update", "path=a", "op=remove", "level=warn", "doc=" + c.State().DocID} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
