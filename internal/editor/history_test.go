package editor

import (
	"testing"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(10)
	if h.CanUndo() || h.CanRedo() || h.Cursor() != -1 {
		t.Fatalf("empty history: undo %v redo %v cursor %d", h.CanUndo(), h.CanRedo(), h.Cursor())
	}
	for i := 0; i < 3; i++ {
		h.Record(jsontree.FromInt(i))
	}

	v, ok := h.Undo()
	if !ok || !v.Equal(jsontree.FromInt(1)) {
		t.Errorf("Undo: got %v %v, want 1", v, ok)
	}
	v, ok = h.Redo()
	if !ok || !v.Equal(jsontree.FromInt(2)) {
		t.Errorf("Redo: got %v %v, want 2", v, ok)
	}
	if _, ok := h.Redo(); ok {
		t.Error("Redo at newest snapshot succeeded")
	}
}

func TestHistoryRecordDiscardsRedoBranch(t *testing.T) {
	h := NewHistory(10)
	h.Record(jsontree.FromInt(0))
	h.Record(jsontree.FromInt(1))
	h.Record(jsontree.FromInt(2))
	h.Undo()
	h.Undo()
	h.Record(jsontree.FromInt(9))

	if h.CanRedo() {
		t.Error("CanRedo after recording on a branch")
	}
	if h.Len() != 2 || h.Cursor() != 1 {
		t.Errorf("Len/Cursor: got %d/%d, want 2/1", h.Len(), h.Cursor())
	}
	v, _ := h.Undo()
	if !v.Equal(jsontree.FromInt(0)) {
		t.Errorf("Undo: got %v, want 0", v)
	}
}

func TestHistoryBound(t *testing.T) {
	h := NewHistory(50)
	for i := 0; i < 60; i++ {
		h.Record(jsontree.FromInt(i))
	}
	if h.Len() != 50 {
		t.Fatalf("Len: got %d, want 50", h.Len())
	}
	if h.Cursor() != 49 {
		t.Fatalf("Cursor: got %d, want 49", h.Cursor())
	}

	undos := 0
	for i := 0; i < 50; i++ {
		if _, ok := h.Undo(); ok {
			undos++
		}
	}
	if undos != 49 {
		t.Errorf("successful undos: got %d, want 49", undos)
	}
	if _, ok := h.Undo(); ok {
		t.Error("Undo past the oldest snapshot succeeded")
	}
	v, _ := h.Redo()
	if !v.Equal(jsontree.FromInt(11)) {
		t.Errorf("Redo from oldest snapshot: got %v, want 11", v)
	}
}

func TestHistorySnapshotsAreCopies(t *testing.T) {
	h := NewHistory(5)
	v := jsontree.FromItems(jsontree.FromInt(1))
	h.Record(v)
	h.Record(jsontree.Null())
	v.Items[0] = jsontree.FromInt(99)

	got, _ := h.Undo()
	if !got.Equal(jsontree.FromItems(jsontree.FromInt(1))) {
		t.Errorf("snapshot changed with its source: %v", got)
	}
	got.Items[0] = jsontree.FromInt(42)
	h.Redo()
	again, _ := h.Undo()
	if !again.Equal(jsontree.FromItems(jsontree.FromInt(1))) {
		t.Errorf("snapshot changed through a returned value: %v", again)
	}
}

func TestHistoryLimitFloor(t *testing.T) {
	h := NewHistory(0)
	h.Record(jsontree.FromInt(1))
	h.Record(jsontree.FromInt(2))
	if h.Len() != 1 || h.CanUndo() {
		t.Errorf("limit 0: Len %d CanUndo %v", h.Len(), h.CanUndo())
	}
	h.Reset()
	if h.Len() != 0 || h.Cursor() != -1 {
		t.Errorf("Reset: Len %d Cursor %d", h.Len(), h.Cursor())
	}
}
