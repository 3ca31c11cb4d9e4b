package editor

import "github.com/nibzard/jsonedit/internal/jsontree"

// History is a bounded, linear undo stack of document snapshots. Recording
// after an undo discards everything ahead of the cursor. It is not safe for
// concurrent use; the Controller guards its History with its own lock.
type History struct {
	limit     int
	snapshots []jsontree.Value
	cursor    int
}

// NewHistory returns an empty history holding at most limit snapshots.
// A limit below 1 is treated as 1.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit, cursor: -1}
}

// Record stores a deep copy of v as the newest snapshot and moves the
// cursor onto it. The oldest snapshot is evicted once the limit is exceeded.
func (h *History) Record(v jsontree.Value) {
	h.snapshots = append(h.snapshots[:h.cursor+1], v.Clone())
	h.cursor = len(h.snapshots) - 1

	if len(h.snapshots) > h.limit {
		drop := len(h.snapshots) - h.limit
		clear(h.snapshots[:drop])
		h.snapshots = h.snapshots[drop:]
		h.cursor -= drop
	}
}

// Undo moves the cursor back and returns the snapshot there.
func (h *History) Undo() (jsontree.Value, bool) {
	if !h.CanUndo() {
		return jsontree.Value{}, false
	}
	h.cursor--
	return h.snapshots[h.cursor].Clone(), true
}

// Redo moves the cursor forward and returns the snapshot there.
func (h *History) Redo() (jsontree.Value, bool) {
	if !h.CanRedo() {
		return jsontree.Value{}, false
	}
	h.cursor++
	return h.snapshots[h.cursor].Clone(), true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }

// Cursor returns the index of the current snapshot, or -1 when empty.
func (h *History) Cursor() int { return h.cursor }

// Limit returns the maximum number of snapshots kept.
func (h *History) Limit() int { return h.limit }

// Reset drops every snapshot.
func (h *History) Reset() {
	h.snapshots = nil
	h.cursor = -1
}
