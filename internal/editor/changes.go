package editor

import (
	"slices"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

// ChangeType identifies the kind of edit a Change records.
type ChangeType string

const (
	ChangeUpdate ChangeType = "update"
	ChangeAdd    ChangeType = "add"
	ChangeDelete ChangeType = "delete"
)

// Change is one pending edit. OldValue is nil when nothing existed at Path
// before the edit; NewValue is nil for deletions.
type Change struct {
	Type     ChangeType
	Path     jsontree.Path
	OldValue *jsontree.Value
	NewValue *jsontree.Value
}

// changeSet holds pending changes in arrival order, at most one per path.
type changeSet struct {
	changes []Change
}

// track appends c, dropping any older change at the identical path.
func (s *changeSet) track(c Change) {
	s.changes = slices.DeleteFunc(s.changes, func(old Change) bool {
		return old.Path.Equal(c.Path)
	})
	s.changes = append(s.changes, c)
}

func (s *changeSet) list() []Change {
	return slices.Clone(s.changes)
}

func (s *changeSet) clear() {
	s.changes = nil
}

func (s *changeSet) len() int {
	return len(s.changes)
}

func valuePtr(v jsontree.Value) *jsontree.Value {
	return &v
}
