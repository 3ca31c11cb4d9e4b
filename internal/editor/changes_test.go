package editor

import (
	"testing"

	"github.com/nibzard/jsonedit/internal/jsontree"
)

func TestChangeSetSupersedesSamePath(t *testing.T) {
	var s changeSet
	s.track(Change{Type: ChangeUpdate, Path: jsontree.ParsePath("a"), NewValue: valuePtr(jsontree.FromInt(1))})
	s.track(Change{Type: ChangeUpdate, Path: jsontree.ParsePath("b")})
	s.track(Change{Type: ChangeDelete, Path: jsontree.ParsePath("a")})
	s.track(Change{Type: ChangeUpdate, Path: jsontree.ParsePath(0)})
	s.track(Change{Type: ChangeUpdate, Path: jsontree.ParsePath("0")})

	got := s.list()
	want := []struct {
		typ  ChangeType
		path jsontree.Path
	}{
		{ChangeUpdate, jsontree.ParsePath("b")},
		{ChangeDelete, jsontree.ParsePath("a")},
		{ChangeUpdate, jsontree.ParsePath(0)},
		{ChangeUpdate, jsontree.ParsePath("0")},
	}
	if len(got) != len(want) {
		t.Fatalf("changes: got %d, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Type != w.typ || !got[i].Path.Equal(w.path) {
			t.Errorf("change %d: got %s %v, want %s %v", i, got[i].Type, got[i].Path, w.typ, w.path)
		}
	}

	got[0].Type = ChangeAdd
	if s.list()[0].Type != ChangeUpdate {
		t.Error("list exposes internal storage")
	}
	s.clear()
	if s.len() != 0 {
		t.Errorf("len after clear: got %d", s.len())
	}
}
