// Package editor holds the authoritative copy of a document being edited.
//
// A Controller accepts intents (update, add, remove, undo, redo, validate,
// collapse) and applies each one as a single synchronous cycle: the tree is
// rebuilt by a pure jsontree operation, the canonical value is serialized
// from it, the value is validated when the mode is onChange, and a snapshot
// is recorded when auto-save is on. Only then is the new State published.
//
// Failed intents return false, keep the previous document, write no
// history, and leave their error in LastError.
package editor
