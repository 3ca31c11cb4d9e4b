// Package jsontree provides an immutable, path-addressed tree model for JSON
// documents.
//
// # Values
//
// Value is a closed sum type over the JSON data model. The Kind field selects
// which of the remaining fields is meaningful:
//
//	doc := jsontree.FromFields(
//	    jsontree.Field{Key: "name", Value: jsontree.FromString("x")},
//	    jsontree.Field{Key: "tags", Value: jsontree.FromItems(jsontree.FromInt(1))},
//	)
//
// Objects keep their member order. ParseJSON and Value.MarshalJSON preserve
// it, and FromAny accepts the generic data produced by encoding/json and
// goccy/go-yaml.
//
// # Trees
//
// Parse builds a Node tree from a Value. Every node carries a Path from the
// root, the Key of its last segment, a lookup-only Parent reference and, for
// objects and arrays, its Children. Node ids are unique within one tree and
// assigned in preorder by a counter that belongs to that single build.
//
// Update, AddProperty, Remove and CollapseTo never modify their input. Each
// returns a complete new tree, so any reader holding an earlier root keeps a
// stable view without locking. Serialize turns a tree back into a Value.
//
// Failures are reported as *PathError values wrapping ErrNotFound,
// ErrNotAnObject, ErrRootRemoval or ErrSerialization.
package jsontree
