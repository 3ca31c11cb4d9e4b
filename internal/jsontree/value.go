package jsontree

import (
	"fmt"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ObjectKind
	ArrayKind
)

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "boolean"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ObjectKind:
		return "object"
	case ArrayKind:
		return "array"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsContainer reports whether values of this kind have children.
func (k Kind) IsContainer() bool {
	return k == ObjectKind || k == ArrayKind
}

// Value is a JSON value. Exactly the field selected by Kind is meaningful:
// Bool for BoolKind, Number for NumberKind, Str for StringKind, Fields for
// ObjectKind and Items for ArrayKind.
//
// Values are never modified in place by this module. Operations that change
// a container allocate new slices, so a Value may be shared freely between
// trees and snapshots.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Str    string
	Fields []Field
	Items  []Value
}

// Field is one member of an object. Keys are unique within an object.
type Field struct {
	Key   string
	Value Value
}

// Null returns the JSON null value.
func Null() Value {
	return Value{Kind: NullKind}
}

// FromBool returns a boolean value.
func FromBool(b bool) Value {
	return Value{Kind: BoolKind, Bool: b}
}

// FromNumber returns a number value.
func FromNumber(f float64) Value {
	return Value{Kind: NumberKind, Number: f}
}

// FromInt returns a number value holding i.
func FromInt(i int) Value {
	return Value{Kind: NumberKind, Number: float64(i)}
}

// FromString returns a string value.
func FromString(s string) Value {
	return Value{Kind: StringKind, Str: s}
}

// FromFields returns an object with the given members in order. When a key
// repeats, the later value wins and keeps the position of the first.
func FromFields(fields ...Field) Value {
	out := make([]Field, 0, len(fields))
	index := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, ok := index[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		index[f.Key] = len(out)
		out = append(out, f)
	}
	return Value{Kind: ObjectKind, Fields: out}
}

// FromItems returns an array holding items in order.
func FromItems(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{Kind: ArrayKind, Items: out}
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.Kind == NullKind
}

// Len returns the number of members of an object or elements of an array,
// and 0 for anything else.
func (v Value) Len() int {
	switch v.Kind {
	case ObjectKind:
		return len(v.Fields)
	case ArrayKind:
		return len(v.Items)
	default:
		return 0
	}
}

// Get returns the member of an object named key.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != ObjectKind {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the object's keys in order.
func (v Value) Keys() []string {
	if v.Kind != ObjectKind {
		return nil
	}
	keys := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		keys[i] = f.Key
	}
	return keys
}

// With returns a copy of the object with key set to val. An existing key
// keeps its position; a new key is appended.
func (v Value) With(key string, val Value) Value {
	fields := make([]Field, 0, len(v.Fields)+1)
	replaced := false
	for _, f := range v.Fields {
		if f.Key == key {
			f.Value = val
			replaced = true
		}
		fields = append(fields, f)
	}
	if !replaced {
		fields = append(fields, Field{Key: key, Value: val})
	}
	return Value{Kind: ObjectKind, Fields: fields}
}

// Equal reports whether v and o hold the same JSON value. Object members are
// compared in order, and nil and empty containers are equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case NullKind:
		return true
	case BoolKind:
		return v.Bool == o.Bool
	case NumberKind:
		return v.Number == o.Number
	case StringKind:
		return v.Str == o.Str
	case ObjectKind:
		if len(v.Fields) != len(o.Fields) {
			return false
		}
		for i := range v.Fields {
			if v.Fields[i].Key != o.Fields[i].Key || !v.Fields[i].Value.Equal(o.Fields[i].Value) {
				return false
			}
		}
		return true
	case ArrayKind:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v that shares no slices with it.
func (v Value) Clone() Value {
	switch v.Kind {
	case ObjectKind:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
		}
		return Value{Kind: ObjectKind, Fields: fields}
	case ArrayKind:
		items := make([]Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Clone()
		}
		return Value{Kind: ArrayKind, Items: items}
	default:
		return v
	}
}

// Any converts v to the generic representation produced by encoding/json:
// map[string]any, []any, float64, string, bool and nil.
func (v Value) Any() any {
	switch v.Kind {
	case BoolKind:
		return v.Bool
	case NumberKind:
		return v.Number
	case StringKind:
		return v.Str
	case ObjectKind:
		m := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			m[f.Key] = f.Value.Any()
		}
		return m
	case ArrayKind:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Any()
		}
		return items
	default:
		return nil
	}
}

// FormatValue renders a short, human readable summary of v: strings are
// quoted, containers show their size.
func FormatValue(v Value) string {
	switch v.Kind {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(v.Bool)
	case NumberKind:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case StringKind:
		return strconv.Quote(v.Str)
	case ObjectKind:
		return fmt.Sprintf("{%d props}", len(v.Fields))
	case ArrayKind:
		return fmt.Sprintf("[%d items]", len(v.Items))
	default:
		return v.Kind.String()
	}
}

// GetValue walks v along path without building a tree.
func GetValue(v Value, path Path) (Value, bool) {
	cur := v
	for _, seg := range path {
		switch {
		case cur.Kind == ObjectKind && !seg.IsIndex:
			next, ok := cur.Get(seg.Key)
			if !ok {
				return Value{}, false
			}
			cur = next
		case cur.Kind == ArrayKind && seg.IsIndex:
			if seg.Index < 0 || seg.Index >= len(cur.Items) {
				return Value{}, false
			}
			cur = cur.Items[seg.Index]
		default:
			return Value{}, false
		}
	}
	return cur, true
}
