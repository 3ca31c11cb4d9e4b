package jsontree

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/goccy/go-yaml"
)

// FromAny converts generic Go data into a Value. It accepts the shapes
// produced by encoding/json and goccy/go-yaml: maps with string keys, slices,
// every integer and float kind, json.Number, strings, booleans, nil and
// yaml.MapSlice (whose key order is kept). Plain maps are converted with
// sorted keys.
//
// Cyclic data fails with ErrSerialization instead of recursing forever.
func FromAny(x any) (Value, error) {
	c := &converter{active: make(map[visit]struct{})}
	return c.convert(x, nil)
}

// MustFromAny is like FromAny but panics on error. It is intended for
// literals in tests and examples.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

type converter struct {
	active map[visit]struct{}
}

// visit identifies a map, slice or pointer on the current descent.
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

func (c *converter) enter(rv reflect.Value, path Path) (func(), error) {
	ptr := rv.Pointer()
	if ptr == 0 || (rv.Kind() == reflect.Slice && rv.Len() == 0) {
		return func() {}, nil
	}
	v := visit{ptr: ptr, typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		v.n = rv.Len()
	}
	if _, seen := c.active[v]; seen {
		return nil, pathError("convert", path, fmt.Errorf("%w: cyclic reference", ErrSerialization))
	}
	c.active[v] = struct{}{}
	return func() { delete(c.active, v) }, nil
}

func (c *converter) convert(x any, path Path) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return FromBool(t), nil
	case string:
		return FromString(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, pathError("convert", path, fmt.Errorf("%w: %v", ErrSerialization, err))
		}
		return FromNumber(f), nil
	case yaml.MapSlice:
		fields := make([]Field, 0, len(t))
		for _, item := range t {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}
			v, err := c.convert(item.Value, path.Append(Key(key)))
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: key, Value: v})
		}
		return FromFields(fields...), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FromNumber(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return FromNumber(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return FromNumber(rv.Float()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		if rv.Kind() == reflect.Pointer {
			leave, err := c.enter(rv, path)
			if err != nil {
				return Value{}, err
			}
			defer leave()
		}
		return c.convert(rv.Elem().Interface(), path)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, pathError("convert", path, fmt.Errorf("%w: map key type %s", ErrSerialization, rv.Type().Key()))
		}
		if rv.IsNil() {
			return Null(), nil
		}
		leave, err := c.enter(rv, path)
		if err != nil {
			return Value{}, err
		}
		defer leave()

		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			elem := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			v, err := c.convert(elem.Interface(), path.Append(Key(k)))
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: k, Value: v})
		}
		return Value{Kind: ObjectKind, Fields: fields}, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return Null(), nil
			}
			leave, err := c.enter(rv, path)
			if err != nil {
				return Value{}, err
			}
			defer leave()
		}
		items := make([]Value, rv.Len())
		for i := range items {
			v, err := c.convert(rv.Index(i).Interface(), path.Append(Index(i)))
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{Kind: ArrayKind, Items: items}, nil
	default:
		return Value{}, pathError("convert", path, fmt.Errorf("%w: unsupported type %T", ErrSerialization, x))
	}
}
