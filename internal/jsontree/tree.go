package jsontree

import (
	"fmt"
	"math"
)

// Unlimited is a collapse depth that leaves every node expanded.
const Unlimited = math.MaxInt

// ParseOptions controls the UI flags set on freshly built nodes.
type ParseOptions struct {
	// Editable is copied to every node's IsEditable flag.
	Editable bool
	// LazyDepth marks containers at or below this depth as lazy loaded.
	// Zero disables lazy marking.
	LazyDepth int
}

// DefaultParseOptions returns editable nodes with lazy loading disabled.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Editable: true}
}

// builder assigns ids for one tree. Each operation uses its own builder, so
// ids restart at 1 for every tree and independent trees never interfere.
type builder struct {
	next int
	opts ParseOptions
	// active holds the containers on the current descent, keyed by slice
	// identity. Seeing one again means the value refers back to itself.
	active map[sliceRef]struct{}
}

type sliceRef struct {
	first any
	n     int
}

func newBuilder(opts ParseOptions) *builder {
	return &builder{opts: opts, active: make(map[sliceRef]struct{})}
}

func (b *builder) id() int {
	b.next++
	return b.next
}

func refOf(v Value) (sliceRef, bool) {
	switch {
	case v.Kind == ObjectKind && len(v.Fields) > 0:
		return sliceRef{first: &v.Fields[0], n: len(v.Fields)}, true
	case v.Kind == ArrayKind && len(v.Items) > 0:
		return sliceRef{first: &v.Items[0], n: len(v.Items)}, true
	default:
		return sliceRef{}, false
	}
}

// build creates a fresh subtree for v.
func (b *builder) build(v Value, key Segment, path Path, parent *Node, depth int) (*Node, error) {
	n := &Node{
		ID:         b.id(),
		Path:       path,
		Key:        key,
		Type:       v.Kind,
		Parent:     parent,
		IsEditable: b.opts.Editable,
	}

	switch v.Kind {
	case NullKind, BoolKind, NumberKind, StringKind:
		n.Value = v
		return n, nil
	case ObjectKind, ArrayKind:
	default:
		return nil, fmt.Errorf("%w: unknown kind %d at %s", ErrSerialization, v.Kind, path)
	}

	if ref, ok := refOf(v); ok {
		if _, seen := b.active[ref]; seen {
			return nil, fmt.Errorf("%w: cyclic reference at %s", ErrSerialization, path)
		}
		b.active[ref] = struct{}{}
		defer delete(b.active, ref)
	}

	if v.Kind == ObjectKind {
		n.Children = make([]*Node, 0, len(v.Fields))
		for _, f := range v.Fields {
			k := Key(f.Key)
			c, err := b.build(f.Value, k, path.Append(k), n, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
	} else {
		n.Children = make([]*Node, 0, len(v.Items))
		for i, item := range v.Items {
			k := Index(i)
			c, err := b.build(item, k, path.Append(k), n, depth+1)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, c)
		}
	}
	n.IsLazyLoaded = b.opts.LazyDepth > 0 && depth >= b.opts.LazyDepth
	n.Value = mirror(n)
	return n, nil
}

// editFunc produces the replacement for the node at an edit's target path.
type editFunc func(b *builder, old, parent *Node, key Segment, path Path, depth int) (*Node, error)

// copy clones old into a new subtree, carrying its flags. When path reaches
// target, edit supplies the node instead. Array children are keyed by their
// position, which keeps indices contiguous after a removal.
func (b *builder) copy(old, parent *Node, key Segment, path Path, depth int, target Path, edit editFunc) (*Node, error) {
	if edit != nil && path.Equal(target) {
		return edit(b, old, parent, key, path, depth)
	}

	n := &Node{
		ID:           b.id(),
		Path:         path,
		Key:          key,
		Type:         old.Type,
		Parent:       parent,
		IsCollapsed:  old.IsCollapsed,
		IsEditable:   old.IsEditable,
		IsLazyLoaded: old.IsLazyLoaded,
	}
	if !old.Type.IsContainer() {
		n.Value = old.Value
		return n, nil
	}

	n.Children = make([]*Node, 0, len(old.Children))
	for i, c := range old.Children {
		k := c.Key
		if old.Type == ArrayKind {
			k = Index(i)
		}
		cn, err := b.copy(c, n, k, path.Append(k), depth+1, target, edit)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
	}
	n.Value = mirror(n)
	return n, nil
}

func (b *builder) rewrite(root *Node, target Path, edit editFunc) (*Node, error) {
	return b.copy(root, nil, root.Key, root.Path, 0, target, edit)
}

// Parse builds a tree for v with default options.
func Parse(v Value) (*Node, error) {
	return ParseWith(v, DefaultParseOptions())
}

// ParseWith builds a tree for v. The root has an empty path and key
// RootKey; ids are assigned in preorder starting at 1.
func ParseWith(v Value, opts ParseOptions) (*Node, error) {
	root, err := newBuilder(opts).build(v, RootKey, Path{}, nil, 0)
	if err != nil {
		return nil, pathError("parse", nil, err)
	}
	return root, nil
}

// Find returns the node at path. The empty path yields root.
func Find(root *Node, path Path) (*Node, error) {
	if root == nil {
		return nil, pathError("find", path, ErrNotFound)
	}
	cur := root
	for _, seg := range path {
		cur = cur.Child(seg)
		if cur == nil {
			return nil, pathError("find", path, ErrNotFound)
		}
	}
	return cur, nil
}

// Update returns a new tree with the value at path replaced by v. The
// target keeps its UI flags; its subtree is rebuilt from v.
func Update(root *Node, path Path, v Value) (*Node, error) {
	if _, err := Find(root, path); err != nil {
		return nil, pathError("update", path, ErrNotFound)
	}
	newRoot, err := newBuilder(optionsOf(root)).rewrite(root, path,
		func(b *builder, old, parent *Node, key Segment, path Path, depth int) (*Node, error) {
			n, err := b.build(v, key, path, parent, depth)
			if err != nil {
				return nil, err
			}
			n.IsCollapsed = old.IsCollapsed
			n.IsEditable = old.IsEditable
			n.IsLazyLoaded = old.IsLazyLoaded
			return n, nil
		})
	if err != nil {
		return nil, pathError("update", path, err)
	}
	return newRoot, nil
}

// AddProperty returns a new tree in which the object at path has member key
// set to v. A new key is appended; an existing key is replaced in place so
// keys stay unique.
func AddProperty(root *Node, path Path, key string, v Value) (*Node, error) {
	target, err := Find(root, path)
	if err != nil {
		return nil, pathError("add", path, ErrNotFound)
	}
	if target.Type != ObjectKind {
		return nil, pathError("add", path, ErrNotAnObject)
	}

	b := newBuilder(optionsOf(root))
	childKey := Key(key)
	var newRoot *Node
	if target.Child(childKey) != nil {
		newRoot, err = b.rewrite(root, path.Append(childKey),
			func(b *builder, _, parent *Node, key Segment, path Path, depth int) (*Node, error) {
				return b.build(v, key, path, parent, depth)
			})
	} else {
		newRoot, err = b.rewrite(root, path,
			func(b *builder, old, parent *Node, key Segment, path Path, depth int) (*Node, error) {
				n, err := b.copy(old, parent, key, path, depth, nil, nil)
				if err != nil {
					return nil, err
				}
				c, err := b.build(v, childKey, path.Append(childKey), n, depth+1)
				if err != nil {
					return nil, err
				}
				n.Children = append(n.Children, c)
				n.Value = mirror(n)
				return n, nil
			})
	}
	if err != nil {
		return nil, pathError("add", path.Append(childKey), err)
	}
	return newRoot, nil
}

// Remove returns a new tree without the node at path. Remaining elements of
// an array parent are reindexed from 0.
func Remove(root *Node, path Path) (*Node, error) {
	last, ok := path.Last()
	if !ok {
		return nil, pathError("remove", path, ErrRootRemoval)
	}
	parentPath := path.Parent()
	parent, err := Find(root, parentPath)
	if err != nil || parent.Child(last) == nil {
		return nil, pathError("remove", path, ErrNotFound)
	}

	newRoot, err := newBuilder(optionsOf(root)).rewrite(root, parentPath,
		func(b *builder, old, parent *Node, key Segment, path Path, depth int) (*Node, error) {
			trimmed := *old
			trimmed.Children = make([]*Node, 0, len(old.Children))
			for _, c := range old.Children {
				if c.Key != last {
					trimmed.Children = append(trimmed.Children, c)
				}
			}
			return b.copy(&trimmed, parent, key, path, depth, nil, nil)
		})
	if err != nil {
		return nil, pathError("remove", path, err)
	}
	return newRoot, nil
}

// Serialize reconstructs the plain value represented by the tree.
func Serialize(n *Node) Value {
	if n == nil {
		return Null()
	}
	switch n.Type {
	case ObjectKind:
		fields := make([]Field, len(n.Children))
		for i, c := range n.Children {
			fields[i] = Field{Key: c.Key.Key, Value: Serialize(c)}
		}
		return Value{Kind: ObjectKind, Fields: fields}
	case ArrayKind:
		items := make([]Value, len(n.Children))
		for i, c := range n.Children {
			items[i] = Serialize(c)
		}
		return Value{Kind: ArrayKind, Items: items}
	default:
		return n.Value
	}
}

// CollapseTo returns a copy of the tree with IsCollapsed set on every node at
// depth maxDepth or deeper. The root is at depth 0, so CollapseTo(root, 0)
// collapses everything and CollapseTo(root, Unlimited) expands everything.
func CollapseTo(root *Node, maxDepth int) *Node {
	if root == nil {
		return nil
	}
	// A copy without an edit cannot fail.
	n, _ := newBuilder(optionsOf(root)).rewrite(root, nil, nil)
	n.Walk(func(c *Node) bool {
		c.IsCollapsed = c.Depth() >= maxDepth
		return true
	})
	return n
}

// optionsOf recovers the flags new nodes of a derived tree should carry.
func optionsOf(root *Node) ParseOptions {
	opts := DefaultParseOptions()
	if root != nil {
		opts.Editable = root.IsEditable
	}
	return opts
}
