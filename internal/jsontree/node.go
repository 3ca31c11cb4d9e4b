package jsontree

// RootKey is the key carried by the root node of every tree.
var RootKey = Key("root")

// Node is the tree representation of one value at one path.
//
// A Node belongs to exactly one tree. Operations never modify a node after
// the tree holding it has been returned; they build a new tree instead, so a
// reader holding an old root keeps a stable view.
type Node struct {
	// ID is unique within one tree and assigned in preorder starting at 1.
	ID   int
	Path Path
	Key  Segment
	// Value is the value at this node. For containers it mirrors Children.
	Value Value
	Type  Kind
	// Parent is a lookup-only back reference; nil at the root.
	Parent *Node
	// Children is non-nil exactly when Type is ObjectKind or ArrayKind.
	Children []*Node

	IsCollapsed  bool
	IsEditable   bool
	IsLazyLoaded bool
}

// Child returns the direct child whose key equals seg, or nil.
func (n *Node) Child(seg Segment) *Node {
	if n == nil {
		return nil
	}
	if n.Type == ArrayKind && seg.IsIndex && seg.Index >= 0 && seg.Index < len(n.Children) {
		if c := n.Children[seg.Index]; c.Key == seg {
			return c
		}
	}
	for _, c := range n.Children {
		if c.Key == seg {
			return c
		}
	}
	return nil
}

// Depth returns the number of segments between the root and n.
func (n *Node) Depth() int {
	return len(n.Path)
}

// Walk calls fn for n and each descendant in preorder. Returning false from
// fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// mirror rebuilds a container value from the node's children.
func mirror(n *Node) Value {
	switch n.Type {
	case ObjectKind:
		fields := make([]Field, len(n.Children))
		for i, c := range n.Children {
			fields[i] = Field{Key: c.Key.Key, Value: c.Value}
		}
		return Value{Kind: ObjectKind, Fields: fields}
	case ArrayKind:
		items := make([]Value, len(n.Children))
		for i, c := range n.Children {
			items[i] = c.Value
		}
		return Value{Kind: ArrayKind, Items: items}
	default:
		return n.Value
	}
}
