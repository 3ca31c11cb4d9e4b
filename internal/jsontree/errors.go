package jsontree

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a path that does not resolve to a node.
	ErrNotFound = errors.New("node not found")

	// ErrNotAnObject indicates an add-property target that is not an object.
	ErrNotAnObject = errors.New("node is not an object")

	// ErrRootRemoval indicates an attempt to remove the root node.
	ErrRootRemoval = errors.New("cannot remove root node")

	// ErrSerialization indicates a value that cannot be represented as a
	// tree, such as a cyclic structure or an unsupported Go type.
	ErrSerialization = errors.New("value cannot be represented as a tree")
)

// PathError records a failed tree operation and the path it targeted.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

func pathError(op string, path Path, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}
