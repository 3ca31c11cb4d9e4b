package editor

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/jsonedit/internal/config"
	"github.com/nibzard/jsonedit/internal/jsontree"
	"github.com/nibzard/jsonedit/internal/validation"
)

var (
	// ErrReadOnly is returned for edits on a controller opened read-only.
	ErrReadOnly = errors.New("document is read-only")
	// ErrNotInitialized is returned for intents issued before Initialize.
	ErrNotInitialized = errors.New("no document loaded")
	// ErrClosed is returned for intents issued after Close.
	ErrClosed = errors.New("controller closed")
)

// State is an immutable snapshot of the editor published after every
// committed intent. Root and Value must be treated as read-only.
type State struct {
	DocID    string
	Root     *jsontree.Node
	Value    jsontree.Value
	Errors   []validation.Error
	CanUndo  bool
	CanRedo  bool
	Revision uint64
}

// HasErrors reports whether the last validation found problems.
func (s State) HasErrors() bool { return len(s.Errors) > 0 }

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSchema sets the schema documents are validated against.
func WithSchema(schema jsontree.Value) Option {
	return func(c *Controller) {
		c.pendingSchema = &schema
	}
}

// Controller owns the authoritative document and its tree. Intents are
// serialized by a mutex held for the whole edit cycle; readers call State,
// which never blocks.
type Controller struct {
	mu sync.Mutex

	opts   config.Editor
	logger *log.Logger

	pendingSchema *jsontree.Value
	schema        *validation.Schema

	docID    string
	root     *jsontree.Node
	value    jsontree.Value
	errors   []validation.Error
	history  *History
	changes  changeSet
	lastErr  error
	revision uint64
	closed   bool

	state atomic.Pointer[State]

	subs    map[int]func(State)
	nextSub int
}

// New creates a controller with no document loaded. It fails only when a
// schema passed through WithSchema does not compile.
func New(opts config.Editor, options ...Option) (*Controller, error) {
	if opts.HistoryLimit < 1 {
		opts.HistoryLimit = config.DefaultHistoryLimit
	}
	c := &Controller{
		opts:    opts,
		logger:  log.New(io.Discard),
		history: NewHistory(opts.HistoryLimit),
		subs:    make(map[int]func(State)),
	}
	for _, o := range options {
		o(c)
	}
	if c.pendingSchema != nil {
		schema, err := validation.Compile(*c.pendingSchema)
		if err != nil {
			return nil, err
		}
		c.schema = schema
		c.pendingSchema = nil
	}
	c.state.Store(&State{})
	return c, nil
}

// Options returns the editor options the controller was built with.
func (c *Controller) Options() config.Editor {
	return c.opts
}

// Initialize loads v as a new document. History and pending changes are
// reset, and v is recorded as the first snapshot when auto-save is on. On
// error the previous document is kept.
func (c *Controller) Initialize(v jsontree.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	root, err := c.buildTree(v)
	if err != nil {
		c.lastErr = err
		c.logger.Warn("initialize failed", "err", err)
		return err
	}

	c.docID = uuid.NewString()
	c.root = root
	c.value = jsontree.Serialize(root)
	c.history.Reset()
	c.changes.clear()
	c.lastErr = nil
	c.errors = nil

	if c.opts.ValidationMode == config.ValidateOnChange {
		c.validateLocked()
	}
	if c.opts.AutoSave {
		c.history.Record(c.value)
	}

	c.logger.Debug("initialized", "doc", c.docID, "nodes", root.Count(), "lazy", hasLazy(root))
	c.publishLocked()
	return nil
}

// buildTree parses v with the controller's flags and collapse depth.
func (c *Controller) buildTree(v jsontree.Value) (*jsontree.Node, error) {
	popts := jsontree.ParseOptions{Editable: c.opts.Editable}
	if c.opts.MaxNodes > 0 && jsontree.IsLarge(v, c.opts.MaxNodes) {
		popts.LazyDepth = c.opts.LazyDepth
	}
	root, err := jsontree.ParseWith(v, popts)
	if err != nil {
		return nil, err
	}
	if c.opts.CollapseDepth >= 0 {
		root = jsontree.CollapseTo(root, c.opts.CollapseDepth)
	}
	return root, nil
}

func hasLazy(root *jsontree.Node) bool {
	lazy := false
	root.Walk(func(n *jsontree.Node) bool {
		lazy = lazy || n.IsLazyLoaded
		return !lazy
	})
	return lazy
}

// SetSchema compiles and installs schema; nil removes it. The errors are
// revalidated when the mode is onChange. A schema that does not compile
// leaves the previous one in place and is returned and retained.
func (c *Controller) SetSchema(schema *jsontree.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if schema == nil {
		c.schema = nil
	} else {
		compiled, err := validation.Compile(*schema)
		if err != nil {
			c.lastErr = err
			c.logger.Warn("schema rejected", "err", err)
			return err
		}
		c.schema = compiled
	}

	if c.root != nil {
		if c.opts.ValidationMode == config.ValidateOnChange {
			c.validateLocked()
		} else if c.schema == nil {
			c.errors = nil
		}
		c.publishLocked()
	}
	return nil
}

// UpdateValue replaces the value at path.
func (c *Controller) UpdateValue(path jsontree.Path, v jsontree.Value) bool {
	return c.edit("update", path, func(root *jsontree.Node) (*jsontree.Node, Change, error) {
		change := Change{Type: ChangeUpdate, Path: slices.Clone(path), NewValue: valuePtr(v.Clone())}
		if old, err := jsontree.Find(root, path); err == nil {
			change.OldValue = valuePtr(old.Value)
		}
		next, err := jsontree.Update(root, path, v)
		return next, change, err
	})
}

// AddProperty sets key on the object at path, adding it when missing.
func (c *Controller) AddProperty(path jsontree.Path, key string, v jsontree.Value) bool {
	return c.edit("add", path, func(root *jsontree.Node) (*jsontree.Node, Change, error) {
		target := path.Append(jsontree.Key(key))
		change := Change{Type: ChangeAdd, Path: target, NewValue: valuePtr(v.Clone())}
		if old, err := jsontree.Find(root, target); err == nil {
			change.OldValue = valuePtr(old.Value)
		}
		next, err := jsontree.AddProperty(root, path, key, v)
		return next, change, err
	})
}

// RemoveNode deletes the node at path. Array siblings are reindexed.
func (c *Controller) RemoveNode(path jsontree.Path) bool {
	return c.edit("remove", path, func(root *jsontree.Node) (*jsontree.Node, Change, error) {
		change := Change{Type: ChangeDelete, Path: slices.Clone(path)}
		if old, err := jsontree.Find(root, path); err == nil {
			change.OldValue = valuePtr(old.Value)
		}
		next, err := jsontree.Remove(root, path)
		return next, change, err
	})
}

type mutation func(root *jsontree.Node) (*jsontree.Node, Change, error)

// edit runs one intent cycle: mutate, validate when onChange, record a
// snapshot when auto-saving, publish. A failed mutation changes nothing
// except the retained error.
func (c *Controller) edit(op string, path jsontree.Path, mutate mutation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch {
	case c.closed:
		err = ErrClosed
	case c.root == nil:
		err = ErrNotInitialized
	case !c.opts.Editable:
		err = ErrReadOnly
	}
	if err != nil {
		return c.failLocked(op, path, err)
	}

	root, change, err := mutate(c.root)
	if err != nil {
		return c.failLocked(op, path, err)
	}

	c.root = root
	c.value = jsontree.Serialize(root)
	c.lastErr = nil
	if c.opts.ValidationMode == config.ValidateOnChange {
		c.validateLocked()
	}
	if c.opts.AutoSave {
		c.history.Record(c.value)
	}
	c.changes.track(change)

	c.logger.Debug("edit", "op", op, "path", path.String(), "doc", c.docID, "errors", len(c.errors))
	c.publishLocked()
	return true
}

func (c *Controller) failLocked(op string, path jsontree.Path, err error) bool {
	c.lastErr = fmt.Errorf("%s %s: %w", op, path, err)
	c.logger.Warn("edit failed", "op", op, "path", path.String(), "doc", c.docID, "err", err)
	return false
}

// ValidateNow validates the current document and returns the errors. It
// returns an empty slice when no schema is set or validation is disabled.
func (c *Controller) ValidateNow() []validation.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.root == nil {
		return []validation.Error{}
	}
	errs := c.validateLocked()
	c.publishLocked()
	return slices.Clone(errs)
}

func (c *Controller) validateLocked() []validation.Error {
	if c.schema == nil || c.opts.ValidationMode == config.ValidateDisabled {
		c.errors = nil
		return []validation.Error{}
	}
	c.errors = c.schema.Validate(c.value)
	if len(c.errors) > 0 {
		c.logger.Debug("validation failed", "doc", c.docID, "errors", len(c.errors))
	}
	return c.errors
}

// RecordSnapshot pushes v onto the history, discarding any redo branch.
func (c *Controller) RecordSnapshot(v jsontree.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.history.Record(v)
	c.publishLocked()
}

// Undo restores the previous snapshot. It returns false at the oldest one.
func (c *Controller) Undo() bool {
	return c.travel("undo", c.history.Undo)
}

// Redo restores the next snapshot. It returns false at the newest one.
func (c *Controller) Redo() bool {
	return c.travel("redo", c.history.Redo)
}

// travel restores a snapshot. It neither records history nor touches the
// pending changes.
func (c *Controller) travel(op string, step func() (jsontree.Value, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	v, ok := step()
	if !ok {
		return false
	}
	root, err := c.buildTree(v)
	if err != nil {
		// The cursor has moved but the document is kept.
		c.failLocked(op, nil, err)
		return false
	}
	c.root = root
	c.value = jsontree.Serialize(root)
	if c.opts.ValidationMode == config.ValidateOnChange {
		c.validateLocked()
	}

	c.logger.Debug(op, "doc", c.docID, "cursor", c.history.Cursor(), "snapshots", c.history.Len())
	c.publishLocked()
	return true
}

func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanUndo()
}

func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanRedo()
}

// CollapseAll collapses every node, the root included.
func (c *Controller) CollapseAll() {
	c.collapse(0)
}

// ExpandAll expands every node.
func (c *Controller) ExpandAll() {
	c.collapse(jsontree.Unlimited)
}

func (c *Controller) collapse(depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.root == nil {
		return
	}
	c.root = jsontree.CollapseTo(c.root, depth)
	c.publishLocked()
}

// Find looks up the node at path in the current tree.
func (c *Controller) Find(path jsontree.Path) (*jsontree.Node, error) {
	root := c.State().Root
	if root == nil {
		return nil, ErrNotInitialized
	}
	return jsontree.Find(root, path)
}

// PendingChanges returns the tracked edits in arrival order.
func (c *Controller) PendingChanges() []Change {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changes.list()
}

// ClearChanges forgets every pending change, typically after a save.
func (c *Controller) ClearChanges() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes.clear()
}

// HasUnsavedChanges reports whether any edit is pending.
func (c *Controller) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changes.len() > 0
}

// LastError returns the error of the most recent failed intent, or nil if
// the most recent edit succeeded.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// HistoryLen returns the number of stored snapshots.
func (c *Controller) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Len()
}

// State returns the latest published snapshot without locking.
func (c *Controller) State() State {
	return *c.state.Load()
}

// Subscribe registers fn to be called with each new State, in commit order.
// fn runs while the controller is committing and must not call intents on
// it; reading State is fine. The returned func cancels the subscription.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close drops the document, history and subscribers. Later intents fail.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.root = nil
	c.value = jsontree.Value{}
	c.errors = nil
	c.schema = nil
	c.history.Reset()
	c.changes.clear()
	c.subs = nil
	c.state.Store(&State{})
	c.logger.Debug("closed", "doc", c.docID)
}

// publishLocked stores a fresh State and notifies subscribers.
func (c *Controller) publishLocked() {
	c.revision++
	s := &State{
		DocID:    c.docID,
		Root:     c.root,
		Value:    c.value,
		Errors:   c.errors,
		CanUndo:  c.history.CanUndo(),
		CanRedo:  c.history.CanRedo(),
		Revision: c.revision,
	}
	c.state.Store(s)
	for _, id := range slices.Sorted(maps.Keys(c.subs)) {
		c.subs[id](*s)
	}
}
