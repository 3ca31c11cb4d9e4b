// Package ui provides the optional terminal document browser.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/nibzard/jsonedit/internal/editor"
	"github.com/nibzard/jsonedit/internal/jsontree"
)

// SaveFunc writes the current document back to its source.
type SaveFunc func(jsontree.Value) error

// TUIOption configures the browser.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	title string
	save  SaveFunc
}

// WithTitle sets the heading, usually the document path.
func WithTitle(title string) TUIOption {
	return func(c *tuiConfig) {
		c.title = title
	}
}

// WithSave enables writing with the w key.
func WithSave(save SaveFunc) TUIOption {
	return func(c *tuiConfig) {
		c.save = save
	}
}

// RunTUI browses the document loaded in ctrl until the user quits.
func RunTUI(ctx context.Context, ctrl *editor.Controller, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	if ctrl.State().Root == nil {
		return editor.ErrNotInitialized
	}
	model := newTUIModel(ctrl, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

type tuiModel struct {
	ctrl   *editor.Controller
	title  string
	save   SaveFunc
	cursor int
	// open overrides the collapse flag the tree carries, keyed by path.
	open     map[string]bool
	rows     []row
	status   string
	showHelp bool
	height   int
}

type row struct {
	node     *jsontree.Node
	expanded bool
	invalid  bool
}

func newTUIModel(ctrl *editor.Controller, opts ...TUIOption) *tuiModel {
	c := &tuiConfig{title: "jsonedit"}
	for _, opt := range opts {
		opt(c)
	}
	m := &tuiModel{
		ctrl:  ctrl,
		title: c.title,
		save:  c.save,
		open:  make(map[string]bool),
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "right", "l":
			m.setOpen(true)
		case "left", "h":
			m.setOpen(false)
		case "enter", " ":
			if r, ok := m.current(); ok {
				m.open[r.node.Path.String()] = !r.expanded
			}
		case "E":
			m.ctrl.ExpandAll()
			clear(m.open)
			m.status = "expanded all"
		case "C":
			m.ctrl.CollapseAll()
			clear(m.open)
			m.status = "collapsed all"
		case "d", "delete":
			m.remove()
		case "u":
			m.report(m.ctrl.Undo(), "undo", "nothing to undo")
		case "ctrl+r", "U":
			m.report(m.ctrl.Redo(), "redo", "nothing to redo")
		case "v":
			errs := m.ctrl.ValidateNow()
			m.status = fmt.Sprintf("%d validation errors", len(errs))
		case "w":
			m.write()
		case "?":
			m.showHelp = !m.showHelp
		}
	}
	m.refresh()
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		line := formatRow(m.rows[i])
		switch {
		case i == m.cursor:
			line = cursorStyle.Render(line)
		case m.rows[i].invalid:
			line = errorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	st := m.ctrl.State()
	b.WriteString("\n")
	for _, e := range st.Errors {
		b.WriteString(errorStyle.Render("  ! "+e.String()) + "\n")
	}
	b.WriteString(faintStyle.Render(m.footer(st)) + "\n")
	return b.String()
}

func (m *tuiModel) footer(st editor.State) string {
	parts := []string{fmt.Sprintf("rev %d", st.Revision)}
	if m.ctrl.HasUnsavedChanges() {
		parts = append(parts, "modified")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "? help | q quit")
	return strings.Join(parts, " | ")
}

// window returns the slice of rows that fits the terminal around the cursor.
func (m *tuiModel) window() (int, int) {
	visible := m.height - 6
	if m.height == 0 || visible >= len(m.rows) {
		return 0, len(m.rows)
	}
	visible = max(visible, 1)
	start := max(m.cursor-visible/2, 0)
	end := min(start+visible, len(m.rows))
	return end - visible, end
}

// refresh rebuilds the visible rows from the controller's current tree.
func (m *tuiModel) refresh() {
	st := m.ctrl.State()
	invalid := make(map[string]bool, len(st.Errors))
	for _, e := range st.Errors {
		invalid[e.Path.String()] = true
	}

	m.rows = m.rows[:0]
	st.Root.Walk(func(n *jsontree.Node) bool {
		expanded, ok := m.open[n.Path.String()]
		if !ok {
			expanded = !n.IsCollapsed
		}
		m.rows = append(m.rows, row{node: n, expanded: expanded, invalid: invalid[n.Path.String()]})
		return expanded
	})
	m.cursor = max(min(m.cursor, len(m.rows)-1), 0)
}

func (m *tuiModel) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *tuiModel) move(delta int) {
	m.cursor = max(min(m.cursor+delta, len(m.rows)-1), 0)
}

// setOpen expands or collapses the current node. Collapsing a node that is
// already closed moves to its parent.
func (m *tuiModel) setOpen(open bool) {
	r, ok := m.current()
	if !ok {
		return
	}
	if !open && (!r.expanded || r.node.Children == nil) && r.node.Parent != nil {
		parent := r.node.Parent.Path.String()
		for i := m.cursor - 1; i >= 0; i-- {
			if m.rows[i].node.Path.String() == parent {
				m.cursor = i
				return
			}
		}
		return
	}
	if r.node.Children != nil {
		m.open[r.node.Path.String()] = open
	}
}

func (m *tuiModel) remove() {
	r, ok := m.current()
	if !ok {
		return
	}
	m.report(m.ctrl.RemoveNode(r.node.Path), "removed "+r.node.Path.String(), "")
}

func (m *tuiModel) write() {
	if m.save == nil {
		m.status = "no file to write"
		return
	}
	if err := m.save(m.ctrl.State().Value); err != nil {
		m.status = "write failed: " + err.Error()
		return
	}
	m.ctrl.ClearChanges()
	m.status = "written"
}

// report sets the status line after an intent. failMsg is used when the
// intent fails without a retained error.
func (m *tuiModel) report(ok bool, okMsg, failMsg string) {
	switch {
	case ok:
		m.status = okMsg
	case m.ctrl.LastError() != nil && failMsg == "":
		m.status = m.ctrl.LastError().Error()
	default:
		m.status = failMsg
	}
}

func formatRow(r row) string {
	n := r.node
	indent := strings.Repeat("  ", n.Depth())
	marker := " "
	if n.Children != nil {
		marker = "+"
		if r.expanded {
			marker = "-"
		}
	}
	label := "$"
	if n.Parent != nil {
		label = n.Key.String()
	}
	line := fmt.Sprintf("%s%s %s: %s", indent, marker, keyStyle.Render(label), jsontree.FormatValue(n.Value))
	if n.IsLazyLoaded {
		line += " (lazy)"
	}
	if r.invalid {
		line += " !"
	}
	return line
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Move\n")
	b.WriteString("  right/l        Expand\n")
	b.WriteString("  left/h         Collapse or go to parent\n")
	b.WriteString("  enter, space   Toggle\n")
	b.WriteString("  E, C           Expand all, collapse all\n")
	b.WriteString("  d, delete      Remove node\n")
	b.WriteString("  u              Undo\n")
	b.WriteString("  ctrl+r, U      Redo\n")
	b.WriteString("  v              Validate\n")
	b.WriteString("  w              Write file\n")
	b.WriteString("  ?              Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
