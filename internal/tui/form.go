package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/pear/internal/core/state"
	"github.com/hay-kot/pear/internal/core/styles"
	"github.com/hay-kot/pear/internal/core/task"
)

const dueLayout = "2006-01-02T15:04"

type formField int

const (
	fieldText formField = iota
	fieldType
	fieldDue
	fieldAssignee
	fieldCount
)

// TaskFormResult is a submitted form. DueDate and Assignee are nil when
// left empty.
type TaskFormResult struct {
	ID       string // empty when adding
	Text     string
	Type     task.Type
	DueDate  *time.Time
	Assignee *string
}

// TaskForm adds or edits one task. Type and assignee are picked with
// left/right from fixed choices; text and due date are typed.
type TaskForm struct {
	id        string
	text      textinput.Model
	due       textinput.Model
	typ       task.Type
	users     []string // "" first, meaning unassigned
	assignee  int
	focus     formField
	loc       *time.Location
	err       string
	cancelled bool
	result    *TaskFormResult
}

// NewTaskForm creates a form for a new task.
func NewTaskForm(defaultType task.Type, users []string, loc *time.Location) *TaskForm {
	f := &TaskForm{
		text:  textinput.New(),
		due:   textinput.New(),
		typ:   defaultType,
		users: append([]string{""}, users...),
		loc:   loc,
	}
	f.text.Placeholder = "What needs doing?"
	f.text.Prompt = ""
	f.text.CharLimit = 500
	f.due.Placeholder = "YYYY-MM-DD or YYYY-MM-DDTHH:MM"
	f.due.Prompt = ""
	f.text.Focus()
	return f
}

// EditTaskForm creates a form prefilled from t.
func EditTaskForm(t task.Task, users []string, loc *time.Location) *TaskForm {
	f := NewTaskForm(t.Type, users, loc)
	f.id = t.ID
	f.text.SetValue(t.Text)
	f.text.CursorEnd()
	if t.DueDate != nil {
		f.due.SetValue(t.DueDate.In(loc).Format(dueLayout))
	}
	if name := t.AssigneeName(); name != "" {
		idx := -1
		for i, u := range f.users {
			if u == name {
				idx = i
			}
		}
		if idx < 0 {
			// keep assignees that were removed from the roster
			f.users = append(f.users, name)
			idx = len(f.users) - 1
		}
		f.assignee = idx
	}
	return f
}

// Editing reports whether the form edits an existing task.
func (f *TaskForm) Editing() bool {
	return f.id != ""
}

// Update handles key events for the form.
func (f *TaskForm) Update(msg tea.Msg) (*TaskForm, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	switch keyMsg.String() {
	case "esc":
		f.cancelled = true
		return f, nil
	case "enter":
		f.submit()
		return f, nil
	case "tab", "down":
		return f, f.setFocus((f.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return f, f.setFocus((f.focus + fieldCount - 1) % fieldCount)
	}

	switch f.focus {
	case fieldType:
		switch keyMsg.String() {
		case "left", "right", " ", "h", "l":
			f.typ = f.typ.Next()
		}
		return f, nil
	case fieldAssignee:
		switch keyMsg.String() {
		case "right", " ", "l":
			f.assignee = (f.assignee + 1) % len(f.users)
		case "left", "h":
			f.assignee = (f.assignee + len(f.users) - 1) % len(f.users)
		}
		return f, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldText:
		f.text, cmd = f.text.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	f.err = ""
	return f, cmd
}

func (f *TaskForm) setFocus(field formField) tea.Cmd {
	f.focus = field
	f.text.Blur()
	f.due.Blur()
	switch field {
	case fieldText:
		return f.text.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

func (f *TaskForm) submit() {
	text := strings.TrimSpace(f.text.Value())
	if text == "" {
		f.err = "text is required"
		f.setFocus(fieldText)
		return
	}

	res := &TaskFormResult{ID: f.id, Text: text, Type: f.typ}

	if raw := strings.TrimSpace(f.due.Value()); raw != "" {
		due, err := state.ParseDueDate(raw, f.loc)
		if err != nil {
			f.err = fmt.Sprintf("invalid due date %q", raw)
			f.setFocus(fieldDue)
			return
		}
		res.DueDate = &due
	}

	if name := f.users[f.assignee]; name != "" {
		res.Assignee = &name
	}

	f.result = res
}

// Cancelled returns true if the user dismissed the form.
func (f *TaskForm) Cancelled() bool {
	return f.cancelled
}

// Result returns the submitted form, or nil if not submitted yet.
func (f *TaskForm) Result() *TaskFormResult {
	return f.result
}

// View renders the form.
func (f *TaskForm) View(th styles.Theme) string {
	title := "New task"
	if f.Editing() {
		title = "Edit task"
	}

	row := func(field formField, label, value string) string {
		st := th.Input
		if f.focus == field {
			st = th.InputActive
		}
		return st.Render(th.Meta.Render(label) + "\n" + value)
	}

	assignee := f.users[f.assignee]
	if assignee == "" {
		assignee = th.Meta.Render("unassigned")
	}
	if len(f.users) == 1 {
		assignee += th.Meta.Render("  (add users with u)")
	}

	parts := []string{
		th.PanelTitle.Render(title),
		row(fieldText, "Task", f.text.View()),
		row(fieldType, "Type", "‹ "+th.TypeBadge(f.typ)+" ›"),
		row(fieldDue, "Due", f.due.View()),
		row(fieldAssignee, "Assignee", "‹ "+assignee+" ›"),
	}
	if f.err != "" {
		parts = append(parts, th.Error.Render(f.err))
	}
	parts = append(parts, th.Help.Render("tab next  ←/→ change  enter save  esc cancel"))

	return th.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
