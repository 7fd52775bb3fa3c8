package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/pear/internal/core/task"
)

// View implements tea.Model.
func (m Model) View() string {
	th := m.theme

	header := th.Title.Render("pear") + "  " + th.Summary.Render(m.snap.Summary())

	var body string
	switch {
	case !m.snap.Loaded:
		body = th.Meta.Render("Loading…")
	case m.form != nil:
		body = m.form.View(th)
	case m.picker != nil:
		body = m.picker.View(th, m.icons)
	case m.users != nil:
		body = m.users.View(th, m.icons)
	default:
		body = m.renderList()
	}

	parts := []string{header, "", body}

	if m.form == nil && m.picker == nil && m.users == nil {
		var keys help.KeyMap = m.keys
		if m.dragging() {
			keys = dragKeyMap{m.keys}
		}
		parts = append(parts, th.Help.Render(m.help.View(keys)))
	}

	if m.flash.text != "" {
		st := th.Status
		if m.flash.err {
			st = th.Error
		}
		parts = append(parts, st.Render(m.flash.text))
	}

	app := th.App
	if m.width > 0 {
		app = app.Width(m.width)
	}
	if m.height > 0 {
		app = app.Height(m.height)
	}
	return app.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderList() string {
	th := m.theme
	if len(m.snap.Tasks) == 0 {
		return th.Meta.Render("Nothing here yet. Press a to add a task.")
	}

	now := m.app.Now()
	drag := m.snap.Drag
	rows := make([]string, 0, len(m.snap.Tasks))

	for i, t := range m.snap.Tasks {
		marker := "  "
		if i == m.cursor {
			marker = th.Cursor.Render("> ")
			if m.dragging() {
				marker = th.Cursor.Render(m.icons.Grip + " ")
			}
		}

		row := marker + m.renderTask(t, now)

		switch t.ID {
		case drag.Source:
			row = th.DragSource.Render(row)
		case drag.Target:
			row = th.DropTarget.Render(row)
		}
		rows = append(rows, row)
	}

	if m.dragging() {
		if src, ok := m.snap.Task(drag.Source); ok {
			rows = append(rows, "", th.Meta.Render("Moving: "+src.Text))
		}
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderTask(t task.Task, now time.Time) string {
	th := m.theme

	check := m.icons.Unchecked
	text := th.Task.Render(t.Text)
	switch {
	case t.Completed:
		check = m.icons.Checked
		text = th.TaskDone.Render(t.Text)
	case t.IsOverdue(now):
		text = th.Overdue.Render(t.Text)
	}

	meta := []string{th.TypeBadge(t.Type)}
	if t.DueDate != nil {
		due := m.icons.Calendar + " " + formatDue(*t.DueDate, now, m.opts.Location)
		if t.IsOverdue(now) {
			meta = append(meta, th.Overdue.Render(due))
		} else {
			meta = append(meta, th.Meta.Render(due))
		}
	}
	if name := t.AssigneeName(); name != "" {
		meta = append(meta, th.Meta.Render(m.icons.User+" "+name))
	}

	return check + " " + text + "  " + strings.Join(meta, "  ")
}

// formatDue omits the year for dates in the current year and the time for
// midnight.
func formatDue(due, now time.Time, loc *time.Location) string {
	due = due.In(loc)
	layout := "Jan 2"
	if due.Year() != now.In(loc).Year() {
		layout = "Jan 2 2006"
	}
	if due.Hour() != 0 || due.Minute() != 0 {
		layout += " 15:04"
	}
	return due.Format(layout)
}
