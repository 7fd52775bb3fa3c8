// Package tui is the interactive task list. It renders App snapshots and
// turns key presses into App intents.
package tui

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/internal/core/reorder"
	"github.com/hay-kot/pear/internal/core/styles"
	"github.com/hay-kot/pear/internal/core/task"
	"github.com/hay-kot/pear/internal/pear"
)

// Options configures the TUI.
type Options struct {
	Theme       string // auto, light or dark
	NerdIcons   bool
	DefaultType task.Type
	Location    *time.Location
	Logger      zerolog.Logger
}

// Model is the bubbletea model for the task list.
type Model struct {
	// ctx is the command context; intents run under it.
	ctx         context.Context
	app         *pear.App
	opts        Options
	log         zerolog.Logger
	bridge      *bridge
	unsubscribe func()

	keys keyMap
	help help.Model

	snap  pear.Snapshot
	theme styles.Theme
	icons styles.Icons

	cursor   int
	selected string // id under the cursor, kept across refreshes

	form   *TaskForm
	picker *BackgroundPicker
	users  *UserPanel

	flash    flashMsg
	flashSeq int
	reported error // last persistence failure shown to the user

	width  int
	height int
}

// New creates the model and subscribes it to app. Call Close when the
// program exits.
func New(ctx context.Context, app *pear.App, opts Options) Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if !opts.DefaultType.IsValid() {
		opts.DefaultType = task.DefaultType
	}

	b := newBridge()
	m := Model{
		ctx:    ctx,
		app:    app,
		opts:   opts,
		log:    logging.Sub(opts.Logger, "tui"),
		bridge: b,
		keys:   defaultKeyMap(),
		help:   help.New(),
		icons:  styles.IconSet(opts.NerdIcons),
	}
	m.unsubscribe = app.Subscribe(b.notify)
	app.SetFeedback(b)
	m.refresh()
	return m
}

// Close detaches the model from the App.
func (m Model) Close() {
	m.unsubscribe()
	m.app.SetFeedback(nil)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.bridge.wait()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case stateChangedMsg:
		m.refresh()
		return m, m.bridge.wait()
	case flashMsg:
		return m, tea.Batch(m.setFlash(msg.text, msg.err), m.bridge.wait())
	case clearFlashMsg:
		if msg.seq == m.flashSeq {
			m.flash = flashMsg{}
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case m.form != nil:
			return m.updateForm(msg)
		case m.picker != nil:
			return m.updatePicker(msg)
		case m.users != nil:
			return m.updateUsers(msg)
		case m.dragging():
			return m.updateDrag(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

// refresh re-reads the App snapshot and keeps the cursor on the same task.
func (m *Model) refresh() {
	m.snap = m.app.Snapshot()
	m.theme = styles.New(m.opts.Theme, m.snap.Background)

	if i := m.indexOf(m.selected); i >= 0 {
		m.cursor = i
	}
	m.setCursor(m.cursor)

	if m.users != nil {
		m.users.SetUsers(m.snap.Users)
	}
	if m.picker != nil {
		m.picker.SetCurrent(m.snap.Background)
	}
}

func (m *Model) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(m.snap.Tasks, func(t task.Task) bool { return t.ID == id })
}

func (m *Model) setCursor(i int) {
	m.cursor = max(min(i, len(m.snap.Tasks)-1), 0)
	m.selected = ""
	if len(m.snap.Tasks) > 0 {
		m.selected = m.snap.Tasks[m.cursor].ID
	}
}

func (m *Model) current() (task.Task, bool) {
	if len(m.snap.Tasks) == 0 {
		return task.Task{}, false
	}
	return m.snap.Tasks[m.cursor], true
}

func (m *Model) dragging() bool {
	return m.snap.Drag.Phase != reorder.Idle
}

func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = flashMsg{text: text, err: isErr}
	return clearFlashAfter(m.flashSeq)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Up):
		m.setCursor(m.cursor - 1)
	case key.Matches(msg, k.Down):
		m.setCursor(m.cursor + 1)
	case key.Matches(msg, k.Top):
		m.setCursor(0)
	case key.Matches(msg, k.Bottom):
		m.setCursor(len(m.snap.Tasks) - 1)
	case key.Matches(msg, k.Add):
		m.form = NewTaskForm(m.opts.DefaultType, m.snap.Users, m.opts.Location)
	case key.Matches(msg, k.Edit):
		if t, ok := m.current(); ok {
			m.form = EditTaskForm(t, m.snap.Users, m.opts.Location)
		}
	case key.Matches(msg, k.Toggle):
		if t, ok := m.current(); ok {
			m.app.ToggleTask(m.ctx, t.ID)
			m.refresh()
		}
	case key.Matches(msg, k.Delete):
		if t, ok := m.current(); ok {
			m.app.DeleteTask(m.ctx, t.ID)
			m.refresh()
			return m, m.setFlash("Deleted: "+t.Text, false)
		}
	case key.Matches(msg, k.Grab):
		if t, ok := m.current(); ok {
			m.app.BeginDrag(t.ID)
			m.refresh()
		}
	case key.Matches(msg, k.MoveUp):
		m.moveBy(-1)
	case key.Matches(msg, k.MoveDown):
		m.moveBy(1)
	case key.Matches(msg, k.Background):
		m.picker = NewBackgroundPicker(m.snap.Background)
	case key.Matches(msg, k.Users):
		m.users = NewUserPanel(m.snap.Users)
	}
	return m, m.persistCheck()
}

// moveBy swaps the selected task with its neighbor.
func (m *Model) moveBy(delta int) {
	t, ok := m.current()
	if !ok {
		return
	}
	to := m.cursor + delta
	if to < 0 || to >= len(m.snap.Tasks) {
		return
	}
	m.app.MoveTask(m.ctx, t.ID, m.snap.Tasks[to].ID)
	m.selected = t.ID
	m.refresh()
}

// updateDrag moves the hover target with the cursor. The drag source stays
// put until the drop.
func (m Model) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	src := m.snap.Drag.Source

	switch {
	case key.Matches(msg, k.Cancel):
		m.app.CancelDrag()
		m.selected = src
	case key.Matches(msg, k.Quit):
		m.app.CancelDrag()
		return m, tea.Quit
	case key.Matches(msg, k.Drop):
		if t, ok := m.current(); ok {
			m.app.Drop(m.ctx, t.ID)
		} else {
			m.app.CancelDrag()
		}
		m.selected = src
	case key.Matches(msg, k.Up), key.Matches(msg, k.Down),
		key.Matches(msg, k.Top), key.Matches(msg, k.Bottom):
		switch {
		case key.Matches(msg, k.Up):
			m.setCursor(m.cursor - 1)
		case key.Matches(msg, k.Down):
			m.setCursor(m.cursor + 1)
		case key.Matches(msg, k.Top):
			m.setCursor(0)
		default:
			m.setCursor(len(m.snap.Tasks) - 1)
		}
		if t, ok := m.current(); ok && t.ID != src {
			m.app.DragEnter(t.ID)
		} else {
			m.app.DragLeave()
		}
	default:
		return m, nil
	}

	m.refresh()
	return m, m.persistCheck()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)

	if m.form.Cancelled() {
		m.form = nil
		return m, nil
	}

	res := m.form.Result()
	if res == nil {
		return m, cmd
	}
	m.form = nil

	if res.ID == "" {
		added, ok := m.app.AddTask(m.ctx, res.Text, task.AddParams{
			DueDate:  res.DueDate,
			Type:     res.Type,
			Assignee: res.Assignee,
		})
		if ok {
			m.selected = added.ID
		}
	} else {
		typ := res.Type
		m.app.EditTask(m.ctx, res.ID, res.Text, task.EditParams{
			DueDate:  res.DueDate,
			Type:     &typ,
			Assignee: res.Assignee,
		})
	}
	m.refresh()
	return m, m.persistCheck()
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if m.picker.Cancelled() {
		m.picker = nil
		return m, nil
	}

	res := m.picker.TakeResult()
	if res == nil {
		return m, cmd
	}

	var flash tea.Cmd
	switch res.Action {
	case PickerSelect:
		m.app.SelectBackground(m.ctx, res.Descriptor)
	case PickerColor:
		if _, ok := m.app.SelectColor(m.ctx, res.Value); !ok {
			flash = m.setFlash("Not a color: "+res.Value, true)
		} else {
			m.picker.CloseInput()
		}
	case PickerImage:
		uri, err := background.ReadImageFile(res.Value)
		switch {
		case errors.Is(err, background.ErrNotImage):
			flash = m.setFlash("Not an image: "+res.Value, true)
		case err != nil:
			m.log.Warn().Err(err).Str("path", res.Value).Msg("failed to read background image")
			flash = m.setFlash("Could not read "+res.Value, true)
		default:
			m.app.UploadBackgroundImage(m.ctx, uri)
			m.picker.CloseInput()
		}
	case PickerRemoveImage:
		m.app.RemoveBackgroundImage(m.ctx)
	}

	m.refresh()
	return m, tea.Batch(cmd, flash, m.persistCheck())
}

func (m Model) updateUsers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.users, cmd = m.users.Update(msg)

	if m.users.Cancelled() {
		m.users = nil
		return m, nil
	}

	res := m.users.TakeResult()
	if res == nil {
		return m, cmd
	}

	var flash tea.Cmd
	switch res.Action {
	case UserPanelAdd:
		if _, ok := m.app.AddUser(m.ctx, res.Name); !ok {
			flash = m.setFlash(res.Name+" is already a user", true)
		}
	case UserPanelRemove:
		m.app.RemoveUser(m.ctx, res.Name)
	}

	m.refresh()
	return m, tea.Batch(cmd, flash, m.persistCheck())
}

// persistCheck flashes each new save failure once.
func (m *Model) persistCheck() tea.Cmd {
	err := m.app.PersistErr()
	if err == nil || err == m.reported {
		return nil
	}
	m.reported = err
	return m.setFlash(saveFailedText, true)
}

const saveFailedText = "Changes could not be saved; see the log"
