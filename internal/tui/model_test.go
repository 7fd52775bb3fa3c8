package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/pear/internal/core/kv"
	"github.com/hay-kot/pear/internal/core/reorder"
	"github.com/hay-kot/pear/internal/core/state"
	"github.com/hay-kot/pear/internal/core/task"
	"github.com/hay-kot/pear/internal/pear"
	"github.com/hay-kot/pear/internal/store/memory"
	"github.com/hay-kot/pear/pkg/tuitest"
)

func counterIDs() task.IDFunc {
	n := 0
	return func() string {
		n++
		return "id" + strconv.Itoa(n)
	}
}

func newTestModel(t *testing.T, store kv.Store, texts ...string) (Model, *pear.App) {
	t.Helper()
	ctx := context.Background()

	app := pear.New(state.New(store, zerolog.Nop()), pear.Options{
		Logger: zerolog.Nop(),
		IDFunc: counterIDs(),
	})
	app.Load(ctx)
	for _, text := range texts {
		_, ok := app.AddTask(ctx, text, task.AddParams{})
		require.True(t, ok)
	}

	m := New(ctx, app, Options{Location: time.UTC})
	t.Cleanup(m.Close)
	return m, app
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(tuitest.Key(k))
		m = next.(Model)
	}
	return m
}

func texts(app *pear.App) []string {
	var out []string
	for _, t := range app.Snapshot().Tasks {
		out = append(out, t.Text)
	}
	return out
}

func TestModel_AddTaskWithForm(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	m = press(m, "a")
	require.NotNil(t, m.form)

	m = press(m, "Buy milk", "enter")
	assert.Nil(t, m.form)

	tasks := app.Snapshot().Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Text)
	assert.Equal(t, task.TypePersonal, tasks[0].Type)
	assert.Equal(t, tasks[0].ID, m.selected)
}

func TestModel_FormFields(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	m = press(m, "a", "report", "tab", "right", "tab", "2026-03-01T09:30", "enter")
	require.Nil(t, m.form)

	got := app.Snapshot().Tasks[0]
	assert.Equal(t, task.TypeWork, got.Type)
	require.NotNil(t, got.DueDate)
	assert.True(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC).Equal(*got.DueDate))
	assert.Nil(t, got.Assignee)
}

func TestModel_FormValidation(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	m = press(m, "a", "enter")
	require.NotNil(t, m.form, "empty text keeps the form open")
	assert.NotEmpty(t, m.form.err)

	m = press(m, "x", "tab", "tab", "someday", "enter")
	require.NotNil(t, m.form, "bad due date keeps the form open")
	assert.Contains(t, m.form.err, "someday")

	m = press(m, "esc")
	assert.Nil(t, m.form)
	assert.Empty(t, app.Snapshot().Tasks)
}

func TestModel_EditTask(t *testing.T) {
	ctx := context.Background()
	m, app := newTestModel(t, memory.New())
	_, _ = app.AddUser(ctx, "Alice")
	_, _ = app.AddTask(ctx, "report", task.AddParams{Type: task.TypeWork})
	next, _ := m.Update(stateChangedMsg{})
	m = next.(Model)

	m = press(m, "e")
	require.NotNil(t, m.form)
	assert.True(t, m.form.Editing())

	// type -> personal, assignee -> Alice
	m = press(m, "tab", "right", "tab", "tab", "right", "enter")
	require.Nil(t, m.form)

	got := app.Snapshot().Tasks[0]
	assert.Equal(t, "report", got.Text)
	assert.Equal(t, task.TypePersonal, got.Type)
	assert.Equal(t, "Alice", got.AssigneeName())
}

func TestModel_ToggleAndDelete(t *testing.T) {
	m, app := newTestModel(t, memory.New(), "a", "b")

	m = press(m, " ")
	assert.True(t, app.Snapshot().Tasks[0].Completed)
	assert.Len(t, m.bridge.flashes, 1, "completion feedback reaches the TUI")

	m = press(m, "j", "d")
	assert.Equal(t, []string{"b"}, texts(app))
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.flash.text, "Deleted")
}

func TestModel_KeyboardDrag(t *testing.T) {
	m, app := newTestModel(t, memory.New(), "a", "b", "c") // order: c, b, a

	m = press(m, "m")
	assert.Equal(t, reorder.Dragging, m.snap.Drag.Phase)
	assert.Equal(t, "id3", m.snap.Drag.Source)

	m = press(m, "j")
	assert.Equal(t, reorder.DraggingOver, m.snap.Drag.Phase)
	assert.Equal(t, "id2", m.snap.Drag.Target)

	m = press(m, "j", "enter")
	assert.Equal(t, reorder.Idle, m.snap.Drag.Phase)
	assert.Equal(t, []string{"b", "a", "c"}, texts(app))
	assert.Equal(t, 2, m.cursor, "cursor follows the dropped task")
}

func TestModel_DragBackToSourceLeaves(t *testing.T) {
	m, app := newTestModel(t, memory.New(), "a", "b")

	m = press(m, "m", "j", "k")
	assert.Equal(t, reorder.Dragging, m.snap.Drag.Phase)
	assert.Empty(t, m.snap.Drag.Target)

	m = press(m, "enter")
	assert.Equal(t, reorder.Idle, m.snap.Drag.Phase)
	assert.Equal(t, []string{"b", "a"}, texts(app))
}

func TestModel_DragCancel(t *testing.T) {
	m, app := newTestModel(t, memory.New(), "a", "b")

	m = press(m, "m", "j", "esc")
	assert.Equal(t, reorder.Idle, m.snap.Drag.Phase)
	assert.Equal(t, []string{"b", "a"}, texts(app))
	assert.Equal(t, 0, m.cursor, "cursor returns to the source")
}

func TestModel_MoveWithKeys(t *testing.T) {
	m, app := newTestModel(t, memory.New(), "a", "b", "c")

	m = press(m, "J")
	assert.Equal(t, []string{"b", "c", "a"}, texts(app))
	assert.Equal(t, 1, m.cursor)

	m = press(m, "K", "K")
	assert.Equal(t, []string{"c", "b", "a"}, texts(app))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_BackgroundPicker(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	m = press(m, "b")
	require.NotNil(t, m.picker)

	// the picker opens on White; the next color is Snow
	m = press(m, "j", "enter")
	assert.Equal(t, "Snow", app.Snapshot().Background.Descriptor.Name)
	require.NotNil(t, m.picker, "selecting keeps the picker open")

	m = press(m, "c", "#336699", "enter")
	bg := app.Snapshot().Background
	assert.Equal(t, "#336699", bg.Descriptor.Value)
	assert.Equal(t, "Custom", bg.Descriptor.Name)

	m = press(m, "c", "teal-ish", "enter")
	assert.True(t, m.flash.err)

	m = press(m, "esc", "esc")
	assert.Nil(t, m.picker)
}

func TestModel_BackgroundImage(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0o644))

	m = press(m, "b", "i", path, "enter")
	require.NotNil(t, app.Snapshot().Background.UploadedImage)
	assert.True(t, m.snap.Dark)

	m = press(m, "x")
	assert.Nil(t, app.Snapshot().Background.UploadedImage)

	m = press(m, "i", filepath.Join(t.TempDir(), "missing.png"), "enter")
	assert.True(t, m.flash.err)
}

func TestModel_UsersPanel(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	m = press(m, "u")
	require.NotNil(t, m.users)

	m = press(m, "a", "Alice", "enter", "Bob", "enter")
	assert.Equal(t, []string{"Alice", "Bob"}, app.Snapshot().Users)

	m = press(m, "Alice", "enter")
	assert.True(t, m.flash.err, "duplicate names are reported")

	m = press(m, "esc", "d")
	assert.Equal(t, []string{"Bob"}, app.Snapshot().Users)

	m = press(m, "esc")
	assert.Nil(t, m.users)
}

func TestModel_ExternalChangesRefresh(t *testing.T) {
	m, app := newTestModel(t, memory.New())

	_, _ = app.AddTask(context.Background(), "from elsewhere", task.AddParams{})

	msg := m.bridge.wait()()
	require.IsType(t, stateChangedMsg{}, msg)

	next, cmd := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, cmd, "the model waits for the next change")
	require.Len(t, m.snap.Tasks, 1)
	assert.Contains(t, tuitest.StripANSI(m.View()), "from elsewhere")
}

type rejectingStore struct{ *memory.Store }

func (rejectingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestModel_ReportsSaveFailure(t *testing.T) {
	m, app := newTestModel(t, rejectingStore{memory.New()})

	m = press(m, "a", "x", "enter")
	assert.Len(t, app.Snapshot().Tasks, 1, "memory stays authoritative")
	assert.Equal(t, saveFailedText, m.flash.text)
	assert.True(t, m.flash.err)

	m.flash = flashMsg{}
	m = press(m, "j")
	assert.Empty(t, m.flash.text, "the same failure is reported once")
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t, memory.New())
	assert.Contains(t, m.View(), "Nothing here yet")

	m, _ = newTestModel(t, memory.New(), "a", "b")
	m = press(m, " ")
	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "1 of 2 remaining")
	assert.Contains(t, view, "[x]")
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		due  time.Time
		want string
	}{
		{time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC), "May 3"},
		{time.Date(2026, 5, 3, 14, 5, 0, 0, time.UTC), "May 3 14:05"},
		{time.Date(2027, 1, 9, 0, 0, 0, 0, time.UTC), "Jan 9 2027"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDue(tt.due, now, time.UTC))
		})
	}
}
