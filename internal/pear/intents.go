package pear

import (
	"context"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/reorder"
	"github.com/hay-kot/pear/internal/core/task"
)

// AddTask creates a task at the top of the list. A zero p.Type uses the
// configured default type.
func (a *App) AddTask(ctx context.Context, text string, p task.AddParams) (task.Task, bool) {
	if p.Type == "" {
		p.Type = a.defaultType
	}

	var added task.Task
	ok := a.update(ctx, aggTasks, func() bool {
		var ok bool
		added, ok = a.tasks.Add(text, p)
		return ok
	})
	if !ok {
		a.log.Debug().Msg("ignoring task with empty text")
	}
	return added, ok
}

// ToggleTask flips the completed flag and notifies Feedback.
func (a *App) ToggleTask(ctx context.Context, id string) (task.Task, bool) {
	var (
		toggled task.Task
		fb      Feedback
	)
	ok := a.update(ctx, aggTasks, func() bool {
		var ok bool
		toggled, ok = a.tasks.Toggle(id)
		fb = a.feedback
		return ok
	})
	if !ok {
		a.log.Debug().Str("id", id).Msg("toggle of unknown task")
		return task.Task{}, false
	}

	if toggled.Completed {
		fb.Completed(toggled)
	} else {
		fb.Reopened(toggled)
	}
	return toggled, true
}

// DeleteTask removes a task. A drag involving the task is cancelled.
func (a *App) DeleteTask(ctx context.Context, id string) bool {
	return a.update(ctx, aggTasks, func() bool {
		if !a.tasks.Delete(id) {
			return false
		}
		if st := a.drag.State(); st.Source == id || st.Target == id {
			a.drag.Cancel()
		}
		return true
	})
}

// EditTask replaces the text, due date and assignee of a task and its type
// when p.Type is set.
func (a *App) EditTask(ctx context.Context, id, text string, p task.EditParams) (task.Task, bool) {
	var edited task.Task
	ok := a.update(ctx, aggTasks, func() bool {
		var ok bool
		edited, ok = a.tasks.Edit(id, text, p)
		return ok
	})
	return edited, ok
}

// ReorderTasks replaces the order with ids, which must be a permutation of
// the current task ids.
func (a *App) ReorderTasks(ctx context.Context, ids []string) bool {
	ok := a.update(ctx, aggTasks, func() bool {
		return a.tasks.ReorderIDs(ids)
	})
	if !ok {
		a.log.Debug().Int("ids", len(ids)).Msg("rejected reorder that is not a permutation")
	}
	return ok
}

// MoveTask moves src to the position of tgt.
func (a *App) MoveTask(ctx context.Context, src, tgt string) bool {
	return a.update(ctx, aggTasks, func() bool {
		ids, ok := reorder.Move(a.tasks.IDs(), src, tgt)
		return ok && a.tasks.ReorderIDs(ids)
	})
}

// BeginDrag starts dragging the task with id src.
func (a *App) BeginDrag(src string) {
	a.dragStep(func() { a.drag.Begin(src) })
}

// DragEnter hovers the dragged task over tgt.
func (a *App) DragEnter(tgt string) {
	a.dragStep(func() { a.drag.Enter(tgt) })
}

// DragLeave clears the hover target while the drag continues.
func (a *App) DragLeave() {
	a.dragStep(a.drag.Leave)
}

// CancelDrag abandons the drag.
func (a *App) CancelDrag() {
	a.dragStep(a.drag.Cancel)
}

// Drop ends the drag over tgt and commits the new order.
func (a *App) Drop(ctx context.Context, tgt string) bool {
	var dropped bool
	a.update(ctx, aggTasks, func() bool {
		ids, ok := a.drag.Drop(tgt, a.tasks.IDs())
		dropped = ok && a.tasks.ReorderIDs(ids)
		return dropped
	})
	if !dropped {
		// the engine went idle even though the order did not change
		a.publishNow()
	}
	return dropped
}

// DragState returns the current drag state.
func (a *App) DragState() reorder.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drag.State()
}

func (a *App) dragStep(fn func()) {
	a.mu.Lock()
	before := a.drag.State()
	fn()
	changed := a.drag.State() != before
	snap := a.snapshotLocked()
	subs := a.subscribersLocked()
	a.mu.Unlock()

	if changed {
		publish(subs, snap)
	}
}

func (a *App) publishNow() {
	a.mu.Lock()
	snap := a.snapshotLocked()
	subs := a.subscribersLocked()
	a.mu.Unlock()
	publish(subs, snap)
}

// SelectBackground makes a catalog descriptor active and clears any
// uploaded image.
func (a *App) SelectBackground(ctx context.Context, d background.Descriptor) bool {
	return a.update(ctx, aggBackground, func() bool {
		return a.bg.Select(d)
	})
}

// SelectColor makes an arbitrary #RRGGBB color the active background.
func (a *App) SelectColor(ctx context.Context, hex string) (background.Descriptor, bool) {
	var d background.Descriptor
	ok := a.update(ctx, aggBackground, func() bool {
		var ok bool
		d, ok = a.bg.SelectColor(hex)
		return ok
	})
	return d, ok
}

// UploadBackgroundImage covers the current background with an image data
// URI. The catalog selection underneath is kept.
func (a *App) UploadBackgroundImage(ctx context.Context, dataURI string) bool {
	return a.update(ctx, aggBackground, func() bool {
		return a.bg.UploadImage(dataURI)
	})
}

// RemoveBackgroundImage reveals the catalog selection again.
func (a *App) RemoveBackgroundImage(ctx context.Context) bool {
	return a.update(ctx, aggBackground, a.bg.RemoveImage)
}

// AddUser adds a trimmed name to the roster.
func (a *App) AddUser(ctx context.Context, name string) (string, bool) {
	var added string
	ok := a.update(ctx, aggUsers, func() bool {
		var ok bool
		added, ok = a.users.Add(name)
		return ok
	})
	return added, ok
}

// RemoveUser removes a name from the roster. Tasks assigned to it keep the
// name.
func (a *App) RemoveUser(ctx context.Context, name string) bool {
	return a.update(ctx, aggUsers, func() bool {
		return a.users.Remove(name)
	})
}

// ImportTasks replaces the whole collection. It fails before Load, since the
// result could not be persisted.
func (a *App) ImportTasks(ctx context.Context, tasks []task.Task) (int, error) {
	if !a.Loaded() {
		return 0, ErrNotLoaded
	}

	var dropped int
	a.update(ctx, aggTasks, func() bool {
		dropped = a.tasks.Replace(tasks)
		a.drag.Cancel()
		return true
	})
	return dropped, nil
}
