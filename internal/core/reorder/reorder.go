// Package reorder implements drag-and-drop reordering of a list of items
// identified by string ids.
package reorder

import "slices"

// Phase is the drag state of a list.
type Phase int

const (
	Idle Phase = iota
	Dragging
	DraggingOver
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case DraggingOver:
		return "dragging-over"
	default:
		return "idle"
	}
}

// State is a snapshot of the engine. Source is set while dragging, Target
// only while hovering over another item.
type State struct {
	Phase  Phase
	Source string
	Target string
}

// Engine is the drag state machine for a single list. The zero value is idle.
type Engine struct {
	state State
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Begin starts dragging the item with id src.
func (e *Engine) Begin(src string) {
	if src == "" {
		return
	}
	e.state = State{Phase: Dragging, Source: src}
}

// Enter records that the pointer entered the drop zone of tgt. Entering the
// source item itself leaves the state unchanged.
func (e *Engine) Enter(tgt string) {
	if e.state.Phase == Idle || tgt == "" || tgt == e.state.Source {
		return
	}
	e.state.Phase = DraggingOver
	e.state.Target = tgt
}

// Leave clears the hover target. The drag itself continues, so entering
// another item hovers again.
func (e *Engine) Leave() {
	if e.state.Phase != DraggingOver {
		return
	}
	e.state.Phase = Dragging
	e.state.Target = ""
}

// Cancel abandons the drag.
func (e *Engine) Cancel() {
	e.state = State{}
}

// Drop ends the drag over tgt and returns the new order of ids. The second
// result is false when nothing moved: no drag in progress, a drop onto the
// source, or either id missing from ids. The engine is idle afterwards in
// every case.
func (e *Engine) Drop(tgt string, ids []string) ([]string, bool) {
	src := e.state.Source
	dragging := e.state.Phase != Idle
	e.state = State{}

	if !dragging {
		return ids, false
	}
	return Move(ids, src, tgt)
}

// Move removes src from ids and reinserts it at the index tgt had before the
// removal. Moving down lands src just after tgt; moving up lands it just
// before. ids is not modified.
func Move(ids []string, src, tgt string) ([]string, bool) {
	return MoveFunc(ids, func(id string) string { return id }, src, tgt)
}

// MoveFunc is Move over arbitrary items keyed by key.
func MoveFunc[T any](items []T, key func(T) string, src, tgt string) ([]T, bool) {
	if src == tgt {
		return items, false
	}

	from := slices.IndexFunc(items, func(it T) bool { return key(it) == src })
	to := slices.IndexFunc(items, func(it T) bool { return key(it) == tgt })
	if from < 0 || to < 0 {
		return items, false
	}

	out := slices.Clone(items)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, moved)
	return out, true
}
