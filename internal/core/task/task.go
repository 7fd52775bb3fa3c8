// Package task defines the task domain model and the ordered in-memory task store.
package task

import (
	"time"
)

// Type is the category tag carried by every task.
type Type string

const (
	TypePersonal Type = "personal"
	TypeWork     Type = "work"
)

// DefaultType is assigned to new tasks when no type is given and to
// persisted tasks that predate the type field.
const DefaultType = TypePersonal

// TypeInfo holds display metadata for a task type.
type TypeInfo struct {
	Type  Type
	Label string
	Color string // accent color hex
}

var types = []TypeInfo{
	{Type: TypePersonal, Label: "Personal", Color: "#8B5CF6"},
	{Type: TypeWork, Label: "Work", Color: "#0EA5E9"},
}

// Types returns the known task types in display order.
func Types() []TypeInfo {
	out := make([]TypeInfo, len(types))
	copy(out, types)
	return out
}

// IsValid reports whether t is one of the known task types.
func (t Type) IsValid() bool {
	for _, info := range types {
		if info.Type == t {
			return true
		}
	}
	return false
}

// Info returns the display metadata for t. Unknown types fall back to the
// default type's metadata.
func (t Type) Info() TypeInfo {
	for _, info := range types {
		if info.Type == t {
			return info
		}
	}
	return types[0]
}

// Next returns the type following t in display order, wrapping around.
func (t Type) Next() Type {
	for i, info := range types {
		if info.Type == t {
			return types[(i+1)%len(types)].Type
		}
	}
	return DefaultType
}

// Task is a single todo entry.
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Type      Type       `json:"type"`
	Assignee  *string    `json:"assignee,omitempty"`
}

// IsOverdue reports whether the task has a due date strictly before now and
// is not completed.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && !t.Completed && t.DueDate.Before(now)
}

// AssigneeName returns the assignee or the empty string when unassigned.
func (t Task) AssigneeName() string {
	if t.Assignee == nil {
		return ""
	}
	return *t.Assignee
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	return c
}

// Ptr returns a pointer to v. Used for optional task fields.
func Ptr[T any](v T) *T {
	return &v
}
