package pear

import (
	"fmt"

	"github.com/hay-kot/pear/internal/core/background"
	"github.com/hay-kot/pear/internal/core/reorder"
	"github.com/hay-kot/pear/internal/core/task"
)

// Snapshot is the state handed to the presentation layer after every change.
type Snapshot struct {
	Tasks      []task.Task
	Background background.State
	Users      []string
	Remaining  int
	Dark       bool
	Drag       reorder.State
	Loaded     bool
}

// Summary is the header line shown above the list.
func (s Snapshot) Summary() string {
	if len(s.Tasks) == 0 {
		return "Start by adding a task"
	}
	return fmt.Sprintf("%d of %d remaining", s.Remaining, len(s.Tasks))
}

// Task returns the task with the given id.
func (s Snapshot) Task(id string) (task.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}
