package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no task matches an id or id prefix.
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguous is returned when an id prefix matches more than one task.
	ErrAmbiguous = errors.New("task id prefix is ambiguous")
)

// IDFunc generates a fresh task id. Ids must be unique and increase in
// creation order.
type IDFunc func() string

// NewID returns a UUIDv7 string. UUIDv7 values are time ordered and
// monotonic within a process.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// AddParams holds the optional fields for Store.Add.
type AddParams struct {
	DueDate  *time.Time
	Type     Type // zero value means DefaultType
	Assignee *string
}

// EditParams holds the optional fields for Store.Edit. DueDate and Assignee
// are replaced unconditionally (nil clears them); Type is replaced only when
// non-nil.
type EditParams struct {
	DueDate  *time.Time
	Type     *Type
	Assignee *string
}

// Store is the ordered in-memory task collection. New tasks are prepended.
// Order is otherwise changed only by Reorder.
//
// Store is not safe for concurrent use.
type Store struct {
	tasks []Task
	newID IDFunc
}

// NewStore creates an empty store. A nil idFn uses NewID.
func NewStore(idFn IDFunc) *Store {
	if idFn == nil {
		idFn = NewID
	}
	return &Store{newID: idFn}
}

// Replace hydrates the store with tasks, keeping their order. Tasks with an
// id already seen earlier in the slice are dropped. It returns the number of
// dropped tasks.
func (s *Store) Replace(tasks []Task) int {
	seen := make(map[string]bool, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t.Clone())
	}
	s.tasks = out
	return len(tasks) - len(out)
}

// Add creates a task and prepends it. It is a no-op when text trims to empty.
func (s *Store) Add(text string, p AddParams) (Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false
	}

	typ := p.Type
	if !typ.IsValid() {
		typ = DefaultType
	}

	t := Task{
		ID:       s.freshID(),
		Text:     text,
		DueDate:  copyTime(p.DueDate),
		Type:     typ,
		Assignee: normalizeAssignee(p.Assignee),
	}

	s.tasks = append([]Task{t}, s.tasks...)
	return t.Clone(), true
}

// Toggle flips the completed flag of the task with the given id.
func (s *Store) Toggle(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return s.tasks[i].Clone(), true
}

// Delete removes the task with the given id.
func (s *Store) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

// Edit replaces the text, due date and assignee of a task, and its type when
// p.Type is set. It is a no-op when text trims to empty or the id is unknown.
func (s *Store) Edit(id, text string, p EditParams) (Task, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, false
	}

	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}

	t := &s.tasks[i]
	t.Text = text
	t.DueDate = copyTime(p.DueDate)
	t.Assignee = normalizeAssignee(p.Assignee)
	if p.Type != nil && p.Type.IsValid() {
		t.Type = *p.Type
	}

	return t.Clone(), true
}

// Reorder replaces the ordering with the order of seq. seq must be a
// permutation of the current collection (same ids, no duplicates); anything
// else is rejected and leaves the store unchanged. Only ids are read from
// seq, task contents are kept from the store.
func (s *Store) Reorder(seq []Task) bool {
	ids := make([]string, len(seq))
	for i, t := range seq {
		ids[i] = t.ID
	}
	return s.ReorderIDs(ids)
}

// ReorderIDs is Reorder keyed by id.
func (s *Store) ReorderIDs(ids []string) bool {
	if len(ids) != len(s.tasks) {
		return false
	}

	byID := make(map[string]Task, len(s.tasks))
	for _, t := range s.tasks {
		byID[t.ID] = t
	}

	next := make([]Task, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return false
		}
		delete(byID, id) // duplicates miss on the second lookup
		next = append(next, t)
	}

	s.tasks = next
	return true
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Resolve finds a task by exact id or unique id prefix.
func (s *Store) Resolve(ref string) (Task, error) {
	if t, ok := s.Get(ref); ok {
		return t, nil
	}
	if ref == "" {
		return Task{}, ErrNotFound
	}

	var (
		found Task
		n     int
	)
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			found = t
			n++
		}
	}

	switch n {
	case 0:
		return Task{}, ErrNotFound
	case 1:
		return found.Clone(), nil
	default:
		return Task{}, ErrAmbiguous
	}
}

// List returns a copy of the collection in display order.
func (s *Store) List() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// IDs returns the task ids in display order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.ID
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Remaining returns the number of tasks that are not completed.
func (s *Store) Remaining() int {
	return Remaining(s.tasks)
}

// Remaining counts the tasks in tasks that are not completed.
func Remaining(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// Overdue returns the overdue tasks in display order.
func Overdue(tasks []Task, now time.Time) []Task {
	var out []Task
	for _, t := range tasks {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// freshID draws ids until one is unused. Injected generators are not trusted
// to avoid collisions with ids loaded from storage.
func (s *Store) freshID() string {
	for {
		id := s.newID()
		if s.index(id) < 0 {
			return id
		}
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func normalizeAssignee(a *string) *string {
	if a == nil {
		return nil
	}
	name := strings.TrimSpace(*a)
	if name == "" {
		return nil
	}
	return &name
}
