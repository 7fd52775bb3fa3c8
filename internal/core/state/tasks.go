package state

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hay-kot/pear/internal/core/task"
)

const taskSchemaURL = "https://github.com/hay-kot/pear/schemas/task.json"

//go:embed task.schema.json
var taskSchemaJSON string

var taskSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(taskSchemaURL)
})

// Due date layouts accepted on load, most specific first. Layouts without a
// zone are the browser's datetime-local and date inputs.
var dueDateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// RecordError describes a problem with one stored task record. Dropped
// records are left out of the decoded collection; the others were kept with
// the offending field reset.
type RecordError struct {
	Index   int
	ID      string
	Dropped bool
	Err     error
}

func (e *RecordError) Error() string {
	action := "kept"
	if e.Dropped {
		action = "dropped"
	}
	if e.ID != "" {
		return fmt.Sprintf("task %d (%s) %s: %v", e.Index, e.ID, action, e.Err)
	}
	return fmt.Sprintf("task %d %s: %v", e.Index, action, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

type taskRecord struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Completed bool    `json:"completed"`
	DueDate   *string `json:"dueDate"`
	Type      *string `json:"type"`
	Assignee  *string `json:"assignee"`
}

// DecodeTasks parses a stored task collection and migrates older record
// shapes: a missing or empty type becomes task.DefaultType and zone-less due
// dates are read in loc. Decoding already-migrated data is a no-op.
//
// The returned error is non-nil only when data is not a JSON array. Problems
// with single records are reported as RecordErrors.
func DecodeTasks(data []byte, loc *time.Location) ([]task.Task, []*RecordError, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, nil, err
	}

	schema, err := taskSchema()
	if err != nil {
		return nil, nil, fmt.Errorf("compile task schema: %w", err)
	}

	var (
		tasks  = make([]task.Task, 0, len(raws))
		issues []*RecordError
	)

	for i, raw := range raws {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			issues = append(issues, &RecordError{Index: i, Dropped: true, Err: err})
			continue
		}
		if err := schema.Validate(doc); err != nil {
			issues = append(issues, &RecordError{Index: i, ID: recordID(doc), Dropped: true, Err: schemaError(err)})
			continue
		}

		var rec taskRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			issues = append(issues, &RecordError{Index: i, ID: recordID(doc), Dropped: true, Err: err})
			continue
		}

		t, err := migrate(rec, loc)
		if err != nil {
			issues = append(issues, &RecordError{Index: i, ID: rec.ID, Err: err})
		}
		tasks = append(tasks, t)
	}

	return tasks, issues, nil
}

// EncodeTasks serializes tasks in their stored form.
func EncodeTasks(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// migrate converts a validated record into a task. The returned error
// describes a field that was reset; the task is usable either way.
func migrate(rec taskRecord, loc *time.Location) (task.Task, error) {
	t := task.Task{
		ID:        rec.ID,
		Text:      rec.Text,
		Completed: rec.Completed,
		Type:      task.DefaultType,
	}

	var errs []error

	if rec.Type != nil && *rec.Type != "" {
		if typ := task.Type(*rec.Type); typ.IsValid() {
			t.Type = typ
		} else {
			errs = append(errs, fmt.Errorf("unknown type %q, using %q", *rec.Type, task.DefaultType))
		}
	}

	if rec.DueDate != nil && *rec.DueDate != "" {
		due, err := ParseDueDate(*rec.DueDate, loc)
		if err != nil {
			errs = append(errs, err)
		} else {
			t.DueDate = &due
		}
	}

	if rec.Assignee != nil && *rec.Assignee != "" {
		a := *rec.Assignee
		t.Assignee = &a
	}

	return t, errors.Join(errs...)
}

// ParseDueDate parses an RFC 3339 timestamp or one of the zone-less input
// layouts, which are interpreted in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

func recordID(doc any) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["id"].(string)
	return id
}

// schemaError flattens a validation error to its leaf messages.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var msgs []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			collect(c)
		}
	}
	collect(ve)

	return errors.New(strings.Join(msgs, "; "))
}
