package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/internal/core/state"
	"github.com/hay-kot/pear/internal/core/styles"
	"github.com/hay-kot/pear/internal/core/task"
	"github.com/hay-kot/pear/internal/pear"
	"github.com/hay-kot/pear/pkg/iojson"
)

// TaskCmd implements the pear task command group.
type TaskCmd struct {
	flags *Flags

	// shared
	jsonOutput bool

	// add/edit flags
	due         string
	typ         string
	assignee    string
	interactive bool
	text        string
	clearDue    bool
	unassign    bool

	// ls flags
	match   string
	pending bool
	overdue bool

	// import
	importFile iojson.FileReader[json.RawMessage]
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags) *TaskCmd {
	return &TaskCmd{flags: flags}
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Manage tasks",
		Description: `Task commands operate on the same list the TUI shows.

Tasks are referenced by id, by unique id prefix, or by their 1-based
position in the list as printed by "pear task ls".

Examples:
  pear task add "Buy milk"
  pear task add --type work --due 2026-03-01T09:00 "Send report"
  pear task ls --match "*milk*"
  pear task toggle 1
  pear task move 3 1`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.lsCmd(),
			cmd.showCmd(),
			cmd.toggleCmd(),
			cmd.rmCmd(),
			cmd.editCmd(),
			cmd.moveCmd(),
			cmd.importCmd(),
			cmd.exportCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task to the top of the list",
		UsageText: "pear task add [--due <date>] [--type <type>] [--assignee <name>] <text...>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339)",
				Destination: &cmd.due,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "task type (personal, work)",
				Destination: &cmd.typ,
			},
			&cli.StringFlag{
				Name:        "assignee",
				Aliases:     []string{"a"},
				Usage:       "assign to a user from the roster",
				Destination: &cmd.assignee,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "fill in the task with a form",
				Destination: &cmd.interactive,
			},
			cmd.jsonFlag(),
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "task add")
	app := cmd.flags.App

	text := strings.Join(c.Args().Slice(), " ")
	if cmd.interactive {
		if err := cmd.runForm(&text); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("task form: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("task text is required")
	}

	var p task.AddParams
	var err error
	if p.DueDate, err = parseDue(cmd.due); err != nil {
		return err
	}
	if cmd.typ != "" {
		if p.Type, err = parseType(cmd.typ); err != nil {
			return err
		}
	}
	if p.Assignee, err = cmd.checkAssignee(cmd.assignee); err != nil {
		return err
	}

	added, ok := app.AddTask(ctx, text, p)
	if !ok {
		return fmt.Errorf("task text is required")
	}
	log.Debug().Ctx(ctx).Str("id", added.ID).Msg("task added")

	out := c.Root().Writer
	if cmd.jsonOutput {
		if err := iojson.WriteLine(out, newTaskInfo(added, 1, app.Now())); err != nil {
			return fmt.Errorf("encode task: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(out, "Added %s\n", added.Text)
	}

	return cmd.flags.flush()
}

// runForm prompts for the fields of a new task, prefilled from flags.
func (cmd *TaskCmd) runForm(text *string) error {
	snap := cmd.flags.App.Snapshot()
	theme := styles.New(cmd.flags.Config.TUI.Theme, snap.Background)

	if cmd.typ == "" {
		cmd.typ = string(cmd.flags.Config.Tasks.DefaultType)
	}

	typeOpts := make([]huh.Option[string], 0, len(task.Types()))
	for _, info := range task.Types() {
		typeOpts = append(typeOpts, huh.NewOption(info.Label, string(info.Type)))
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Task").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("text is required")
				}
				return nil
			}).
			Value(text),
		huh.NewSelect[string]().
			Title("Type").
			Options(typeOpts...).
			Value(&cmd.typ),
		huh.NewInput().
			Title("Due").
			Description("YYYY-MM-DD or YYYY-MM-DDTHH:MM, empty for none").
			Validate(func(s string) error {
				_, err := parseDue(s)
				return err
			}).
			Value(&cmd.due),
	}

	if len(snap.Users) > 0 {
		userOpts := []huh.Option[string]{huh.NewOption("Unassigned", "")}
		for _, name := range snap.Users {
			userOpts = append(userOpts, huh.NewOption(name, name))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Assignee").
			Options(userOpts...).
			Value(&cmd.assignee))
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(theme.FormTheme()).Run()
}

func (cmd *TaskCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks in display order",
		UsageText: "pear task ls [--match <glob>] [--pending] [--overdue] [--json]",
		Description: `Lists tasks as a table, or as JSON lines with --json.

--match filters by task text with a glob pattern (case-insensitive),
for example "*report*" or "call {mom,dad}*".`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "glob pattern matched against task text",
				Destination: &cmd.match,
			},
			&cli.BoolFlag{
				Name:        "pending",
				Usage:       "only tasks that are not completed",
				Destination: &cmd.pending,
			},
			&cli.BoolFlag{
				Name:        "overdue",
				Usage:       "only overdue tasks",
				Destination: &cmd.overdue,
			},
			cmd.jsonFlag(),
		},
		Action: cmd.runLs,
	}
}

// taskInfo is the JSON line form of a task.
type taskInfo struct {
	task.Task
	Position int  `json:"position"`
	Overdue  bool `json:"overdue"`
}

func newTaskInfo(t task.Task, pos int, now time.Time) taskInfo {
	return taskInfo{Task: t, Position: pos, Overdue: t.IsOverdue(now)}
}

func (cmd *TaskCmd) runLs(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App
	snap := app.Snapshot()
	now := app.Now()

	pattern := strings.ToLower(cmd.match)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid --match pattern %q", cmd.match)
	}

	var rows []taskInfo
	for i, t := range snap.Tasks {
		if cmd.pending && t.Completed {
			continue
		}
		if cmd.overdue && !t.IsOverdue(now) {
			continue
		}
		if pattern != "" {
			ok, _ := doublestar.Match(pattern, strings.ToLower(t.Text))
			if !ok {
				continue
			}
		}
		rows = append(rows, newTaskInfo(t, i+1, now))
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range rows {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if isTerminal(out) {
		_, _ = fmt.Fprintln(out, snap.Summary())
	}
	if len(rows) == 0 {
		if len(snap.Tasks) > 0 {
			fmt.Fprintf(os.Stderr, "No tasks match\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tDONE\tTYPE\tDUE\tASSIGNEE\tTEXT\tID")
	for _, r := range rows {
		done := " "
		if r.Completed {
			done = "x"
		}
		_, _ = fmt.Fprintf(w, "%d\t[%s]\t%s\t%s\t%s\t%s\t%s\n",
			r.Position, done, r.Type, formatDue(r.Task, now), r.AssigneeName(), r.Text, r.ID)
	}
	return w.Flush()
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         "Show one task",
		UsageText:     "pear task show [--json] <ref>",
		Flags:         []cli.Flag{cmd.jsonFlag()},
		ShellComplete: TaskRefCompleter(cmd.flags),
		Action:        cmd.runShow,
	}
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App
	t, pos, err := resolveTask(app, c.Args().First())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, newTaskInfo(t, pos, app.Now()))
	}

	theme := styles.New(cmd.flags.Config.TUI.Theme, app.Snapshot().Background)
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(theme.GlamourStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	rendered, err := r.Render(taskMarkdown(t, app.Now()))
	if err != nil {
		return fmt.Errorf("render task: %w", err)
	}
	_, _ = fmt.Fprint(out, rendered)
	return nil
}

// taskMarkdown describes t for glamour.
func taskMarkdown(t task.Task, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t.Text)

	status := "pending"
	switch {
	case t.Completed:
		status = "done"
	case t.IsOverdue(now):
		status = "**overdue**"
	}

	fmt.Fprintf(&b, "- **Status:** %s\n", status)
	fmt.Fprintf(&b, "- **Type:** %s\n", t.Type.Info().Label)
	if t.DueDate != nil {
		fmt.Fprintf(&b, "- **Due:** %s\n", t.DueDate.Local().Format("Mon Jan 2 2006, 15:04"))
	}
	if name := t.AssigneeName(); name != "" {
		fmt.Fprintf(&b, "- **Assignee:** %s\n", name)
	}
	fmt.Fprintf(&b, "\n`%s`\n", t.ID)

	return b.String()
}

func (cmd *TaskCmd) toggleCmd() *cli.Command {
	return &cli.Command{
		Name:          "toggle",
		Aliases:       []string{"done"},
		Usage:         "Flip the completed state of tasks",
		UsageText:     "pear task toggle <ref>...",
		ShellComplete: TaskRefCompleter(cmd.flags),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = logging.WithCommand(ctx, "task toggle")
			app := cmd.flags.App

			// resolve every ref before mutating so positions match the listed order
			tasks, err := resolveTasks(app, c.Args().Slice())
			if err != nil {
				return err
			}

			out := c.Root().Writer
			for _, t := range tasks {
				toggled, ok := app.ToggleTask(logging.WithTaskID(ctx, t.ID), t.ID)
				if !ok {
					continue
				}
				state := "reopened"
				if toggled.Completed {
					state = "completed"
				}
				_, _ = fmt.Fprintf(out, "%s %s\n", state, toggled.Text)
			}
			return cmd.flags.flush()
		},
	}
}

func (cmd *TaskCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Aliases:       []string{"delete"},
		Usage:         "Delete tasks",
		UsageText:     "pear task rm <ref>...",
		ShellComplete: TaskRefCompleter(cmd.flags),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = logging.WithCommand(ctx, "task rm")
			app := cmd.flags.App

			tasks, err := resolveTasks(app, c.Args().Slice())
			if err != nil {
				return err
			}

			out := c.Root().Writer
			for _, t := range tasks {
				if app.DeleteTask(logging.WithTaskID(ctx, t.ID), t.ID) {
					_, _ = fmt.Fprintf(out, "Deleted %s\n", t.Text)
				}
			}
			return cmd.flags.flush()
		},
	}
}

func (cmd *TaskCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change the text, type, due date or assignee of a task",
		UsageText: "pear task edit <ref> [--text <text>] [--type <type>] [--due <date> | --clear-due] [--assignee <name> | --unassign]",
		Description: `Fields that are not given keep their current value.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Usage: "new text", Destination: &cmd.text},
			&cli.StringFlag{Name: "type", Usage: "task type (personal, work)", Destination: &cmd.typ},
			&cli.StringFlag{Name: "due", Usage: "new due date", Destination: &cmd.due},
			&cli.BoolFlag{Name: "clear-due", Usage: "remove the due date", Destination: &cmd.clearDue},
			&cli.StringFlag{Name: "assignee", Aliases: []string{"a"}, Usage: "assign to a user", Destination: &cmd.assignee},
			&cli.BoolFlag{Name: "unassign", Usage: "remove the assignee", Destination: &cmd.unassign},
			cmd.jsonFlag(),
		},
		ShellComplete: TaskRefCompleter(cmd.flags),
		Action:        cmd.runEdit,
	}
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "task edit")
	app := cmd.flags.App

	t, pos, err := resolveTask(app, c.Args().First())
	if err != nil {
		return err
	}
	ctx = logging.WithTaskID(ctx, t.ID)

	text := t.Text
	if c.IsSet("text") {
		text = cmd.text
	}

	p := task.EditParams{DueDate: t.DueDate, Assignee: t.Assignee}
	switch {
	case cmd.clearDue:
		p.DueDate = nil
	case c.IsSet("due"):
		if p.DueDate, err = parseDue(cmd.due); err != nil {
			return err
		}
	}
	switch {
	case cmd.unassign:
		p.Assignee = nil
	case c.IsSet("assignee"):
		if p.Assignee, err = cmd.checkAssignee(cmd.assignee); err != nil {
			return err
		}
	}
	if c.IsSet("type") {
		typ, err := parseType(cmd.typ)
		if err != nil {
			return err
		}
		p.Type = &typ
	}

	edited, ok := app.EditTask(ctx, t.ID, text, p)
	if !ok {
		return fmt.Errorf("task text is required")
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		if err := iojson.WriteLine(out, newTaskInfo(edited, pos, app.Now())); err != nil {
			return fmt.Errorf("encode task: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(out, "Updated %s\n", edited.Text)
	}
	return cmd.flags.flush()
}

func (cmd *TaskCmd) moveCmd() *cli.Command {
	return &cli.Command{
		Name:      "move",
		Aliases:   []string{"mv"},
		Usage:     "Move a task to the position of another",
		UsageText: "pear task move <ref> <target-ref>",
		Description: `Removes the task and inserts it where the target currently is,
the same as dragging it onto the target in the TUI.`,
		ShellComplete: TaskRefCompleter(cmd.flags),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = logging.WithCommand(ctx, "task move")
			app := cmd.flags.App

			if c.Args().Len() != 2 {
				return fmt.Errorf("expected a task and a target, got %d argument(s)", c.Args().Len())
			}
			src, _, err := resolveTask(app, c.Args().Get(0))
			if err != nil {
				return err
			}
			tgt, _, err := resolveTask(app, c.Args().Get(1))
			if err != nil {
				return err
			}

			if !app.MoveTask(logging.WithTaskID(ctx, src.ID), src.ID, tgt.ID) {
				_, _ = fmt.Fprintln(c.Root().Writer, "Order unchanged")
				return nil
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Moved %s\n", src.Text)
			return cmd.flags.flush()
		},
	}
}

func (cmd *TaskCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace the task list from JSON",
		UsageText: "pear task import [-f <file>] < tasks.json",
		Description: `Reads a JSON array of tasks in the stored format and replaces the
whole list. Comments and trailing commas are allowed.

Every record must be valid and ids must be unique; otherwise nothing is
imported and the problems are listed.`,
		Flags: []cli.Flag{cmd.importFile.Flag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = logging.WithCommand(ctx, "task import")

			data, err := cmd.importFile.ReadBytes()
			if err != nil {
				return err
			}

			tasks, err := decodeImport(data)
			if err != nil {
				return err
			}

			if _, err := cmd.flags.App.ImportTasks(ctx, tasks); err != nil {
				return fmt.Errorf("import tasks: %w", err)
			}
			_, _ = fmt.Fprintf(c.Root().Writer, "Imported %d task(s)\n", len(tasks))
			return cmd.flags.flush()
		},
	}
}

// decodeImport decodes tasks strictly: any record problem or duplicate id
// rejects the whole input.
func decodeImport(data []byte) ([]task.Task, error) {
	tasks, issues, err := state.DecodeTasks(data, time.Local)
	if err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	errs := make([]error, 0, len(issues))
	for _, issue := range issues {
		errs = append(errs, issue)
	}

	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate task id %q", t.ID))
		}
		seen[t.ID] = true
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid import, nothing changed: %w", errors.Join(errs...))
	}
	return tasks, nil
}

func (cmd *TaskCmd) exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Print the task list in the stored JSON format",
		UsageText: "pear task export > tasks.json",
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := state.EncodeTasks(cmd.flags.App.Snapshot().Tasks)
			if err != nil {
				return fmt.Errorf("encode tasks: %w", err)
			}
			_, err = fmt.Fprintf(c.Root().Writer, "%s\n", data)
			return err
		},
	}
}

func (cmd *TaskCmd) checkAssignee(name string) (*string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if !slices.Contains(cmd.flags.App.Snapshot().Users, name) {
		return nil, fmt.Errorf("unknown user %q; add it with \"pear user add\"", name)
	}
	return &name, nil
}

// resolveTask finds a task by exact id, list position or unique id prefix,
// in that order. It also returns the 1-based position.
func resolveTask(app *pear.App, ref string) (task.Task, int, error) {
	if ref == "" {
		return task.Task{}, 0, fmt.Errorf("task reference is required")
	}

	snap := app.Snapshot()
	position := func(id string) int {
		return slices.IndexFunc(snap.Tasks, func(t task.Task) bool { return t.ID == id }) + 1
	}

	if t, ok := snap.Task(ref); ok {
		return t, position(t.ID), nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(snap.Tasks) {
		return snap.Tasks[n-1], n, nil
	}

	t, err := app.ResolveTask(ref)
	if err != nil {
		return task.Task{}, 0, fmt.Errorf("%s: %w", ref, err)
	}
	return t, position(t.ID), nil
}

func resolveTasks(app *pear.App, refs []string) ([]task.Task, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("task reference is required")
	}
	out := make([]task.Task, 0, len(refs))
	for _, ref := range refs {
		t, _, err := resolveTask(app, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	due, err := state.ParseDueDate(s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: use YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339", s)
	}
	return &due, nil
}

func parseType(s string) (task.Type, error) {
	typ := task.Type(strings.ToLower(strings.TrimSpace(s)))
	if !typ.IsValid() {
		names := make([]string, 0, len(task.Types()))
		for _, info := range task.Types() {
			names = append(names, string(info.Type))
		}
		return "", fmt.Errorf("unknown task type %q (valid: %s)", s, strings.Join(names, ", "))
	}
	return typ, nil
}

func formatDue(t task.Task, now time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	s := t.DueDate.Local().Format("2006-01-02 15:04")
	if t.IsOverdue(now) {
		s += " !"
	}
	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
