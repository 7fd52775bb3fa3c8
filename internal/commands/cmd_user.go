package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/pkg/iojson"
)

// UserCmd implements the pear user command group.
type UserCmd struct {
	flags *Flags

	jsonOutput bool
}

// NewUserCmd creates a new user command.
func NewUserCmd(flags *Flags) *UserCmd {
	return &UserCmd{flags: flags}
}

// Register adds the user command to the application.
func (cmd *UserCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "user",
		Usage: "Manage the names tasks can be assigned to",
		Description: `Removing a user does not change tasks already assigned to them.

Examples:
  pear user add Alice
  pear user ls
  pear user rm Alice`,
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List users",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as a JSON array",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "add",
				Usage:     "Add a user",
				UsageText: "pear user add <name>",
				Action:    cmd.runAdd,
			},
			{
				Name:          "rm",
				Usage:         "Remove a user",
				UsageText:     "pear user rm <name>",
				ShellComplete: UserCompleter(cmd.flags),
				Action:        cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *UserCmd) runLs(ctx context.Context, c *cli.Command) error {
	users := cmd.flags.App.Snapshot().Users
	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteLine(out, users)
	}

	if len(users) == 0 {
		fmt.Fprintf(os.Stderr, "No users yet\n")
		return nil
	}
	for _, name := range users {
		_, _ = fmt.Fprintln(out, name)
	}
	return nil
}

func (cmd *UserCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "user add")

	name, ok := cmd.flags.App.AddUser(ctx, c.Args().First())
	if !ok {
		if name == "" {
			return fmt.Errorf("user name is required")
		}
		return fmt.Errorf("user %q already exists", name)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Added %s\n", name)
	return cmd.flags.flush()
}

func (cmd *UserCmd) runRemove(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithCommand(ctx, "user rm")

	name := c.Args().First()
	if !cmd.flags.App.RemoveUser(ctx, name) {
		return fmt.Errorf("no user named %q", name)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Removed %s\n", name)
	return cmd.flags.flush()
}
