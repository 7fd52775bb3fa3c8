package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// TaskRefCompleter returns a ShellCompleteFunc that suggests task ids with
// their text as positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskRefCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if flags.App == nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range flags.App.Snapshot().Tasks {
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Text)
		}
	}
}

// UserCompleter suggests roster names.
func UserCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if flags.App == nil {
			return
		}
		w := cmd.Root().Writer
		for _, name := range flags.App.Snapshot().Users {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}
