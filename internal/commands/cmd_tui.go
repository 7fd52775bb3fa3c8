package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/pear/internal/profiler"
	"github.com/hay-kot/pear/internal/tui"
	"github.com/hay-kot/pear/pkg/utils"
)

type TuiCmd struct {
	flags *Flags

	nerdIcons    bool
	profilerPort int
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{flags: flags}
}

// Register adds an explicit tui command. Running pear without a command
// opens the same TUI.
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive task list (default)",
		Flags:  cmd.Flags(),
		Action: cmd.run,
	})
	return app
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "nerd-icons",
			Usage:       "use Nerd Font glyphs instead of ASCII markers",
			Sources:     cli.EnvVars("PEAR_NERD_ICONS"),
			Destination: &cmd.nerdIcons,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof and /debug/state on localhost at this port (e.g., 6060)",
			Sources:     cli.EnvVars("PEAR_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	app := cmd.flags.App
	cfg := cmd.flags.Config

	// the alt screen hides anything printed while the TUI runs
	var notices utils.DeferredWriter
	defer func() { _ = notices.Flush(os.Stderr) }()

	for _, warn := range cfg.Warnings() {
		notices.Printf("warning: %s", warn.Message)
	}

	if cmd.profilerPort > 0 {
		profServer := profiler.New(cmd.profilerPort, app, log.Logger)
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		url := fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())
		log.Info().Str("url", url).Msg("profiler endpoint available")
		notices.Printf("profiler was available at %s", url)
	}

	m := tui.New(ctx, app, tui.Options{
		Theme:       cfg.TUI.Theme,
		NerdIcons:   cmd.nerdIcons,
		DefaultType: cfg.Tasks.DefaultType,
		Logger:      log.Logger,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return cmd.flags.flush()
}
