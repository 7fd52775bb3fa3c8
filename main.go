package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/pear/internal/commands"
	"github.com/hay-kot/pear/internal/core/config"
	"github.com/hay-kot/pear/internal/core/kv"
	"github.com/hay-kot/pear/internal/core/logging"
	"github.com/hay-kot/pear/internal/core/state"
	"github.com/hay-kot/pear/internal/data/db"
	"github.com/hay-kot/pear/internal/data/stores"
	"github.com/hay-kot/pear/internal/pear"
	"github.com/hay-kot/pear/internal/store/jsonfile"
	"github.com/hay-kot/pear/internal/store/memory"
	"github.com/hay-kot/pear/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		database    *db.DB
		watcher     *jsonfile.Watcher
		watchCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "pear",
		Usage:     "A shared task list for two",
		UsageText: "pear [global options] command [command options]",
		Description: `Pear keeps one ordered task list with due dates, task types and
assignees, plus a chosen background for the list.

Run 'pear' with no arguments to open the interactive list.
Run 'pear task add "Buy milk"' to add a task from the shell.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PEAR_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/pear.log)",
				Sources:     cli.EnvVars("PEAR_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file (.yaml or .toml)",
				Sources:     cli.EnvVars("PEAR_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("PEAR_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "storage",
				Usage:       "storage backend override (file, sqlite, memory)",
				Sources:     cli.EnvVars("PEAR_STORAGE"),
				Destination: &flags.Storage,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; the terminal belongs to the TUI
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "pear.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logger = logger.Hook(logging.ContextHook{})
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.Storage != "" {
				backend := config.Backend(flags.Storage)
				if !backend.IsValid() {
					return ctx, fmt.Errorf("unknown storage backend %q (want file, sqlite or memory)", flags.Storage)
				}
				cfg.Storage.Backend = backend
			}
			flags.Config = cfg

			var store kv.Store
			switch cfg.Storage.Backend {
			case config.BackendSQLite:
				kvStore, opened, err := stores.OpenKVStore(cfg.DataDir, db.OpenOptions{
					MaxOpenConns: cfg.Database.MaxOpenConns,
					MaxIdleConns: cfg.Database.MaxIdleConns,
					BusyTimeout:  cfg.Database.BusyTimeout,
				}, logging.Component("sqlite"))
				if err != nil {
					return ctx, fmt.Errorf("open database: %w", err)
				}
				database = opened
				store = kvStore
			case config.BackendMemory:
				store = memory.New()
			default:
				store = jsonfile.New(cfg.StateDir())
			}

			pearApp := pear.New(state.New(store, logging.Component("codec")), pear.Options{
				Logger:      log.Logger,
				DefaultType: cfg.Tasks.DefaultType,
			})
			pearApp.Load(ctx)
			flags.App = pearApp

			// Follow edits made by other pear processes sharing the state dir
			if cfg.WatchEnabled() {
				w, err := jsonfile.NewWatcher(cfg.StateDir(), logging.Component("watcher"))
				if err != nil {
					log.Warn().Err(err).Msg("failed to watch state directory, external changes will not show")
				} else {
					watcher = w
					watchCtx, cancel := context.WithCancel(context.Background())
					watchCancel = cancel
					pearApp.Follow(watchCtx, w.Watch(watchCtx))
				}
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if watchCancel != nil {
				watchCancel()
			}
			if watcher != nil {
				if err := watcher.Close(); err != nil {
					log.Warn().Err(err).Msg("failed to close watcher")
				}
			}
			if flags.App != nil {
				flags.App.Wait()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags)

	app = commands.NewTaskCmd(flags).Register(app)
	app = commands.NewBgCmd(flags).Register(app)
	app = commands.NewUserCmd(flags).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = tuiCmd.Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'pear --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
