package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/commands"
	"github.com/taskdock/taskdock/internal/core/config"
	"github.com/taskdock/taskdock/internal/data/db"
	"github.com/taskdock/taskdock/internal/data/stores"
	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/internal/dock/sweep"
	"github.com/taskdock/taskdock/internal/dock/updatecheck"
	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/pkg/logutils"
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
		dockApp     = &dock.App{}
		database    *db.DB
		kvStore     *stores.KVStore
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskdock",
		Usage:     "One task list across your record-store databases",
		UsageText: "taskdock [global options] command [command options]",
		Description: `Taskdock pulls open tasks out of schema-flexible record-store databases
and merges them into one ordered list, whatever each database calls its
title, due date, or completion property.

Run 'taskdock ls' to see the merged list. Run 'taskdock dbs' to see what
roles were inferred from each database's schema.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKDOCK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/taskdock.log)",
				Sources:     cli.EnvVars("TASKDOCK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKDOCK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKDOCK_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "record-store integration token (overrides config)",
				Sources:     cli.EnvVars("TASKDOCK_TOKEN", "NOTION_TOKEN"),
				Destination: &flags.Token,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; stdout belongs to command output.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "taskdock.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.Token != "" {
				cfg.Token = flags.Token
			}
			if cfg.Token == "" {
				return ctx, dock.ErrNoToken
			}
			flags.Config = cfg

			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.DB.MaxOpenConns,
				MaxIdleConns: cfg.DB.MaxIdleConns,
				BusyTimeout:  cfg.DB.BusyTimeoutMS,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			kvStore = stores.NewKVStore(database)

			// Start background KV sweep goroutine
			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			go sweep.Start(sweepCtx, kvStore, 5*time.Minute)

			client := remote.NewClient(cfg.Token, log.Logger, remote.ClientOptions{})
			svc := dock.NewService(client, cfg, kvStore, log.Logger)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*dockApp = *dock.NewApp(svc, cfg, kvStore, database, version)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if kvStore != nil {
				if result, err := updatecheck.Check(ctx, kvStore, version); err == nil && result != nil {
					fmt.Fprintf(os.Stderr, "\nA new version is available: %s (current %s)\n", result.Latest, result.Current)
				}
			}

			if sweepCancel != nil {
				sweepCancel()
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

	app = commands.NewLsCmd(flags, dockApp).Register(app)
	app = commands.NewAddCmd(flags, dockApp).Register(app)
	app = commands.NewDoneCmd(flags, dockApp).Register(app)
	app = commands.NewSetCmd(flags, dockApp).Register(app)
	app = commands.NewDbsCmd(flags, dockApp).Register(app)
	app = commands.NewUsersCmd(flags, dockApp).Register(app)
	app = commands.NewRefreshCmd(flags, dockApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
