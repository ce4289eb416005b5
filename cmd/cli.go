package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"handoff/internal/adapters/out/postgres"
	"handoff/internal/jobs"
	"handoff/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

// rootOptions is shared by all subcommands once PersistentPreRunE ran.
type rootOptions struct {
	cfg Config
	log *logger.Logger
}

// NewRootCommand creates the handoff CLI.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "handoff",
		Short:         "Parcel hand-off delivery service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.log = logger.New(logger.Options{
				ServiceName: "handoff",
				Level:       logger.ParseLevel(cfg.LogLevel),
				Format:      cfg.LogFormat,
				Output:      cmd.OutOrStdout(),
			})
			return nil
		},
	}

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newSweepCommand(opts))
	cmd.AddCommand(newRelayCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))

	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var withoutJobs bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.cfg.ValidateServe(); err != nil {
				return err
			}
			ctx := opts.log.WithComponent(cmd.Context(), "serve")

			root, err := opts.compose(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = root.Close() }()

			var manager *jobs.JobManager
			if !withoutJobs {
				if manager, err = root.CreateJobManager(ctx); err != nil {
					return err
				}
				if err = manager.StartAll(); err != nil {
					return err
				}
			}

			e := root.CreateRouter()
			serveErr := make(chan error, 1)
			go func() {
				addr := net.JoinHostPort("0.0.0.0", opts.cfg.HTTPPort)
				opts.log.Info(opts.log.WithField(ctx, "addr", addr), "http server listening")
				serveErr <- e.Start(addr)
			}()

			select {
			case err = <-serveErr:
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if manager != nil {
				manager.StopAll(shutdownCtx)
			}
			if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
				opts.log.Error(ctx, "http shutdown", shutdownErr)
			}
			opts.log.Info(ctx, "stopped")

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withoutJobs, "without-jobs", false, "serve HTTP only, leave sweeps to the scheduler endpoint")
	return cmd
}

func newSweepCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Auto-confirm deliveries whose confirmation window expired, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := opts.log.WithComponent(cmd.Context(), "sweep")
			root, err := opts.compose(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = root.Close() }()

			runner, err := root.CreateSweepRunner()
			if err != nil {
				return err
			}
			return runOnce(ctx, opts.log, runner)
		},
	}
}

func newRelayCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Deliver pending outbox messages, once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := opts.log.WithComponent(cmd.Context(), "relay")
			root, err := opts.compose(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = root.Close() }()

			runner, err := root.CreateRelayRunner(ctx)
			if err != nil {
				return err
			}
			return runOnce(ctx, opts.log, runner)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [command] [args...]",
		Short: "Apply database migrations (goose commands: up, down, status, version, ...)",
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command, args = args[0], args[1:]
			}
			ctx := opts.log.WithComponent(cmd.Context(), "migrate")

			if opts.cfg.DBDriver == postgres.DriverPostgres {
				if err := postgres.Migrate(ctx, opts.cfg.DSN(), command, args...); err != nil {
					return err
				}
				opts.log.Info(opts.log.WithField(ctx, "command", command), "migrations applied")
				return nil
			}

			if command != "up" {
				return fmt.Errorf("sqlite only supports migrate up, got %q", command)
			}
			db, err := postgres.Open(opts.cfg.DBOptions(opts.log))
			if err != nil {
				return err
			}
			defer closeDB(db)
			return postgres.AutoMigrate(db)
		},
	}
}

// compose opens the database, applies the schema when HANDOFF_AUTO_MIGRATE is
// set and builds the composition root.
func (o *rootOptions) compose(ctx context.Context) (*CompositionRoot, error) {
	if o.cfg.AutoMigrate {
		if err := o.migrateUp(ctx); err != nil {
			return nil, err
		}
	}

	db, err := postgres.Open(o.cfg.DBOptions(o.log))
	if err != nil {
		return nil, err
	}
	if o.cfg.AutoMigrate && o.cfg.DBDriver == postgres.DriverSQLite {
		if err = postgres.AutoMigrate(db); err != nil {
			closeDB(db)
			return nil, err
		}
	}
	return NewCompositionRoot(o.cfg, db, o.log), nil
}

func (o *rootOptions) migrateUp(ctx context.Context) error {
	if o.cfg.DBDriver != postgres.DriverPostgres {
		return nil
	}
	return postgres.Migrate(ctx, o.cfg.DSN(), "up")
}

func runOnce(ctx context.Context, log *logger.Logger, runner *jobs.Runner) error {
	ran, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}
	if !ran {
		log.Info(ctx, "another instance holds the lock, nothing done")
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// echoLogLevel maps the service log level onto echo's own logger, which only
// reports startup and internal errors.
func echoLogLevel(level string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return log.DEBUG
	case "info":
		return log.INFO
	case "warn", "warning":
		return log.WARN
	case "disabled", "off":
		return log.OFF
	default:
		return log.ERROR
	}
}
