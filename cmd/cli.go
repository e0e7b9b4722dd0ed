package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/prom"
	"dispatch/internal/core/application/usecases/commands"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "dispatch",
	Short:         "Fleet dispatch coordinator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the notifier and the background jobs",
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  migrate,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Load the stored state, check every assignment and print the report",
	RunE:  audit,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv("CONFIG_FILE"), "YAML configuration file")
	rootCmd.AddCommand(serveCmd, migrateCmd, auditCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err = postgres.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	metrics, err := prom.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	app := NewCompositionRoot(cfg, db, metrics, logger)
	if err = app.Coordinator().Load(ctx); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	bridge, err := app.CreateMQTTBridge()
	if err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.Notifier().Run(gctx) })

	e := newWebServer(app)
	g.Go(func() error {
		logger.Info("http server listening", "port", cfg.HTTPPort)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	jobManager := app.CreateJobManager()
	g.Go(func() error {
		if err := jobManager.StartAll(); err != nil {
			return fmt.Errorf("start jobs: %w", err)
		}
		<-gctx.Done()
		jobManager.StopAll()
		return nil
	})

	if sink := app.CreateEventSink(); sink != nil {
		g.Go(func() error { return sink.Run(gctx, app.Notifier()) })
	}
	if bridge != nil {
		g.Go(func() error { return bridge.Run(gctx, app.Notifier()) })
	}

	err = g.Wait()
	logger.Info("dispatch coordinator stopped", "error", err)
	return err
}

func newWebServer(app *CompositionRoot) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	app.CreateHTTPServer().Register(e.Group("/api/v1"))
	return e
}

func migrate(*cobra.Command, []string) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	if err = postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema is up to date")
	return nil
}

// audit exits non-zero when the stored state breaks an assignment invariant.
func audit(cmd *cobra.Command, _ []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}

	metrics, err := prom.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	app := NewCompositionRoot(cfg, db, metrics, logger)
	if err = app.Coordinator().Load(cmd.Context()); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	report, err := app.CreateAuditAssignmentsCommandHandler().Handle(cmd.Context(), commands.NewAuditAssignmentsCommand())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err = enc.Encode(report); err != nil {
		return err
	}
	if len(report.Violations) > 0 {
		return fmt.Errorf("%d assignment violations", len(report.Violations))
	}
	return nil
}

func bootstrap() (Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("load config: %w", err)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, err := gorm.Open(gormpostgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return Config{}, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, logger, db, nil
}
