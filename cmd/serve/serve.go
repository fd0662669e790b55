// Package serve implements the HTTP server command for the scheduling service.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ncecere/firecrawl-webui/internal/api"
	"github.com/ncecere/firecrawl-webui/internal/config"
	"github.com/ncecere/firecrawl-webui/internal/database"
	"github.com/ncecere/firecrawl-webui/internal/logger"
	"github.com/ncecere/firecrawl-webui/internal/runner"
	"github.com/ncecere/firecrawl-webui/internal/scheduler"
)

// === Types ===

// CommandDeps holds common dependencies for the HTTP server.
type CommandDeps struct {
	Logger logger.Interface
	Config *config.Config
}

// === Constants ===

const (
	signalChannelBufferSize = 1
	errorChannelBufferSize  = 1
	defaultShutdownTimeout  = 30 * time.Second
)

// === Errors ===

var (
	// errLoggerRequired is returned when CommandDeps.Logger is nil
	errLoggerRequired = errors.New("logger is required")
	// errConfigRequired is returned when CommandDeps.Config is nil
	errConfigRequired = errors.New("config is required")
)

// Command returns the serve command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling service",
		Long: `Start the HTTP API and the job dispatcher.

The service registers every active schedule with the dispatcher, serves the
schedule management API, and runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Start()
		},
	}
}

// === Main Entry Point ===

// Start starts the scheduling service and runs until interrupted.
// It handles graceful shutdown on SIGINT or SIGTERM signals.
func Start() error {
	// Phase 1: Initialize dependencies
	deps, err := newCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	// Phase 2: Open storage and apply migrations
	db, err := openDatabase(deps)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Phase 3: Setup scheduler with the Firecrawl runner
	sched, schedulesRepo, runsRepo := setupScheduler(deps, db)
	if startErr := sched.Start(context.Background()); startErr != nil {
		return fmt.Errorf("failed to start scheduler: %w", startErr)
	}

	// Phase 4: Start HTTP server
	server, errChan := startHTTPServer(deps, db, sched, schedulesRepo, runsRepo)

	// Phase 5: Run server until interrupted
	return runServerUntilInterrupt(deps.Logger, server, sched, errChan)
}

// === Dependency Setup ===

// newCommandDeps creates CommandDeps by loading config and creating logger.
func newCommandDeps() (*CommandDeps, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := createLogger(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	deps := &CommandDeps{
		Logger: log,
		Config: cfg,
	}

	if validateErr := deps.validate(); validateErr != nil {
		return nil, fmt.Errorf("validate deps: %w", validateErr)
	}

	return deps, nil
}

// createLogger creates a logger instance from the logger configuration.
func createLogger(cfg *config.LoggerConfig) (logger.Interface, error) {
	return logger.New(&logger.Config{
		Level:       logger.Level(cfg.Level),
		Development: cfg.Development,
		Encoding:    cfg.Encoding,
	})
}

// validate ensures all required dependencies are present.
func (d *CommandDeps) validate() error {
	if d.Logger == nil {
		return errLoggerRequired
	}
	if d.Config == nil {
		return errConfigRequired
	}
	return nil
}

// === Storage Setup ===

// openDatabase opens the SQLite store and applies pending migrations.
func openDatabase(deps *CommandDeps) (*sqlx.DB, error) {
	db, err := database.Open(database.Config{Path: deps.Config.Database.Path})
	if err != nil {
		return nil, err
	}

	if migrateErr := database.Migrate(db, deps.Logger); migrateErr != nil {
		db.Close()
		return nil, migrateErr
	}

	deps.Logger.Info("Database ready", "path", deps.Config.Database.Path)
	return db, nil
}

// === Scheduler Setup ===

// setupScheduler wires the repositories and the Firecrawl runner into a
// scheduler instance.
func setupScheduler(
	deps *CommandDeps,
	db *sqlx.DB,
) (*scheduler.Scheduler, *database.ScheduleRepository, *database.RunRepository) {
	schedulesRepo := database.NewScheduleRepository(db)
	runsRepo := database.NewRunRepository(db)

	client := runner.NewClient(runner.Config{
		ScrapeTimeout: deps.Config.Scraper.ScrapeTimeout,
		MapTimeout:    deps.Config.Scraper.MapTimeout,
		PollInterval:  deps.Config.Scraper.PollInterval,
		PollAttempts:  deps.Config.Scraper.PollAttempts,
	}, deps.Logger)

	sched := scheduler.New(deps.Logger, schedulesRepo, runsRepo, client)
	return sched, schedulesRepo, runsRepo
}

// === Server Setup ===

// startHTTPServer creates and starts the HTTP server.
// Returns the server and an error channel for server errors.
func startHTTPServer(
	deps *CommandDeps,
	db *sqlx.DB,
	sched *scheduler.Scheduler,
	schedulesRepo *database.ScheduleRepository,
	runsRepo *database.RunRepository,
) (*http.Server, chan error) {
	schedulesHandler := api.NewSchedulesHandler(schedulesRepo, runsRepo, sched, deps.Logger)
	schedulerHandler := api.NewSchedulerHandler(sched, runsRepo, func() error {
		return database.Migrate(db, deps.Logger)
	}, deps.Logger)

	router := api.SetupRouter(deps.Logger, schedulesHandler, schedulerHandler)
	server := api.NewHTTPServer(&deps.Config.Server, router)

	// Start server in goroutine
	deps.Logger.Info("Starting HTTP server", "addr", deps.Config.Server.Address)
	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	return server, errChan
}

// runServerUntilInterrupt runs the server until interrupted by signal or error.
func runServerUntilInterrupt(
	log logger.Interface,
	server *http.Server,
	sched *scheduler.Scheduler,
	errChan chan error,
) error {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for interrupt signal or error
	select {
	case serverErr := <-errChan:
		log.Error("Server error", "error", serverErr)
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-sigChan:
		return shutdownServer(log, server, sched, sig)
	}
}

// shutdownServer performs graceful shutdown of the server and scheduler.
func shutdownServer(
	log logger.Interface,
	server *http.Server,
	sched *scheduler.Scheduler,
	sig os.Signal,
) error {
	log.Info("Shutdown signal received", "signal", sig.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	// Stop scheduler first so in-flight runs record their outcome
	log.Info("Stopping scheduler")
	if err := sched.Stop(); err != nil {
		log.Error("Failed to stop scheduler", "error", err)
	}

	// Stop HTTP server
	log.Info("Stopping HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop server", "error", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	log.Info("Server stopped successfully")
	return nil
}
