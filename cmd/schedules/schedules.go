// Package schedules implements the command-line interface for inspecting
// scheduled jobs. It reads the service database directly so it works
// whether or not the server is running.
package schedules

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ncecere/firecrawl-webui/internal/config"
	"github.com/ncecere/firecrawl-webui/internal/database"
	"github.com/ncecere/firecrawl-webui/internal/logger"
)

// CommandDeps holds common dependencies for schedule commands.
type CommandDeps struct {
	Logger    logger.Interface
	DB        *sqlx.DB
	Schedules *database.ScheduleRepository
	Runs      *database.RunRepository
}

// Close releases the database connection.
func (d *CommandDeps) Close() error {
	return d.DB.Close()
}

// Command returns the schedules command for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedules",
		Short: "Inspect scheduled jobs",
		Long: `The schedules command provides read-only access to the schedule store.
It lists configured schedules and the run history of a single schedule.`,
	}

	cmd.AddCommand(
		newListCmd(),
		newRunsCmd(),
	)

	return cmd
}

// newCommandDeps opens the database and builds the repositories.
func newCommandDeps() (*CommandDeps, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:       logger.Level(viper.GetString("logger.level")),
		Development: viper.GetBool("logger.development"),
		Encoding:    viper.GetString("logger.encoding"),
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := database.Open(database.Config{Path: cfg.Database.Path})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if migrateErr := database.Migrate(db, log); migrateErr != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", migrateErr)
	}

	return &CommandDeps{
		Logger:    log,
		DB:        db,
		Schedules: database.NewScheduleRepository(db),
		Runs:      database.NewRunRepository(db),
	}, nil
}
