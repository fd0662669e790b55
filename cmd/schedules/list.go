// Package schedules contains the list command that displays all scheduled
// jobs in a formatted table with their recurrence and dispatch state.
package schedules

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/logger"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
)

const timestampLayout = "2006-01-02 15:04"

// TableRenderer handles the display of schedule data in a table format
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a new TableRenderer instance
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{
		logger: log,
	}
}

// newTableWriter initializes a table writer with stdout as output and a
// plain text style without borders or separators.
func newTableWriter() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	noBorderStyle := table.Style{
		Box: table.BoxStyle{
			PaddingLeft:  "\t",
			PaddingRight: "\t",
		},
		Options: table.Options{
			DrawBorder:      false,
			SeparateColumns: false,
			SeparateHeader:  false,
			SeparateRows:    false,
		},
	}
	t.SetStyle(noBorderStyle)
	return t
}

// RenderSchedules formats and displays schedules in a table format
func (r *TableRenderer) RenderSchedules(jobs []*domain.ScheduledJob) error {
	if len(jobs) == 0 {
		r.logger.Info("No schedules found")
		return nil
	}

	t := newTableWriter()
	t.AppendHeader(table.Row{"ID", "Name", "Job", "Cron", "Timezone", "Active", "Last Run", "Next Run"})

	for _, job := range jobs {
		spec, err := recurrence.BuildCronSpec(job)
		if err != nil {
			spec = "invalid"
		}

		t.AppendRow(table.Row{
			job.ID,
			job.Name,
			job.JobType,
			spec,
			job.Timezone,
			strconv.FormatBool(job.IsActive),
			formatTimestamp(job.LastRunAt),
			formatTimestamp(job.NextRunAt),
		})
	}

	t.Render()
	return nil
}

// RenderRuns formats and displays run history in a table format
func (r *TableRenderer) RenderRuns(runs []*domain.JobRun) error {
	if len(runs) == 0 {
		r.logger.Info("No runs recorded for this schedule")
		return nil
	}

	t := newTableWriter()
	t.AppendHeader(table.Row{"ID", "Type", "Status", "Started", "Duration", "Error"})

	for _, run := range runs {
		duration := ""
		if run.ExecutionTimeMs != nil {
			duration = (time.Duration(*run.ExecutionTimeMs) * time.Millisecond).String()
		}
		errMsg := ""
		if run.ErrorMessage != nil {
			errMsg = *run.ErrorMessage
		}

		t.AppendRow(table.Row{
			run.ID,
			run.RunType,
			run.Status,
			run.StartedAt.UTC().Format(timestampLayout),
			duration,
			errMsg,
		})
	}

	t.Render()
	return nil
}

// formatTimestamp renders a nullable timestamp for display.
func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.UTC().Format(timestampLayout)
}

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all scheduled jobs",
		Long: `List all scheduled jobs with their recurrence, timezone, and dispatch state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListCmd(cmd.Context())
		},
	}
}

// runListCmd executes the list command
func runListCmd(ctx context.Context) error {
	deps, err := newCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	jobs, err := deps.Schedules.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	renderer := NewTableRenderer(deps.Logger)
	return renderer.RenderSchedules(jobs)
}

// newRunsCmd creates the runs command.
func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [schedule-id]",
		Short: "Show run history for a schedule",
		Long: `Show the most recent runs of a schedule, newest first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsCmd(cmd.Context(), args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultRunsLimit, "maximum number of runs to show")
	return cmd
}

const defaultRunsLimit = 20

// runRunsCmd executes the runs command
func runRunsCmd(ctx context.Context, scheduleID string, limit int) error {
	deps, err := newCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	if _, err = deps.Schedules.GetByID(ctx, scheduleID); err != nil {
		return fmt.Errorf("failed to load schedule %s: %w", scheduleID, err)
	}

	runs, err := deps.Runs.ListByScheduleID(ctx, scheduleID, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	renderer := NewTableRenderer(deps.Logger)
	return renderer.RenderRuns(runs)
}
