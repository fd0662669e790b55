// Package api implements the management HTTP API for scheduled jobs.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
	"github.com/ncecere/firecrawl-webui/internal/scheduler"
)

// SchedulerController is the surface of the scheduler the handlers drive.
type SchedulerController interface {
	Start(ctx context.Context) error
	Stop() error
	Status() scheduler.Status
	Reload(ctx context.Context) (int, error)
	ScheduleJob(ctx context.Context, job *domain.ScheduledJob) error
	UnscheduleJob(jobID string)
	ExecuteJobManually(ctx context.Context, jobID string) (*domain.JobRun, error)
}

// CreateScheduleRequest is the payload for creating a schedule.
type CreateScheduleRequest struct {
	Name           string         `json:"name"`
	JobType        string         `json:"jobType"`
	JobConfig      domain.JSONMap `json:"jobConfig"`
	URL            string         `json:"url"`
	URLs           []string       `json:"urls"`
	APIEndpoint    string         `json:"apiEndpoint"`
	ScheduleType   string         `json:"scheduleType"`
	ScheduleConfig domain.JSONMap `json:"scheduleConfig"`
	Timezone       string         `json:"timezone"`
	IsActive       *bool          `json:"isActive"`
}

// UpdateScheduleRequest is the payload for a partial schedule update.
// Absent fields leave the stored value unchanged; url may be set to the
// empty string to clear it when switching to a URL-list job type.
type UpdateScheduleRequest struct {
	Name           string         `json:"name"`
	JobType        string         `json:"jobType"`
	JobConfig      domain.JSONMap `json:"jobConfig"`
	URL            *string        `json:"url"`
	URLs           []string       `json:"urls"`
	APIEndpoint    string         `json:"apiEndpoint"`
	ScheduleType   string         `json:"scheduleType"`
	ScheduleConfig domain.JSONMap `json:"scheduleConfig"`
	Timezone       string         `json:"timezone"`
	IsActive       *bool          `json:"isActive"`
}

// SchedulerActionRequest selects a scheduler lifecycle action.
type SchedulerActionRequest struct {
	Action string `json:"action"`
}

// respondData sends a success envelope carrying data.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondList sends a success envelope with a named collection key.
func respondList(c *gin.Context, key string, items any) {
	c.JSON(http.StatusOK, gin.H{"success": true, key: items})
}

// respondError sends an error envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondForError maps a domain error to an HTTP status and sends the
// error envelope.
func respondForError(c *gin.Context, err error) {
	respondError(c, statusForError(err), err.Error())
}

// statusForError maps error kinds to HTTP statuses: invalid input is 400,
// missing rows 404, busy jobs 409, everything else 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, recurrence.ErrInvalidScheduleConfig):
		return http.StatusBadRequest
	case errors.Is(err, scheduler.ErrJobInactive):
		return http.StatusBadRequest
	case errors.Is(err, scheduler.ErrRunInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseLimit parses the limit query param with a default.
func parseLimit(c *gin.Context, defaultLimit int) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return limit
}
