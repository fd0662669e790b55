package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ncecere/firecrawl-webui/internal/database"
	"github.com/ncecere/firecrawl-webui/internal/domain"
	"github.com/ncecere/firecrawl-webui/internal/logger"
	"github.com/ncecere/firecrawl-webui/internal/recurrence"
)

// defaultRunLimit caps run history responses when no limit is given.
const defaultRunLimit = 50

// SchedulesHandler handles schedule CRUD and run-history HTTP requests.
type SchedulesHandler struct {
	schedules database.ScheduleStore
	runs      database.RunStore
	scheduler SchedulerController
	logger    logger.Interface
}

// NewSchedulesHandler creates a new schedules handler.
func NewSchedulesHandler(
	schedules database.ScheduleStore,
	runs database.RunStore,
	sched SchedulerController,
	log logger.Interface,
) *SchedulesHandler {
	return &SchedulesHandler{
		schedules: schedules,
		runs:      runs,
		scheduler: sched,
		logger:    log,
	}
}

// Create handles POST /api/v1/schedules.
func (h *SchedulesHandler) Create(c *gin.Context) {
	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	job := &domain.ScheduledJob{
		ID:             uuid.New().String(),
		Name:           req.Name,
		JobType:        req.JobType,
		JobConfig:      req.JobConfig,
		URLs:           domain.StringList(req.URLs),
		APIEndpoint:    req.APIEndpoint,
		ScheduleType:   req.ScheduleType,
		ScheduleConfig: req.ScheduleConfig,
		Timezone:       req.Timezone,
		IsActive:       true,
	}
	if req.URL != "" {
		url := req.URL
		job.URL = &url
	}
	if job.Timezone == "" {
		job.Timezone = domain.DefaultTimezone
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}

	if err := job.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := recurrence.BuildCronSpec(job); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	next, err := recurrence.NextFireAfter(job, time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	job.NextRunAt = &next

	if err := h.schedules.Create(c.Request.Context(), job); err != nil {
		respondForError(c, err)
		return
	}

	if job.IsActive {
		if err := h.scheduler.ScheduleJob(c.Request.Context(), job); err != nil {
			h.logger.Error("Failed to register created schedule",
				"job_id", job.ID,
				"error", err)
			respondError(c, http.StatusInternalServerError,
				"Failed to register schedule: "+err.Error())
			return
		}
	}

	h.logger.Info("Schedule created",
		"job_id", job.ID,
		"name", job.Name,
		"job_type", job.JobType,
		"active", job.IsActive)
	respondData(c, http.StatusCreated, job)
}

// List handles GET /api/v1/schedules.
func (h *SchedulesHandler) List(c *gin.Context) {
	jobs, err := h.schedules.List(c.Request.Context())
	if err != nil {
		respondForError(c, err)
		return
	}
	respondList(c, "schedules", jobs)
}

// Get handles GET /api/v1/schedules/:id.
func (h *SchedulesHandler) Get(c *gin.Context) {
	job, err := h.schedules.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondForError(c, err)
		return
	}
	respondData(c, http.StatusOK, job)
}

// Update handles PUT /api/v1/schedules/:id. Absent payload fields keep
// their stored values; the updated row is re-registered when active and
// unregistered when paused.
func (h *SchedulesHandler) Update(c *gin.Context) {
	var req UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	job, err := h.schedules.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondForError(c, err)
		return
	}

	if req.Name != "" {
		job.Name = req.Name
	}
	if req.JobType != "" {
		job.JobType = req.JobType
	}
	if req.JobConfig != nil {
		job.JobConfig = req.JobConfig
	}
	if req.URL != nil {
		if *req.URL == "" {
			job.URL = nil
		} else {
			url := *req.URL
			job.URL = &url
		}
	}
	if req.URLs != nil {
		job.URLs = domain.StringList(req.URLs)
	}
	if req.APIEndpoint != "" {
		job.APIEndpoint = req.APIEndpoint
	}
	if req.ScheduleType != "" {
		job.ScheduleType = req.ScheduleType
	}
	if req.ScheduleConfig != nil {
		job.ScheduleConfig = req.ScheduleConfig
	}
	if req.Timezone != "" {
		job.Timezone = req.Timezone
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}

	if err := job.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := recurrence.BuildCronSpec(job); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	next, err := recurrence.NextFireAfter(job, time.Now())
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if job.IsActive {
		job.NextRunAt = &next
	}

	if err := h.schedules.Update(c.Request.Context(), job); err != nil {
		respondForError(c, err)
		return
	}

	if job.IsActive {
		if err := h.scheduler.ScheduleJob(c.Request.Context(), job); err != nil {
			h.logger.Error("Failed to re-register updated schedule",
				"job_id", job.ID,
				"error", err)
			respondError(c, http.StatusInternalServerError,
				"Failed to register schedule: "+err.Error())
			return
		}
	} else {
		h.scheduler.UnscheduleJob(job.ID)
	}

	h.logger.Info("Schedule updated",
		"job_id", job.ID,
		"name", job.Name,
		"active", job.IsActive)
	respondData(c, http.StatusOK, job)
}

// Delete handles DELETE /api/v1/schedules/:id. The dispatcher handle goes
// first so a tick cannot fire for a row mid-deletion; runs cascade with
// the row.
func (h *SchedulesHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	h.scheduler.UnscheduleJob(id)

	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		respondForError(c, err)
		return
	}

	h.logger.Info("Schedule deleted", "job_id", id)
	respondData(c, http.StatusOK, gin.H{"id": id})
}

// Run handles POST /api/v1/schedules/:id/run.
func (h *SchedulesHandler) Run(c *gin.Context) {
	run, err := h.scheduler.ExecuteJobManually(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondForError(c, err)
		return
	}
	respondData(c, http.StatusOK, run)
}

// ListRuns handles GET /api/v1/schedules/:id/runs.
func (h *SchedulesHandler) ListRuns(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.schedules.GetByID(c.Request.Context(), id); err != nil {
		respondForError(c, err)
		return
	}

	limit := parseLimit(c, defaultRunLimit)
	runs, err := h.runs.ListByScheduleID(c.Request.Context(), id, limit)
	if err != nil {
		respondForError(c, err)
		return
	}
	respondList(c, "runs", runs)
}
