package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ncecere/firecrawl-webui/internal/database"
	"github.com/ncecere/firecrawl-webui/internal/logger"
)

// SchedulerHandler handles scheduler lifecycle HTTP requests.
type SchedulerHandler struct {
	scheduler SchedulerController
	runs      database.RunStore
	migrate   func() error
	logger    logger.Interface
}

// NewSchedulerHandler creates a new scheduler handler. migrate re-applies
// store migrations for the one-shot startup endpoint.
func NewSchedulerHandler(
	sched SchedulerController,
	runs database.RunStore,
	migrate func() error,
	log logger.Interface,
) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: sched,
		runs:      runs,
		migrate:   migrate,
		logger:    log,
	}
}

// Status handles GET /api/v1/scheduler/status. The payload pairs the
// dispatcher state with global run statistics.
func (h *SchedulerHandler) Status(c *gin.Context) {
	stats, err := h.runs.Stats(c.Request.Context(), "")
	if err != nil {
		respondForError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"scheduler": h.scheduler.Status(),
		"runs":      stats,
	})
}

// Action handles POST /api/v1/scheduler/status with {"action":"start"|"stop"}.
func (h *SchedulerHandler) Action(c *gin.Context) {
	var req SchedulerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	switch req.Action {
	case "start":
		if err := h.scheduler.Start(c.Request.Context()); err != nil {
			respondForError(c, err)
			return
		}
	case "stop":
		if err := h.scheduler.Stop(); err != nil {
			respondForError(c, err)
			return
		}
	default:
		respondError(c, http.StatusBadRequest,
			"Invalid action: expected \"start\" or \"stop\"")
		return
	}

	h.logger.Info("Scheduler action applied", "action", req.Action)
	respondData(c, http.StatusOK, h.scheduler.Status())
}

// Reload handles POST /api/v1/scheduler/reload.
func (h *SchedulerHandler) Reload(c *gin.Context) {
	registered, err := h.scheduler.Reload(c.Request.Context())
	if err != nil {
		respondForError(c, err)
		return
	}

	h.logger.Info("Scheduler reloaded via API", "registered", registered)
	respondData(c, http.StatusOK, gin.H{"registered": registered})
}

// Startup handles POST /api/v1/startup: applies store migrations, starts
// the scheduler, and reports how many jobs are registered. Calling it on
// an initialized service is a no-op.
func (h *SchedulerHandler) Startup(c *gin.Context) {
	if err := h.migrate(); err != nil {
		respondError(c, http.StatusInternalServerError,
			"Failed to run migrations: "+err.Error())
		return
	}

	if err := h.scheduler.Start(c.Request.Context()); err != nil {
		respondForError(c, err)
		return
	}

	status := h.scheduler.Status()
	h.logger.Info("Startup complete", "registered", status.Count)
	respondData(c, http.StatusOK, gin.H{
		"running":    status.Running,
		"registered": status.Count,
	})
}
