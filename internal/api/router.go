package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ncecere/firecrawl-webui/internal/config"
	"github.com/ncecere/firecrawl-webui/internal/logger"
)

// readHeaderTimeout bounds header reads independently of the request body.
const readHeaderTimeout = 10 * time.Second

// SetupRouter creates and configures the gin router with all routes.
func SetupRouter(
	log logger.Interface,
	schedules *SchedulesHandler,
	sched *SchedulerHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "firecrawl-webui",
			"time":    time.Now().UTC(),
		})
	})

	v1 := router.Group("/api/v1")
	setupScheduleRoutes(v1, schedules)
	setupSchedulerRoutes(v1, sched)

	return router
}

// setupScheduleRoutes configures schedule CRUD and run endpoints.
func setupScheduleRoutes(v1 *gin.RouterGroup, handler *SchedulesHandler) {
	v1.POST("/schedules", handler.Create)
	v1.GET("/schedules", handler.List)
	v1.GET("/schedules/:id", handler.Get)
	v1.PUT("/schedules/:id", handler.Update)
	v1.DELETE("/schedules/:id", handler.Delete)

	v1.POST("/schedules/:id/run", handler.Run)
	v1.GET("/schedules/:id/runs", handler.ListRuns)
}

// setupSchedulerRoutes configures scheduler lifecycle endpoints.
func setupSchedulerRoutes(v1 *gin.RouterGroup, handler *SchedulerHandler) {
	v1.GET("/scheduler/status", handler.Status)
	v1.POST("/scheduler/status", handler.Action)
	v1.POST("/scheduler/reload", handler.Reload)

	v1.POST("/startup", handler.Startup)
}

// NewHTTPServer builds the HTTP server around the router with the
// configured timeouts.
func NewHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// requestLogger logs one line per request.
func requestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// corsMiddleware adds CORS headers to allow frontend access.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, "+
				"accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
