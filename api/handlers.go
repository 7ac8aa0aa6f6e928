package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-browser-search/internal/engine"
)

// API holds dependencies for API handlers: the search session.
type API struct {
	session *engine.Session
}

// NewAPI creates a new API handler structure.
func NewAPI(session *engine.Session) *API {
	return &API{session: session}
}

// SetupRoutes defines all the API routes of the browser search service.
func SetupRoutes(router *gin.Engine, session *engine.Session) {
	apiHandler := NewAPI(session)

	router.Use(RequestIDMiddleware(), CORSMiddleware(), RequestSizeLimitMiddleware(DefaultMaxRequestSize))

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/options", apiHandler.GetOptionsHandler)
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)

	router.POST("/search", apiHandler.SearchHandler)
	router.POST("/multi-search", apiHandler.MultiSearchHandler)

	snapshotRoutes := router.Group("/snapshot")
	{
		snapshotRoutes.GET("", apiHandler.GetSnapshotHandler)           // Entity counts of the current snapshot
		snapshotRoutes.POST("/reload", apiHandler.ReloadSnapshotHandler) // Rebuild from the browser sources
	}

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}
}

// GetOptionsHandler returns the effective options: defaults with overrides applied.
func (api *API) GetOptionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.session.Options())
}

// GetSnapshotHandler returns the entity counts of the current snapshot.
func (api *API) GetSnapshotHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.session.Stats())
}

// ReloadSnapshotHandler starts a snapshot reload and returns its job ID.
func (api *API) ReloadSnapshotHandler(c *gin.Context) {
	jobID, err := api.session.ReloadAsync()
	if err != nil {
		SendJobExecutionError(c, "reload snapshot", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Snapshot reload started",
		"job_id":  jobID,
	})
}
