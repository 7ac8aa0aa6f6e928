package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler returns the summary of searches served so far
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.session.Analytics())
}

// HealthCheckHandler provides a simple health check endpoint. The service is
// healthy without a snapshot; "snapshot_loaded" tells whether it can search yet.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"service":         "go-browser-search",
		"snapshot_loaded": api.session.Stats().Loaded,
		"timestamp":       fmt.Sprintf("%d", time.Now().Unix()),
	})
}
