package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthCheck handles GET /healthz: a liveness probe only, no dependency
// checks, so a degraded Redis/Postgres doesn't mask the process as unhealthy
// when it can still serve fail-open reads.
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// metricsHandler wraps promhttp.Handler for mounting under gin.
func metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
