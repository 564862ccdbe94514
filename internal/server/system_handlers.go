package server

import (
	"net/http"

	"github.com/Trevolee01/Bui-transport/internal/api"
	"github.com/Trevolee01/Bui-transport/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Notification queue depth
// @Tags         system
// @Produce      json
// @Success      200 {object} api.QueueResponse
// @Router       /admin/notifications/queue [get]
func NotificationQueue(notifications *notification.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		length := notifications.QueueLength(c.Request.Context())
		c.JSON(http.StatusOK, api.QueueResponse{Queued: length})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
