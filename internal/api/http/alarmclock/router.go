package alarmclock

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timursak/alarm-clock/internal/logger"
)

// NewRouter builds the gin engine with all alarm-clock routes attached.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	alarms := api.Group("/alarms")
	alarms.GET("", h.ListAlarms)
	alarms.PUT("", h.SaveAlarm)
	alarms.POST("/:id/toggle", h.ToggleAlarm)
	alarms.DELETE("/:id", h.DeleteAlarm)
	alarms.POST("/test", h.TestAlarm)

	ring := api.Group("/ring")
	ring.GET("", h.CurrentSession)
	ring.POST("/snooze", h.Snooze)
	ring.POST("/dismiss", h.Dismiss)

	return router
}

// requestLogger reports every request through the structured logger instead
// of gin's default writer.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.InfoKV(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
