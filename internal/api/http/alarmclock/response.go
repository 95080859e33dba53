package alarmclock

import "github.com/gin-gonic/gin"

// writeError renders the error envelope shared by every endpoint.
func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
