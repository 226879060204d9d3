package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitgrid/habitgrid-backend/utils"
	"go.uber.org/zap"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				utils.Logger.Error("panic_recovered", zap.Any("panic", r))
				utils.ErrorCount.WithLabelValues(c.FullPath(), "panic").Inc()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
				c.Abort()
			}
		}()
		c.Next()
	}
}
