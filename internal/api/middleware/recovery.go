package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panicking handler into a 500 and logs the panic value.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		logger.Error("panic while handling request",
			zap.Any("panic", rec),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Abort()
	})
}

// ErrorLogger logs the errors handlers attached with c.Error, once per
// request. Errors marked gin.ErrorTypePublic are logged at warn level; the
// rest at error level.
func ErrorLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			fields := []zap.Field{
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Int("status", c.Writer.Status()),
				zap.Error(e.Err),
			}
			if e.IsType(gin.ErrorTypePublic) {
				logger.Warn("request failed", fields...)
				continue
			}
			logger.Error("request failed", fields...)
		}
	}
}
