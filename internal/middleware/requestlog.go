package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
)

type RequestLogMiddleware struct {
	log *logger.Logger
}

func NewRequestLogMiddleware(log *logger.Logger) *RequestLogMiddleware {
	middlewareLog := log.With("middleware", "RequestLogMiddleware")
	return &RequestLogMiddleware{log: middlewareLog}
}

func (m *RequestLogMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.log.Info("Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
