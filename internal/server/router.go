package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/viorelmirea/provocations-backend/internal/handlers"
	"github.com/viorelmirea/provocations-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName          string
	RegenerateHandler    *handlers.RegenerateHandler
	RequestLogMiddleware *middleware.RequestLogMiddleware
	AllowOrigins         []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	if cfg.RequestLogMiddleware != nil {
		router.Use(cfg.RequestLogMiddleware.Handle())
	}

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// The site's old API answered wrong-method calls with 400, not 405;
	// callers depend on that.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, handlers.Envelope{Status: false})
	})

	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/regenerate/:kind", cfg.RegenerateHandler.Regenerate)
		api.POST("/completions/:kind", cfg.RegenerateHandler.ListCompletions)
	}

	return router
}
