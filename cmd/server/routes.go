package main

import (
	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/middleware"
	"github.com/lunadata/weekreport/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	// Each generation fans out to Jira and the external databases, so the
	// generate route gets its own tight limit.
	generateLimiter := middleware.NewRateLimiter(1, 3)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "weekreport"})
	})

	api := r.Group("/api")
	{
		api.POST("/generate", generateLimiter.Middleware(), svc.generateHandler.Generate)
		api.GET("/generate/health", svc.generateHandler.Health)

		api.GET("/reports", svc.reportsHandler.List)
		api.GET("/reports/:id", svc.reportsHandler.Get)
		api.GET("/reports/:id/items", svc.itemsHandler.Tree)
		api.DELETE("/reports/:id", svc.reportsHandler.Delete)

		api.PUT("/items/:id", svc.itemsHandler.Update)
		api.POST("/items", svc.itemsHandler.Create)
		api.DELETE("/items/:id", svc.itemsHandler.Delete)

		api.PUT("/notes/:reportId", svc.notesHandler.Upsert)

		api.GET("/export/:reportId", svc.exportHandler.Export)
	}
}
