package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub/internal/app"
	iauth "github.com/studyhub/studyhub/internal/auth"
	"github.com/studyhub/studyhub/internal/handlers"
	"github.com/studyhub/studyhub/internal/middleware"
	"github.com/studyhub/studyhub/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the content routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	orders, err := services.NewOrderManager(db)
	if err != nil {
		return nil, err
	}
	progressSvc, err := services.NewProgressService(db)
	if err != nil {
		return nil, err
	}
	syllabusSvc, err := services.NewSyllabusService(db, orders)
	if err != nil {
		return nil, err
	}
	mcqSvc, err := services.NewMCQService(db)
	if err != nil {
		return nil, err
	}
	hierarchySvc, err := services.NewHierarchyService(db, orders, progressSvc,
		services.NewContentURLPolicy(cfg.Content.AllowedHosts), syllabusSvc)
	if err != nil {
		return nil, err
	}

	content, err := handlers.NewContentHandler(hierarchySvc)
	if err != nil {
		return nil, err
	}
	syllabus := handlers.NewSyllabusHandler(syllabusSvc)
	progress := handlers.NewProgressHandler(progressSvc)
	mcq := handlers.NewMCQHandler(mcqSvc)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))

	// Reads: approved, active users and admins
	reads := api.Group("")
	reads.Use(middleware.RequireApprovedActive())
	{
		reads.GET("/tree", content.Tree)
		reads.GET("/folders/:id", content.GetFolder)
		reads.GET("/files/:id", content.GetFile)
		reads.PUT("/files/:id/bookmark", progress.SetBookmark)
		reads.POST("/files/:id/progress", progress.Record)
		reads.GET("/syllabus/tree", syllabus.Tree)
		reads.GET("/syllabus/:id", syllabus.Get)
		reads.GET("/mcq", mcq.List)
		reads.POST("/mcq/:id/answer", mcq.Answer)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/folders", content.CreateFolder)
		admin.PUT("/folders/:id", content.UpdateFolder)
		admin.DELETE("/folders/:id", content.DeleteFolder)

		admin.GET("/files", content.ListFiles)
		admin.POST("/files", content.CreateFile)
		admin.PUT("/files/:id", content.UpdateFile)
		admin.DELETE("/files/:id", content.DeleteFile)

		admin.POST("/reorder", content.Reorder)

		admin.POST("/syllabus", syllabus.Create)
		admin.PUT("/syllabus/:id", syllabus.Update)
		admin.DELETE("/syllabus/:id", syllabus.Delete)
		admin.PUT("/syllabus/:id/folder", syllabus.Link)

		admin.DELETE("/users/:id/progress", progress.PurgeUser)

		admin.GET("/mcq", mcq.ListWithAnswers)
		admin.POST("/mcq", mcq.Create)
		admin.DELETE("/mcq/:id", mcq.Delete)
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
