package app

import (
	"time"

	"github.com/amirhjalali/notes-core/internal/modules/note"
	"github.com/amirhjalali/notes-core/internal/modules/processing/ai"
	"github.com/amirhjalali/notes-core/internal/modules/processing/engine"
	"github.com/amirhjalali/notes-core/internal/modules/processing/extract"
	"github.com/amirhjalali/notes-core/internal/modules/review"
	"github.com/amirhjalali/notes-core/internal/modules/search"
	"github.com/amirhjalali/notes-core/internal/modules/tagging"
	"github.com/amirhjalali/notes-core/internal/pkg/response"
	"github.com/amirhjalali/notes-core/internal/pkg/taskqueue"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes() {
	queue := taskqueue.NewService(a.rc)
	aiClient := ai.NewProviderClient(a.cfg.AI)
	aiSvc := ai.NewService(a.db, aiClient, a.cfg.AI.EmbeddingModel, a.logger)
	extractor := extract.New(
		time.Duration(a.cfg.Extract.TimeoutSeconds)*time.Second,
		a.cfg.Extract.MaxBodyBytes,
		a.logger,
	)

	noteSvc := note.NewService(a.db, a.logger)
	taggingSvc := tagging.NewService(a.db, a.logger)
	engineSvc := engine.NewService(a.db, queue, aiSvc, extractor, taggingSvc, a.logger)
	searchSvc := search.NewService(a.db, aiSvc, a.logger)
	reviewSvc := review.NewService(a.db, aiSvc, a.logger)

	a.router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	api := a.router.Group("/api/v1")
	note.NewHandler(noteSvc).RegisterRoutes(api)
	engine.NewHandler(engineSvc, a.cfg.MaxBatchSize).RegisterRoutes(api)
	tagging.NewHandler(taggingSvc).RegisterRoutes(api)
	search.NewHandler(searchSvc).RegisterRoutes(api)
	review.NewHandler(reviewSvc).RegisterRoutes(api)
	ai.NewHandler(aiSvc).RegisterRoutes(api)

	a.router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})
	a.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
}
