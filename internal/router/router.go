// Package router assembles the gin engine and its route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ot-practice-api/internal/handler"
	"github.com/noah-isme/ot-practice-api/internal/middleware"
	"github.com/noah-isme/ot-practice-api/internal/models"
	"github.com/noah-isme/ot-practice-api/internal/service"
	"github.com/noah-isme/ot-practice-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ot-practice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ot-practice-api/pkg/middleware/requestid"
)

// Options controls engine-wide behaviour.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableSwagger  bool
	EnableMetrics  bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
}

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth         *handler.AuthHandler
	Clients      *handler.ClientHandler
	Evaluations  *handler.EvaluationHandler
	Catalog      *handler.CatalogHandler
	Assessments  *handler.AssessmentHandler
	Drafts       *handler.DraftHandler
	Observations *handler.ObservationHandler
	Ops          *handler.MetricsHandler
	Admin        *handler.AdminHandler
}

// New builds the engine with middleware and routes registered.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	if opts.EnableMetrics {
		r.GET("/metrics", h.Ops.Prometheus)
	}
	if opts.EnableSwagger {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(opts.Tokens))
	secured.GET("/auth/me", h.Auth.Me)

	clients := secured.Group("/clients")
	clients.GET("", h.Clients.List)
	clients.POST("", h.Clients.Create)
	clients.GET("/:id", h.Clients.Get)
	clients.PUT("/:id", h.Clients.Update)
	clients.DELETE("/:id", h.Clients.Delete)
	clients.GET("/:id/evaluations", h.Clients.Evaluations)
	clients.GET("/:id/assessments", h.Clients.Assessments)

	evaluations := secured.Group("/evaluations")
	evaluations.POST("", h.Evaluations.Create)
	evaluations.GET("/:id", h.Evaluations.Get)
	evaluations.DELETE("/:id", h.Evaluations.Delete)

	catalogs := secured.Group("/catalog")
	catalogs.GET("/spm2", h.Catalog.SPM2)
	catalogs.GET("/observations/:templateId", h.Catalog.Observation)

	assessments := secured.Group("/assessments")
	assessments.POST("", h.Assessments.Create)
	assessments.GET("", h.Assessments.List)
	assessments.GET("/:id", h.Assessments.Get)
	assessments.PATCH("/:id", h.Assessments.Update)
	assessments.DELETE("/:id", h.Assessments.Delete)
	assessments.GET("/:id/scores", h.Assessments.Scores)
	assessments.GET("/:id/takeaways", h.Assessments.Takeaways)
	assessments.GET("/:id/report", h.Assessments.Report)
	assessments.GET("/:id/draft", h.Drafts.Get)
	assessments.POST("/:id/draft", h.Drafts.Begin)
	assessments.DELETE("/:id/draft", h.Drafts.Cancel)
	assessments.PUT("/:id/draft/responses/:questionId", h.Drafts.SetResponse)
	assessments.POST("/:id/draft/commit", h.Drafts.Commit)

	observations := secured.Group("/observations")
	observations.POST("", h.Observations.Create)
	observations.GET("/:id", h.Observations.Get)
	observations.PATCH("/:id", h.Observations.Update)
	observations.DELETE("/:id", h.Observations.Delete)
	observations.GET("/:id/summary", h.Observations.Summary)

	secured.GET("/print-outs/elc-observation-form", h.Observations.PrintForm)

	admin := secured.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/metrics", h.Admin.Snapshot)
	admin.DELETE("/narratives/cache", h.Admin.PurgeNarratives)

	return r
}
