package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ot-practice-api/api/swagger"
	"github.com/noah-isme/ot-practice-api/internal/handler"
	"github.com/noah-isme/ot-practice-api/internal/repository"
	"github.com/noah-isme/ot-practice-api/internal/router"
	"github.com/noah-isme/ot-practice-api/internal/service"
	"github.com/noah-isme/ot-practice-api/internal/takeaway"
	"github.com/noah-isme/ot-practice-api/migrations"
	"github.com/noah-isme/ot-practice-api/pkg/cache"
	"github.com/noah-isme/ot-practice-api/pkg/config"
	"github.com/noah-isme/ot-practice-api/pkg/database"
	"github.com/noah-isme/ot-practice-api/pkg/jobs"
	"github.com/noah-isme/ot-practice-api/pkg/logger"
)

// @title OT Practice API
// @version 1.0.0
// @description Client records, SPM-2 scoring and ELC observations for occupational therapists
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	applied, err := migrations.Up(db.DB)
	if err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}
	logr.Info("migrations applied", zap.Int("count", applied))

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, narrative cache and drafts disabled", zap.Error(err))
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	observationRepo := repository.NewObservationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	draftRepo := repository.NewDraftRepository(redisClient, cfg.Drafts.TTL)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "ot-practice-api",
	})
	clientSvc := service.NewClientService(clientRepo, validate, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, clientRepo, observationRepo, validate, logr)
	observationSvc := service.NewObservationService(observationRepo, evaluationRepo, clientRepo, validate, logr)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, clientRepo, draftRepo, nil, validate, logr)
	draftSvc := service.NewDraftService(draftRepo, assessmentSvc, validate, logr)
	scoreSvc := service.NewScoreService(draftSvc)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Narrative.CacheTTL, logr, redisClient != nil)
	var generator takeaway.Generator
	if cfg.Narrative.Enabled {
		generator = takeaway.NewNarrativeClient(takeaway.ClientConfig{
			BaseURL:       cfg.Narrative.BaseURL,
			APIKey:        cfg.Narrative.APIKey,
			Model:         cfg.Narrative.Model,
			Timeout:       cfg.Narrative.Timeout,
			RatePerMinute: cfg.Narrative.RatePerMinute,
		})
	}
	takeawaySvc := service.NewTakeawayService(draftSvc, generator, cacheSvc, metrics, logr, service.TakeawayConfig{
		NarrativeEnabled: cfg.Narrative.Enabled,
		CacheTTL:         cfg.Narrative.CacheTTL,
	})
	warmQueue := jobs.NewQueue(service.JobTypeTakeawayWarm, takeawaySvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Narrative.WarmWorkers,
		MaxRetries: 1,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	warmQueue.Start(ctx)
	defer warmQueue.Stop()
	takeawaySvc.SetQueue(warmQueue)
	assessmentSvc.SetWarmer(takeawaySvc)

	exportSvc := service.NewExportService(scoreSvc, takeawaySvc, logr, nil, nil)

	engine := router.New(router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableSwagger:  cfg.Env != config.EnvProduction,
		EnableMetrics:  cfg.Metrics.Enabled,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Clients:      handler.NewClientHandler(clientSvc, evaluationSvc, assessmentSvc),
		Evaluations:  handler.NewEvaluationHandler(evaluationSvc),
		Catalog:      handler.NewCatalogHandler(),
		Assessments:  handler.NewAssessmentHandler(assessmentSvc, scoreSvc, takeawaySvc, exportSvc),
		Drafts:       handler.NewDraftHandler(draftSvc),
		Observations: handler.NewObservationHandler(observationSvc, exportSvc),
		Ops: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": handler.PingFunc(db.PingContext),
			"cache":    handler.PingFunc(cacheRepo.Ping),
		}),
		Admin: handler.NewAdminHandler(metrics, takeawaySvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Warn("failed to close redis", zap.Error(err))
	}
}
