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

	_ "github.com/noah-isme/wiki-drafts/api/swagger"
	"github.com/noah-isme/wiki-drafts/internal/handler"
	"github.com/noah-isme/wiki-drafts/internal/repository"
	"github.com/noah-isme/wiki-drafts/internal/service"
	"github.com/noah-isme/wiki-drafts/pkg/cache"
	"github.com/noah-isme/wiki-drafts/pkg/config"
	"github.com/noah-isme/wiki-drafts/pkg/database"
	"github.com/noah-isme/wiki-drafts/pkg/jobs"
	"github.com/noah-isme/wiki-drafts/pkg/logger"
)

// @title Wiki Drafts API
// @version 1.0.0
// @description Saves, resumes and reviews unpublished page edits.
// @BasePath /api/v1
// @schemes http https
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, draft counts will not be cached", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	draftRepo := repository.NewDraftRepository(db, metrics)
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient),
		metrics,
		cfg.Drafts.CountCacheTTL,
		logr,
		cfg.Drafts.CountCacheEnable && redisClient != nil,
	)
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	draftSvc := service.NewDraftService(draftRepo, logr, service.WithDraftCache(cacheSvc), service.WithDraftMetrics(metrics))
	collectionSvc := service.NewDraftCollectionService(draftRepo, cacheSvc, cfg.Drafts.CountCacheTTL, cfg.Drafts.LifeSpanDays, logr)
	expirySvc := service.NewDraftExpiryService(draftRepo, cfg.Drafts.LifeSpan(), cacheSvc, metrics, logr)
	linker := service.NewPageLinker(cfg.Drafts.WikiBaseURL)

	expiryQueue := jobs.NewQueue("drafts-expiry", expirySvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Drafts.CleanupWorkers,
		BufferSize: 1,
		MaxRetries: 2,
		RetryDelay: time.Minute,
		Logger:     logr,
	})
	if cfg.Drafts.LifeSpan() > 0 {
		expiryQueue.Start(ctx)
		defer expiryQueue.Stop()
		go expiryQueue.Every(ctx, cfg.Drafts.CleanupInterval, service.JobTypeExpireDrafts)
	}

	router := newRouter(routeDeps{
		cfg:      cfg,
		logger:   logr,
		auth:     authSvc,
		metrics:  metrics,
		drafts:   handler.NewDraftHandler(draftSvc, collectionSvc, linker, validate),
		approval: handler.NewApprovalHandler(draftSvc, collectionSvc, linker),
		health:   handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}
