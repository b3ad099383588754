package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/wiki-drafts/internal/handler"
	"github.com/noah-isme/wiki-drafts/internal/middleware"
	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/internal/service"
	"github.com/noah-isme/wiki-drafts/pkg/config"
	"github.com/noah-isme/wiki-drafts/pkg/logger"
	corsmiddleware "github.com/noah-isme/wiki-drafts/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/wiki-drafts/pkg/middleware/requestid"
)

type routeDeps struct {
	cfg      *config.Config
	logger   *zap.Logger
	auth     *service.AuthService
	metrics  *service.MetricsService
	drafts   *handler.DraftHandler
	approval *handler.ApprovalHandler
	health   *handler.MetricsHandler
}

func newRouter(deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(deps.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if deps.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.cfg.APIPrefix)
	api.Use(middleware.JWT(deps.auth))

	drafts := api.Group("/drafts")
	drafts.POST("", deps.drafts.Save)
	drafts.GET("", deps.drafts.List)
	drafts.GET("/:id", deps.drafts.Get)
	drafts.DELETE("/:id", deps.drafts.Discard)
	drafts.POST("/:id/propose", deps.drafts.Propose)
	drafts.POST("/:id/refuse", deps.drafts.Refuse)

	api.GET("/drafts-to-approve", middleware.RequireCapability(models.CapabilityApproveDrafts), deps.approval.Workbench)

	return r
}
