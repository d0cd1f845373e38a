package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vucems/campus-events-api/api/swagger"
	"github.com/vucems/campus-events-api/internal/handler"
	"github.com/vucems/campus-events-api/internal/middleware"
	"github.com/vucems/campus-events-api/internal/models"
	"github.com/vucems/campus-events-api/internal/repository"
	"github.com/vucems/campus-events-api/internal/service"
	"github.com/vucems/campus-events-api/pkg/cache"
	"github.com/vucems/campus-events-api/pkg/config"
	"github.com/vucems/campus-events-api/pkg/database"
	"github.com/vucems/campus-events-api/pkg/logger"
	corsmiddleware "github.com/vucems/campus-events-api/pkg/middleware/cors"
	ratelimitmiddleware "github.com/vucems/campus-events-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/vucems/campus-events-api/pkg/middleware/requestid"
)

// @title Campus Events API
// @version 1.0.0
// @description Event management backend: browse, registration, feedback and role dashboards
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Redis is optional; without it the admin dashboard just skips its cache.
	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.AdminStatsCacheTTL, logr)
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	roleSvc := service.NewRoleService(roleRepo)
	authSvc := service.NewAuthService(userRepo, roleSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "campus-events-api",
	})
	eventSvc := service.NewEventService(eventRepo, registrationRepo, validate, logr)
	registrationSvc := service.NewRegistrationService(eventRepo, registrationRepo, profileRepo, feedbackRepo, metricsSvc, logr)
	feedbackSvc := service.NewFeedbackService(eventRepo, registrationRepo, feedbackRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(roleSvc, eventRepo, registrationRepo, registrationRepo, statsRepo, cacheSvc, cfg.Dashboard.AdminStatsCacheTTL, logr)
	exportSvc := service.NewExportService(eventRepo, registrationRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	eventHandler := handler.NewEventHandler(eventSvc, registrationSvc, feedbackSvc, exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	loginLimiter := ratelimitmiddleware.New(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/signup", loginLimiter.Middleware(), authHandler.Signup)
	auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	events := api.Group("/events")
	events.GET("", middleware.OptionalJWT(authSvc), eventHandler.List)
	events.GET("/:id", middleware.OptionalJWT(authSvc), eventHandler.Get)
	events.POST("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.Create)
	events.POST("/:id/complete", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.Complete)
	events.POST("/:id/register", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent), eventHandler.Register)
	events.PUT("/:id/feedback", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleStudent), eventHandler.SubmitFeedback)
	events.GET("/:id/attendees/export", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin), eventHandler.ExportAttendees)

	api.GET("/dashboard", middleware.JWT(authSvc), dashboardHandler.Get)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
