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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/lengolf/timeclock-api/api/swagger"
	"github.com/lengolf/timeclock-api/internal/handler"
	"github.com/lengolf/timeclock-api/internal/middleware"
	"github.com/lengolf/timeclock-api/internal/models"
	"github.com/lengolf/timeclock-api/internal/repository"
	"github.com/lengolf/timeclock-api/internal/service"
	"github.com/lengolf/timeclock-api/internal/timecalc"
	"github.com/lengolf/timeclock-api/pkg/cache"
	"github.com/lengolf/timeclock-api/pkg/config"
	"github.com/lengolf/timeclock-api/pkg/database"
	"github.com/lengolf/timeclock-api/pkg/jobs"
	"github.com/lengolf/timeclock-api/pkg/logger"
	corsmiddleware "github.com/lengolf/timeclock-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lengolf/timeclock-api/pkg/middleware/requestid"
	"github.com/lengolf/timeclock-api/pkg/storage"
)

// @title LENGOLF Time Clock API
// @version 1.0.0
// @description Staff time clock, shift reports and payroll exports
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The report cache is an optimization, not a dependency.
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	policy := buildPolicy(cfg, logr)
	validate := validator.New()

	// Repositories.
	timeEntryRepo := repository.NewTimeEntryRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportJobRepo := repository.NewReportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.TimeClock.ReportCacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	timeClockSvc := service.NewTimeClockService(timeEntryRepo, staffRepo, cacheSvc, metricsSvc, validate, logr, policy.Location)
	reportSvc := service.NewReportService(timeEntryRepo, cacheSvc, policy, cfg.TimeClock.ReportCacheTTL, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	timeClockHandler := handler.NewTimeClockHandler(timeClockSvc, policy.Location)
	reportHandler := handler.NewReportHandler(reportSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

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
	api.POST("/auth/login", authHandler.Login)
	api.POST("/time-clock/punch", timeClockHandler.Punch)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/time-clock/entries", timeClockHandler.ListEntries)
	authed.GET("/time-clock/status/:staffId", timeClockHandler.Status)
	authed.GET("/time-clock/report/shifts", reportHandler.Shifts)
	authed.GET("/time-clock/report/analytics", reportHandler.Analytics)
	authed.GET("/system/metrics", metricsHandler.Snapshot)

	staffGroup := authed.Group("/staff")
	staffGroup.GET("", staffHandler.List)
	staffGroup.GET("/:id", staffHandler.Get)

	staffAdmin := staffGroup.Group("", middleware.RequireRoles(models.RoleAdmin))
	staffAdmin.POST("", staffHandler.Create)
	staffAdmin.PUT("/:id", staffHandler.Update)
	staffAdmin.DELETE("/:id", staffHandler.Deactivate)

	if cfg.Reports.Enabled {
		queue, jobSvc, err := wireExports(ctx, cfg, policy, timeEntryRepo, reportJobRepo, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to set up export pipeline", "error", err)
		}
		defer queue.Stop()

		exportHandler := handler.NewExportHandler(jobSvc)
		api.GET("/export/:token", exportHandler.Download)
		authed.POST("/time-clock/exports", exportHandler.Create)
		authed.GET("/time-clock/exports/:id", exportHandler.Status)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// buildPolicy maps configuration onto the shift calculation policy. Unknown
// timezone names fall back to the club's fixed ICT offset rather than aborting.
func buildPolicy(cfg *config.Config, logr *zap.Logger) timecalc.Policy {
	policy := timecalc.DefaultPolicy()

	if cfg.TimeClock.Timezone != "" {
		loc, err := time.LoadLocation(cfg.TimeClock.Timezone)
		if err != nil {
			logr.Sugar().Warnw("unknown timezone, using fixed ICT offset",
				"timezone", cfg.TimeClock.Timezone, "error", err)
		} else {
			policy.Location = loc
		}
	}
	if cfg.TimeClock.BreakThresholdMinutes > 0 {
		policy.BreakThresholdMinutes = cfg.TimeClock.BreakThresholdMinutes
	}
	if cfg.TimeClock.BreakDeductionMinutes > 0 {
		policy.BreakDeductionMinutes = cfg.TimeClock.BreakDeductionMinutes
	}
	if cfg.TimeClock.MaxShiftMinutes > 0 {
		policy.MaxShiftMinutes = cfg.TimeClock.MaxShiftMinutes
	}
	if cfg.TimeClock.DailyRegularHours > 0 {
		policy.DailyRegularHours = cfg.TimeClock.DailyRegularHours
	}

	return policy
}

// wireExports assembles local file storage, the signed URL scheme, the worker
// queue and the export job service, then recovers jobs left queued by a
// previous run and starts the background cleanup loop.
func wireExports(
	ctx context.Context,
	cfg *config.Config,
	policy timecalc.Policy,
	timeEntryRepo *repository.TimeEntryRepository,
	reportJobRepo *repository.ReportJobRepository,
	logr *zap.Logger,
) (*jobs.Queue, *service.ExportJobService, error) {
	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, err
	}

	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(timeEntryRepo, policy, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr)

	worker := service.NewExportWorker(reportJobRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("report-exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		BufferSize: 64,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)

	jobSvc := service.NewExportJobService(reportJobRepo, queue, exportSvc, logr, service.ExportJobConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})
	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)

	return queue, jobSvc, nil
}
