package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Ankish8/College-Management-sub001/api/swagger"
	"github.com/Ankish8/College-Management-sub001/internal/handler"
	"github.com/Ankish8/College-Management-sub001/internal/middleware"
	"github.com/Ankish8/College-Management-sub001/internal/repository"
	"github.com/Ankish8/College-Management-sub001/internal/service"
	"github.com/Ankish8/College-Management-sub001/pkg/cache"
	"github.com/Ankish8/College-Management-sub001/pkg/config"
	"github.com/Ankish8/College-Management-sub001/pkg/database"
	"github.com/Ankish8/College-Management-sub001/pkg/export"
	"github.com/Ankish8/College-Management-sub001/pkg/jobs"
	"github.com/Ankish8/College-Management-sub001/pkg/logger"
	corsmiddleware "github.com/Ankish8/College-Management-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/Ankish8/College-Management-sub001/pkg/middleware/requestid"
)

// @title College Management Timetable API
// @version 0.1.0
// @description Bulk timetable mutation engine: clone, faculty replace, bulk reschedule
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	operationRepo := repository.NewOperationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "college-management",
		Audience:          []string{"college-api"},
	})

	detector := service.NewConflictDetector()
	validator := service.NewOperationValidator(batchRepo, userRepo, timetableRepo, calendarRepo, timeSlotRepo, detector, logr)
	tracker := service.NewOperationTracker(operationRepo, cacheRepo, metricsSvc, cfg.Engine, logr)
	previewSvc := service.NewPreviewService(validator, timetableRepo, cfg.Engine, logr)
	bulkSvc := service.NewBulkOperationService(service.BulkOperationServiceDeps{
		Validator:  validator,
		Tracker:    tracker,
		Preview:    previewSvc,
		TxProvider: db,
		Operations: operationRepo,
		Batches:    batchRepo,
		Faculty:    userRepo,
		Subjects:   subjectRepo,
		Entries:    timetableRepo,
		Calendar:   calendarRepo,
		TimeSlots:  timeSlotRepo,
		Engine:     cfg.Engine,
		Metrics:    metricsSvc,
		Logger:     logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := jobs.NewQueue("bulk-operations", bulkSvc.HandleJob, jobs.QueueConfig{
		Workers: cfg.Engine.AsyncWorkers,
		Logger:  logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	bulkSvc.AttachQueue(queue)

	authHandler := handler.NewAuthHandler(authSvc)
	bulkHandler := handler.NewBulkOperationHandler(bulkSvc, tracker, export.NewConflictReportExporter())
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

		// Mutations stay admin-only; faculty may read progress and history,
		// scoped by the handler to operations they started.
		bulk := api.Group("/timetable/bulk-operations", middleware.JWT(authSvc))
		bulk.POST("", middleware.RBAC("ADMIN"), bulkHandler.Execute)
		bulk.POST("/preview", middleware.RBAC("ADMIN"), bulkHandler.Preview)
		bulk.POST("/:id/cancel", middleware.RBAC("ADMIN"), bulkHandler.Cancel)
		bulk.GET("", middleware.RBAC("ADMIN", "FACULTY"), bulkHandler.History)
		bulk.GET("/:id", middleware.RBAC("ADMIN", "FACULTY"), bulkHandler.Detail)
		bulk.GET("/:id/progress", middleware.RBAC("ADMIN", "FACULTY"), bulkHandler.Progress)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
