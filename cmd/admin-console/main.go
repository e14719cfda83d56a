package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academy-admin/api/swagger"
	"github.com/noah-isme/academy-admin/internal/handler"
	"github.com/noah-isme/academy-admin/internal/repository"
	"github.com/noah-isme/academy-admin/internal/service"
	"github.com/noah-isme/academy-admin/pkg/cache"
	"github.com/noah-isme/academy-admin/pkg/config"
	"github.com/noah-isme/academy-admin/pkg/database"
	"github.com/noah-isme/academy-admin/pkg/jobs"
	"github.com/noah-isme/academy-admin/pkg/logger"
)

// @title Academy Admin Console
// @version 1.0.0
// @description Staff console over the academy REST API: students, enrollments, payments.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 15 * time.Second

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

	metrics := service.NewMetricsService()
	client := repository.NewBackendClient(cfg.Backend, metrics, logr)

	redisClient, err := cache.NewRedis(cfg.Cache, cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer redisClient.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	var (
		db         *sqlx.DB
		auditStore service.AuditStore
		auditQueue *jobs.Queue
	)
	if cfg.Audit.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect database", "error", err)
		}
		defer db.Close() //nolint:errcheck

		if err := database.EnsureAuditSchema(context.Background(), db); err != nil {
			logr.Sugar().Fatalw("failed to prepare audit schema", "error", err)
		}

		queued := service.NewQueuedAuditStore(repository.NewAuditRepository(db))
		auditQueue = jobs.NewQueue("audit", queued.HandleJob, jobs.QueueConfig{Workers: 2, MaxRetries: 3, Logger: logr})
		queued.Attach(auditQueue)
		auditQueue.Start(context.Background())
		auditStore = queued
	}
	auditSvc := service.NewAuditService(auditStore, logr)

	validate := validator.New()
	reconciler := service.NewEnrollmentReconciler(repository.NewEnrollmentRepository(client), cacheSvc, auditSvc, metrics, logr)
	studentSvc := service.NewStudentService(repository.NewStudentRepository(client), reconciler, cacheSvc, auditSvc, validate, logr)
	paymentSvc := service.NewPaymentService(repository.NewPaymentRepository(client), cacheSvc, auditSvc, validate, logr)
	optionSvc := service.NewClassOptionService(repository.NewClassOptionRepository(client), cacheSvc, logr)

	router := handler.NewRouter(cfg, logr, metrics, handler.Handlers{
		Pages:        handler.NewPageHandler(studentSvc, logr),
		Students:     handler.NewStudentHandler(studentSvc),
		Payments:     handler.NewPaymentHandler(studentSvc, paymentSvc),
		ClassOptions: handler.NewClassOptionHandler(optionSvc),
		Audit:        handler.NewAuditHandler(auditSvc),
		Ops:          handler.NewMetricsHandler(metrics, readinessChecks(client, redisClient, db)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if auditQueue != nil {
		auditQueue.Stop()
	}
}

func readinessChecks(client *repository.BackendClient, redisClient *redis.Client, db *sqlx.DB) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"backend": client.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if db != nil {
		checks["database"] = db.PingContext
	}
	return checks
}
