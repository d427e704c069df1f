package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	configs "assignment_service/config"
	"assignment_service/internal/cache"
	"assignment_service/internal/repository"
	"assignment_service/internal/server/httpapi"
	"assignment_service/internal/service"
	"assignment_service/pkg/db"
	"assignment_service/pkg/kafka"
	"assignment_service/pkg/logger"
)

func main() {
	bootLog := logger.New()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLog.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := configs.Load()
	if err != nil {
		bootLog.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.NewWithLevel(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		bootLog.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.NewPostgres(ctx, db.Config{
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		DBName:         cfg.DB.DBName,
		SSLMode:        cfg.DB.SSLMode,
		MigrationsPath: cfg.DB.MigrationsPath,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pg.Close()

	kafkaProducer, err := kafka.NewProducer(kafka.Config{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.MaxRetries,
		RetryDelay: cfg.Kafka.RetryDelay,
	})
	if err != nil {
		log.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer kafkaProducer.Close()

	rdb, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	assignmentRepo := repository.NewAssignmentRepository(pg.DB())
	submissionRepo := repository.NewSubmissionRepository(pg.DB())
	progressRepo := repository.NewProgressRepository(pg.DB())

	recommendationCache := cache.NewRedisCache(rdb, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, kafkaProducer, recommendationCache, log)
	progressService := service.NewProgressService(
		assignmentRepo,
		submissionRepo,
		progressRepo,
		recommendationCache,
		cfg.Redis.RecommendationTTL,
		log,
	)
	submissionService := service.NewSubmissionService(
		assignmentRepo,
		submissionRepo,
		progressService,
		kafkaProducer,
		log,
	)

	httpCfg := httpapi.Config{
		Address:        cfg.HTTP.Address,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}
	handler := httpapi.NewHandler(assignmentService, submissionService, progressService)
	server := httpapi.NewServer(httpapi.NewRouter(handler, log, httpCfg), log, httpCfg)

	if cfg.Reminder.Enabled {
		worker := NewReminderWorker(assignmentRepo, kafkaProducer, log, cfg.Reminder.Interval, cfg.Reminder.Window)
		go worker.Start(ctx)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to serve", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
